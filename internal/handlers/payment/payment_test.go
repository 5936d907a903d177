package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/ledger"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/models"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/payments"
)

const testSigningSecret = "whsec_handler_test"

type fakeClient struct {
	err error
}

func (f *fakeClient) CreatePaymentIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stripe.PaymentIntent{ID: "pi_fake_1", ClientSecret: "cs_fake_1"}, nil
}

// withUser stands in for the JWT middleware in tests.
func withUser(userID, email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
			c.Set("email", email)
		}
		c.Next()
	}
}

func newIntentRouter(mem *ledger.Memory, client *fakeClient, secretKey, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := payments.NewService(mem, client, secretKey)
	r := gin.New()
	r.POST("/payment-intent", withUser(userID, "buyer@example.com"), CreatePaymentIntent(svc))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreatePaymentIntentOK(t *testing.T) {
	mem := ledger.NewMemory()
	r := newIntentRouter(mem, &fakeClient{}, "sk_test", "u1")

	w := postJSON(t, r, "/payment-intent", gin.H{
		"items":    []gin.H{{"id": "s1", "name": "Site One", "price": 1999, "quantity": 1}},
		"currency": "usd",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		ClientSecret    string `json:"clientSecret"`
		PaymentIntentID string `json:"paymentIntentId"`
		OrderID         string `json:"orderId"`
		Amount          int64  `json:"amount"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ClientSecret != "cs_fake_1" || resp.PaymentIntentID != "pi_fake_1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Amount != 1999 {
		t.Fatalf("amount = %d", resp.Amount)
	}

	order, err := mem.GetOrder(context.Background(), resp.OrderID)
	if err != nil {
		t.Fatalf("order not materialized: %v", err)
	}
	if order.Status != models.OrderPending || order.UserID != "u1" {
		t.Fatalf("unexpected order: %+v", order)
	}
}

func TestCreatePaymentIntentValidation(t *testing.T) {
	cases := []struct {
		name string
		body gin.H
	}{
		{"empty cart", gin.H{"items": []gin.H{}}},
		{"zero price", gin.H{"items": []gin.H{{"id": "s1", "price": 0, "quantity": 1}}}},
		{"multi quantity", gin.H{"items": []gin.H{{"id": "s1", "price": 1999, "quantity": 2}}}},
		{"negative price", gin.H{"items": []gin.H{{"id": "s1", "price": -5, "quantity": 1}}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mem := ledger.NewMemory()
			r := newIntentRouter(mem, &fakeClient{}, "sk_test", "u1")

			w := postJSON(t, r, "/payment-intent", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			// Validation failures must not create orders or call Stripe.
			orders, _ := mem.ListByUser(context.Background(), "u1")
			if len(orders) != 0 {
				t.Fatalf("order created from invalid cart")
			}
		})
	}
}

func TestCreatePaymentIntentMalformedOrderID(t *testing.T) {
	mem := ledger.NewMemory()
	r := newIntentRouter(mem, &fakeClient{}, "sk_test", "u1")

	w := postJSON(t, r, "/payment-intent", gin.H{
		"items":   []gin.H{{"id": "s1", "price": 1999, "quantity": 1}},
		"orderId": "abc",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", w.Code, w.Body.String())
	}
	orders, _ := mem.ListByUser(context.Background(), "u1")
	if len(orders) != 0 {
		t.Fatalf("order created from malformed draft id")
	}
}

func TestCreatePaymentIntentUnauthenticated(t *testing.T) {
	r := newIntentRouter(ledger.NewMemory(), &fakeClient{}, "sk_test", "")
	w := postJSON(t, r, "/payment-intent", gin.H{
		"items": []gin.H{{"id": "s1", "price": 1999, "quantity": 1}},
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestCreatePaymentIntentProviderDown(t *testing.T) {
	r := newIntentRouter(ledger.NewMemory(), &fakeClient{err: errors.New("boom")}, "sk_test", "u1")
	w := postJSON(t, r, "/payment-intent", gin.H{
		"items": []gin.H{{"id": "s1", "price": 1999, "quantity": 1}},
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func TestCreatePaymentIntentUnconfigured(t *testing.T) {
	r := newIntentRouter(ledger.NewMemory(), &fakeClient{}, "", "u1")
	w := postJSON(t, r, "/payment-intent", gin.H{
		"items": []gin.H{{"id": "s1", "price": 1999, "quantity": 1}},
	})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
}

func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func webhookRouter(mem *ledger.Memory) *gin.Engine {
	gin.SetMode(gin.TestMode)
	rec := payments.NewReconciler(mem, testSigningSecret, nil)
	r := gin.New()
	r.POST("/webhooks/payment", StripeWebhook(rec))
	return r
}

func seedOrderAndEvent(t *testing.T, mem *ledger.Memory) []byte {
	t.Helper()
	order := &models.Order{
		ID: "ord-1", UserID: "u1", TotalAmount: 1999,
		Currency: "usd", Status: models.OrderPending,
	}
	if err := mem.CreateOrder(context.Background(), order, []models.OrderItem{
		{ID: "i1", OrderID: "ord-1", SiteID: "s1", SiteName: "Site One", PriceCents: 1999},
	}); err != nil {
		t.Fatalf("seed order: %v", err)
	}

	md, err := payments.IntentMetadata{
		Version: payments.MetadataVersion, UserID: "u1", OrderID: "ord-1",
		OrderType: "placement",
		Items:     []models.CartItem{{SiteID: "s1", SiteName: "Site One", PriceCents: 1999, Quantity: 1}},
	}.Encode()
	if err != nil {
		t.Fatalf("encode metadata: %v", err)
	}

	event := map[string]any{
		"id":          "evt_1",
		"object":      "event",
		"api_version": "2025-07-30.basil",
		"type":        "payment_intent.succeeded",
		"data": map[string]any{"object": map[string]any{
			"id": "pi_1", "object": "payment_intent",
			"amount": 1999, "currency": "usd", "metadata": md,
		}},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload
}

func postWebhook(r *gin.Engine, payload []byte, sig string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payment", bytes.NewReader(payload))
	if sig != "" {
		req.Header.Set("Stripe-Signature", sig)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStripeWebhookHappyPathAndReplay(t *testing.T) {
	mem := ledger.NewMemory()
	r := webhookRouter(mem)
	payload := seedOrderAndEvent(t, mem)
	sig := signPayload(payload, testSigningSecret)

	for i := 0; i < 3; i++ {
		w := postWebhook(r, payload, sig)
		if w.Code != http.StatusOK {
			t.Fatalf("delivery #%d status = %d, body %s", i+1, w.Code, w.Body.String())
		}
	}

	order, _ := mem.GetOrder(context.Background(), "ord-1")
	if order.Status != models.OrderPaid || len(order.Transactions) != 1 {
		t.Fatalf("replay corrupted state: %s, %d txns", order.Status, len(order.Transactions))
	}
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	mem := ledger.NewMemory()
	r := webhookRouter(mem)
	payload := seedOrderAndEvent(t, mem)

	for _, sig := range []string{"", signPayload(payload, "whsec_wrong")} {
		w := postWebhook(r, payload, sig)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	}

	order, _ := mem.GetOrder(context.Background(), "ord-1")
	if order.Status != models.OrderPending {
		t.Fatal("unverified event reconciled")
	}
}

func TestStripeWebhookAcknowledgesUnknownType(t *testing.T) {
	mem := ledger.NewMemory()
	r := webhookRouter(mem)

	payload, _ := json.Marshal(map[string]any{
		"id": "evt_2", "object": "event", "api_version": "2025-07-30.basil",
		"type": "customer.created",
		"data": map[string]any{"object": map[string]any{"id": "cus_1"}},
	})
	w := postWebhook(r, payload, signPayload(payload, testSigningSecret))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 ack", w.Code)
	}
}
