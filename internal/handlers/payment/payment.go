package payment

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/cart"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/models"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/money"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/payments"
)

// Stripe caps event payloads well below this; anything bigger is junk.
const maxWebhookBody = int64(65536)

// CreatePaymentIntent validates the submitted cart, opens a provider
// intent and returns the client secret the browser needs to finish
// payment.
func CreatePaymentIntent(svc *payments.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Items    []models.CartItem `json:"items"`
			Currency string            `json:"currency"`
			OrderID  string            `json:"orderId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		total, err := cart.Validate(req.Items)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": cartErrorMessage(err)})
			return
		}

		currency := strings.ToLower(req.Currency)
		if currency == "" {
			currency = "usd"
		}

		res, err := svc.CreateIntent(c.Request.Context(), payments.CreateIntentInput{
			UserID:          userID,
			Email:           c.GetString("email"),
			Items:           req.Items,
			Total:           total,
			Currency:        currency,
			ExistingOrderID: req.OrderID,
		})
		if err != nil {
			switch {
			case errors.Is(err, payments.ErrInvalidDraftOrder):
				c.JSON(http.StatusBadRequest, gin.H{"error": "Order not available for checkout"})
			case errors.Is(err, payments.ErrProviderUnconfigured):
				log.Println("❌ Stripe secret key missing — cannot create intents")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment provider not configured"})
			default:
				log.Printf("❌ Intent creation failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Payment initialization failed"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"clientSecret":    res.ClientSecret,
			"paymentIntentId": res.ProviderReference,
			"orderId":         res.OrderID,
			"amount":          total,
			"currency":        currency,
		})
	}
}

// StripeWebhook receives provider deliveries. It is reachable without
// a session: the signature is the authentication. Once verification
// passes the response is 200 even for no-ops, so the provider stops
// redelivering handled events.
func StripeWebhook(rec *payments.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)

		payload, err := c.GetRawData()
		if err != nil {
			log.Printf("❌ Webhook body read failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable body"})
			return
		}

		res, err := rec.HandleEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
		if err != nil {
			if errors.Is(err, payments.ErrInvalidSignature) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
				return
			}
			// Transient storage failure: let the provider redeliver.
			log.Printf("❌ Webhook processing error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"received": true, "outcome": res.Outcome})
	}
}

func cartErrorMessage(err error) string {
	switch {
	case errors.Is(err, cart.ErrEmptyCart):
		return "Cart is empty"
	case errors.Is(err, cart.ErrInvalidLineItem):
		return "Invalid cart item"
	case errors.Is(err, money.ErrInvalidAmount):
		return "Invalid amount"
	default:
		return "Invalid cart"
	}
}
