package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/database"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/handlers/payment"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/handlers/user"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/ledger"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/metrics"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/middleware"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/payments"
)

func RegisterRoutes(r *gin.Engine, repo ledger.Repository, svc *payments.Service, rec *payments.Reconciler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Authenticated by provider signature, not by session — must stay
	// reachable without a login.
	r.POST("/webhooks/payment", payment.StripeWebhook(rec))

	// A nil *redis.Client boxed in the interface would dodge the
	// middleware's nil check, so only hand it over when connected.
	var limiter middleware.CheckoutLimiter
	if database.Redis != nil {
		limiter = database.Redis
	}

	authed := r.Group("/", middleware.AuthRequired())
	authed.POST("/payment-intent", middleware.CheckoutRateLimit(limiter), payment.CreatePaymentIntent(svc))
	authed.GET("/user/orders", user.GetMyOrders(repo))
}
