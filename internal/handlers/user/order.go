package user

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Abhi-Verma2005/OMS-sub001/internal/ledger"
	"github.com/Abhi-Verma2005/OMS-sub001/internal/models"
)

// GetMyOrders returns the authenticated buyer's orders with items and
// transactions, newest first. The identity comes from the verified
// session only — a caller can never ask for someone else's orders.
func GetMyOrders(repo ledger.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		orders, err := repo.ListByUser(c.Request.Context(), userID)
		if err != nil {
			log.Printf("❌ Order listing failed for %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not load orders"})
			return
		}
		if orders == nil {
			orders = []models.Order{}
		}

		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}
