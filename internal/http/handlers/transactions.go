package handlers

import (
	"net/http"

	"rutabus/internal/http/middleware"
	"rutabus/internal/repositories"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	Payments repositories.PaymentStore
}

// GET /api/transactions
func (h TransactionHandler) ListOwn(c *gin.Context) {
	txs, err := h.Payments.TransactionsByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

// GET /api/admin/transactions
func (h TransactionHandler) ListAll(c *gin.Context) {
	txs, err := h.Payments.AllTransactions(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}
