package handlers

import (
	"net/http"

	"rutabus/internal/domain/models"
	"rutabus/internal/http/middleware"
	"rutabus/internal/services"

	"github.com/gin-gonic/gin"
)

type PaymentMethodHandler struct {
	Methods services.PaymentMethodService
}

// GET /api/payment-methods
func (h PaymentMethodHandler) List(c *gin.Context) {
	methods, err := h.Methods.MethodsByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payment_methods": methods})
}

type saveMethodRequest struct {
	Kind       string `json:"kind"` // CARD, YAPE or PLIN
	IsDefault  bool   `json:"is_default"`
	CardNumber string `json:"card_number"`
	CardHolder string `json:"card_holder"`
	CardExpiry string `json:"card_expiry"`
	CardCVV    string `json:"card_cvv"`
	Phone      string `json:"phone_number"`
	Account    string `json:"account_name"`
}

// POST /api/payment-methods
func (h PaymentMethodHandler) Save(c *gin.Context) {
	var req saveMethodRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	userID := middleware.UserID(c)

	var (
		method models.PaymentMethod
		err    error
	)
	switch models.PaymentKind(req.Kind) {
	case models.PaymentCard:
		method, err = h.Methods.SaveCard(c.Request.Context(), userID, services.CardInput{
			Number: req.CardNumber,
			Holder: req.CardHolder,
			Expiry: req.CardExpiry,
			CVV:    req.CardCVV,
		}, req.IsDefault)
	case models.PaymentYape, models.PaymentPlin:
		method, err = h.Methods.SaveWallet(c.Request.Context(), userID, services.WalletInput{
			Kind:        models.PaymentKind(req.Kind),
			PhoneNumber: req.Phone,
			AccountName: req.Account,
		}, req.IsDefault)
	default:
		RespondError(c, http.StatusBadRequest, "tipo de método de pago inválido", nil)
		return
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"payment_method": method})
}

// DELETE /api/payment-methods/:id
func (h PaymentMethodHandler) Delete(c *gin.Context) {
	if err := h.Methods.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "método de pago eliminado"})
}

// PUT /api/payment-methods/:id/default
func (h PaymentMethodHandler) SetDefault(c *gin.Context) {
	if err := h.Methods.SetDefault(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "método de pago predeterminado actualizado"})
}
