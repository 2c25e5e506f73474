package handlers

import (
	"net/http"

	"rutabus/internal/http/middleware"
	"rutabus/internal/services"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

type initializeRequest struct {
	RouteID    string `json:"route_id"`
	SeatNumber int    `json:"seat_number"`
}

// POST /api/checkout
func (h CheckoutHandler) Initialize(c *gin.Context) {
	var req initializeRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	snap, err := h.Checkout.Initialize(c.Request.Context(), middleware.UserID(c), req.RouteID, req.SeatNumber)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"checkout": snap})
}

// GET /api/checkout/:id
func (h CheckoutHandler) Get(c *gin.Context) {
	snap, ok := h.ownedSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": snap})
}

type passengerRequest struct {
	Name string `json:"name"`
	DNI  string `json:"dni"`
}

// PUT /api/checkout/:id/passenger
func (h CheckoutHandler) SetPassenger(c *gin.Context) {
	if _, ok := h.ownedSession(c); !ok {
		return
	}
	var req passengerRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	snap, err := h.Checkout.SetPassenger(c.Param("id"), req.Name, req.DNI)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": snap})
}

type selectMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
}

// PUT /api/checkout/:id/payment-method
func (h CheckoutHandler) SelectPaymentMethod(c *gin.Context) {
	if _, ok := h.ownedSession(c); !ok {
		return
	}
	var req selectMethodRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	snap, err := h.Checkout.SelectPaymentMethod(c.Param("id"), req.PaymentMethodID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"checkout": snap})
}

// POST /api/checkout/:id/confirm
//
// The purchase continues in the background; clients poll GET /checkout/:id
// until SUCCESS or FAILED.
func (h CheckoutHandler) Confirm(c *gin.Context) {
	if _, ok := h.ownedSession(c); !ok {
		return
	}

	snap, err := h.Checkout.Confirm(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	status := http.StatusAccepted
	if len(snap.FieldErrors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, gin.H{"checkout": snap})
}

// ownedSession loads the session and enforces that it belongs to the
// authenticated user. Foreign sessions read as not found.
func (h CheckoutHandler) ownedSession(c *gin.Context) (services.Snapshot, bool) {
	snap, err := h.Checkout.Get(c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return services.Snapshot{}, false
	}
	if snap.UserID != middleware.UserID(c) {
		respondError(c, http.StatusNotFound, "not_found", "sesión de compra no encontrada", nil)
		return services.Snapshot{}, false
	}
	return snap, true
}
