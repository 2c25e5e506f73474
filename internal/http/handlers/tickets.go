package handlers

import (
	"net/http"

	"rutabus/internal/http/middleware"
	"rutabus/internal/services"

	"github.com/gin-gonic/gin"
)

type TicketHandler struct {
	Tickets services.TicketService
	Docs    func(requestID string) services.DocsService
}

// GET /api/tickets
func (h TicketHandler) ListOwn(c *gin.Context) {
	tickets, err := h.Tickets.ByUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// GET /api/tickets/:id
func (h TicketHandler) ByID(c *gin.Context) {
	ticket, err := h.Tickets.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if ticket.UserID != middleware.UserID(c) && !middleware.IsAdmin(c) {
		respondError(c, http.StatusNotFound, "not_found", "boleto no encontrado", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// GET /api/tickets/:id/pdf returns the e-ticket (inline).
func (h TicketHandler) ETicketPDF(c *gin.Context) {
	ticket, err := h.Tickets.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if ticket.UserID != middleware.UserID(c) && !middleware.IsAdmin(c) {
		respondError(c, http.StatusNotFound, "not_found", "boleto no encontrado", nil)
		return
	}

	svc := h.Docs(middleware.GetRequestID(c))
	pdfBytes, filename, err := svc.GenerateETicket(c.Request.Context(), ticket.ID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// GET /api/admin/tickets
func (h TicketHandler) ListAll(c *gin.Context) {
	tickets, err := h.Tickets.All(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tickets": tickets})
}

// PUT /api/admin/tickets/:id/use
func (h TicketHandler) MarkUsed(c *gin.Context) {
	ticket, err := h.Tickets.MarkUsed(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}
