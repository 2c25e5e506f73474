package handlers

import (
	"net/http"
	"strings"

	"rutabus/internal/domain/models"
	"rutabus/internal/services"
	"rutabus/internal/utils"

	"github.com/gin-gonic/gin"
)

type RouteHandler struct {
	Routes services.RouteService
}

// GET /api/routes?origin=&destination=
func (h RouteHandler) List(c *gin.Context) {
	origin := strings.TrimSpace(c.Query("origin"))
	destination := strings.TrimSpace(c.Query("destination"))

	var (
		routes []models.Route
		err    error
	)
	if origin != "" || destination != "" {
		routes, err = h.Routes.Search(c.Request.Context(), origin, destination)
	} else {
		routes, err = h.Routes.All(c.Request.Context())
	}
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// GET /api/routes/:id
func (h RouteHandler) ByID(c *gin.Context) {
	route, err := h.Routes.ByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"route":           route,
		"available_seats": route.AvailableSeats(),
		"price_display":   utils.FormatSoles(route.PriceCents),
	})
}

type routeRequest struct {
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	DepartureLabel string `json:"departure_label"`
	PriceCents     int64  `json:"price_cents"`
	TotalSeats     int    `json:"total_seats"`
	OccupiedSeats  []int  `json:"occupied_seats"`
}

// POST /api/routes (admin)
func (h RouteHandler) Create(c *gin.Context) {
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	route, err := h.Routes.Create(c.Request.Context(), models.Route{
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureLabel: req.DepartureLabel,
		PriceCents:     req.PriceCents,
		TotalSeats:     req.TotalSeats,
		OccupiedSeats:  req.OccupiedSeats,
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"route": route})
}

// PUT /api/routes/:id (admin)
func (h RouteHandler) Update(c *gin.Context) {
	var req routeRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	route := models.Route{
		ID:             c.Param("id"),
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureLabel: req.DepartureLabel,
		PriceCents:     req.PriceCents,
		TotalSeats:     req.TotalSeats,
		OccupiedSeats:  req.OccupiedSeats,
	}
	if err := h.Routes.Update(c.Request.Context(), route); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": route})
}

// POST /api/routes/seed (admin)
func (h RouteHandler) Seed(c *gin.Context) {
	created, err := h.Routes.SeedInitialRoutes(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "catálogo inicial listo", "created": created})
}
