package services

import (
	"context"
	"strings"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
	"rutabus/internal/repositories"
	"rutabus/internal/validate"

	"github.com/google/uuid"
)

type RouteService struct {
	Routes repositories.RouteStore
}

func (s RouteService) All(ctx context.Context) ([]models.Route, error) {
	return s.Routes.All(ctx)
}

func (s RouteService) Search(ctx context.Context, origin, destination string) ([]models.Route, error) {
	if err := validate.OriginDestination(origin, destination); err != nil {
		return nil, err
	}
	return s.Routes.Search(ctx, origin, destination)
}

func (s RouteService) ByID(ctx context.Context, id string) (models.Route, error) {
	if strings.TrimSpace(id) == "" {
		return models.Route{}, domain.ValidationError{Field: "id", Msg: "id requerido"}
	}
	return s.Routes.ByID(ctx, id)
}

func (s RouteService) Create(ctx context.Context, route models.Route) (models.Route, error) {
	if err := validateRoute(route); err != nil {
		return models.Route{}, err
	}
	if route.ID == "" {
		route.ID = uuid.NewString()
	}
	route.NormalizeOccupied()
	if err := s.Routes.Create(ctx, route); err != nil {
		return models.Route{}, err
	}
	return route, nil
}

func (s RouteService) Update(ctx context.Context, route models.Route) error {
	if err := validateRoute(route); err != nil {
		return err
	}
	return s.Routes.Update(ctx, route)
}

func validateRoute(route models.Route) error {
	if err := validate.OriginDestination(route.Origin, route.Destination); err != nil {
		return err
	}
	if strings.TrimSpace(route.DepartureLabel) == "" {
		return domain.ValidationError{Field: "departure_label", Msg: "ingresa el horario"}
	}
	if route.PriceCents <= 0 {
		return domain.ValidationError{Field: "price_cents", Msg: "el precio debe ser mayor a cero"}
	}
	if route.TotalSeats <= 0 {
		return domain.ValidationError{Field: "total_seats", Msg: "la cantidad de asientos debe ser mayor a cero"}
	}
	for _, seat := range route.OccupiedSeats {
		if seat < 1 || seat > route.TotalSeats {
			return domain.ValidationError{Field: "occupied_seats", Msg: "asiento fuera de rango"}
		}
	}
	return nil
}

var initialRoutes = []models.Route{
	{Origin: "Lima", Destination: "Arequipa", DepartureLabel: "8:30 AM", PriceCents: 9500, TotalSeats: 40},
	{Origin: "Lima", Destination: "Arequipa", DepartureLabel: "9:45 PM", PriceCents: 11000, TotalSeats: 40},
	{Origin: "Lima", Destination: "Trujillo", DepartureLabel: "7:00 AM", PriceCents: 6500, TotalSeats: 44},
	{Origin: "Lima", Destination: "Cusco", DepartureLabel: "6:15 PM", PriceCents: 14500, TotalSeats: 36},
	{Origin: "Arequipa", Destination: "Lima", DepartureLabel: "8:00 AM", PriceCents: 9500, TotalSeats: 40},
	{Origin: "Trujillo", Destination: "Lima", DepartureLabel: "10:30 PM", PriceCents: 6500, TotalSeats: 44},
	{Origin: "Cusco", Destination: "Lima", DepartureLabel: "5:00 PM", PriceCents: 14500, TotalSeats: 36},
}

// SeedInitialRoutes creates the demo catalog when a route with the same
// endpoints and schedule slot does not already exist. Returns how many
// routes were created.
func (s RouteService) SeedInitialRoutes(ctx context.Context) (int, error) {
	existing, err := s.Routes.All(ctx)
	if err != nil {
		return 0, err
	}
	have := map[string]bool{}
	for _, r := range existing {
		have[seedKey(r)] = true
	}

	created := 0
	for _, r := range initialRoutes {
		if have[seedKey(r)] {
			continue
		}
		r.ID = uuid.NewString()
		if err := s.Routes.Create(ctx, r); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func seedKey(r models.Route) string {
	return strings.ToLower(r.Origin) + "|" + strings.ToLower(r.Destination) + "|" + strings.ToLower(r.DepartureLabel)
}
