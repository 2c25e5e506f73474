package models

import "time"

type TicketStatus string

const (
	TicketActive TicketStatus = "ACTIVE"
	TicketUsed   TicketStatus = "USED"
)

// Ticket is issued only after a completed transaction. Route fields are a
// denormalized snapshot so the ticket stays readable if the route changes.
type Ticket struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	UserName       string       `json:"user_name"`
	RouteID        string       `json:"route_id"`
	PassengerName  string       `json:"passenger_name"`
	PassengerDNI   string       `json:"passenger_dni"`
	SeatNumber     int          `json:"seat_number"`
	Origin         string       `json:"origin"`
	Destination    string       `json:"destination"`
	DepartureLabel string       `json:"departure_label"`
	PriceCents     int64        `json:"price_cents"`
	Status         TicketStatus `json:"status"`
	PurchasedAt    time.Time    `json:"purchased_at"`
}

func (t Ticket) IsActive() bool { return t.Status == TicketActive }
