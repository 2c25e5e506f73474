package repositories

import (
	"context"
	"database/sql"
	"errors"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
)

type TicketRepository struct {
	DB *sql.DB
}

const ticketColumns = `id, user_id, user_name, route_id, passenger_name, passenger_dni, seat_number, origin, destination, departure_label, price_cents, status, purchased_at`

func scanTicket(row interface{ Scan(...any) error }) (models.Ticket, error) {
	var t models.Ticket
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.UserName,
		&t.RouteID,
		&t.PassengerName,
		&t.PassengerDNI,
		&t.SeatNumber,
		&t.Origin,
		&t.Destination,
		&t.DepartureLabel,
		&t.PriceCents,
		&t.Status,
		&t.PurchasedAt,
	)
	return t, err
}

func (r TicketRepository) Create(ctx context.Context, ticket models.Ticket) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO tickets (id, user_id, user_name, route_id, passenger_name, passenger_dni, seat_number, origin, destination, departure_label, price_cents, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ticket.ID, ticket.UserID, ticket.UserName, ticket.RouteID,
		ticket.PassengerName, ticket.PassengerDNI, ticket.SeatNumber,
		ticket.Origin, ticket.Destination, ticket.DepartureLabel,
		ticket.PriceCents, ticket.Status)
	return err
}

func (r TicketRepository) ByID(ctx context.Context, id string) (models.Ticket, error) {
	t, err := scanTicket(r.DB.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Ticket{}, domain.NotFoundError{Resource: "boleto", Err: err}
		}
		return models.Ticket{}, err
	}
	return t, nil
}

func (r TicketRepository) ByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE user_id = ? ORDER BY purchased_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func (r TicketRepository) All(ctx context.Context) ([]models.Ticket, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY purchased_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTickets(rows)
}

func collectTickets(rows *sql.Rows) ([]models.Ticket, error) {
	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r TicketRepository) UpdateStatus(ctx context.Context, id string, status models.TicketStatus) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE tickets SET status=? WHERE id=?`, status, id)
	if err != nil {
		return err
	}
	return requireRowAffected(res, "boleto")
}
