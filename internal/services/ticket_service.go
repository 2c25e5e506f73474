package services

import (
	"context"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
	"rutabus/internal/repositories"
)

type TicketService struct {
	Tickets repositories.TicketStore
}

func (s TicketService) ByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	return s.Tickets.ByUser(ctx, userID)
}

func (s TicketService) All(ctx context.Context) ([]models.Ticket, error) {
	return s.Tickets.All(ctx)
}

func (s TicketService) ByID(ctx context.Context, id string) (models.Ticket, error) {
	return s.Tickets.ByID(ctx, id)
}

// MarkUsed transitions a ticket ACTIVE→USED. There is no reverse
// transition.
func (s TicketService) MarkUsed(ctx context.Context, id string) (models.Ticket, error) {
	ticket, err := s.Tickets.ByID(ctx, id)
	if err != nil {
		return models.Ticket{}, err
	}
	if ticket.Status == models.TicketUsed {
		return models.Ticket{}, domain.ConflictError{Resource: "boleto", Msg: "el boleto ya fue usado"}
	}
	if err := s.Tickets.UpdateStatus(ctx, id, models.TicketUsed); err != nil {
		return models.Ticket{}, err
	}
	ticket.Status = models.TicketUsed
	return ticket, nil
}
