package services

import (
	"context"
	"testing"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
	"rutabus/internal/repositories/memrepo"
)

func TestMarkUsedOneWay(t *testing.T) {
	store := memrepo.New()
	ctx := context.Background()
	if err := store.CreateTicket(ctx, models.Ticket{ID: "t1", UserID: "u1", SeatNumber: 5, Status: models.TicketActive}); err != nil {
		t.Fatalf("seed ticket: %v", err)
	}

	svc := TicketService{Tickets: memrepo.Tickets{S: store}}

	ticket, err := svc.MarkUsed(ctx, "t1")
	if err != nil {
		t.Fatalf("mark used: %v", err)
	}
	if ticket.Status != models.TicketUsed {
		t.Fatalf("status = %s, want USED", ticket.Status)
	}

	// USED is terminal.
	if _, err := svc.MarkUsed(ctx, "t1"); !domain.IsConflict(err) {
		t.Fatalf("second mark: got %v, want conflict", err)
	}

	if _, err := svc.MarkUsed(ctx, "ghost"); !domain.IsNotFound(err) {
		t.Fatalf("missing ticket: got %v, want not found", err)
	}
}
