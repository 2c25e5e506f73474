package repositories

import (
	"context"

	"rutabus/internal/domain/models"
)

// The stores below are the only persistence contracts the services depend
// on. SQL implementations live in this package; in-memory doubles for
// workflow tests live in memrepo.

type UserStore interface {
	Create(ctx context.Context, user models.User, passwordHash string) error
	ByEmail(ctx context.Context, email string) (models.User, string, error)
	ByID(ctx context.Context, id string) (models.User, error)
}

type RouteStore interface {
	All(ctx context.Context) ([]models.Route, error)
	Search(ctx context.Context, origin, destination string) ([]models.Route, error)
	ByID(ctx context.Context, id string) (models.Route, error)
	Create(ctx context.Context, route models.Route) error
	Update(ctx context.Context, route models.Route) error
	UpdateOccupiedSeats(ctx context.Context, id string, seats []int) error
	// ClaimSeat appends the seat to the route's occupied list only if it is
	// not already present, atomically. A lost race returns ConflictError.
	ClaimSeat(ctx context.Context, id string, seat int) error
	// ReleaseSeat removes a previously claimed seat (decline compensation).
	ReleaseSeat(ctx context.Context, id string, seat int) error
}

type TicketStore interface {
	Create(ctx context.Context, ticket models.Ticket) error
	ByID(ctx context.Context, id string) (models.Ticket, error)
	ByUser(ctx context.Context, userID string) ([]models.Ticket, error)
	All(ctx context.Context) ([]models.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status models.TicketStatus) error
}

type PaymentStore interface {
	SaveMethod(ctx context.Context, method models.PaymentMethod) error
	MethodsByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error)
	MethodByID(ctx context.Context, id string) (models.PaymentMethod, error)
	DeleteMethod(ctx context.Context, userID, id string) error
	// SetDefault clears any other default for the user before flagging the
	// given method, in one transaction.
	SetDefault(ctx context.Context, userID, id string) error

	CreateTransaction(ctx context.Context, tx models.Transaction) error
	UpdateTransactionStatus(ctx context.Context, id string, status models.TransactionStatus, errorMessage string) error
	SetTransactionTicket(ctx context.Context, id, ticketID string) error
	TransactionsByUser(ctx context.Context, userID string) ([]models.Transaction, error)
	AllTransactions(ctx context.Context) ([]models.Transaction, error)
	TransactionByID(ctx context.Context, id string) (models.Transaction, error)
}
