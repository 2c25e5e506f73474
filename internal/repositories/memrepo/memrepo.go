// Package memrepo provides in-memory implementations of the repository
// contracts for tests. All stores are safe for concurrent use so workflow
// tests can exercise real races.
package memrepo

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
)

type Store struct {
	mu           sync.Mutex
	users        map[string]userRecord
	routes       map[string]models.Route
	methods      map[string]models.PaymentMethod
	transactions map[string]models.Transaction
	tickets      map[string]models.Ticket

	// FailTicketCreate forces ticket issuance to fail, for exercising the
	// post-payment inconsistency path.
	FailTicketCreate error
}

type userRecord struct {
	user models.User
	hash string
}

func New() *Store {
	return &Store{
		users:        map[string]userRecord{},
		routes:       map[string]models.Route{},
		methods:      map[string]models.PaymentMethod{},
		transactions: map[string]models.Transaction{},
		tickets:      map[string]models.Ticket{},
	}
}

// Users

func (s *Store) Create(ctx context.Context, user models.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if strings.EqualFold(rec.user.Email, user.Email) {
			return domain.ConflictError{Resource: "usuario", Msg: "el correo ya está registrado"}
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = userRecord{user: user, hash: passwordHash}
	return nil
}

func (s *Store) ByEmail(ctx context.Context, email string) (models.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.users {
		if strings.EqualFold(rec.user.Email, email) {
			return rec.user, rec.hash, nil
		}
	}
	return models.User{}, "", domain.NotFoundError{Resource: "usuario"}
}

func (s *Store) ByID(ctx context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "usuario"}
	}
	return rec.user, nil
}

// Routes

func (s *Store) All(ctx context.Context) ([]models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Route, 0, len(s.routes))
	for _, r := range s.routes {
		out = append(out, cloneRoute(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Search(ctx context.Context, origin, destination string) ([]models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Route{}
	for _, r := range s.routes {
		if strings.EqualFold(r.Origin, strings.TrimSpace(origin)) && strings.EqualFold(r.Destination, strings.TrimSpace(destination)) {
			out = append(out, cloneRoute(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) RouteByID(ctx context.Context, id string) (models.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[id]
	if !ok {
		return models.Route{}, domain.NotFoundError{Resource: "ruta"}
	}
	return cloneRoute(r), nil
}

func (s *Store) CreateRoute(ctx context.Context, route models.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	route.NormalizeOccupied()
	s.routes[route.ID] = route
	return nil
}

func (s *Store) UpdateRoute(ctx context.Context, route models.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.routes[route.ID]; !ok {
		return domain.NotFoundError{Resource: "ruta"}
	}
	route.NormalizeOccupied()
	s.routes[route.ID] = route
	return nil
}

func (s *Store) UpdateOccupiedSeats(ctx context.Context, id string, seats []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[id]
	if !ok {
		return domain.NotFoundError{Resource: "ruta"}
	}
	r.OccupiedSeats = append([]int(nil), seats...)
	r.NormalizeOccupied()
	s.routes[id] = r
	return nil
}

func (s *Store) ClaimSeat(ctx context.Context, id string, seat int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[id]
	if !ok {
		return domain.NotFoundError{Resource: "ruta"}
	}
	if !r.SeatValid(seat) {
		return domain.ValidationError{Field: "seat_number", Msg: "asiento fuera de rango"}
	}
	if r.SeatOccupied(seat) {
		return domain.ConflictError{Resource: "asiento", Msg: "el asiento ya está ocupado"}
	}
	r.OccupiedSeats = append(r.OccupiedSeats, seat)
	r.NormalizeOccupied()
	s.routes[id] = r
	return nil
}

func (s *Store) ReleaseSeat(ctx context.Context, id string, seat int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.routes[id]
	if !ok {
		return domain.NotFoundError{Resource: "ruta"}
	}
	kept := make([]int, 0, len(r.OccupiedSeats))
	for _, v := range r.OccupiedSeats {
		if v != seat {
			kept = append(kept, v)
		}
	}
	r.OccupiedSeats = kept
	s.routes[id] = r
	return nil
}

// Payment methods

func (s *Store) SaveMethod(ctx context.Context, method models.PaymentMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if method.IsDefault {
		s.clearDefaultLocked(method.UserID)
	}
	if method.CreatedAt.IsZero() {
		method.CreatedAt = time.Now()
	}
	s.methods[method.ID] = method
	return nil
}

func (s *Store) MethodsByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.PaymentMethod{}
	for _, m := range s.methods {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) MethodByID(ctx context.Context, id string) (models.PaymentMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.methods[id]
	if !ok {
		return models.PaymentMethod{}, domain.NotFoundError{Resource: "método de pago"}
	}
	return m, nil
}

func (s *Store) DeleteMethod(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.methods[id]
	if !ok || m.UserID != userID {
		return domain.NotFoundError{Resource: "método de pago"}
	}
	delete(s.methods, id)
	return nil
}

func (s *Store) SetDefault(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.methods[id]
	if !ok || m.UserID != userID {
		return domain.NotFoundError{Resource: "método de pago"}
	}
	s.clearDefaultLocked(userID)
	m.IsDefault = true
	s.methods[id] = m
	return nil
}

func (s *Store) clearDefaultLocked(userID string) {
	for id, m := range s.methods {
		if m.UserID == userID && m.IsDefault {
			m.IsDefault = false
			s.methods[id] = m
		}
	}
}

// Transactions

func (s *Store) CreateTransaction(ctx context.Context, tx models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	s.transactions[tx.ID] = tx
	return nil
}

func (s *Store) UpdateTransactionStatus(ctx context.Context, id string, status models.TransactionStatus, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return domain.NotFoundError{Resource: "transacción"}
	}
	tx.Status = status
	tx.ErrorMessage = errorMessage
	s.transactions[id] = tx
	return nil
}

func (s *Store) SetTransactionTicket(ctx context.Context, id, ticketID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return domain.NotFoundError{Resource: "transacción"}
	}
	tx.TicketID = ticketID
	s.transactions[id] = tx
	return nil
}

func (s *Store) TransactionsByUser(ctx context.Context, userID string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Transaction{}
	for _, tx := range s.transactions {
		if tx.UserID == userID {
			out = append(out, tx)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AllTransactions(ctx context.Context) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) TransactionByID(ctx context.Context, id string) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx, ok := s.transactions[id]
	if !ok {
		return models.Transaction{}, domain.NotFoundError{Resource: "transacción"}
	}
	return tx, nil
}

// Tickets

func (s *Store) CreateTicket(ctx context.Context, ticket models.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailTicketCreate != nil {
		return s.FailTicketCreate
	}
	if ticket.PurchasedAt.IsZero() {
		ticket.PurchasedAt = time.Now()
	}
	s.tickets[ticket.ID] = ticket
	return nil
}

func (s *Store) TicketByID(ctx context.Context, id string) (models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return models.Ticket{}, domain.NotFoundError{Resource: "boleto"}
	}
	return t, nil
}

func (s *Store) TicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Ticket{}
	for _, t := range s.tickets {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchasedAt.After(out[j].PurchasedAt) })
	return out, nil
}

func (s *Store) AllTickets(ctx context.Context) ([]models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PurchasedAt.After(out[j].PurchasedAt) })
	return out, nil
}

func (s *Store) UpdateTicketStatus(ctx context.Context, id string, status models.TicketStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return domain.NotFoundError{Resource: "boleto"}
	}
	t.Status = status
	s.tickets[id] = t
	return nil
}

func cloneRoute(r models.Route) models.Route {
	r.OccupiedSeats = append([]int(nil), r.OccupiedSeats...)
	return r
}

// Routes adapts Store to the RouteStore contract.
type Routes struct{ S *Store }

func (r Routes) All(ctx context.Context) ([]models.Route, error) { return r.S.All(ctx) }
func (r Routes) Search(ctx context.Context, origin, destination string) ([]models.Route, error) {
	return r.S.Search(ctx, origin, destination)
}
func (r Routes) ByID(ctx context.Context, id string) (models.Route, error) {
	return r.S.RouteByID(ctx, id)
}
func (r Routes) Create(ctx context.Context, route models.Route) error {
	return r.S.CreateRoute(ctx, route)
}
func (r Routes) Update(ctx context.Context, route models.Route) error {
	return r.S.UpdateRoute(ctx, route)
}
func (r Routes) UpdateOccupiedSeats(ctx context.Context, id string, seats []int) error {
	return r.S.UpdateOccupiedSeats(ctx, id, seats)
}
func (r Routes) ClaimSeat(ctx context.Context, id string, seat int) error {
	return r.S.ClaimSeat(ctx, id, seat)
}
func (r Routes) ReleaseSeat(ctx context.Context, id string, seat int) error {
	return r.S.ReleaseSeat(ctx, id, seat)
}

// Tickets adapts Store to the TicketStore contract.
type Tickets struct{ S *Store }

func (t Tickets) Create(ctx context.Context, ticket models.Ticket) error {
	return t.S.CreateTicket(ctx, ticket)
}
func (t Tickets) ByID(ctx context.Context, id string) (models.Ticket, error) {
	return t.S.TicketByID(ctx, id)
}
func (t Tickets) ByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	return t.S.TicketsByUser(ctx, userID)
}
func (t Tickets) All(ctx context.Context) ([]models.Ticket, error) { return t.S.AllTickets(ctx) }
func (t Tickets) UpdateStatus(ctx context.Context, id string, status models.TicketStatus) error {
	return t.S.UpdateTicketStatus(ctx, id, status)
}
