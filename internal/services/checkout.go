package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
	"rutabus/internal/repositories"
	"rutabus/internal/utils"
	"rutabus/internal/validate"

	"github.com/google/uuid"
)

// CheckoutState is the purchase-session state machine. Success and Failed
// are terminal; retrying means starting a new session.
type CheckoutState string

const (
	StateInitializing      CheckoutState = "INITIALIZING"
	StateReadyToConfirm    CheckoutState = "READY_TO_CONFIRM"
	StateValidating        CheckoutState = "VALIDATING"
	StateAuthorizing       CheckoutState = "AUTHORIZING"
	StateProcessingPayment CheckoutState = "PROCESSING_PAYMENT"
	StateCompleting        CheckoutState = "COMPLETING"
	StateSuccess           CheckoutState = "SUCCESS"
	StateFailed            CheckoutState = "FAILED"
)

// Failure codes surfaced to the presentation layer.
const (
	FailSeatUnavailable = "seat_unavailable"
	FailSeatTaken       = "seat_taken_concurrently"
	FailRouteNotFound   = "route_not_found"
	FailUnauthenticated = "user_not_authenticated"
	FailPaymentDeclined = "payment_declined"
	FailTransient       = "transient_store_error"
	FailInconsistency   = "post_payment_inconsistency"
)

// Snapshot is the immutable view of a session handed to the presentation
// layer. FieldErrors are recoverable; ErrorCode/ErrorMessage are terminal.
type Snapshot struct {
	ID             string                 `json:"id"`
	UserID         string                 `json:"-"`
	State          CheckoutState          `json:"state"`
	Route          models.Route           `json:"route"`
	SeatNumber     int                    `json:"seat_number"`
	PassengerName  string                 `json:"passenger_name"`
	PassengerDNI   string                 `json:"passenger_dni"`
	FieldErrors    map[string]string      `json:"field_errors,omitempty"`
	Methods        []models.PaymentMethod `json:"methods"`
	SelectedMethod string                 `json:"selected_method,omitempty"`
	Progress       float64                `json:"progress"`
	StatusMessage  string                 `json:"status_message,omitempty"`
	TicketID       string                 `json:"ticket_id,omitempty"`
	TransactionID  string                 `json:"transaction_id,omitempty"`
	ErrorCode      string                 `json:"error_code,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
}

type session struct {
	mu sync.Mutex

	id         string
	user       models.User
	route      models.Route
	seat       int
	passenger  string
	dni        string
	fieldErrs  map[string]string
	methods    []models.PaymentMethod
	selected   *models.PaymentMethod
	state      CheckoutState
	progress   float64
	statusMsg  string
	ticketID   string
	txID       string
	errCode    string
	errMsg     string
	confirming bool
}

// CheckoutService orchestrates one purchase session per checkout: claim the
// seat, charge through the gateway, issue the ticket. Dependencies are
// injected so tests run against in-memory stores and a zero-delay gateway.
type CheckoutService struct {
	Users    repositories.UserStore
	Routes   repositories.RouteStore
	Tickets  repositories.TicketStore
	Payments repositories.PaymentStore
	Gateway  Gateway
	// StoreTimeout bounds each remote store call during confirm.
	StoreTimeout time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

func NewCheckoutService(users repositories.UserStore, routes repositories.RouteStore, tickets repositories.TicketStore, payments repositories.PaymentStore, gateway Gateway, storeTimeout time.Duration) *CheckoutService {
	if storeTimeout <= 0 {
		storeTimeout = 10 * time.Second
	}
	return &CheckoutService{
		Users:        users,
		Routes:       routes,
		Tickets:      tickets,
		Payments:     payments,
		Gateway:      gateway,
		StoreTimeout: storeTimeout,
		sessions:     map[string]*session{},
	}
}

// Initialize loads the user, the route and the saved payment methods
// (pre-selecting the default), and checks seat availability. The seat check
// here is best-effort; the binding claim happens inside Confirm.
func (s *CheckoutService) Initialize(ctx context.Context, userID, routeID string, seat int) (Snapshot, error) {
	user, err := s.Users.ByID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return Snapshot{}, domain.UnauthenticatedError{Msg: "inicia sesión para comprar", Err: err}
		}
		return Snapshot{}, err
	}

	route, err := s.Routes.ByID(ctx, routeID)
	if err != nil {
		return Snapshot{}, err
	}
	if !route.SeatValid(seat) {
		return Snapshot{}, domain.ValidationError{Field: "seat_number", Msg: "asiento fuera de rango"}
	}
	if route.SeatOccupied(seat) {
		return Snapshot{}, domain.ConflictError{Resource: "asiento", Msg: "el asiento ya está ocupado"}
	}

	methods, err := s.Payments.MethodsByUser(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}

	sess := &session{
		id:        uuid.NewString(),
		user:      user,
		route:     route,
		seat:      seat,
		methods:   methods,
		fieldErrs: map[string]string{},
		state:     StateReadyToConfirm,
	}
	for i := range methods {
		if methods[i].IsDefault {
			m := methods[i]
			sess.selected = &m
			break
		}
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	return sess.snapshot(), nil
}

// Get returns the current snapshot for polling.
func (s *CheckoutService) Get(sessionID string) (Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked(), nil
}

// SetPassenger stores the passenger form. Invalid fields are attached as
// field errors instead of failing the session.
func (s *CheckoutService) SetPassenger(sessionID, name, dni string) (Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state != StateReadyToConfirm {
		return sess.snapshotLocked(), domain.ConflictError{Resource: "sesión", Msg: "la sesión ya no acepta cambios"}
	}

	sess.passenger = name
	sess.dni = dni
	delete(sess.fieldErrs, "passenger_name")
	delete(sess.fieldErrs, "passenger_dni")
	if err := validate.Name(name); err != nil {
		sess.fieldErrs["passenger_name"] = err.Error()
	}
	if err := validate.DNI(dni); err != nil {
		sess.fieldErrs["passenger_dni"] = err.Error()
	}
	return sess.snapshotLocked(), nil
}

// SelectPaymentMethod picks one of the session user's saved methods.
func (s *CheckoutService) SelectPaymentMethod(sessionID, methodID string) (Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.state != StateReadyToConfirm {
		return sess.snapshotLocked(), domain.ConflictError{Resource: "sesión", Msg: "la sesión ya no acepta cambios"}
	}

	for i := range sess.methods {
		if sess.methods[i].ID == methodID {
			m := sess.methods[i]
			sess.selected = &m
			delete(sess.fieldErrs, "payment_method")
			return sess.snapshotLocked(), nil
		}
	}
	return sess.snapshotLocked(), domain.NotFoundError{Resource: "método de pago"}
}

// Confirm re-validates the form and, when clean, launches the purchase as
// an independent task. Progress is observed through Get. A session in
// flight or finished cannot be confirmed again.
func (s *CheckoutService) Confirm(sessionID string) (Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	if sess.confirming || sess.state != StateReadyToConfirm {
		snap := sess.snapshotLocked()
		sess.mu.Unlock()
		return snap, domain.ConflictError{Resource: "sesión", Msg: "la compra ya fue confirmada"}
	}

	sess.fieldErrs = map[string]string{}
	if err := validate.Name(sess.passenger); err != nil {
		sess.fieldErrs["passenger_name"] = err.Error()
	}
	if err := validate.DNI(sess.dni); err != nil {
		sess.fieldErrs["passenger_dni"] = err.Error()
	}
	if sess.selected == nil {
		sess.fieldErrs["payment_method"] = "selecciona un método de pago"
	}
	if len(sess.fieldErrs) > 0 {
		snap := sess.snapshotLocked()
		sess.mu.Unlock()
		return snap, nil
	}

	sess.confirming = true
	sess.state = StateValidating
	sess.statusMsg = "Validando datos de pago..."
	snap := sess.snapshotLocked()
	sess.mu.Unlock()

	go s.runPurchase(sess)

	return snap, nil
}

// runPurchase is the critical path: atomic seat claim, pending transaction,
// gateway charge, then ticket issuance or compensation. It runs detached
// from the confirming request, so it carries its own timeouts.
func (s *CheckoutService) runPurchase(sess *session) {
	route := sess.route
	seat := sess.seat
	user := sess.user
	method := *sess.selected
	description := fmt.Sprintf("Pasaje %s → %s, asiento %d", route.Origin, route.Destination, seat)

	// Claim the seat before charging. The claim is append-if-absent under
	// the store's row lock, so two concurrent purchases of the same seat
	// cannot both pass.
	if err := s.withTimeout(func(ctx context.Context) error {
		return s.Routes.ClaimSeat(ctx, route.ID, seat)
	}); err != nil {
		switch {
		case domain.IsConflict(err):
			sess.fail(FailSeatTaken, "el asiento acaba de ser ocupado, elige otro")
		case domain.IsNotFound(err):
			sess.fail(FailRouteNotFound, "la ruta ya no está disponible")
		case domain.IsValidation(err):
			sess.fail(FailSeatUnavailable, err.Error())
		default:
			sess.fail(FailTransient, "no pudimos reservar el asiento, inténtalo nuevamente")
		}
		return
	}

	tx := models.Transaction{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		UserName:      user.Name,
		MethodID:      method.ID,
		MethodKind:    method.Kind,
		MethodDisplay: method.Display(),
		AmountCents:   route.PriceCents,
		Status:        models.TxPending,
		Origin:        route.Origin,
		Destination:   route.Destination,
		Description:   description,
		CreatedAt:     time.Now(),
	}
	if err := s.withTimeout(func(ctx context.Context) error {
		return s.Payments.CreateTransaction(ctx, tx)
	}); err != nil {
		s.releaseSeat(route.ID, seat, tx.ID)
		sess.fail(FailTransient, "no pudimos iniciar el pago, inténtalo nuevamente")
		return
	}
	sess.setTransaction(tx.ID)

	result, err := s.Gateway.Charge(context.Background(), ChargeRequest{
		AmountCents: tx.AmountCents,
		Method:      method,
		Description: description,
	}, sess.publishStage)
	if err != nil {
		// Outcome unknown; do not retry the charge (it is not idempotent).
		utils.LogEvent("", "checkout", "charge_error", fmt.Sprintf("tx=%s err=%v", tx.ID, err))
		s.updateTransaction(tx.ID, models.TxFailed, "error de comunicación con la pasarela")
		s.releaseSeat(route.ID, seat, tx.ID)
		sess.fail(FailTransient, "no pudimos contactar a la pasarela de pago")
		return
	}

	if !result.Approved {
		s.updateTransaction(tx.ID, models.TxFailed, result.Reason)
		s.releaseSeat(route.ID, seat, tx.ID)
		sess.fail(FailPaymentDeclined, result.Reason)
		return
	}

	if err := s.withTimeout(func(ctx context.Context) error {
		return s.Payments.UpdateTransactionStatus(ctx, tx.ID, models.TxCompleted, "")
	}); err != nil {
		utils.LogEvent("", "checkout", "reconciliation", fmt.Sprintf("tx=%s charge approved but status update failed: %v", tx.ID, err))
	}

	ticket := models.Ticket{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		UserName:       user.Name,
		RouteID:        route.ID,
		PassengerName:  sess.passenger,
		PassengerDNI:   sess.dni,
		SeatNumber:     seat,
		Origin:         route.Origin,
		Destination:    route.Destination,
		DepartureLabel: route.DepartureLabel,
		PriceCents:     route.PriceCents,
		Status:         models.TicketActive,
		PurchasedAt:    time.Now(),
	}
	if err := s.withTimeout(func(ctx context.Context) error {
		return s.Tickets.Create(ctx, ticket)
	}); err != nil {
		// Money moved but no ticket was issued. This must never look like
		// an ordinary decline: flag the transaction for reconciliation and
		// surface the inconsistency. The seat stays claimed.
		note := "pago completado sin boleto emitido, requiere conciliación manual"
		utils.LogEvent("", "checkout", "reconciliation", fmt.Sprintf("tx=%s ticket issuance failed: %v", tx.ID, err))
		s.updateTransaction(tx.ID, models.TxCompleted, note)
		sess.fail(FailInconsistency, "tu pago fue procesado pero no pudimos emitir el boleto; nuestro equipo lo resolverá")
		return
	}

	if err := s.withTimeout(func(ctx context.Context) error {
		return s.Payments.SetTransactionTicket(ctx, tx.ID, ticket.ID)
	}); err != nil {
		utils.LogEvent("", "checkout", "reconciliation", fmt.Sprintf("tx=%s ticket=%s link failed: %v", tx.ID, ticket.ID, err))
	}

	sess.succeed(ticket.ID)
}

func (s *CheckoutService) withTimeout(fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.StoreTimeout)
	defer cancel()
	err := fn(ctx)
	if err != nil && ctx.Err() != nil {
		return domain.TransientError{Op: "store", Err: err}
	}
	return err
}

func (s *CheckoutService) updateTransaction(id string, status models.TransactionStatus, msg string) {
	if err := s.withTimeout(func(ctx context.Context) error {
		return s.Payments.UpdateTransactionStatus(ctx, id, status, msg)
	}); err != nil {
		utils.LogEvent("", "checkout", "reconciliation", fmt.Sprintf("tx=%s status update to %s failed: %v", id, status, err))
	}
}

func (s *CheckoutService) releaseSeat(routeID string, seat int, txID string) {
	if err := s.withTimeout(func(ctx context.Context) error {
		return s.Routes.ReleaseSeat(ctx, routeID, seat)
	}); err != nil {
		utils.LogEvent("", "checkout", "reconciliation", fmt.Sprintf("tx=%s seat %d on route %s not released: %v", txID, seat, routeID, err))
	}
}

func (s *CheckoutService) lookup(sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.NotFoundError{Resource: "sesión de compra"}
	}
	return sess, nil
}

func (sess *session) publishStage(update StageUpdate) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	switch update.Stage {
	case StageValidating:
		sess.state = StateValidating
	case StageAuthorizing:
		sess.state = StateAuthorizing
	case StageProcessing:
		sess.state = StateProcessingPayment
	case StageCompleting:
		sess.state = StateCompleting
	}
	sess.progress = update.Progress
	sess.statusMsg = update.Message
}

func (sess *session) setTransaction(txID string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.txID = txID
}

func (sess *session) succeed(ticketID string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state = StateSuccess
	sess.progress = 1.0
	sess.statusMsg = "¡Pago exitoso! Tu boleto está listo."
	sess.ticketID = ticketID
}

func (sess *session) fail(code, message string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state = StateFailed
	sess.errCode = code
	sess.errMsg = message
	sess.statusMsg = message
}

func (sess *session) snapshot() Snapshot {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshotLocked()
}

func (sess *session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:            sess.id,
		UserID:        sess.user.ID,
		State:         sess.state,
		Route:         sess.route,
		SeatNumber:    sess.seat,
		PassengerName: sess.passenger,
		PassengerDNI:  sess.dni,
		Methods:       append([]models.PaymentMethod(nil), sess.methods...),
		Progress:      sess.progress,
		StatusMessage: sess.statusMsg,
		TicketID:      sess.ticketID,
		TransactionID: sess.txID,
		ErrorCode:     sess.errCode,
		ErrorMessage:  sess.errMsg,
	}
	if sess.selected != nil {
		snap.SelectedMethod = sess.selected.ID
	}
	if len(sess.fieldErrs) > 0 {
		snap.FieldErrors = map[string]string{}
		for k, v := range sess.fieldErrs {
			snap.FieldErrors[k] = v
		}
	}
	return snap
}
