package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rutabus/internal/domain"
	"rutabus/internal/domain/models"
	"rutabus/internal/repositories/memrepo"
)

type checkoutFixture struct {
	store   *memrepo.Store
	svc     *CheckoutService
	routeID string
	userID  string
	// saved methods keyed by stored last-four
	methods map[string]models.PaymentMethod
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	store := memrepo.New()
	ctx := context.Background()

	user := models.User{ID: "u1", Name: "Maria Lopez", Email: "maria@example.com"}
	if err := store.Create(ctx, user, "hash"); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	route := models.Route{
		ID:             "r1",
		Origin:         "Lima",
		Destination:    "Arequipa",
		DepartureLabel: "8:30 AM",
		PriceCents:     9500,
		TotalSeats:     40,
	}
	if err := store.CreateRoute(ctx, route); err != nil {
		t.Fatalf("seed route: %v", err)
	}

	methods := map[string]models.PaymentMethod{}
	for i, lastFour := range []string{"1111", "0002", "4444"} {
		m := models.PaymentMethod{
			ID:           "pm-" + lastFour,
			UserID:       user.ID,
			Kind:         models.PaymentCard,
			CardLastFour: lastFour,
			CardHolder:   "Maria Lopez",
			CardBrand:    "Visa",
			CardExpiry:   "12/30",
			IsDefault:    i == 0,
			CreatedAt:    time.Now().Add(time.Duration(-i) * time.Minute),
		}
		if err := store.SaveMethod(ctx, m); err != nil {
			t.Fatalf("seed method: %v", err)
		}
		methods[lastFour] = m
	}

	svc := NewCheckoutService(store, memrepo.Routes{S: store}, memrepo.Tickets{S: store}, store, NewSimulatedGateway(0), time.Second)
	return &checkoutFixture{store: store, svc: svc, routeID: route.ID, userID: user.ID, methods: methods}
}

func (f *checkoutFixture) startSession(t *testing.T, seat int, lastFour string) Snapshot {
	t.Helper()
	snap, err := f.svc.Initialize(context.Background(), f.userID, f.routeID, seat)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if snap, err = f.svc.SetPassenger(snap.ID, "Maria Lopez", "12345678"); err != nil {
		t.Fatalf("set passenger: %v", err)
	}
	if len(snap.FieldErrors) > 0 {
		t.Fatalf("unexpected field errors: %v", snap.FieldErrors)
	}
	if snap, err = f.svc.SelectPaymentMethod(snap.ID, f.methods[lastFour].ID); err != nil {
		t.Fatalf("select method: %v", err)
	}
	return snap
}

func (f *checkoutFixture) waitTerminal(t *testing.T, sessionID string) Snapshot {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		snap, err := f.svc.Get(sessionID)
		if err != nil {
			t.Fatalf("get session: %v", err)
		}
		if snap.State == StateSuccess || snap.State == StateFailed {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("session %s never reached a terminal state", sessionID)
	return Snapshot{}
}

func TestCheckoutSuccessEndToEnd(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	snap := f.startSession(t, 5, "1111")
	if _, err := f.svc.Confirm(snap.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	final := f.waitTerminal(t, snap.ID)

	if final.State != StateSuccess {
		t.Fatalf("state = %s (%s: %s), want SUCCESS", final.State, final.ErrorCode, final.ErrorMessage)
	}
	if final.TicketID == "" {
		t.Fatalf("success without ticket id")
	}
	if final.Progress != 1.0 {
		t.Fatalf("progress = %.2f, want 1.0", final.Progress)
	}

	ticket, err := f.store.TicketByID(ctx, final.TicketID)
	if err != nil {
		t.Fatalf("issued ticket missing: %v", err)
	}
	if ticket.SeatNumber != 5 || ticket.PassengerName != "Maria Lopez" || ticket.PassengerDNI != "12345678" {
		t.Fatalf("ticket fields wrong: %+v", ticket)
	}
	if ticket.Origin != "Lima" || ticket.Destination != "Arequipa" || ticket.PriceCents != 9500 {
		t.Fatalf("route snapshot wrong: %+v", ticket)
	}
	if ticket.Status != models.TicketActive {
		t.Fatalf("ticket status = %s, want ACTIVE", ticket.Status)
	}

	route, err := f.store.RouteByID(ctx, f.routeID)
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if len(route.OccupiedSeats) != 1 || route.OccupiedSeats[0] != 5 {
		t.Fatalf("occupied seats = %v, want [5]", route.OccupiedSeats)
	}
	for _, s := range route.AvailableSeats() {
		if s == 5 {
			t.Fatalf("seat 5 still listed as available")
		}
	}

	txs, err := f.store.TransactionsByUser(ctx, f.userID)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want exactly 1", len(txs))
	}
	tx := txs[0]
	if tx.Status != models.TxCompleted {
		t.Fatalf("transaction status = %s, want COMPLETED", tx.Status)
	}
	if tx.TicketID != ticket.ID {
		t.Fatalf("transaction not linked to ticket: %q", tx.TicketID)
	}
	if tx.AmountCents != 9500 || tx.Origin != "Lima" || tx.Destination != "Arequipa" {
		t.Fatalf("transaction fields wrong: %+v", tx)
	}
}

func TestCheckoutDeclineEndToEnd(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	snap := f.startSession(t, 5, "0002")
	if _, err := f.svc.Confirm(snap.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	final := f.waitTerminal(t, snap.ID)

	if final.State != StateFailed {
		t.Fatalf("state = %s, want FAILED", final.State)
	}
	if final.ErrorCode != FailPaymentDeclined {
		t.Fatalf("error code = %s, want %s", final.ErrorCode, FailPaymentDeclined)
	}
	if final.ErrorMessage == "" {
		t.Fatalf("decline must carry a reason")
	}
	if final.TicketID != "" {
		t.Fatalf("failed session must not carry a ticket")
	}

	route, _ := f.store.RouteByID(ctx, f.routeID)
	if len(route.OccupiedSeats) != 0 {
		t.Fatalf("occupied seats = %v, want [] after decline", route.OccupiedSeats)
	}

	txs, _ := f.store.TransactionsByUser(ctx, f.userID)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want exactly 1", len(txs))
	}
	if txs[0].Status != models.TxFailed {
		t.Fatalf("transaction status = %s, want FAILED", txs[0].Status)
	}
	if txs[0].ErrorMessage == "" {
		t.Fatalf("failed transaction must record the reason")
	}

	tickets, _ := f.store.TicketsByUser(ctx, f.userID)
	if len(tickets) != 0 {
		t.Fatalf("decline must not issue tickets, got %d", len(tickets))
	}
}

func TestCheckoutDeclineDeterminism(t *testing.T) {
	for i := 0; i < 3; i++ {
		f := newCheckoutFixture(t)
		snap := f.startSession(t, 7, "0002")
		if _, err := f.svc.Confirm(snap.ID); err != nil {
			t.Fatalf("confirm: %v", err)
		}
		if final := f.waitTerminal(t, snap.ID); final.State != StateFailed {
			t.Fatalf("attempt %d: card 0002 must always fail, got %s", i, final.State)
		}
	}
	for _, lastFour := range []string{"1111", "4444"} {
		for i := 0; i < 3; i++ {
			f := newCheckoutFixture(t)
			snap := f.startSession(t, 7, lastFour)
			if _, err := f.svc.Confirm(snap.ID); err != nil {
				t.Fatalf("confirm: %v", err)
			}
			if final := f.waitTerminal(t, snap.ID); final.State != StateSuccess {
				t.Fatalf("attempt %d: card %s must always succeed, got %s (%s)", i, lastFour, final.State, final.ErrorMessage)
			}
		}
	}
}

// Two sessions racing for the same seat: exactly one may win, and the loser
// must observe the concurrent-take failure, not a double booking.
func TestCheckoutSeatExclusivity(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	a := f.startSession(t, 5, "1111")
	b := f.startSession(t, 5, "4444")

	var wg sync.WaitGroup
	for _, id := range []string{a.ID, b.ID} {
		wg.Add(1)
		go func(sessionID string) {
			defer wg.Done()
			if _, err := f.svc.Confirm(sessionID); err != nil {
				t.Errorf("confirm %s: %v", sessionID, err)
			}
		}(id)
	}
	wg.Wait()

	finalA := f.waitTerminal(t, a.ID)
	finalB := f.waitTerminal(t, b.ID)

	successes, losers := 0, 0
	for _, snap := range []Snapshot{finalA, finalB} {
		switch snap.State {
		case StateSuccess:
			successes++
		case StateFailed:
			if snap.ErrorCode != FailSeatTaken {
				t.Fatalf("loser error code = %s, want %s", snap.ErrorCode, FailSeatTaken)
			}
			losers++
		}
	}
	if successes != 1 || losers != 1 {
		t.Fatalf("got %d successes and %d seat-taken failures, want exactly 1 each", successes, losers)
	}

	route, _ := f.store.RouteByID(ctx, f.routeID)
	if len(route.OccupiedSeats) != 1 || route.OccupiedSeats[0] != 5 {
		t.Fatalf("occupied seats = %v, want [5]", route.OccupiedSeats)
	}

	tickets, _ := f.store.TicketsByUser(ctx, f.userID)
	if len(tickets) != 1 {
		t.Fatalf("got %d tickets, want exactly 1", len(tickets))
	}
}

func TestConfirmBlocksOnFieldErrors(t *testing.T) {
	f := newCheckoutFixture(t)

	snap, err := f.svc.Initialize(context.Background(), f.userID, f.routeID, 3)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	// No passenger data entered; the default method is pre-selected.
	snap, err = f.svc.Confirm(snap.ID)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if snap.State != StateReadyToConfirm {
		t.Fatalf("state = %s, want READY_TO_CONFIRM with field errors", snap.State)
	}
	if snap.FieldErrors["passenger_name"] == "" || snap.FieldErrors["passenger_dni"] == "" {
		t.Fatalf("missing field errors: %v", snap.FieldErrors)
	}

	txs, _ := f.store.TransactionsByUser(context.Background(), f.userID)
	if len(txs) != 0 {
		t.Fatalf("field errors must not create transactions, got %d", len(txs))
	}
}

func TestConfirmTwiceRejected(t *testing.T) {
	f := newCheckoutFixture(t)

	snap := f.startSession(t, 9, "1111")
	if _, err := f.svc.Confirm(snap.ID); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	if _, err := f.svc.Confirm(snap.ID); !domain.IsConflict(err) {
		t.Fatalf("second confirm should conflict, got %v", err)
	}
	f.waitTerminal(t, snap.ID)

	txs, _ := f.store.TransactionsByUser(context.Background(), f.userID)
	if len(txs) != 1 {
		t.Fatalf("double confirm must not double charge, got %d transactions", len(txs))
	}
}

func TestInitializeFailures(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Initialize(ctx, "nobody", f.routeID, 5); !domain.IsUnauthenticated(err) {
		t.Fatalf("unknown user: got %v, want unauthenticated", err)
	}
	if _, err := f.svc.Initialize(ctx, f.userID, "missing-route", 5); !domain.IsNotFound(err) {
		t.Fatalf("unknown route: got %v, want not found", err)
	}
	if _, err := f.svc.Initialize(ctx, f.userID, f.routeID, 41); !domain.IsValidation(err) {
		t.Fatalf("seat out of range: got %v, want validation error", err)
	}

	if err := f.store.UpdateOccupiedSeats(ctx, f.routeID, []int{5}); err != nil {
		t.Fatalf("occupy seat: %v", err)
	}
	if _, err := f.svc.Initialize(ctx, f.userID, f.routeID, 5); !domain.IsConflict(err) {
		t.Fatalf("occupied seat: got %v, want conflict", err)
	}
}

func TestInitializePreselectsDefaultMethod(t *testing.T) {
	f := newCheckoutFixture(t)

	snap, err := f.svc.Initialize(context.Background(), f.userID, f.routeID, 2)
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if snap.SelectedMethod != f.methods["1111"].ID {
		t.Fatalf("selected method = %q, want default %q", snap.SelectedMethod, f.methods["1111"].ID)
	}
	if len(snap.Methods) != 3 {
		t.Fatalf("got %d methods, want 3", len(snap.Methods))
	}
}

func TestPostPaymentInconsistencySurfacedDistinctly(t *testing.T) {
	f := newCheckoutFixture(t)
	ctx := context.Background()
	f.store.FailTicketCreate = errors.New("store write rejected")

	snap := f.startSession(t, 5, "1111")
	if _, err := f.svc.Confirm(snap.ID); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	final := f.waitTerminal(t, snap.ID)

	if final.State != StateFailed {
		t.Fatalf("state = %s, want FAILED", final.State)
	}
	if final.ErrorCode != FailInconsistency {
		t.Fatalf("error code = %s, want %s (never a plain decline)", final.ErrorCode, FailInconsistency)
	}

	txs, _ := f.store.TransactionsByUser(ctx, f.userID)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].Status != models.TxCompleted {
		t.Fatalf("charged transaction must stay COMPLETED, got %s", txs[0].Status)
	}
	if txs[0].ErrorMessage == "" {
		t.Fatalf("reconciliation note missing on transaction")
	}
}

func TestDefaultMethodUniquenessUnderSavesAndSetDefault(t *testing.T) {
	store := memrepo.New()
	ctx := context.Background()

	save := func(id string, def bool) {
		m := models.PaymentMethod{ID: id, UserID: "u1", Kind: models.PaymentYape, PhoneNumber: "987654321", AccountName: "Maria Lopez", IsDefault: def}
		if err := store.SaveMethod(ctx, m); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}
	countDefaults := func() int {
		methods, err := store.MethodsByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		n := 0
		for _, m := range methods {
			if m.IsDefault {
				n++
			}
		}
		return n
	}

	save("a", true)
	save("b", true)
	save("c", false)
	if n := countDefaults(); n != 1 {
		t.Fatalf("after saves: %d defaults, want at most 1", n)
	}
	if err := store.SetDefault(ctx, "u1", "c"); err != nil {
		t.Fatalf("set default: %v", err)
	}
	if n := countDefaults(); n != 1 {
		t.Fatalf("after set default: %d defaults, want exactly 1", n)
	}
	c, _ := store.MethodByID(ctx, "c")
	if !c.IsDefault {
		t.Fatalf("method c should be the default")
	}
}
