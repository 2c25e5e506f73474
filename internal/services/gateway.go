package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"rutabus/internal/domain/models"
)

type PaymentStage string

const (
	StageValidating  PaymentStage = "VALIDATING"
	StageAuthorizing PaymentStage = "AUTHORIZING"
	StageProcessing  PaymentStage = "PROCESSING"
	StageCompleting  PaymentStage = "COMPLETING"
)

// StageUpdate is published before each stage so the presentation layer can
// render live progress. Progress runs 0.0 to 1.0.
type StageUpdate struct {
	Stage    PaymentStage
	Progress float64
	Message  string
}

type ChargeRequest struct {
	AmountCents int64
	Method      models.PaymentMethod
	Description string
}

// ChargeResult reports the gateway's decision. A declined charge is a
// normal result, not an error; errors mean the outcome is unknown.
type ChargeResult struct {
	Approved bool
	Reason   string
}

// Gateway is the payment-processor capability. The workflow never encodes
// gateway rules itself.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest, progress func(StageUpdate)) (ChargeResult, error)
}

var simulatedStages = []StageUpdate{
	{Stage: StageValidating, Progress: 0.25, Message: "Validando datos de pago..."},
	{Stage: StageAuthorizing, Progress: 0.50, Message: "Autorizando con el emisor..."},
	{Stage: StageProcessing, Progress: 0.75, Message: "Procesando el pago..."},
	{Stage: StageCompleting, Progress: 0.95, Message: "Completando la operación..."},
}

// SimulatedGateway stands in for a real processor. Stored card numbers
// ending in 0002 always decline and 1111/4444 always approve, so the
// decline path stays deterministically testable; everything else approves
// with probability ApproveProb.
type SimulatedGateway struct {
	// StageDelay is the hold at each stage, only to make asynchronous
	// progress observable. Zero skips the hold.
	StageDelay  time.Duration
	ApproveProb float64
	Rand        *rand.Rand

	mu sync.Mutex
}

func NewSimulatedGateway(stageDelay time.Duration) *SimulatedGateway {
	return &SimulatedGateway{
		StageDelay:  stageDelay,
		ApproveProb: 0.95,
		Rand:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest, progress func(StageUpdate)) (ChargeResult, error) {
	for _, stage := range simulatedStages {
		if progress != nil {
			progress(stage)
		}
		if g.StageDelay > 0 {
			select {
			case <-time.After(g.StageDelay):
			case <-ctx.Done():
				return ChargeResult{}, ctx.Err()
			}
		}
	}
	return g.decide(req), nil
}

func (g *SimulatedGateway) decide(req ChargeRequest) ChargeResult {
	if req.Method.Kind == models.PaymentCard {
		switch req.Method.CardLastFour {
		case "0002":
			return ChargeResult{Approved: false, Reason: "Tarjeta rechazada por el emisor"}
		case "1111", "4444":
			return ChargeResult{Approved: true}
		}
	}
	if g.roll() < g.approveProb() {
		return ChargeResult{Approved: true}
	}
	return ChargeResult{Approved: false, Reason: "El pago no pudo ser procesado, inténtalo nuevamente"}
}

func (g *SimulatedGateway) approveProb() float64 {
	if g.ApproveProb <= 0 {
		return 0.95
	}
	return g.ApproveProb
}

func (g *SimulatedGateway) roll() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Rand == nil {
		g.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return g.Rand.Float64()
}
