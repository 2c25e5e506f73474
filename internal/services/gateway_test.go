package services

import (
	"context"
	"math/rand"
	"testing"

	"rutabus/internal/domain/models"
)

func cardMethod(lastFour string) models.PaymentMethod {
	return models.PaymentMethod{
		ID:           "pm-" + lastFour,
		UserID:       "u1",
		Kind:         models.PaymentCard,
		CardLastFour: lastFour,
		CardBrand:    "Visa",
	}
}

func TestSimulatedGatewayForcedOutcomes(t *testing.T) {
	gw := NewSimulatedGateway(0)

	for i := 0; i < 20; i++ {
		res, err := gw.Charge(context.Background(), ChargeRequest{Method: cardMethod("0002")}, nil)
		if err != nil {
			t.Fatalf("charge error: %v", err)
		}
		if res.Approved {
			t.Fatalf("card 0002 must always decline")
		}
		if res.Reason == "" {
			t.Fatalf("decline must carry a reason")
		}
	}

	for _, lastFour := range []string{"1111", "4444"} {
		for i := 0; i < 20; i++ {
			res, err := gw.Charge(context.Background(), ChargeRequest{Method: cardMethod(lastFour)}, nil)
			if err != nil {
				t.Fatalf("charge error: %v", err)
			}
			if !res.Approved {
				t.Fatalf("card %s must always approve", lastFour)
			}
		}
	}
}

func TestSimulatedGatewayProbabilisticGate(t *testing.T) {
	gw := NewSimulatedGateway(0)
	gw.Rand = rand.New(rand.NewSource(42))

	method := models.PaymentMethod{ID: "pm-yape", Kind: models.PaymentYape, PhoneNumber: "987654321"}
	approved, declined := 0, 0
	for i := 0; i < 2000; i++ {
		res, err := gw.Charge(context.Background(), ChargeRequest{Method: method}, nil)
		if err != nil {
			t.Fatalf("charge error: %v", err)
		}
		if res.Approved {
			approved++
		} else {
			declined++
		}
	}
	if declined == 0 {
		t.Fatalf("expected some declines out of 2000 attempts")
	}
	rate := float64(approved) / 2000.0
	if rate < 0.90 || rate > 0.99 {
		t.Fatalf("approval rate %.3f outside expected band around 0.95", rate)
	}
}

func TestSimulatedGatewayPublishesStagesInOrder(t *testing.T) {
	gw := NewSimulatedGateway(0)

	var updates []StageUpdate
	_, err := gw.Charge(context.Background(), ChargeRequest{Method: cardMethod("1111")}, func(u StageUpdate) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("charge error: %v", err)
	}

	wantStages := []PaymentStage{StageValidating, StageAuthorizing, StageProcessing, StageCompleting}
	if len(updates) != len(wantStages) {
		t.Fatalf("got %d stage updates, want %d", len(updates), len(wantStages))
	}
	prev := 0.0
	for i, u := range updates {
		if u.Stage != wantStages[i] {
			t.Fatalf("stage %d = %s, want %s", i, u.Stage, wantStages[i])
		}
		if u.Progress <= prev || u.Progress > 1.0 {
			t.Fatalf("stage %s progress %.2f not increasing within (0,1]", u.Stage, u.Progress)
		}
		if u.Message == "" {
			t.Fatalf("stage %s missing status message", u.Stage)
		}
		prev = u.Progress
	}
}
