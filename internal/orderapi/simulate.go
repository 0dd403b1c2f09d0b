package orderapi

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var trackingStatuses = []string{
	StatusPending,
	StatusShipped,
	StatusInTransit,
	StatusDelivered,
	StatusError,
}

// SimulatedGateway returns randomized canned outcomes instead of making
// network calls: cancellations succeed 90% of the time, tracking picks a
// uniform random status. Enabled by the order_api.simulate config switch.
type SimulatedGateway struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedGateway builds a simulated gateway with a time-based seed.
func NewSimulatedGateway() *SimulatedGateway {
	return NewSeededSimulatedGateway(time.Now().UnixNano())
}

// NewSeededSimulatedGateway builds a simulated gateway with a fixed seed,
// giving tests reproducible outcome sequences.
func NewSeededSimulatedGateway(seed int64) *SimulatedGateway {
	return &SimulatedGateway{rng: rand.New(rand.NewSource(seed))}
}

// Cancel fakes a cancellation, succeeding most of the time.
func (g *SimulatedGateway) Cancel(_ context.Context, orderID string) Outcome {
	start := time.Now()
	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()

	var outcome Outcome
	if roll < 0.9 {
		outcome = Outcome{Status: StatusOK, OrderID: orderID, Message: "Simulated cancellation successful."}
	} else {
		outcome = Outcome{Status: StatusError, OrderID: orderID, Message: "Simulated cancellation failure."}
	}
	observeCall("cancel", outcome.Status, time.Since(start))
	return outcome
}

// Track fakes a tracking lookup with a uniformly random status.
func (g *SimulatedGateway) Track(_ context.Context, orderID string) Outcome {
	start := time.Now()
	g.mu.Lock()
	status := trackingStatuses[g.rng.Intn(len(trackingStatuses))]
	g.mu.Unlock()

	outcome := Outcome{
		Status:  status,
		OrderID: orderID,
		Message: fmt.Sprintf("Simulated tracking: %s.", status),
	}
	observeCall("track", outcome.Status, time.Since(start))
	return outcome
}
