package agent

import (
	"context"
	"strings"
	"time"

	"zenbot/internal/logging"
	"zenbot/internal/orderapi"
	"zenbot/internal/policy"
)

// Baseline routes by keyword matching: a single pass, no backtracking.
// Tracking has no policy gate; cancellation runs through the policy engine
// before the gateway is touched.
type Baseline struct {
	policy  *policy.Engine
	gateway orderapi.Gateway
	logger  logging.Logger
}

// NewBaseline builds the rule-based router.
func NewBaseline(deps Deps) *Baseline {
	return &Baseline{
		policy:  deps.Policy,
		gateway: deps.Gateway,
		logger:  logging.OrNop(deps.Logger),
	}
}

// Run implements Router.
func (b *Baseline) Run(ctx context.Context, userInput string, order OrderContext) (Result, error) {
	start := time.Now()

	if err := validateInput(userInput, order); err != nil {
		return Result{}, err
	}

	b.logger.Info("baseline agent handling input: %s", userInput)
	text := strings.ToLower(userInput)

	var result Result
	switch {
	case strings.Contains(text, "track") || strings.Contains(text, "status"):
		result = b.track(ctx, order)
	case strings.Contains(text, "cancel"):
		var err error
		result, err = b.cancel(ctx, order)
		if err != nil {
			return Result{}, err
		}
	default:
		b.logger.Info("no keyword matched, tool used: %s", ToolNone)
		result = Result{
			ToolName:      ToolNone,
			PolicyPassed:  boolPtr(false),
			FinalResponse: msgFallback,
		}
	}

	result.ResponseTime = time.Since(start)
	b.logger.Info("tool used: %s", result.ToolName)
	b.logger.Info("final response: %s", result.FinalResponse)
	return result, nil
}

func (b *Baseline) track(ctx context.Context, order OrderContext) Result {
	outcome := b.gateway.Track(ctx, order.OrderID)
	b.logger.Info("api status: %s", outcome.Status)

	final := msgTrackStatus(order.OrderID, outcome.Status)
	if outcome.IsError() {
		b.logger.Error("tracking failed: %s", outcome.Message)
		final = msgError(outcome.Message)
	}
	return Result{
		ToolName:      ToolTrackOrder,
		PolicyPassed:  boolPtr(true),
		APIStatus:     strPtr(outcome.Status),
		ToolOutput:    &outcome,
		FinalResponse: final,
	}
}

func (b *Baseline) cancel(ctx context.Context, order OrderContext) (Result, error) {
	allowed, err := b.policy.CanCancel(ctx, order.OrderDate, order.UserID)
	if err != nil {
		return Result{}, err
	}
	b.logger.Info("policy passed: %t", allowed)

	if !allowed {
		return Result{
			ToolName:      ToolCancelOrder,
			PolicyPassed:  boolPtr(false),
			FinalResponse: msgCancelDenied(order.OrderID),
		}, nil
	}

	outcome := b.gateway.Cancel(ctx, order.OrderID)
	b.logger.Info("api status: %s", outcome.Status)

	final := msgCancelSuccess(order.OrderID)
	if outcome.IsError() {
		b.logger.Error("cancellation failed: %s", outcome.Message)
		final = msgError(outcome.Message)
	}
	return Result{
		ToolName:      ToolCancelOrder,
		PolicyPassed:  boolPtr(true),
		APIStatus:     strPtr(outcome.Status),
		ToolOutput:    &outcome,
		FinalResponse: final,
	}, nil
}
