package policy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"zenbot/internal/logging"
)

// ErrInvalidDateFormat is returned when an order date is not YYYY-MM-DD.
// Malformed dates are a caller contract violation, not a policy denial.
var ErrInvalidDateFormat = errors.New("invalid order date format, want YYYY-MM-DD")

const dateLayout = "2006-01-02"

// DenyReason identifies which rule blocked a cancellation.
type DenyReason string

const (
	DenyNone          DenyReason = ""
	DenyOutsideWindow DenyReason = "outside_window"
	DenyQuotaExceeded DenyReason = "quota_exceeded"
	DenyBlackoutDate  DenyReason = "blackout_date"
)

// Decision is the outcome of evaluating the cancellation rules for one order.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// QuotaStore exposes per-user cancellation counters for the current period.
// The engine only reads counts; incrementing after a successful cancel is
// owned by a collaborator and no router path calls it.
type QuotaStore interface {
	CancellationCount(ctx context.Context, userID string) (int, error)
	IncrementCancellations(ctx context.Context, userID string) error
}

// Config holds the cancellation and return business rules.
type Config struct {
	CancellationWindowDays       int
	ReturnWindowDays             int
	MaxCancellationsPerUserMonth int
	BlackoutDates                []string
}

// Engine evaluates whether order operations are permitted. Rules run in a
// fixed order (window, quota, blackout) and short-circuit on the first
// denial so each failure stays independently observable.
type Engine struct {
	cfg      Config
	blackout map[string]struct{}
	quota    QuotaStore
	logger   logging.Logger
	now      func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock overrides the engine's clock, used by tests to pin "now".
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine builds a policy engine over the given rules and quota store.
func NewEngine(cfg Config, quota QuotaStore, logger logging.Logger, opts ...Option) *Engine {
	blackout := make(map[string]struct{}, len(cfg.BlackoutDates))
	for _, d := range cfg.BlackoutDates {
		blackout[d] = struct{}{}
	}
	e := &Engine{
		cfg:      cfg,
		blackout: blackout,
		quota:    quota,
		logger:   logging.OrNop(logger),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EvaluateCancellation applies the cancellation rules and reports which
// rule, if any, denied the request.
func (e *Engine) EvaluateCancellation(ctx context.Context, orderDate, userID string) (Decision, error) {
	within, err := e.withinWindow(orderDate, e.cfg.CancellationWindowDays)
	if err != nil {
		return Decision{}, err
	}
	if !within {
		e.logger.Info("cancellation denied: order %s outside the %d-day window", orderDate, e.cfg.CancellationWindowDays)
		return Decision{Allowed: false, Reason: DenyOutsideWindow}, nil
	}

	if userID != "" && e.quota != nil {
		count, err := e.quota.CancellationCount(ctx, userID)
		if err != nil {
			return Decision{}, fmt.Errorf("read cancellation quota for %s: %w", userID, err)
		}
		if count >= e.cfg.MaxCancellationsPerUserMonth {
			e.logger.Info("cancellation denied: user %s exceeded monthly quota (%d/%d)", userID, count, e.cfg.MaxCancellationsPerUserMonth)
			return Decision{Allowed: false, Reason: DenyQuotaExceeded}, nil
		}
	}

	if _, blocked := e.blackout[orderDate]; blocked {
		e.logger.Info("cancellation denied: order date %s is in a blackout period", orderDate)
		return Decision{Allowed: false, Reason: DenyBlackoutDate}, nil
	}

	return Decision{Allowed: true}, nil
}

// CanCancel reports whether an order placed on orderDate by userID may be
// canceled under the window, quota, and blackout rules.
func (e *Engine) CanCancel(ctx context.Context, orderDate, userID string) (bool, error) {
	decision, err := e.EvaluateCancellation(ctx, orderDate, userID)
	if err != nil {
		return false, err
	}
	return decision.Allowed, nil
}

// CanReturn reports whether an order is still inside the return window.
func (e *Engine) CanReturn(orderDate string) (bool, error) {
	return e.withinWindow(orderDate, e.cfg.ReturnWindowDays)
}

// withinWindow checks now - orderDate < windowDays. The boundary itself is
// allowed (strict less-than); dates are naive UTC at day granularity.
func (e *Engine) withinWindow(orderDate string, windowDays int) (bool, error) {
	parsed, err := time.ParseInLocation(dateLayout, orderDate, time.UTC)
	if err != nil {
		return false, fmt.Errorf("%w: %q", ErrInvalidDateFormat, orderDate)
	}
	window := time.Duration(windowDays) * 24 * time.Hour
	return e.now().UTC().Sub(parsed) < window, nil
}
