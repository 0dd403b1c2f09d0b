package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"zenbot/internal/llm"
	"zenbot/internal/logging"
	"zenbot/internal/orderapi"
	"zenbot/internal/policy"
	"zenbot/internal/sentiment"
)

// Tool names a router can report. Unrecognized tool names requested by the
// model are carried through literally.
const (
	ToolTrackOrder  = "track_order"
	ToolCancelOrder = "cancel_order"
	ToolNone        = "none"
	ToolEscalate    = "escalate"
	ToolLLMError    = "llm_error"
)

// ErrInvalidInput marks caller contract violations detected before any
// routing happens: empty message or missing order fields.
var ErrInvalidInput = errors.New("invalid agent input")

// OrderContext carries the order the conversation is about. It is supplied
// externally and immutable for the duration of one routing call.
type OrderContext struct {
	OrderID   string `json:"order_id"`
	OrderDate string `json:"order_date"`
	UserID    string `json:"user_id"`
}

// Validate rejects contexts missing required fields.
func (c OrderContext) Validate() error {
	var missing []string
	if c.OrderID == "" {
		missing = append(missing, "order_id")
	}
	if c.OrderDate == "" {
		missing = append(missing, "order_date")
	}
	if c.UserID == "" {
		missing = append(missing, "user_id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

// Result is the single result-of-record for one routed message.
//
// Invariants: APIStatus and ToolOutput are both set or both nil, and a
// policy denial (PolicyPassed pointing at false) implies APIStatus is nil
// because the remote call is never made.
type Result struct {
	ToolName      string
	PolicyPassed  *bool
	APIStatus     *string
	ToolOutput    *orderapi.Outcome
	FinalResponse string
	ResponseTime  time.Duration
}

// ResponseSeconds returns the elapsed routing time in seconds.
func (r Result) ResponseSeconds() float64 {
	return r.ResponseTime.Seconds()
}

// Router turns one user message plus order context into a Result. A
// returned error means the invocation itself failed (contract violation or
// unrecoverable parse) and no Result exists; expected failure modes are
// folded into the Result with templated user-facing text.
type Router interface {
	Run(ctx context.Context, userInput string, order OrderContext) (Result, error)
}

// Variant selects a router implementation at startup.
type Variant string

const (
	VariantBaseline Variant = "baseline"
	VariantZenBot   Variant = "zenbot"
)

// Deps bundles the collaborators a router needs. Baseline ignores the LLM
// and sentiment fields.
type Deps struct {
	Policy  *policy.Engine
	Gateway orderapi.Gateway
	LLM     llm.Client

	Classifier           sentiment.Classifier
	FrustrationThreshold float64

	DecisionTemperature float64
	RewriteTemperature  float64

	Logger logging.Logger
}

// New builds the router for the given variant.
func New(variant Variant, deps Deps) (Router, error) {
	switch variant {
	case VariantBaseline:
		return NewBaseline(deps), nil
	case VariantZenBot:
		return NewZenBot(deps), nil
	default:
		return nil, fmt.Errorf("unknown agent variant %q", variant)
	}
}

func validateInput(userInput string, order OrderContext) error {
	if strings.TrimSpace(userInput) == "" {
		return fmt.Errorf("%w: empty user input", ErrInvalidInput)
	}
	return order.Validate()
}

func boolPtr(b bool) *bool       { return &b }
func strPtr(s string) *string    { return &s }
