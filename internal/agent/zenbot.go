package agent

import (
	"context"
	"fmt"
	"time"

	"zenbot/internal/llm"
	"zenbot/internal/logging"
	"zenbot/internal/orderapi"
	"zenbot/internal/policy"
	"zenbot/internal/sentiment"
)

// ZenBot is the tool-calling router. It runs a two-phase protocol against
// the completion service: a decision phase that may request a tool, then a
// rewrite phase that turns the tool outcome into natural language. A
// frustration pre-check can short-circuit to escalation before either
// phase (currently inert: the shipped threshold exceeds the classifier's
// score range).
type ZenBot struct {
	policy     *policy.Engine
	gateway    orderapi.Gateway
	llm        llm.Client
	classifier sentiment.Classifier
	threshold  float64

	decisionTemperature float64
	rewriteTemperature  float64

	logger logging.Logger
}

// NewZenBot builds the tool-calling router.
func NewZenBot(deps Deps) *ZenBot {
	decisionTemp := deps.DecisionTemperature
	if decisionTemp == 0 {
		decisionTemp = 0.15
	}
	rewriteTemp := deps.RewriteTemperature
	if rewriteTemp == 0 {
		rewriteTemp = 0.5
	}
	threshold := deps.FrustrationThreshold
	if threshold == 0 {
		threshold = 10.0
	}
	return &ZenBot{
		policy:              deps.Policy,
		gateway:             deps.Gateway,
		llm:                 deps.LLM,
		classifier:          deps.Classifier,
		threshold:           threshold,
		decisionTemperature: decisionTemp,
		rewriteTemperature:  rewriteTemp,
		logger:              logging.OrNop(deps.Logger),
	}
}

// Run implements Router.
func (z *ZenBot) Run(ctx context.Context, userInput string, order OrderContext) (Result, error) {
	start := time.Now()

	if err := validateInput(userInput, order); err != nil {
		return Result{}, err
	}

	z.logger.Info("zenbot handling input: %s", userInput)

	// Frustration pre-check. A classifier failure never blocks routing.
	frustrated, err := sentiment.IsFrustrated(ctx, z.classifier, userInput, z.threshold)
	if err != nil {
		z.logger.Warn("sentiment check failed, continuing without escalation: %v", err)
		frustrated = false
	}
	if frustrated {
		z.logger.Info("escalating frustrated user")
		return Result{
			ToolName:      ToolEscalate,
			FinalResponse: msgEscalation,
			ResponseTime:  time.Since(start),
		}, nil
	}

	messages := decisionMessages(userInput, order)
	decision, err := z.llm.Complete(ctx, llm.CompletionRequest{
		Messages:    messages,
		Tools:       toolSchema(),
		Temperature: z.decisionTemperature,
	})
	if err != nil {
		z.logger.Error("completion endpoint unreachable: %v", err)
		return Result{
			ToolName:      ToolLLMError,
			FinalResponse: msgLLMUnreachable,
			ResponseTime:  time.Since(start),
		}, nil
	}

	if len(decision.ToolCalls) == 0 {
		z.logger.Info("no tool calls were triggered by the model")
		return Result{
			ToolName:      ToolNone,
			PolicyPassed:  boolPtr(false),
			FinalResponse: msgFallback,
			ResponseTime:  time.Since(start),
		}, nil
	}

	call := decision.ToolCalls[0]
	args, err := llm.DecodeToolArguments(call.Function.Arguments)
	if err != nil {
		// Unrecoverable arguments are fatal for this example; the raw
		// payload goes to the log for diagnosis.
		z.logger.Error("tool argument decode failed for %s, raw payload: %q", call.Function.Name, call.Function.Arguments)
		return Result{}, fmt.Errorf("parse %s arguments: %w", call.Function.Name, err)
	}
	z.logger.Info("model requested tool: %s", call.Function.Name)

	result, toolSummary, err := z.execute(ctx, call.Function.Name, args, order)
	if err != nil {
		return Result{}, err
	}
	if toolSummary == "" {
		// Unknown tool: terminal, no rewrite phase.
		result.ResponseTime = time.Since(start)
		return result, nil
	}

	result.FinalResponse = z.rewrite(ctx, messages, result.ToolName, toolSummary)
	result.ResponseTime = time.Since(start)
	z.logger.Info("final response: %s", result.FinalResponse)
	return result, nil
}

// execute dispatches the requested tool. It returns the partial result and
// a tool-outcome summary for the rewrite phase; an empty summary means the
// result is already terminal.
func (z *ZenBot) execute(ctx context.Context, toolName string, args map[string]any, order OrderContext) (Result, string, error) {
	switch toolName {
	case ToolTrackOrder:
		orderID := stringArg(args, "order_id", order.OrderID)
		outcome := z.gateway.Track(ctx, orderID)
		z.logger.Info("api status: %s", outcome.Status)
		return Result{
			ToolName:     ToolTrackOrder,
			PolicyPassed: boolPtr(true),
			APIStatus:    strPtr(outcome.Status),
			ToolOutput:   &outcome,
		}, fmt.Sprintf("Order status: %s (%s)", outcome.Status, outcome.Message), nil

	case ToolCancelOrder:
		orderID := stringArg(args, "order_id", order.OrderID)
		orderDate := stringArg(args, "order_date", order.OrderDate)
		userID := stringArg(args, "user_id", order.UserID)

		allowed, err := z.policy.CanCancel(ctx, orderDate, userID)
		if err != nil {
			return Result{}, "", err
		}
		z.logger.Info("policy passed: %t", allowed)
		if !allowed {
			return Result{
				ToolName:     ToolCancelOrder,
				PolicyPassed: boolPtr(false),
			}, fmt.Sprintf("Order %s cannot be canceled per policy.", orderID), nil
		}

		outcome := z.gateway.Cancel(ctx, orderID)
		z.logger.Info("api status: %s", outcome.Status)
		return Result{
			ToolName:     ToolCancelOrder,
			PolicyPassed: boolPtr(true),
			APIStatus:    strPtr(outcome.Status),
			ToolOutput:   &outcome,
		}, fmt.Sprintf("Cancellation result: %s (%s)", outcome.Status, outcome.Message), nil

	default:
		z.logger.Warn("unknown tool requested: %s", toolName)
		return Result{
			ToolName:      toolName,
			FinalResponse: msgUnknownTool,
		}, "", nil
	}
}

// rewrite appends the tool outcome and the rewrite instruction to the
// conversation and asks for a natural-language reply without tools. A
// failure here degrades to a literal error string; the result still stands.
func (z *ZenBot) rewrite(ctx context.Context, messages []llm.Message, toolName, toolSummary string) string {
	followup := append(append([]llm.Message{}, messages...),
		llm.Message{
			Role:    "assistant",
			Content: fmt.Sprintf("%s tool response: %s", toolName, toolSummary),
		},
		llm.Message{
			Role:    "user",
			Content: rewriteInstruction,
		},
	)

	resp, err := z.llm.Complete(ctx, llm.CompletionRequest{
		Messages:    followup,
		Temperature: z.rewriteTemperature,
	})
	if err != nil {
		z.logger.Error("rewrite completion failed: %v", err)
		return msgRewriteFailed
	}
	if resp.Content == "" {
		z.logger.Warn("rewrite completion returned empty content")
		return msgRewriteFailed
	}
	return resp.Content
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
