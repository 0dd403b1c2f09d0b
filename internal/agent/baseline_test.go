package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenbot/internal/orderapi"
	"zenbot/internal/policy"
)

var fixedNow = time.Date(2025, 4, 25, 12, 0, 0, 0, time.UTC)

// stubGateway returns canned outcomes and records which operations ran.
type stubGateway struct {
	cancelOutcome orderapi.Outcome
	trackOutcome  orderapi.Outcome
	cancelCalls   []string
	trackCalls    []string
}

func (g *stubGateway) Cancel(_ context.Context, orderID string) orderapi.Outcome {
	g.cancelCalls = append(g.cancelCalls, orderID)
	return g.cancelOutcome
}

func (g *stubGateway) Track(_ context.Context, orderID string) orderapi.Outcome {
	g.trackCalls = append(g.trackCalls, orderID)
	return g.trackOutcome
}

func testPolicyEngine(t *testing.T) *policy.Engine {
	t.Helper()
	return policy.NewEngine(policy.Config{
		CancellationWindowDays:       10,
		ReturnWindowDays:             30,
		MaxCancellationsPerUserMonth: 3,
		BlackoutDates:                []string{"2025-12-25", "2025-01-01"},
	}, policy.NewMemoryQuotaStore(), nil, policy.WithClock(func() time.Time { return fixedNow }))
}

func validOrder() OrderContext {
	return OrderContext{OrderID: "123", OrderDate: "2025-04-20", UserID: "user_1"}
}

func TestBaselineTrack(t *testing.T) {
	gateway := &stubGateway{
		trackOutcome: orderapi.Outcome{Status: orderapi.StatusPending, OrderID: "123", Message: "label created"},
	}
	router := NewBaseline(Deps{Policy: testPolicyEngine(t), Gateway: gateway})

	result, err := router.Run(context.Background(), "please track my order", validOrder())
	require.NoError(t, err)

	assert.Equal(t, ToolTrackOrder, result.ToolName)
	require.NotNil(t, result.PolicyPassed)
	assert.True(t, *result.PolicyPassed)
	require.NotNil(t, result.APIStatus)
	assert.Equal(t, orderapi.StatusPending, *result.APIStatus)
	require.NotNil(t, result.ToolOutput)
	assert.Equal(t, "The current status of order 123 is: pending.", result.FinalResponse)
	assert.Equal(t, []string{"123"}, gateway.trackCalls)
	assert.Empty(t, gateway.cancelCalls)
	assert.Greater(t, result.ResponseSeconds(), 0.0)
}

func TestBaselineStatusKeywordBeatsCancel(t *testing.T) {
	gateway := &stubGateway{
		trackOutcome: orderapi.Outcome{Status: orderapi.StatusShipped, OrderID: "123"},
	}
	router := NewBaseline(Deps{Policy: testPolicyEngine(t), Gateway: gateway})

	result, err := router.Run(context.Background(), "what is the status of my cancel request", validOrder())
	require.NoError(t, err)

	assert.Equal(t, ToolTrackOrder, result.ToolName)
	assert.Empty(t, gateway.cancelCalls)
}

func TestBaselineCancelAllowed(t *testing.T) {
	gateway := &stubGateway{
		cancelOutcome: orderapi.Outcome{Status: orderapi.StatusOK, OrderID: "123", Message: "canceled"},
	}
	router := NewBaseline(Deps{Policy: testPolicyEngine(t), Gateway: gateway})

	result, err := router.Run(context.Background(), "cancel my order", validOrder())
	require.NoError(t, err)

	assert.Equal(t, ToolCancelOrder, result.ToolName)
	require.NotNil(t, result.PolicyPassed)
	assert.True(t, *result.PolicyPassed)
	require.NotNil(t, result.APIStatus)
	assert.Equal(t, orderapi.StatusOK, *result.APIStatus)
	assert.Equal(t, "Your order 123 has been canceled successfully.", result.FinalResponse)
	assert.Equal(t, []string{"123"}, gateway.cancelCalls)
}

func TestBaselineCancelDeniedByPolicy(t *testing.T) {
	gateway := &stubGateway{}
	router := NewBaseline(Deps{Policy: testPolicyEngine(t), Gateway: gateway})

	order := validOrder()
	order.OrderDate = "2025-03-01"

	result, err := router.Run(context.Background(), "cancel my order", order)
	require.NoError(t, err)

	assert.Equal(t, ToolCancelOrder, result.ToolName)
	require.NotNil(t, result.PolicyPassed)
	assert.False(t, *result.PolicyPassed)
	assert.Nil(t, result.APIStatus)
	assert.Nil(t, result.ToolOutput)
	assert.Equal(t, "Order 123 cannot be canceled due to policy.", result.FinalResponse)
	assert.Empty(t, gateway.cancelCalls, "policy denial must not reach the gateway")
}

func TestBaselineCancelAPIError(t *testing.T) {
	gateway := &stubGateway{
		cancelOutcome: orderapi.Outcome{Status: orderapi.StatusError, OrderID: "123", Message: "unexpected status 503"},
	}
	router := NewBaseline(Deps{Policy: testPolicyEngine(t), Gateway: gateway})

	result, err := router.Run(context.Background(), "cancel my order", validOrder())
	require.NoError(t, err)

	require.NotNil(t, result.APIStatus)
	assert.Equal(t, orderapi.StatusError, *result.APIStatus)
	assert.Equal(t, "Sorry, an error occurred: unexpected status 503", result.FinalResponse)
}

func TestBaselineFallback(t *testing.T) {
	gateway := &stubGateway{}
	router := NewBaseline(Deps{Policy: testPolicyEngine(t), Gateway: gateway})

	result, err := router.Run(context.Background(), "hello there", validOrder())
	require.NoError(t, err)

	assert.Equal(t, ToolNone, result.ToolName)
	require.NotNil(t, result.PolicyPassed)
	assert.False(t, *result.PolicyPassed)
	assert.Nil(t, result.APIStatus)
	assert.Nil(t, result.ToolOutput)
	assert.Equal(t, "Sorry, I didn't understand that.", result.FinalResponse)
	assert.Empty(t, gateway.trackCalls)
	assert.Empty(t, gateway.cancelCalls)
}

func TestBaselineInvalidDateIsFatal(t *testing.T) {
	router := NewBaseline(Deps{Policy: testPolicyEngine(t), Gateway: &stubGateway{}})

	order := validOrder()
	order.OrderDate = "04/20/2025"

	_, err := router.Run(context.Background(), "cancel my order", order)
	require.Error(t, err)
	assert.ErrorIs(t, err, policy.ErrInvalidDateFormat)
}

func TestBaselineRejectsBadInput(t *testing.T) {
	router := NewBaseline(Deps{Policy: testPolicyEngine(t), Gateway: &stubGateway{}})

	_, err := router.Run(context.Background(), "   ", validOrder())
	assert.ErrorIs(t, err, ErrInvalidInput)

	order := validOrder()
	order.UserID = ""
	_, err = router.Run(context.Background(), "cancel my order", order)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBaselineIsDeterministic(t *testing.T) {
	gateway := &stubGateway{
		trackOutcome: orderapi.Outcome{Status: orderapi.StatusDelivered, OrderID: "123"},
	}
	router := NewBaseline(Deps{Policy: testPolicyEngine(t), Gateway: gateway})

	first, err := router.Run(context.Background(), "track order", validOrder())
	require.NoError(t, err)
	second, err := router.Run(context.Background(), "track order", validOrder())
	require.NoError(t, err)

	assert.Equal(t, first.ToolName, second.ToolName)
	assert.Equal(t, first.FinalResponse, second.FinalResponse)
	assert.Equal(t, *first.APIStatus, *second.APIStatus)
}

func TestNewVariantDispatch(t *testing.T) {
	deps := Deps{Policy: testPolicyEngine(t), Gateway: &stubGateway{}}

	router, err := New(VariantBaseline, deps)
	require.NoError(t, err)
	assert.IsType(t, &Baseline{}, router)

	router, err = New(VariantZenBot, deps)
	require.NoError(t, err)
	assert.IsType(t, &ZenBot{}, router)

	_, err = New(Variant("chatgpt"), deps)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidInput))
}
