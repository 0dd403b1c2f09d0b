package harness

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenbot/internal/agent"
	"zenbot/internal/llm"
	"zenbot/internal/orderapi"
)

// scriptedRouter returns canned results keyed by example input.
type scriptedRouter struct {
	results map[string]agent.Result
	errs    map[string]error
	calls   []string
}

func (r *scriptedRouter) Run(_ context.Context, userInput string, _ agent.OrderContext) (agent.Result, error) {
	r.calls = append(r.calls, userInput)
	if err, ok := r.errs[userInput]; ok {
		return agent.Result{}, err
	}
	return r.results[userInput], nil
}

func driverExamples() []Example {
	return []Example{
		{
			ID:               "ex_001",
			UserInput:        "track my order",
			Order:            agent.OrderContext{OrderID: "1", OrderDate: "2025-04-20", UserID: "u1"},
			CorrectTool:      agent.ToolTrackOrder,
			CorrectPolicy:    boolPtr(true),
			CorrectAPIStatus: strPtr("ok"),
		},
		{
			ID:          "ex_002",
			UserInput:   "broken example",
			Order:       agent.OrderContext{OrderID: "2", OrderDate: "2025-04-20", UserID: "u2"},
			CorrectTool: agent.ToolCancelOrder,
		},
		{
			ID:            "ex_003",
			UserInput:     "hello",
			Order:         agent.OrderContext{OrderID: "3", OrderDate: "2025-04-20", UserID: "u3"},
			CorrectTool:   agent.ToolNone,
			CorrectPolicy: boolPtr(false),
		},
	}
}

func TestRunQuantitativeSkipsFailedExamples(t *testing.T) {
	router := &scriptedRouter{
		results: map[string]agent.Result{
			"track my order": {
				ToolName:      agent.ToolTrackOrder,
				PolicyPassed:  boolPtr(true),
				APIStatus:     strPtr(orderapi.StatusShipped),
				ToolOutput:    &orderapi.Outcome{Status: orderapi.StatusShipped, OrderID: "1"},
				FinalResponse: "It has shipped.",
			},
			"hello": {
				ToolName:      agent.ToolNone,
				PolicyPassed:  boolPtr(false),
				FinalResponse: "Sorry, I didn't understand that.",
			},
		},
		errs: map[string]error{
			"broken example": errors.New("order_date malformed"),
		},
	}

	driver := NewDriver(router, nil)
	records := driver.RunQuantitative(context.Background(), driverExamples())

	require.Len(t, records, 2, "failed example leaves no row")
	assert.Equal(t, "ex_001", records[0].ExampleID)
	assert.Equal(t, "ex_003", records[1].ExampleID)
	assert.Equal(t, LabelTP, records[0].PolicyError)
	assert.Equal(t, LabelTP, records[0].APIError)
	assert.Equal(t, IntentYes, records[1].Intent)
	assert.Equal(t, LabelUnknown, records[1].PolicyError)

	// Strictly sequential, input order preserved.
	assert.Equal(t, []string{"track my order", "broken example", "hello"}, router.calls)
}

func TestDriverRunIDsAreUnique(t *testing.T) {
	router := &scriptedRouter{}
	first := NewDriver(router, nil)
	second := NewDriver(router, nil)

	assert.NotEmpty(t, first.RunID())
	assert.NotEqual(t, first.RunID(), second.RunID())
}

func TestJudgeScore(t *testing.T) {
	mock := llm.NewMockClient().RespondContent(
		`Here is my verdict: {"naturalness": {"score": 5, "reason": "flows well"}, ` +
			`"coherence": {"score": 4, "reason": "clear"}, ` +
			`"helpfulness": {"score": 4, "reason": "answers the question"}}`)

	judge := NewJudge(mock, 0)
	record, err := judge.Score(context.Background(), "ex_001", "track my order", "Your package has shipped.")
	require.NoError(t, err)

	assert.Equal(t, 5.0, record.Naturalness)
	assert.Equal(t, 4.0, record.Coherence)
	assert.Equal(t, 4.0, record.Helpfulness)
	assert.Equal(t, 1, record.BinaryPass, "mean 4.33 passes the default threshold")

	require.Len(t, mock.Requests, 1)
	req := mock.Requests[0]
	assert.Zero(t, req.Temperature)
	assert.Empty(t, req.Tools)
	assert.Contains(t, req.Messages[0].Content, "expert judge")
}

func TestJudgeScoreBelowThresholdFails(t *testing.T) {
	mock := llm.NewMockClient().RespondContent(
		`{"naturalness": {"score": 3, "reason": "stiff"}, ` +
			`"coherence": {"score": 4, "reason": "ok"}, ` +
			`"helpfulness": {"score": 2, "reason": "does not answer"}}`)

	judge := NewJudge(mock, 0)
	record, err := judge.Score(context.Background(), "ex_001", "hi", "Unknown tool.")
	require.NoError(t, err)
	assert.Equal(t, 0, record.BinaryPass)
}

func TestJudgeScoreBareNumbers(t *testing.T) {
	mock := llm.NewMockClient().RespondContent(`{"naturalness": 4, "coherence": 4, "helpfulness": 4}`)

	judge := NewJudge(mock, 0)
	record, err := judge.Score(context.Background(), "ex_001", "hi", "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, record.BinaryPass)
}

func TestJudgeScoreUnrecoverablePayload(t *testing.T) {
	mock := llm.NewMockClient().RespondContent("I cannot judge this response.")

	judge := NewJudge(mock, 0)
	_, err := judge.Score(context.Background(), "ex_001", "hi", "hello")
	require.Error(t, err)
}

func TestRunQualitativeDropsJudgeFailures(t *testing.T) {
	router := &scriptedRouter{
		results: map[string]agent.Result{
			"track my order": {ToolName: agent.ToolTrackOrder, FinalResponse: "Shipped."},
			"broken example": {ToolName: agent.ToolNone, FinalResponse: "Sorry."},
			"hello":          {ToolName: agent.ToolNone, FinalResponse: "Hi."},
		},
	}
	mock := llm.NewMockClient().
		RespondContent(`{"naturalness": {"score": 5, "reason": "a"}, "coherence": {"score": 5, "reason": "b"}, "helpfulness": {"score": 5, "reason": "c"}}`).
		RespondContent(`no json at all`).
		RespondContent(`{"naturalness": {"score": 2, "reason": "a"}, "coherence": {"score": 2, "reason": "b"}, "helpfulness": {"score": 2, "reason": "c"}}`)

	driver := NewDriver(router, nil)
	records := driver.RunQualitative(context.Background(), driverExamples(), NewJudge(mock, 0))

	require.Len(t, records, 2)
	assert.Equal(t, "ex_001", records[0].ExampleID)
	assert.Equal(t, 1, records[0].BinaryPass)
	assert.Equal(t, "ex_003", records[1].ExampleID)
	assert.Equal(t, 0, records[1].BinaryPass)
}

func TestQualitativeRecordsRoundTrip(t *testing.T) {
	records := []QualitativeRecord{
		{ExampleID: "ex_001", Naturalness: 5, Coherence: 4, Helpfulness: 4, BinaryPass: 1},
		{ExampleID: "ex_002", Naturalness: 2, Coherence: 3, Helpfulness: 1, BinaryPass: 0},
	}

	path := t.TempDir() + "/qualitative.csv"
	require.NoError(t, WriteQualitativeRecords(path, records))

	loaded, err := LoadQualitativeRecords(path)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)
}
