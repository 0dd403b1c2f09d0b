package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `example_id,user_input,order_info_json,correct_tool,correct_policy,correct_api_status
ex_001,please track my order,"{""order_id"": ""123"", ""order_date"": ""2025-04-20"", ""user_id"": ""user_1""}",track_order,True,ok
ex_002,cancel my order,"{""order_id"": ""456"", ""order_date"": ""2025-01-01"", ""user_id"": ""user_2""}",cancel_order,False,
ex_003,hello there,"{""order_id"": ""789"", ""order_date"": ""2025-04-22"", ""user_id"": ""user_3""}",none,,
`

func TestReadExamples(t *testing.T) {
	examples, err := ReadExamples(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, examples, 3)

	first := examples[0]
	assert.Equal(t, "ex_001", first.ID)
	assert.Equal(t, "please track my order", first.UserInput)
	assert.Equal(t, "123", first.Order.OrderID)
	assert.Equal(t, "2025-04-20", first.Order.OrderDate)
	assert.Equal(t, "user_1", first.Order.UserID)
	assert.Equal(t, "track_order", first.CorrectTool)
	require.NotNil(t, first.CorrectPolicy)
	assert.True(t, *first.CorrectPolicy)
	require.NotNil(t, first.CorrectAPIStatus)
	assert.Equal(t, "ok", *first.CorrectAPIStatus)

	second := examples[1]
	require.NotNil(t, second.CorrectPolicy)
	assert.False(t, *second.CorrectPolicy)
	assert.Nil(t, second.CorrectAPIStatus)

	third := examples[2]
	assert.Nil(t, third.CorrectPolicy)
	assert.Nil(t, third.CorrectAPIStatus)
}

func TestReadExamplesRejectsBadHeader(t *testing.T) {
	bad := strings.Replace(sampleCSV, "correct_tool", "expected_tool", 1)
	_, err := ReadExamples(strings.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected_tool")
}

func TestReadExamplesRejectsBadOrderJSON(t *testing.T) {
	bad := `example_id,user_input,order_info_json,correct_tool,correct_policy,correct_api_status
ex_001,hi,not json,none,,
`
	_, err := ReadExamples(strings.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "order_info_json")
}

func TestReadExamplesRejectsBadPolicyValue(t *testing.T) {
	bad := strings.Replace(sampleCSV, "track_order,True", "track_order,maybe", 1)
	_, err := ReadExamples(strings.NewReader(bad))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "correct_policy")
}

func TestLoadExamplesRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "examples.csv")
	require.NoError(t, writeFile(t, path, sampleCSV))

	examples, err := LoadExamples(path)
	require.NoError(t, err)
	assert.Len(t, examples, 3)

	_, err = LoadExamples(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
