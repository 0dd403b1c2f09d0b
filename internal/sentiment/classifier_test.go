package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	prediction Prediction
	err        error
	calls      atomic.Int64
}

func (s *stubClassifier) Classify(context.Context, string) (Prediction, error) {
	s.calls.Add(1)
	return s.prediction, s.err
}

func TestHTTPClassifierDecodesPrediction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "this is terrible", body["text"])
		json.NewEncoder(w).Encode(Prediction{Label: LabelNegative, Score: 0.97})
	}))
	defer server.Close()

	classifier := NewHTTPClassifier(server.URL, time.Second, nil)
	prediction, err := classifier.Classify(context.Background(), "this is terrible")
	require.NoError(t, err)
	assert.Equal(t, LabelNegative, prediction.Label)
	assert.InDelta(t, 0.97, prediction.Score, 1e-9)
}

func TestHTTPClassifierNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	classifier := NewHTTPClassifier(server.URL, time.Second, nil)
	_, err := classifier.Classify(context.Background(), "hello")
	require.Error(t, err)
}

func TestCachedClassifierMemoizes(t *testing.T) {
	stub := &stubClassifier{prediction: Prediction{Label: LabelPositive, Score: 0.8}}
	cached, err := NewCachedClassifier(stub, 16)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		prediction, err := cached.Classify(context.Background(), "same input")
		require.NoError(t, err)
		assert.Equal(t, LabelPositive, prediction.Label)
	}
	assert.EqualValues(t, 1, stub.calls.Load())

	_, err = cached.Classify(context.Background(), "different input")
	require.NoError(t, err)
	assert.EqualValues(t, 2, stub.calls.Load())
}

func TestIsFrustratedThreshold(t *testing.T) {
	stub := &stubClassifier{prediction: Prediction{Label: LabelNegative, Score: 0.99}}

	frustrated, err := IsFrustrated(context.Background(), stub, "i am angry", 0.5)
	require.NoError(t, err)
	assert.True(t, frustrated)

	// The shipped threshold is far above the score range, so even a
	// maximally negative prediction never escalates.
	frustrated, err = IsFrustrated(context.Background(), stub, "i am angry", 10.0)
	require.NoError(t, err)
	assert.False(t, frustrated)
}

func TestIsFrustratedPositiveLabel(t *testing.T) {
	stub := &stubClassifier{prediction: Prediction{Label: LabelPositive, Score: 0.99}}

	frustrated, err := IsFrustrated(context.Background(), stub, "love it", 0.5)
	require.NoError(t, err)
	assert.False(t, frustrated)
}

func TestIsFrustratedNilClassifier(t *testing.T) {
	frustrated, err := IsFrustrated(context.Background(), nil, "anything", 0.5)
	require.NoError(t, err)
	assert.False(t, frustrated)
}
