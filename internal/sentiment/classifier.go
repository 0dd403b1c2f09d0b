package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"zenbot/internal/logging"
)

// Labels produced by the sentiment model.
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
)

// Prediction is one classification result.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier scores the sentiment of a text.
type Classifier interface {
	Classify(ctx context.Context, text string) (Prediction, error)
}

// HTTPClassifier calls a remote sentiment-analysis endpoint.
type HTTPClassifier struct {
	endpoint   string
	httpClient *http.Client
	logger     logging.Logger
}

// NewHTTPClassifier builds a classifier against the given endpoint.
func NewHTTPClassifier(endpoint string, timeout time.Duration, logger logging.Logger) *HTTPClassifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClassifier{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.OrNop(logger),
	}
}

// Classify posts the text and decodes the {label, score} reply.
func (c *HTTPClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return Prediction{}, fmt.Errorf("encode sentiment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, fmt.Errorf("build sentiment request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Prediction{}, fmt.Errorf("sentiment endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		c.logger.Warn("sentiment endpoint returned %d: %s", resp.StatusCode, string(raw))
		return Prediction{}, fmt.Errorf("sentiment endpoint returned status %d", resp.StatusCode)
	}

	var prediction Prediction
	if err := json.NewDecoder(resp.Body).Decode(&prediction); err != nil {
		return Prediction{}, fmt.Errorf("decode sentiment response: %w", err)
	}
	return prediction, nil
}

// CachedClassifier memoizes predictions per input text. Evaluation sets
// repeat inputs across runs, so caching keeps the pre-check cheap.
type CachedClassifier struct {
	inner Classifier
	cache *lru.Cache[string, Prediction]
}

// NewCachedClassifier wraps inner with an LRU of the given size.
func NewCachedClassifier(inner Classifier, size int) (*CachedClassifier, error) {
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New[string, Prediction](size)
	if err != nil {
		return nil, fmt.Errorf("build sentiment cache: %w", err)
	}
	return &CachedClassifier{inner: inner, cache: cache}, nil
}

// Classify returns the cached prediction when available.
func (c *CachedClassifier) Classify(ctx context.Context, text string) (Prediction, error) {
	if prediction, ok := c.cache.Get(text); ok {
		return prediction, nil
	}
	prediction, err := c.inner.Classify(ctx, text)
	if err != nil {
		return Prediction{}, err
	}
	c.cache.Add(text, prediction)
	return prediction, nil
}

// IsFrustrated reports whether the text is negative with confidence at or
// above threshold. The shipped threshold of 10.0 sits above the model's
// score range, leaving the escalation hook inert until retuned.
func IsFrustrated(ctx context.Context, classifier Classifier, text string, threshold float64) (bool, error) {
	if classifier == nil {
		return false, nil
	}
	prediction, err := classifier.Classify(ctx, text)
	if err != nil {
		return false, err
	}
	return prediction.Label == LabelNegative && prediction.Score >= threshold, nil
}
