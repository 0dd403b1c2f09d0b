package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"zenbot/internal/logging"
)

// Tracking statuses form an open enum; cancellation status is binary.
const (
	StatusOK        = "ok"
	StatusError     = "error"
	StatusPending   = "pending"
	StatusShipped   = "shipped"
	StatusInTransit = "in_transit"
	StatusDelivered = "delivered"
)

// Outcome is the normalized result of a remote order operation. Transport
// failures and application-level failures share the same shape so the
// router never needs to distinguish them.
type Outcome struct {
	Status  string `json:"status"`
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

// IsError reports whether the outcome represents a failed operation.
func (o Outcome) IsError() bool {
	return o.Status == StatusError
}

// Gateway wraps the two remote order operations. Implementations never
// return Go errors: any failure becomes an Outcome with status "error".
type Gateway interface {
	Cancel(ctx context.Context, orderID string) Outcome
	Track(ctx context.Context, orderID string) Outcome
}

// HTTPGateway calls the real order services. Each call uses the client's
// fixed timeout; there is no retry, a single failure is terminal.
type HTTPGateway struct {
	cancelURL  string
	trackURL   string
	httpClient *http.Client
	logger     logging.Logger
}

// NewHTTPGateway builds a gateway against the given service endpoints.
func NewHTTPGateway(cancelURL, trackURL string, timeout time.Duration, logger logging.Logger) *HTTPGateway {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPGateway{
		cancelURL:  cancelURL,
		trackURL:   trackURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.OrNop(logger),
	}
}

// Cancel requests cancellation of orderID.
func (g *HTTPGateway) Cancel(ctx context.Context, orderID string) Outcome {
	start := time.Now()
	outcome := g.cancel(ctx, orderID)
	observeCall("cancel", outcome.Status, time.Since(start))
	return outcome
}

func (g *HTTPGateway) cancel(ctx context.Context, orderID string) Outcome {
	body, err := json.Marshal(map[string]string{"order_id": orderID})
	if err != nil {
		return errorOutcome(orderID, fmt.Sprintf("encode cancel request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cancelURL, bytes.NewReader(body))
	if err != nil {
		return errorOutcome(orderID, fmt.Sprintf("build cancel request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	return g.do(req, orderID)
}

// Track fetches the current tracking status of orderID.
func (g *HTTPGateway) Track(ctx context.Context, orderID string) Outcome {
	start := time.Now()
	outcome := g.track(ctx, orderID)
	observeCall("track", outcome.Status, time.Since(start))
	return outcome
}

func (g *HTTPGateway) track(ctx context.Context, orderID string) Outcome {
	endpoint, err := url.Parse(g.trackURL)
	if err != nil {
		return errorOutcome(orderID, fmt.Sprintf("parse track url: %v", err))
	}
	query := endpoint.Query()
	query.Set("order_id", orderID)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return errorOutcome(orderID, fmt.Sprintf("build track request: %v", err))
	}

	return g.do(req, orderID)
}

// do executes the request and normalizes every failure mode into an error
// outcome so callers see one shape.
func (g *HTTPGateway) do(req *http.Request, orderID string) Outcome {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Warn("order api transport failure: %v", err)
		return errorOutcome(orderID, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		g.logger.Warn("order api returned %d: %s", resp.StatusCode, string(body))
		return errorOutcome(orderID, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	var outcome Outcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		g.logger.Warn("order api returned undecodable body: %v", err)
		return errorOutcome(orderID, fmt.Sprintf("decode response: %v", err))
	}
	if outcome.OrderID == "" {
		outcome.OrderID = orderID
	}
	return outcome
}

func errorOutcome(orderID, message string) Outcome {
	return Outcome{Status: StatusError, OrderID: orderID, Message: message}
}
