package harness

import (
	"context"

	"github.com/google/uuid"

	"zenbot/internal/agent"
	"zenbot/internal/logging"
)

// Driver runs a router over an example set, strictly in input order, one
// example at a time. A router error logs and skips the example; the batch
// always completes.
type Driver struct {
	router agent.Router
	logger logging.Logger
	runID  string
}

// NewDriver builds a driver around the given router.
func NewDriver(router agent.Router, logger logging.Logger) *Driver {
	return &Driver{
		router: router,
		logger: logging.OrNop(logger),
		runID:  uuid.NewString(),
	}
}

// RunID identifies this driver's evaluation run in logs and filenames.
func (d *Driver) RunID() string {
	return d.runID
}

// RunQuantitative evaluates every example and returns one labeled record
// per example that completed. Skipped examples leave no row.
func (d *Driver) RunQuantitative(ctx context.Context, examples []Example) []Record {
	d.logger.Info("run %s: starting quantitative evaluation over %d examples", d.runID, len(examples))

	records := make([]Record, 0, len(examples))
	skipped := 0
	for i, example := range examples {
		d.logger.Info("run %s: example %s (%d/%d)", d.runID, example.ID, i+1, len(examples))

		result, err := d.router.Run(ctx, example.UserInput, example.Order)
		if err != nil {
			skipped++
			d.logger.Error("run %s: example %s failed, skipping: %v", d.runID, example.ID, err)
			continue
		}

		record := LabelResult(example, result)
		d.logger.Info("run %s: example %s intent=%s policy=%s api=%s time=%.3fs",
			d.runID, example.ID, record.Intent, record.PolicyError, record.APIError, record.ResponseSeconds)
		records = append(records, record)
	}

	d.logger.Info("run %s: quantitative evaluation done, %d processed, %d skipped", d.runID, len(records), skipped)
	return records
}
