package job

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a job cannot be found by ID.
var ErrNotFound = errors.New("job not found")

// Store defines the interface for job persistence. It is the sole
// owner of Record mutation: concurrent pollers and webhook handlers
// go through Update so field merges for a single job are never torn.
type Store interface {
	// Upsert inserts or fully replaces a record by job ID.
	Upsert(ctx context.Context, record *Record) error

	// Get retrieves a record by job ID.
	// Returns ErrNotFound if the job does not exist.
	Get(ctx context.Context, jobID string) (*Record, error)

	// Update applies the non-nil fields to an existing record and
	// returns the updated record. Returns ErrNotFound if the job does
	// not exist; callers that tolerate webhook-before-create races
	// upsert a fresh record instead.
	Update(ctx context.Context, jobID string, fields Fields) (*Record, error)
}
