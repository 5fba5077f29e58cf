// Package store persists validation reports.
//
// A report records the outcome of one acyclicity check: the verdict, the
// graph's size, the policy in effect, and the content hash of the checked
// history. Reports are write-once; nothing in histvet mutates a stored
// report.
//
// Backends:
//   - [MemoryStore]: process-local, for the CLI and tests
//   - [MongoStore]: MongoDB, for the HTTP service
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested report does not exist.
var ErrNotFound = errors.New("report not found")

// Report is the stored outcome of one validation run.
type Report struct {
	ID          string    `json:"id" bson:"_id"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	Source      string    `json:"source,omitempty" bson:"source,omitempty"` // caller-supplied label
	HistoryHash string    `json:"history_hash" bson:"history_hash"`
	Policy      string    `json:"policy" bson:"policy"`
	Acyclic     bool      `json:"acyclic" bson:"acyclic"`
	Nodes       int       `json:"nodes" bson:"nodes"`
	Edges       int       `json:"edges" bson:"edges"`
	Duration    int64     `json:"duration_us" bson:"duration_us"` // check time, microseconds
}

// NewReport creates a report with a fresh UUID and the current time.
func NewReport() Report {
	return Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// Store is the interface for report persistence backends.
type Store interface {
	// Put saves a report.
	Put(ctx context.Context, r Report) error

	// Get retrieves a report by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (Report, error)

	// Recent returns up to limit reports, newest first.
	Recent(ctx context.Context, limit int) ([]Report, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
