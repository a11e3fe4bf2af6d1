// Package record persists completed evaluations so that a patient's
// questionnaire history can be reviewed later and recommendations audited.
//
// Two backends are provided: an embedded SQLite store for single-node
// deployments and a PostgreSQL store for shared installations. Both keep the
// clinical payload (attributes, responses, recommendation) as JSON documents
// so the schema survives questionnaire revisions without migrations.
package record

import (
	"context"
	"io"
	"time"

	"github.com/porfiria-rules-server/internal/domain"
)

// ErrDuplicate is returned when saving a record whose ID already exists.
// Completed evaluations are immutable; a replayed submission must not
// silently overwrite the original recommendation.
var ErrDuplicate = domain.ErrDuplicateEvaluation

// Store persists completed evaluations. It extends domain.EvaluationStore
// with maintenance operations used by operational tooling.
type Store interface {
	domain.EvaluationStore

	// Count returns the total number of stored evaluations.
	Count(ctx context.Context) (int64, error)

	// Delete removes an evaluation by ID.
	Delete(ctx context.Context, id string) error

	// ExportJSON writes all stored evaluations as a JSON document.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// ImportJSON loads evaluations from a JSON document, skipping records
	// whose ID is already present.
	ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error)
}

// Export is the JSON envelope produced by ExportJSON.
type Export struct {
	Version     string                     `json:"version"`
	ExportedAt  time.Time                  `json:"exported_at"`
	Count       int                        `json:"count"`
	Evaluations []*domain.EvaluationRecord `json:"evaluations"`
}
