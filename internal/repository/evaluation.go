package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/porfiria-rules-server/internal/domain"
)

// EvaluationRepository handles evaluation record persistence
type EvaluationRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewEvaluationRepository creates a new evaluation repository
func NewEvaluationRepository(db *pgxpool.Pool, logger *logrus.Logger) *EvaluationRepository {
	return &EvaluationRepository{
		db:  db,
		log: logger,
	}
}

// Save inserts a completed evaluation. Records are immutable: a duplicate ID
// is rejected so a replayed submission cannot overwrite the recommendation
// the clinician already acted on.
func (r *EvaluationRepository) Save(ctx context.Context, rec *domain.EvaluationRecord) error {
	attrs, err := json.Marshal(rec.Attributes)
	if err != nil {
		return fmt.Errorf("encoding attributes: %w", err)
	}
	responses, err := json.Marshal(rec.Responses)
	if err != nil {
		return fmt.Errorf("encoding responses: %w", err)
	}
	recommendation, err := json.Marshal(rec.Recommendation)
	if err != nil {
		return fmt.Errorf("encoding recommendation: %w", err)
	}

	query := `
		INSERT INTO evaluations (
			id, patient_id, scheme, attributes, responses,
			recommendation, source, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (id) DO NOTHING`

	result, err := r.db.Exec(ctx, query,
		rec.ID,
		rec.PatientID,
		string(rec.Scheme),
		attrs,
		responses,
		recommendation,
		rec.Source,
		rec.CreatedAt,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"evaluation_id": rec.ID,
			"patient_id":    rec.PatientID,
			"error":         err,
		}).Error("Failed to save evaluation")
		return fmt.Errorf("saving evaluation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("evaluation already recorded: %w", domain.ErrDuplicateEvaluation)
	}

	r.log.WithFields(logrus.Fields{
		"evaluation_id": rec.ID,
		"patient_id":    rec.PatientID,
		"test_type":     rec.Recommendation.TestType,
		"source":        rec.Source,
	}).Info("Evaluation saved successfully")

	return nil
}

// Get retrieves an evaluation by its ID
func (r *EvaluationRepository) Get(ctx context.Context, id string) (*domain.EvaluationRecord, error) {
	query := `
		SELECT id, patient_id, scheme, attributes, responses,
			   recommendation, source, created_at
		FROM evaluations
		WHERE id = $1`

	rec, err := scanEvaluation(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("evaluation not found: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"evaluation_id": id,
			"error":         err,
		}).Error("Failed to get evaluation by ID")
		return nil, fmt.Errorf("getting evaluation by ID: %w", err)
	}

	return rec, nil
}

// ListByPatient retrieves a patient's evaluations, most recent first
func (r *EvaluationRepository) ListByPatient(ctx context.Context, patientID string) ([]*domain.EvaluationRecord, error) {
	query := `
		SELECT id, patient_id, scheme, attributes, responses,
			   recommendation, source, created_at
		FROM evaluations
		WHERE patient_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"patient_id": patientID,
			"error":      err,
		}).Error("Failed to list evaluations by patient")
		return nil, fmt.Errorf("listing evaluations by patient: %w", err)
	}
	defer rows.Close()

	var records []*domain.EvaluationRecord
	for rows.Next() {
		rec, err := scanEvaluation(rows)
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"patient_id": patientID,
				"error":      err,
			}).Error("Failed to scan evaluation row")
			return nil, fmt.Errorf("scanning evaluation row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating evaluation rows: %w", err)
	}

	return records, nil
}

// Delete removes an evaluation from the database
func (r *EvaluationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM evaluations WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"evaluation_id": id,
			"error":         err,
		}).Error("Failed to delete evaluation")
		return fmt.Errorf("deleting evaluation: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("evaluation not found: %w", domain.ErrNotFound)
	}

	r.log.WithFields(logrus.Fields{
		"evaluation_id": id,
	}).Info("Evaluation deleted successfully")

	return nil
}

// Close satisfies domain.EvaluationStore. The pgx pool is owned by the
// server, which closes it during shutdown.
func (r *EvaluationRepository) Close() error {
	return nil
}

// pgxScanner is satisfied by pgx.Row and pgx.Rows
type pgxScanner interface {
	Scan(dest ...any) error
}

func scanEvaluation(s pgxScanner) (*domain.EvaluationRecord, error) {
	var rec domain.EvaluationRecord
	var scheme string
	var attrs, responses, recommendation []byte

	err := s.Scan(
		&rec.ID,
		&rec.PatientID,
		&scheme,
		&attrs,
		&responses,
		&recommendation,
		&rec.Source,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Scheme = domain.Scheme(scheme)
	if err := json.Unmarshal(attrs, &rec.Attributes); err != nil {
		return nil, fmt.Errorf("decoding attributes: %w", err)
	}
	if err := json.Unmarshal(responses, &rec.Responses); err != nil {
		return nil, fmt.Errorf("decoding responses: %w", err)
	}
	if err := json.Unmarshal(recommendation, &rec.Recommendation); err != nil {
		return nil, fmt.Errorf("decoding recommendation: %w", err)
	}

	return &rec, nil
}
