package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"

	"github.com/porfiria-rules-server/internal/domain"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL evaluation store.
// It expects the database and schema to already exist (created via migrations).
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL evaluation store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Save stores a completed evaluation. Records are immutable: saving an ID
// that already exists returns ErrDuplicate.
func (s *PostgresStore) Save(ctx context.Context, rec *domain.EvaluationRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	attrs, responses, recommendation, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO evaluations (
			id, patient_id, scheme,
			attributes, responses, recommendation,
			source, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := s.db.ExecContext(ctx, query,
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
		return fmt.Errorf("failed to save evaluation: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read insert result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.ID)
	}

	return nil
}

// Get retrieves a stored evaluation by ID.
func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.EvaluationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_id, scheme,
			attributes, responses, recommendation,
			source, created_at
		FROM evaluations
		WHERE id = $1
		LIMIT 1
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return rec, nil
}

// ListByPatient returns all evaluations for a patient, most recent first.
func (s *PostgresStore) ListByPatient(ctx context.Context, patientID string) ([]*domain.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, scheme,
			attributes, responses, recommendation,
			source, created_at
		FROM evaluations
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var result []*domain.EvaluationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// list returns stored evaluations with pagination, most recent first.
func (s *PostgresStore) list(ctx context.Context, limit, offset int) ([]*domain.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, scheme,
			attributes, responses, recommendation,
			source, created_at
		FROM evaluations
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	defer rows.Close()

	var result []*domain.EvaluationRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Count returns the total number of stored evaluations.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM evaluations").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count evaluations: %w", err)
	}
	return count, nil
}

// Delete removes an evaluation by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM evaluations WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete evaluation: %w", err)
	}
	return nil
}

// pgMaxExportLimit is the maximum number of entries to export at once.
const pgMaxExportLimit = 1000000

// ExportJSON exports all stored evaluations to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.list(ctx, pgMaxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list evaluations: %w", err)
	}

	export := &Export{
		Version:     "1.0",
		ExportedAt:  time.Now(),
		Count:       len(all),
		Evaluations: all,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// ImportJSON imports evaluations from a JSON reader, skipping known IDs.
func (s *PostgresStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(reader).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, rec := range export.Evaluations {
		if err := s.Save(ctx, rec); err != nil {
			if errors.Is(err, ErrDuplicate) {
				skipped++
				continue
			}
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
