package record

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/porfiria-rules-server/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite evaluation store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode so API reads don't block evaluation writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS evaluations (
		id TEXT PRIMARY KEY,
		patient_id TEXT NOT NULL,
		scheme TEXT NOT NULL,
		attributes TEXT NOT NULL,
		responses TEXT NOT NULL,
		recommendation TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT 'local',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_evaluations_patient_id ON evaluations(patient_id);
	CREATE INDEX IF NOT EXISTS idx_evaluations_created_at ON evaluations(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a row into an EvaluationRecord, unpacking the JSON columns.
func scanRecord(s scanner) (*domain.EvaluationRecord, error) {
	rec := &domain.EvaluationRecord{}
	var scheme string
	var attrsJSON, responsesJSON, recJSON []byte

	err := s.Scan(
		&rec.ID, &rec.PatientID, &scheme,
		&attrsJSON, &responsesJSON, &recJSON,
		&rec.Source, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Scheme = domain.Scheme(scheme)
	if err := json.Unmarshal(attrsJSON, &rec.Attributes); err != nil {
		return nil, fmt.Errorf("failed to decode attributes: %w", err)
	}
	if err := json.Unmarshal(responsesJSON, &rec.Responses); err != nil {
		return nil, fmt.Errorf("failed to decode responses: %w", err)
	}
	if err := json.Unmarshal(recJSON, &rec.Recommendation); err != nil {
		return nil, fmt.Errorf("failed to decode recommendation: %w", err)
	}
	return rec, nil
}

// encodeRecord marshals the JSON document columns of a record.
func encodeRecord(rec *domain.EvaluationRecord) (attrs, responses, recommendation []byte, err error) {
	attrs, err = json.Marshal(rec.Attributes)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode attributes: %w", err)
	}
	responses, err = json.Marshal(rec.Responses)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode responses: %w", err)
	}
	recommendation, err = json.Marshal(rec.Recommendation)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode recommendation: %w", err)
	}
	return attrs, responses, recommendation, nil
}

// Save stores a completed evaluation. Records are immutable: saving an ID
// that already exists returns ErrDuplicate.
func (s *SQLiteStore) Save(ctx context.Context, rec *domain.EvaluationRecord) error {
	var existingID string
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM evaluations WHERE id = ?", rec.ID,
	).Scan(&existingID)

	if err == nil {
		return fmt.Errorf("%w: %s", ErrDuplicate, rec.ID)
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing: %w", err)
	}

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	attrs, responses, recommendation, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO evaluations (
			id, patient_id, scheme,
			attributes, responses, recommendation,
			source, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.PatientID,
		string(rec.Scheme),
		string(attrs),
		string(responses),
		string(recommendation),
		rec.Source,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	return nil
}

// Get retrieves a stored evaluation by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.EvaluationRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_id, scheme,
			attributes, responses, recommendation,
			source, created_at
		FROM evaluations
		WHERE id = ?
		LIMIT 1
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rec, nil
}

// ListByPatient returns all evaluations for a patient, most recent first.
func (s *SQLiteStore) ListByPatient(ctx context.Context, patientID string) ([]*domain.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, scheme,
			attributes, responses, recommendation,
			source, created_at
		FROM evaluations
		WHERE patient_id = ?
		ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
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
func (s *SQLiteStore) list(ctx context.Context, limit, offset int) ([]*domain.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, scheme,
			attributes, responses, recommendation,
			source, created_at
		FROM evaluations
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
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
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM evaluations").Scan(&count)
	return count, err
}

// Delete removes an evaluation by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM evaluations WHERE id = ?", id)
	return err
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// ExportJSON exports all stored evaluations to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	all, err := s.list(ctx, maxExportLimit, 0)
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
func (s *SQLiteStore) ImportJSON(ctx context.Context, reader io.Reader) (imported int, skipped int, err error) {
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
