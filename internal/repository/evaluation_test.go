package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/porfiria-rules-server/internal/domain"
)

// setupTestPool connects to the database named by TEST_DATABASE_URL and
// prepares a clean evaluations table. Tests are skipped when the variable
// is not set.
func setupTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping PostgreSQL tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS evaluations (
			id TEXT PRIMARY KEY,
			patient_id TEXT NOT NULL,
			scheme TEXT NOT NULL,
			attributes JSONB NOT NULL,
			responses JSONB NOT NULL,
			recommendation JSONB NOT NULL,
			source TEXT NOT NULL DEFAULT 'local',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`)
	if err != nil {
		t.Fatalf("Failed to create evaluations table: %v", err)
	}

	if _, err := pool.Exec(ctx, "DELETE FROM evaluations"); err != nil {
		t.Fatalf("Failed to clean evaluations table: %v", err)
	}

	return pool
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	return logger
}

func newEvaluationRecord(patientID string) *domain.EvaluationRecord {
	return &domain.EvaluationRecord{
		ID:        uuid.NewString(),
		PatientID: patientID,
		Scheme:    domain.SchemeDetailed,
		Attributes: domain.PatientAttributes{
			Age:           29,
			Gender:        "F",
			FamilyHistory: true,
		},
		Responses: []domain.SymptomResponse{
			{QuestionID: "dolorAbdominal", Answer: "SI"},
			{QuestionID: "colorOrina", Answer: "Oscura"},
		},
		Recommendation: domain.Recommendation{
			TestType:   domain.PBG_URINE_TEST,
			Confidence: domain.HIGH,
			Message:    "Se recomienda realizar estudios urgentes para Porfiria Aguda.",
			Score:      38,
		},
		Source:    "local",
		CreatedAt: time.Now(),
	}
}

func TestEvaluationRepository_SaveAndGet(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewEvaluationRepository(pool, testLogger())
	ctx := context.Background()

	rec := newEvaluationRecord("patient-001")
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if got.PatientID != rec.PatientID {
		t.Errorf("PatientID = %q, want %q", got.PatientID, rec.PatientID)
	}
	if got.Scheme != domain.SchemeDetailed {
		t.Errorf("Scheme = %q, want %q", got.Scheme, domain.SchemeDetailed)
	}
	if got.Recommendation.TestType != domain.PBG_URINE_TEST {
		t.Errorf("TestType = %q, want %q", got.Recommendation.TestType, domain.PBG_URINE_TEST)
	}
	if len(got.Responses) != 2 {
		t.Errorf("Responses length = %d, want 2", len(got.Responses))
	}
}

func TestEvaluationRepository_Save_Duplicate(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewEvaluationRepository(pool, testLogger())
	ctx := context.Background()

	rec := newEvaluationRecord("patient-001")
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	replay := newEvaluationRecord("patient-001")
	replay.ID = rec.ID
	replay.Recommendation.TestType = domain.NO_TEST_NEEDED

	err := repo.Save(ctx, replay)
	if !errors.Is(err, domain.ErrDuplicateEvaluation) {
		t.Fatalf("Save duplicate error = %v, want ErrDuplicateEvaluation", err)
	}

	got, err := repo.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Recommendation.TestType != domain.PBG_URINE_TEST {
		t.Errorf("Stored TestType = %q, original recommendation must survive a replay", got.Recommendation.TestType)
	}
}

func TestEvaluationRepository_Get_NotFound(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewEvaluationRepository(pool, testLogger())

	_, err := repo.Get(context.Background(), uuid.NewString())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get error = %v, want ErrNotFound", err)
	}
}

func TestEvaluationRepository_ListByPatient(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewEvaluationRepository(pool, testLogger())
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	var ids []string
	for i := 0; i < 3; i++ {
		rec := newEvaluationRecord("patient-001")
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save %d failed: %v", i, err)
		}
		ids = append(ids, rec.ID)
	}
	other := newEvaluationRecord("patient-002")
	if err := repo.Save(ctx, other); err != nil {
		t.Fatalf("Save other failed: %v", err)
	}

	records, err := repo.ListByPatient(ctx, "patient-001")
	if err != nil {
		t.Fatalf("ListByPatient failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("ListByPatient returned %d records, want 3", len(records))
	}
	if records[0].ID != ids[2] {
		t.Errorf("First record = %s, want most recent %s", records[0].ID, ids[2])
	}
}

func TestEvaluationRepository_Delete(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewEvaluationRepository(pool, testLogger())
	ctx := context.Background()

	rec := newEvaluationRecord("patient-001")
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := repo.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := repo.Get(ctx, rec.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get after delete = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, rec.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Delete missing = %v, want ErrNotFound", err)
	}
}
