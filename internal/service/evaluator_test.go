package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porfiria-rules-server/internal/domain"
)

func newDetailedEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	ev, err := NewEvaluator(domain.DetailedCatalog(), domain.DefaultDetailedConfiguration(), newTestLogger())
	require.NoError(t, err)
	return ev
}

func newGenericEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	ev, err := NewEvaluator(domain.GenericCatalog(), domain.DefaultGenericConfiguration(), newTestLogger())
	require.NoError(t, err)
	return ev
}

func TestEvaluator_Validate(t *testing.T) {
	ev := newDetailedEvaluator(t)

	tests := []struct {
		name      string
		req       domain.EvaluationRequest
		wantField string
	}{
		{
			name:      "missing patient id",
			req:       domain.EvaluationRequest{Age: 30},
			wantField: "patientId",
		},
		{
			name:      "negative age",
			req:       domain.EvaluationRequest{PatientID: "pt-001", Age: -1},
			wantField: "age",
		},
		{
			name:      "age above range",
			req:       domain.EvaluationRequest{PatientID: "pt-001", Age: 151},
			wantField: "age",
		},
		{
			name: "unknown question id",
			req: domain.EvaluationRequest{
				PatientID: "pt-001",
				Age:       30,
				Responses: answers(map[string]string{"noSuchQuestion": "SI"}),
			},
			wantField: "responses",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ev.Validate(&tt.req)
			require.Error(t, err)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}

	t.Run("valid request", func(t *testing.T) {
		req := domain.EvaluationRequest{
			PatientID: "pt-001",
			Age:       30,
			Responses: answers(map[string]string{"ampollas": "SI"}),
		}
		assert.NoError(t, ev.Validate(&req))
	})
}

func TestEvaluator_Evaluate_AcutePattern(t *testing.T) {
	ev := newDetailedEvaluator(t)

	// Acute section: 4+5+5+5+5+4+5+4 = 37, above the acute threshold of 36.
	req := domain.EvaluationRequest{
		PatientID: "pt-010",
		Age:       34,
		Gender:    "F",
		Responses: answers(map[string]string{
			"trastornosPsiquiatricos": "SI",
			"parestesias":             "SI",
			"paresia":                 "SI",
			"trastornosAbdominales":   "SI",
			"estres":                  "SI",
			"trastornosNeurologicos":  "SI",
			"dolorAbdominalLumbar":    "SI",
			"astenia":                 "SI",
		}),
	}

	rec, err := ev.Evaluate(context.Background(), &req)
	require.NoError(t, err)

	assert.Equal(t, domain.PBG_URINE_TEST, rec.TestType)
	assert.Equal(t, domain.HIGH, rec.Confidence)
	assert.Equal(t, domain.PatternAcute, rec.Pattern)
	assert.Equal(t, 37.0, rec.Score)
	assert.Contains(t, rec.MatchedRules, "PorfiriaAgudaRule")
	assert.Equal(t, []string{"Síntomas agudos significativos"}, rec.Reasoning)
	assert.Equal(t, 1, rec.CriticalSymptoms)
	assert.Equal(t, acuteStudies, rec.RecommendedStudies)
	assert.Len(t, rec.ContraindicatedMeds, 13)
}

func TestEvaluator_Evaluate_MediumTier(t *testing.T) {
	ev := newDetailedEvaluator(t)

	// 5+3 = 8 total, medium tier, no pattern.
	req := domain.EvaluationRequest{
		PatientID: "pt-011",
		Age:       28,
		Responses: answers(map[string]string{
			"ampollas": "SI",
			"cefaleas": "SI",
		}),
	}

	rec, err := ev.Evaluate(context.Background(), &req)
	require.NoError(t, err)

	assert.Equal(t, domain.FOLLOW_UP_REQUIRED, rec.TestType)
	assert.Equal(t, domain.MEDIUM, rec.Confidence)
	assert.Equal(t, domain.PatternNone, rec.Pattern)
	assert.Equal(t, 8.0, rec.Score)
	assert.Empty(t, rec.RecommendedStudies)
}

func TestEvaluator_Evaluate_LowRisk(t *testing.T) {
	ev := newDetailedEvaluator(t)

	req := domain.EvaluationRequest{
		PatientID: "pt-012",
		Age:       45,
		Responses: answers(map[string]string{
			"maculas": "SI",
			"mareos":  "NO",
		}),
	}

	rec, err := ev.Evaluate(context.Background(), &req)
	require.NoError(t, err)

	assert.Equal(t, domain.NO_TEST_NEEDED, rec.TestType)
	assert.Equal(t, domain.LOW, rec.Confidence)
	assert.Equal(t, 2.0, rec.Score)
}

func TestEvaluator_Evaluate_GenericScheme(t *testing.T) {
	ev := newGenericEvaluator(t)

	// Severe localized pain (4) plus nausea (2) = 6, medium tier.
	req := domain.EvaluationRequest{
		PatientID: "pt-013",
		Age:       30,
		Responses: answers(map[string]string{
			"1":  "SI",
			"2":  "SI",
			"13": "SI",
		}),
	}

	rec, err := ev.Evaluate(context.Background(), &req)
	require.NoError(t, err)

	assert.Equal(t, domain.FOLLOW_UP_REQUIRED, rec.TestType)
	assert.Equal(t, 6.0, rec.Score)
	assert.Contains(t, rec.MatchedRules, "Dolor abdominal severo")
	assert.Contains(t, rec.MatchedRules, "Náuseas y vómitos")
	assert.Contains(t, rec.Reasoning, "Dolor abdominal severo localizado en cuadrante superior derecho")
	assert.Equal(t, 1, rec.CriticalSymptoms, "severe pain reaches the critical weight floor")
}

func TestEvaluator_Evaluate_Deterministic(t *testing.T) {
	ev := newDetailedEvaluator(t)

	req := domain.EvaluationRequest{
		PatientID:          "pt-020",
		Age:                41,
		Gender:             "F",
		FamilyHistory:      true,
		AlcoholConsumption: true,
		Responses: answers(map[string]string{
			"ampollas":       "SI",
			"cefaleas":       "SI",
			"colorOrina":     "Oscura",
			"familiares":     "SI",
			"consumeAlcohol": "SI",
			"mareos":         "NO",
		}),
	}

	first, err := ev.Evaluate(context.Background(), &req)
	require.NoError(t, err)
	second, err := ev.Evaluate(context.Background(), &req)
	require.NoError(t, err)

	assert.Equal(t, first, second, "same questionnaire yields identical results")
}

func TestEvaluator_Evaluate_AffirmingNeverLowersOutcome(t *testing.T) {
	ev := newDetailedEvaluator(t)

	rank := map[domain.TestType]int{
		domain.NO_TEST_NEEDED:     0,
		domain.FOLLOW_UP_REQUIRED: 1,
		domain.PBG_URINE_TEST:     2,
	}

	questions := domain.DetailedCatalog().Questions()
	responses := make([]domain.SymptomResponse, len(questions))
	for i, q := range questions {
		responses[i] = domain.SymptomResponse{QuestionID: q.ID, Answer: "NO"}
	}

	// Flip answers to affirmative one at a time; the outcome may only escalate.
	prev := 0
	for i, q := range questions {
		responses[i].Answer = "SI"
		req := domain.EvaluationRequest{
			PatientID: "pt-021",
			Age:       40,
			Responses: responses,
		}
		rec, err := ev.Evaluate(context.Background(), &req)
		require.NoError(t, err)
		require.GreaterOrEqual(t, rank[rec.TestType], prev, "affirming %s lowered the outcome", q.ID)
		prev = rank[rec.TestType]
	}
}

func TestEvaluator_Evaluate_InvalidRequest(t *testing.T) {
	ev := newDetailedEvaluator(t)

	_, err := ev.Evaluate(context.Background(), &domain.EvaluationRequest{Age: 30})
	require.Error(t, err)

	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEvaluator_Accessors(t *testing.T) {
	ev := newDetailedEvaluator(t)

	assert.Equal(t, domain.SchemeDetailed, ev.Scheme())
	assert.Equal(t, domain.SchemeDetailed, ev.Catalog().Scheme())
	assert.Len(t, ev.Rules(), 3)
}
