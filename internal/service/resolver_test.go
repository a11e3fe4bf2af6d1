package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porfiria-rules-server/internal/domain"
)

func matchedRule(code, name string, cat domain.Category, weight float64, critical bool, pattern domain.Pattern) domain.RuleResult {
	return domain.RuleResult{
		Code:     code,
		Name:     name,
		Category: cat,
		Weight:   weight,
		Matched:  true,
		Critical: critical,
		Pattern:  pattern,
	}
}

func TestResolver_AcutePatternWinsOverCutaneous(t *testing.T) {
	resolver := NewRecommendationResolver(domain.DefaultDetailedConfiguration(), newTestLogger())

	scores := domain.CategoryScores{
		domain.CategoryCutaneous: 25,
		domain.CategoryAcute:     38,
	}
	results := []domain.RuleResult{
		matchedRule("porfiria_cutanea", "PorfiriaCutaneaRule", domain.CategoryCutaneous, 5, true, domain.PatternCutaneous),
		matchedRule("porfiria_aguda", "PorfiriaAgudaRule", domain.CategoryAcute, 5, true, domain.PatternAcute),
	}
	attrs := &domain.PatientAttributes{PatientID: "pt-001", Age: 40}

	rec := resolver.Resolve(attrs, scores, results)

	assert.Equal(t, domain.PBG_URINE_TEST, rec.TestType)
	assert.Equal(t, domain.HIGH, rec.Confidence)
	assert.Equal(t, domain.PatternAcute, rec.Pattern)
	assert.Equal(t, "Se recomienda realizar estudios urgentes para Porfiria Aguda.", rec.Message)
	assert.Equal(t, 38.0, rec.Score, "score is the winning pattern's category score")
	assert.Equal(t, acuteStudies, rec.RecommendedStudies)
	assert.Len(t, rec.ContraindicatedMeds, 13)
	assert.Contains(t, rec.ContraindicatedMeds, "Barbitúricos")
	assert.Equal(t, []string{"PorfiriaCutaneaRule", "PorfiriaAgudaRule"}, rec.MatchedRules)
	assert.Equal(t, 2, rec.CriticalSymptoms)
}

func TestResolver_CutaneousPattern(t *testing.T) {
	resolver := NewRecommendationResolver(domain.DefaultDetailedConfiguration(), newTestLogger())

	scores := domain.CategoryScores{domain.CategoryCutaneous: 24}
	results := []domain.RuleResult{
		matchedRule("porfiria_cutanea", "PorfiriaCutaneaRule", domain.CategoryCutaneous, 5, true, domain.PatternCutaneous),
	}

	rec := resolver.Resolve(&domain.PatientAttributes{PatientID: "pt-002", Age: 50}, scores, results)

	assert.Equal(t, domain.PBG_URINE_TEST, rec.TestType)
	assert.Equal(t, "Se recomienda realizar estudios para Porfiria Cutánea.", rec.Message)
	assert.Equal(t, cutaneousStudies, rec.RecommendedStudies)
	assert.Len(t, rec.ContraindicatedMeds, 10)
	assert.Contains(t, rec.ContraindicatedMeds, "Cloroquina")
	assert.Equal(t, 24.0, rec.Score)
}

func TestResolver_AnamnesisPatternOrdersStudiesWithoutMeds(t *testing.T) {
	resolver := NewRecommendationResolver(domain.DefaultDetailedConfiguration(), newTestLogger())

	scores := domain.CategoryScores{domain.CategoryAnamnesis: 12}
	results := []domain.RuleResult{
		matchedRule("anamnesis_significativa", "AnamnesisRule", domain.CategoryAnamnesis, 5, true, domain.PatternAnamnesis),
	}

	rec := resolver.Resolve(&domain.PatientAttributes{PatientID: "pt-003", Age: 60}, scores, results)

	assert.Equal(t, domain.PBG_URINE_TEST, rec.TestType)
	assert.Equal(t, "Se recomienda realizar estudios basado en antecedentes significativos.", rec.Message)
	assert.Equal(t, acuteStudies, rec.RecommendedStudies)
	assert.Empty(t, rec.ContraindicatedMeds, "medication warnings accompany confirmed symptom patterns only")
}

func TestResolver_DetailedTiers(t *testing.T) {
	resolver := NewRecommendationResolver(domain.DefaultDetailedConfiguration(), newTestLogger())
	attrs := &domain.PatientAttributes{PatientID: "pt-004", Age: 40}

	tests := []struct {
		name       string
		total      float64
		wantType   domain.TestType
		wantConfid domain.Confidence
	}{
		{"high tier at threshold", 12, domain.PBG_URINE_TEST, domain.HIGH},
		{"medium tier just below high", 11.5, domain.FOLLOW_UP_REQUIRED, domain.MEDIUM},
		{"medium tier at threshold", 8, domain.FOLLOW_UP_REQUIRED, domain.MEDIUM},
		{"low tier below medium", 7.5, domain.NO_TEST_NEEDED, domain.LOW},
		{"low tier at zero", 0, domain.NO_TEST_NEEDED, domain.LOW},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := domain.CategoryScores{domain.CategoryAcute: tt.total}
			rec := resolver.Resolve(attrs, scores, nil)
			assert.Equal(t, tt.wantType, rec.TestType)
			assert.Equal(t, tt.wantConfid, rec.Confidence)
			assert.Equal(t, tt.total, rec.Score)
			assert.Empty(t, rec.RecommendedStudies)
		})
	}
}

func TestResolver_CriticalCountTripsTier(t *testing.T) {
	resolver := NewRecommendationResolver(domain.DefaultDetailedConfiguration(), newTestLogger())
	attrs := &domain.PatientAttributes{PatientID: "pt-005", Age: 40}
	scores := domain.CategoryScores{domain.CategoryAcute: 5}

	one := []domain.RuleResult{
		matchedRule("r1", "Regla A", domain.CategoryAcute, 5, true, domain.PatternNone),
	}
	rec := resolver.Resolve(attrs, scores, one)
	assert.Equal(t, domain.FOLLOW_UP_REQUIRED, rec.TestType, "one critical symptom reaches the medium tier")

	two := append(one, matchedRule("r2", "Regla B", domain.CategoryAcute, 4, true, domain.PatternNone))
	rec = resolver.Resolve(attrs, scores, two)
	assert.Equal(t, domain.PBG_URINE_TEST, rec.TestType, "two critical symptoms reach the high tier")
	assert.Equal(t, domain.HIGH, rec.Confidence)
}

func TestResolver_GenericScoresByMatchedWeights(t *testing.T) {
	resolver := NewRecommendationResolver(domain.DefaultGenericConfiguration(), newTestLogger())
	attrs := &domain.PatientAttributes{PatientID: "pt-006", Age: 30}

	// Category scores are ignored under the generic scheme; only the matched
	// rule weights count.
	scores := domain.CategoryScores{domain.CategoryGastrointestinal: 40}
	results := []domain.RuleResult{
		matchedRule("gastro_abdominal_pain_severe", "Dolor abdominal severo", domain.CategoryGastrointestinal, 4, true, domain.PatternNone),
		matchedRule("gastro_nausea_vomiting", "Náuseas y vómitos", domain.CategoryGastrointestinal, 2, false, domain.PatternNone),
		{Code: "gastro_constipation", Name: "Estreñimiento", Category: domain.CategoryGastrointestinal, Weight: 1, Matched: false},
	}

	rec := resolver.Resolve(attrs, scores, results)

	assert.Equal(t, 6.0, rec.Score)
	assert.Equal(t, domain.FOLLOW_UP_REQUIRED, rec.TestType)
	assert.Equal(t, []string{"Dolor abdominal severo", "Náuseas y vómitos"}, rec.MatchedRules)
}

func TestResolver_ReasoningAndCriticalCount(t *testing.T) {
	resolver := NewRecommendationResolver(domain.DefaultGenericConfiguration(), newTestLogger())
	attrs := &domain.PatientAttributes{PatientID: "pt-009", Age: 30}

	results := []domain.RuleResult{
		matchedRule("gastro_abdominal_pain_severe", "Dolor abdominal severo", domain.CategoryGastrointestinal, 4, true, domain.PatternNone),
		matchedRule("critical_acute_porphyria", "Porfiria Aguda crítica", domain.CategoryCritical, 10, true, domain.PatternNone),
		{
			Code:     "gastro_constipation",
			Name:     "Estreñimiento",
			Category: domain.CategoryGastrointestinal,
			Weight:   1,
			Matched:  false,
			Evidence: "Presencia de estreñimiento",
		},
	}
	results[0].Evidence = "Dolor abdominal severo localizado en cuadrante superior derecho"
	results[1].Evidence = "Combinación de síntomas que sugiere Porfiria Aguda"

	rec := resolver.Resolve(attrs, domain.CategoryScores{}, results)

	assert.Equal(t, 2, rec.CriticalSymptoms)
	assert.Equal(t, []string{
		"Dolor abdominal severo localizado en cuadrante superior derecho",
		"Combinación de síntomas que sugiere Porfiria Aguda",
	}, rec.Reasoning, "justifications of matched rules only, in match order")
	assert.Equal(t, []string{"Dolor abdominal severo", "Porfiria Aguda crítica"}, rec.MatchedRules)
}

func TestResolver_EmptyEvaluationSerializesArrays(t *testing.T) {
	resolver := NewRecommendationResolver(domain.DefaultDetailedConfiguration(), newTestLogger())

	rec := resolver.Resolve(&domain.PatientAttributes{PatientID: "pt-015", Age: 40}, domain.CategoryScores{}, nil)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	body := string(raw)
	assert.Contains(t, body, `"criticalSymptoms":0`)
	assert.Contains(t, body, `"matchedRules":[]`)
	assert.Contains(t, body, `"reasoning":[]`)
	assert.Contains(t, body, `"riskFactors":[]`)
	assert.Contains(t, body, `"estudiosRecomendados":[]`)
	assert.Contains(t, body, `"medicamentosContraproducentes":[]`)
}

func TestResolver_RiskFactorsReportedOnLowRisk(t *testing.T) {
	resolver := NewRecommendationResolver(domain.DefaultDetailedConfiguration(), newTestLogger())

	attrs := &domain.PatientAttributes{
		PatientID:          "pt-007",
		Age:                12,
		FamilyHistory:      true,
		AlcoholConsumption: true,
		FastingStatus:      true,
		Medications:        []string{"fenobarbital"},
	}

	rec := resolver.Resolve(attrs, domain.CategoryScores{}, nil)

	assert.Equal(t, domain.NO_TEST_NEEDED, rec.TestType)
	assert.Equal(t, []string{
		"Antecedentes familiares de Porfiria",
		"Consumo de alcohol",
		"Ayuno prolongado",
		"Medicamentos que pueden desencadenar Porfiria",
		"Edad pediátrica (mayor riesgo)",
	}, rec.RiskFactors)
}

func TestResolver_EmptyEvaluation(t *testing.T) {
	resolver := NewRecommendationResolver(domain.DefaultDetailedConfiguration(), newTestLogger())

	rec := resolver.Resolve(&domain.PatientAttributes{PatientID: "pt-008", Age: 40}, domain.CategoryScores{}, nil)

	assert.Equal(t, domain.NO_TEST_NEEDED, rec.TestType)
	assert.Equal(t, domain.LOW, rec.Confidence)
	assert.Equal(t, 0.0, rec.Score)
	assert.Zero(t, rec.CriticalSymptoms)
	assert.Equal(t, "Los síntomas no sugieren Porfiria. Continuar con evaluación clínica general.", rec.Message)
	assert.Empty(t, rec.MatchedRules)
	assert.Empty(t, rec.Reasoning)
	assert.Empty(t, rec.RiskFactors)
}
