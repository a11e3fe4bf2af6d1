package service

import (
	"github.com/sirupsen/logrus"

	"github.com/porfiria-rules-server/internal/domain"
)

// Study batteries and contraindicated medication lists per disease pattern.
// These are clinical reference data, looked up, never computed.
var (
	acuteStudies = []string{
		"PBG (Porfobilinógeno)",
		"IPP (Isómeros de Porfirinas)",
		"ALA (Ácido Aminolevulínico)",
		"PTO (Porfirinas Totales en Orina)",
	}

	cutaneousStudies = []string{
		"IPP (Isómeros de Porfirinas)",
		"PTO (Porfirinas Totales en Orina)",
		"CRO (Coproporfirinas)",
		"PBG (Porfobilinógeno)",
	}

	acuteContraindicated = []string{
		"Barbitúricos",
		"Sulfonamidas",
		"Estrógenos",
		"Progestágenos",
		"Anticonvulsivantes",
		"Griseofulvina",
		"Rifampicina",
		"Ergotamina",
		"Anticonceptivos orales",
		"Ketoconazol",
		"Metildopa",
		"Piroxicam",
		"Espironolactona",
	}

	cutaneousContraindicated = []string{
		"Tetraciclinas",
		"Nalidíxico",
		"Furosemida",
		"Sulfonilureas",
		"Estrógenos",
		"Alcohol",
		"Hierro",
		"Retinoides",
		"Cloroquina",
		"Hidroxicloroquina",
	}

	patternMessages = map[domain.Pattern]string{
		domain.PatternAcute:     "Se recomienda realizar estudios urgentes para Porfiria Aguda.",
		domain.PatternCutaneous: "Se recomienda realizar estudios para Porfiria Cutánea.",
		domain.PatternAnamnesis: "Se recomienda realizar estudios basado en antecedentes significativos.",
	}
)

// RecommendationResolver turns rule results and category scores into exactly
// one recommendation. Decision order: a matched disease pattern short-circuits
// to an urgent PBG order with the pattern's study battery; otherwise the
// configured tiers apply high, then medium, then the low-risk default.
type RecommendationResolver struct {
	logger *logrus.Logger
	config *domain.RuleConfiguration
}

// NewRecommendationResolver creates a resolver driven by one scheme's
// configuration.
func NewRecommendationResolver(config *domain.RuleConfiguration, logger *logrus.Logger) *RecommendationResolver {
	return &RecommendationResolver{
		logger: logger,
		config: config,
	}
}

// Resolve produces the recommendation for one evaluation. It always returns a
// complete value; the low-risk tier is the fallthrough, never an error.
func (r *RecommendationResolver) Resolve(attrs *domain.PatientAttributes, scores domain.CategoryScores, results []domain.RuleResult) domain.Recommendation {
	matched := make([]domain.RuleResult, 0, len(results))
	critical := 0
	for _, res := range results {
		if !res.Matched {
			continue
		}
		matched = append(matched, res)
		if res.Critical {
			critical++
		}
	}

	riskFactors := identifyRiskFactors(attrs)
	rec := r.resolvePattern(scores, matched)
	if rec == nil {
		rec = r.resolveTier(scores, matched, critical)
	}
	rec.RiskFactors = riskFactors
	rec.CriticalSymptoms = critical
	for _, res := range matched {
		rec.MatchedRules = append(rec.MatchedRules, res.Name)
		rec.Reasoning = append(rec.Reasoning, res.Evidence)
	}
	rec.NormalizeLists()

	r.logger.WithFields(logrus.Fields{
		"patient_id":     attrs.PatientID,
		"test_type":      rec.TestType.String(),
		"confidence":     rec.Confidence.String(),
		"score":          rec.Score,
		"critical_count": critical,
		"pattern":        string(rec.Pattern),
	}).Info("Resolved recommendation")

	return *rec
}

// resolvePattern returns the pattern short-circuit recommendation, or nil when
// no disease pattern matched. When several patterns match the same
// questionnaire, the highest-priority pattern wins.
func (r *RecommendationResolver) resolvePattern(scores domain.CategoryScores, matched []domain.RuleResult) *domain.Recommendation {
	var best *domain.RuleResult
	for i := range matched {
		res := &matched[i]
		if res.Pattern == domain.PatternNone {
			continue
		}
		if best == nil || res.Pattern.Priority() > best.Pattern.Priority() {
			best = res
		}
	}
	if best == nil {
		return nil
	}

	rec := &domain.Recommendation{
		TestType:   domain.PBG_URINE_TEST,
		Confidence: domain.HIGH,
		Message:    patternMessages[best.Pattern],
		Score:      scores[best.Category],
		Pattern:    best.Pattern,
	}
	switch best.Pattern {
	case domain.PatternAcute, domain.PatternAnamnesis:
		rec.RecommendedStudies = acuteStudies
		if best.Pattern == domain.PatternAcute {
			rec.ContraindicatedMeds = acuteContraindicated
		}
	case domain.PatternCutaneous:
		rec.RecommendedStudies = cutaneousStudies
		rec.ContraindicatedMeds = cutaneousContraindicated
	}
	return rec
}

// resolveTier applies the configured thresholds. A tier is reached by total
// score or by critical symptom count, whichever trips first.
func (r *RecommendationResolver) resolveTier(scores domain.CategoryScores, matched []domain.RuleResult, critical int) *domain.Recommendation {
	total := r.totalScore(scores, matched)
	msgs := r.config.Messages

	tier := msgs.LowRisk
	switch {
	case total >= r.config.HighRisk.MinScore || critical >= r.config.HighRisk.MinCritical:
		tier = msgs.HighRisk
	case total >= r.config.MediumRisk.MinScore || critical >= r.config.MediumRisk.MinCritical:
		tier = msgs.MediumRisk
	}

	return &domain.Recommendation{
		TestType:   tier.TestType,
		Confidence: tier.Confidence,
		Message:    tier.Message,
		Score:      total,
	}
}

// totalScore is the scheme's score strategy: the detailed questionnaire sums
// its category scores, the generic rule set sums the adjusted weights of the
// matched rules.
func (r *RecommendationResolver) totalScore(scores domain.CategoryScores, matched []domain.RuleResult) float64 {
	if r.config.Scheme == domain.SchemeDetailed {
		return scores.Total()
	}
	var total float64
	for _, res := range matched {
		total += res.Weight
	}
	return total
}

// identifyRiskFactors derives the patient-level risk factor strings reported
// alongside every recommendation, including low-risk ones.
func identifyRiskFactors(attrs *domain.PatientAttributes) []string {
	var factors []string
	if attrs.FamilyHistory {
		factors = append(factors, "Antecedentes familiares de Porfiria")
	}
	if attrs.AlcoholConsumption {
		factors = append(factors, "Consumo de alcohol")
	}
	if attrs.FastingStatus {
		factors = append(factors, "Ayuno prolongado")
	}
	if len(attrs.Medications) > 0 {
		factors = append(factors, "Medicamentos que pueden desencadenar Porfiria")
	}
	if attrs.Age < 18 {
		factors = append(factors, "Edad pediátrica (mayor riesgo)")
	}
	return factors
}
