package service

import (
	"github.com/porfiria-rules-server/internal/domain"
)

// EvalContext bundles everything a rule condition may inspect: patient
// attributes, the answered questionnaire and the category scores already
// computed for it. Threshold rules read Scores; combinatorial rules read
// Attrs and Responses.
type EvalContext struct {
	Attrs     *domain.PatientAttributes
	Responses *domain.ResponseSet
	Scores    domain.CategoryScores
	Catalog   *domain.Catalog
}

// affirmed reports whether the question with the given id was answered
// affirmatively.
func (c *EvalContext) affirmed(questionID string) bool {
	q, ok := c.Catalog.Question(questionID)
	if !ok {
		return false
	}
	return c.Responses.Affirmed(q)
}

// Rule is a single screening rule. Condition must be a pure function of the
// context; rules are evaluated unconditionally and in declaration order, so a
// rule can never observe another rule's outcome.
type Rule struct {
	ID        string
	Name      string
	Category  domain.Category
	Weight    float64
	Pattern   domain.Pattern
	Reasoning string
	Condition func(ctx *EvalContext) bool
}

// Per-pattern category thresholds of the full questionnaire. These are
// co-versioned with the detailed catalog weights; changing one without the
// other shifts the clinical meaning of every evaluation.
const (
	cutaneousPatternThreshold = 22
	acutePatternThreshold     = 36
	anamnesisPatternThreshold = 12
)

// DetailedRules returns the threshold rule set paired with the detailed
// catalog. Each rule fires when its section's score reaches the section
// threshold and carries the disease pattern the resolver turns into a
// study battery.
func DetailedRules() []*Rule {
	return []*Rule{
		{
			ID:        "porfiria_cutanea",
			Name:      "PorfiriaCutaneaRule",
			Category:  domain.CategoryCutaneous,
			Weight:    5,
			Pattern:   domain.PatternCutaneous,
			Reasoning: "Síntomas cutáneos significativos",
			Condition: func(ctx *EvalContext) bool {
				return ctx.Scores[domain.CategoryCutaneous] >= cutaneousPatternThreshold
			},
		},
		{
			ID:        "porfiria_aguda",
			Name:      "PorfiriaAgudaRule",
			Category:  domain.CategoryAcute,
			Weight:    5,
			Pattern:   domain.PatternAcute,
			Reasoning: "Síntomas agudos significativos",
			Condition: func(ctx *EvalContext) bool {
				return ctx.Scores[domain.CategoryAcute] >= acutePatternThreshold
			},
		},
		{
			ID:        "anamnesis_significativa",
			Name:      "AnamnesisRule",
			Category:  domain.CategoryAnamnesis,
			Weight:    5,
			Pattern:   domain.PatternAnamnesis,
			Reasoning: "Antecedentes relevantes",
			Condition: func(ctx *EvalContext) bool {
				// The anamnesis pattern also counts the lifestyle triggers
				// asked in the environmental section.
				score := ctx.Scores[domain.CategoryAnamnesis]
				if ctx.affirmed("consumeAlcohol") {
					score += 5
				}
				if ctx.affirmed("fuma") {
					score += 2
				}
				return score >= anamnesisPatternThreshold
			},
		},
	}
}

// GenericRules returns the combinatorial rule set paired with the short
// triage catalog.
func GenericRules() []*Rule {
	return []*Rule{
		// Gastrointestinal
		{
			ID:        "gastro_abdominal_pain_severe",
			Name:      "Dolor abdominal severo",
			Category:  domain.CategoryGastrointestinal,
			Weight:    4,
			Reasoning: "Dolor abdominal severo localizado en cuadrante superior derecho",
			Condition: func(ctx *EvalContext) bool {
				return ctx.affirmed("1") && ctx.affirmed("2")
			},
		},
		{
			ID:        "gastro_nausea_vomiting",
			Name:      "Náuseas y vómitos",
			Category:  domain.CategoryGastrointestinal,
			Weight:    2,
			Reasoning: "Presencia de náuseas y vómitos",
			Condition: func(ctx *EvalContext) bool {
				return ctx.affirmed("13")
			},
		},
		{
			ID:        "gastro_constipation",
			Name:      "Estreñimiento",
			Category:  domain.CategoryGastrointestinal,
			Weight:    1,
			Reasoning: "Presencia de estreñimiento",
			Condition: func(ctx *EvalContext) bool {
				return ctx.affirmed("14")
			},
		},

		// Neurological
		{
			ID:        "neuro_muscle_weakness",
			Name:      "Debilidad muscular",
			Category:  domain.CategoryNeurological,
			Weight:    3,
			Reasoning: "Debilidad muscular que afecta principalmente las extremidades superiores",
			Condition: func(ctx *EvalContext) bool {
				return ctx.affirmed("3") && ctx.affirmed("4")
			},
		},
		{
			ID:        "neuro_seizures",
			Name:      "Convulsiones",
			Category:  domain.CategoryNeurological,
			Weight:    4,
			Reasoning: "Presencia de convulsiones",
			Condition: func(ctx *EvalContext) bool {
				return ctx.affirmed("15")
			},
		},
		{
			ID:        "neuro_mental_changes",
			Name:      "Cambios en el estado mental",
			Category:  domain.CategoryNeurological,
			Weight:    3,
			Reasoning: "Cambios en el comportamiento con síntomas específicos (ansiedad, confusión, alucinaciones)",
			Condition: func(ctx *EvalContext) bool {
				return ctx.affirmed("7") && ctx.affirmed("8")
			},
		},

		// Cutaneous
		{
			ID:        "cutaneous_photosensitivity",
			Name:      "Fotosensibilidad",
			Category:  domain.CategorySkin,
			Weight:    3,
			Reasoning: "Lesiones cutáneas en áreas expuestas al sol",
			Condition: func(ctx *EvalContext) bool {
				return ctx.affirmed("5") && ctx.affirmed("6")
			},
		},

		// Genetic
		{
			ID:        "genetic_family_history",
			Name:      "Antecedentes familiares",
			Category:  domain.CategoryGenetic,
			Weight:    4,
			Reasoning: "Antecedentes familiares de Porfiria",
			Condition: func(ctx *EvalContext) bool {
				return ctx.Attrs.FamilyHistory
			},
		},

		// Environmental
		{
			ID:        "env_medications",
			Name:      "Medicamentos desencadenantes",
			Category:  domain.CategoryTriggers,
			Weight:    3,
			Reasoning: "Uso de medicamentos que pueden desencadenar Porfiria",
			Condition: func(ctx *EvalContext) bool {
				return ctx.affirmed("10")
			},
		},
		{
			ID:        "env_alcohol",
			Name:      "Consumo de alcohol",
			Category:  domain.CategoryTriggers,
			Weight:    2,
			Reasoning: "Consumo regular de alcohol",
			Condition: func(ctx *EvalContext) bool {
				return ctx.Attrs.AlcoholConsumption
			},
		},
		{
			ID:        "env_fasting",
			Name:      "Ayuno prolongado",
			Category:  domain.CategoryTriggers,
			Weight:    2,
			Reasoning: "Ayuno prolongado o dieta restrictiva",
			Condition: func(ctx *EvalContext) bool {
				return ctx.Attrs.FastingStatus
			},
		},

		// Critical combinations
		{
			ID:        "critical_acute_porphyria",
			Name:      "Sospecha de Porfiria Aguda",
			Category:  domain.CategoryCritical,
			Weight:    5,
			Reasoning: "Combinación de síntomas que sugiere Porfiria Aguda",
			Condition: func(ctx *EvalContext) bool {
				return (ctx.affirmed("1") && ctx.affirmed("3")) ||
					(ctx.Attrs.FamilyHistory && ctx.affirmed("10"))
			},
		},
		{
			ID:        "critical_cutaneous_porphyria",
			Name:      "Sospecha de Porfiria Cutánea",
			Category:  domain.CategoryCritical,
			Weight:    4,
			Reasoning: "Combinación de síntomas que sugiere Porfiria Cutánea",
			Condition: func(ctx *EvalContext) bool {
				return ctx.affirmed("5") && ctx.affirmed("6") && ctx.Attrs.FamilyHistory
			},
		},
		{
			ID:        "critical_high_risk",
			Name:      "Alto riesgo de Porfiria",
			Category:  domain.CategoryCritical,
			Weight:    6,
			Reasoning: "Alto riesgo basado en múltiples síntomas críticos y antecedentes familiares",
			Condition: func(ctx *EvalContext) bool {
				return (ctx.affirmed("1") && ctx.affirmed("3") && ctx.Attrs.FamilyHistory) ||
					(ctx.affirmed("15") && ctx.Attrs.FamilyHistory)
			},
		},

		// Age specific
		{
			ID:        "age_pediatric_risk",
			Name:      "Riesgo pediátrico",
			Category:  domain.CategoryGenetic,
			Weight:    3,
			Reasoning: "Paciente pediátrico con antecedentes familiares y síntomas",
			Condition: func(ctx *EvalContext) bool {
				anySymptoms := ctx.affirmed("1") || ctx.affirmed("3") || ctx.affirmed("5")
				return ctx.Attrs.Age < 18 && ctx.Attrs.FamilyHistory && anySymptoms
			},
		},
		{
			ID:        "age_adult_onset",
			Name:      "Inicio en edad adulta",
			Category:  domain.CategoryTriggers,
			Weight:    2,
			Reasoning: "Síntomas en edad adulta con medicamentos desencadenantes",
			Condition: func(ctx *EvalContext) bool {
				isAdult := ctx.Attrs.Age >= 18 && ctx.Attrs.Age <= 65
				return isAdult && ctx.affirmed("1") && ctx.affirmed("10")
			},
		},

		// Gender specific
		{
			ID:        "gender_female_risk",
			Name:      "Riesgo en mujeres",
			Category:  domain.CategoryGenetic,
			Weight:    1,
			Reasoning: "Mujer en edad reproductiva con síntomas (mayor prevalencia de Porfiria)",
			Condition: func(ctx *EvalContext) bool {
				reproductiveAge := ctx.Attrs.Age >= 15 && ctx.Attrs.Age <= 45
				anySymptoms := ctx.affirmed("1") || ctx.affirmed("3")
				return ctx.Attrs.Gender == "F" && reproductiveAge && anySymptoms
			},
		},
	}
}

// RulesForScheme pairs a scheme with its rule set.
func RulesForScheme(scheme domain.Scheme) []*Rule {
	switch scheme {
	case domain.SchemeDetailed:
		return DetailedRules()
	case domain.SchemeGeneric:
		return GenericRules()
	default:
		return nil
	}
}
