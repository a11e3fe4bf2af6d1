package domain

import (
	"fmt"
)

// Threshold is one decision tier. A tier is reached when the total score is at
// least MinScore or the critical symptom count is at least MinCritical.
type Threshold struct {
	MinScore    float64 `json:"minScore" mapstructure:"min_score"`
	MinCritical int     `json:"minCriticalSymptoms" mapstructure:"min_critical_symptoms"`
}

// TierMessage is the recommendation template attached to a tier.
type TierMessage struct {
	TestType   TestType   `json:"testType" mapstructure:"test_type"`
	Confidence Confidence `json:"confidence" mapstructure:"confidence"`
	Message    string     `json:"message" mapstructure:"message"`
}

// RuleConfiguration tunes the engine without touching rule code: threshold
// tiers, per-category weight multipliers, the enabled-rule whitelist and the
// critical-weight floor. A configuration is bound to one scheme; the catalog
// and rule set it is applied to must belong to the same scheme.
type RuleConfiguration struct {
	Scheme        Scheme               `json:"scheme" mapstructure:"scheme"`
	HighRisk      Threshold            `json:"highRisk" mapstructure:"high_risk"`
	MediumRisk    Threshold            `json:"mediumRisk" mapstructure:"medium_risk"`
	Messages      TierMessages         `json:"messages" mapstructure:"messages"`
	Weights       map[Category]float64 `json:"weights" mapstructure:"weights"`
	EnabledRules  []string             `json:"enabledRules" mapstructure:"enabled_rules"`
	CriticalFloor float64              `json:"criticalFloor" mapstructure:"critical_floor"`
}

// TierMessages holds one message per decision tier.
type TierMessages struct {
	HighRisk   TierMessage `json:"highRisk" mapstructure:"high_risk"`
	MediumRisk TierMessage `json:"mediumRisk" mapstructure:"medium_risk"`
	LowRisk    TierMessage `json:"lowRisk" mapstructure:"low_risk"`
}

// Validate fail-fasts on a configuration that could silently misclassify:
// inverted tier ordering, negative multipliers, unknown outcome types.
func (rc *RuleConfiguration) Validate() error {
	if !rc.Scheme.IsValid() {
		return fmt.Errorf("rule configuration: %w: %q", ErrInvalidScheme, rc.Scheme)
	}
	if rc.HighRisk.MinScore < rc.MediumRisk.MinScore {
		return fmt.Errorf("rule configuration: high risk min score %v below medium risk %v",
			rc.HighRisk.MinScore, rc.MediumRisk.MinScore)
	}
	if rc.HighRisk.MinCritical < rc.MediumRisk.MinCritical {
		return fmt.Errorf("rule configuration: high risk min critical %d below medium risk %d",
			rc.HighRisk.MinCritical, rc.MediumRisk.MinCritical)
	}
	if rc.MediumRisk.MinScore < 0 || rc.HighRisk.MinScore < 0 {
		return fmt.Errorf("rule configuration: negative tier score threshold")
	}
	if rc.CriticalFloor <= 0 {
		return fmt.Errorf("rule configuration: critical floor must be positive, got %v", rc.CriticalFloor)
	}
	for cat, w := range rc.Weights {
		if w < 0 {
			return fmt.Errorf("rule configuration: negative weight multiplier %v for category %q", w, cat)
		}
	}
	for _, tm := range []struct {
		tier string
		msg  TierMessage
	}{
		{"high_risk", rc.Messages.HighRisk},
		{"medium_risk", rc.Messages.MediumRisk},
		{"low_risk", rc.Messages.LowRisk},
	} {
		if !tm.msg.TestType.IsValid() {
			return fmt.Errorf("rule configuration: %s tier: %w: %q", tm.tier, ErrInvalidTestType, tm.msg.TestType)
		}
		if !tm.msg.Confidence.IsValid() {
			return fmt.Errorf("rule configuration: %s tier: %w: %q", tm.tier, ErrInvalidConfid, tm.msg.Confidence)
		}
		if tm.msg.Message == "" {
			return fmt.Errorf("rule configuration: %s tier has empty message", tm.tier)
		}
	}
	return nil
}

// RuleEnabled reports whether a rule id passes the whitelist. An empty
// whitelist enables every rule.
func (rc *RuleConfiguration) RuleEnabled(ruleID string) bool {
	if len(rc.EnabledRules) == 0 {
		return true
	}
	for _, id := range rc.EnabledRules {
		if id == ruleID {
			return true
		}
	}
	return false
}

// AdjustedWeight applies the category multiplier to a rule's base weight.
// Categories without a configured multiplier keep the base weight.
func (rc *RuleConfiguration) AdjustedWeight(category Category, baseWeight float64) float64 {
	if m, ok := rc.Weights[category]; ok {
		return baseWeight * m
	}
	return baseWeight
}

// IsCritical reports whether a matched rule counts as a critical symptom:
// either it belongs to the critical category or its adjusted weight reaches
// the configured floor.
func (rc *RuleConfiguration) IsCritical(category Category, adjustedWeight float64) bool {
	return category == CategoryCritical || adjustedWeight >= rc.CriticalFloor
}

// DefaultDetailedConfiguration returns the configuration paired with the
// detailed catalog. The tier scores sit below the per-pattern thresholds
// (cutaneous 22, acute 36, anamnesis 12) carried by the pattern rules
// themselves; the tiers only govern presentations that trip no pattern.
func DefaultDetailedConfiguration() *RuleConfiguration {
	return &RuleConfiguration{
		Scheme:        SchemeDetailed,
		HighRisk:      Threshold{MinScore: 12, MinCritical: 2},
		MediumRisk:    Threshold{MinScore: 8, MinCritical: 1},
		CriticalFloor: 4,
		Weights: map[Category]float64{
			CategoryCutaneous:     1.0,
			CategoryAcute:         1.0,
			CategoryAnamnesis:     1.0,
			CategoryEnvironmental: 1.0,
		},
		Messages: TierMessages{
			HighRisk: TierMessage{
				TestType:   PBG_URINE_TEST,
				Confidence: HIGH,
				Message:    "Se recomienda realizar test de PBG en orina para descartar Porfiria Aguda. La combinación de síntomas y factores de riesgo sugiere alta probabilidad.",
			},
			MediumRisk: TierMessage{
				TestType:   FOLLOW_UP_REQUIRED,
				Confidence: MEDIUM,
				Message:    "Se recomienda seguimiento clínico y considerar test de PBG si los síntomas persisten o empeoran.",
			},
			LowRisk: TierMessage{
				TestType:   NO_TEST_NEEDED,
				Confidence: LOW,
				Message:    "Los síntomas no sugieren Porfiria. Continuar con evaluación clínica general.",
			},
		},
	}
}

// DefaultGenericConfiguration returns the configuration paired with the
// generic catalog and combinatorial rule set.
func DefaultGenericConfiguration() *RuleConfiguration {
	return &RuleConfiguration{
		Scheme:        SchemeGeneric,
		HighRisk:      Threshold{MinScore: 8, MinCritical: 2},
		MediumRisk:    Threshold{MinScore: 5, MinCritical: 1},
		CriticalFloor: 4,
		Weights: map[Category]float64{
			CategoryGastrointestinal: 1.0,
			CategoryNeurological:     1.2,
			CategorySkin:             0.8,
			CategoryGenetic:          1.5,
			CategoryTriggers:         1.0,
			CategoryCritical:         2.0,
		},
		Messages: TierMessages{
			HighRisk: TierMessage{
				TestType:   PBG_URINE_TEST,
				Confidence: HIGH,
				Message:    "Se recomienda realizar test de PBG en orina para descartar Porfiria Aguda. La combinación de síntomas y factores de riesgo sugiere alta probabilidad.",
			},
			MediumRisk: TierMessage{
				TestType:   FOLLOW_UP_REQUIRED,
				Confidence: MEDIUM,
				Message:    "Se recomienda seguimiento clínico y considerar test de PBG si los síntomas persisten o empeoran.",
			},
			LowRisk: TierMessage{
				TestType:   NO_TEST_NEEDED,
				Confidence: LOW,
				Message:    "Los síntomas no sugieren Porfiria. Continuar con evaluación clínica general.",
			},
		},
	}
}

// DefaultConfiguration returns the default configuration for a scheme.
func DefaultConfiguration(scheme Scheme) (*RuleConfiguration, error) {
	switch scheme {
	case SchemeDetailed:
		return DefaultDetailedConfiguration(), nil
	case SchemeGeneric:
		return DefaultGenericConfiguration(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidScheme, scheme)
	}
}
