// Package domain contains the core business entities for questionnaire-driven
// Porphyria screening: the symptom catalog, patient attributes, questionnaire
// responses and the clinical test recommendation produced from them.
//
// The vocabulary (question identifiers, clinical messages, study names) follows
// the CIPYP screening questionnaire and is kept in its reference locale.
package domain

import (
	"errors"
	"fmt"
)

// TestType is the clinical outcome of an evaluation. The enumeration is closed:
// downstream consumers branch on it exhaustively, so new values must not be
// added without revisiting every caller.
type TestType string

const (
	PBG_URINE_TEST     TestType = "PBG_URINE_TEST"
	FOLLOW_UP_REQUIRED TestType = "FOLLOW_UP_REQUIRED"
	NO_TEST_NEEDED     TestType = "NO_TEST_NEEDED"
)

// Confidence expresses how strongly the evidence supports the recommendation.
type Confidence string

const (
	LOW    Confidence = "low"
	MEDIUM Confidence = "medium"
	HIGH   Confidence = "high"
)

// Category is a clinical grouping of symptoms and rules. Catalog questions use
// the questionnaire section categories; generic-scheme rules use finer-grained
// clinical categories. Free-form values are allowed for custom rules.
type Category string

const (
	// Questionnaire section categories (detailed scheme).
	CategoryCutaneous     Category = "sintomas_cutaneos"
	CategoryAcute         Category = "sintomas_agudos"
	CategoryAnamnesis     Category = "anamnesis"
	CategoryEnvironmental Category = "factores_ambientales"

	// Rule categories (generic scheme).
	CategoryGastrointestinal Category = "gastrointestinal"
	CategoryNeurological     Category = "neurological"
	CategorySkin             Category = "cutaneous"
	CategoryGenetic          Category = "genetic"
	CategoryTriggers         Category = "environmental"
	CategoryCritical         Category = "critical"
)

// Pattern identifies a disease-specific presentation detected by a threshold
// rule. It selects which study battery and medication-contraindication list
// the resolver attaches to the recommendation.
type Pattern string

const (
	PatternAcute     Pattern = "acute-porphyria"
	PatternCutaneous Pattern = "cutaneous-porphyria"
	PatternAnamnesis Pattern = "anamnesis"
	PatternNone      Pattern = ""
)

// Scheme names a co-versioned (symptom catalog, rule set, thresholds) unit.
// A catalog from one scheme must never be evaluated against another scheme's
// thresholds.
type Scheme string

const (
	SchemeDetailed Scheme = "detailed"
	SchemeGeneric  Scheme = "generic"
)

// Answer is a single questionnaire answer token. The reference locale uses
// "SI"/"NO"; the generic scheme historically used "YES"/"NO". Anything that is
// not in a question's affirmative token set counts as a negative answer.
type Answer string

// Validation errors for clinical data integrity.
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidTestType     = errors.New("invalid test type")
	ErrInvalidConfid       = errors.New("invalid confidence level")
	ErrInvalidScheme       = errors.New("unknown scoring scheme")
	ErrUnknownQuestion     = errors.New("unknown question id")
	ErrDuplicateEvaluation = errors.New("evaluation already recorded")
)

// IsValid reports whether the test type is part of the closed enumeration.
func (t TestType) IsValid() bool {
	switch t {
	case PBG_URINE_TEST, FOLLOW_UP_REQUIRED, NO_TEST_NEEDED:
		return true
	default:
		return false
	}
}

func (t TestType) String() string {
	return string(t)
}

// RequiresAction reports whether the recommendation asks the physician to do
// something (order a test or schedule follow-up).
func (t TestType) RequiresAction() bool {
	return t == PBG_URINE_TEST || t == FOLLOW_UP_REQUIRED
}

// IsValid reports whether the confidence level is one of low/medium/high.
func (c Confidence) IsValid() bool {
	switch c {
	case LOW, MEDIUM, HIGH:
		return true
	default:
		return false
	}
}

func (c Confidence) String() string {
	return string(c)
}

// IsValid reports whether the scheme is one of the shipped scheme identifiers.
func (s Scheme) IsValid() bool {
	switch s {
	case SchemeDetailed, SchemeGeneric:
		return true
	default:
		return false
	}
}

func (s Scheme) String() string {
	return string(s)
}

// Priority orders disease patterns when more than one threshold rule fires in
// the same evaluation; higher wins. Acute presentations outrank cutaneous ones
// because the acute study battery is the more urgent order.
func (p Pattern) Priority() int {
	switch p {
	case PatternAcute:
		return 3
	case PatternCutaneous:
		return 2
	case PatternAnamnesis:
		return 1
	default:
		return 0
	}
}

// IsValid reports whether the pattern is a known disease pattern.
func (p Pattern) IsValid() bool {
	switch p {
	case PatternAcute, PatternCutaneous, PatternAnamnesis:
		return true
	default:
		return false
	}
}

// LogFields returns structured logging fields for audit trails.
func (t TestType) LogFields() map[string]any {
	return map[string]any{
		"test_type":       string(t),
		"is_valid":        t.IsValid(),
		"requires_action": t.RequiresAction(),
	}
}

// ParseTestType converts a wire value into a TestType, rejecting anything
// outside the closed enumeration.
func ParseTestType(s string) (TestType, error) {
	t := TestType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("parse test type %q: %w", s, ErrInvalidTestType)
	}
	return t, nil
}
