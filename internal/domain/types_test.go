package domain

import (
	"testing"
)

func TestTestTypeConstants(t *testing.T) {
	tests := []struct {
		name     string
		value    TestType
		expected string
	}{
		{"PBG urine test", PBG_URINE_TEST, "PBG_URINE_TEST"},
		{"Follow up required", FOLLOW_UP_REQUIRED, "FOLLOW_UP_REQUIRED"},
		{"No test needed", NO_TEST_NEEDED, "NO_TEST_NEEDED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if string(tt.value) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(tt.value))
			}
			if !tt.value.IsValid() {
				t.Errorf("Expected %s to be valid", tt.value)
			}
		})
	}
}

func TestTestTypeIsValidRejectsUnknown(t *testing.T) {
	if TestType("URGENT_TEST").IsValid() {
		t.Error("Expected unknown test type to be invalid")
	}
	if TestType("").IsValid() {
		t.Error("Expected empty test type to be invalid")
	}
}

func TestTestTypeRequiresAction(t *testing.T) {
	tests := []struct {
		value    TestType
		expected bool
	}{
		{PBG_URINE_TEST, true},
		{FOLLOW_UP_REQUIRED, true},
		{NO_TEST_NEEDED, false},
	}

	for _, tt := range tests {
		if got := tt.value.RequiresAction(); got != tt.expected {
			t.Errorf("%s.RequiresAction() = %v, want %v", tt.value, got, tt.expected)
		}
	}
}

func TestParseTestType(t *testing.T) {
	got, err := ParseTestType("PBG_URINE_TEST")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != PBG_URINE_TEST {
		t.Errorf("Expected PBG_URINE_TEST, got %s", got)
	}

	if _, err := ParseTestType("pbg_urine_test"); err == nil {
		t.Error("Expected error for lowercase test type")
	}
}

func TestConfidenceIsValid(t *testing.T) {
	for _, c := range []Confidence{LOW, MEDIUM, HIGH} {
		if !c.IsValid() {
			t.Errorf("Expected %s to be valid", c)
		}
	}
	if Confidence("HIGH").IsValid() {
		t.Error("Confidence values are lowercase, uppercase must be invalid")
	}
}

func TestSchemeIsValid(t *testing.T) {
	if !SchemeDetailed.IsValid() || !SchemeGeneric.IsValid() {
		t.Error("Expected shipped schemes to be valid")
	}
	if Scheme("drools").IsValid() {
		t.Error("Expected unknown scheme to be invalid")
	}
}

func TestPatternPriority(t *testing.T) {
	if PatternAcute.Priority() <= PatternCutaneous.Priority() {
		t.Error("Acute pattern must outrank cutaneous")
	}
	if PatternCutaneous.Priority() <= PatternAnamnesis.Priority() {
		t.Error("Cutaneous pattern must outrank anamnesis")
	}
	if PatternNone.Priority() != 0 {
		t.Errorf("Empty pattern priority = %d, want 0", PatternNone.Priority())
	}
}

func TestResponseSetAffirmed(t *testing.T) {
	catalog := DetailedCatalog()
	ampollas, _ := catalog.Question("ampollas")
	colorOrina, _ := catalog.Question("colorOrina")

	rs := NewResponseSet([]SymptomResponse{
		{QuestionID: "ampollas", Answer: "SI"},
		{QuestionID: "colorOrina", Answer: "Oscura"},
		{QuestionID: "fuma", Answer: "NO"},
	})

	if !rs.Affirmed(ampollas) {
		t.Error("Expected SI to affirm ampollas")
	}
	if !rs.Affirmed(colorOrina) {
		t.Error("Expected Oscura to affirm colorOrina")
	}
	fuma, _ := catalog.Question("fuma")
	if rs.Affirmed(fuma) {
		t.Error("Expected NO to not affirm fuma")
	}
	maculas, _ := catalog.Question("maculas")
	if rs.Affirmed(maculas) {
		t.Error("Expected unanswered question to not be affirmed")
	}
}

func TestResponseSetAffirmedCaseInsensitive(t *testing.T) {
	catalog := GenericCatalog()
	q, _ := catalog.Question("1")

	rs := NewResponseSet([]SymptomResponse{{QuestionID: "1", Answer: "yes"}})
	if !rs.Affirmed(q) {
		t.Error("Expected lowercase yes to affirm a default-token question")
	}
}

func TestResponseSetDuplicateKeepsLast(t *testing.T) {
	rs := NewResponseSet([]SymptomResponse{
		{QuestionID: "ampollas", Answer: "SI"},
		{QuestionID: "ampollas", Answer: "NO"},
	})
	a, ok := rs.Answer("ampollas")
	if !ok || a != "NO" {
		t.Errorf("Expected last answer NO, got %q (ok=%v)", a, ok)
	}
	if rs.Len() != 1 {
		t.Errorf("Expected 1 distinct answer, got %d", rs.Len())
	}
}

func TestCategoryScoresTotal(t *testing.T) {
	scores := CategoryScores{
		CategoryCutaneous: 10,
		CategoryAcute:     5.5,
		CategoryAnamnesis: 0,
	}
	if got := scores.Total(); got != 15.5 {
		t.Errorf("Total() = %v, want 15.5", got)
	}
	if (CategoryScores{}).Total() != 0 {
		t.Error("Empty scores must total zero")
	}
}
