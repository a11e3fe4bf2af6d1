package domain

import (
	"errors"
	"testing"
)

func TestDetailedCatalogShape(t *testing.T) {
	c := DetailedCatalog()

	if c.Scheme() != SchemeDetailed {
		t.Errorf("Scheme() = %s, want detailed", c.Scheme())
	}
	if c.Len() != 49 {
		t.Errorf("Len() = %d, want 49", c.Len())
	}

	counts := make(map[Category]int)
	for _, q := range c.Questions() {
		counts[q.Category]++
	}
	expected := map[Category]int{
		CategoryCutaneous:     12,
		CategoryAcute:         17,
		CategoryAnamnesis:     7,
		CategoryEnvironmental: 13,
	}
	for cat, want := range expected {
		if counts[cat] != want {
			t.Errorf("Category %s has %d questions, want %d", cat, counts[cat], want)
		}
	}
}

func TestGenericCatalogShape(t *testing.T) {
	c := GenericCatalog()

	if c.Scheme() != SchemeGeneric {
		t.Errorf("Scheme() = %s, want generic", c.Scheme())
	}
	if c.Len() != 15 {
		t.Errorf("Len() = %d, want 15", c.Len())
	}

	// Dependent follow-up questions must point backwards at existing items.
	for _, q := range c.Questions() {
		if q.DependsOn == "" {
			continue
		}
		if _, ok := c.Question(q.DependsOn); !ok {
			t.Errorf("Question %s depends on missing %s", q.ID, q.DependsOn)
		}
	}
}

func TestColorOrinaAffirmativeOverride(t *testing.T) {
	c := DetailedCatalog()
	q, ok := c.Question("colorOrina")
	if !ok {
		t.Fatal("colorOrina missing from detailed catalog")
	}
	tokens := q.AffirmativeTokens()
	if len(tokens) != 2 || tokens[0] != "Oscura" {
		t.Errorf("colorOrina affirmative tokens = %v, want [Oscura SI]", tokens)
	}
}

func TestNewCatalogRejectsDuplicates(t *testing.T) {
	_, err := NewCatalog(SchemeGeneric, []Question{
		{ID: "a", Category: CategoryGenetic, Weight: 1},
		{ID: "a", Category: CategoryGenetic, Weight: 2},
	})
	if err == nil {
		t.Fatal("Expected duplicate id error")
	}
}

func TestNewCatalogRejectsDanglingDependency(t *testing.T) {
	_, err := NewCatalog(SchemeGeneric, []Question{
		{ID: "a", Category: CategoryGenetic, Weight: 1, DependsOn: "missing"},
	})
	if err == nil {
		t.Fatal("Expected dangling dependency error")
	}
}

func TestNewCatalogRejectsBadScheme(t *testing.T) {
	_, err := NewCatalog(Scheme("kie"), nil)
	if !errors.Is(err, ErrInvalidScheme) {
		t.Fatalf("Expected ErrInvalidScheme, got %v", err)
	}
}

func TestValidateResponses(t *testing.T) {
	c := DetailedCatalog()

	err := c.ValidateResponses([]SymptomResponse{{QuestionID: "ampollas", Answer: "SI"}})
	if err != nil {
		t.Errorf("Unexpected error for known question: %v", err)
	}

	err = c.ValidateResponses([]SymptomResponse{{QuestionID: "nope", Answer: "SI"}})
	if !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("Expected ErrUnknownQuestion, got %v", err)
	}
}
