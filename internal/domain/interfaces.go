package domain

import (
	"context"
)

// RuleEngine evaluates a patient's questionnaire against the active rule set.
type RuleEngine interface {
	Evaluate(ctx context.Context, attrs *PatientAttributes, responses *ResponseSet) ([]RuleResult, CategoryScores, error)
	Rules() []RuleInfo
}

// RuleInfo is the public description of a loaded rule, served by the
// active-rules endpoint.
type RuleInfo struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Weight      float64  `json:"weight"`
	Description string   `json:"description,omitempty"`
}

// Scorer computes per-category scores from a response set.
type Scorer interface {
	Score(responses *ResponseSet) CategoryScores
}

// Resolver turns rule results and scores into exactly one recommendation.
type Resolver interface {
	Resolve(attrs *PatientAttributes, scores CategoryScores, results []RuleResult) Recommendation
}

// EvaluationStore persists completed evaluations for audit and follow-up.
type EvaluationStore interface {
	Save(ctx context.Context, record *EvaluationRecord) error
	Get(ctx context.Context, id string) (*EvaluationRecord, error)
	ListByPatient(ctx context.Context, patientID string) ([]*EvaluationRecord, error)
	Close() error
}

// KIEClient talks to the remote rules service.
type KIEClient interface {
	Evaluate(ctx context.Context, req *EvaluationRequest) (*Recommendation, error)
	CheckHealth(ctx context.Context) (bool, string)
}
