package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/porfiria-rules-server/internal/domain"
)

// Evaluator is the local evaluation pipeline: validate the questionnaire
// against the catalog, score it, run the rule set and resolve the
// recommendation. It is both the primary engine in offline deployments and
// the fallback when the remote KIE service is unreachable.
type Evaluator struct {
	logger   *logrus.Logger
	catalog  *domain.Catalog
	engine   *PorfiriaRuleEngine
	resolver *RecommendationResolver
}

// NewEvaluator wires the pipeline for one scheme.
func NewEvaluator(catalog *domain.Catalog, config *domain.RuleConfiguration, logger *logrus.Logger) (*Evaluator, error) {
	engine, err := NewPorfiriaRuleEngine(catalog, config, logger)
	if err != nil {
		return nil, err
	}
	return &Evaluator{
		logger:   logger,
		catalog:  catalog,
		engine:   engine,
		resolver: NewRecommendationResolver(config, logger),
	}, nil
}

// Validate checks an evaluation request without running it.
func (ev *Evaluator) Validate(req *domain.EvaluationRequest) error {
	if req.PatientID == "" {
		return domain.NewValidationError("patientId", "patient id is required", req.PatientID)
	}
	if req.Age < 0 || req.Age > 150 {
		return domain.NewValidationError("age", "age out of range", req.Age)
	}
	if err := ev.catalog.ValidateResponses(req.Responses); err != nil {
		return domain.NewValidationError("responses", err.Error(), nil)
	}
	return nil
}

// Evaluate runs the full local pipeline and returns the recommendation.
func (ev *Evaluator) Evaluate(ctx context.Context, req *domain.EvaluationRequest) (*domain.Recommendation, error) {
	if err := ev.Validate(req); err != nil {
		return nil, fmt.Errorf("evaluate questionnaire: %w", err)
	}

	attrs := req.Attributes()
	responses := domain.NewResponseSet(req.Responses)

	results, scores, err := ev.engine.Evaluate(ctx, attrs, responses)
	if err != nil {
		return nil, fmt.Errorf("evaluate questionnaire: %w", err)
	}

	rec := ev.resolver.Resolve(attrs, scores, results)

	ev.logger.WithFields(logrus.Fields{
		"patient_id": req.PatientID,
		"scheme":     ev.catalog.Scheme().String(),
		"test_type":  rec.TestType.String(),
		"confidence": rec.Confidence.String(),
	}).Info("Completed local evaluation")

	return &rec, nil
}

// Rules exposes the loaded rule set.
func (ev *Evaluator) Rules() []domain.RuleInfo {
	return ev.engine.Rules()
}

// Catalog returns the catalog the evaluator validates against.
func (ev *Evaluator) Catalog() *domain.Catalog {
	return ev.catalog
}

// Scheme returns the active scheme.
func (ev *Evaluator) Scheme() domain.Scheme {
	return ev.engine.Scheme()
}
