package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/porfiria-rules-server/internal/domain"
)

// PorfiriaRuleEngine evaluates the screening rule set for one scheme. Every
// enabled rule is evaluated unconditionally and the matched subset is
// collected in declaration order, so the result is deterministic for a given
// (attributes, responses) pair.
type PorfiriaRuleEngine struct {
	logger *logrus.Logger
	config *domain.RuleConfiguration
	scorer *CategoryScorer
	rules  []*Rule
}

// NewPorfiriaRuleEngine builds the engine for the catalog's scheme. The
// configuration must belong to the same scheme as the catalog; pairing a
// catalog with another scheme's thresholds is a construction error, not a
// runtime condition.
func NewPorfiriaRuleEngine(catalog *domain.Catalog, config *domain.RuleConfiguration, logger *logrus.Logger) (*PorfiriaRuleEngine, error) {
	if catalog.Scheme() != config.Scheme {
		return nil, fmt.Errorf("rule engine: catalog scheme %q does not match configuration scheme %q",
			catalog.Scheme(), config.Scheme)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("rule engine: %w", err)
	}

	all := RulesForScheme(config.Scheme)
	enabled := make([]*Rule, 0, len(all))
	for _, r := range all {
		if config.RuleEnabled(r.ID) {
			enabled = append(enabled, r)
		}
	}

	logger.WithFields(logrus.Fields{
		"scheme":        config.Scheme.String(),
		"rules_loaded":  len(all),
		"rules_enabled": len(enabled),
	}).Info("Initialized rule engine")

	return &PorfiriaRuleEngine{
		logger: logger,
		config: config,
		scorer: NewCategoryScorer(catalog, logger),
		rules:  enabled,
	}, nil
}

// AddRule appends a custom rule to the engine. Custom rules run after the
// built-in set, subject to the same enabled-rule whitelist.
func (e *PorfiriaRuleEngine) AddRule(rule *Rule) {
	if !e.config.RuleEnabled(rule.ID) {
		return
	}
	e.rules = append(e.rules, rule)
}

// Evaluate scores the responses and runs every enabled rule against them.
// Rules that do not match are still reported with Matched=false so that the
// audit trail shows what was considered.
func (e *PorfiriaRuleEngine) Evaluate(ctx context.Context, attrs *domain.PatientAttributes, responses *domain.ResponseSet) ([]domain.RuleResult, domain.CategoryScores, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("rule evaluation: %w", err)
	}

	scores := e.scorer.Score(responses)
	evalCtx := &EvalContext{
		Attrs:     attrs,
		Responses: responses,
		Scores:    scores,
		Catalog:   e.scorer.Catalog(),
	}

	results := make([]domain.RuleResult, 0, len(e.rules))
	matched := 0
	for _, rule := range e.rules {
		adjusted := e.config.AdjustedWeight(rule.Category, rule.Weight)
		result := domain.RuleResult{
			Code:     rule.ID,
			Name:     rule.Name,
			Category: rule.Category,
			Weight:   adjusted,
			Pattern:  rule.Pattern,
			Evidence: rule.Reasoning,
		}
		if rule.Condition(evalCtx) {
			result.Matched = true
			result.Critical = e.config.IsCritical(rule.Category, adjusted)
			matched++
			e.logger.WithFields(logrus.Fields{
				"rule":     rule.ID,
				"category": string(rule.Category),
				"weight":   adjusted,
				"critical": result.Critical,
			}).Debug("Rule matched")
		}
		results = append(results, result)
	}

	e.logger.WithFields(logrus.Fields{
		"patient_id":    attrs.PatientID,
		"scheme":        e.config.Scheme.String(),
		"total_rules":   len(results),
		"matched_rules": matched,
		"total_score":   scores.Total(),
	}).Info("Completed rule evaluation")

	return results, scores, nil
}

// Rules describes the loaded rule set for the active-rules endpoint.
func (e *PorfiriaRuleEngine) Rules() []domain.RuleInfo {
	infos := make([]domain.RuleInfo, 0, len(e.rules))
	for _, r := range e.rules {
		infos = append(infos, domain.RuleInfo{
			ID:          r.ID,
			Name:        r.Name,
			Category:    r.Category,
			Weight:      r.Weight,
			Description: r.Reasoning,
		})
	}
	return infos
}

// Scheme returns the scheme this engine evaluates.
func (e *PorfiriaRuleEngine) Scheme() domain.Scheme {
	return e.config.Scheme
}
