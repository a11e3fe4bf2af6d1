package service

import (
	"github.com/sirupsen/logrus"

	"github.com/porfiria-rules-server/internal/domain"
)

// CategoryScorer sums the weights of affirmed catalog questions per clinical
// category. Scoring is a single linear pass over the catalog; questions the
// patient did not answer, or answered negatively, contribute nothing.
type CategoryScorer struct {
	catalog *domain.Catalog
	logger  *logrus.Logger
}

// NewCategoryScorer creates a scorer bound to one catalog.
func NewCategoryScorer(catalog *domain.Catalog, logger *logrus.Logger) *CategoryScorer {
	return &CategoryScorer{
		catalog: catalog,
		logger:  logger,
	}
}

// Score computes the per-category weight sums for a response set. An empty or
// nil response set yields zero scores for every catalog category, not an
// error; screening an unanswered questionnaire is a valid low-risk input.
func (s *CategoryScorer) Score(responses *domain.ResponseSet) domain.CategoryScores {
	scores := make(domain.CategoryScores)
	for _, cat := range s.catalog.Categories() {
		scores[cat] = 0
	}

	questions := s.catalog.Questions()
	for i := range questions {
		q := &questions[i]
		if responses.Affirmed(q) {
			scores[q.Category] += q.Weight
		}
	}

	s.logger.WithFields(logrus.Fields{
		"scheme":    s.catalog.Scheme().String(),
		"answered":  responses.Len(),
		"total":     scores.Total(),
		"questions": s.catalog.Len(),
	}).Debug("Computed category scores")

	return scores
}

// Catalog returns the catalog this scorer is bound to.
func (s *CategoryScorer) Catalog() *domain.Catalog {
	return s.catalog
}
