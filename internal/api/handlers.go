package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/porfiria-rules-server/internal/domain"
	"github.com/porfiria-rules-server/internal/medicines"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"scheme":    s.evaluator.Scheme(),
	})
}

// handleCreateEvaluation runs a questionnaire evaluation and records the
// outcome. The gateway prefers the remote rules service and falls back to the
// local engine, so a recommendation is produced whenever the request is valid.
func (s *Server) handleCreateEvaluation(c *gin.Context) {
	started := time.Now()

	var req domain.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeInvalidInput, "Malformed evaluation request",
			err.Error(), c.GetString("correlation_id")))
		return
	}

	result := s.gateway.Evaluate(c.Request.Context(), &req)
	if !result.Success {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeEvaluation, "Evaluation could not be completed",
			result.Error, c.GetString("correlation_id")))
		return
	}

	evaluationID := req.EvaluationID
	if evaluationID == "" {
		evaluationID = uuid.NewString()
	}

	if s.store != nil {
		record := &domain.EvaluationRecord{
			ID:             evaluationID,
			PatientID:      req.PatientID,
			Scheme:         s.evaluator.Scheme(),
			Attributes:     *req.Attributes(),
			Responses:      req.Responses,
			Recommendation: *result.Recommendation,
			Source:         result.Source,
			CreatedAt:      time.Now(),
		}

		if err := s.store.Save(c.Request.Context(), record); err != nil {
			if errors.Is(err, domain.ErrDuplicateEvaluation) {
				c.JSON(http.StatusConflict, domain.NewAPIError(
					domain.ErrCodeDuplicate, "Evaluation already recorded",
					"an evaluation with this id was already completed", c.GetString("correlation_id")))
				return
			}
			s.logger.WithError(err).WithFields(logrus.Fields{
				"evaluation_id": evaluationID,
				"patient_id":    req.PatientID,
			}).Error("Failed to persist evaluation")
			c.JSON(http.StatusInternalServerError, domain.NewAPIError(
				domain.ErrCodeDatabase, "Failed to record evaluation",
				"", c.GetString("correlation_id")))
			return
		}
	}

	c.JSON(http.StatusCreated, domain.EvaluationResponse{
		EvaluationID:   evaluationID,
		PatientID:      req.PatientID,
		Recommendation: *result.Recommendation,
		Source:         result.Source,
		ProcessingTime: time.Since(started),
		Timestamp:      time.Now().UTC(),
	})
}

// handleGetEvaluation retrieves a recorded evaluation by ID.
func (s *Server) handleGetEvaluation(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusNotFound, domain.NewAPIError(
			domain.ErrCodeNotFound, "Evaluation persistence is disabled",
			"", c.GetString("correlation_id")))
		return
	}

	record, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, domain.NewAPIError(
				domain.ErrCodeNotFound, "Evaluation not found",
				"", c.GetString("correlation_id")))
			return
		}
		s.logger.WithError(err).WithField("evaluation_id", c.Param("id")).Error("Failed to load evaluation")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeDatabase, "Failed to load evaluation",
			"", c.GetString("correlation_id")))
		return
	}

	c.JSON(http.StatusOK, record)
}

// handleListPatientEvaluations returns a patient's evaluation history,
// most recent first.
func (s *Server) handleListPatientEvaluations(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"patientId": c.Param("id"), "evaluations": []any{}, "total": 0})
		return
	}

	records, err := s.store.ListByPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.logger.WithError(err).WithField("patient_id", c.Param("id")).Error("Failed to list evaluations")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeDatabase, "Failed to list evaluations",
			"", c.GetString("correlation_id")))
		return
	}

	if records == nil {
		records = []*domain.EvaluationRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"patientId":   c.Param("id"),
		"evaluations": records,
		"total":       len(records),
	})
}

// handleGetQuestions returns the active symptom catalog.
func (s *Server) handleGetQuestions(c *gin.Context) {
	catalog := s.evaluator.Catalog()
	c.JSON(http.StatusOK, gin.H{
		"scheme":    catalog.Scheme(),
		"total":     catalog.Len(),
		"questions": catalog.Questions(),
	})
}

// handleGetRules returns the active rule set.
func (s *Server) handleGetRules(c *gin.Context) {
	rules := s.evaluator.Rules()
	c.JSON(http.StatusOK, gin.H{
		"scheme": s.evaluator.Scheme(),
		"total":  len(rules),
		"rules":  rules,
	})
}

// handleGetMedicines serves the drug-safety registry with optional search,
// class and conclusion filters.
func (s *Server) handleGetMedicines(c *gin.Context) {
	query := medicines.Query{
		Search:     c.Query("search"),
		Class:      c.Query("class"),
		Conclusion: c.Query("conclusion"),
	}

	found := s.registry.Find(query)
	if found == nil {
		found = []domain.Medicine{}
	}

	c.JSON(http.StatusOK, gin.H{
		"medicines":       found,
		"total":           len(found),
		"totalInDatabase": s.registry.Len(),
		"filters": gin.H{
			"classes":     s.registry.Classes(),
			"conclusions": s.registry.Conclusions(),
		},
	})
}

// handleKIEHealth probes the remote rules service once and reports the result.
func (s *Server) handleKIEHealth(c *gin.Context) {
	status := s.gateway.CheckHealth(c.Request.Context())
	c.JSON(http.StatusOK, status)
}
