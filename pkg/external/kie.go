// Package external contains clients for the remote KIE rules service and the
// Redis-backed evaluation cache, plus the circuit-breaker wrapper that keeps
// the screening API responsive when the remote service degrades.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/porfiria-rules-server/internal/domain"
)

// KIEConfig configures the remote rules service client.
type KIEConfig struct {
	BaseURL    string        `json:"base_url"`
	Timeout    time.Duration `json:"timeout"`
	RateLimit  int           `json:"rate_limit"`
	RetryCount int           `json:"retry_count"`
}

// KIEClient calls the KIE server's Porphyria evaluation API.
type KIEClient struct {
	config     KIEConfig
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewKIEClient creates a new KIE service client.
func NewKIEClient(config KIEConfig) *KIEClient {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	rps := config.RateLimit
	if rps <= 0 {
		rps = 10
	}
	return &KIEClient{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// kieRecommendation mirrors the KIE server's recommendation payload. The
// server has shipped two key spellings for the study and medication lists
// over its lifetime; both are accepted.
type kieRecommendation struct {
	TestType            string   `json:"testType"`
	Confidence          string   `json:"confidence"`
	Message             string   `json:"message"`
	Score               float64  `json:"score"`
	CriticalSymptoms    int      `json:"criticalSymptoms"`
	MatchedRules        []string `json:"matchedRules"`
	Reasoning           []string `json:"reasoning"`
	RiskFactors         []string `json:"riskFactors"`
	Estudios            []string `json:"estudiosRecomendados"`
	RecommendedTests    []string `json:"recommendedTests"`
	Medicamentos        []string `json:"medicamentosContraproducentes"`
	ContraindicatedMeds []string `json:"contraindicatedMedications"`
}

// kieEnvelope is the wrapped response shape {success, recommendation}. Older
// deployments return the recommendation object directly.
type kieEnvelope struct {
	Success        bool               `json:"success"`
	Recommendation *kieRecommendation `json:"recommendation"`
	Error          string             `json:"error"`
}

// Evaluate posts the questionnaire to the KIE server and returns its
// recommendation.
func (c *KIEClient) Evaluate(ctx context.Context, req *domain.EvaluationRequest) (*domain.Recommendation, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("KIE rate limit: %w", err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal KIE request: %w", err)
	}

	url := strings.TrimRight(c.config.BaseURL, "/") + "/api/porfiria/evaluar"

	var lastErr error
	attempts := c.config.RetryCount + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		rec, err := c.doEvaluate(ctx, url, body)
		if err == nil {
			return rec, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("KIE evaluation failed after %d attempts: %w", attempts, lastErr)
}

func (c *KIEClient) doEvaluate(ctx context.Context, url string, body []byte) (*domain.Recommendation, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create KIE request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("KIE request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("KIE server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read KIE response: %w", err)
	}
	return parseRecommendation(raw)
}

// parseRecommendation accepts both the enveloped and the bare recommendation
// response shapes.
func parseRecommendation(raw []byte) (*domain.Recommendation, error) {
	var env kieEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("failed to decode KIE response: %w", err)
	}

	kr := env.Recommendation
	if kr == nil {
		if env.Error != "" {
			return nil, fmt.Errorf("KIE server error: %s", env.Error)
		}
		var bare kieRecommendation
		if err := json.Unmarshal(raw, &bare); err != nil {
			return nil, fmt.Errorf("failed to decode KIE recommendation: %w", err)
		}
		kr = &bare
	}

	testType, err := domain.ParseTestType(kr.TestType)
	if err != nil {
		return nil, fmt.Errorf("KIE recommendation: %w", err)
	}
	confidence := domain.Confidence(kr.Confidence)
	if !confidence.IsValid() {
		return nil, fmt.Errorf("KIE recommendation: %w: %q", domain.ErrInvalidConfid, kr.Confidence)
	}

	studies := kr.Estudios
	if len(studies) == 0 {
		studies = kr.RecommendedTests
	}
	meds := kr.Medicamentos
	if len(meds) == 0 {
		meds = kr.ContraindicatedMeds
	}

	rec := &domain.Recommendation{
		TestType:            testType,
		Confidence:          confidence,
		Message:             kr.Message,
		Score:               kr.Score,
		CriticalSymptoms:    kr.CriticalSymptoms,
		MatchedRules:        kr.MatchedRules,
		Reasoning:           kr.Reasoning,
		RiskFactors:         kr.RiskFactors,
		RecommendedStudies:  studies,
		ContraindicatedMeds: meds,
	}
	rec.NormalizeLists()
	return rec, nil
}

// CheckHealth probes the KIE health endpoint. The endpoint returns a plain
// text body which is passed through as the status message.
func (c *KIEClient) CheckHealth(ctx context.Context) (bool, string) {
	url := strings.TrimRight(c.config.BaseURL, "/") + "/api/porfiria/health"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, err.Error()
	}
	httpReq.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return false, err.Error()
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	message := strings.TrimSpace(string(payload))
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Sprintf("status %d: %s", resp.StatusCode, message)
	}
	return true, message
}
