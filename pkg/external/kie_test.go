package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/porfiria-rules-server/internal/domain"
)

func evalRequest() *domain.EvaluationRequest {
	return &domain.EvaluationRequest{
		PatientID: "pt-200",
		Age:       35,
		Responses: []domain.SymptomResponse{
			{QuestionID: "ampollas", Answer: "SI"},
		},
	}
}

func TestKIEClient_Evaluate_EnvelopedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/porfiria/evaluar", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req domain.EvaluationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "pt-200", req.PatientID)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"success": true,
			"recommendation": {
				"testType": "PBG_URINE_TEST",
				"confidence": "high",
				"message": "Se recomienda realizar estudios urgentes para Porfiria Aguda.",
				"score": 38,
				"criticalSymptoms": 2,
				"matchedRules": ["PorfiriaAgudaRule"],
				"reasoning": ["Síntomas agudos significativos"],
				"estudiosRecomendados": ["PBG (Porfobilinógeno)"],
				"medicamentosContraproducentes": ["Barbitúricos"]
			}
		}`))
	}))
	defer server.Close()

	client := NewKIEClient(KIEConfig{BaseURL: server.URL})
	rec, err := client.Evaluate(context.Background(), evalRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.PBG_URINE_TEST, rec.TestType)
	assert.Equal(t, domain.HIGH, rec.Confidence)
	assert.Equal(t, 38.0, rec.Score)
	assert.Equal(t, 2, rec.CriticalSymptoms)
	assert.Equal(t, []string{"PorfiriaAgudaRule"}, rec.MatchedRules)
	assert.Equal(t, []string{"Síntomas agudos significativos"}, rec.Reasoning)
	assert.Equal(t, []string{"PBG (Porfobilinógeno)"}, rec.RecommendedStudies)
	assert.Equal(t, []string{"Barbitúricos"}, rec.ContraindicatedMeds)
}

func TestKIEClient_Evaluate_BareResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"testType": "FOLLOW_UP_REQUIRED",
			"confidence": "medium",
			"message": "seguimiento",
			"score": 6,
			"recommendedTests": ["PTO (Porfirinas Totales en Orina)"],
			"contraindicatedMedications": ["Estrógenos"]
		}`))
	}))
	defer server.Close()

	client := NewKIEClient(KIEConfig{BaseURL: server.URL})
	rec, err := client.Evaluate(context.Background(), evalRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.FOLLOW_UP_REQUIRED, rec.TestType)
	assert.Equal(t, domain.MEDIUM, rec.Confidence)
	assert.Equal(t, []string{"PTO (Porfirinas Totales en Orina)"}, rec.RecommendedStudies, "English key spelling accepted")
	assert.Equal(t, []string{"Estrógenos"}, rec.ContraindicatedMeds)
	assert.NotNil(t, rec.Reasoning, "omitted list fields normalize to empty arrays")
	assert.NotNil(t, rec.RiskFactors)
}

func TestKIEClient_Evaluate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rules compilation failed", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewKIEClient(KIEConfig{BaseURL: server.URL})
	_, err := client.Evaluate(context.Background(), evalRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "rules compilation failed")
}

func TestKIEClient_Evaluate_InvalidTestType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"testType": "SOMETHING_ELSE", "confidence": "high", "message": "x"}`))
	}))
	defer server.Close()

	client := NewKIEClient(KIEConfig{BaseURL: server.URL})
	_, err := client.Evaluate(context.Background(), evalRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTestType)
}

func TestKIEClient_Evaluate_EnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "unknown scheme"}`))
	}))
	defer server.Close()

	client := NewKIEClient(KIEConfig{BaseURL: server.URL})
	_, err := client.Evaluate(context.Background(), evalRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown scheme")
}

func TestKIEClient_Evaluate_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "warming up", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"testType": "NO_TEST_NEEDED", "confidence": "low", "message": "ok"}`))
	}))
	defer server.Close()

	client := NewKIEClient(KIEConfig{BaseURL: server.URL, RetryCount: 3})
	rec, err := client.Evaluate(context.Background(), evalRequest())

	require.NoError(t, err)
	assert.Equal(t, domain.NO_TEST_NEEDED, rec.TestType)
	assert.Equal(t, int32(3), calls.Load())
}

func TestKIEClient_Evaluate_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewKIEClient(KIEConfig{BaseURL: server.URL, RetryCount: 2})
	_, err := client.Evaluate(context.Background(), evalRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())
}

func TestKIEClient_CheckHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/porfiria/health", r.URL.Path)
		w.Write([]byte("KIE server is running\n"))
	}))
	defer server.Close()

	client := NewKIEClient(KIEConfig{BaseURL: server.URL})
	ok, msg := client.CheckHealth(context.Background())

	assert.True(t, ok)
	assert.Equal(t, "KIE server is running", msg)
}

func TestKIEClient_CheckHealth_Unreachable(t *testing.T) {
	client := NewKIEClient(KIEConfig{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 500 * time.Millisecond,
	})

	ok, msg := client.CheckHealth(context.Background())

	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}

func TestKIEClient_CheckHealth_DegradedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewKIEClient(KIEConfig{BaseURL: server.URL})
	ok, msg := client.CheckHealth(context.Background())

	assert.False(t, ok)
	assert.Contains(t, msg, "status 503")
}
