package external

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/porfiria-rules-server/internal/domain"
)

// ResilientKIEClient wraps the KIE client with a circuit breaker and the
// Redis evaluation cache. Cached recommendations answer first; when the
// breaker is open, the cache is the only remote-derived answer available and
// a miss surfaces as an error so the gateway falls back to local rules.
type ResilientKIEClient struct {
	client  *KIEClient
	cache   *EvaluationCache
	breaker *gobreaker.CircuitBreaker
	scheme  domain.Scheme
	logger  *logrus.Logger
}

// NewResilientKIEClient creates the wrapped client. cache may be nil when
// Redis is not deployed (lite mode); the breaker still applies.
func NewResilientKIEClient(client *KIEClient, cache *EvaluationCache, scheme domain.Scheme, logger *logrus.Logger) *ResilientKIEClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "KIE",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &ResilientKIEClient{
		client:  client,
		cache:   cache,
		breaker: breaker,
		scheme:  scheme,
		logger:  logger,
	}
}

// Evaluate runs a remote evaluation with caching and circuit breaking.
func (r *ResilientKIEClient) Evaluate(ctx context.Context, req *domain.EvaluationRequest) (*domain.Recommendation, error) {
	// Check cache first
	if r.cache != nil {
		if cached, found, err := r.cache.Get(ctx, r.scheme, req); err == nil && found {
			r.logger.WithField("patient_id", req.PatientID).Debug("Evaluation cache hit")
			return cached, nil
		}
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.client.Evaluate(ctx, req)
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			if r.cache != nil {
				if cached, found, cacheErr := r.cache.Get(ctx, r.scheme, req); cacheErr == nil && found {
					return cached, nil
				}
			}
			return nil, fmt.Errorf("KIE service unavailable (circuit breaker open)")
		}
		return nil, fmt.Errorf("KIE evaluation failed: %w", err)
	}

	rec := result.(*domain.Recommendation)

	if r.cache != nil {
		if cacheErr := r.cache.Set(ctx, r.scheme, req, rec, 0); cacheErr != nil {
			// Cache errors never fail the evaluation
			r.logger.WithError(cacheErr).Warn("Failed to cache KIE recommendation")
		}
	}

	return rec, nil
}

// CheckHealth probes the KIE server. An open breaker reports unhealthy
// without touching the network.
func (r *ResilientKIEClient) CheckHealth(ctx context.Context) (bool, string) {
	if r.breaker.State() == gobreaker.StateOpen {
		return false, "circuit breaker open"
	}
	return r.client.CheckHealth(ctx)
}

// BreakerState returns the current circuit breaker state.
func (r *ResilientKIEClient) BreakerState() gobreaker.State {
	return r.breaker.State()
}

// BreakerCounts returns the circuit breaker counters.
func (r *ResilientKIEClient) BreakerCounts() gobreaker.Counts {
	return r.breaker.Counts()
}

// Close releases the cache connection.
func (r *ResilientKIEClient) Close() error {
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}
