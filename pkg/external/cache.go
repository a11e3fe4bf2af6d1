package external

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/porfiria-rules-server/internal/domain"
)

// CacheConfig configures the Redis evaluation cache.
type CacheConfig struct {
	RedisURL    string        `json:"redis_url"`
	DefaultTTL  time.Duration `json:"default_ttl"`
	MaxRetries  int           `json:"max_retries"`
	PoolSize    int           `json:"pool_size"`
	PoolTimeout time.Duration `json:"pool_timeout"`
}

// EvaluationCache caches remote evaluation results in Redis. Rule evaluation
// is deterministic for a given questionnaire, so a cached recommendation is
// as good as a fresh one until the rule set itself changes; the TTL bounds
// how long a stale rule set can keep answering.
type EvaluationCache struct {
	redis      *redis.Client
	defaultTTL time.Duration
}

// NewEvaluationCache creates a cache client and verifies the connection.
func NewEvaluationCache(config CacheConfig) (*EvaluationCache, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	opts.PoolSize = config.PoolSize
	opts.PoolTimeout = config.PoolTimeout
	opts.MaxRetries = config.MaxRetries

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := config.DefaultTTL
	if ttl == 0 {
		ttl = time.Hour
	}

	return &EvaluationCache{
		redis:      client,
		defaultTTL: ttl,
	}, nil
}

// cachedRecommendation wraps a recommendation with cache metadata.
type cachedRecommendation struct {
	Data      *domain.Recommendation `json:"data"`
	CachedAt  time.Time              `json:"cached_at"`
	ExpiresAt time.Time              `json:"expires_at"`
}

// Get retrieves a cached recommendation for the request.
func (c *EvaluationCache) Get(ctx context.Context, scheme domain.Scheme, req *domain.EvaluationRequest) (*domain.Recommendation, bool, error) {
	key := EvaluationKey(scheme, req)

	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false, nil // Cache miss
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached evaluation: %w", err)
	}

	var cached cachedRecommendation
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		// Remove corrupted cache entry
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	if time.Now().After(cached.ExpiresAt) {
		c.redis.Del(ctx, key)
		return nil, false, nil
	}

	return cached.Data, true, nil
}

// Set caches a recommendation. A zero ttl uses the default.
func (c *EvaluationCache) Set(ctx context.Context, scheme domain.Scheme, req *domain.EvaluationRequest, rec *domain.Recommendation, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	key := EvaluationKey(scheme, req)
	cached := cachedRecommendation{
		Data:      rec,
		CachedAt:  time.Now(),
		ExpiresAt: time.Now().Add(ttl),
	}

	jsonData, err := json.Marshal(cached)
	if err != nil {
		return fmt.Errorf("failed to marshal cached evaluation: %w", err)
	}

	return c.redis.Set(ctx, key, jsonData, ttl).Err()
}

// Close releases the Redis connection pool.
func (c *EvaluationCache) Close() error {
	return c.redis.Close()
}

// EvaluationKey derives a deterministic cache key from everything that can
// influence the outcome: the scheme, the clinical attributes and the sorted
// answers. Name and DNI are identity, not evidence, and stay out of the key.
func EvaluationKey(scheme domain.Scheme, req *domain.EvaluationRequest) string {
	responses := make([]domain.SymptomResponse, len(req.Responses))
	copy(responses, req.Responses)
	sort.Slice(responses, func(i, j int) bool {
		return responses[i].QuestionID < responses[j].QuestionID
	})

	medications := make([]string, len(req.Medications))
	copy(medications, req.Medications)
	sort.Strings(medications)

	payload := struct {
		Scheme             domain.Scheme            `json:"scheme"`
		Age                int                      `json:"age"`
		Gender             string                   `json:"gender"`
		FamilyHistory      bool                     `json:"familyHistory"`
		AlcoholConsumption bool                     `json:"alcoholConsumption"`
		FastingStatus      bool                     `json:"fastingStatus"`
		Medications        []string                 `json:"medications"`
		Responses          []domain.SymptomResponse `json:"responses"`
	}{
		Scheme:             scheme,
		Age:                req.Age,
		Gender:             req.Gender,
		FamilyHistory:      req.FamilyHistory,
		AlcoholConsumption: req.AlcoholConsumption,
		FastingStatus:      req.FastingStatus,
		Medications:        medications,
		Responses:          responses,
	}

	data, _ := json.Marshal(payload)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("porfiria:eval:%x", hash)
}
