package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/porfiria-rules-server/internal/domain"
)

// EvaluationResult is the explicit outcome of a gateway evaluation. Failure is
// a value, not a panic: Success=false means neither the remote service nor
// the local pipeline produced a recommendation.
type EvaluationResult struct {
	Success        bool                   `json:"success"`
	Recommendation *domain.Recommendation `json:"recommendation,omitempty"`
	Source         string                 `json:"source,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

// Evaluation sources reported to callers and audit records.
const (
	SourceKIE   = "kie"
	SourceLocal = "local"
)

// HealthStatus is one observation of the remote rules service.
type HealthStatus struct {
	OK        bool      `json:"ok"`
	Message   string    `json:"message"`
	CheckedAt time.Time `json:"checkedAt"`
}

// EvaluationGateway prefers the remote KIE rules service and falls back
// silently to the local evaluator when the remote call fails for any reason.
// The fallback is logged but never surfaced to the caller as an error; the
// physician gets a recommendation either way.
type EvaluationGateway struct {
	logger *logrus.Logger
	kie    domain.KIEClient
	local  *Evaluator

	mu          sync.RWMutex
	lastStatus  HealthStatus
	subscribers map[int]chan HealthStatus
	nextSubID   int
}

// NewEvaluationGateway creates a gateway. kie may be nil, in which case every
// evaluation runs locally.
func NewEvaluationGateway(kie domain.KIEClient, local *Evaluator, logger *logrus.Logger) *EvaluationGateway {
	return &EvaluationGateway{
		logger:      logger,
		kie:         kie,
		local:       local,
		subscribers: make(map[int]chan HealthStatus),
	}
}

// Evaluate attempts the remote evaluation first and falls back to the local
// pipeline. Validation failures are local failures; a request the catalog
// rejects is not sent to the remote service either.
func (g *EvaluationGateway) Evaluate(ctx context.Context, req *domain.EvaluationRequest) EvaluationResult {
	if err := g.local.Validate(req); err != nil {
		g.logger.WithError(err).WithField("patient_id", req.PatientID).Warn("Rejected invalid evaluation request")
		return EvaluationResult{Success: false, Error: err.Error()}
	}

	if g.kie != nil {
		rec, err := g.kie.Evaluate(ctx, req)
		if err == nil {
			g.logger.WithFields(logrus.Fields{
				"patient_id": req.PatientID,
				"test_type":  rec.TestType.String(),
			}).Info("Remote evaluation succeeded")
			return EvaluationResult{Success: true, Recommendation: rec, Source: SourceKIE}
		}
		g.logger.WithError(err).WithField("patient_id", req.PatientID).Warn("Remote evaluation failed, falling back to local rules")
	}

	rec, err := g.local.Evaluate(ctx, req)
	if err != nil {
		g.logger.WithError(err).WithField("patient_id", req.PatientID).Error("Local fallback evaluation failed")
		return EvaluationResult{Success: false, Error: err.Error()}
	}
	return EvaluationResult{Success: true, Recommendation: rec, Source: SourceLocal}
}

// CheckHealth probes the remote service once and records the observation for
// subscribers.
func (g *EvaluationGateway) CheckHealth(ctx context.Context) HealthStatus {
	status := HealthStatus{CheckedAt: time.Now().UTC()}
	if g.kie == nil {
		status.Message = "remote evaluation disabled"
	} else {
		status.OK, status.Message = g.kie.CheckHealth(ctx)
	}
	g.publish(status)
	return status
}

// LastStatus returns the most recent health observation.
func (g *EvaluationGateway) LastStatus() HealthStatus {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.lastStatus
}

// Subscribe registers a health status listener. The returned cancel function
// must be called to release the subscription. Slow subscribers drop updates
// rather than blocking the monitor.
func (g *EvaluationGateway) Subscribe() (<-chan HealthStatus, func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.nextSubID
	g.nextSubID++
	ch := make(chan HealthStatus, 4)
	g.subscribers[id] = ch

	cancel := func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if sub, ok := g.subscribers[id]; ok {
			delete(g.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// StartHealthMonitor polls the remote service until the context is cancelled.
// Observations fan out to all subscribers.
func (g *EvaluationGateway) StartHealthMonitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		g.CheckHealth(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				g.CheckHealth(ctx)
			}
		}
	}()
}

func (g *EvaluationGateway) publish(status HealthStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()

	changed := status.OK != g.lastStatus.OK || g.lastStatus.CheckedAt.IsZero()
	g.lastStatus = status

	if changed {
		g.logger.WithFields(logrus.Fields{
			"ok":      status.OK,
			"message": status.Message,
		}).Info("KIE service health changed")
	}

	for _, ch := range g.subscribers {
		select {
		case ch <- status:
		default:
		}
	}
}
