package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
	"lottery-ledger.backend/pkg/logger"
)

type planExpirer interface {
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

// PlanExpiryJob marks lapsed entitlements as expired
type PlanExpiryJob struct {
	plans    planExpirer
	interval time.Duration
	now      func() time.Time
	stop     chan struct{}
}

func NewPlanExpiryJob(plans planExpirer, interval time.Duration) *PlanExpiryJob {
	return &PlanExpiryJob{
		plans:    plans,
		interval: interval,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (j *PlanExpiryJob) Start(ctx context.Context) {
	runEvery(ctx, "plan-expiry", j.interval, j.stop, j.expire)
}

func (j *PlanExpiryJob) Stop() {
	close(j.stop)
}

func (j *PlanExpiryJob) expire(ctx context.Context) {
	n, err := j.plans.ExpireDue(ctx, j.now())
	if err != nil {
		logger.Error(ctx, "failed to expire plans", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info(ctx, "expired plans", zap.Int64("count", n))
	}
}
