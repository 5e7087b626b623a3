package cron

import (
	"context"
	"keyhub/internal/service"
	"time"

	"go.uber.org/zap"
)

const jobTimeout = 30 * time.Second

// Jobs 排程執行的維運工作
type Jobs struct {
	logger     *zap.Logger
	policy     *service.ConfigProvider
	executions *service.ExecutionService
	giveaways  *service.GiveawayService
}

func NewJobs(
	logger *zap.Logger,
	policy *service.ConfigProvider,
	executions *service.ExecutionService,
	giveaways *service.GiveawayService,
) *Jobs {
	return &Jobs{
		logger:     logger,
		policy:     policy,
		executions: executions,
		giveaways:  giveaways,
	}
}

// RefreshConfig 失敗時 provider 會沿用前一次的設定
func (j *Jobs) RefreshConfig() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := j.policy.Refresh(ctx); err != nil {
		j.logger.Warn("scheduled config refresh failed", zap.Error(err))
	}
}

func (j *Jobs) EndDueGiveaways() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	ended, err := j.giveaways.EndDue(ctx)
	if err != nil {
		j.logger.Warn("scheduled giveaway sweep failed", zap.Error(err))
		return
	}
	if ended > 0 {
		j.logger.Info("giveaways ended by schedule", zap.Int("ended", ended))
	}
}

func (j *Jobs) PruneExecutions(olderThan time.Duration) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := j.executions.Prune(ctx, olderThan); err != nil {
			j.logger.Warn("scheduled execution prune failed", zap.Error(err))
		}
	}
}
