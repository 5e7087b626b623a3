package cron

import (
	"context"
	"fmt"
	"keyhub/config"
	"time"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(NewCron, NewJobs)

const (
	configRefreshSpec = "*/30 * * * * *"
	giveawaySweepSpec = "0 * * * * *"
	defaultRetention  = "0 30 3 * * *"
)

type Cron struct {
	logger *zap.Logger
	config *config.Configuration
	jobs   *Jobs
	server *cron.Cron
}

// NewCron .
func NewCron(logger *zap.Logger, config *config.Configuration, jobs *Jobs) *Cron {
	cl := cronLogger{logger: logger.Sugar()}
	server := cron.New(
		cron.WithSeconds(),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	return &Cron{
		logger: logger,
		config: config,
		jobs:   jobs,
		server: server,
	}
}

func (c *Cron) Run() error {
	if _, err := c.server.AddFunc(configRefreshSpec, c.jobs.RefreshConfig); err != nil {
		return err
	}
	if _, err := c.server.AddFunc(giveawaySweepSpec, c.jobs.EndDueGiveaways); err != nil {
		return err
	}
	if days := c.config.Retention.ExecutionDays; days > 0 {
		spec := c.config.Retention.Schedule
		if spec == "" {
			spec = defaultRetention
		}
		if _, err := c.server.AddFunc(spec, c.jobs.PruneExecutions(time.Duration(days)*24*time.Hour)); err != nil {
			return fmt.Errorf("retention schedule %q: %w", spec, err)
		}
		c.logger.Info("execution retention enabled", zap.Int("days", days), zap.String("schedule", spec))
	}

	c.server.Start()
	return nil
}

// Stop 等待執行中的 job 結束，最多到 ctx 逾時
func (c *Cron) Stop(ctx context.Context) error {
	done := c.server.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw("cron: "+msg, append(keysAndValues, "error", err)...)
}
