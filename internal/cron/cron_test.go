package cron

import (
	"context"
	"testing"
	"time"

	"keyhub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunRegistersJobs(t *testing.T) {
	t.Run("retention disabled", func(t *testing.T) {
		c := NewCron(zap.NewNop(), &config.Configuration{}, &Jobs{logger: zap.NewNop()})
		require.NoError(t, c.Run())
		assert.Len(t, c.server.Entries(), 2)
		require.NoError(t, c.Stop(context.Background()))
	})

	t.Run("retention with default schedule", func(t *testing.T) {
		conf := &config.Configuration{Retention: config.Retention{ExecutionDays: 30}}
		c := NewCron(zap.NewNop(), conf, &Jobs{logger: zap.NewNop()})
		require.NoError(t, c.Run())
		assert.Len(t, c.server.Entries(), 3)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, c.Stop(ctx))
	})

	t.Run("bad retention schedule", func(t *testing.T) {
		conf := &config.Configuration{Retention: config.Retention{ExecutionDays: 7, Schedule: "every night"}}
		c := NewCron(zap.NewNop(), conf, &Jobs{logger: zap.NewNop()})
		err := c.Run()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "every night")
	})
}
