package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"keyhub/internal/core"
	"keyhub/internal/database/redis/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregateAt(script, user, device string, total int64, last time.Time) *model.ExecutionAggregate {
	return &model.ExecutionAggregate{
		Key:           model.ExecutionKey(script, user, device),
		ScriptID:      script,
		UserID:        user,
		DeviceID:      device,
		TotalExecutes: total,
		LastExecuteAt: last.UnixMilli(),
	}
}

func TestProjectStats(t *testing.T) {
	now := testEpoch
	paid := aggregateAt("scriptA", "r1", "dev1", 5, now.Add(-time.Hour))
	paid.KeyToken = "EXHUBPAID-ABCD-EFGH-IJKL"
	paid.Username = "alice"
	aggregates := []*model.ExecutionAggregate{
		paid,
		aggregateAt("scriptA", "r2", "dev2", 3, now.Add(-3*24*time.Hour)),
		aggregateAt("scriptB", "r1", "dev3", 2, now.Add(-20*24*time.Hour)),
		aggregateAt("scriptC", "r3", "dev4", 1, now.Add(-60*24*time.Hour)),
		// 時鐘偏移造成的未來時間不列入任何時間視窗
		aggregateAt("scriptC", "r4", "dev5", 4, now.Add(time.Hour)),
	}

	stats := ProjectStats(aggregates, now)

	assert.Equal(t, int64(15), stats.TotalExecutions)
	assert.Equal(t, 4, stats.UniqueUsers)
	assert.Equal(t, 5, stats.UniqueDevices)
	assert.Equal(t, 4, stats.LoaderUsers)
	assert.Equal(t, 3.8, stats.AvgExecPerUser)
	assert.Equal(t, 3.0, stats.AvgExecPerDevice)
	assert.Equal(t, WindowStats{Executions: 5, Users: 1, Devices: 1}, stats.Windows["24h"])
	assert.Equal(t, WindowStats{Executions: 8, Users: 2, Devices: 2}, stats.Windows["7d"])
	assert.Equal(t, WindowStats{Executions: 10, Users: 2, Devices: 3}, stats.Windows["30d"])
	assert.Equal(t, WindowStats{Executions: 15, Users: 4, Devices: 5}, stats.Windows["all"])
	assert.Equal(t, map[core.KeyTier]int{core.TierFree: 0, core.TierPaid: 1}, stats.KeysInUse)

	require.Len(t, stats.TopScripts, 3)
	assert.Equal(t, RankEntry{ID: "scriptA", Executions: 8}, stats.TopScripts[0])
	assert.Equal(t, RankEntry{ID: "scriptC", Executions: 5}, stats.TopScripts[1])
	assert.Equal(t, RankEntry{ID: "r1", Label: "alice", Executions: 7}, stats.TopUsers[0])
	assert.Equal(t, "r4", stats.Recent[0].UserID)
}

func TestProjectStatsTiesKeepInputOrder(t *testing.T) {
	aggregates := []*model.ExecutionAggregate{
		aggregateAt("b", "r1", "d1", 2, testEpoch),
		aggregateAt("a", "r1", "d1", 2, testEpoch),
	}
	stats := ProjectStats(aggregates, testEpoch)
	assert.Equal(t, "b", stats.TopScripts[0].ID)
	assert.Equal(t, "a", stats.TopScripts[1].ID)
}

func TestProjectStatsLimits(t *testing.T) {
	aggregates := make([]*model.ExecutionAggregate, 0, 150)
	for i := 0; i < 150; i++ {
		aggregates = append(aggregates, aggregateAt(fmt.Sprintf("s%03d", i), "r1", "d1", int64(i+1), testEpoch.Add(-time.Duration(i)*time.Minute)))
	}
	stats := ProjectStats(aggregates, testEpoch)
	assert.Len(t, stats.TopScripts, statsTopN)
	assert.Equal(t, "s149", stats.TopScripts[0].ID)
	assert.Len(t, stats.Recent, statsRecentPage)
	assert.Equal(t, "s000", stats.Recent[0].ScriptID)
}

func TestProjectStatsEmpty(t *testing.T) {
	stats := ProjectStats(nil, testEpoch)
	assert.Zero(t, stats.TotalExecutions)
	assert.Zero(t, stats.AvgExecPerUser)
	assert.Empty(t, stats.TopUsers)
	assert.Len(t, stats.Windows, 4)
}

func TestStatsServiceReadsStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.executions.RecordExecution(ctx, ExecutionInput{ScriptID: "scriptA", UserID: "r1", DeviceID: "dev1"})
	require.NoError(t, err)

	svc := NewStatsService(env.executions.trace, env.executions)
	svc.clock = func() time.Time { return env.now }
	stats, err := svc.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalExecutions)
	assert.Equal(t, int64(1), stats.Windows["24h"].Executions)
}
