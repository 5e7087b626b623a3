package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"keyhub/internal/core"
	"keyhub/internal/database/redis/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordExecutionAggregatesTriple(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.executions.RecordExecution(ctx, ExecutionInput{
		ScriptID: "scriptA", UserID: "r1", DeviceID: "dev1", MapName: "Map1", PlaceID: "100",
	})
	require.NoError(t, err)

	env.advance(time.Minute)
	aggregate, err := env.executions.RecordExecution(ctx, ExecutionInput{
		ScriptID: "scriptA", UserID: "r1", DeviceID: "dev1", MapName: "Map1", PlaceID: "100", ServerID: "s1",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), aggregate.TotalExecutes)
	assert.Equal(t, testEpoch.UnixMilli(), aggregate.FirstExecuteAt)
	assert.Equal(t, env.now.UnixMilli(), aggregate.LastExecuteAt)
	require.Len(t, aggregate.AllMapList, 1)
	assert.Equal(t, "Map1", aggregate.AllMapList[0].MapName)
	assert.Equal(t, "100", aggregate.AllMapList[0].PlaceID)
	assert.Equal(t, []string{"s1"}, aggregate.AllMapList[0].ServerIDs)

	all, err := env.executions.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "scriptA:r1:dev1", all[0].Key)
}

func TestRecordExecutionMissingFields(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.executions.RecordExecution(context.Background(), ExecutionInput{ScriptID: "scriptA", UserID: " "})
	requireHTTPStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "missing_fields", err.Error())
}

func TestRecordExecutionSnapshotsKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "owner-1", core.TierPaid, "month")

	aggregate, err := env.executions.RecordExecution(ctx, ExecutionInput{
		ScriptID: "scriptA", UserID: "r1", DeviceID: "dev1", KeyToken: record.Token, KeyCreatedAt: "1",
	})
	require.NoError(t, err)
	assert.Equal(t, "owner-1", aggregate.OwnerID)
	assert.Equal(t, record.CreatedAt, *aggregate.KeyCreatedAt)
	assert.Equal(t, *record.ExpiresAt, *aggregate.KeyExpiresAt)

	unknown, err := env.executions.RecordExecution(ctx, ExecutionInput{
		ScriptID: "scriptB", UserID: "r1", DeviceID: "dev1", KeyToken: "EXHUBFREE-abc-defg-hijkl", KeyExpiresAt: "2024-02-01T00:00:00Z",
	})
	require.NoError(t, err)
	assert.Empty(t, unknown.OwnerID)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), *unknown.KeyExpiresAt)

	byToken, err := env.executions.ListByToken(ctx, record.Token)
	require.NoError(t, err)
	require.Len(t, byToken, 1)
	assert.Equal(t, "scriptA", byToken[0].ScriptID)
}

func TestRecordExecutionReplacesMalformedAggregate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	composite := model.ExecutionKey("scriptA", "r1", "dev1")
	require.NoError(t, env.store.Set(ctx, env.keys.ExecEntry(composite), []byte(`not json`)))

	aggregate, err := env.executions.RecordExecution(ctx, ExecutionInput{ScriptID: "scriptA", UserID: "r1", DeviceID: "dev1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), aggregate.TotalExecutes)
}

func TestExecutionLoadAllDropsDanglingIndexEntries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.executions.RecordExecution(ctx, ExecutionInput{ScriptID: "scriptA", UserID: "r1", DeviceID: "dev1"})
	require.NoError(t, err)
	require.NoError(t, env.store.AddToSet(ctx, env.keys.ExecIndex(), "ghost:r9:dev9"))

	all, err := env.executions.LoadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	members, err := env.store.SetMembers(ctx, env.keys.ExecIndex())
	require.NoError(t, err)
	assert.Equal(t, []string{"scriptA:r1:dev1"}, members)
}

func TestExecutionPrune(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.executions.RecordExecution(ctx, ExecutionInput{ScriptID: "old", UserID: "r1", DeviceID: "dev1"})
	require.NoError(t, err)
	env.advance(10 * 24 * time.Hour)
	_, err = env.executions.RecordExecution(ctx, ExecutionInput{ScriptID: "new", UserID: "r1", DeviceID: "dev1"})
	require.NoError(t, err)

	removed, err := env.executions.Prune(ctx, 7*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.False(t, env.store.Exists(env.keys.ExecEntry("old:r1:dev1")))

	_, err = env.executions.Prune(ctx, 0)
	requireHTTPStatus(t, err, http.StatusBadRequest)
}
