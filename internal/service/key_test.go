package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"keyhub/internal/core"
	"keyhub/internal/database/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCreateFree(t *testing.T) {
	env := newTestEnv(t)
	record := env.createKey(t, "u1", core.TierFree, "")

	assert.Regexp(t, `^EXHUBFREE-`, record.Token)
	assert.Equal(t, core.TierFree, record.Tier)
	assert.True(t, record.Valid)
	assert.Empty(t, record.Plan)
	require.NotNil(t, record.ExpiresAt)
	assert.Equal(t, testEpoch.Add(3*time.Hour).UnixMilli(), *record.ExpiresAt)
	assert.Equal(t, []string{record.Token}, env.indexMembers(t, record, "u1"))
	assert.Equal(t, "u1", env.stored(t, record).OwnerID)
}

func TestKeyCreatePaidMonthIsExactlyThirtyDays(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Set(context.Background(), env.keys.PaidPolicy(), []byte(`{"monthDays":30}`)))

	record := env.createKey(t, "u1", core.TierPaid, "month")

	require.NotNil(t, record.ExpiresAt)
	assert.Equal(t, int64(30*24*3600*1000), *record.ExpiresAt-record.CreatedAt)
	assert.Equal(t, core.PlanMonth, record.Plan)
	assert.Equal(t, "PAID MONTH", record.ProviderLabel)
}

func TestKeyCreatePaidPlanAliases(t *testing.T) {
	env := newTestEnv(t)

	three := env.createKey(t, "u1", core.TierPaid, "3")
	assert.Equal(t, core.PlanThreeMonth, three.Plan)
	assert.Equal(t, int64(90*24*3600*1000), *three.ExpiresAt-three.CreatedAt)

	unknown := env.createKey(t, "u1", core.TierPaid, "weekly")
	assert.Equal(t, core.PlanMonth, unknown.Plan)
}

func TestKeyCreateRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.keySvc.Create(ctx, CreateKeyInput{OwnerID: " ", Tier: core.TierFree})
	requireHTTPStatus(t, err, http.StatusBadRequest)

	_, err = env.keySvc.Create(ctx, CreateKeyInput{OwnerID: "u1", Tier: "gold"})
	requireHTTPStatus(t, err, http.StatusBadRequest)
}

func TestKeyCreateRemovesRecordWhenIndexWriteFails(t *testing.T) {
	env := newTestEnv(t)
	const token = "EXHUBFREE-abc-defg-hijkl"
	env.tokens.generate = func(core.KeyTier) (string, error) { return token, nil }
	env.store.failAdd = kv.ErrUnavailable

	_, err := env.keySvc.Create(context.Background(), CreateKeyInput{OwnerID: "u1", Tier: core.TierFree})

	requireHTTPStatus(t, err, http.StatusServiceUnavailable)
	assert.False(t, env.store.Exists(env.keys.Token(core.TierFree, token)))
}

func TestKeyCreateFailsWhenCompensationAlsoFails(t *testing.T) {
	env := newTestEnv(t)
	const token = "EXHUBFREE-abc-defg-hijkl"
	env.tokens.generate = func(core.KeyTier) (string, error) { return token, nil }
	env.store.failAdd = kv.ErrUnavailable
	env.store.failDelete = kv.ErrUnavailable

	record, err := env.keySvc.Create(context.Background(), CreateKeyInput{OwnerID: "u1", Tier: core.TierFree})

	requireHTTPStatus(t, err, http.StatusServiceUnavailable)
	assert.Nil(t, record)
	// 紀錄殘留且不在任何 set 內，只能依錯誤 log 清除
	assert.True(t, env.store.Exists(env.keys.Token(core.TierFree, token)))
	assert.False(t, env.store.Exists(env.keys.OwnerIndex(core.TierFree, "u1")))
	assert.False(t, env.store.Exists(env.keys.OwnerTombstones(core.TierFree, "u1")))
}

func TestKeyCreateStorageTimeout(t *testing.T) {
	env := newTestEnv(t)
	env.store.failSet = kv.ErrTimeout

	_, err := env.keySvc.Create(context.Background(), CreateKeyInput{OwnerID: "u1", Tier: core.TierPaid})
	requireHTTPStatus(t, err, http.StatusServiceUnavailable)
}

func TestTokenGenerateRetriesOnCollision(t *testing.T) {
	env := newTestEnv(t)
	existing := env.createKey(t, "u1", core.TierFree, "")

	candidates := []string{existing.Token, "EXHUBFREE-new-toke-nnnnn"}
	env.tokens.generate = func(core.KeyTier) (string, error) {
		next := candidates[0]
		candidates = candidates[1:]
		return next, nil
	}

	token, err := env.tokens.Generate(context.Background(), core.TierFree)
	require.NoError(t, err)
	assert.Equal(t, "EXHUBFREE-new-toke-nnnnn", token)
}

func TestTokenGenerateGivesUpAfterBoundedAttempts(t *testing.T) {
	env := newTestEnv(t)
	existing := env.createKey(t, "u1", core.TierFree, "")
	calls := 0
	env.tokens.generate = func(core.KeyTier) (string, error) {
		calls++
		return existing.Token, nil
	}

	_, err := env.tokens.Generate(context.Background(), core.TierFree)
	requireHTTPStatus(t, err, http.StatusInternalServerError)
	assert.Equal(t, maxTokenAttempts, calls)
}

func TestKeyDeleteTombstones(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "u1", core.TierFree, "")

	updated, err := env.keySvc.Delete(ctx, record.Token, "u1", "u1")
	require.NoError(t, err)
	assert.True(t, updated)

	got := env.stored(t, record)
	assert.True(t, got.Deleted)
	assert.False(t, got.Valid)
	require.NotNil(t, got.DeletedAt)
	assert.Equal(t, testEpoch.UnixMilli(), *got.DeletedAt)
	assert.Empty(t, env.indexMembers(t, record, "u1"))

	// 第二次刪除不再變動
	updated, err = env.keySvc.Delete(ctx, record.Token, "", "admin")
	require.NoError(t, err)
	assert.False(t, updated)

	result, err := env.validation.Validate(ctx, record.Token, Identity{})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, core.ReasonDeleted, result.Reason)
}

func TestKeyDeleteMissingAndForeign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	updated, err := env.keySvc.Delete(ctx, "EXHUBFREE-nop-nope-nopen", "", "admin")
	require.NoError(t, err)
	assert.False(t, updated)

	record := env.createKey(t, "u1", core.TierFree, "")
	_, err = env.keySvc.Delete(ctx, record.Token, "u2", "u2")
	requireHTTPStatus(t, err, http.StatusForbidden)
	assert.False(t, env.stored(t, record).Deleted)
}

func TestKeyRenewRestoresDeletedKey(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "u1", core.TierFree, "")
	_, err := env.keySvc.Delete(ctx, record.Token, "", "admin")
	require.NoError(t, err)

	env.advance(10 * time.Hour)
	renewed, err := env.keySvc.Renew(ctx, record.Token, "", "admin")
	require.NoError(t, err)

	assert.False(t, renewed.Deleted)
	assert.Nil(t, renewed.DeletedAt)
	assert.True(t, renewed.Valid)
	assert.Equal(t, env.now.Add(3*time.Hour).UnixMilli(), *renewed.ExpiresAt)
	assert.Equal(t, []string{record.Token}, env.indexMembers(t, record, "u1"))

	_, err = env.keySvc.Renew(ctx, "EXHUBPAID-NOPE-NOPE-NOPE", "", "admin")
	requireHTTPStatus(t, err, http.StatusNotFound)
}

func TestKeyResetBinding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "u1", core.TierPaid, "month")
	_, err := env.validation.Validate(ctx, record.Token, Identity{UserID: "r1", DeviceID: "dev1"})
	require.NoError(t, err)
	require.NotNil(t, env.stored(t, record).Binding)

	env.advance(time.Minute)
	reset, err := env.keySvc.ResetBinding(ctx, record.Token, "", "admin")
	require.NoError(t, err)
	assert.Nil(t, reset.Binding)
	assert.Equal(t, 1, reset.BindingResetCount)
	assert.Equal(t, env.now.UnixMilli(), *reset.LastBindingResetAt)

	result, err := env.validation.Validate(ctx, record.Token, Identity{UserID: "r2"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, "r2", result.Binding.ExternalUserID)
}

func TestKeyReassignOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "u1", core.TierPaid, "lifetime")

	moved, changed, err := env.keySvc.ReassignOwner(ctx, record.Token, "u2", "admin")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "u2", moved.OwnerID)
	assert.Empty(t, env.indexMembers(t, record, "u1"))
	assert.Equal(t, []string{record.Token}, env.indexMembers(t, record, "u2"))

	_, changed, err = env.keySvc.ReassignOwner(ctx, record.Token, "u2", "admin")
	require.NoError(t, err)
	assert.False(t, changed)

	free := env.createKey(t, "u1", core.TierFree, "")
	_, _, err = env.keySvc.ReassignOwner(ctx, free.Token, "u2", "admin")
	requireHTTPStatus(t, err, http.StatusBadRequest)
}

func TestKeyListByOwnerSortsAndSelfHeals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.createKey(t, "u1", core.TierFree, "")
	env.advance(time.Hour)
	second := env.createKey(t, "u1", core.TierFree, "")
	paid := env.createKey(t, "u1", core.TierPaid, "month")
	const dangling = "EXHUBFREE-zzz-zzzz-zzzzz"
	require.NoError(t, env.store.AddToSet(ctx, env.keys.OwnerIndex(core.TierFree, "u1"), dangling))

	// first 過期
	env.advance(2*time.Hour + time.Millisecond)

	records, err := env.keySvc.ListByOwner(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, second.Token, records[0].Token)
	assert.Equal(t, paid.Token, records[1].Token)
	assert.Equal(t, first.Token, records[2].Token)
	assert.NotContains(t, env.indexMembers(t, first, "u1"), dangling)

	paidOnly, err := env.keySvc.ListByOwner(ctx, "u1", core.TierPaid)
	require.NoError(t, err)
	require.Len(t, paidOnly, 1)
}

func TestKeyRepairIndex(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	indexKey := env.keys.OwnerIndex(core.TierFree, "u1")

	orphan := env.createKey(t, "u1", core.TierFree, "")
	kept := env.createKey(t, "u1", core.TierFree, "")
	require.NoError(t, env.store.RemoveFromSet(ctx, indexKey, orphan.Token))
	const dangling = "EXHUBFREE-aaa-aaaa-aaaaa"
	require.NoError(t, env.store.AddToSet(ctx, indexKey, dangling))

	report, err := env.keySvc.RepairIndex(ctx, "u1", []string{orphan.Token})
	require.NoError(t, err)
	assert.Equal(t, &IndexRepairReport{OwnerID: "u1", Scanned: 3, Kept: 1, Removed: 1, Added: 1}, report)
	assert.ElementsMatch(t, []string{orphan.Token, kept.Token}, env.indexMembers(t, kept, "u1"))
}

func TestKeyGetMissing(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.keySvc.Get(context.Background(), "EXHUBFREE-abc-defg-hijkl")
	requireHTTPStatus(t, err, http.StatusNotFound)
}

func TestClaimFreeEnforcesSlotLimit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < maxFreeKeysPerOwner; i++ {
		record, err := env.keySvc.ClaimFree(ctx, "u1", "10.0.0.1", "linkvertise")
		require.NoError(t, err)
		assert.Equal(t, "self-service", record.CreationContext)
		assert.Equal(t, "linkvertise", record.ProviderLabel)
	}
	_, err := env.keySvc.ClaimFree(ctx, "u1", "10.0.0.1", "")
	requireHTTPStatus(t, err, http.StatusConflict)

	// 刪掉一把就空出一個位置
	held, err := env.keySvc.ListByOwner(ctx, "u1", core.TierFree)
	require.NoError(t, err)
	_, err = env.keySvc.Delete(ctx, held[0].Token, "u1", "owner:u1")
	require.NoError(t, err)
	_, err = env.keySvc.ClaimFree(ctx, "u1", "10.0.0.1", "")
	require.NoError(t, err)

	// 過期的 key 不佔名額
	env.advance(4 * time.Hour)
	_, err = env.keySvc.ClaimFree(ctx, "u1", "10.0.0.1", "")
	require.NoError(t, err)

	_, err = env.keySvc.ClaimFree(ctx, " ", "", "")
	requireHTTPStatus(t, err, http.StatusBadRequest)
}

func TestOwnerScopedRenewAndReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "u1", core.TierPaid, "month")

	_, err := env.keySvc.Renew(ctx, record.Token, "u2", "owner:u2")
	requireHTTPStatus(t, err, http.StatusForbidden)
	_, err = env.keySvc.ResetBinding(ctx, record.Token, "u2", "owner:u2")
	requireHTTPStatus(t, err, http.StatusForbidden)

	_, err = env.keySvc.ResetBinding(ctx, record.Token, "u1", "owner:u1")
	require.NoError(t, err)
}

func TestKeyCreateGivesDistinctTokens(t *testing.T) {
	env := newTestEnv(t)
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		tier := core.TierFree
		if i%2 == 1 {
			tier = core.TierPaid
		}
		record := env.createKey(t, "u1", tier, "month")
		require.False(t, seen[record.Token], "duplicate token %s", record.Token)
		seen[record.Token] = true
	}
	assert.Len(t, seen, 200)
}

func TestKeyDeleteTracksTombstoneUntilRenew(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "u1", core.TierFree, "")
	tombstones := env.keys.OwnerTombstones(core.TierFree, "u1")

	_, err := env.keySvc.Delete(ctx, record.Token, "", "admin")
	require.NoError(t, err)
	members, err := env.store.SetMembers(ctx, tombstones)
	require.NoError(t, err)
	assert.Equal(t, []string{record.Token}, members)

	_, err = env.keySvc.Renew(ctx, record.Token, "", "admin")
	require.NoError(t, err)
	members, err = env.store.SetMembers(ctx, tombstones)
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestKeyDeleteFailsWhenTombstoneCannotBeRecorded(t *testing.T) {
	env := newTestEnv(t)
	record := env.createKey(t, "u1", core.TierFree, "")
	env.store.failAdd = kv.ErrUnavailable

	_, err := env.keySvc.Delete(context.Background(), record.Token, "", "admin")
	requireHTTPStatus(t, err, http.StatusServiceUnavailable)
	assert.False(t, env.stored(t, record).Deleted)
	assert.Equal(t, []string{record.Token}, env.indexMembers(t, record, "u1"))
}

func TestKeyDropDanglingRereadsUnderLock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	renewed := env.createKey(t, "u1", core.TierFree, "")
	deleted := env.createKey(t, "u1", core.TierFree, "")
	_, err := env.keySvc.Delete(ctx, deleted.Token, "", "admin")
	require.NoError(t, err)
	// 兩者都曾被列表判定失效，取得鎖時 renewed 已是有效紀錄
	require.NoError(t, env.store.AddToSet(ctx, env.keys.OwnerIndex(core.TierFree, "u1"), deleted.Token))

	env.keySvc.dropDangling(ctx, core.TierFree, "u1", []string{renewed.Token, deleted.Token})

	assert.Equal(t, []string{renewed.Token}, env.indexMembers(t, renewed, "u1"))
}

func TestKeyRepairIndexRestoresRenewedTombstone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "u1", core.TierFree, "")
	_, err := env.keySvc.Delete(ctx, record.Token, "", "admin")
	require.NoError(t, err)

	// 續期寫入成功但放回 index 失敗
	env.store.failAdd = kv.ErrUnavailable
	_, err = env.keySvc.Renew(ctx, record.Token, "", "admin")
	require.NoError(t, err)
	env.store.failAdd = nil
	require.Empty(t, env.indexMembers(t, record, "u1"))

	report, err := env.keySvc.RepairIndex(ctx, "u1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Added)
	assert.Equal(t, []string{record.Token}, env.indexMembers(t, record, "u1"))
}
