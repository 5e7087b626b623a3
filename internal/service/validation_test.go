package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"keyhub/internal/core"
	"keyhub/internal/database/kv"
	"keyhub/internal/database/redis/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFirstClaimBindsAndLocks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "u1", core.TierFree, "")

	result, err := env.validation.Validate(ctx, record.Token, Identity{})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Nil(t, result.Binding)

	result, err = env.validation.Validate(ctx, record.Token, Identity{UserID: "r1", Username: "Alice", DeviceID: "dev1"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.NotNil(t, result.Binding)
	assert.Equal(t, "r1", result.Binding.ExternalUserID)
	assert.Equal(t, testEpoch.UnixMilli(), result.Binding.BoundAt)
	assert.Equal(t, "r1", env.stored(t, record).Binding.ExternalUserID)

	result, err = env.validation.Validate(ctx, record.Token, Identity{UserID: "r2"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, core.ReasonBoundToOther, result.Reason)
	assert.Equal(t, "r1", env.stored(t, record).Binding.ExternalUserID)

	result, err = env.validation.Validate(ctx, record.Token, Identity{UserID: "r1"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidateUnknownAndMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.validation.Validate(ctx, "not-a-key", Identity{})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, core.ReasonNotFound, result.Reason)

	result, err = env.validation.Validate(ctx, "exhubpaid-abcd-efgh-ijkl", Identity{UserID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, "EXHUBPAID-ABCD-EFGH-IJKL", result.Token)
	assert.Equal(t, core.ReasonNotFound, result.Reason)

	_, err = env.validation.Validate(ctx, "  ", Identity{})
	requireHTTPStatus(t, err, http.StatusBadRequest)
}

func TestValidateExpiredKeyDoesNotBind(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "u1", core.TierFree, "")
	env.advance(4 * time.Hour)

	result, err := env.validation.Validate(ctx, record.Token, Identity{UserID: "r1"})
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.True(t, result.Expired)
	assert.Equal(t, core.ReasonExpired, result.Reason)
	assert.Nil(t, env.stored(t, record).Binding)
}

func TestValidateAfterDeleteThenRenew(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "u1", core.TierPaid, "month")

	_, err := env.keySvc.Delete(ctx, record.Token, "", "admin")
	require.NoError(t, err)
	result, err := env.validation.Validate(ctx, record.Token, Identity{UserID: "r1"})
	require.NoError(t, err)
	assert.Equal(t, core.ReasonDeleted, result.Reason)

	env.advance(time.Hour)
	_, err = env.keySvc.Renew(ctx, record.Token, "", "admin")
	require.NoError(t, err)

	result, err = env.validation.Validate(ctx, record.Token, Identity{UserID: "r1"})
	require.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Equal(t, core.ReasonOK, result.Reason)
}

func TestValidateBoundToOtherOverridesExpiredButNotDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	record := env.createKey(t, "u1", core.TierFree, "")
	_, err := env.validation.Validate(ctx, record.Token, Identity{UserID: "r1"})
	require.NoError(t, err)

	env.advance(4 * time.Hour)
	result, err := env.validation.Validate(ctx, record.Token, Identity{UserID: "r2"})
	require.NoError(t, err)
	assert.Equal(t, core.ReasonBoundToOther, result.Reason)

	_, err = env.keySvc.Delete(ctx, record.Token, "", "admin")
	require.NoError(t, err)
	result, err = env.validation.Validate(ctx, record.Token, Identity{UserID: "r2"})
	require.NoError(t, err)
	assert.Equal(t, core.ReasonDeleted, result.Reason)
	assert.True(t, result.Deleted)
}

func TestValidateStorageFailureIsNotInvalid(t *testing.T) {
	env := newTestEnv(t)
	record := env.createKey(t, "u1", core.TierFree, "")
	env.store.FailWith(kv.ErrUnavailable)

	result, err := env.validation.Validate(context.Background(), record.Token, Identity{})
	assert.Nil(t, result)
	requireHTTPStatus(t, err, http.StatusServiceUnavailable)
}

func TestValidateBindingWriteFailure(t *testing.T) {
	env := newTestEnv(t)
	record := env.createKey(t, "u1", core.TierFree, "")
	env.store.failSet = kv.ErrTimeout

	result, err := env.validation.Validate(context.Background(), record.Token, Identity{UserID: "r1"})
	assert.Nil(t, result)
	requireHTTPStatus(t, err, http.StatusServiceUnavailable)
}

func TestValidateMalformedRecord(t *testing.T) {
	env := newTestEnv(t)
	const token = "EXHUBFREE-abc-defg-hijkl"
	require.NoError(t, env.store.Set(context.Background(), env.keys.Token(core.TierFree, token), []byte(`{"token":`)))

	_, err := env.validation.Validate(context.Background(), token, Identity{})
	requireHTTPStatus(t, err, http.StatusInternalServerError)
}

func TestValidateConcurrentFirstClaimHasOneWinner(t *testing.T) {
	env := newTestEnv(t)
	record := env.createKey(t, "u1", core.TierFree, "")

	const callers = 16
	results := make(chan *ValidationResult, callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			result, err := env.validation.Validate(context.Background(), record.Token, Identity{UserID: string(rune('a' + i))})
			if err != nil {
				results <- nil
				return
			}
			results <- result
		}(i)
	}

	valid := 0
	for i := 0; i < callers; i++ {
		result := <-results
		require.NotNil(t, result)
		if result.Valid {
			valid++
		}
	}
	assert.Equal(t, 1, valid)
}

func TestApplyIdentity(t *testing.T) {
	const now = int64(5_000)
	tests := map[string]struct {
		current  *model.BoundIdentity
		identity Identity
		want     *model.BoundIdentity
		changed  bool
		conflict bool
	}{
		"first claim": {
			identity: Identity{UserID: "r1", Username: "alice", DeviceID: "d1"},
			want:     &model.BoundIdentity{ExternalUserID: "r1", ExternalUsername: "alice", DeviceID: "d1", BoundAt: now},
			changed:  true,
		},
		"same identity": {
			current:  &model.BoundIdentity{ExternalUserID: "r1", ExternalUsername: "alice", BoundAt: 1},
			identity: Identity{UserID: "r1", Username: "ALICE"},
			want:     &model.BoundIdentity{ExternalUserID: "r1", ExternalUsername: "alice", BoundAt: 1},
		},
		"fills missing fields": {
			current:  &model.BoundIdentity{ExternalUsername: "alice", BoundAt: 1},
			identity: Identity{UserID: "r1", Username: "alice", DeviceID: "d1"},
			want:     &model.BoundIdentity{ExternalUserID: "r1", ExternalUsername: "alice", DeviceID: "d1", BoundAt: 1},
			changed:  true,
		},
		"other user id": {
			current:  &model.BoundIdentity{ExternalUserID: "r1", BoundAt: 1},
			identity: Identity{UserID: "r2"},
			conflict: true,
		},
		"same user id renames": {
			current:  &model.BoundIdentity{ExternalUserID: "r1", ExternalUsername: "alice", BoundAt: 1},
			identity: Identity{UserID: "r1", Username: "alicia", DisplayName: "Alicia"},
			want:     &model.BoundIdentity{ExternalUserID: "r1", ExternalUsername: "alicia", ExternalDisplayName: "Alicia", BoundAt: 1},
			changed:  true,
		},
		"username only binding stays locked": {
			current:  &model.BoundIdentity{ExternalUsername: "alice", BoundAt: 1},
			identity: Identity{UserID: "r9", Username: "mallory"},
			conflict: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			next, changed, conflict := applyIdentity(tc.current, tc.identity, now)
			assert.Equal(t, tc.conflict, conflict)
			assert.Equal(t, tc.changed, changed)
			if tc.want != nil {
				assert.Equal(t, tc.want, next)
			}
		})
	}
}
