package service

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"keyhub/internal/core"
	"keyhub/internal/database/kv"
	mongoModel "keyhub/internal/database/mongodb/model"
	cErr "keyhub/internal/pkg/error"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryGiveaways struct {
	mu    sync.Mutex
	items map[string]mongoModel.Giveaway
	// beforeReplace 回傳錯誤時該次 Replace 失敗
	beforeReplace func(g *mongoModel.Giveaway) error
}

func newMemoryGiveaways() *memoryGiveaways {
	return &memoryGiveaways{items: map[string]mongoModel.Giveaway{}}
}

func clone(g mongoModel.Giveaway) *mongoModel.Giveaway {
	g.Participants = append([]mongoModel.GiveawayParticipant{}, g.Participants...)
	g.Winners = append([]mongoModel.GiveawayWinner{}, g.Winners...)
	return &g
}

func (m *memoryGiveaways) Create(_ context.Context, g *mongoModel.Giveaway) (*mongoModel.Giveaway, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[g.ID] = *clone(*g)
	return g, nil
}

func (m *memoryGiveaways) GetByID(_ context.Context, id string) (*mongoModel.Giveaway, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return clone(g), nil
}

func (m *memoryGiveaways) Replace(_ context.Context, g *mongoModel.Giveaway) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beforeReplace != nil {
		if err := m.beforeReplace(g); err != nil {
			return 0, err
		}
	}
	if _, ok := m.items[g.ID]; !ok {
		return 0, nil
	}
	m.items[g.ID] = *clone(*g)
	return 1, nil
}

func (m *memoryGiveaways) UpdateMessageID(_ context.Context, id, messageID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.items[id]
	if !ok {
		return 0, nil
	}
	g.MessageID = messageID
	m.items[id] = g
	return 1, nil
}

func (m *memoryGiveaways) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[id]
	delete(m.items, id)
	return ok, nil
}

func (m *memoryGiveaways) List(_ context.Context, opts core.ListOptions) ([]*mongoModel.Giveaway, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*mongoModel.Giveaway{}
	for _, g := range m.items {
		if status, ok := opts.Filter["status"]; ok && status != g.Status {
			continue
		}
		out = append(out, clone(g))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func newGiveawayTestService(env *testEnv) (*GiveawayService, *memoryGiveaways) {
	store := newMemoryGiveaways()
	svc := NewGiveawayService(env.keySvc.trace, store, env.keySvc, env.locker, zap.NewNop())
	svc.clock = func() time.Time { return env.now }
	// 不洗牌：依報名順序取前 N 位
	svc.shuffle = func(int, func(i, j int)) {}
	return svc, store
}

func TestGiveawayCreateDefaults(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newGiveawayTestService(env)

	giveaway, err := svc.Create(context.Background(), CreateGiveawayInput{CreatedBy: "admin-1", Plan: "six"})
	require.NoError(t, err)
	assert.Regexp(t, `^ga_\d+_[0-9a-f]{6}$`, giveaway.ID)
	assert.Equal(t, 1, giveaway.WinnersCount)
	assert.Equal(t, core.PlanSixMonth, giveaway.Plan)
	assert.Equal(t, core.GiveawayRunning, giveaway.Status)
	assert.Equal(t, testEpoch.Add(24*time.Hour), giveaway.EndsAt)

	_, err = svc.Create(context.Background(), CreateGiveawayInput{})
	requireHTTPStatus(t, err, http.StatusBadRequest)
}

func TestGiveawayJoinRefreshesSnapshot(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newGiveawayTestService(env)
	ctx := context.Background()
	giveaway, err := svc.Create(ctx, CreateGiveawayInput{CreatedBy: "admin-1"})
	require.NoError(t, err)

	_, err = svc.Join(ctx, giveaway.ID, mongoModel.GiveawayParticipant{DiscordID: "d1", Username: "old"})
	require.NoError(t, err)
	joined, err := svc.Join(ctx, giveaway.ID, mongoModel.GiveawayParticipant{DiscordID: "d1", Username: "new", Avatar: "abc"})
	require.NoError(t, err)

	require.Len(t, joined.Participants, 1)
	assert.Equal(t, "new", joined.Participants[0].Username)
	assert.Equal(t, "abc", joined.Participants[0].Avatar)

	_, err = svc.Join(ctx, "ga_missing", mongoModel.GiveawayParticipant{DiscordID: "d1"})
	requireHTTPStatus(t, err, http.StatusNotFound)
}

func TestGiveawayEndIssuesPaidKeys(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newGiveawayTestService(env)
	ctx := context.Background()
	giveaway, err := svc.Create(ctx, CreateGiveawayInput{CreatedBy: "admin-1", WinnersCount: 2, Plan: "lifetime"})
	require.NoError(t, err)
	for _, id := range []string{"d1", "d2", "d3"} {
		_, err := svc.Join(ctx, giveaway.ID, mongoModel.GiveawayParticipant{DiscordID: id})
		require.NoError(t, err)
	}

	ended, newlyEnded, err := svc.End(ctx, giveaway.ID, "admin-1")
	require.NoError(t, err)
	assert.True(t, newlyEnded)
	assert.Equal(t, core.GiveawayEnded, ended.Status)
	require.Len(t, ended.Winners, 2)
	for _, winner := range ended.Winners {
		require.NotEmpty(t, winner.Token)
		record, err := env.keySvc.Get(ctx, winner.Token)
		require.NoError(t, err)
		assert.Equal(t, winner.DiscordID, record.OwnerID)
		assert.Equal(t, core.PlanLifetime, record.Plan)
		assert.Equal(t, "giveaway:"+giveaway.ID, record.CreationContext)
	}

	again, newlyEnded, err := svc.End(ctx, giveaway.ID, "admin-1")
	require.NoError(t, err)
	assert.False(t, newlyEnded)
	assert.Equal(t, ended.Winners, again.Winners)

	_, err = svc.Join(ctx, giveaway.ID, mongoModel.GiveawayParticipant{DiscordID: "d4"})
	requireHTTPStatus(t, err, http.StatusConflict)
}

func TestGiveawayEndWithoutParticipants(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newGiveawayTestService(env)
	ctx := context.Background()
	giveaway, err := svc.Create(ctx, CreateGiveawayInput{CreatedBy: "admin-1", WinnersCount: 3})
	require.NoError(t, err)

	ended, _, err := svc.End(ctx, giveaway.ID, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, core.GiveawayEnded, ended.Status)
	assert.Empty(t, ended.Winners)
}

func TestGiveawayEndResumesAfterKeyFailure(t *testing.T) {
	env := newTestEnv(t)
	svc, store := newGiveawayTestService(env)
	ctx := context.Background()
	giveaway, err := svc.Create(ctx, CreateGiveawayInput{CreatedBy: "admin-1", WinnersCount: 1})
	require.NoError(t, err)
	_, err = svc.Join(ctx, giveaway.ID, mongoModel.GiveawayParticipant{DiscordID: "d1"})
	require.NoError(t, err)

	env.store.failSet = kv.ErrUnavailable
	_, _, err = svc.End(ctx, giveaway.ID, "admin-1")
	require.Error(t, err)
	pending, _ := store.GetByID(ctx, giveaway.ID)
	assert.Equal(t, core.GiveawayRunning, pending.Status)
	require.Len(t, pending.Winners, 1)
	assert.Empty(t, pending.Winners[0].Token)

	env.store.failSet = nil
	ended, newlyEnded, err := svc.End(ctx, giveaway.ID, "admin-1")
	require.NoError(t, err)
	assert.True(t, newlyEnded)
	assert.Equal(t, "d1", ended.Winners[0].DiscordID)
	assert.NotEmpty(t, ended.Winners[0].Token)
}

func TestGiveawayEndRevokesKeyWhenWinnerCannotBeSaved(t *testing.T) {
	env := newTestEnv(t)
	svc, store := newGiveawayTestService(env)
	ctx := context.Background()
	giveaway, err := svc.Create(ctx, CreateGiveawayInput{CreatedBy: "admin-1", WinnersCount: 2})
	require.NoError(t, err)
	for _, id := range []string{"d1", "d2"} {
		_, err := svc.Join(ctx, giveaway.ID, mongoModel.GiveawayParticipant{DiscordID: id})
		require.NoError(t, err)
	}

	var issued string
	store.beforeReplace = func(g *mongoModel.Giveaway) error {
		if len(g.Winners) == 2 && g.Winners[0].Token != "" && g.Winners[1].Token == "" {
			issued = g.Winners[0].Token
			return errors.New("mongo: no reachable servers at 10.1.2.3")
		}
		return nil
	}
	_, _, err = svc.End(ctx, giveaway.ID, "admin-1")
	requireHTTPStatus(t, err, http.StatusInternalServerError)
	var appErr *cErr.Error
	require.ErrorAs(t, err, &appErr)
	assert.NotContains(t, appErr.ErrorDesc(), "10.1.2.3")

	require.NotEmpty(t, issued)
	revoked, err := env.keySvc.Get(ctx, issued)
	require.NoError(t, err)
	assert.True(t, revoked.Deleted)

	store.beforeReplace = nil
	ended, newlyEnded, err := svc.End(ctx, giveaway.ID, "admin-1")
	require.NoError(t, err)
	assert.True(t, newlyEnded)
	assert.NotEqual(t, issued, ended.Winners[0].Token)

	// 每位得獎者只持有一把有效 key
	for _, winner := range ended.Winners {
		held, err := env.keySvc.ListByOwner(ctx, winner.DiscordID, core.TierPaid)
		require.NoError(t, err)
		require.Len(t, held, 1)
		assert.Equal(t, winner.Token, held[0].Token)
	}
}

func TestGiveawayCancel(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newGiveawayTestService(env)
	ctx := context.Background()
	giveaway, err := svc.Create(ctx, CreateGiveawayInput{CreatedBy: "admin-1"})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, giveaway.ID)
	require.NoError(t, err)
	assert.Equal(t, core.GiveawayCancelled, cancelled.Status)

	_, _, err = svc.End(ctx, giveaway.ID, "admin-1")
	requireHTTPStatus(t, err, http.StatusConflict)
}

func TestGiveawayEndDue(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newGiveawayTestService(env)
	ctx := context.Background()
	short, err := svc.Create(ctx, CreateGiveawayInput{CreatedBy: "admin-1", Duration: time.Hour})
	require.NoError(t, err)
	long, err := svc.Create(ctx, CreateGiveawayInput{CreatedBy: "admin-1", Duration: 48 * time.Hour})
	require.NoError(t, err)

	env.advance(2 * time.Hour)
	ended, err := svc.EndDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ended)

	got, err := svc.Get(ctx, short.ID)
	require.NoError(t, err)
	assert.Equal(t, core.GiveawayEnded, got.Status)
	got, err = svc.Get(ctx, long.ID)
	require.NoError(t, err)
	assert.Equal(t, core.GiveawayRunning, got.Status)
}

func TestGiveawayDelete(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newGiveawayTestService(env)
	ctx := context.Background()
	giveaway, err := svc.Create(ctx, CreateGiveawayInput{CreatedBy: "admin-1"})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, giveaway.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = svc.Delete(ctx, giveaway.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}
