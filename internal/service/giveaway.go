package service

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"keyhub/internal/core"
	mongoModel "keyhub/internal/database/mongodb/model"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/telemetry"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultGiveawayDuration = 24 * time.Hour
	giveawayPageSize        = 50
)

// GiveawayStore 抽獎活動的落地位置（MongoDB）；GetByID 找不到時回傳 nil, nil
type GiveawayStore interface {
	Create(ctx context.Context, giveaway *mongoModel.Giveaway) (*mongoModel.Giveaway, error)
	GetByID(ctx context.Context, giveawayID string) (*mongoModel.Giveaway, error)
	Replace(ctx context.Context, giveaway *mongoModel.Giveaway) (int64, error)
	UpdateMessageID(ctx context.Context, giveawayID, messageID string) (int64, error)
	Delete(ctx context.Context, giveawayID string) (bool, error)
	List(ctx context.Context, listOptions core.ListOptions) ([]*mongoModel.Giveaway, error)
}

type CreateGiveawayInput struct {
	GuildID      string
	ChannelID    string
	MessageID    string
	CreatedBy    string
	Prize        string
	Description  string
	WinnersCount int
	Plan         string
	Duration     time.Duration
}

// GiveawayService 抽獎：報名、開獎時透過 KeyService 發 paid key 給得獎者
type GiveawayService struct {
	trace   *telemetry.Trace
	store   GiveawayStore
	keySvc  *KeyService
	locker  *KeyLocker
	logger  *zap.Logger
	clock   func() time.Time
	shuffle func(n int, swap func(i, j int))
}

func NewGiveawayService(
	trace *telemetry.Trace,
	store GiveawayStore,
	keySvc *KeyService,
	locker *KeyLocker,
	logger *zap.Logger,
) *GiveawayService {
	return &GiveawayService{
		trace:   trace,
		store:   store,
		keySvc:  keySvc,
		locker:  locker,
		logger:  logger,
		clock:   time.Now,
		shuffle: rand.Shuffle,
	}
}

// Create 建立進行中的抽獎；得獎人數至少 1，未指定長度時為 24 小時
func (s *GiveawayService) Create(ctx context.Context, input CreateGiveawayInput) (_ *mongoModel.Giveaway, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	if strings.TrimSpace(input.CreatedBy) == "" {
		return nil, cErr.ValidateErr("createdBy is required")
	}
	winners := input.WinnersCount
	if winners < 1 {
		winners = 1
	}
	duration := input.Duration
	if duration <= 0 {
		duration = defaultGiveawayDuration
	}
	plan, ok := core.ParsePaidPlan(input.Plan)
	if !ok {
		plan = core.PlanMonth
	}

	now := s.clock().UTC()
	giveaway := &mongoModel.Giveaway{
		ID:           newGiveawayID(now),
		GuildID:      input.GuildID,
		ChannelID:    input.ChannelID,
		MessageID:    input.MessageID,
		CreatedBy:    input.CreatedBy,
		Prize:        input.Prize,
		Description:  input.Description,
		WinnersCount: winners,
		Plan:         plan,
		Duration:     duration,
		EndsAt:       now.Add(duration),
		Status:       core.GiveawayRunning,
		Participants: []mongoModel.GiveawayParticipant{},
		Winners:      []mongoModel.GiveawayWinner{},
		CreatedAt:    now,
	}
	created, err := s.store.Create(ctx, giveaway)
	if err != nil {
		return nil, s.dbError("create giveaway failed", err)
	}
	s.logger.Info("giveaway created",
		zap.String("id", created.ID),
		zap.String("plan", string(plan)),
		zap.Int("winners", winners),
		zap.Time("endsAt", created.EndsAt),
	)
	return created, nil
}

func (s *GiveawayService) Get(ctx context.Context, giveawayID string) (*mongoModel.Giveaway, error) {
	giveaway, err := s.store.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, s.dbError("read giveaway failed", err)
	}
	if giveaway == nil {
		return nil, cErr.NotFound("giveaway not found")
	}
	return giveaway, nil
}

// List status 為空時列出全部
func (s *GiveawayService) List(ctx context.Context, status core.GiveawayStatus, page int64) ([]*mongoModel.Giveaway, error) {
	opts := core.ListOptions{Page: page, Size: giveawayPageSize}
	if status != "" {
		opts.Filter = map[string]any{"status": status}
	}
	giveaways, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, s.dbError("list giveaways failed", err)
	}
	return giveaways, nil
}

// AttachMessage bot 發出公告後回填訊息 ID
func (s *GiveawayService) AttachMessage(ctx context.Context, giveawayID, messageID string) error {
	matched, err := s.store.UpdateMessageID(ctx, giveawayID, messageID)
	if err != nil {
		return s.dbError("update giveaway failed", err)
	}
	if matched == 0 {
		return cErr.NotFound("giveaway not found")
	}
	return nil
}

// Join 只在進行中可報名；重複報名會以新資料補齊參加者快照
func (s *GiveawayService) Join(ctx context.Context, giveawayID string, participant mongoModel.GiveawayParticipant) (_ *mongoModel.Giveaway, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	participant.DiscordID = strings.TrimSpace(participant.DiscordID)
	if participant.DiscordID == "" {
		return nil, cErr.ValidateErr("discordId is required")
	}

	unlock := s.locker.Lock(giveawayLockKey(giveawayID))
	defer unlock()

	giveaway, err := s.Get(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	if giveaway.Status != core.GiveawayRunning {
		return nil, cErr.Conflict("giveaway is " + string(giveaway.Status))
	}

	joined := false
	for i := range giveaway.Participants {
		existing := &giveaway.Participants[i]
		if existing.DiscordID != participant.DiscordID {
			continue
		}
		overwrite(&existing.Username, participant.Username)
		overwrite(&existing.GlobalName, participant.GlobalName)
		overwrite(&existing.Discriminator, participant.Discriminator)
		overwrite(&existing.Avatar, participant.Avatar)
		joined = true
		break
	}
	if !joined {
		participant.JoinedAt = s.clock().UTC()
		giveaway.Participants = append(giveaway.Participants, participant)
	}

	if _, err := s.store.Replace(ctx, giveaway); err != nil {
		return nil, s.dbError("update giveaway failed", err)
	}
	return giveaway, nil
}

// End 開獎。已結束時直接回傳既有結果（newlyEnded=false）；沒有參加者時以零得獎者結束。
// 得獎者先落地再逐一發 key，中途失敗可重跑，只會補發還沒有 token 的得獎者。
func (s *GiveawayService) End(ctx context.Context, giveawayID, actor string) (_ *mongoModel.Giveaway, newlyEnded bool, returnedError error) {
	ctx, span, end := s.trace.WithSpan(ctx)
	defer func() {
		s.trace.ApplyTraceAttributes(span, core.TraceKeyMeta{Op: "giveaway_end", Outcome: outcomeOf(returnedError)})
		end(returnedError)
	}()

	unlock := s.locker.Lock(giveawayLockKey(giveawayID))
	defer unlock()

	giveaway, err := s.Get(ctx, giveawayID)
	if err != nil {
		return nil, false, err
	}
	switch giveaway.Status {
	case core.GiveawayCancelled:
		return nil, false, cErr.Conflict("giveaway was cancelled")
	case core.GiveawayEnded:
		return giveaway, false, nil
	}

	if len(giveaway.Winners) == 0 && len(giveaway.Participants) > 0 {
		giveaway.Winners = s.drawWinners(giveaway)
		if _, err := s.store.Replace(ctx, giveaway); err != nil {
			return nil, false, s.dbError("save giveaway winners failed", err)
		}
	}

	for i := range giveaway.Winners {
		winner := &giveaway.Winners[i]
		if winner.Token != "" {
			continue
		}
		record, err := s.keySvc.Create(ctx, CreateKeyInput{
			OwnerID:         winner.DiscordID,
			Tier:            core.TierPaid,
			Plan:            string(winner.Plan),
			CreationContext: "giveaway:" + giveaway.ID,
			Actor:           actor,
		})
		if err != nil {
			return nil, false, err
		}
		winner.Token = record.Token
		winner.ExpiresAt = record.ExpiresAt
		// 每發一把就落地；存不進去時撤銷該 key，重跑會重新發給同一位得獎者
		if _, err := s.store.Replace(ctx, giveaway); err != nil {
			if _, delErr := s.keySvc.Delete(ctx, record.Token, "", actor); delErr != nil {
				s.logger.Error("revoke unrecorded giveaway key failed",
					zap.String("id", giveaway.ID), zap.String("token", record.Token), zap.Error(delErr))
			}
			return nil, false, s.dbError("save giveaway winner failed", err)
		}
	}

	endedAt := s.clock().UTC()
	giveaway.Status = core.GiveawayEnded
	giveaway.EndedAt = &endedAt
	if _, err := s.store.Replace(ctx, giveaway); err != nil {
		return nil, false, s.dbError("end giveaway failed", err)
	}
	s.logger.Info("giveaway ended",
		zap.String("id", giveaway.ID),
		zap.Int("participants", len(giveaway.Participants)),
		zap.Int("winners", len(giveaway.Winners)),
	)
	return giveaway, true, nil
}

// drawWinners 均勻隨機抽出 min(winnersCount, 參加人數) 位
func (s *GiveawayService) drawWinners(giveaway *mongoModel.Giveaway) []mongoModel.GiveawayWinner {
	pool := make([]mongoModel.GiveawayParticipant, len(giveaway.Participants))
	copy(pool, giveaway.Participants)
	s.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

	count := min(giveaway.WinnersCount, len(pool))
	winners := make([]mongoModel.GiveawayWinner, 0, count)
	for _, participant := range pool[:count] {
		winners = append(winners, mongoModel.GiveawayWinner{GiveawayParticipant: participant, Plan: giveaway.Plan})
	}
	return winners
}

// EndDue 結束所有已過期仍在進行中的抽獎，回傳成功結束的數量
func (s *GiveawayService) EndDue(ctx context.Context) (int, error) {
	running, err := s.List(ctx, core.GiveawayRunning, 0)
	if err != nil {
		return 0, err
	}
	now := s.clock()
	ended := 0
	for _, giveaway := range running {
		if giveaway.EndsAt.After(now) {
			continue
		}
		if _, newlyEnded, err := s.End(ctx, giveaway.ID, "scheduler"); err != nil {
			s.logger.Warn("auto end giveaway failed", zap.String("id", giveaway.ID), zap.Error(err))
		} else if newlyEnded {
			ended++
		}
	}
	return ended, nil
}

// Cancel 進行中的抽獎改為取消；已開獎不可取消
func (s *GiveawayService) Cancel(ctx context.Context, giveawayID string) (*mongoModel.Giveaway, error) {
	unlock := s.locker.Lock(giveawayLockKey(giveawayID))
	defer unlock()

	giveaway, err := s.Get(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	switch giveaway.Status {
	case core.GiveawayEnded:
		return nil, cErr.Conflict("giveaway already ended")
	case core.GiveawayCancelled:
		return giveaway, nil
	}
	endedAt := s.clock().UTC()
	giveaway.Status = core.GiveawayCancelled
	giveaway.EndedAt = &endedAt
	if _, err := s.store.Replace(ctx, giveaway); err != nil {
		return nil, s.dbError("cancel giveaway failed", err)
	}
	return giveaway, nil
}

// Delete 只刪除活動本身，已發出的 key 不受影響
func (s *GiveawayService) Delete(ctx context.Context, giveawayID string) (bool, error) {
	unlock := s.locker.Lock(giveawayLockKey(giveawayID))
	defer unlock()

	deleted, err := s.store.Delete(ctx, giveawayID)
	if err != nil {
		return false, s.dbError("delete giveaway failed", err)
	}
	return deleted, nil
}

// dbError 記錄 MongoDB 錯誤，對外只回固定描述
func (s *GiveawayService) dbError(desc string, err error) error {
	s.logger.Error(desc, zap.Error(err))
	return cErr.DatabaseError(desc)
}

func newGiveawayID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
	return "ga_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
}
