package service

import (
	"context"
	"math"
	"sort"
	"time"

	"keyhub/internal/core"
	"keyhub/internal/database/redis/model"
	"keyhub/internal/telemetry"
	"keyhub/utils/keytoken"
)

const (
	statsTopN       = 10
	statsRecentPage = 100
)

// statsWindows 以 lastExecuteAt 判斷是否落在視窗內；all 不看時間
var statsWindows = []struct {
	Name   string
	Window time.Duration
}{
	{"24h", 24 * time.Hour},
	{"7d", 7 * 24 * time.Hour},
	{"30d", 30 * 24 * time.Hour},
	{"all", 0},
}

type WindowStats struct {
	Executions int64 `json:"executions"`
	Users      int   `json:"users"`
	Devices    int   `json:"devices"`
}

type RankEntry struct {
	ID         string `json:"id"`
	Label      string `json:"label,omitempty"`
	Executions int64  `json:"executions"`
}

type RecentExecution struct {
	Key           string `json:"key"`
	ScriptID      string `json:"scriptId"`
	UserID        string `json:"userId"`
	Username      string `json:"username,omitempty"`
	DeviceID      string `json:"hwid"`
	KeyToken      string `json:"keyToken,omitempty"`
	MapName       string `json:"mapName,omitempty"`
	PlaceID       string `json:"placeId,omitempty"`
	TotalExecutes int64  `json:"totalExecutes"`
	LastExecuteAt int64  `json:"lastExecuteAt"`
}

// Stats 後台儀表板的唯讀彙總
type Stats struct {
	GeneratedAt      int64                  `json:"generatedAt"`
	TotalExecutions  int64                  `json:"totalExecutions"`
	UniqueUsers      int                    `json:"uniqueUsers"`
	UniqueDevices    int                    `json:"uniqueDevices"`
	LoaderUsers      int                    `json:"loaderUsers"`
	AvgExecPerUser   float64                `json:"avgExecPerUser"`
	AvgExecPerDevice float64                `json:"avgExecPerDevice"`
	Windows          map[string]WindowStats `json:"windows"`
	TopScripts       []RankEntry            `json:"topScripts"`
	TopUsers         []RankEntry            `json:"topUsers"`
	TopDevices       []RankEntry            `json:"topDevices"`
	Recent           []RecentExecution      `json:"recent"`
	KeysInUse        map[core.KeyTier]int   `json:"keysInUse"`
}

// ProjectStats 純計算，不讀寫任何儲存。
// 排名同分時保留輸入順序（呼叫端以複合鍵排序後傳入），不再定義次要排序鍵。
func ProjectStats(aggregates []*model.ExecutionAggregate, now time.Time) *Stats {
	nowMs := now.UnixMilli()
	stats := &Stats{
		GeneratedAt: nowMs,
		Windows:     make(map[string]WindowStats, len(statsWindows)),
		KeysInUse:   map[core.KeyTier]int{core.TierFree: 0, core.TierPaid: 0},
	}

	users := map[string]bool{}
	devices := map[string]bool{}
	loaders := map[string]bool{}
	tokens := map[string]bool{}
	scripts := newRanking()
	userRank := newRanking()
	deviceRank := newRanking()

	for _, a := range aggregates {
		stats.TotalExecutions += a.TotalExecutes
		users[a.UserID] = true
		devices[a.DeviceID] = true
		if a.TotalExecutes > 0 {
			loaders[a.UserID] = true
		}
		if a.KeyToken != "" && !tokens[a.KeyToken] {
			tokens[a.KeyToken] = true
			if tier, ok := keytoken.TierOf(a.KeyToken); ok {
				stats.KeysInUse[tier]++
			}
		}
		scripts.add(a.ScriptID, "", a.TotalExecutes)
		userRank.add(a.UserID, a.Username, a.TotalExecutes)
		deviceRank.add(a.DeviceID, "", a.TotalExecutes)
	}
	stats.UniqueUsers = len(users)
	stats.UniqueDevices = len(devices)
	stats.LoaderUsers = len(loaders)
	stats.AvgExecPerUser = average(stats.TotalExecutions, stats.UniqueUsers)
	stats.AvgExecPerDevice = average(stats.TotalExecutions, stats.UniqueDevices)

	for _, w := range statsWindows {
		stats.Windows[w.Name] = windowStats(aggregates, nowMs, w.Window)
	}

	stats.TopScripts = scripts.top(statsTopN)
	stats.TopUsers = userRank.top(statsTopN)
	stats.TopDevices = deviceRank.top(statsTopN)
	stats.Recent = recentExecutions(aggregates, statsRecentPage)
	return stats
}

func windowStats(aggregates []*model.ExecutionAggregate, nowMs int64, window time.Duration) WindowStats {
	var ws WindowStats
	users := map[string]bool{}
	devices := map[string]bool{}
	for _, a := range aggregates {
		if window > 0 {
			age := nowMs - a.LastExecuteAt
			if age < 0 || age > window.Milliseconds() {
				continue
			}
		}
		ws.Executions += a.TotalExecutes
		users[a.UserID] = true
		devices[a.DeviceID] = true
	}
	ws.Users = len(users)
	ws.Devices = len(devices)
	return ws
}

func recentExecutions(aggregates []*model.ExecutionAggregate, limit int) []RecentExecution {
	sorted := append([]*model.ExecutionAggregate{}, aggregates...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].LastExecuteAt > sorted[j].LastExecuteAt
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	recent := make([]RecentExecution, 0, len(sorted))
	for _, a := range sorted {
		recent = append(recent, RecentExecution{
			Key:           a.Key,
			ScriptID:      a.ScriptID,
			UserID:        a.UserID,
			Username:      a.Username,
			DeviceID:      a.DeviceID,
			KeyToken:      a.KeyToken,
			MapName:       a.MapName,
			PlaceID:       a.PlaceID,
			TotalExecutes: a.TotalExecutes,
			LastExecuteAt: a.LastExecuteAt,
		})
	}
	return recent
}

// average 取到小數點後一位
func average(total int64, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(n)*10) / 10
}

// ranking 依第一次出現的順序累加，排序用 stable
type ranking struct {
	order   []string
	entries map[string]*RankEntry
}

func newRanking() *ranking {
	return &ranking{entries: map[string]*RankEntry{}}
}

func (r *ranking) add(id, label string, n int64) {
	entry, ok := r.entries[id]
	if !ok {
		entry = &RankEntry{ID: id}
		r.entries[id] = entry
		r.order = append(r.order, id)
	}
	entry.Executions += n
	if label != "" {
		entry.Label = label
	}
}

func (r *ranking) top(n int) []RankEntry {
	list := make([]RankEntry, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, *r.entries[id])
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Executions > list[j].Executions
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}

type StatsService struct {
	trace      *telemetry.Trace
	executions *ExecutionService
	clock      func() time.Time
}

func NewStatsService(trace *telemetry.Trace, executions *ExecutionService) *StatsService {
	return &StatsService{trace: trace, executions: executions, clock: time.Now}
}

// Get 讀取全部執行彙總後計算儀表板資料
func (s *StatsService) Get(ctx context.Context) (stats *Stats, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	aggregates, err := s.executions.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return ProjectStats(aggregates, s.clock()), nil
}
