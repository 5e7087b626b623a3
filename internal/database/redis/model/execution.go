package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"keyhub/internal/database/kv"
)

const ExecutionSchemaVersion = 1

// Location 一筆地圖歷史；以 (gameId, placeId, mapName) 去重，serverIds 累加
type Location struct {
	MapName   string   `json:"mapName,omitempty"`
	PlaceID   string   `json:"placeId,omitempty"`
	GameID    string   `json:"gameId,omitempty"`
	ServerIDs []string `json:"serverIds"`
	ServerID  string   `json:"serverId,omitempty"`
}

func (l Location) compositeKey() string {
	return l.GameID + "|" + l.PlaceID + "|" + l.MapName
}

// ExecutionAggregate 每個 (scriptId, userId, deviceId) 一筆的執行彙總
type ExecutionAggregate struct {
	SchemaVersion      int        `json:"schemaVersion"`
	Key                string     `json:"key"`
	ScriptID           string     `json:"scriptId" validate:"required"`
	UserID             string     `json:"userId" validate:"required"`
	DeviceID           string     `json:"hwid" validate:"required"`
	Username           string     `json:"username,omitempty"`
	DisplayName        string     `json:"displayName,omitempty"`
	OwnerID            string     `json:"discordId,omitempty"`
	ExecutorUse        string     `json:"executorUse,omitempty"`
	ClientExecuteCount *int64     `json:"clientExecuteCount,omitempty"`
	KeyToken           string     `json:"keyToken,omitempty"`
	KeyCreatedAt       *int64     `json:"keyCreatedAt,omitempty"`
	KeyExpiresAt       *int64     `json:"keyExpiresAt,omitempty"`
	FirstExecuteAt     int64      `json:"firstExecuteAt"`
	LastExecuteAt      int64      `json:"lastExecuteAt"`
	LastIP             string     `json:"lastIp,omitempty"`
	TotalExecutes      int64      `json:"totalExecutes" validate:"gte=0"`
	MapName            string     `json:"mapName,omitempty"`
	PlaceID            string     `json:"placeId,omitempty"`
	ServerID           string     `json:"serverId,omitempty"`
	GameID             string     `json:"gameId,omitempty"`
	AllMapList         []Location `json:"allMapList"`
}

// ExecutionKey 彙總的複合鍵，也是 exec index 的成員
func ExecutionKey(scriptID, userID, deviceID string) string {
	return scriptID + ":" + userID + ":" + deviceID
}

func (a *ExecutionAggregate) Encode() ([]byte, error) {
	a.SchemaVersion = ExecutionSchemaVersion
	if a.AllMapList == nil {
		a.AllMapList = []Location{}
	}
	return json.Marshal(a)
}

// MergeLocation 把一次回報的位置併入歷史；三個識別欄位全空時忽略
func (a *ExecutionAggregate) MergeLocation(in Location) {
	list := make([]Location, 0, len(a.AllMapList)+1)
	index := make(map[string]int, len(a.AllMapList)+1)

	for _, loc := range append(append([]Location{}, a.AllMapList...), in) {
		if loc.MapName == "" && loc.PlaceID == "" && loc.GameID == "" {
			continue
		}
		key := loc.compositeKey()
		i, ok := index[key]
		if !ok {
			list = append(list, Location{
				MapName:   loc.MapName,
				PlaceID:   loc.PlaceID,
				GameID:    loc.GameID,
				ServerIDs: []string{},
			})
			i = len(list) - 1
			index[key] = i
		}

		incoming := append([]string{}, loc.ServerIDs...)
		if loc.ServerID != "" {
			incoming = append(incoming, loc.ServerID)
		}
		target := &list[i]
		for _, sid := range incoming {
			if sid != "" && !contains(target.ServerIDs, sid) {
				target.ServerIDs = append(target.ServerIDs, sid)
			}
		}
		if n := len(target.ServerIDs); n > 0 {
			target.ServerID = target.ServerIDs[n-1]
		}
	}
	a.AllMapList = list
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// DecodeExecutionAggregate 反序列化並驗證；舊版時間欄位為 ISO 字串
func DecodeExecutionAggregate(raw []byte) (*ExecutionAggregate, error) {
	var probe schemaProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, errors.Join(kv.ErrMalformed, err)
	}

	var agg *ExecutionAggregate
	switch probe.SchemaVersion {
	case 0:
		var legacy legacyExecution
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, errors.Join(kv.ErrMalformed, err)
		}
		agg = legacy.migrate()
	case ExecutionSchemaVersion:
		agg = &ExecutionAggregate{}
		if err := json.Unmarshal(raw, agg); err != nil {
			return nil, errors.Join(kv.ErrMalformed, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported execution schema %d", kv.ErrMalformed, probe.SchemaVersion)
	}

	agg.SchemaVersion = ExecutionSchemaVersion
	if agg.Key == "" {
		agg.Key = ExecutionKey(agg.ScriptID, agg.UserID, agg.DeviceID)
	}
	if agg.AllMapList == nil {
		agg.AllMapList = []Location{}
	}
	if agg.FirstExecuteAt == 0 {
		agg.FirstExecuteAt = agg.LastExecuteAt
	}
	if err := schemaValidator.Struct(agg); err != nil {
		return nil, errors.Join(kv.ErrMalformed, err)
	}
	return agg, nil
}

type legacyLocation struct {
	MapName   flexString   `json:"mapName"`
	PlaceID   flexString   `json:"placeId"`
	GameID    flexString   `json:"gameId"`
	ServerIDs []flexString `json:"serverIds"`
	ServerID  flexString   `json:"serverId"`
}

type legacyExecution struct {
	Key                flexString       `json:"key"`
	ScriptID           flexString       `json:"scriptId"`
	UserID             flexString       `json:"userId"`
	HWID               flexString       `json:"hwid"`
	Username           flexString       `json:"username"`
	DisplayName        flexString       `json:"displayName"`
	DiscordID          flexString       `json:"discordId"`
	OwnerDiscordID     flexString       `json:"ownerDiscordId"`
	ExecutorUse        flexString       `json:"executorUse"`
	ClientExecuteCount flexString       `json:"clientExecuteCount"`
	KeyToken           flexString       `json:"keyToken"`
	KeyCreatedAt       flexMillis       `json:"keyCreatedAt"`
	KeyExpiresAt       flexMillis       `json:"keyExpiresAt"`
	FirstExecuteAt     flexMillis       `json:"firstExecuteAt"`
	LastExecuteAt      flexMillis       `json:"lastExecuteAt"`
	LastIP             flexString       `json:"lastIp"`
	TotalExecutes      flexString       `json:"totalExecutes"`
	MapName            flexString       `json:"mapName"`
	PlaceID            flexString       `json:"placeId"`
	ServerID           flexString       `json:"serverId"`
	GameID             flexString       `json:"gameId"`
	AllMapList         []legacyLocation `json:"allMapList"`
}

func (l legacyExecution) migrate() *ExecutionAggregate {
	agg := &ExecutionAggregate{
		Key:            string(l.Key),
		ScriptID:       string(l.ScriptID),
		UserID:         string(l.UserID),
		DeviceID:       string(l.HWID),
		Username:       string(l.Username),
		DisplayName:    string(l.DisplayName),
		OwnerID:        firstNonEmpty(l.DiscordID, l.OwnerDiscordID),
		ExecutorUse:    string(l.ExecutorUse),
		KeyToken:       string(l.KeyToken),
		KeyCreatedAt:   l.KeyCreatedAt.ptr(),
		KeyExpiresAt:   l.KeyExpiresAt.ptr(),
		FirstExecuteAt: l.FirstExecuteAt.ms,
		LastExecuteAt:  l.LastExecuteAt.ms,
		LastIP:         string(l.LastIP),
		MapName:        string(l.MapName),
		PlaceID:        string(l.PlaceID),
		ServerID:       string(l.ServerID),
		GameID:         string(l.GameID),
	}
	if v, ok := parseCount(l.ClientExecuteCount); ok {
		agg.ClientExecuteCount = &v
	}
	if v, ok := parseCount(l.TotalExecutes); ok {
		agg.TotalExecutes = v
	}
	for _, loc := range l.AllMapList {
		ids := make([]string, 0, len(loc.ServerIDs))
		for _, id := range loc.ServerIDs {
			if s := strings.TrimSpace(string(id)); s != "" {
				ids = append(ids, s)
			}
		}
		agg.MergeLocation(Location{
			MapName:   string(loc.MapName),
			PlaceID:   string(loc.PlaceID),
			GameID:    string(loc.GameID),
			ServerIDs: ids,
			ServerID:  string(loc.ServerID),
		})
	}
	return agg
}
