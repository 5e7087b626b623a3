package dto

import "keyhub/internal/service"

// 執行回報；必填欄位由 service 檢查並回 missing_fields
type ExecReportDto struct {
	ScriptID           FlexString  `json:"scriptId"`
	UserID             FlexString  `json:"userId"`
	HWID               FlexString  `json:"hwid"`
	Username           string      `json:"username"`
	DisplayName        string      `json:"displayName"`
	ExecutorUse        string      `json:"executorUse"`
	ExecuteCount       *FlexString `json:"executeCount"`
	ClientExecuteCount *FlexString `json:"clientExecuteCount"`
	Key                string      `json:"key"`
	LegacyKey          string      `json:"Key"`
	CreatedAt          FlexString  `json:"createdAt"`
	ExpiresAt          FlexString  `json:"expiresAt"`
	MapName            FlexString  `json:"mapName"`
	PlaceID            FlexString  `json:"placeId"`
	ServerID           FlexString  `json:"serverId"`
	GameID             FlexString  `json:"gameId"`
}

func (d *ExecReportDto) ToInput(ip string) service.ExecutionInput {
	key := d.Key
	if key == "" {
		key = d.LegacyKey
	}
	return service.ExecutionInput{
		ScriptID:           d.ScriptID.String(),
		UserID:             d.UserID.String(),
		DeviceID:           d.HWID.String(),
		Username:           d.Username,
		DisplayName:        d.DisplayName,
		ExecutorUse:        d.ExecutorUse,
		ClientExecuteCount: d.executeCount(),
		KeyToken:           key,
		KeyCreatedAt:       d.CreatedAt.String(),
		KeyExpiresAt:       d.ExpiresAt.String(),
		IP:                 ip,
		MapName:            d.MapName.String(),
		PlaceID:            d.PlaceID.String(),
		ServerID:           d.ServerID.String(),
		GameID:             d.GameID.String(),
	}
}

// executeCount 優先 executeCount，其次 clientExecuteCount；非數字忽略
func (d *ExecReportDto) executeCount() *int64 {
	for _, raw := range []*FlexString{d.ExecuteCount, d.ClientExecuteCount} {
		if raw == nil || *raw == "" {
			continue
		}
		if n, ok := parseInt(raw.String()); ok {
			return &n
		}
	}
	return nil
}

type ExecReceivedDto struct {
	ScriptID string `json:"scriptId"`
	UserID   string `json:"userId"`
	HWID     string `json:"hwid"`
	Total    int64  `json:"totalExecutes"`
}

type ExecResponseDto struct {
	OK       bool            `json:"ok"`
	Received ExecReceivedDto `json:"received"`
}
