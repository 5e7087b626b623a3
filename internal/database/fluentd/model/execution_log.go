package model

// ExecutionLog 每次執行回報一筆，彙總本身留在 KV
type ExecutionLog struct {
	Key           string `json:"key"`
	ScriptID      string `json:"script_id"`
	UserID        string `json:"user_id"`
	DeviceID      string `json:"device_id"`
	KeyToken      string `json:"key_token,omitempty"`
	MapName       string `json:"map_name,omitempty"`
	PlaceID       string `json:"place_id,omitempty"`
	ServerID      string `json:"server_id,omitempty"`
	IPHash        string `json:"ip_hash,omitempty"`
	TotalExecutes int64  `json:"total_executes"`
	Created       bool   `json:"created"`
	Version       string `json:"version,omitempty"`
	LoggedAt      string `json:"logged_at"`
}
