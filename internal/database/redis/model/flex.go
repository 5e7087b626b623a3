package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// flexString 舊資料的字串欄位可能是數字或 null
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		// bool 之類的值視為空
		*s = ""
		return nil
	}
	*s = flexString(n.String())
	return nil
}

// flexMillis 舊資料的時間欄位：毫秒數字、數字字串或 ISO 8601 字串
type flexMillis struct {
	ms  int64
	set bool
}

func (m *flexMillis) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*m = flexMillis{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] != '"' {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return nil
		}
		*m = flexMillis{ms: int64(f), set: true}
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if v, ok := parseMillis(raw); ok {
		*m = flexMillis{ms: v, set: true}
	}
	return nil
}

func (m flexMillis) ptr() *int64 {
	if !m.set {
		return nil
	}
	v := m.ms
	return &v
}

// ParseMillis 解析客戶端回報的時間（毫秒或 ISO 8601）
func ParseMillis(raw string) (int64, bool) {
	return parseMillis(raw)
}

func parseMillis(raw string) (int64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return int64(n), true
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}

func parseCount(v flexString) (int64, bool) {
	n, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return 0, false
	}
	return int64(n), true
}

func firstNonEmpty(values ...flexString) string {
	for _, v := range values {
		if v != "" {
			return string(v)
		}
	}
	return ""
}

// schemaProbe 只讀版本欄位，決定走哪條解碼路徑
type schemaProbe struct {
	SchemaVersion int `json:"schemaVersion"`
}
