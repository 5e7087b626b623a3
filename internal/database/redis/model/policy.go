package model

import (
	"encoding/json"
	"errors"
	"strconv"

	"keyhub/internal/database/kv"
)

// FreePolicyDocument 後台 UI 設定文件中與 free key 期限相關的欄位；其他 UI 欄位原樣保留
type FreePolicyDocument struct {
	TTLHours        flexString `json:"ttlHours"`
	FreeKeyTTLHours flexString `json:"freeKeyTtlHours"`
	Global          *struct {
		TTLHours        flexString `json:"ttlHours"`
		FreeKeyTTLHours flexString `json:"freeKeyTtlHours"`
	} `json:"global"`
}

// Hours 依 ttlHours > freeKeyTtlHours > global.ttlHours > global.freeKeyTtlHours 取第一個可解析的值
func (d FreePolicyDocument) Hours() (float64, bool) {
	candidates := []flexString{d.TTLHours, d.FreeKeyTTLHours}
	if d.Global != nil {
		candidates = append(candidates, d.Global.TTLHours, d.Global.FreeKeyTTLHours)
	}
	for _, c := range candidates {
		if v, err := strconv.ParseFloat(string(c), 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

type PaidPolicyDocument struct {
	MonthDays      flexString `json:"monthDays"`
	ThreeMonthDays flexString `json:"threeMonthDays"`
	SixMonthDays   flexString `json:"sixMonthDays"`
	LifetimeDays   flexString `json:"lifetimeDays"`
}

func days(v flexString) (float64, bool) {
	n, err := strconv.ParseFloat(string(v), 64)
	return n, err == nil
}

func (d PaidPolicyDocument) Month() (float64, bool)      { return days(d.MonthDays) }
func (d PaidPolicyDocument) ThreeMonth() (float64, bool) { return days(d.ThreeMonthDays) }
func (d PaidPolicyDocument) SixMonth() (float64, bool)   { return days(d.SixMonthDays) }
func (d PaidPolicyDocument) Lifetime() (float64, bool)   { return days(d.LifetimeDays) }

func DecodeFreePolicy(raw []byte) (FreePolicyDocument, error) {
	var doc FreePolicyDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, errors.Join(kv.ErrMalformed, err)
	}
	return doc, nil
}

func DecodePaidPolicy(raw []byte) (PaidPolicyDocument, error) {
	var doc PaidPolicyDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, errors.Join(kv.ErrMalformed, err)
	}
	return doc, nil
}

// MergeDocument 把 fields 寫進既有 JSON 物件，保留其他欄位；raw 為空時建立新物件
func MergeDocument(raw []byte, fields map[string]any) ([]byte, error) {
	doc := map[string]json.RawMessage{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, errors.Join(kv.ErrMalformed, err)
		}
	}
	for k, v := range fields {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		doc[k] = b
	}
	return json.Marshal(doc)
}
