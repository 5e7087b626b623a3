package dto

import "keyhub/internal/service"

// 更新 key 期限設定；未帶的欄位不變，數值最後仍會被夾限
type UpdateKeyPolicyDto struct {
	FreeTTLHours     *float64 `json:"freeTtlHours" binding:"omitempty,gt=0"`
	PaidMonthDays    *float64 `json:"paidMonthDays" binding:"omitempty,gt=0"`
	Paid3MonthDays   *float64 `json:"paid3MonthDays" binding:"omitempty,gt=0"`
	Paid6MonthDays   *float64 `json:"paid6MonthDays" binding:"omitempty,gt=0"`
	PaidLifetimeDays *float64 `json:"paidLifetimeDays" binding:"omitempty,gt=0"`
}

func (d *UpdateKeyPolicyDto) ToUpdate() service.KeyPolicyUpdate {
	return service.KeyPolicyUpdate{
		FreeTTLHours:     d.FreeTTLHours,
		PaidMonthDays:    d.PaidMonthDays,
		Paid3MonthDays:   d.Paid3MonthDays,
		Paid6MonthDays:   d.Paid6MonthDays,
		PaidLifetimeDays: d.PaidLifetimeDays,
	}
}

func (d *UpdateKeyPolicyDto) Empty() bool {
	return d.FreeTTLHours == nil && d.PaidMonthDays == nil && d.Paid3MonthDays == nil &&
		d.Paid6MonthDays == nil && d.PaidLifetimeDays == nil
}
