package dto

// GET /api/keys/validate 的 query 與 POST 的 body 共用
type ValidateKeyDto struct {
	Token       string     `form:"token" json:"token"`
	UserID      FlexString `form:"userId" json:"userId"`
	Username    string     `form:"username" json:"username"`
	DisplayName string     `form:"displayName" json:"displayName"`
	HWID        string     `form:"hwid" json:"hwid"`
}
