package core

import "github.com/golang-jwt/jwt/v4"

type Role string

const (
	RoleAdmin    Role = "admin"    // 管理員：可操作所有 key
	RoleReadOnly Role = "readonly" // 只能查詢統計
)

// Claims 管理員 JWT
type Claims struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}
