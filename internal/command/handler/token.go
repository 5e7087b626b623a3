package command

import (
	"fmt"
	"time"

	"keyhub/config"
	"keyhub/internal/core"
	"keyhub/internal/pkg/auth"

	"github.com/spf13/cobra"
)

type TokenHandler struct {
	config *config.Configuration
}

func NewTokenHandler(config *config.Configuration) *TokenHandler {
	return &TokenHandler{config: config}
}

// IssueAdmin 簽發管理員 JWT，供 /admin 端點使用
func (handler *TokenHandler) IssueAdmin(cmd *cobra.Command, args []string, role string, ttl time.Duration) error {
	r := core.Role(role)
	if r != core.RoleAdmin && r != core.RoleReadOnly {
		return fmt.Errorf("unknown role %q", role)
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	token, err := auth.IssueAdminToken(handler.config.App.SecretKey, args[0], r, ttl, time.Now())
	if err != nil {
		return err
	}
	cmd.Println(token)
	return nil
}
