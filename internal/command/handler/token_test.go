package command

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"keyhub/config"
	"keyhub/internal/core"
	"keyhub/internal/pkg/auth"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAdmin(t *testing.T) {
	conf := &config.Configuration{App: config.App{SecretKey: "cli-secret"}}
	handler := NewTokenHandler(conf)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	require.NoError(t, handler.IssueAdmin(cmd, []string{"alice"}, "readonly", time.Hour))

	claims, err := auth.ParseAdminToken("cli-secret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, core.RoleReadOnly, claims.Role)

	assert.Error(t, handler.IssueAdmin(cmd, []string{"alice"}, "root", time.Hour))
	assert.Error(t, handler.IssueAdmin(cmd, []string{"alice"}, "admin", 0))

	empty := NewTokenHandler(&config.Configuration{})
	assert.ErrorIs(t, empty.IssueAdmin(cmd, []string{"alice"}, "admin", time.Hour), auth.ErrMissingSecret)
}
