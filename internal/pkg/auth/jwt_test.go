package auth

import (
	"keyhub/internal/core"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseAdminToken(t *testing.T) {
	token, err := IssueAdminToken("s3cret", "alice", core.RoleAdmin, time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := ParseAdminToken("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, core.RoleAdmin, claims.Role)
}

func TestParseAdminTokenRejects(t *testing.T) {
	valid, err := IssueAdminToken("s3cret", "alice", core.RoleAdmin, time.Hour, time.Now())
	require.NoError(t, err)
	expired, err := IssueAdminToken("s3cret", "alice", core.RoleAdmin, time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, core.Claims{Username: "alice", Role: core.RoleAdmin}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	cases := []struct {
		name   string
		secret string
		token  string
	}{
		{"wrong secret", "other", valid},
		{"expired", "s3cret", expired},
		{"alg none", "s3cret", none},
		{"garbage", "s3cret", "not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAdminToken(tc.secret, tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMissingSecret(t *testing.T) {
	_, err := IssueAdminToken("", "alice", core.RoleAdmin, time.Hour, time.Now())
	assert.ErrorIs(t, err, ErrMissingSecret)
	_, err = ParseAdminToken("", "x")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
