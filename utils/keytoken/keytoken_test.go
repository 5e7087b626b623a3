package keytoken

import (
	"regexp"
	"testing"

	"keyhub/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	freePattern = regexp.MustCompile(`^EXHUBFREE-[A-Za-z0-9]{3}-[A-Za-z0-9]{4}-[A-Za-z0-9]{5}$`)
	paidPattern = regexp.MustCompile(`^EXHUBPAID-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)
)

func TestNewFormats(t *testing.T) {
	for i := 0; i < 50; i++ {
		free, err := New(core.TierFree)
		require.NoError(t, err)
		assert.Regexp(t, freePattern, free)

		paid, err := New(core.TierPaid)
		require.NoError(t, err)
		assert.Regexp(t, paidPattern, paid)
	}
}

func TestTierOf(t *testing.T) {
	tier, ok := TierOf("EXHUBFREE-abc-defg-hijkl")
	assert.True(t, ok)
	assert.Equal(t, core.TierFree, tier)

	tier, ok = TierOf("EXHUBPAID-ABCD-EFGH-IJKL")
	assert.True(t, ok)
	assert.Equal(t, core.TierPaid, tier)

	_, ok = TierOf("random-token")
	assert.False(t, ok)
	_, ok = TierOf("EXHUBFREE")
	assert.False(t, ok)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "EXHUBPAID-ABCD-EFGH-IJKL", Normalize("  exhubpaid-abcd-efgh-ijkl "))
	assert.Equal(t, "EXHUBFREE-aBc-dEfG-hIjKl", Normalize("EXHUBFREE-aBc-dEfG-hIjKl\n"))
}
