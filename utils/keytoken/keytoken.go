package keytoken

import (
	"crypto/rand"
	"math/big"
	"strings"

	"keyhub/internal/core"
)

const (
	FreePrefix = "EXHUBFREE"
	PaidPrefix = "EXHUBPAID"

	freeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	paidAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var (
	freeGroups = []int{3, 4, 5}
	paidGroups = []int{4, 4, 4}
)

// New 產生一組 tier 專屬格式的 token：
// free  EXHUBFREE-xxx-xxxx-xxxxx（大小寫英數）
// paid  EXHUBPAID-XXXX-XXXX-XXXX（大寫英數）
func New(tier core.KeyTier) (string, error) {
	prefix, alphabet, groups := FreePrefix, freeAlphabet, freeGroups
	if tier == core.TierPaid {
		prefix, alphabet, groups = PaidPrefix, paidAlphabet, paidGroups
	}

	parts := make([]string, 0, len(groups)+1)
	parts = append(parts, prefix)
	for _, n := range groups {
		chunk, err := randomChunk(alphabet, n)
		if err != nil {
			return "", err
		}
		parts = append(parts, chunk)
	}
	return strings.Join(parts, "-"), nil
}

// TierOf 由前綴判斷 tier；無法辨識回傳 ok=false
func TierOf(token string) (tier core.KeyTier, ok bool) {
	switch {
	case strings.HasPrefix(token, FreePrefix+"-"):
		return core.TierFree, true
	case strings.HasPrefix(token, PaidPrefix+"-"):
		return core.TierPaid, true
	default:
		return "", false
	}
}

// Normalize 去除空白；paid token 一律大寫（free token 區分大小寫）
func Normalize(token string) string {
	token = strings.TrimSpace(token)
	if strings.HasPrefix(strings.ToUpper(token), PaidPrefix+"-") {
		return strings.ToUpper(token)
	}
	return token
}

func randomChunk(alphabet string, n int) (string, error) {
	max := big.NewInt(int64(len(alphabet)))
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(alphabet[idx.Int64()])
	}
	return b.String(), nil
}
