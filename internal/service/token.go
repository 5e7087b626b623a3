package service

import (
	"context"
	"errors"

	"keyhub/internal/core"
	"keyhub/internal/database/kv"
	cErr "keyhub/internal/pkg/error"
	"keyhub/internal/telemetry"
	"keyhub/utils/keytoken"
)

const maxTokenAttempts = 10

type TokenService struct {
	trace    *telemetry.Trace
	store    kv.Store
	keys     kv.Keys
	generate func(core.KeyTier) (string, error)
}

func NewTokenService(trace *telemetry.Trace, store kv.Store, keys kv.Keys) *TokenService {
	return &TokenService{trace: trace, store: store, keys: keys, generate: keytoken.New}
}

// Generate 產生在兩個 tier 都沒有紀錄的 token，最多嘗試 10 次
func (s *TokenService) Generate(ctx context.Context, tier core.KeyTier) (token string, returnedError error) {
	ctx, _, end := s.trace.WithSpan(ctx)
	defer func() { end(returnedError) }()

	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		candidate, err := s.generate(tier)
		if err != nil {
			return "", cErr.InternalServer("token generation failed")
		}
		taken, err := s.exists(ctx, candidate)
		if err != nil {
			return "", storageError(err, "token collision check failed")
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", cErr.InternalServer("could not generate a unique token")
}

func (s *TokenService) exists(ctx context.Context, token string) (bool, error) {
	for _, tier := range []core.KeyTier{core.TierFree, core.TierPaid} {
		_, err := s.store.Get(ctx, s.keys.Token(tier, token))
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, kv.ErrNotFound):
		default:
			return false, err
		}
	}
	return false, nil
}
