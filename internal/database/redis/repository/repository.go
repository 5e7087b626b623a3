package repository

import (
	"keyhub/internal/database/kv"

	"github.com/google/wire"
)

// Wire 依賴提供
var ProviderSet = wire.NewSet(
	NewKVStoreRepository,
	wire.Bind(new(kv.Store), new(*KVStoreRepository)),
	NewRateLimiterRepository,
)
