package database

import (
	client "keyhub/internal/database/client"
	fluentdRepo "keyhub/internal/database/fluentd/repository"
	"keyhub/internal/database/kv"
	mongoRepo "keyhub/internal/database/mongodb/repository"
	redisRepo "keyhub/internal/database/redis/repository"

	"github.com/google/wire"
)

// ProviderSet 定義所有 DB Client 的依賴
var ProviderSet = wire.NewSet(
	client.NewMongoClient,
	client.NewRedisClient,
	client.NewFluentdClient,
	kv.NewKeysFromConfig,
	mongoRepo.ProviderSet,
	redisRepo.ProviderSet,
	fluentdRepo.ProviderSet,
)
