package service

import (
	mongoRepo "keyhub/internal/database/mongodb/repository"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewKeyLocker,
	NewConfigProvider,
	NewTokenService,
	NewKeyService,
	NewValidationService,
	NewExecutionService,
	NewStatsService,
	NewOwnerService,
	wire.Bind(new(PurgeAuditStore), new(*mongoRepo.PurgeAuditRepository)),
	NewGiveawayService,
	wire.Bind(new(GiveawayStore), new(*mongoRepo.GiveawayRepository)),
	NewHealthService,
)
