//go:build wireinject
// +build wireinject

package main

import (
	"keyhub/config"
	"keyhub/internal/command"
	"keyhub/internal/cron"
	"keyhub/internal/database"
	"keyhub/internal/handler"
	"keyhub/internal/middleware"
	"keyhub/internal/router"
	"keyhub/internal/service"
	"keyhub/internal/telemetry"

	"github.com/google/wire"
	"go.uber.org/zap"
)

// wireApp init application.
func wireApp(*config.Configuration, *zap.Logger) (*App, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			service.ProviderSet,
			handler.ProviderSet,
			middleware.ProviderSet,
			router.ProviderSet,
			cron.ProviderSet,
			newHttpServer,
			telemetry.ProviderSet,
			newApp,
		),
	)
}

// wireCommand init maintenance commands.
func wireCommand(*config.Configuration, *zap.Logger) (*command.Command, func(), error) {
	panic(
		wire.Build(
			database.ProviderSet,
			service.ProviderSet,
			telemetry.ProviderSet,
			command.ProviderSet,
		),
	)
}
