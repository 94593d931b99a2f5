package fx

import (
	"rift-rewind/internal/api"
	"rift-rewind/internal/config"
	"rift-rewind/internal/database"
	"rift-rewind/internal/logger"
	"rift-rewind/internal/normalize"
	"rift-rewind/internal/repository"
	"rift-rewind/internal/server"
	"rift-rewind/internal/service"
	"rift-rewind/internal/state"

	"go.uber.org/fx"
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewLookupRepository),
	fx.Provide(repository.NewPayloadCacheRepository),
	fx.Provide(
		func(r *repository.LookupRepository) service.LookupStore { return r },
		func(r *repository.PayloadCacheRepository) api.Cache { return r },
	),
	// api client
	fx.Provide(api.NewRewindClient),
	fx.Provide(func(c *api.RewindClient) service.Upstream { return c }),
	// state
	fx.Provide(state.NewSessions),
	fx.Provide(normalize.New),
	// svc
	fx.Provide(service.NewProfileService),
	fx.Provide(service.NewDuoService),
	fx.Provide(service.NewRadarService),
	// server
	fx.Provide(server.NewRewindServer),
	fx.Provide(server.NewChartHandler),
)
