package fx

import (
	"lol-crawler/internal/api"
	"lol-crawler/internal/config"
	"lol-crawler/internal/database"
	"lol-crawler/internal/logger"
	"lol-crawler/internal/repository"
	"lol-crawler/internal/service"
	"lol-crawler/internal/walker"

	"go.uber.org/fx"
)

func ProvideRiotClient(cfg *config.Config) *api.RiotClient {
	return api.NewRiotClient(cfg)
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewPlayerRecordRepository),
	// api client
	fx.Provide(ProvideRiotClient),
	// svc
	fx.Provide(service.NewProfileService),
	fx.Provide(service.NewMatchHistoryService),
	fx.Provide(service.NewRecordBuilder),
	// walk controller
	fx.Provide(walker.New),
)
