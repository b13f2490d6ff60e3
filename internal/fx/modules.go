package fx

import (
	"classic-armory/internal/api"
	"classic-armory/internal/config"
	"classic-armory/internal/database"
	"classic-armory/internal/itemdata"
	"classic-armory/internal/logger"
	"classic-armory/internal/repository"
	"classic-armory/internal/schema"
	"classic-armory/internal/server"
	"classic-armory/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(config.Load),
	fx.Provide(logger.New),
	fx.Provide(database.New),
	fx.Provide(schema.NewValidator),
	fx.Provide(itemdata.NewResolver),
	// api clients
	fx.Provide(fx.Annotate(api.NewBlizzardClient, fx.As(new(service.ProfileAPI)))),
	fx.Provide(fx.Annotate(api.NewWarcraftLogsClient, fx.As(new(service.RankingAPI)))),
	// repos
	fx.Provide(fx.Annotate(repository.NewCharacterRepository, fx.As(new(service.CharacterStore)))),
	fx.Provide(fx.Annotate(repository.NewGuildRepository, fx.As(new(service.GuildStore)))),
	// svc
	fx.Provide(service.NewProfileService),
	fx.Provide(service.NewGuildService),
	fx.Provide(service.NewParseService),
	// server
	fx.Provide(server.NewArmoryServer),
)
