//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"

	adapterrepo "github.com/GrandZah/Learning-Matan/internal/adapter/repository"
	"github.com/GrandZah/Learning-Matan/internal/adapter/rest"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/config"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/database"
	"github.com/GrandZah/Learning-Matan/internal/infrastructure/server"
	"github.com/GrandZah/Learning-Matan/internal/usecase"
)

var configSet = wire.NewSet(
	config.Load,
)

var databaseSet = wire.NewSet(
	database.NewConn,
)

var repositorySet = wire.NewSet(
	adapterrepo.NewCardRepository,
	adapterrepo.NewUserRepository,
	adapterrepo.NewCardProgressRepository,
)

var usecaseSet = wire.NewSet(
	usecase.NewLadder,
	usecase.NewSchedulerUsecase,
	usecase.NewSessionUsecase,
)

var serverSet = wire.NewSet(
	rest.NewHandler,
	server.NewLogger,
	server.NewServer,
)

// Initialize builds the application container using Wire.
func Initialize() (*Container, func(), error) {
	wire.Build(
		configSet,
		databaseSet,
		repositorySet,
		usecaseSet,
		serverSet,
		wire.Struct(new(Container), "Logger", "Server"),
	)
	return nil, nil, nil
}
