//go:build wireinject
// +build wireinject

package service

import (
	"github.com/google/wire"

	"github.com/livekit/protocol/logger"

	"github.com/livekit/meshroom/pkg/config"
	"github.com/livekit/meshroom/pkg/rooms"
)

var ServiceSet = wire.NewSet(
	createRegistry,
	NewTURNAuthHandler,
	getTURNAuthHandlerFunc,
	NewTurnServer,
	NewICEServerProvider,
	NewSignalRelay,
	NewSignalService,
	NewMeshServer,
)

func InitializeServer(conf *config.Config, nodeID NodeID) (*MeshServer, error) {
	wire.Build(
		ServiceSet,
	)
	return &MeshServer{}, nil
}

func createRegistry(conf *config.Config) *rooms.Registry {
	return rooms.NewRegistry(rooms.RegistryParams{
		MaxParticipants: conf.Room.MaxParticipants,
		Logger:          logger.GetLogger().WithValues("component", "registry"),
	})
}
