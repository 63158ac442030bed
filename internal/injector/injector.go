//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/rtscore/internal/config"
	"github.com/zeusync/rtscore/internal/core/system"
)

func InitializeApp(cfg *config.Config) (*App, error) {
	wire.Build(AppSet)
	return nil, nil
}

func InitializeWorld(cfg *config.Config) (*system.World, error) {
	wire.Build(CoreSet)
	return nil, nil
}
