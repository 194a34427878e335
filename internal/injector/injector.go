//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/bending/internal/core/config"
	"github.com/zeusync/bending/internal/core/world"
)

func InitializeApp(cfg config.Config, adapter world.Adapter) (*App, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
