package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/rtscore/internal/config"
	"github.com/zeusync/rtscore/internal/core/command"
	"github.com/zeusync/rtscore/internal/core/events/bus"
	"github.com/zeusync/rtscore/internal/core/observability/log"
	"github.com/zeusync/rtscore/internal/core/registry"
	"github.com/zeusync/rtscore/internal/core/scene"
	"github.com/zeusync/rtscore/internal/core/selection"
	"github.com/zeusync/rtscore/internal/core/system"
	"github.com/zeusync/rtscore/internal/presentation/feed"
)

// App is everything the demo binary drives.
type App struct {
	Config *config.Config
	Logger log.Log
	World  *system.World
	Hub    *feed.Hub
}

var CoreSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideScene,
	ProvideRouter,
	ProvideRegistry,
	ProvideSelection,
	system.NewWorld,
)

var AppSet = wire.NewSet(
	CoreSet,
	ProvideHub,
	wire.Struct(new(App), "*"),
)

func ProvideLogger(cfg *config.Config) log.Log {
	return log.New(cfg.Level())
}

func ProvideBus(logger log.Log) *bus.Bus {
	b := bus.New(logger)
	b.AddObserver(bus.NewLogObserver(logger))
	return b
}

func ProvideScene(cfg *config.Config, logger log.Log) *scene.Scene {
	return scene.New(cfg.Scene.Camera.Camera(),
		scene.WithGroundHeight(cfg.Scene.GroundHeight),
		scene.WithLogger(logger),
	)
}

func ProvideRouter(logger log.Log) *command.Router {
	return command.NewRouter(command.WithLogger(logger))
}

func ProvideRegistry(b *bus.Bus, logger log.Log) *registry.Registry {
	return registry.New(b, registry.WithLogger(logger))
}

func ProvideSelection(cfg *config.Config, b *bus.Bus, sc *scene.Scene, router *command.Router, logger log.Log) *selection.Manager {
	return selection.NewManager(b, sc, sc, sc, router,
		selection.WithDragThreshold(cfg.Selection.DragThreshold),
		selection.WithLogger(logger),
	)
}

func ProvideHub(cfg *config.Config, b *bus.Bus, logger log.Log) *feed.Hub {
	return feed.NewHub(b, feed.WithBuffer(cfg.Feed.Buffer), feed.WithLogger(logger))
}
