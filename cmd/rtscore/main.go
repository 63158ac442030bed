package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/rtscore/internal/config"
	"github.com/zeusync/rtscore/internal/core/input"
	"github.com/zeusync/rtscore/internal/core/observability/log"
	"github.com/zeusync/rtscore/internal/core/system"
	"github.com/zeusync/rtscore/internal/injector"
	"github.com/zeusync/rtscore/internal/presentation/feed"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "rtscore:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	app, err := injector.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	logger := app.Logger
	if l, ok := logger.(*log.Logger); ok {
		defer func() { _ = l.Sync() }()
	}

	world := app.World
	world.Activate()
	for _, def := range cfg.Units {
		if _, err = world.Spawn(def); err != nil {
			return errors.Join(err, world.Deactivate())
		}
	}
	samples, err := input.Compile(cfg.Script, world.Scene())
	if err != nil {
		return errors.Join(fmt.Errorf("compile script: %w", err), world.Deactivate())
	}
	logger.Info("script compiled", log.Int("steps", len(cfg.Script)), log.Int("ticks", len(samples)))

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Feed.Enabled {
		app.Hub.Activate()
		defer app.Hub.Deactivate()
		srv := feed.NewServer(cfg.Feed.Addr, app.Hub, logger)
		g.Go(func() error { return srv.Run(gctx) })
	}
	g.Go(func() error {
		// with a feed attached the world keeps ticking until a signal
		if !cfg.Feed.Enabled {
			defer cancel()
		}
		return simulate(gctx, world, samples, cfg.Tick, cfg.Feed.Enabled, logger)
	})

	err = g.Wait()
	summarize(world, logger)
	return errors.Join(err, world.Deactivate())
}

func simulate(
	ctx context.Context,
	world *system.World,
	samples []input.PointerSample,
	tick config.TickConfig,
	hold bool,
	logger log.Log,
) error {
	dt := time.Second / time.Duration(tick.Rate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	var cursor mgl64.Vec2
	total := len(samples) + tick.Settle
	for i := 0; hold || i < total; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		sample := input.Idle(cursor)
		if i < len(samples) {
			sample = samples[i]
			cursor = sample.Position
		}
		before := world.Frame()
		after := world.Tick(sample, dt)
		report(logger, before, after)
	}
	logger.Info("script finished", log.Uint64("frames", world.Frame().Number))
	return nil
}

func report(logger log.Log, before, after system.Frame) {
	if after.Digest != before.Digest {
		ids := make([]string, len(after.Selected))
		for i, id := range after.Selected {
			ids[i] = id.Short()
		}
		logger.Info("selection changed",
			log.Uint64("frame", after.Number),
			log.Int("count", len(after.Selected)),
			log.Any("units", ids),
		)
	}
	if after.Orders != before.Orders {
		logger.Info("orders issued",
			log.Uint64("frame", after.Number),
			log.Uint64("orders", after.Orders-before.Orders),
		)
	}
}

func summarize(world *system.World, logger log.Log) {
	f := world.Frame()
	logger.Info("world summary",
		log.Uint64("frames", f.Number),
		log.Duration("elapsed", f.Elapsed),
		log.Int("alive", f.Alive),
		log.Int("selected", len(f.Selected)),
		log.Uint64("orders", f.Orders),
	)
	for _, u := range world.Units() {
		body, ok := world.Scene().Body(u.ID())
		if !ok {
			continue
		}
		logger.Info("unit",
			log.String("name", u.Name()),
			log.Bool("selected", u.Selected()),
			log.Any("position", body.Position()),
			log.Bool("moving", body.Moving()),
		)
	}
}
