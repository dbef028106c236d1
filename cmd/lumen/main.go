package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/lumen2d/lumen/internal/audio"
	"github.com/lumen2d/lumen/internal/component"
	"github.com/lumen2d/lumen/internal/config"
	"github.com/lumen2d/lumen/internal/data"
	"github.com/lumen2d/lumen/internal/game"
	"github.com/lumen2d/lumen/internal/input"
	"github.com/lumen2d/lumen/internal/render"
	"github.com/lumen2d/lumen/internal/scripting"
	"github.com/lumen2d/lumen/internal/vmath"
	"github.com/lumen2d/lumen/internal/world"
	"github.com/pkg/profile"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgFlag := flag.String("config", "", "path to engine.toml (default $LUMEN_CONFIG or config/engine.toml)")
	profFlag := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	flag.Parse()

	// 1. Load config
	cfgPath := "config/engine.toml"
	if p := os.Getenv("LUMEN_CONFIG"); p != "" {
		cfgPath = p
	}
	if *cfgFlag != "" {
		cfgPath = *cfgFlag
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	switch *profFlag {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	default:
		return fmt.Errorf("unknown profile mode %q", *profFlag)
	}

	// 2. Init logger. The terminal backend owns stdout, so console logs go
	// to stderr.
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Resources
	res := cfg.Game.ResourcesDir
	catalog := data.NewCatalog(res, component.RigidbodyType)
	if !catalog.SceneExists(cfg.Game.InitialScene) {
		return fmt.Errorf("initial scene %q not found under %s", cfg.Game.InitialScene, res)
	}
	glyphs, err := data.LoadGlyphTable(filepath.Join(res, "glyphs.yaml"))
	if err != nil {
		return fmt.Errorf("load glyphs: %w", err)
	}

	// 4. Engine state and services
	opts := world.Options{
		Gravity:            vmath.V(cfg.Physics.GravityX, cfg.Physics.GravityY),
		TimeStep:           cfg.Physics.TimeStep,
		VelocityIterations: cfg.Physics.VelocityIterations,
		PositionIterations: cfg.Physics.PositionIterations,
		RefreshHookCaches:  cfg.Engine.RefreshHookCaches,
	}
	ws := world.NewState(catalog, opts, log)
	queues := render.NewQueues()
	camera := render.NewCamera()
	in := input.New()

	am := audio.New(filepath.Join(res, "audio"), cfg.Audio.Enabled, cfg.Audio.SampleRate, log)
	am.SetChannels(cfg.Audio.Channels)
	if err := am.Init(); err != nil {
		log.Warn("audio disabled", zap.Error(err))
	}
	defer am.Close()

	engine := scripting.NewEngine(scripting.Deps{
		World:  ws,
		Render: queues,
		Camera: camera,
		Input:  in,
		Audio:  am,
		Log:    log,
	})
	defer engine.Close()

	// 5. Presenter
	var presenter render.Presenter
	var events <-chan tcell.Event
	switch cfg.Render.Backend {
	case "headless":
		presenter = &render.HeadlessPresenter{}
	case "terminal":
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("create screen: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("init screen: %w", err)
		}
		defer screen.Fini()
		screen.EnableMouse()
		screen.SetTitle(cfg.Game.Title)
		presenter = render.NewTerminalPresenter(screen, glyphs, cfg.Render.Width, cfg.Render.Height)
		done := make(chan struct{})
		defer close(done)
		events = pollEvents(screen, done)
	default:
		return fmt.Errorf("unknown render backend %q", cfg.Render.Backend)
	}

	// 6. Initial scene
	if err := ws.LoadScene(cfg.Game.InitialScene); err != nil {
		return fmt.Errorf("load scene: %w", err)
	}
	log.Info("engine ready",
		zap.String("title", cfg.Game.Title),
		zap.String("scene", cfg.Game.InitialScene),
		zap.String("backend", cfg.Render.Backend),
		zap.Int("component_types", engine.TypeCount()),
		zap.Int("templates", catalog.TemplateCount()),
		zap.Int("glyphs", glyphs.Count()),
	)

	// 7. Game loop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g := game.New(game.Deps{
		State:     ws,
		Input:     in,
		Queues:    queues,
		Camera:    camera,
		Presenter: presenter,
		Audio:     am,
		Events:    events,
		Log:       log,
	}, cfg.Render.FrameInterval(), cfg.Engine.MaxFrames)
	return g.Run(ctx)
}

// pollEvents forwards screen events to a channel the game drains once per
// frame. The pump stops when the screen is finalized or done is closed.
func pollEvents(screen tcell.Screen, done <-chan struct{}) <-chan tcell.Event {
	ch := make(chan tcell.Event, 64)
	go func() {
		defer close(ch)
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				screen.Sync()
				continue
			}
			select {
			case ch <- ev:
			case <-done:
				return
			}
		}
	}()
	return ch
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}
