package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine"
	"github.com/Carmen-Shannon/oxy-swarm/engine/assets"
	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/command"
	"github.com/Carmen-Shannon/oxy-swarm/engine/config"
	"github.com/Carmen-Shannon/oxy-swarm/engine/deferred"
	"github.com/Carmen-Shannon/oxy-swarm/engine/light"
	"github.com/Carmen-Shannon/oxy-swarm/engine/logger"
	"github.com/Carmen-Shannon/oxy-swarm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/soft_backend"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/wgpu_backend"
	"github.com/Carmen-Shannon/oxy-swarm/engine/scene"
	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
	"github.com/Carmen-Shannon/oxy-swarm/engine/window"
)

// pipelineTimeout bounds how long a headless run waits for its pipelines before the first frame.
const pipelineTimeout = 30 * time.Second

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file (defaults are used when empty)")
		headless   = flag.Bool("headless", false, "run on the software backend without a window")
		frames     = flag.Int("frames", 0, "headless frame count (overrides simulation.headless_frames)")
	)
	flag.Parse()

	cfg := config.Default()
	baseDir := "."
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
		baseDir = filepath.Dir(*configPath)
	}
	if *headless {
		cfg.Renderer.Backend = config.BackendSoftware
	}
	if *frames > 0 {
		cfg.Simulation.HeadlessFrames = *frames
	}

	logger.SetLogger(logger.NewTextLogger(logger.ParseLevel(cfg.Engine.LogLevel)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, baseDir); err != nil {
		logger.Logger().Error("oxy-swarm stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, baseDir string) error {
	prof := profiler.NewProfiler()

	var sprites units.SpriteSource
	set, err := loadSprites(cfg.Assets, baseDir)
	if err != nil {
		return err
	}
	if set != nil {
		defer set.Release()
		sprites = set
	}

	switch cfg.Renderer.Backend {
	case config.BackendSoftware:
		return runHeadless(ctx, cfg, prof, sprites)
	default:
		return runWindowed(ctx, cfg, prof, sprites)
	}
}

// runWindowed opens the window, creates the WebGPU backend on its surface and blocks in the
// window message loop. Pipelines compile in the background; stages skip until they are ready.
func runWindowed(ctx context.Context, cfg config.Config, prof *profiler.Profiler, sprites units.SpriteSource) error {
	win, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
	)
	if err != nil {
		return err
	}

	presentMode := gpu.PresentModeVSync
	if cfg.Renderer.PresentMode == config.PresentUncapped {
		presentMode = gpu.PresentModeUncapped
	}
	backend, err := wgpu_backend.NewBackend(win.SurfaceDescriptor(),
		wgpu_backend.WithPresentMode(presentMode),
		wgpu_backend.WithForceFallbackAdapter(cfg.Renderer.ForceFallbackAdapter),
		wgpu_backend.WithSurfaceSize(win.Width(), win.Height()),
	)
	if err != nil {
		_ = win.Close()
		return fmt.Errorf("create wgpu backend: %w", err)
	}

	r := renderer.NewRenderer(backend,
		renderer.WithPipelineWorkers(cfg.Renderer.PipelineWorkers),
		renderer.WithProfiler(prof),
	)
	defer r.Release()

	opts := sceneOptions(cfg, sprites)
	opts = append(opts, scene.WithViewSize(uint32(win.Width()), uint32(win.Height())))
	s, err := scene.NewScene(r, opts...)
	if err != nil {
		_ = win.Close()
		return err
	}
	defer s.Release()

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithScene(0, s),
		engine.WithTickRate(float64(cfg.Engine.TickRate)),
		engine.WithRenderFrameLimit(float64(cfg.Engine.FrameLimit)),
		engine.WithProfiler(prof),
		engine.WithProfiling(cfg.Engine.Profiling),
	)
	go func() {
		<-ctx.Done()
		eng.Quit()
	}()

	logger.Logger().Info("running", "backend", config.BackendWGPU, "width", win.Width(), "height", win.Height())
	return eng.Run()
}

// runHeadless renders the configured number of frames on the software backend at the tick rate's
// fixed delta time and logs where the simulation ended up.
func runHeadless(ctx context.Context, cfg config.Config, prof *profiler.Profiler, sprites units.SpriteSource) error {
	backend := soft_backend.NewBackend(soft_backend.WithSurface(cfg.Window.Width, cfg.Window.Height))
	r := renderer.NewRenderer(backend,
		renderer.WithPipelineWorkers(cfg.Renderer.PipelineWorkers),
		renderer.WithProfiler(prof),
	)
	defer r.Release()

	opts := sceneOptions(cfg, sprites)
	opts = append(opts, scene.WithViewSize(uint32(cfg.Window.Width), uint32(cfg.Window.Height)))
	scene.RegisterKernels(backend.SoftDevice(), opts...)
	s, err := scene.NewScene(r, opts...)
	if err != nil {
		return err
	}
	defer s.Release()

	awaitCtx, cancel := context.WithTimeout(ctx, pipelineTimeout)
	defer cancel()
	if err := r.Pipelines().Await(awaitCtx, s.PipelineIDs()...); err != nil {
		return fmt.Errorf("await pipelines: %w", err)
	}

	eng := engine.NewEngine(
		engine.WithScene(0, s),
		engine.WithProfiler(prof),
		engine.WithProfiling(cfg.Engine.Profiling),
	)
	dt := float32(1) / float32(max(cfg.Engine.TickRate, 1))
	start := time.Now()
	for i := 0; i < cfg.Simulation.HeadlessFrames; i++ {
		if err := ctx.Err(); err != nil {
			logger.Logger().Info("headless run interrupted", "frames", i)
			return nil
		}
		if err := eng.RunFrames(1, dt); err != nil {
			return err
		}
	}

	logger.Logger().Info("headless run complete",
		"frames", cfg.Simulation.HeadlessFrames,
		"steps", s.View().Step(),
		"presents", backend.SoftSurface().Presents(),
		"elapsed", time.Since(start),
	)
	return nil
}

func sceneOptions(cfg config.Config, sprites units.SpriteSource) []scene.SceneBuilderOption {
	c := cfg.Camera
	cam := camera.NewCamera(camera.WithController(camera.NewCameraController(
		camera.WithPosition(common.Vec3(c.Position)),
		camera.WithSpeeds(c.WalkSpeed, c.RunSpeed),
		camera.WithFriction(c.Friction),
		camera.WithZoomBounds(c.ZoomMin, c.ZoomMax),
		camera.WithScrollSpeed(c.ScrollSpeed),
		camera.WithScale(c.Zoom),
	)))

	l := cfg.Lighting
	sun := light.NewLight(
		light.WithDirection(l.Direction[0], l.Direction[1], l.Direction[2]),
		light.WithColor(l.Color[0], l.Color[1], l.Color[2]),
		light.WithIntensity(l.Intensity),
		light.WithAmbient(l.Ambient),
	)

	script := make([]units.Command, 0, len(cfg.Scenario.Spawns))
	for _, sp := range cfg.Scenario.Spawns {
		script = append(script, command.SpawnOrder(sp.Group, sp.Center, sp.Radius))
	}

	opts := []scene.SceneBuilderOption{
		scene.WithCamera(cam),
		scene.WithIngestor(command.NewIngestor(
			command.WithSpawnRadius(cfg.Simulation.SpawnRadius),
			command.WithScript(script...),
		)),
		scene.WithLargeGrid(cfg.Simulation.LargeGrid()),
		scene.WithShaderValidation(cfg.Renderer.ShaderValidation),
		scene.WithDeferredOptions(deferred.WithLight(sun)),
	}
	if sprites != nil {
		opts = append(opts, scene.WithSprites(sprites))
	}
	return opts
}

// spriteSet is the sprite sheet together with the asset server feeding it.
type spriteSet struct {
	*assets.SpriteSheet
	server assets.Server
}

func (s *spriteSet) Release() {
	s.SpriteSheet.Release()
	s.server.Release()
}

// loadSprites starts loading the configured unit sprite sheet. Paths are relative to the config
// file. Without configured sprites units draw with the white placeholder sheet.
func loadSprites(cfg config.Assets, baseDir string) (*spriteSet, error) {
	if len(cfg.UnitSprites) == 0 {
		return nil, nil
	}
	server := assets.NewServer(
		assets.WithFS(os.DirFS(baseDir)),
		assets.WithSize(cfg.SpriteSize),
		assets.WithWorkers(cfg.Workers),
	)
	sheet, err := assets.NewSpriteSheet(server, cfg.UnitSprites...)
	if err != nil {
		server.Release()
		return nil, fmt.Errorf("unit sprites: %w", err)
	}
	return &spriteSet{SpriteSheet: sheet, server: server}, nil
}

var _ units.SpriteSource = (*spriteSet)(nil)
