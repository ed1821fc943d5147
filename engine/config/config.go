// Package config loads the YAML configuration of the demo. Documents are validated against an
// embedded JSON schema before decoding, so unknown keys and out of range values fail loudly.
package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/units"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed assets/config.schema.json
var schemaSource string

const schemaURL = "oxy-swarm://config.schema.json"

type Config struct {
	Window     Window     `yaml:"window"`
	Engine     Engine     `yaml:"engine"`
	Renderer   Renderer   `yaml:"renderer"`
	Simulation Simulation `yaml:"simulation"`
	Camera     Camera     `yaml:"camera"`
	Lighting   Lighting   `yaml:"lighting"`
	Assets     Assets     `yaml:"assets"`
	Scenario   Scenario   `yaml:"scenario"`
}

type Window struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

type Engine struct {
	TickRate   int    `yaml:"tick_rate"`
	FrameLimit int    `yaml:"frame_limit"`
	Profiling  bool   `yaml:"profiling"`
	LogLevel   string `yaml:"log_level"`
}

type Renderer struct {
	Backend              string `yaml:"backend"`
	PresentMode          string `yaml:"present_mode"`
	ForceFallbackAdapter bool   `yaml:"force_fallback_adapter"`
	PipelineWorkers      int    `yaml:"pipeline_workers"`
	ShaderValidation     bool   `yaml:"shader_validation"`
}

type Simulation struct {
	LargeUnits     LargeUnits `yaml:"large_units"`
	HeadlessFrames int        `yaml:"headless_frames"`
	SpawnRadius    uint32     `yaml:"spawn_radius"`
}

type LargeUnits struct {
	Width  uint32 `yaml:"width"`
	Height uint32 `yaml:"height"`
}

// LargeGrid returns the configured large unit grid.
func (s Simulation) LargeGrid() units.LargeGrid {
	return units.LargeGrid{Width: s.LargeUnits.Width, Height: s.LargeUnits.Height}
}

type Camera struct {
	Position    [3]float32 `yaml:"position"`
	WalkSpeed   float32    `yaml:"walk_speed"`
	RunSpeed    float32    `yaml:"run_speed"`
	Friction    float32    `yaml:"friction"`
	ZoomMin     float32    `yaml:"zoom_min"`
	ZoomMax     float32    `yaml:"zoom_max"`
	ScrollSpeed float32    `yaml:"scroll_speed"`
	Zoom        float32    `yaml:"zoom"`
}

// Lighting is the sun of the deferred lighting resolve. Direction is the way the light travels.
type Lighting struct {
	Direction [3]float32 `yaml:"direction"`
	Color     [3]float32 `yaml:"color"`
	Intensity float32    `yaml:"intensity"`
	Ambient   float32    `yaml:"ambient"`
}

type Assets struct {
	// UnitSprites are the sprite sheet layers: team 0 idle, team 0 attacking, team 1 idle, team 1 attacking.
	UnitSprites []string `yaml:"unit_sprites"`
	SpriteSize  uint32   `yaml:"sprite_size"`
	Workers     int      `yaml:"workers"`
}

type Scenario struct {
	Spawns []Spawn `yaml:"spawns"`
}

// Spawn is a scripted spawn order: a square of half edge Radius around Center, in world units.
type Spawn struct {
	Group  uint32    `yaml:"group"`
	Center [2]uint32 `yaml:"center"`
	Radius uint32    `yaml:"radius"`
}

const (
	BackendWGPU     = "wgpu"
	BackendSoftware = "software"

	PresentVSync    = "vsync"
	PresentUncapped = "uncapped"
)

// Default returns the configuration used for every key a document leaves out.
func Default() Config {
	return Config{
		Window: Window{Title: "oxy-swarm", Width: 1280, Height: 720},
		Engine: Engine{TickRate: 60, LogLevel: "info"},
		Renderer: Renderer{
			Backend:          BackendWGPU,
			PresentMode:      PresentVSync,
			PipelineWorkers:  2,
			ShaderValidation: true,
		},
		Simulation: Simulation{
			LargeUnits:     LargeUnits{Width: 67, Height: 2},
			HeadlessFrames: 300,
			SpawnRadius:    10,
		},
		Camera: Camera{
			Position:    [3]float32{-94, 495, -94},
			WalkSpeed:   1000,
			RunSpeed:    2000,
			Friction:    0.5,
			ZoomMin:     0.001,
			ZoomMax:     0.5,
			ScrollSpeed: 0.12,
			Zoom:        0.03,
		},
		Lighting: Lighting{
			Direction: [3]float32{-1, -2, -1.5},
			Color:     [3]float32{1, 1, 1},
			Intensity: 1,
			Ambient:   0.35,
		},
		Assets: Assets{SpriteSize: 64, Workers: 2},
	}
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, strings.NewReader(schemaSource)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Load reads and parses the configuration file at path.
//
// Parameters:
//   - path: the YAML file
//
// Returns:
//   - Config: the defaults overridden by the file
//   - error: a read, schema or decode error
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg, err := Parse(raw)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates a YAML document against the schema and decodes it over Default.
//
// Parameters:
//   - raw: the YAML document, may be empty
//
// Returns:
//   - Config: the decoded configuration
//   - error: a syntax, schema or consistency error
func Parse(raw []byte) (Config, error) {
	cfg := Default()

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if doc == nil {
		return cfg, nil
	}

	// The schema validator takes JSON values.
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	var value any
	if err := json.Unmarshal(asJSON, &value); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	s, err := compiledSchema()
	if err != nil {
		return cfg, fmt.Errorf("config schema: %w", err)
	}
	if err := s.Validate(value); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the constraints the schema cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.Camera.ZoomMin > c.Camera.ZoomMax {
		errs = append(errs, fmt.Errorf("camera: zoom_min %g above zoom_max %g", c.Camera.ZoomMin, c.Camera.ZoomMax))
	}
	if c.Camera.WalkSpeed > c.Camera.RunSpeed {
		errs = append(errs, fmt.Errorf("camera: walk_speed %g above run_speed %g", c.Camera.WalkSpeed, c.Camera.RunSpeed))
	}
	if c.Lighting.Direction == [3]float32{} {
		errs = append(errs, errors.New("lighting: direction must not be zero"))
	}
	if n := len(c.Assets.UnitSprites); n != 0 && n != 4 {
		errs = append(errs, fmt.Errorf("assets: unit_sprites needs 4 layers, got %d", n))
	}
	if err := c.Simulation.LargeGrid().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("simulation: %w", err))
	}
	return errors.Join(errs...)
}
