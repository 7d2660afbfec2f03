package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

//go:embed config.schema.json
var configSchemaJSON string

//go:embed settings.schema.json
var settingsSchemaJSON string

// ScaleThreshold is the scale delta above which a transform is considered dirty.
const ScaleThreshold = 0.05

var (
	ErrInvalidAgentCount = errors.New("agent count must be a positive integer")
	ErrInvalidSpeed      = errors.New("speed multiplier must be positive")
	ErrInvalidAvoidance  = errors.New("avoidance strength must not be negative")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// Config holds the world parameters of one simulation instance.
// It is copied into the instance at creation and never patched afterwards:
// a change means building a new instance.
type Config struct {
	// Population
	AgentCount  int     `json:"agentCount" yaml:"agent_count" toml:"agent_count"`
	ClassARatio float64 `json:"classARatio" yaml:"class_a_ratio" toml:"class_a_ratio"`

	// Motion
	SpeedMultiplier float64 `json:"speedMultiplier" yaml:"speed_multiplier" toml:"speed_multiplier"`
	BaseMaxSpeed    float64 `json:"baseMaxSpeed" yaml:"base_max_speed" toml:"base_max_speed"`
	BaseMinSpeed    float64 `json:"baseMinSpeed" yaml:"base_min_speed" toml:"base_min_speed"`
	MaxForce        float64 `json:"maxForce" yaml:"max_force" toml:"max_force"`

	// Perception
	PerceptionRadius   float64 `json:"perceptionRadius" yaml:"perception_radius" toml:"perception_radius"`
	SeparationDistance float64 `json:"separationDistance" yaml:"separation_distance" toml:"separation_distance"`

	// World
	WorldSize   float64 `json:"worldSize" yaml:"world_size" toml:"world_size"`
	AspectRatio float64 `json:"aspectRatio" yaml:"aspect_ratio" toml:"aspect_ratio"`
	CameraZ     float64 `json:"cameraZ" yaml:"camera_z" toml:"camera_z"`

	// Flocking weights
	SeparationWeight float64 `json:"separationWeight" yaml:"separation_weight" toml:"separation_weight"`
	AlignmentWeight  float64 `json:"alignmentWeight" yaml:"alignment_weight" toml:"alignment_weight"`
	CohesionWeight   float64 `json:"cohesionWeight" yaml:"cohesion_weight" toml:"cohesion_weight"`

	// Waves
	WaveInfluence       float64 `json:"waveInfluence" yaml:"wave_influence" toml:"wave_influence"`
	WavePropagation     float64 `json:"wavePropagation" yaml:"wave_propagation" toml:"wave_propagation"`
	WaveDecay           float64 `json:"waveDecay" yaml:"wave_decay" toml:"wave_decay"`
	WaveVisibility      float64 `json:"waveVisibility" yaml:"wave_visibility" toml:"wave_visibility"`
	MaxWaveCenters      int     `json:"maxWaveCenters" yaml:"max_wave_centers" toml:"max_wave_centers"`
	WaveSpawnChance     float64 `json:"waveSpawnChance" yaml:"wave_spawn_chance" toml:"wave_spawn_chance"`
	WaveLifetime        int     `json:"waveLifetime" yaml:"wave_lifetime" toml:"wave_lifetime"`
	WaveUpdateInterval  int     `json:"waveUpdateInterval" yaml:"wave_update_interval" toml:"wave_update_interval"`
	WaveSeedChance      float64 `json:"waveSeedChance" yaml:"wave_seed_chance" toml:"wave_seed_chance"`
	MaxActiveWaves      int     `json:"maxActiveWaves" yaml:"max_active_waves" toml:"max_active_waves"`
	ActiveWaveThreshold float64 `json:"activeWaveThreshold" yaml:"active_wave_threshold" toml:"active_wave_threshold"`

	// Pointer avoidance
	PointerRadius     float64 `json:"pointerRadius" yaml:"pointer_radius" toml:"pointer_radius"`
	AvoidanceStrength float64 `json:"avoidanceStrength" yaml:"avoidance_strength" toml:"avoidance_strength"`

	// Spatial index
	GridCellSize float64 `json:"gridCellSize" yaml:"grid_cell_size" toml:"grid_cell_size"`

	// Change tracking
	UpdateThreshold      float64 `json:"updateThreshold" yaml:"update_threshold" toml:"update_threshold"`
	ColorUpdateThreshold float64 `json:"colorUpdateThreshold" yaml:"color_update_threshold" toml:"color_update_threshold"`
	FrameSkip            int     `json:"frameSkip" yaml:"frame_skip" toml:"frame_skip"`

	// Lifecycle
	WarmupTicks int    `json:"warmupTicks" yaml:"warmup_ticks" toml:"warmup_ticks"`
	Seed        uint64 `json:"seed" yaml:"seed" toml:"seed"`
}

// DefaultConfig returns the embedded defaults.
func DefaultConfig() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		panic(fmt.Sprintf("embedded defaults.yaml is broken: %v", err))
	}
	return &cfg
}

// MaxSpeed is the speed ceiling after applying the speed multiplier.
func (c Config) MaxSpeed() float64 { return c.BaseMaxSpeed * c.SpeedMultiplier }

// MinSpeed is the speed floor after applying the speed multiplier.
func (c Config) MinSpeed() float64 { return c.BaseMinSpeed * c.SpeedMultiplier }

// ClassCounts splits AgentCount between the two visual classes.
func (c Config) ClassCounts() (a, b int) {
	a = int(float64(c.AgentCount) * c.ClassARatio)
	return a, c.AgentCount - a
}

// Validate performs the range checks that the JSON schema cannot express.
func (c Config) Validate() error {
	if err := c.Settings().Validate(); err != nil {
		return err
	}
	checks := []struct {
		ok   bool
		name string
	}{
		{c.ClassARatio >= 0 && c.ClassARatio <= 1, "classARatio"},
		{c.BaseMaxSpeed > 0, "baseMaxSpeed"},
		{c.BaseMinSpeed > 0 && c.BaseMinSpeed <= c.BaseMaxSpeed, "baseMinSpeed"},
		{c.MaxForce > 0, "maxForce"},
		{c.PerceptionRadius > 0, "perceptionRadius"},
		{c.SeparationDistance > 0, "separationDistance"},
		{c.WorldSize > 0, "worldSize"},
		{c.AspectRatio > 0, "aspectRatio"},
		{c.CameraZ > c.WorldSize/2, "cameraZ"},
		{c.WaveDecay >= 0 && c.WaveDecay < 1, "waveDecay"},
		{c.WavePropagation >= 0 && c.WavePropagation <= 1, "wavePropagation"},
		{c.MaxWaveCenters >= 0, "maxWaveCenters"},
		{c.WaveLifetime > 0, "waveLifetime"},
		{c.WaveUpdateInterval > 0, "waveUpdateInterval"},
		{c.GridCellSize > 0, "gridCellSize"},
		{c.FrameSkip > 0, "frameSkip"},
		{c.WarmupTicks >= 0, "warmupTicks"},
	}
	for _, check := range checks {
		if !check.ok {
			return fmt.Errorf("%w: %s out of range", ErrInvalidConfig, check.name)
		}
	}
	return nil
}

// Settings is the input contract of the UI collaborator.
// Applying it always builds a new simulation instance.
type Settings struct {
	AgentCount        int     `json:"agentCount"`
	SpeedMultiplier   float64 `json:"speedMultiplier"`
	AvoidanceStrength float64 `json:"avoidanceStrength"`
}

// Validate rejects out of range settings.
func (s Settings) Validate() error {
	if s.AgentCount <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidAgentCount, s.AgentCount)
	}
	if s.SpeedMultiplier <= 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidSpeed, s.SpeedMultiplier)
	}
	if s.AvoidanceStrength < 0 {
		return fmt.Errorf("%w: got %g", ErrInvalidAvoidance, s.AvoidanceStrength)
	}
	return nil
}

// Settings extracts the user facing settings of the config.
func (c Config) Settings() Settings {
	return Settings{
		AgentCount:        c.AgentCount,
		SpeedMultiplier:   c.SpeedMultiplier,
		AvoidanceStrength: c.AvoidanceStrength,
	}
}

// WithSettings returns a copy of the config with the settings applied.
func (c Config) WithSettings(s Settings) Config {
	c.AgentCount = s.AgentCount
	c.SpeedMultiplier = s.SpeedMultiplier
	c.AvoidanceStrength = s.AvoidanceStrength
	return c
}

var (
	configSchema   = sync.OnceValues(func() (*jsonschema.Schema, error) { return jsonschema.CompileString("config.schema.json", configSchemaJSON) })
	settingsSchema = sync.OnceValues(func() (*jsonschema.Schema, error) { return jsonschema.CompileString("settings.schema.json", settingsSchemaJSON) })
)

// validateAgainst runs v through a JSON round trip so the schema sees plain JSON values.
func validateAgainst(compiled func() (*jsonschema.Schema, error), v any) error {
	sch, err := compiled()
	if err != nil {
		return fmt.Errorf("failed to compile schema: %w", err)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode for validation: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("failed to decode for validation: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SettingsFromMap validates a generic document (e.g. decoded from an actor
// message) against the settings schema and converts it.
func SettingsFromMap(m map[string]any) (Settings, error) {
	var s Settings
	if err := validateAgainst(settingsSchema, m); err != nil {
		return s, err
	}
	b, err := json.Marshal(m)
	if err != nil {
		return s, fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := json.Unmarshal(b, &s); err != nil {
		return s, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return s, s.Validate()
}

// LoadConfig overlays a JSON, YAML or TOML file on the defaults and validates
// the result against the embedded schema.
func LoadConfig(configFile string) (*Config, error) {
	// 1. Start from defaults so partial files are valid
	cfg := DefaultConfig()

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// 3. Decode according to the extension, rejecting unknown keys
	switch ext := strings.ToLower(filepath.Ext(configFile)); ext {
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config json: %w", err)
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
	case ".toml":
		md, err := toml.Decode(string(b), cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to decode config toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown toml keys %v", ErrInvalidConfig, undecoded)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
	}

	// 4. Validate
	if err := validateAgainst(configSchema, cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
