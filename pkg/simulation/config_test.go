package simulation

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Defaults do not validate: %v", err)
	}
	if err := validateAgainst(configSchema, cfg); err != nil {
		t.Fatalf("Defaults do not match the schema: %v", err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"AgentCount", float64(cfg.AgentCount), 1000},
		{"MaxSpeed", cfg.MaxSpeed(), 1.155},
		{"MinSpeed", cfg.MinSpeed(), 0.616},
		{"PerceptionRadius", cfg.PerceptionRadius, 25},
		{"WaveDecay", cfg.WaveDecay, 0.98},
		{"MaxWaveCenters", float64(cfg.MaxWaveCenters), 5},
		{"GridCellSize", cfg.GridCellSize, 30},
		{"FrameSkip", float64(cfg.FrameSkip), 3},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v; want %v", c.name, c.got, c.want)
		}
	}
}

func TestConfig_ClassCounts(t *testing.T) {
	cfg := DefaultConfig()
	for _, n := range []int{1, 7, 100, 1000, 2000} {
		cfg.AgentCount = n
		a, b := cfg.ClassCounts()
		if a+b != n || a < 0 || b < 0 {
			t.Errorf("ClassCounts(%d) = %d/%d", n, a, b)
		}
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		count   int
		speed   float64
	}{
		{"YAML", "flock.yaml", "agent_count: 1500\nspeed_multiplier: 1.5\n", 1500, 1.5},
		{"JSON", "flock.json", `{"agentCount": 200, "speedMultiplier": 0.5}`, 200, 0.5},
		{"TOML", "flock.toml", "agent_count = 300\nspeed_multiplier = 2.0\n", 300, 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeFile(t, tt.file, tt.content))
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.AgentCount != tt.count || cfg.SpeedMultiplier != tt.speed {
				t.Errorf("Got %d agents at x%v; want %d at x%v", cfg.AgentCount, cfg.SpeedMultiplier, tt.count, tt.speed)
			}
			// Untouched keys keep their defaults
			if cfg.PerceptionRadius != 25 || cfg.WaveDecay != 0.98 {
				t.Errorf("Defaults lost: perception %v decay %v", cfg.PerceptionRadius, cfg.WaveDecay)
			}
		})
	}
}

func TestLoadConfig_Shipped(t *testing.T) {
	tests := []struct {
		file   string
		agents int
		seed   uint64
	}{
		{"dense.yaml", 2000, 0},
		{"calm.toml", 300, 42},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			cfg, err := LoadConfig(filepath.Join("..", "..", "configs", tt.file))
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if cfg.AgentCount != tt.agents || cfg.Seed != tt.seed {
				t.Errorf("AgentCount = %d, Seed = %d; want %d, %d", cfg.AgentCount, cfg.Seed, tt.agents, tt.seed)
			}
			if cfg.GridCellSize != 30 {
				t.Errorf("GridCellSize = %v; want the default 30", cfg.GridCellSize)
			}
		})
	}
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"UnknownYAMLKey", "bad.yaml", "agent_count: 10\nflock_size: 3\n"},
		{"UnknownJSONKey", "bad.json", `{"agents": 10}`},
		{"UnknownTOMLKey", "bad.toml", "agents = 10\n"},
		{"SchemaViolation", "bad.yaml", "agent_count: 0\n"},
		{"RangeViolation", "bad.yaml", "base_min_speed: 5\n"},
		{"Unsupported", "flock.ini", "agent_count=10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeFile(t, tt.file, tt.content)); err == nil {
				t.Errorf("LoadConfig(%s) succeeded; want an error", tt.file)
			}
		})
	}

	t.Run("MissingFile", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Errorf("LoadConfig on a missing file succeeded")
		}
	})
}

func TestSettingsFromMap(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		s, err := SettingsFromMap(map[string]any{
			"agentCount":        500.0,
			"speedMultiplier":   1.2,
			"avoidanceStrength": 0.0,
		})
		if err != nil {
			t.Fatalf("SettingsFromMap() error = %v", err)
		}
		if s != (Settings{AgentCount: 500, SpeedMultiplier: 1.2, AvoidanceStrength: 0}) {
			t.Errorf("Settings = %+v", s)
		}
	})

	tests := []struct {
		name string
		in   map[string]any
	}{
		{"FractionalCount", map[string]any{"agentCount": 10.5, "speedMultiplier": 1.0, "avoidanceStrength": 1.0}},
		{"ZeroSpeed", map[string]any{"agentCount": 10.0, "speedMultiplier": 0.0, "avoidanceStrength": 1.0}},
		{"Missing", map[string]any{"agentCount": 10.0}},
		{"Extra", map[string]any{"agentCount": 10.0, "speedMultiplier": 1.0, "avoidanceStrength": 1.0, "color": "red"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := SettingsFromMap(tt.in); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("SettingsFromMap() error = %v; want ErrInvalidConfig", err)
			}
		})
	}
}
