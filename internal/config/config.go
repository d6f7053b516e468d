// Package config holds run configuration for the presentation engine.
// Precedence is defaults, then the cache file from a previous setup, then
// STIMULUS_* environment variables, then command-line flags.
package config

import (
	"fmt"
	"os"
	"reflect"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ScriptFile    string    `yaml:"script_file" env:"STIMULUS_SCRIPT"`
	OutputFile    string    `yaml:"output_file" env:"STIMULUS_OUTPUT"`
	OutputFormat  string    `yaml:"output_format" env:"STIMULUS_FORMAT"`
	UniqueOutput  bool      `yaml:"unique_output" env:"STIMULUS_UNIQUE"`
	StimuliDir    string    `yaml:"stimuli_dir" env:"STIMULUS_DIR"`
	Participant   string    `yaml:"participant" env:"STIMULUS_PARTICIPANT"`
	StartSplash   string    `yaml:"start_splash"`
	EndSplash     string    `yaml:"end_splash"`
	FontFile      string    `yaml:"font_file" env:"STIMULUS_FONT"`
	FontSize      int       `yaml:"font_size" env:"STIMULUS_FONT_SIZE"`
	TriggerDevice string    `yaml:"trigger_device" env:"STIMULUS_TRIGGER"`
	ScreenWidth   int       `yaml:"screen_w" env:"STIMULUS_WIDTH"`
	ScreenHeight  int       `yaml:"screen_h" env:"STIMULUS_HEIGHT"`
	ScaleFactor   float32   `yaml:"scale_factor"`
	EscapeKey     string    `yaml:"escape_key" env:"STIMULUS_ESCAPE_KEY"`
	LogLevel      string    `yaml:"log_level" env:"STIMULUS_LOG_LEVEL"`
	UseFixation   bool      `yaml:"use_fixation"`
	Fullscreen    bool      `yaml:"fullscreen" env:"STIMULUS_FULLSCREEN"`
	VSync         bool      `yaml:"vsync"`
	BGColor       sdl.Color `yaml:"bg_color" env:"STIMULUS_BG_COLOR"`
	TextColor     sdl.Color `yaml:"text_color" env:"STIMULUS_TEXT_COLOR"`
	FixationColor sdl.Color `yaml:"fixation_color" env:"STIMULUS_FIXATION_COLOR"`
}

func Default() *Config {
	return &Config{
		OutputFile:    "data.csv",
		OutputFormat:  "csv",
		FontSize:      24,
		ScreenWidth:   720,
		ScreenHeight:  480,
		ScaleFactor:   1.0,
		EscapeKey:     "escape",
		LogLevel:      "info",
		UseFixation:   true,
		VSync:         true,
		BGColor:       sdl.Color{R: 0, G: 0, B: 0, A: 255},
		TextColor:     sdl.Color{R: 255, G: 255, B: 255, A: 255},
		FixationColor: sdl.Color{R: 255, G: 255, B: 255, A: 255},
	}
}

// ParseColor parses "R,G,B,A" into an sdl.Color. A missing alpha component
// defaults to opaque.
func ParseColor(s string) sdl.Color {
	var r, g, b, a uint8
	n, _ := fmt.Sscanf(s, "%d,%d,%d,%d", &r, &g, &b, &a)
	if n < 4 {
		a = 255
	}
	return sdl.Color{R: r, G: g, B: b, A: a}
}

// ApplyEnv overlays STIMULUS_* environment variables onto the config.
func (cfg *Config) ApplyEnv() error {
	return env.ParseWithOptions(cfg, env.Options{
		FuncMap: map[reflect.Type]env.ParserFunc{
			reflect.TypeOf(sdl.Color{}): func(v string) (interface{}, error) {
				return ParseColor(v), nil
			},
		},
	})
}

// CacheFile remembers the last setup so the next session starts from it.
const CacheFile = ".stimulus.yaml"

func (cfg *Config) SaveCache() error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(CacheFile, data, 0o644)
}

// LoadCache overlays the cache file if present. A missing or unreadable
// cache is not an error.
func (cfg *Config) LoadCache() {
	data, err := os.ReadFile(CacheFile)
	if err != nil {
		return
	}
	yaml.Unmarshal(data, cfg)
}
