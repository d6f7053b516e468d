package config

import (
	"testing"

	"github.com/Zyko0/go-sdl3/sdl"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.ScreenWidth != 720 || cfg.ScreenHeight != 480 {
		t.Errorf("default window %dx%d, want 720x480", cfg.ScreenWidth, cfg.ScreenHeight)
	}
	if cfg.OutputFile != "data.csv" || cfg.OutputFormat != "csv" {
		t.Errorf("default output %s (%s)", cfg.OutputFile, cfg.OutputFormat)
	}
	if cfg.EscapeKey != "escape" || !cfg.UseFixation || !cfg.VSync {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want sdl.Color
	}{
		{"255,255,255", sdl.Color{R: 255, G: 255, B: 255, A: 255}},
		{"255,0,0", sdl.Color{R: 255, G: 0, B: 0, A: 255}},
		{"0,0,0", sdl.Color{R: 0, G: 0, B: 0, A: 255}},
		{"10,20,30,40", sdl.Color{R: 10, G: 20, B: 30, A: 40}},
		{"255,0,0,0", sdl.Color{R: 255, G: 0, B: 0, A: 0}},
		{"0,128,255,255", sdl.Color{R: 0, G: 128, B: 255, A: 255}},
	}
	for _, tt := range tests {
		if got := ParseColor(tt.in); got != tt.want {
			t.Errorf("ParseColor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("STIMULUS_OUTPUT", "env.json")
	t.Setenv("STIMULUS_FORMAT", "json")
	t.Setenv("STIMULUS_WIDTH", "1920")
	t.Setenv("STIMULUS_FULLSCREEN", "true")
	t.Setenv("STIMULUS_TEXT_COLOR", "10,20,30,255")

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.OutputFile != "env.json" || cfg.OutputFormat != "json" {
		t.Errorf("output = %s (%s)", cfg.OutputFile, cfg.OutputFormat)
	}
	if cfg.ScreenWidth != 1920 || !cfg.Fullscreen {
		t.Errorf("window = %dx%d fullscreen=%v", cfg.ScreenWidth, cfg.ScreenHeight, cfg.Fullscreen)
	}
	if (cfg.TextColor != sdl.Color{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("text color = %+v", cfg.TextColor)
	}
	if cfg.ScreenHeight != 480 {
		t.Errorf("unset env overwrote screen height: %d", cfg.ScreenHeight)
	}
}

func TestCacheRoundTrip(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg := Default()
	cfg.ScriptFile = "session.yaml"
	cfg.Participant = "s042"
	cfg.ScreenWidth = 1280
	if err := cfg.SaveCache(); err != nil {
		t.Fatalf("SaveCache: %v", err)
	}

	loaded := Default()
	loaded.LoadCache()
	if loaded.ScriptFile != "session.yaml" || loaded.Participant != "s042" || loaded.ScreenWidth != 1280 {
		t.Errorf("cache round trip lost fields: %+v", loaded)
	}
}

func TestLoadCacheMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg := Default()
	cfg.LoadCache()
	if cfg.OutputFile != "data.csv" {
		t.Errorf("missing cache changed config: %+v", cfg)
	}
}
