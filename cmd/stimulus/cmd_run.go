package main

import (
	"os"
	"strings"

	"github.com/Zyko0/go-sdl3/bin/binimg"
	"github.com/Zyko0/go-sdl3/bin/binsdl"
	"github.com/Zyko0/go-sdl3/bin/binttf"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/spf13/cobra"

	"github.com/sloria/stimulus/internal/config"
	"github.com/sloria/stimulus/internal/engine"
	"github.com/sloria/stimulus/internal/logging"
	"github.com/sloria/stimulus/internal/paradigm"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script.yaml>",
		Short: "Play a paradigm script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			cfg.LoadCache()
			if err := cfg.ApplyEnv(); err != nil {
				return err
			}
			cfg.ScriptFile = args[0]

			level, _ := cmd.Flags().GetString("log-level")
			if cmd.Flags().Changed("log-level") || cfg.LogLevel == "" {
				cfg.LogLevel = level
			}
			log := logging.New(cfg.LogLevel, os.Stderr)

			script, err := paradigm.LoadScript(cfg.ScriptFile)
			if err != nil {
				return err
			}
			// Script options first, explicit flags last so they win.
			applyScript(script, cfg)
			applyRunFlags(cmd, cfg)

			par, err := paradigm.New(cfg.OutputFormat, cfg.OutputFile, cfg.UniqueOutput, log)
			if err != nil {
				return err
			}
			if err := par.AddAll(script.Stimuli); err != nil {
				return err
			}

			log.Info("starting paradigm",
				"script", cfg.ScriptFile,
				"stimuli", par.Len(),
				"participant", cfg.Participant,
				"destination", par.Destination())

			defer binsdl.Load().Unload()
			defer binimg.Load().Unload()
			defer binttf.Load().Unload()

			return engine.Run(cfg, par, log)
		},
	}

	cmd.Flags().String("output", "", "Dataset destination file")
	cmd.Flags().String("format", "", "Dataset format (csv, json, xlsx, yaml, sqlite)")
	cmd.Flags().Bool("unique", false, "Timestamp the dataset filename")
	cmd.Flags().String("stimuli-dir", "", "Directory containing stimulus media")
	cmd.Flags().String("participant", "", "Participant identifier")
	cmd.Flags().String("start-splash", "", "Start splash image")
	cmd.Flags().String("end-splash", "", "End splash image")
	cmd.Flags().String("font", "", "TTF font file")
	cmd.Flags().Int("font-size", 0, "Font size")
	cmd.Flags().String("trigger", "", "DLP-IO8-G trigger device")
	cmd.Flags().Int("width", 0, "Screen width")
	cmd.Flags().Int("height", 0, "Screen height")
	cmd.Flags().Float32("scale", 0, "Scale factor for stimuli")
	cmd.Flags().Bool("fullscreen", false, "Enable fullscreen")
	cmd.Flags().Bool("no-vsync", false, "Disable VSync")
	cmd.Flags().Bool("no-fixation", false, "Disable fixation cross")
	cmd.Flags().String("escape-key", "", "Key that aborts the paradigm")
	cmd.Flags().String("bg-color", "", "Background color (R,G,B,A)")
	cmd.Flags().String("text-color", "", "Text color (R,G,B,A)")
	cmd.Flags().String("fixation-color", "", "Fixation color (R,G,B,A)")

	return cmd
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.OutputFile, _ = f.GetString("output")
	}
	if f.Changed("format") {
		cfg.OutputFormat, _ = f.GetString("format")
	}
	if f.Changed("unique") {
		cfg.UniqueOutput, _ = f.GetBool("unique")
	}
	if f.Changed("stimuli-dir") {
		cfg.StimuliDir, _ = f.GetString("stimuli-dir")
	}
	if f.Changed("participant") {
		cfg.Participant, _ = f.GetString("participant")
	}
	if f.Changed("start-splash") {
		cfg.StartSplash, _ = f.GetString("start-splash")
	}
	if f.Changed("end-splash") {
		cfg.EndSplash, _ = f.GetString("end-splash")
	}
	if f.Changed("font") {
		cfg.FontFile, _ = f.GetString("font")
	}
	if f.Changed("font-size") {
		cfg.FontSize, _ = f.GetInt("font-size")
	}
	if f.Changed("trigger") {
		cfg.TriggerDevice, _ = f.GetString("trigger")
	}
	if f.Changed("width") {
		cfg.ScreenWidth, _ = f.GetInt("width")
	}
	if f.Changed("height") {
		cfg.ScreenHeight, _ = f.GetInt("height")
	}
	if f.Changed("scale") {
		cfg.ScaleFactor, _ = f.GetFloat32("scale")
	}
	if f.Changed("fullscreen") {
		cfg.Fullscreen, _ = f.GetBool("fullscreen")
	}
	if f.Changed("no-vsync") {
		noVSync, _ := f.GetBool("no-vsync")
		cfg.VSync = !noVSync
	}
	if f.Changed("no-fixation") {
		noFix, _ := f.GetBool("no-fixation")
		cfg.UseFixation = !noFix
	}
	if f.Changed("escape-key") {
		cfg.EscapeKey, _ = f.GetString("escape-key")
	}
	if f.Changed("bg-color") {
		s, _ := f.GetString("bg-color")
		cfg.BGColor = config.ParseColor(s)
	}
	if f.Changed("text-color") {
		s, _ := f.GetString("text-color")
		cfg.TextColor = config.ParseColor(s)
	}
	if f.Changed("fixation-color") {
		s, _ := f.GetString("fixation-color")
		cfg.FixationColor = config.ParseColor(s)
	}
}

// applyScript overlays the window and dataset sections of a paradigm script
// onto the run configuration.
func applyScript(script *paradigm.Script, cfg *config.Config) {
	if script.Window.Width > 0 {
		cfg.ScreenWidth = script.Window.Width
	}
	if script.Window.Height > 0 {
		cfg.ScreenHeight = script.Window.Height
	}
	if script.Window.Fullscreen {
		cfg.Fullscreen = true
	}
	if script.Window.Color != "" {
		cfg.BGColor = colorByName(script.Window.Color)
	}
	if script.Output.Format != "" {
		cfg.OutputFormat = script.Output.Format
	}
	if script.Output.Destination != "" {
		cfg.OutputFile = script.Output.Destination
	}
	if script.Output.Unique {
		cfg.UniqueOutput = true
	}
}

func colorByName(name string) sdl.Color {
	switch strings.ToLower(name) {
	case "black":
		return sdl.Color{R: 0, G: 0, B: 0, A: 255}
	case "white":
		return sdl.Color{R: 255, G: 255, B: 255, A: 255}
	case "gray", "grey":
		return sdl.Color{R: 128, G: 128, B: 128, A: 255}
	case "red":
		return sdl.Color{R: 255, G: 0, B: 0, A: 255}
	case "green":
		return sdl.Color{R: 0, G: 255, B: 0, A: 255}
	case "blue":
		return sdl.Color{R: 0, G: 0, B: 255, A: 255}
	}
	return config.ParseColor(name)
}
