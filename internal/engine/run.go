package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/sloria/stimulus/internal/config"
	"github.com/sloria/stimulus/internal/paradigm"
)

// DisplaySplash shows an image centered on the background until any key is
// pressed. It returns false when the window was closed instead.
func (ctx *Context) DisplaySplash(filePath string) bool {
	if filePath == "" {
		return true
	}
	tex, err := img.LoadTexture(ctx.Renderer, filePath)
	if err != nil {
		ctx.Log.Warn("failed to load splash", "path", filePath, "error", err)
		return true
	}
	defer tex.Destroy()

	tw, th, _ := tex.Size()
	ctx.clear()
	ctx.drawCentered(&Texture{Tex: tex, W: tw, H: th})
	ctx.Renderer.Present()

	for {
		var event sdl.Event
		if err := sdl.WaitEvent(&event); err != nil {
			break
		}
		if event.Type == sdl.EVENT_QUIT {
			return false
		}
		if event.Type == sdl.EVENT_KEY_DOWN {
			break
		}
	}
	return true
}

// Run plays a whole paradigm: boot SDL, preload resources, show the start
// splash, present each stimulus in order, show the end splash and write the
// dataset. Escape aborts the sequence but the rows accumulated so far are
// still written.
func Run(cfg *config.Config, par *paradigm.Paradigm, log *slog.Logger) error {
	ctx, err := NewContext(cfg, log)
	if err != nil {
		return err
	}
	defer ctx.Close()

	res := NewResources()
	defer res.Destroy()
	if err := res.Load(ctx, par.Specs()); err != nil {
		return fmt.Errorf("load resources: %w", err)
	}

	if !ctx.DisplaySplash(cfg.StartSplash) {
		return nil
	}

	aborted := false
	for i, spec := range par.Specs() {
		fmt.Printf("\rStimulus: %d/%d ", i+1, par.Len())
		os.Stdout.Sync()

		rep, err := Present(ctx, res, spec)
		if rep != nil {
			if rerr := par.Record(i+1, rep); rerr != nil {
				return rerr
			}
		}
		if err != nil {
			if errors.Is(err, ErrAborted) {
				ctx.Log.Info("run aborted", "stimulus", i)
				aborted = true
				break
			}
			if errors.Is(err, ErrExit) {
				ctx.Log.Info("exit requested", "stimulus", i)
				break
			}
			return fmt.Errorf("stimulus %d: %w", i, err)
		}
	}
	fmt.Println()

	if !aborted {
		ctx.DisplaySplash(cfg.EndSplash)
	}

	_, err = par.WriteData()
	return err
}
