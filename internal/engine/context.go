package engine

import (
	"fmt"
	"log/slog"

	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/Zyko0/go-sdl3/ttf"

	"github.com/sloria/stimulus/internal/config"
	"github.com/sloria/stimulus/internal/trigger"
)

// Context owns the SDL window, renderer, font and audio device for one
// session. It must be created and used on the main OS thread.
type Context struct {
	Cfg      *config.Config
	Window   *sdl.Window
	Renderer *sdl.Renderer
	Font     *ttf.Font
	Mixer    *AudioMixer
	Stream   *sdl.AudioStream
	Trigger  *trigger.DLPIO8G
	Log      *slog.Logger
}

// NewContext initializes SDL, opens the window and audio device and loads
// the font. Callers must Close the returned context.
func NewContext(cfg *config.Config, log *slog.Logger) (*Context, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("SDL init: %w", err)
	}
	if err := ttf.Init(); err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("TTF init: %w", err)
	}

	windowFlags := sdl.WINDOW_RESIZABLE
	if cfg.Fullscreen {
		windowFlags |= sdl.WINDOW_FULLSCREEN
	}

	window, renderer, err := sdl.CreateWindowAndRenderer("stimulus", cfg.ScreenWidth, cfg.ScreenHeight, windowFlags)
	if err != nil {
		ttf.Quit()
		sdl.Quit()
		return nil, fmt.Errorf("create window: %w", err)
	}

	if cfg.VSync {
		renderer.SetVSync(1)
	} else {
		renderer.SetVSync(0)
	}

	fontPath := cfg.FontFile
	if fontPath == "" {
		fontPath = GetDefaultFontPath()
	}
	var font *ttf.Font
	if fontPath != "" {
		font, err = ttf.OpenFont(fontPath, float32(cfg.FontSize))
		if err != nil {
			log.Warn("failed to load font", "path", fontPath, "error", err)
			font = nil
		}
	}

	mixer := NewAudioMixer()
	spec := &sdl.AudioSpec{Format: sdl.AUDIO_S16, Channels: MixChannels, Freq: MixFreq}
	cb := sdl.NewAudioStreamCallback(mixer.Callback)
	stream := sdl.AUDIO_DEVICE_DEFAULT_PLAYBACK.OpenAudioDeviceStream(spec, cb)
	if stream == nil {
		if font != nil {
			font.Close()
		}
		renderer.Destroy()
		window.Destroy()
		ttf.Quit()
		sdl.Quit()
		return nil, fmt.Errorf("failed to open audio stream")
	}
	stream.ResumeDevice()

	ctx := &Context{
		Cfg:      cfg,
		Window:   window,
		Renderer: renderer,
		Font:     font,
		Mixer:    mixer,
		Stream:   stream,
		Log:      log,
	}

	if cfg.TriggerDevice != "" {
		dlp, err := trigger.Open(cfg.TriggerDevice, 9600, log)
		if err != nil {
			log.Warn("failed to initialize trigger device", "device", cfg.TriggerDevice, "error", err)
		} else {
			ctx.Trigger = dlp
		}
	}

	return ctx, nil
}

// Close tears down the trigger box, audio device and SDL state.
func (ctx *Context) Close() {
	if ctx.Trigger != nil {
		ctx.Trigger.Close()
	}
	if ctx.Stream != nil {
		ctx.Stream.Destroy()
	}
	if ctx.Font != nil {
		ctx.Font.Close()
	}
	if ctx.Renderer != nil {
		ctx.Renderer.Destroy()
	}
	if ctx.Window != nil {
		ctx.Window.Destroy()
	}
	ttf.Quit()
	sdl.Quit()
}
