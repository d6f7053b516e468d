package engine

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/sloria/stimulus/internal/stimulus"
	"github.com/sloria/stimulus/internal/trigger"
)

// ErrExit reports that a waitkey stimulus with the exit event fired; the
// run stops cleanly and the dataset is still written.
var ErrExit = errors.New("exit requested")

const CrossSize = 20

func (ctx *Context) clear() {
	c := ctx.Cfg.BGColor
	ctx.Renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	ctx.Renderer.Clear()
}

func (ctx *Context) drawFixationCross() {
	c := ctx.Cfg.FixationColor
	ctx.Renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	mx, my := float32(ctx.Cfg.ScreenWidth)/2, float32(ctx.Cfg.ScreenHeight)/2
	ctx.Renderer.RenderLine(mx-CrossSize, my, mx+CrossSize, my)
	ctx.Renderer.RenderLine(mx, my-CrossSize, mx, my+CrossSize)
}

func (ctx *Context) drawCentered(t *Texture) {
	scale := ctx.Cfg.ScaleFactor
	dst := sdl.FRect{
		X: (float32(ctx.Cfg.ScreenWidth) - t.W*scale) / 2.0,
		Y: (float32(ctx.Cfg.ScreenHeight) - t.H*scale) / 2.0,
		W: t.W * scale,
		H: t.H * scale,
	}
	ctx.Renderer.RenderTexture(t.Tex, nil, &dst)
}

func (ctx *Context) drawTop(t *Texture) {
	dst := sdl.FRect{
		X: (float32(ctx.Cfg.ScreenWidth) - t.W) / 2.0,
		Y: float32(ctx.Cfg.ScreenHeight) * 0.1,
		W: t.W,
		H: t.H,
	}
	ctx.Renderer.RenderTexture(t.Tex, nil, &dst)
}

// Blank shows the background, with the fixation cross when configured.
func (ctx *Context) Blank() {
	ctx.clear()
	if ctx.Cfg.UseFixation {
		ctx.drawFixationCross()
	}
	ctx.Renderer.Present()
}

// Present shows one stimulus and reports what it observed, if anything.
func Present(ctx *Context, res *Resources, spec stimulus.Spec) (*stimulus.Report, error) {
	switch s := spec.(type) {
	case stimulus.Text:
		return presentText(ctx, res, s)
	case stimulus.Image:
		return presentImage(ctx, res, s)
	case stimulus.Audio:
		return presentAudio(ctx, res, s)
	case stimulus.Video:
		return presentVideo(ctx, res, s)
	case stimulus.VideoRating:
		return presentVideoRating(ctx, res, s)
	case stimulus.Pause:
		ctx.clear()
		ctx.Renderer.Present()
		return nil, ctx.WaitPolling(s.Duration)
	case stimulus.WaitForKey:
		return presentWaitKey(ctx, s)
	}
	return nil, fmt.Errorf("unknown stimulus spec %T", spec)
}

func presentText(ctx *Context, res *Resources, s stimulus.Text) (*stimulus.Report, error) {
	tex := res.Text(s.Text)
	ctx.clear()
	ctx.drawCentered(tex)
	ctx.Renderer.Present()
	ctx.Trigger.Set(trigger.LineText)
	defer ctx.Trigger.Unset(trigger.LineText)

	if err := ctx.WaitPolling(s.EffectiveDuration()); err != nil {
		return nil, err
	}
	if len(s.Keys) == 0 {
		return nil, nil
	}

	start := sdl.Ticks()
	key, err := ctx.WaitForKey(s.Keys)
	if err != nil {
		return nil, err
	}
	return &stimulus.Report{
		Kind:      s.Kind(),
		Label:     s.Text,
		Response:  key,
		LatencyMS: int64(sdl.Ticks() - start),
	}, nil
}

func presentImage(ctx *Context, res *Resources, s stimulus.Image) (*stimulus.Report, error) {
	tex := res.Image(filepath.Join(ctx.Cfg.StimuliDir, s.Path))
	ctx.clear()
	ctx.drawCentered(tex)
	if s.Caption != "" {
		ctx.drawTop(res.Text(s.Caption))
	}
	ctx.Renderer.Present()
	ctx.Trigger.Set(trigger.LineVisual)
	defer ctx.Trigger.Unset(trigger.LineVisual)

	if err := ctx.WaitPolling(s.Duration); err != nil {
		return nil, err
	}
	if len(s.Keys) == 0 {
		return nil, nil
	}

	start := sdl.Ticks()
	key, err := ctx.WaitForKey(s.Keys)
	if err != nil {
		return nil, err
	}
	return &stimulus.Report{
		Kind:      s.Kind(),
		Label:     s.Path,
		Response:  key,
		LatencyMS: int64(sdl.Ticks() - start),
	}, nil
}

func presentAudio(ctx *Context, res *Resources, s stimulus.Audio) (*stimulus.Report, error) {
	snd := res.Sound(s)
	ctx.clear()
	if s.Text != "" {
		ctx.drawCentered(res.Text(s.Text))
	}
	ctx.Renderer.Present()

	if !ctx.Mixer.Play(snd) {
		return nil, fmt.Errorf("audio mixer has no free slot")
	}
	ctx.Trigger.Pulse(trigger.LineSound, 5*time.Millisecond)
	return nil, ctx.WaitPolling(snd.Duration())
}

func presentWaitKey(ctx *Context, s stimulus.WaitForKey) (*stimulus.Report, error) {
	ctx.Blank()
	start := sdl.Ticks()
	key, err := ctx.WaitForKey(s.Keys)
	if err != nil {
		return nil, err
	}
	rep := &stimulus.Report{
		Kind:      s.Kind(),
		Label:     s.EffectiveEvent(),
		Response:  key,
		LatencyMS: int64(sdl.Ticks() - start),
	}
	if s.EffectiveEvent() == stimulus.EventExit {
		return rep, ErrExit
	}
	return rep, nil
}

func presentVideo(ctx *Context, res *Resources, s stimulus.Video) (*stimulus.Report, error) {
	ctx.Trigger.Set(trigger.LineVideo)
	defer ctx.Trigger.Unset(trigger.LineVideo)
	err := playFrames(ctx, res, s, nil)
	return nil, err
}

// playFrames runs the frame clock for a video stimulus. The overlay hook,
// when non-nil, draws on top of each frame and sees every key event.
func playFrames(ctx *Context, res *Resources, s stimulus.Video, overlay *ratingOverlay) error {
	frames := res.Frames(filepath.Join(ctx.Cfg.StimuliDir, s.FramesDir))
	if s.Audio != "" {
		if snd := res.SoundFile(s.Audio); snd != nil {
			ctx.Mixer.Play(snd)
		}
	}

	frameDur := time.Duration(float64(time.Second) / s.EffectiveFPS())
	start := time.Now()
	for i, frame := range frames {
		target := start.Add(time.Duration(i) * frameDur)
		for time.Now().Before(target) {
			if err := pumpVideoEvents(ctx, overlay, start); err != nil {
				return err
			}
			sdl.Delay(1)
		}
		if err := pumpVideoEvents(ctx, overlay, start); err != nil {
			return err
		}

		ctx.clear()
		ctx.drawCentered(frame)
		if overlay != nil {
			overlay.draw(ctx)
		}
		ctx.Renderer.Present()
	}
	return nil
}

func pumpVideoEvents(ctx *Context, overlay *ratingOverlay, start time.Time) error {
	for {
		var ev sdl.Event
		if !sdl.PollEvent(&ev) {
			return nil
		}
		switch ev.Type {
		case sdl.EVENT_QUIT:
			return ErrAborted
		case sdl.EVENT_KEY_DOWN:
			key := ev.KeyboardEvent().Key
			if ctx.isEscape(key) {
				return ErrAborted
			}
			if overlay != nil {
				overlay.handleKey(key.KeyName(), time.Since(start))
			}
		}
	}
}
