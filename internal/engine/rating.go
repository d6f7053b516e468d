package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"

	"github.com/sloria/stimulus/internal/stimulus"
)

// ratingEvent is one marker move: the new rating and when it happened,
// relative to video onset.
type ratingEvent struct {
	Rating int
	At     time.Duration
}

// ratingOverlay is the keyboard-driven Likert scale drawn over a rating
// video. Arrow keys move the marker one tick; a digit key jumps to that
// rating when it is on the scale.
type ratingOverlay struct {
	spec    stimulus.VideoRating
	label   *Texture
	current int
	history []ratingEvent
}

func newRatingOverlay(spec stimulus.VideoRating, label *Texture) *ratingOverlay {
	return &ratingOverlay{spec: spec, label: label, current: spec.EffectiveStart()}
}

func (o *ratingOverlay) handleKey(name string, at time.Duration) {
	prev := o.current
	switch strings.ToLower(name) {
	case "left":
		if o.current > o.spec.Low {
			o.current--
		}
	case "right":
		if o.current < o.spec.High {
			o.current++
		}
	default:
		if n, err := strconv.Atoi(name); err == nil && n >= o.spec.Low && n <= o.spec.High {
			o.current = n
		}
	}
	if o.current != prev {
		o.history = append(o.history, ratingEvent{Rating: o.current, At: at})
	}
}

func (o *ratingOverlay) draw(ctx *Context) {
	if o.label != nil {
		ctx.drawTop(o.label)
	}

	w := float32(ctx.Cfg.ScreenWidth)
	h := float32(ctx.Cfg.ScreenHeight)
	barY := h * 0.88
	left := w * 0.15
	right := w * 0.85

	c := ctx.Cfg.TextColor
	ctx.Renderer.SetDrawColor(c.R, c.G, c.B, c.A)
	ctx.Renderer.RenderLine(left, barY, right, barY)

	ticks := o.spec.High - o.spec.Low
	for i := 0; i <= ticks; i++ {
		x := left + (right-left)*float32(i)/float32(ticks)
		ctx.Renderer.RenderLine(x, barY-8, x, barY+8)
	}

	// Marker at the current rating.
	pos := float32(o.current-o.spec.Low) / float32(ticks)
	mx := left + (right-left)*pos
	marker := sdl.FRect{X: mx - 6, Y: barY - 22, W: 12, H: 12}
	ctx.Renderer.RenderFillRect(&marker)
}

// writeHistory writes the rating history as CSV rows of rating and seconds
// since onset. An empty history writes nothing, matching a participant who
// never moved the marker.
func (o *ratingOverlay) writeHistory(path string) error {
	if len(o.history) == 0 {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Rating", "Time"}); err != nil {
		return err
	}
	for _, evt := range o.history {
		row := []string{
			strconv.Itoa(evt.Rating),
			strconv.FormatFloat(evt.At.Seconds(), 'f', 8, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func presentVideoRating(ctx *Context, res *Resources, s stimulus.VideoRating) (*stimulus.Report, error) {
	overlay := newRatingOverlay(s, res.Text(s.Description))
	if err := playFrames(ctx, res, s.Video, overlay); err != nil {
		return nil, err
	}
	if err := overlay.writeHistory(s.Destination); err != nil {
		return nil, fmt.Errorf("write rating history: %w", err)
	}
	ctx.Log.Info("wrote rating history", "destination", s.Destination, "events", len(overlay.history))
	return &stimulus.Report{
		Kind:     s.Kind(),
		Label:    s.Video.FramesDir,
		Response: strconv.Itoa(overlay.current),
	}, nil
}
