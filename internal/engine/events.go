package engine

import (
	"errors"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/sdl"
)

// ErrAborted reports that the participant or operator quit the run, via the
// escape key or by closing the window.
var ErrAborted = errors.New("run aborted")

func matchKey(name string, keys []string) bool {
	if len(keys) == 0 {
		return true
	}
	for _, k := range keys {
		if strings.EqualFold(name, k) {
			return true
		}
	}
	return false
}

func (ctx *Context) isEscape(key sdl.Keycode) bool {
	if key == sdl.K_ESCAPE {
		return true
	}
	return strings.EqualFold(key.KeyName(), ctx.Cfg.EscapeKey)
}

// WaitForKey blocks until one of keys is pressed (any key when empty) and
// returns the key name. Escape and window close abort.
func (ctx *Context) WaitForKey(keys []string) (string, error) {
	for {
		var ev sdl.Event
		if err := sdl.WaitEvent(&ev); err != nil {
			return "", err
		}
		switch ev.Type {
		case sdl.EVENT_QUIT:
			return "", ErrAborted
		case sdl.EVENT_KEY_DOWN:
			key := ev.KeyboardEvent().Key
			if ctx.isEscape(key) {
				return "", ErrAborted
			}
			if name := key.KeyName(); matchKey(name, keys) {
				return name, nil
			}
		}
	}
}

// PollAbort drains pending events, returning ErrAborted on quit or escape.
// Other key presses are discarded.
func (ctx *Context) PollAbort() error {
	for {
		var ev sdl.Event
		if !sdl.PollEvent(&ev) {
			return nil
		}
		switch ev.Type {
		case sdl.EVENT_QUIT:
			return ErrAborted
		case sdl.EVENT_KEY_DOWN:
			if ctx.isEscape(ev.KeyboardEvent().Key) {
				return ErrAborted
			}
		}
	}
}

// WaitPolling sleeps for d while keeping the event queue drained so the
// window stays responsive and escape still aborts.
func (ctx *Context) WaitPolling(d time.Duration) error {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if err := ctx.PollAbort(); err != nil {
			return err
		}
		sdl.Delay(5)
	}
	return ctx.PollAbort()
}
