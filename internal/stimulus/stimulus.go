// Package stimulus defines the stimulus specifications a paradigm sequences.
// A spec is declarative: it holds the arguments needed to present one
// visual, audio or video unit. Presentation itself happens in the engine
// package; specs only validate their arguments, and a malformed spec is a
// fatal error for the whole paradigm.
package stimulus

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies a stimulus type.
type Kind string

const (
	KindText        Kind = "text"
	KindImage       Kind = "image"
	KindAudio       Kind = "audio"
	KindVideo       Kind = "video"
	KindVideoRating Kind = "videorating"
	KindPause       Kind = "pause"
	KindWaitKey     Kind = "waitkey"
)

// DefaultTextDuration applies when a Text spec leaves Duration zero.
const DefaultTextDuration = 2 * time.Second

// DefaultVideoFPS applies when a Video spec leaves FPS zero.
const DefaultVideoFPS = 30.0

// WaitForKey events.
const (
	EventContinue = "continue"
	EventExit     = "exit"
)

// Spec is one stimulus specification.
type Spec interface {
	Kind() Kind
	Validate() error
}

// Report carries what a presented stimulus observed, one dataset row each.
type Report struct {
	Kind      Kind
	Label     string
	Response  string
	LatencyMS int64
}

// Text shows a string centered on screen for Duration, optionally holding
// until one of Keys is pressed.
type Text struct {
	Text     string
	Duration time.Duration
	Keys     []string
}

func (t Text) Kind() Kind { return KindText }

func (t Text) Validate() error {
	if t.Text == "" {
		return fmt.Errorf("text stimulus: empty text")
	}
	if t.Duration < 0 {
		return fmt.Errorf("text stimulus: negative duration %s", t.Duration)
	}
	return nil
}

// EffectiveDuration resolves the default display time.
func (t Text) EffectiveDuration() time.Duration {
	if t.Duration == 0 {
		return DefaultTextDuration
	}
	return t.Duration
}

// Image shows an image file for Duration with an optional caption above it,
// optionally holding until one of Keys is pressed.
type Image struct {
	Path     string
	Duration time.Duration
	Caption  string
	Keys     []string
}

func (i Image) Kind() Kind { return KindImage }

func (i Image) Validate() error {
	if i.Path == "" {
		return fmt.Errorf("image stimulus: missing file path")
	}
	if i.Duration <= 0 {
		return fmt.Errorf("image stimulus %s: duration must be positive", i.Path)
	}
	return nil
}

// Audio plays a sound: a file (wav/mp3/flac), a pure tone at Tone Hz, or a
// named note such as "A4" or "C#5". Exactly one source must be set. Text,
// if present, is shown while the sound plays.
type Audio struct {
	File string
	Tone float64
	Note string
	Text string
	// Duration bounds tone and note playback; files play to their end.
	Duration time.Duration
}

func (a Audio) Kind() Kind { return KindAudio }

func (a Audio) Validate() error {
	n := 0
	if a.File != "" {
		n++
	}
	if a.Tone != 0 {
		n++
	}
	if a.Note != "" {
		n++
	}
	if n != 1 {
		return fmt.Errorf("audio stimulus: exactly one of file, tone or note must be set")
	}
	if a.Tone < 0 {
		return fmt.Errorf("audio stimulus: negative tone frequency %g", a.Tone)
	}
	if a.Note != "" {
		if _, err := NoteFrequency(a.Note); err != nil {
			return fmt.Errorf("audio stimulus: %w", err)
		}
	}
	if a.File == "" && a.Duration <= 0 {
		return fmt.Errorf("audio stimulus: tone playback needs a positive duration")
	}
	return nil
}

// Video plays a pre-extracted frame sequence (numbered images in FramesDir)
// at FPS, with an optional audio track started at onset. Decoding movie
// containers is out of scope; frames are extracted ahead of time.
type Video struct {
	FramesDir string
	FPS       float64
	Audio     string
}

func (v Video) Kind() Kind { return KindVideo }

func (v Video) Validate() error {
	if v.FramesDir == "" {
		return fmt.Errorf("video stimulus: missing frames directory")
	}
	if v.FPS < 0 {
		return fmt.Errorf("video stimulus %s: negative fps", v.FramesDir)
	}
	return nil
}

// EffectiveFPS resolves the default frame rate.
func (v Video) EffectiveFPS() float64 {
	if v.FPS == 0 {
		return DefaultVideoFPS
	}
	return v.FPS
}

// VideoRating plays a video while the participant moves a Likert marker
// with the arrow or number keys. The (rating, time) history is written to
// Destination as CSV when the video ends; the final rating is also
// reported to the paradigm dataset.
type VideoRating struct {
	Video       Video
	Destination string
	Low, High   int
	Start       int
	Description string
}

func (r VideoRating) Kind() Kind { return KindVideoRating }

func (r VideoRating) Validate() error {
	if err := r.Video.Validate(); err != nil {
		return err
	}
	if r.Destination == "" {
		return fmt.Errorf("videorating stimulus: missing rating destination")
	}
	if r.Low >= r.High {
		return fmt.Errorf("videorating stimulus: scale low %d must be below high %d", r.Low, r.High)
	}
	if r.Start != 0 && (r.Start < r.Low || r.Start > r.High) {
		return fmt.Errorf("videorating stimulus: start %d outside scale [%d, %d]", r.Start, r.Low, r.High)
	}
	return nil
}

// EffectiveStart resolves the default marker position to the scale middle.
func (r VideoRating) EffectiveStart() int {
	if r.Start == 0 {
		return (r.Low + r.High) / 2
	}
	return r.Start
}

// Pause blanks the screen for Duration.
type Pause struct {
	Duration time.Duration
}

func (p Pause) Kind() Kind { return KindPause }

func (p Pause) Validate() error {
	if p.Duration <= 0 {
		return fmt.Errorf("pause stimulus: duration must be positive")
	}
	return nil
}

// WaitForKey blocks until one of Keys is pressed (any key when empty), then
// either continues the sequence or exits the paradigm.
type WaitForKey struct {
	Keys  []string
	Event string
}

func (w WaitForKey) Kind() Kind { return KindWaitKey }

func (w WaitForKey) Validate() error {
	switch w.Event {
	case "", EventContinue, EventExit:
		return nil
	}
	return fmt.Errorf("waitkey stimulus: unknown event %q", w.Event)
}

// EffectiveEvent resolves the default event.
func (w WaitForKey) EffectiveEvent() string {
	if w.Event == "" {
		return EventContinue
	}
	return w.Event
}

var noteSemitones = map[string]int{
	"C": 0, "C#": 1, "DB": 1,
	"D": 2, "D#": 3, "EB": 3,
	"E": 4,
	"F": 5, "F#": 6, "GB": 6,
	"G": 7, "G#": 8, "AB": 8,
	"A": 9, "A#": 10, "BB": 10,
	"B": 11,
}

// NoteFrequency converts a note name like "A", "C#5" or "Bb3" to its equal
// temperament frequency in Hz. The octave defaults to 4, so "A" is 440 Hz.
func NoteFrequency(name string) (float64, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	if s == "" {
		return 0, fmt.Errorf("empty note name")
	}
	octave := 4
	// Trailing digit is the octave.
	if last := s[len(s)-1]; last >= '0' && last <= '9' {
		o, err := strconv.Atoi(s[len(s)-1:])
		if err == nil {
			octave = o
			s = s[:len(s)-1]
		}
	}
	semi, ok := noteSemitones[s]
	if !ok {
		return 0, fmt.Errorf("unknown note name %q", name)
	}
	midi := (octave+1)*12 + semi
	return 440 * math.Pow(2, float64(midi-69)/12), nil
}
