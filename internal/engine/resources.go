package engine

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/Zyko0/go-sdl3/img"
	"github.com/Zyko0/go-sdl3/sdl"
	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/generators"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"

	"github.com/sloria/stimulus/internal/stimulus"
)

// GetDefaultFontPath looks for a usable TTF font, first in a local fonts/
// directory, then in well-known system locations.
func GetDefaultFontPath() string {
	entries, err := os.ReadDir("fonts")
	if err == nil {
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := strings.ToLower(filepath.Ext(entry.Name()))
				if ext == ".ttf" || ext == ".ttc" {
					return filepath.Join("fonts", entry.Name())
				}
			}
		}
	}

	var paths []string
	switch runtime.GOOS {
	case "windows":
		paths = []string{"C:\\Windows\\Fonts\\arial.ttf"}
	case "darwin":
		paths = []string{"/System/Library/Fonts/Helvetica.ttc"}
	default:
		paths = []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		}
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// Texture bundles an SDL texture with its pixel size.
type Texture struct {
	Tex  *sdl.Texture
	W, H float32
}

// Resources caches everything a paradigm needs before the run starts, so
// presentation never blocks on disk or decode work.
type Resources struct {
	textures map[string]*Texture
	sounds   map[string]*SoundResource
	frames   map[string][]*Texture
}

func NewResources() *Resources {
	return &Resources{
		textures: make(map[string]*Texture),
		sounds:   make(map[string]*SoundResource),
		frames:   make(map[string][]*Texture),
	}
}

// Load walks the stimulus specs and caches their textures, PCM buffers and
// frame sequences. Missing or undecodable media is a fatal error.
func (r *Resources) Load(ctx *Context, specs []stimulus.Spec) error {
	for i, spec := range specs {
		var err error
		switch s := spec.(type) {
		case stimulus.Text:
			_, err = r.text(ctx, s.Text)
		case stimulus.Image:
			_, err = r.image(ctx, filepath.Join(ctx.Cfg.StimuliDir, s.Path))
			if err == nil && s.Caption != "" {
				_, err = r.text(ctx, s.Caption)
			}
		case stimulus.Audio:
			_, err = r.audio(ctx, s)
			if err == nil && s.Text != "" {
				_, err = r.text(ctx, s.Text)
			}
		case stimulus.Video:
			err = r.video(ctx, s)
		case stimulus.VideoRating:
			err = r.video(ctx, s.Video)
			if err == nil && s.Description != "" {
				_, err = r.text(ctx, s.Description)
			}
		}
		if err != nil {
			return fmt.Errorf("stimulus %d: %w", i, err)
		}
	}
	return nil
}

func (r *Resources) text(ctx *Context, text string) (*Texture, error) {
	key := "text:" + text
	if t, ok := r.textures[key]; ok {
		return t, nil
	}
	if ctx.Font == nil {
		return nil, fmt.Errorf("text stimulus needs a font, none loaded")
	}
	surf, err := ctx.Font.RenderTextBlended(text, ctx.Cfg.TextColor)
	if err != nil || surf == nil {
		return nil, fmt.Errorf("render text %q: %v", text, err)
	}
	defer surf.Destroy()
	tex, err := ctx.Renderer.CreateTextureFromSurface(surf)
	if err != nil {
		return nil, fmt.Errorf("texture for text %q: %w", text, err)
	}
	t := &Texture{Tex: tex, W: float32(surf.W), H: float32(surf.H)}
	r.textures[key] = t
	return t, nil
}

func (r *Resources) image(ctx *Context, path string) (*Texture, error) {
	key := "image:" + path
	if t, ok := r.textures[key]; ok {
		return t, nil
	}
	tex, err := img.LoadTexture(ctx.Renderer, path)
	if err != nil {
		return nil, fmt.Errorf("load image %s: %w", path, err)
	}
	w, h, _ := tex.Size()
	t := &Texture{Tex: tex, W: w, H: h}
	r.textures[key] = t
	return t, nil
}

func (r *Resources) audio(ctx *Context, s stimulus.Audio) (*SoundResource, error) {
	key := audioKey(s)
	if snd, ok := r.sounds[key]; ok {
		return snd, nil
	}
	var (
		snd *SoundResource
		err error
	)
	switch {
	case s.File != "":
		snd, err = DecodeAudioFile(filepath.Join(ctx.Cfg.StimuliDir, s.File))
	case s.Note != "":
		freq, nerr := stimulus.NoteFrequency(s.Note)
		if nerr != nil {
			return nil, nerr
		}
		snd, err = SynthesizeTone(freq, s.Duration)
	default:
		snd, err = SynthesizeTone(s.Tone, s.Duration)
	}
	if err != nil {
		return nil, err
	}
	r.sounds[key] = snd
	return snd, nil
}

func audioKey(s stimulus.Audio) string {
	if s.File != "" {
		return "file:" + s.File
	}
	if s.Note != "" {
		return fmt.Sprintf("note:%s:%s", s.Note, s.Duration)
	}
	return fmt.Sprintf("tone:%g:%s", s.Tone, s.Duration)
}

func (r *Resources) video(ctx *Context, v stimulus.Video) error {
	dir := filepath.Join(ctx.Cfg.StimuliDir, v.FramesDir)
	if _, ok := r.frames[dir]; !ok {
		frames, err := r.loadFrames(ctx, dir)
		if err != nil {
			return err
		}
		r.frames[dir] = frames
	}
	if v.Audio != "" {
		key := "file:" + v.Audio
		if _, ok := r.sounds[key]; !ok {
			snd, err := DecodeAudioFile(filepath.Join(ctx.Cfg.StimuliDir, v.Audio))
			if err != nil {
				return err
			}
			r.sounds[key] = snd
		}
	}
	return nil
}

func (r *Resources) loadFrames(ctx *Context, dir string) ([]*Texture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("frames directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".bmp":
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("frames directory %s has no image files", dir)
	}
	sort.Strings(names)

	frames := make([]*Texture, 0, len(names))
	for _, name := range names {
		tex, err := img.LoadTexture(ctx.Renderer, filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("load frame %s: %w", name, err)
		}
		w, h, _ := tex.Size()
		frames = append(frames, &Texture{Tex: tex, W: w, H: h})
	}
	return frames, nil
}

// Texture returns a cached text or image texture.
func (r *Resources) Text(text string) *Texture      { return r.textures["text:"+text] }
func (r *Resources) Image(path string) *Texture     { return r.textures["image:"+path] }
func (r *Resources) Sound(s stimulus.Audio) *SoundResource {
	return r.sounds[audioKey(s)]
}
func (r *Resources) SoundFile(path string) *SoundResource { return r.sounds["file:"+path] }
func (r *Resources) Frames(dir string) []*Texture         { return r.frames[dir] }

// Destroy releases all cached textures.
func (r *Resources) Destroy() {
	for _, t := range r.textures {
		if t.Tex != nil {
			t.Tex.Destroy()
		}
	}
	for _, seq := range r.frames {
		for _, t := range seq {
			if t.Tex != nil {
				t.Tex.Destroy()
			}
		}
	}
}

// DecodeAudioFile decodes a wav, mp3 or flac file to mixer-format PCM,
// resampling when the source rate differs.
func DecodeAudioFile(path string) (*SoundResource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	default:
		return nil, fmt.Errorf("unsupported audio file type %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer streamer.Close()

	var src beep.Streamer = streamer
	if format.SampleRate != beep.SampleRate(MixFreq) {
		src = beep.Resample(4, format.SampleRate, beep.SampleRate(MixFreq), streamer)
	}
	return &SoundResource{Data: StreamToPCM(src, -1)}, nil
}

// SynthesizeTone renders a sine tone at freq Hz for the given duration.
// The generator takes whole hertz, so fractional note frequencies are
// rounded to the nearest.
func SynthesizeTone(freq float64, d time.Duration) (*SoundResource, error) {
	tone, err := generators.SinTone(beep.SampleRate(MixFreq), int(math.Round(freq)))
	if err != nil {
		return nil, fmt.Errorf("tone at %g Hz: %w", freq, err)
	}
	n := beep.SampleRate(MixFreq).N(d)
	return &SoundResource{Data: StreamToPCM(tone, n)}, nil
}

// StreamToPCM drains a beep streamer into interleaved 16-bit stereo PCM.
// A negative limit reads until the stream ends.
func StreamToPCM(s beep.Streamer, limit int) []byte {
	var out []byte
	buf := make([][2]float64, 512)
	total := 0
	for {
		want := len(buf)
		if limit >= 0 && total+want > limit {
			want = limit - total
		}
		if want == 0 {
			break
		}
		n, ok := s.Stream(buf[:want])
		for i := 0; i < n; i++ {
			out = append(out, sampleToBytes(buf[i][0])...)
			out = append(out, sampleToBytes(buf[i][1])...)
		}
		total += n
		if !ok {
			break
		}
	}
	return out
}

func sampleToBytes(v float64) []byte {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	s := int16(v * 32767)
	return []byte{byte(uint16(s)), byte(uint16(s) >> 8)}
}
