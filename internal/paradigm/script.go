package paradigm

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sloria/stimulus/internal/stimulus"
)

// Script is a declarative paradigm file: window and output options plus the
// stimulus sequence as a list of {type: arguments} entries.
type Script struct {
	Window  WindowOptions
	Output  OutputOptions
	Stimuli []stimulus.Spec
}

type WindowOptions struct {
	Width      int
	Height     int
	Fullscreen bool
	Color      string
}

type OutputOptions struct {
	Format      string
	Destination string
	Unique      bool
}

type scriptDTO struct {
	Window struct {
		Width      int    `yaml:"width"`
		Height     int    `yaml:"height"`
		Fullscreen bool   `yaml:"fullscreen"`
		Color      string `yaml:"color"`
	} `yaml:"window"`
	Dataset struct {
		Format      string `yaml:"format"`
		Destination string `yaml:"destination"`
		Unique      bool   `yaml:"unique"`
	} `yaml:"dataset"`
	Stimuli []yaml.Node `yaml:"stimuli"`
}

type textDTO struct {
	Text     string   `yaml:"text"`
	Duration float64  `yaml:"duration"`
	Keys     []string `yaml:"keys"`
}

type imageDTO struct {
	Path     string   `yaml:"path"`
	Duration float64  `yaml:"duration"`
	Caption  string   `yaml:"caption"`
	Keys     []string `yaml:"keys"`
}

type audioDTO struct {
	File     string  `yaml:"file"`
	Tone     float64 `yaml:"tone"`
	Note     string  `yaml:"note"`
	Text     string  `yaml:"text"`
	Duration float64 `yaml:"duration"`
}

type videoDTO struct {
	Frames string  `yaml:"frames"`
	FPS    float64 `yaml:"fps"`
	Audio  string  `yaml:"audio"`
}

type videoRatingDTO struct {
	videoDTO    `yaml:",inline"`
	Destination string `yaml:"destination"`
	Low         int    `yaml:"low"`
	High        int    `yaml:"high"`
	Start       int    `yaml:"start"`
	Description string `yaml:"description"`
}

type pauseDTO struct {
	Duration float64 `yaml:"duration"`
}

type waitKeyDTO struct {
	Keys  []string `yaml:"keys"`
	Event string   `yaml:"event"`
}

// LoadScript reads and parses a paradigm script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	script, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return script, nil
}

// ParseScript parses a paradigm script. Unknown stimulus types and
// malformed arguments are fatal.
func ParseScript(data []byte) (*Script, error) {
	var dto scriptDTO
	if err := yaml.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(dto.Stimuli) == 0 {
		return nil, fmt.Errorf("script has no stimuli")
	}

	script := &Script{
		Window: WindowOptions{
			Width:      dto.Window.Width,
			Height:     dto.Window.Height,
			Fullscreen: dto.Window.Fullscreen,
			Color:      dto.Window.Color,
		},
		Output: OutputOptions{
			Format:      dto.Dataset.Format,
			Destination: dto.Dataset.Destination,
			Unique:      dto.Dataset.Unique,
		},
	}

	for i, node := range dto.Stimuli {
		spec, err := decodeSpec(&node)
		if err != nil {
			return nil, fmt.Errorf("stimulus %d: %w", i, err)
		}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("stimulus %d: %w", i, err)
		}
		script.Stimuli = append(script.Stimuli, spec)
	}
	return script, nil
}

func decodeSpec(node *yaml.Node) (stimulus.Spec, error) {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return nil, fmt.Errorf("entry must be a single {type: arguments} mapping")
	}
	kind := node.Content[0].Value
	args := node.Content[1]

	switch stimulus.Kind(kind) {
	case stimulus.KindText:
		var d textDTO
		if err := args.Decode(&d); err != nil {
			return nil, fmt.Errorf("text arguments: %w", err)
		}
		return stimulus.Text{Text: d.Text, Duration: seconds(d.Duration), Keys: d.Keys}, nil
	case stimulus.KindImage:
		var d imageDTO
		if err := args.Decode(&d); err != nil {
			return nil, fmt.Errorf("image arguments: %w", err)
		}
		return stimulus.Image{Path: d.Path, Duration: seconds(d.Duration), Caption: d.Caption, Keys: d.Keys}, nil
	case stimulus.KindAudio:
		var d audioDTO
		if err := args.Decode(&d); err != nil {
			return nil, fmt.Errorf("audio arguments: %w", err)
		}
		return stimulus.Audio{File: d.File, Tone: d.Tone, Note: d.Note, Text: d.Text, Duration: seconds(d.Duration)}, nil
	case stimulus.KindVideo:
		var d videoDTO
		if err := args.Decode(&d); err != nil {
			return nil, fmt.Errorf("video arguments: %w", err)
		}
		return stimulus.Video{FramesDir: d.Frames, FPS: d.FPS, Audio: d.Audio}, nil
	case stimulus.KindVideoRating:
		var d videoRatingDTO
		if err := args.Decode(&d); err != nil {
			return nil, fmt.Errorf("videorating arguments: %w", err)
		}
		return stimulus.VideoRating{
			Video:       stimulus.Video{FramesDir: d.Frames, FPS: d.FPS, Audio: d.Audio},
			Destination: d.Destination,
			Low:         d.Low,
			High:        d.High,
			Start:       d.Start,
			Description: d.Description,
		}, nil
	case stimulus.KindPause:
		var d pauseDTO
		if err := args.Decode(&d); err != nil {
			return nil, fmt.Errorf("pause arguments: %w", err)
		}
		return stimulus.Pause{Duration: seconds(d.Duration)}, nil
	case stimulus.KindWaitKey:
		var d waitKeyDTO
		if err := args.Decode(&d); err != nil {
			return nil, fmt.Errorf("waitkey arguments: %w", err)
		}
		return stimulus.WaitForKey{Keys: d.Keys, Event: d.Event}, nil
	}
	return nil, fmt.Errorf("unknown stimulus type %q", kind)
}

// seconds converts script durations, given as fractional seconds.
func seconds(f float64) time.Duration {
	return time.Duration(f * float64(time.Second))
}
