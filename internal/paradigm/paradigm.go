// Package paradigm holds the ordered stimulus sequence of one experimental
// session and the result dataset accumulated while it plays. Presentation
// is delegated to the engine package; this package owns sequence order,
// spec validation and the single end-of-run dataset write.
package paradigm

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/sloria/stimulus/internal/dataset"
	"github.com/sloria/stimulus/internal/stimulus"
)

// Dataset column layout, one row per stimulus that reported data.
var Headers = []string{"trial", "kind", "label", "response", "latency_ms"}

// Paradigm is an ordered stimulus sequence for one session.
type Paradigm struct {
	specs       []stimulus.Spec
	format      dataset.Format
	destination string
	data        *dataset.Dataset
	log         *slog.Logger
}

// New creates a paradigm writing its dataset to destination in the named
// format ("csv", "json", "xlsx", "yaml" or "sqlite"). An unsupported format
// fails immediately. With unique set, a timestamp is inserted into the
// destination filename.
func New(format, destination string, unique bool, log *slog.Logger) (*Paradigm, error) {
	f, err := dataset.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if unique {
		destination = dataset.UniqueDestination(destination)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Paradigm{
		format:      f,
		destination: destination,
		data:        dataset.New(Headers...),
		log:         log,
	}, nil
}

// Add appends one stimulus spec. A malformed spec is rejected outright.
func (p *Paradigm) Add(spec stimulus.Spec) error {
	if spec == nil {
		return fmt.Errorf("stimulus %d: nil spec", len(p.specs))
	}
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("stimulus %d: %w", len(p.specs), err)
	}
	p.specs = append(p.specs, spec)
	return nil
}

// AddAll appends specs in order, stopping at the first malformed one.
func (p *Paradigm) AddAll(specs []stimulus.Spec) error {
	for _, s := range specs {
		if err := p.Add(s); err != nil {
			return err
		}
	}
	return nil
}

func (p *Paradigm) Len() int { return len(p.specs) }

// At returns the spec at index i; out-of-range indices are an error, there
// is no wraparound.
func (p *Paradigm) At(i int) (stimulus.Spec, error) {
	if i < 0 || i >= len(p.specs) {
		return nil, fmt.Errorf("no stimulus at index %d (have %d)", i, len(p.specs))
	}
	return p.specs[i], nil
}

// Specs returns the sequence in play order.
func (p *Paradigm) Specs() []stimulus.Spec { return p.specs }

// Record appends one stimulus report to the dataset.
func (p *Paradigm) Record(trial int, rep *stimulus.Report) error {
	if rep == nil {
		return nil
	}
	return p.data.Append([]string{
		strconv.Itoa(trial),
		string(rep.Kind),
		rep.Label,
		rep.Response,
		strconv.FormatInt(rep.LatencyMS, 10),
	})
}

// Rows reports how many dataset rows have accumulated.
func (p *Paradigm) Rows() int { return p.data.Len() }

// Destination is the resolved output path.
func (p *Paradigm) Destination() string { return p.destination }

// WriteData writes the dataset once. Nothing is written when no stimulus
// reported data.
func (p *Paradigm) WriteData() (string, error) {
	if p.data.Len() == 0 {
		p.log.Info("no stimulus reported data, nothing written")
		return "", nil
	}
	if err := p.data.WriteFile(p.destination, p.format); err != nil {
		return "", fmt.Errorf("write dataset: %w", err)
	}
	p.log.Info("saved dataset", "destination", p.destination, "format", p.format.String(), "rows", p.data.Len())
	return p.destination, nil
}
