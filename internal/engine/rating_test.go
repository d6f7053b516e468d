package engine

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sloria/stimulus/internal/stimulus"
)

func ratingSpec() stimulus.VideoRating {
	return stimulus.VideoRating{
		Video:       stimulus.Video{FramesDir: "frames"},
		Destination: "ratings.csv",
		Low:         1,
		High:        7,
		Description: "Very negative ... Very positive",
	}
}

func TestRatingOverlayKeepsLabel(t *testing.T) {
	label := &Texture{W: 200, H: 24}
	o := newRatingOverlay(ratingSpec(), label)
	if o.label != label {
		t.Error("overlay dropped its description texture")
	}
	if o.current != 4 {
		t.Errorf("start rating = %d, want scale middle 4", o.current)
	}

	o = newRatingOverlay(ratingSpec(), nil)
	if o.label != nil {
		t.Error("overlay invented a label")
	}
}

func TestRatingOverlayKeys(t *testing.T) {
	o := newRatingOverlay(ratingSpec(), nil)

	o.handleKey("Right", time.Second)
	if o.current != 5 {
		t.Errorf("after right, rating = %d, want 5", o.current)
	}
	o.handleKey("Left", 2*time.Second)
	o.handleKey("Left", 3*time.Second)
	if o.current != 3 {
		t.Errorf("after two lefts, rating = %d, want 3", o.current)
	}
	o.handleKey("7", 4*time.Second)
	if o.current != 7 {
		t.Errorf("after digit jump, rating = %d, want 7", o.current)
	}

	// Clamped and ignored keys leave no history entry.
	o.handleKey("Right", 5*time.Second)
	o.handleKey("9", 6*time.Second)
	o.handleKey("Space", 7*time.Second)
	if o.current != 7 {
		t.Errorf("rating moved to %d on clamped input", o.current)
	}
	if len(o.history) != 4 {
		t.Errorf("history has %d events, want 4", len(o.history))
	}
}

func TestRatingOverlayWriteHistory(t *testing.T) {
	o := newRatingOverlay(ratingSpec(), nil)
	o.handleKey("Right", 1500*time.Millisecond)
	o.handleKey("Right", 2*time.Second)

	path := filepath.Join(t.TempDir(), "ratings.csv")
	if err := o.writeHistory(path); err != nil {
		t.Fatalf("writeHistory: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 events", len(records))
	}
	if records[0][0] != "Rating" || records[1][0] != "5" || records[1][1] != "1.50000000" {
		t.Errorf("unexpected rows: %v", records)
	}
}

func TestRatingOverlayEmptyHistory(t *testing.T) {
	o := newRatingOverlay(ratingSpec(), nil)
	path := filepath.Join(t.TempDir(), "ratings.csv")
	if err := o.writeHistory(path); err != nil {
		t.Fatalf("writeHistory: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("untouched marker should write no history file")
	}
}
