package paradigm

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sloria/stimulus/internal/stimulus"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewUnsupportedFormat(t *testing.T) {
	if _, err := New("parquet", "data.parquet", false, discard()); err == nil {
		t.Error("want error for unsupported format")
	}
}

func TestNewUniqueDestination(t *testing.T) {
	p, err := New("csv", "data.csv", true, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Destination() == "data.csv" {
		t.Error("unique destination should differ from the original")
	}
	if filepath.Ext(p.Destination()) != ".csv" {
		t.Errorf("unique destination %q lost its extension", p.Destination())
	}
}

func TestAdd(t *testing.T) {
	p, err := New("csv", "data.csv", false, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := p.Add(nil); err == nil {
		t.Error("want error for nil spec")
	}
	if err := p.Add(stimulus.Text{}); err == nil {
		t.Error("want error for invalid spec")
	}
	if p.Len() != 0 {
		t.Errorf("Len = %d after rejected specs, want 0", p.Len())
	}

	specs := []stimulus.Spec{
		stimulus.Text{Text: "hello"},
		stimulus.Pause{Duration: time.Second},
	}
	if err := p.AddAll(specs); err != nil {
		t.Fatalf("AddAll: %v", err)
	}
	if p.Len() != 2 {
		t.Errorf("Len = %d, want 2", p.Len())
	}

	got, err := p.At(1)
	if err != nil {
		t.Fatalf("At(1): %v", err)
	}
	if got.Kind() != stimulus.KindPause {
		t.Errorf("At(1).Kind = %s, want pause", got.Kind())
	}
	if _, err := p.At(2); err == nil {
		t.Error("want error for out-of-range index")
	}
	if _, err := p.At(-1); err == nil {
		t.Error("want error for negative index")
	}
}

func TestRecordAndWriteData(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "session.csv")
	p, err := New("csv", dest, false, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := p.Record(1, nil); err != nil {
		t.Fatalf("Record(nil): %v", err)
	}
	if p.Rows() != 0 {
		t.Errorf("nil report produced %d rows", p.Rows())
	}

	reports := []*stimulus.Report{
		{Kind: stimulus.KindText, Label: "Welcome", Response: "space", LatencyMS: 812},
		{Kind: stimulus.KindWaitKey, Response: "c", LatencyMS: 1450},
	}
	for i, rep := range reports {
		if err := p.Record(i+1, rep); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	path, err := p.WriteData()
	if err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if path != dest {
		t.Errorf("WriteData path = %q, want %q", path, dest)
	}

	f, err := os.Open(dest)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want header + 2 rows", len(records))
	}
	if records[1][0] != "1" || records[1][2] != "Welcome" || records[2][4] != "1450" {
		t.Errorf("unexpected rows: %v", records[1:])
	}
}

func TestWriteDataEmpty(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "session.csv")
	p, err := New("csv", dest, false, discard())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	path, err := p.WriteData()
	if err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if path != "" {
		t.Errorf("WriteData path = %q, want empty", path)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("empty paradigm should not create the dataset file")
	}
}
