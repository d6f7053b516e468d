package dataset

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func sample(t *testing.T) *Dataset {
	t.Helper()
	d := New("trial", "kind", "response")
	rows := [][]string{
		{"1", "text", "c"},
		{"2", "waitkey", "space"},
	}
	for _, r := range rows {
		if err := d.Append(r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	return d
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"JSON", FormatJSON, false},
		{"xlsx", FormatXLSX, false},
		{"yaml", FormatYAML, false},
		{"sqlite", FormatSQLite, false},
		{"xml", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseFormat(%q): want error, got %v", tt.in, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestAppendWidthMismatch(t *testing.T) {
	d := New("a", "b")
	if err := d.Append([]string{"1"}); err == nil {
		t.Error("want error for narrow row")
	}
	if err := d.Append([]string{"1", "2", "3"}); err == nil {
		t.Error("want error for wide row")
	}
	if d.Len() != 0 {
		t.Errorf("Len = %d after rejected rows, want 0", d.Len())
	}
}

func TestWriteCSV(t *testing.T) {
	d := sample(t)
	path := filepath.Join(t.TempDir(), "out.csv")
	if err := d.WriteFile(path, FormatCSV); err != nil {
		t.Fatalf("WriteFile: %v", err)
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
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[0][1] != "kind" || records[2][2] != "space" {
		t.Errorf("unexpected content: %v", records)
	}
}

func TestWriteJSON(t *testing.T) {
	d := sample(t)
	path := filepath.Join(t.TempDir(), "out.json")
	if err := d.WriteFile(path, FormatJSON); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var records []map[string]string
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(records) != 2 || records[0]["trial"] != "1" || records[1]["response"] != "space" {
		t.Errorf("unexpected content: %v", records)
	}
}

func TestWriteYAML(t *testing.T) {
	d := sample(t)
	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := d.WriteFile(path, FormatYAML); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var records []map[string]string
	if err := yaml.Unmarshal(data, &records); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(records) != 2 || records[1]["kind"] != "waitkey" {
		t.Errorf("unexpected content: %v", records)
	}
}

func TestWriteXLSX(t *testing.T) {
	d := sample(t)
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := d.WriteFile(path, FormatXLSX); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("xlsx file is empty")
	}
}

func TestWriteSQLite(t *testing.T) {
	d := sample(t)
	path := filepath.Join(t.TempDir(), "out.db")
	if err := d.WriteFile(path, FormatSQLite); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM results").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("got %d rows, want 2", n)
	}
	var response string
	if err := db.QueryRow(`SELECT "response" FROM results WHERE "trial" = '2'`).Scan(&response); err != nil {
		t.Fatalf("select: %v", err)
	}
	if response != "space" {
		t.Errorf("response = %q, want space", response)
	}
}

func TestUniqueDestination(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		in, want string
	}{
		{"data.csv", "data_20240315-103000.csv"},
		{"results/data.json", "results/data_20240315-103000.json"},
		{"noext", "noext_20240315-103000"},
		{"res.v2/data", "res.v2/data_20240315-103000"},
		{"res.v2/data.csv", "res.v2/data_20240315-103000.csv"},
	}
	for _, tt := range tests {
		if got := uniqueDestination(tt.in, now); got != tt.want {
			t.Errorf("uniqueDestination(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteEmptyDataset(t *testing.T) {
	d := New("a", "b")
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := d.WriteFile(path, FormatCSV); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(string(data)); got != "a,b" {
		t.Errorf("empty dataset wrote %q, want header only", got)
	}
}
