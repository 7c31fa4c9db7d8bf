package tramnet

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadPopulationCSV(t *testing.T) {
	content := []byte("x;y;residents\n2219000.5;6457000.25;120\n2219500.0;6457500.0;45\n")
	fname := filepath.Join(t.TempDir(), "population.csv")
	if err := os.WriteFile(fname, content, 0644); err != nil {
		t.Fatalf("Fixture must be written: %v", err)
	}

	records, err := ReadPopulationCSV(fname)
	if err != nil {
		t.Fatalf("Population file must be read: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("2 rows must be read, but got %d", len(records))
	}
	if records[0].X != 2219000.5 || records[0].Residents != 120 {
		t.Errorf("First row must be preserved, but got %+v", records[0])
	}

	broken := []byte("x;y;residents\nnot_a_number;1.0;5\n")
	fname = filepath.Join(t.TempDir(), "broken.csv")
	if err := os.WriteFile(fname, broken, 0644); err != nil {
		t.Fatalf("Fixture must be written: %v", err)
	}
	if _, err := ReadPopulationCSV(fname); err == nil {
		t.Errorf("Malformed row must yield an error")
	}
}
