package pipeline

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"flightdelay/ml"
)

func writeDataset(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestLoadDataset(t *testing.T) {
	path := writeDataset(t, []byte(
		"Fecha-I,Fecha-O,OPERA,TIPOVUELO,MES\n"+
			"2017-01-01 23:30:00,2017-01-01 23:50:00,Grupo LATAM,I,1\n"+
			"2017-01-02 10:00:00,2017-01-02 10:05:00,Sky Airline,N,1\n"))

	frame, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", frame.Len())
	}
	if !frame.Has(ml.ColOperator) || !frame.Has(ml.ColScheduledAt) {
		t.Fatalf("missing expected columns: %v", frame.Columns())
	}

	labels, err := ml.EnsureLabel(frame, "delay")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(labels, []int{1, 0}) {
		t.Fatalf("unexpected labels: %v", labels)
	}
}

func TestLoadDatasetLatin1(t *testing.T) {
	// "Aerolíneas" with í as the Latin-1 byte 0xED.
	raw := append([]byte("OPERA,TIPOVUELO,MES\nAerol"), 0xED)
	raw = append(raw, []byte("neas Argentinas,I,3\n")...)
	path := writeDataset(t, raw)

	frame, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	value, _ := frame.Value(0, ml.ColOperator)
	if value != "Aerolíneas Argentinas" {
		t.Fatalf("expected decoded operator name, got %q", value)
	}
}

func TestLoadDatasetEmpty(t *testing.T) {
	path := writeDataset(t, []byte("OPERA,TIPOVUELO,MES\n"))
	if _, err := LoadDataset(path); err == nil {
		t.Fatal("expected error for dataset without rows")
	}
}

func TestOperatorCatalog(t *testing.T) {
	frame, err := ml.NewFrame(
		[]string{"OPERA"},
		[][]string{{"Sky Airline"}, {"Grupo LATAM"}, {"Sky Airline"}, {"Copa Air"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	catalog, err := OperatorCatalog(frame)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Copa Air", "Grupo LATAM", "Sky Airline"}
	if !reflect.DeepEqual(catalog, want) {
		t.Fatalf("expected %v, got %v", want, catalog)
	}
}
