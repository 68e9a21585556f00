package telemetry

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/pthm-cable/savanna/components"
)

func openTestStore(t *testing.T, path string) *Store {
	t.Helper()
	s, err := OpenStore(path, uuid.New(), 42)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	return s
}

func TestStore_RecordAndFlush(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "history.db"))
	defer s.Close()

	samples := PopulationSamples(10, [components.NumSpecies]int{30, 20, 8}, 140)
	for _, smp := range samples {
		if err := s.Record(smp); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.Samples(s.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("before Flush found %d rows, want 0 (buffered)", len(got))
	}

	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
	got, err = s.Samples(s.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(samples) {
		t.Fatalf("Samples() returned %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], samples[i])
		}
	}
}

func TestStore_BatchAutoFlush(t *testing.T) {
	s := openTestStore(t, filepath.Join(t.TempDir(), "history.db"))
	defer s.Close()

	for i := 0; i < defaultBatch; i++ {
		if err := s.Record(Sample{Time: float64(i), Count: i, Species: "deer"}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.Samples(s.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != defaultBatch {
		t.Errorf("after a full batch found %d rows, want %d", len(got), defaultBatch)
	}
}

func TestStore_RunsAreSeparated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first := openTestStore(t, path)
	first.Record(Sample{Time: 10, Count: 5, Species: "wolf"})
	if err := first.WriteWindow(WindowStats{WindowEndTick: 100, Wolves: 5}); err != nil {
		t.Fatal(err)
	}
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second := openTestStore(t, path)
	defer second.Close()
	second.Record(Sample{Time: 10, Count: 9, Species: "wolf"})
	second.Record(Sample{Time: 20, Count: 8, Species: "wolf"})
	if err := second.Flush(); err != nil {
		t.Fatal(err)
	}

	a, err := second.Samples(first.RunID())
	if err != nil {
		t.Fatal(err)
	}
	b, err := second.Samples(second.RunID())
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 1 || a[0].Count != 5 || len(b) != 2 {
		t.Errorf("first run %v, second run %v", a, b)
	}

	n, err := second.WindowCount(first.RunID())
	if err != nil || n != 1 {
		t.Errorf("WindowCount(first) = %d, %v, want 1", n, err)
	}
	n, err = second.WindowCount(second.RunID())
	if err != nil || n != 0 {
		t.Errorf("WindowCount(second) = %d, %v, want 0", n, err)
	}
}
