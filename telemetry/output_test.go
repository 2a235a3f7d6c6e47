package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
)

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager for empty dir")
	}
	if err := om.WriteWindow(WindowStats{}, PerfStats{}, RestRow{}); err != nil {
		t.Errorf("nil WriteWindow: %v", err)
	}
	if err := om.WriteEvacuation(EvacuationRow{}); err != nil {
		t.Errorf("nil WriteEvacuation: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", filepath.Base(path), err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestOutputManagerWindowTables(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("new output manager: %v", err)
	}

	var perf PerfStats
	perf.AvgStep = 250 * time.Microsecond
	perf.PhasePct[PhaseMovement] = 40
	for i := 1; i <= 3; i++ {
		stats := WindowStats{RunID: "r", WindowEndTick: int32(i * 600)}
		rest := RestRow{Roaming: 20 - i, Going: i, Inside: 4}
		if err := om.WriteWindow(stats, perf, rest); err != nil {
			t.Fatalf("write window %d: %v", i, err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	tests := []struct {
		file   string
		header string
	}{
		{"telemetry.csv", "run_id,window_end"},
		{"perf.csv", "run_id,window_end,avg_step_us"},
		{"rest.csv", "run_id,window_end,roaming,going_home,inside"},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			lines := readLines(t, filepath.Join(dir, tt.file))
			if len(lines) != 4 {
				t.Fatalf("%d lines, want header plus 3 rows", len(lines))
			}
			if !strings.HasPrefix(lines[0], tt.header) {
				t.Errorf("header %q, want prefix %q", lines[0], tt.header)
			}
		})
	}

	data, err := os.ReadFile(filepath.Join(dir, "rest.csv"))
	if err != nil {
		t.Fatalf("read rest.csv: %v", err)
	}
	var rows []RestRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		t.Fatalf("parse rest.csv: %v", err)
	}
	last := rows[len(rows)-1]
	if last.RunID != "r" || last.WindowEnd != 1800 || last.Going != 3 || last.Inside != 4 {
		t.Errorf("last rest row = %+v", last)
	}
}

func TestOutputManagerOpensTablesOnDemand(t *testing.T) {
	dir := t.TempDir()
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("new output manager: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{RunID: "r", Type: BookmarkCoopRush, Tick: 600}); err != nil {
		t.Fatalf("write bookmark: %v", err)
	}
	for _, tick := range []int32{100, 900} {
		if err := om.WriteEvacuation(EvacuationRow{RunID: "r", Tick: tick, Panicking: 5, Evacuated: 2}); err != nil {
			t.Fatalf("write evacuation: %v", err)
		}
	}
	if err := om.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if lines := readLines(t, filepath.Join(dir, "bookmarks.csv")); len(lines) != 2 {
		t.Errorf("bookmarks.csv has %d lines, want 2", len(lines))
	}
	lines := readLines(t, filepath.Join(dir, "evacuations.csv"))
	if len(lines) != 3 || lines[0] != "run_id,tick,sim_time,panicking,evacuated" {
		t.Errorf("evacuations.csv = %q", lines)
	}
	for _, name := range []string{"telemetry.csv", "perf.csv", "rest.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
			t.Errorf("%s exists without any window written", name)
		}
	}
}
