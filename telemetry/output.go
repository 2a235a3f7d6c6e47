package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/coop/config"
)

// RestRow is one rest.csv line: where the flock stands in the rest cycle at a window close.
type RestRow struct {
	RunID     string `csv:"run_id"`
	WindowEnd int32  `csv:"window_end"`
	Roaming   int    `csv:"roaming"`
	Going     int    `csv:"going_home"`
	Inside    int    `csv:"inside"`
}

// EvacuationRow is one evacuations.csv line.
type EvacuationRow struct {
	RunID     string  `csv:"run_id"`
	Tick      int32   `csv:"tick"`
	SimTime   float64 `csv:"sim_time"`
	Panicking int     `csv:"panicking"`
	Evacuated int     `csv:"evacuated"`
}

// table appends rows of one type to a CSV file under the run directory.
// The file is created on the first append, so runs that never produce a
// row type leave no empty file behind.
type table[T any] struct {
	path   string
	file   *os.File
	header bool
}

func newTable[T any](dir, name string) *table[T] {
	return &table[T]{path: filepath.Join(dir, name)}
}

func (t *table[T]) append(rows ...T) error {
	if t.file == nil {
		f, err := os.Create(t.path)
		if err != nil {
			return err
		}
		t.file = f
	}
	if !t.header {
		t.header = true
		return gocsv.Marshal(rows, t.file)
	}
	return gocsv.MarshalWithoutHeaders(rows, t.file)
}

func (t *table[T]) close() error {
	if t.file == nil {
		return nil
	}
	err := t.file.Close()
	t.file = nil
	return err
}

// OutputManager writes a run's CSV tables and config snapshot into one directory.
// A nil manager discards everything.
type OutputManager struct {
	dir         string
	windows     *table[WindowStats]
	perf        *table[PerfRow]
	bookmarks   *table[Bookmark]
	rest        *table[RestRow]
	evacuations *table[EvacuationRow]
}

// NewOutputManager prepares dir for output. An empty dir disables output and returns nil.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{
		dir:         dir,
		windows:     newTable[WindowStats](dir, "telemetry.csv"),
		perf:        newTable[PerfRow](dir, "perf.csv"),
		bookmarks:   newTable[Bookmark](dir, "bookmarks.csv"),
		rest:        newTable[RestRow](dir, "rest.csv"),
		evacuations: newTable[EvacuationRow](dir, "evacuations.csv"),
	}, nil
}

// WriteConfig saves the resolved configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteWindow records a closed stats window together with the step timing and
// rest-cycle counts sampled at the same tick.
func (om *OutputManager) WriteWindow(stats WindowStats, perf PerfStats, rest RestRow) error {
	if om == nil {
		return nil
	}
	if err := om.windows.append(stats); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	if err := om.perf.append(perf.Row(stats.RunID, stats.WindowEndTick)); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	rest.RunID, rest.WindowEnd = stats.RunID, stats.WindowEndTick
	if err := om.rest.append(rest); err != nil {
		return fmt.Errorf("writing rest: %w", err)
	}
	return nil
}

// WriteBookmark appends a bookmark to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarks.append(b); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteEvacuation appends a coop evacuation to evacuations.csv.
func (om *OutputManager) WriteEvacuation(e EvacuationRow) error {
	if om == nil {
		return nil
	}
	if err := om.evacuations.append(e); err != nil {
		return fmt.Errorf("writing evacuation: %w", err)
	}
	return nil
}

// Dir returns the output directory, or "" when output is disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every table that was opened.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(
		om.windows.close(),
		om.perf.close(),
		om.bookmarks.close(),
		om.rest.close(),
		om.evacuations.close(),
	)
}
