package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/ecosim/config"
)

// RoundRecord summarises one finished round.
type RoundRecord struct {
	Round           int `csv:"round"`
	Ticks           int `csv:"ticks"`
	EndTick         int `csv:"end_tick"`
	PeakHerbivores  int `csv:"peak_herbivores"`
	PeakCarnivores  int `csv:"peak_carnivores"`
	OldestHerbivore int `csv:"oldest_herbivore"`
	CarnivoresLeft  int `csv:"carnivores_left"`
	MaxGeneration   int `csv:"max_generation"`
}

// csvTable appends records of one type to a CSV file, writing the header
// with the first record only.
type csvTable[T any] struct {
	name          string
	f             *os.File
	headerWritten bool
}

func createTable[T any](dir, name string) (*csvTable[T], error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvTable[T]{name: name, f: f}, nil
}

func (t *csvTable[T]) write(rec T) error {
	records := []T{rec}
	var err error
	if !t.headerWritten {
		err = gocsv.Marshal(records, t.f)
		t.headerWritten = err == nil
	} else {
		err = gocsv.MarshalWithoutHeaders(records, t.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", t.name, err)
	}
	return nil
}

func (t *csvTable[T]) close() error {
	if t == nil || t.f == nil {
		return nil
	}
	return t.f.Close()
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry *csvTable[WindowStatsCSV]
	perf      *csvTable[PerfStatsCSV]
	rounds    *csvTable[RoundRecord]
	bookmarks *csvTable[Bookmark]
}

// NewOutputManager creates the output directory and its CSV files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.telemetry, err = createTable[WindowStatsCSV](dir, "telemetry.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = createTable[PerfStatsCSV](dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.rounds, err = createTable[RoundRecord](dir, "rounds.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.bookmarks, err = createTable[Bookmark](dir, "bookmarks.csv"); err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write(stats.ToCSV())
}

// WritePerf appends a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	return om.perf.write(stats.ToCSV(windowEnd))
}

// WriteRound appends a finished round to rounds.csv.
func (om *OutputManager) WriteRound(r RoundRecord) error {
	if om == nil {
		return nil
	}
	return om.rounds.write(r)
}

// WriteBookmark appends a bookmark to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write(b)
}

// WriteHallOfFame replaces hall_of_fame.json with the current hall.
func (om *OutputManager) WriteHallOfFame(h *HallOfFame) error {
	if om == nil || h == nil {
		return nil
	}
	return h.WriteFile(filepath.Join(om.dir, "hall_of_fame.json"))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(om.telemetry.close(), om.perf.close(), om.rounds.close(), om.bookmarks.close())
}
