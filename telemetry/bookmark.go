package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHuntBreakthrough  BookmarkType = "hunt_breakthrough"
	BookmarkCarnivoreRecovery BookmarkType = "carnivore_recovery"
	BookmarkHerbivoreCrash    BookmarkType = "herbivore_crash"
	BookmarkStableEcosystem   BookmarkType = "stable_ecosystem"
)

// stableWindows is how many consecutive low-variance windows make a
// stable ecosystem.
const stableWindows = 5

// Bookmark marks a notable moment of a run.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Round       int          `csv:"round"`
	Tick        int          `csv:"tick"`
	Description string       `csv:"description"`
}

// Log writes the bookmark to logger.
func (b Bookmark) Log(logger *slog.Logger) {
	logger.Info("bookmark",
		"type", string(b.Type),
		"round", b.Round,
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches successive windows for population events.
type BookmarkDetector struct {
	history []WindowStats // ring buffer
	next    int
	full    bool

	carnivoreMin  int
	herbivorePeak int
	stableCount   int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	historySize = max(historySize, stableWindows)
	return &BookmarkDetector{history: make([]WindowStats, historySize), carnivoreMin: -1}
}

// Reset forgets all history, e.g. when a new round starts on a fresh board.
func (bd *BookmarkDetector) Reset() {
	*bd = BookmarkDetector{history: make([]WindowStats, len(bd.history)), carnivoreMin: -1}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var out []Bookmark
	if len(bd.recent()) > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkHuntBreakthrough,
			bd.checkCarnivoreRecovery,
			bd.checkHerbivoreCrash,
			bd.checkStableEcosystem,
		} {
			if b := check(stats); b != nil {
				b.Round = stats.Round
				b.Tick = stats.WindowEndTick
				out = append(out, *b)
			}
		}
	}

	bd.history[bd.next] = stats
	bd.next = (bd.next + 1) % len(bd.history)
	bd.full = bd.full || bd.next == 0

	if bd.carnivoreMin < 0 || stats.Carnivores < bd.carnivoreMin {
		bd.carnivoreMin = stats.Carnivores
	}
	bd.herbivorePeak = max(bd.herbivorePeak, stats.Herbivores)
	return out
}

// recent returns the stored windows, oldest first.
func (bd *BookmarkDetector) recent() []WindowStats {
	if !bd.full {
		return bd.history[:bd.next]
	}
	return append(append([]WindowStats(nil), bd.history[bd.next:]...), bd.history[:bd.next]...)
}

// checkHuntBreakthrough fires when carnivores eat more than twice their
// average meals per window.
func (bd *BookmarkDetector) checkHuntBreakthrough(stats WindowStats) *Bookmark {
	history := bd.recent()
	if len(history) < 3 || stats.CarnivoreMeals < 3 {
		return nil
	}
	meals := make([]float64, len(history))
	for i, h := range history {
		meals[i] = float64(h.CarnivoreMeals)
	}
	avg := stat.Mean(meals, nil)
	if avg == 0 || float64(stats.CarnivoreMeals) <= 2*avg {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkHuntBreakthrough,
		Description: fmt.Sprintf("carnivores ate %d times, %.1fx the average %.1f", stats.CarnivoreMeals, float64(stats.CarnivoreMeals)/avg, avg),
	}
}

// checkCarnivoreRecovery fires when carnivores come back from at most 3
// to at least three times that many.
func (bd *BookmarkDetector) checkCarnivoreRecovery(stats WindowStats) *Bookmark {
	if bd.carnivoreMin <= 0 || bd.carnivoreMin > 3 {
		return nil
	}
	if stats.Carnivores < bd.carnivoreMin*3 || stats.Carnivores < 6 {
		return nil
	}
	low := bd.carnivoreMin
	bd.carnivoreMin = stats.Carnivores
	return &Bookmark{
		Type:        BookmarkCarnivoreRecovery,
		Description: fmt.Sprintf("carnivores recovered from %d to %d", low, stats.Carnivores),
	}
}

// checkHerbivoreCrash fires when herbivores drop more than 30% below their
// recent peak.
func (bd *BookmarkDetector) checkHerbivoreCrash(stats WindowStats) *Bookmark {
	if bd.herbivorePeak == 0 {
		return nil
	}
	drop := 1 - float64(stats.Herbivores)/float64(bd.herbivorePeak)
	if drop <= 0.30 || stats.Herbivores >= bd.herbivorePeak-10 {
		return nil
	}
	peak := bd.herbivorePeak
	bd.herbivorePeak = stats.Herbivores
	return &Bookmark{
		Type:        BookmarkHerbivoreCrash,
		Description: fmt.Sprintf("herbivores crashed %.0f%% from peak %d to %d", drop*100, peak, stats.Herbivores),
	}
}

// checkStableEcosystem fires once both animal populations have held with a
// coefficient of variation under 20% for stableWindows windows.
func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	if stats.Herbivores < 10 || stats.Carnivores < 3 {
		bd.stableCount = 0
		return nil
	}
	history := bd.recent()
	if len(history) < 4 {
		return nil
	}
	history = history[len(history)-4:]
	herb := make([]float64, len(history))
	carn := make([]float64, len(history))
	for i, h := range history {
		herb[i] = float64(h.Herbivores)
		carn[i] = float64(h.Carnivores)
	}

	if lowVariation(herb) && lowVariation(carn) {
		bd.stableCount++
	} else {
		bd.stableCount = 0
	}
	if bd.stableCount != stableWindows {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkStableEcosystem,
		Description: fmt.Sprintf("stable with %d herbivores and %d carnivores", stats.Herbivores, stats.Carnivores),
	}
}

func lowVariation(xs []float64) bool {
	mean, std := stat.PopMeanStdDev(xs, nil)
	if mean == 0 {
		return false
	}
	return std/mean < 0.2
}
