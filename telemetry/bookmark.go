package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/coop/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkMassPanic     BookmarkType = "mass_panic"
	BookmarkFeedingFrenzy BookmarkType = "feeding_frenzy"
	BookmarkCoopRush      BookmarkType = "coop_rush"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	RunID       string       `csv:"run_id"`
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	SimTimeSec  float64      `csv:"sim_time"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"sim_time", b.SimTimeSec,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// Edge triggers: a bookmark fires when the condition starts holding
	panicking bool
	rushing   bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, cfg config.BookmarksConfig) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkMassPanic(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkFeedingFrenzy(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkCoopRush(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)

	for i := range bookmarks {
		bookmarks[i].RunID = stats.RunID
		bookmarks[i].Tick = stats.WindowEndTick
		bookmarks[i].SimTimeSec = stats.SimTimeSec
	}
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkMassPanic(stats WindowStats) *Bookmark {
	scared := stats.Panicking + stats.Fleeing
	if bd.cfg.MassPanic <= 0 || scared < bd.cfg.MassPanic {
		bd.panicking = false
		return nil
	}
	if bd.panicking {
		return nil
	}
	bd.panicking = true
	return &Bookmark{
		Type:        BookmarkMassPanic,
		Description: fmt.Sprintf("%d of %d birds panicking or fleeing", scared, stats.Agents),
	}
}

func (bd *BookmarkDetector) checkFeedingFrenzy(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 || stats.SeedsEaten < bd.cfg.FrenzyMinEaten {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.SeedsEaten
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return &Bookmark{
			Type:        BookmarkFeedingFrenzy,
			Description: fmt.Sprintf("%d seeds eaten after %d quiet windows", stats.SeedsEaten, len(history)),
		}
	}

	if float64(stats.SeedsEaten) > avg*bd.cfg.FrenzyMultiplier {
		return &Bookmark{
			Type:        BookmarkFeedingFrenzy,
			Description: fmt.Sprintf("%d seeds eaten, %.1fx average (%.1f)", stats.SeedsEaten, float64(stats.SeedsEaten)/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkCoopRush(stats WindowStats) *Bookmark {
	if bd.cfg.CoopRush <= 0 || stats.CoopArrivals < bd.cfg.CoopRush {
		bd.rushing = false
		return nil
	}
	if bd.rushing {
		return nil
	}
	bd.rushing = true
	return &Bookmark{
		Type:        BookmarkCoopRush,
		Description: fmt.Sprintf("%d birds reached the coop in one window", stats.CoopArrivals),
	}
}
