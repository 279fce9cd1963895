package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCombatSurge        BookmarkType = "combat_surge"
	BookmarkPopulationCrash    BookmarkType = "population_crash"
	BookmarkPopulationRecovery BookmarkType = "population_recovery"
	BookmarkStablePopulation   BookmarkType = "stable_population"
)

// Bookmark marks a day worth a closer look.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Day         int          `csv:"day"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("bookmark",
		"type", string(b.Type),
		"day", b.Day,
		"description", b.Description,
	)
}

// BookmarkDetector watches day stats for notable population dynamics.
type BookmarkDetector struct {
	history     []DayStats
	historySize int
	historyIdx  int
	historyFull bool

	recentMin       int // population trough since the last recovery
	recentPeak      int // population peak since the last crash
	stableDaysCount int
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable population detection
	}
	return &BookmarkDetector{
		history:     make([]DayStats, historySize),
		historySize: historySize,
		recentMin:   -1,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats DayStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(DayStats) *Bookmark{
			bd.checkCombatSurge,
			bd.checkCrash,
			bd.checkRecovery,
			bd.checkStable,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}

	bd.addToHistory(stats)
	if bd.recentMin < 0 || stats.Population < bd.recentMin {
		bd.recentMin = stats.Population
	}
	bd.recentPeak = max(bd.recentPeak, stats.Population)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats DayStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns the recorded days oldest first.
func (bd *BookmarkDetector) recent() []DayStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]DayStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

// checkCombatSurge fires when kills exceed twice the rolling average.
func (bd *BookmarkDetector) checkCombatSurge(stats DayStats) *Bookmark {
	history := bd.recent()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.Killed
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	if float64(stats.Killed) > avg*2 && stats.Killed >= 3 {
		return &Bookmark{
			Type:        BookmarkCombatSurge,
			Day:         stats.Day,
			Description: fmt.Sprintf("%d combat deaths, %.1fx the average of %.1f", stats.Killed, float64(stats.Killed)/avg, avg),
		}
	}
	return nil
}

// checkCrash fires when the population drops over 30% below its peak.
func (bd *BookmarkDetector) checkCrash(stats DayStats) *Bookmark {
	if bd.recentPeak == 0 {
		return nil
	}

	drop := 1 - float64(stats.Population)/float64(bd.recentPeak)
	if drop > 0.30 && stats.Population < bd.recentPeak-10 {
		oldPeak := bd.recentPeak
		bd.recentPeak = stats.Population
		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Day:         stats.Day,
			Description: fmt.Sprintf("Population crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.Population),
		}
	}
	return nil
}

// checkRecovery fires when a population that fell to a handful triples.
func (bd *BookmarkDetector) checkRecovery(stats DayStats) *Bookmark {
	if bd.recentMin < 1 || bd.recentMin > 10 {
		return nil
	}

	if stats.Population >= bd.recentMin*3 && stats.Population >= 20 {
		oldMin := bd.recentMin
		bd.recentMin = stats.Population
		return &Bookmark{
			Type:        BookmarkPopulationRecovery,
			Day:         stats.Day,
			Description: fmt.Sprintf("Population recovered from %d to %d", oldMin, stats.Population),
		}
	}
	return nil
}

// checkStable fires once after five consecutive days whose recent
// population varies by less than 20%.
func (bd *BookmarkDetector) checkStable(stats DayStats) *Bookmark {
	if stats.Population < 10 {
		bd.stableDaysCount = 0
		return nil
	}

	history := bd.recent()
	if len(history) < 4 {
		return nil
	}

	counts := make([]float64, 4)
	for i, h := range history[len(history)-4:] {
		counts[i] = float64(h.Population)
	}
	mean := stat.Mean(counts, nil)
	cv := 0.0
	if mean > 0 {
		cv = stat.PopStdDev(counts, nil) / mean
	}

	if cv < 0.2 {
		bd.stableDaysCount++
	} else {
		bd.stableDaysCount = 0
	}

	if bd.stableDaysCount == 5 {
		return &Bookmark{
			Type:        BookmarkStablePopulation,
			Day:         stats.Day,
			Description: fmt.Sprintf("Stable population of %d over 5+ days", stats.Population),
		}
	}
	return nil
}
