// Package report renders a finished duel and its rewards as bounded text.
package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/reward"
)

// Mode selects how a report that exceeds MaxSize is degraded.
type Mode int

const (
	// ModePaginate splits the report into numbered pages.
	ModePaginate Mode = iota
	// ModeTruncate keeps the first and last action lines and elides the middle.
	ModeTruncate
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModePaginate:
		return "paginate"
	case ModeTruncate:
		return "truncate"
	default:
		return "unknown"
	}
}

// ParseMode parses "paginate" or "truncate".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paginate":
		return ModePaginate, nil
	case "truncate":
		return ModeTruncate, nil
	default:
		return 0, fmt.Errorf("report: unknown mode %q, want paginate or truncate", s)
	}
}

const (
	// DefaultMaxSize is the page size, in runes, used when none is given.
	DefaultMaxSize = 2000
	// MinMaxSize is the smallest page size honoured; smaller values are raised.
	MinMaxSize = 80
	// DefaultKeepLines is how many action lines truncation keeps at each end.
	DefaultKeepLines = 6
	// FallbackKeepLines is tried when DefaultKeepLines still does not fit.
	FallbackKeepLines = 3
)

// Options bounds and shapes the rendered report.
type Options struct {
	// MaxSize is the maximum size of one page in runes.
	MaxSize int
	Mode    Mode
	// KeepLines overrides DefaultKeepLines for ModeTruncate.
	KeepLines int
}

func (o Options) normalized() Options {
	if o.MaxSize <= 0 {
		o.MaxSize = DefaultMaxSize
	}
	o.MaxSize = max(o.MaxSize, MinMaxSize)
	if o.KeepLines <= 0 {
		o.KeepLines = DefaultKeepLines
	}
	return o
}

// Input is the data a report is rendered from.
type Input struct {
	Result *combat.Result
	// Rewards is nil when the duel was unresolved or the winner earns nothing.
	Rewards *reward.Result
	// ItemNames maps dropped item ids to display names; missing ids render as-is.
	ItemNames map[string]string
}

// Report is the rendered output. Pages has exactly one element unless the
// report was paginated.
type Report struct {
	Pages []string
	// Elided is the number of log entries dropped by truncation.
	Elided int
}

// String joins all pages with a blank line.
func (r Report) String() string {
	return strings.Join(r.Pages, "\n\n")
}

// Render formats in within opts.
//
// Precondition: in.Result must be non-nil.
// Postcondition: every page is at most opts.MaxSize runes (after
// normalization); identical inputs yield byte-identical pages.
func Render(in Input, opts Options) Report {
	opts = opts.normalized()

	blocks := group(in.Result.Log)
	lines := make([]string, len(blocks))
	for i, b := range blocks {
		lines[i] = b.line(in.Result)
	}
	summary := outcomeSection(in.Result) + rewardSection(in)

	full := compose(lines, summary)
	if runeLen(full) <= opts.MaxSize {
		return Report{Pages: []string{full}}
	}
	if opts.Mode == ModeTruncate {
		return truncate(blocks, lines, summary, opts)
	}
	return Report{Pages: paginate(lines, summary, opts.MaxSize)}
}

const noActions = "No actions were taken."

func compose(lines []string, summary string) string {
	return actionPart(lines) + "\n\n" + summary
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
