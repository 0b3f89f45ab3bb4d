// Package parser classifies lines of kernel output into typed events.
//
// Classification is an ordered grammar: each rule pairs a pattern with a
// constructor, rules are tried in order, and the first matching rule wins.
// Patterns are unanchored, so a match anywhere in the line counts (kernel
// lines carry prefixes like "[SYSTEM]"). A line that matches no rule, or
// matches a keyword without the expected numeric groups, simply produces no
// specific event; classification never fails.
package parser

import (
	"regexp"
	"strconv"
	"time"

	"github.com/PiusTetteh/301-GroupProject/internal/events"
)

// rule is one grammar entry. build may return nil for patterns that are
// recognized but deliberately produce nothing; a nil result still consumes
// the line so later rules are not consulted.
type rule struct {
	pattern *regexp.Regexp
	build   func(m []string) events.Event
}

var grammar = []rule{
	{
		// e.g. "[SYSTEM] Process 7 assigned to Core 2 (load=40)"
		pattern: regexp.MustCompile(`Process (\d+) assigned to Core (\d+) \(load=(\d+)\)`),
		build: func(m []string) events.Event {
			pid, err := strconv.Atoi(m[1])
			if err != nil {
				return nil
			}
			core, err := strconv.Atoi(m[2])
			if err != nil {
				return nil
			}
			load, err := strconv.Atoi(m[3])
			if err != nil {
				return nil
			}
			return events.ProcessCreated{Pid: pid, Core: core, Load: load}
		},
	},
	{
		// Recognized but inert: message totals are not folded into any
		// counter. The rule still consumes the line.
		pattern: regexp.MustCompile(`Messages Sent:\s+(\d+)`),
		build:   func(m []string) events.Event { return nil },
	},
	{
		// e.g. "--- Core 3 ---" opening a per-core statistics block.
		pattern: regexp.MustCompile(`--- Core (\d+) ---`),
		build: func(m []string) events.Event {
			core, err := strconv.Atoi(m[1])
			if err != nil {
				return nil
			}
			return events.CoreStatsHeader{Core: core}
		},
	},
}

// Classify runs one line through the grammar. The first return value is the
// specific event, or nil when no rule produced one. The second is the log
// event, produced for every line with the original text intact.
func Classify(line string) (events.Event, events.LogLine) {
	var specific events.Event
	for _, r := range grammar {
		if m := r.pattern.FindStringSubmatch(line); m != nil {
			specific = r.build(m)
			break
		}
	}
	return specific, events.LogLine{Message: line, Timestamp: time.Now()}
}
