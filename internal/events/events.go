// Package events defines the typed events derived from the supervised
// kernel's output, and the sink interface they are delivered through.
//
// Every captured line produces a LogLine; lines the grammar recognizes
// additionally produce a specific event. Sinks receive both, in the order
// the lines were read.
package events

import "time"

// Event is one typed unit of information derived from a line of kernel
// output. Name is the identifier used on the outbound feed.
type Event interface {
	Name() string
}

// ProcessCreated reports a process placed on a core, with the core's load
// as reported at placement time.
type ProcessCreated struct {
	Pid  int `json:"pid"`
	Core int `json:"core"`
	Load int `json:"load"`
}

func (ProcessCreated) Name() string { return "process_created" }

// CoreStatsHeader marks the start of a per-core statistics block. The header
// itself carries no values; it only identifies the core.
type CoreStatsHeader struct {
	Core int `json:"core"`
}

func (CoreStatsHeader) Name() string { return "core_stats" }

// LogLine is the raw captured line. Produced for every line regardless of
// whether a more specific event also fired.
type LogLine struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func (LogLine) Name() string { return "log" }

// Sink receives events for delivery to observers. Implementations must not
// block and must swallow delivery errors; the monitoring loop fires and
// forgets.
type Sink interface {
	Publish(Event)
}

// NopSink drops every event. Used when no observer transport is wired.
type NopSink struct{}

func (NopSink) Publish(Event) {}
