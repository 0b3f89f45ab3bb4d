package models

import "time"

// CoreRecord is the tracked state of one kernel core. Load is the most
// recently reported figure (overwritten, never accumulated); Processes is
// the append-only list of pids placed on the core this run.
type CoreRecord struct {
	Load      int   `json:"load"`
	Processes []int `json:"processes"`
}

// ProcessRecord is one process placement. Immutable once created.
type ProcessRecord struct {
	Pid       int       `json:"pid"`
	Core      int       `json:"core"`
	Timestamp time.Time `json:"timestamp"`
}

// StatMap holds per-core statistic values keyed by name. The statistics
// headers in the kernel output create entries; the values arrive on
// follow-up lines that are not parsed yet, so maps stay empty for now.
type StatMap map[string]float64

// MessageRecord is an observed inter-core message. Reserved: no parser rule
// produces these yet, but the stats endpoint already counts them.
type MessageRecord struct {
	Source    int       `json:"source"`
	Dest      int       `json:"dest"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// Status summarizes the system for the status endpoint.
type Status struct {
	Running   bool       `json:"running"`
	StartTime *time.Time `json:"start_time"`
	Cores     int        `json:"cores"`
	Processes int        `json:"processes"`
}

// Stats is the detailed statistics report.
type Stats struct {
	Cores          map[int]CoreRecord `json:"cores"`
	Stats          map[int]StatMap    `json:"stats"`
	TotalProcesses int                `json:"total_processes"`
	TotalMessages  int                `json:"total_messages"`
}

// LogEntry is one captured output line as held in the log buffer.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Level     string `json:"level"`
}
