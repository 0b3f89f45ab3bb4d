// Package sim implements a simulated multikernel operating system: a set of
// independent core kernels that communicate only through message passing.
// All observable behavior is narrated on a single output stream in the line
// vocabulary the monitor's parser understands.
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

const (
	DefaultCores     = 8
	defaultQueueSize = 100
	maxProcesses     = 64
)

// printer serializes output from concurrent core workers so lines never
// interleave mid-write.
type printer struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *printer) printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Config controls system construction. Zero values select the defaults.
type Config struct {
	Cores     int
	QueueSize int
	Out       io.Writer
}

// System owns the cores and provides the system-call surface the demo
// scenarios drive: process creation, migration, heartbeats and balancing.
type System struct {
	pr    *printer
	cores []*Core

	mu      sync.Mutex
	running bool
	nextPid int
}

func NewSystem(cfg Config) *System {
	if cfg.Cores <= 0 {
		cfg.Cores = DefaultCores
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	pr := &printer{out: cfg.Out}
	s := &System{pr: pr}

	s.cores = make([]*Core, 0, cfg.Cores)
	for i := 0; i < cfg.Cores; i++ {
		s.cores = append(s.cores, newCore(i, cfg.QueueSize, pr))
	}
	for _, c := range s.cores {
		c.setPeers(s.cores)
	}

	pr.printf("==================================================")
	pr.printf("  MULTIKERNEL OPERATING SYSTEM INITIALIZED")
	pr.printf("  Cores: %d", cfg.Cores)
	pr.printf("  Message Queue Size: %d", cfg.QueueSize)
	pr.printf("  Max Processes: %d", maxProcesses)
	pr.printf("==================================================")

	return s
}

func (s *System) CoreCount() int {
	return len(s.cores)
}

// Announce writes a line through the shared printer so caller narration
// never interleaves with concurrent core output.
func (s *System) Announce(format string, args ...interface{}) {
	s.pr.printf(format, args...)
}

func (s *System) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *System) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.pr.printf("[SYSTEM] Already running")
		return
	}
	s.running = true
	s.mu.Unlock()

	for _, c := range s.cores {
		c.Start()
	}

	s.pr.printf("")
	s.pr.printf("[SYSTEM] All cores started successfully")
	s.pr.printf("[SYSTEM] Message-passing infrastructure active")
	s.pr.printf("[SYSTEM] Ready for process creation")
	s.pr.printf("")
}

// Shutdown delivers a shutdown message to every core, then joins the
// workers. Safe to call more than once.
func (s *System) Shutdown() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.pr.printf("")
	s.pr.printf("[SYSTEM] Initiating shutdown...")

	for i, c := range s.cores {
		c.deliver(Message{Type: MsgShutdown, SourceCore: -1, DestCore: i, SentAt: time.Now()})
	}
	for _, c := range s.cores {
		c.Stop()
	}

	s.pr.printf("[SYSTEM] Shutdown complete")
}

// CreateProcess places a new process on the least-loaded core and returns
// its pid, or -1 when the system is not running.
func (s *System) CreateProcess(priority int) int {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.pr.printf("[SYSTEM] Cannot create process: system not running")
		return -1
	}
	pid := s.nextPid
	s.nextPid++
	s.mu.Unlock()

	target := s.leastLoadedCore()
	core := s.cores[target]
	core.createProcess(pid, priority)

	s.pr.printf("[SYSTEM] Process %d assigned to Core %d (load=%d)", pid, target, core.Load())
	return pid
}

// MigrateProcess moves pid from one core to another through the message
// layer. Reports whether the source core actually held the process.
func (s *System) MigrateProcess(pid, sourceCore, targetCore int) bool {
	if sourceCore < 0 || sourceCore >= len(s.cores) || targetCore < 0 || targetCore >= len(s.cores) {
		s.pr.printf("[SYSTEM] Invalid core for migration: %d -> %d", sourceCore, targetCore)
		return false
	}
	if sourceCore == targetCore {
		return false
	}
	return s.cores[sourceCore].MigrateProcess(pid, targetCore)
}

func (s *System) leastLoadedCore() int {
	best := 0
	min := int(^uint(0) >> 1)
	for i, c := range s.cores {
		if load := c.Load(); load < min {
			min = load
			best = i
		}
	}
	return best
}

// SendHeartbeats has core 0 ping every other core, exercising the message
// layer without touching process tables.
func (s *System) SendHeartbeats() {
	if !s.Running() {
		s.pr.printf("[SYSTEM] Cannot send heartbeats: system not running")
		return
	}

	s.pr.printf("[HEARTBEAT] Core 0 sending heartbeat to all other cores...")
	for i := 1; i < len(s.cores); i++ {
		s.cores[0].Send(Message{Type: MsgHeartbeat, SourceCore: 0, DestCore: i, SentAt: time.Now()})
		time.Sleep(100 * time.Millisecond)
	}
}

// SimulateResourceContention points several cores at one resource manager
// core, which then releases the resource back to each requester.
func (s *System) SimulateResourceContention() {
	if !s.Running() {
		s.pr.printf("[SYSTEM] Cannot simulate contention: system not running")
		return
	}
	if len(s.cores) < 2 {
		return
	}

	manager := len(s.cores) - 1
	if manager > 4 {
		manager = 4
	}

	s.pr.printf("[RESOURCE] Cores competing for shared resource on Core %d...", manager)

	var requesters []int
	for i := 0; i < len(s.cores) && len(requesters) < 4; i++ {
		if i != manager {
			requesters = append(requesters, i)
		}
	}

	for _, i := range requesters {
		s.cores[i].Send(Message{Type: MsgResourceRequest, SourceCore: i, DestCore: manager, SentAt: time.Now()})
		time.Sleep(150 * time.Millisecond)
	}
	for _, i := range requesters {
		s.cores[manager].Send(Message{Type: MsgResourceRelease, SourceCore: manager, DestCore: i, SentAt: time.Now()})
		time.Sleep(150 * time.Millisecond)
	}
}

// BalanceLoad migrates processes off cores loaded well above the average
// onto the least-loaded core.
func (s *System) BalanceLoad() {
	if !s.Running() {
		return
	}

	total := 0
	for _, c := range s.cores {
		total += c.Load()
	}
	if total == 0 {
		return
	}
	avg := float64(total) / float64(len(s.cores))

	s.pr.printf("[LOAD BALANCER] Average load: %.2f", avg)

	for i, c := range s.cores {
		load := c.Load()
		if float64(load) <= avg*1.5 {
			continue
		}

		s.pr.printf("[LOAD BALANCER] Core %d overloaded (load=%d)", i, load)
		target := s.leastLoadedCore()
		if target == i || float64(s.cores[target].Load()) >= avg {
			continue
		}

		if pid, ok := c.oldestProcess(); ok {
			s.pr.printf("[LOAD BALANCER] Migrating process %d from Core %d to Core %d", pid, i, target)
			c.MigrateProcess(pid, target)
		}
	}
}

// Totals aggregates the per-core counters.
type Totals struct {
	MessagesSent      uint64
	MessagesReceived  uint64
	ProcessesExecuted uint64
	ContextSwitches   uint64
}

func (s *System) Totals() Totals {
	var t Totals
	for _, c := range s.cores {
		st := c.Stats()
		t.MessagesSent += st.MessagesSent
		t.MessagesReceived += st.MessagesReceived
		t.ProcessesExecuted += st.ProcessesExecuted
		t.ContextSwitches += st.ContextSwitches
	}
	return t
}

// PrintStatistics emits the per-core counter blocks followed by the system
// totals, in the fixed-width layout the monitor's stats grammar expects.
func (s *System) PrintStatistics() {
	s.pr.printf("")
	s.pr.printf("========================================================")
	s.pr.printf("           MULTIKERNEL OS STATISTICS")
	s.pr.printf("========================================================")

	var totals Totals
	for i, c := range s.cores {
		st := c.Stats()
		s.pr.printf("")
		s.pr.printf("--- Core %d ---", i)
		s.pr.printf("  Current Load:      %d processes", st.CurrentLoad)
		s.pr.printf("  Messages Sent:     %d", st.MessagesSent)
		s.pr.printf("  Messages Received: %d", st.MessagesReceived)
		s.pr.printf("  Processes Executed:%d", st.ProcessesExecuted)
		s.pr.printf("  Context Switches:  %d", st.ContextSwitches)

		totals.MessagesSent += st.MessagesSent
		totals.MessagesReceived += st.MessagesReceived
		totals.ProcessesExecuted += st.ProcessesExecuted
		totals.ContextSwitches += st.ContextSwitches
	}

	s.pr.printf("")
	s.pr.printf("--- System Totals ---")
	s.pr.printf("  Total Messages Sent:     %d", totals.MessagesSent)
	s.pr.printf("  Total Messages Received: %d", totals.MessagesReceived)
	s.pr.printf("  Total Processes Executed:%d", totals.ProcessesExecuted)
	s.pr.printf("  Total Context Switches:  %d", totals.ContextSwitches)
	if totals.MessagesSent > 0 {
		rate := float64(totals.MessagesReceived) / float64(totals.MessagesSent) * 100
		s.pr.printf("  Message Delivery Rate:   %.2f%%", rate)
	}
	s.pr.printf("========================================================")
	s.pr.printf("")
}
