package sim

import (
	"math/rand"
	"sync"
	"time"
)

type MessageType int

const (
	MsgProcessCreate MessageType = iota
	MsgProcessMigrate
	MsgProcessTerminate
	MsgHeartbeat
	MsgResourceRequest
	MsgResourceRelease
	MsgShutdown
)

// Message is one unit of inter-core communication. Cores share nothing;
// every interaction between them travels as a Message.
type Message struct {
	Type       MessageType
	SourceCore int
	DestCore   int
	ProcessID  int
	Priority   int
	SentAt     time.Time
}

// CoreStats is the per-core counter snapshot reported in statistics blocks.
type CoreStats struct {
	CurrentLoad       int
	MessagesSent      uint64
	MessagesReceived  uint64
	ProcessesExecuted uint64
	ContextSwitches   uint64
}

type process struct {
	pid      int
	priority int
	cpuTime  time.Duration
}

// Core is one simulated kernel instance. It owns a private process table and
// a buffered message inbox drained by its worker goroutine.
type Core struct {
	id    int
	pr    *printer
	inbox chan Message
	peers []*Core

	mu        sync.Mutex
	running   bool
	processes []*process
	stats     CoreStats

	quit chan struct{}
	done chan struct{}
}

func newCore(id, queueSize int, pr *printer) *Core {
	return &Core{
		id:    id,
		pr:    pr,
		inbox: make(chan Message, queueSize),
	}
}

func (c *Core) setPeers(peers []*Core) {
	c.peers = peers
}

func (c *Core) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.quit = make(chan struct{})
	c.done = make(chan struct{})
	c.mu.Unlock()

	go c.worker()
	c.pr.printf("[Core %d] Started successfully", c.id)
}

func (c *Core) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	close(c.quit)
	<-c.done
	c.pr.printf("[Core %d] Stopped", c.id)
}

// Send routes a message into the destination core's inbox. A full inbox
// drops the message, mirroring a bounded hardware channel.
func (c *Core) Send(msg Message) {
	if msg.DestCore < 0 || msg.DestCore >= len(c.peers) {
		c.pr.printf("[Core %d] Invalid destination core: %d", c.id, msg.DestCore)
		return
	}

	if c.peers[msg.DestCore].deliver(msg) {
		c.mu.Lock()
		c.stats.MessagesSent++
		c.mu.Unlock()
	} else {
		c.pr.printf("[Core %d] Destination queue full", c.id)
	}
}

func (c *Core) deliver(msg Message) bool {
	select {
	case c.inbox <- msg:
		return true
	default:
		return false
	}
}

// Load reports the number of processes currently on this core.
func (c *Core) Load() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.processes)
}

func (c *Core) Stats() CoreStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Core) createProcess(pid, priority int) {
	c.mu.Lock()
	c.processes = append(c.processes, &process{pid: pid, priority: priority})
	c.stats.CurrentLoad = len(c.processes)
	c.mu.Unlock()

	c.pr.printf("[Core %d] Created process %d (priority=%d)", c.id, pid, priority)
}

// MigrateProcess removes the process from this core's table and ships it to
// the target core as a message.
func (c *Core) MigrateProcess(pid, targetCore int) bool {
	c.mu.Lock()
	idx := -1
	for i, p := range c.processes {
		if p.pid == pid {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return false
	}
	priority := c.processes[idx].priority
	c.processes = append(c.processes[:idx], c.processes[idx+1:]...)
	c.stats.CurrentLoad = len(c.processes)
	c.mu.Unlock()

	c.Send(Message{
		Type:       MsgProcessMigrate,
		SourceCore: c.id,
		DestCore:   targetCore,
		ProcessID:  pid,
		Priority:   priority,
		SentAt:     time.Now(),
	})

	c.pr.printf("[Core %d] Migrated process %d to Core %d", c.id, pid, targetCore)
	return true
}

// oldestProcess returns the longest-resident pid, if any. Used by the load
// balancer to pick a migration candidate.
func (c *Core) oldestProcess() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.processes) == 0 {
		return 0, false
	}
	return c.processes[0].pid, true
}

func (c *Core) worker() {
	defer close(c.done)

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-c.quit:
			return
		case <-ticker.C:
			if !c.drainInbox() {
				return
			}
			c.executeProcesses()
		}
	}
}

// drainInbox handles all queued messages. Returns false on shutdown.
func (c *Core) drainInbox() bool {
	for {
		select {
		case msg := <-c.inbox:
			c.mu.Lock()
			c.stats.MessagesReceived++
			c.mu.Unlock()

			if msg.Type == MsgShutdown {
				return false
			}
			c.processMessage(msg)
		default:
			return true
		}
	}
}

func (c *Core) processMessage(msg Message) {
	switch msg.Type {
	case MsgProcessCreate:
		c.createProcess(msg.ProcessID, msg.Priority)

	case MsgProcessMigrate:
		c.mu.Lock()
		c.processes = append(c.processes, &process{pid: msg.ProcessID, priority: msg.Priority})
		c.stats.CurrentLoad = len(c.processes)
		c.mu.Unlock()
		c.pr.printf("[Core %d] Received migrated process %d", c.id, msg.ProcessID)

	case MsgProcessTerminate:
		c.terminateProcess(msg.ProcessID)

	case MsgHeartbeat, MsgResourceRequest, MsgResourceRelease:
		// Counted on receipt, no further handling.

	default:
		c.pr.printf("[Core %d] Unknown message type: %d", c.id, msg.Type)
	}
}

func (c *Core) terminateProcess(pid int) {
	c.mu.Lock()
	for i, p := range c.processes {
		if p.pid == pid {
			c.processes = append(c.processes[:i], c.processes[i+1:]...)
			c.stats.CurrentLoad = len(c.processes)
			c.mu.Unlock()
			c.pr.printf("[Core %d] Terminated process %d", c.id, pid)
			return
		}
	}
	c.mu.Unlock()
}

// executeProcesses gives every resident process a slice of simulated cpu
// time. Long-running processes terminate with rising probability so demo
// load drains instead of growing without bound.
func (c *Core) executeProcesses() {
	c.mu.Lock()

	kept := c.processes[:0]
	terminated := 0
	for _, p := range c.processes {
		p.cpuTime += 50 * time.Millisecond
		c.stats.ProcessesExecuted++
		c.stats.ContextSwitches++

		if shouldTerminate(p.cpuTime) {
			terminated++
			continue
		}
		kept = append(kept, p)
	}
	c.processes = kept
	c.stats.CurrentLoad = len(c.processes)
	load := c.stats.CurrentLoad

	c.mu.Unlock()

	if terminated > 0 {
		c.pr.printf("[Core %d] Terminated %d processes (load now: %d)", c.id, terminated, load)
	}
}

func shouldTerminate(cpuTime time.Duration) bool {
	threshold := 80
	switch {
	case cpuTime > 600*time.Millisecond:
		threshold = 20
	case cpuTime > 300*time.Millisecond:
		threshold = 50
	case cpuTime > 150*time.Millisecond:
		threshold = 70
	}
	return rand.Intn(100)+1 > threshold
}
