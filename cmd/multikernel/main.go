// Command multikernel runs the simulated multikernel operating system and
// narrates its activity on stdout. The monitor supervises this binary and
// reconstructs system state from that narration.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/PiusTetteh/301-GroupProject/internal/sim"
)

func main() {
	cores := flag.Int("cores", sim.DefaultCores, "number of simulated cores")
	loop := flag.Bool("loop", false, "repeat the demo scenarios until terminated")
	flag.Parse()

	system := sim.NewSystem(sim.Config{Cores: *cores})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		<-quit
		close(done)
	}()

	system.Start()

	d := &demo{system: system, done: done}
	for d.run() && *loop {
	}

	system.Shutdown()
}

// demo drives the scenario sequence. Every wait checks for shutdown so a
// signal interrupts mid-scenario instead of after the full cycle.
type demo struct {
	system *sim.System
	done   <-chan struct{}
}

func (d *demo) pause(dur time.Duration) bool {
	select {
	case <-d.done:
		return false
	case <-time.After(dur):
		return true
	}
}

func (d *demo) run() bool {
	scenarios := []struct {
		name string
		run  func() bool
	}{
		{"Basic multi-core operation", d.basicOperation},
		{"Inter-core message passing", d.messagePassing},
		{"Process migration", d.migration},
		{"Heartbeat messages", d.heartbeats},
		{"Resource contention", d.resourceContention},
		{"Load balancing", d.loadBalancing},
		{"Scalability stress", d.scalability},
	}

	for _, sc := range scenarios {
		d.system.Announce("")
		d.system.Announce("========== %s ==========", sc.name)
		if !sc.run() {
			return false
		}
		d.system.PrintStatistics()
	}
	return true
}

func (d *demo) basicOperation() bool {
	for i := 0; i < 8; i++ {
		d.system.CreateProcess((i % 5) + 1)
		if !d.pause(100 * time.Millisecond) {
			return false
		}
	}
	return d.pause(500 * time.Millisecond)
}

func (d *demo) messagePassing() bool {
	for i := 0; i < 12; i++ {
		d.system.CreateProcess((i % 5) + 1)
		if !d.pause(50 * time.Millisecond) {
			return false
		}
	}
	return d.pause(500 * time.Millisecond)
}

func (d *demo) migration() bool {
	pids := make([]int, 0, 6)
	for i := 0; i < 6; i++ {
		pids = append(pids, d.system.CreateProcess(5))
		if !d.pause(100 * time.Millisecond) {
			return false
		}
	}

	// Migrations may miss if the process already ran to completion; the
	// narration shows whatever actually happened.
	n := d.system.CoreCount()
	for i := 0; i < 3 && i < len(pids); i++ {
		d.system.MigrateProcess(pids[i], i%n, (i+4)%n)
		if !d.pause(200 * time.Millisecond) {
			return false
		}
	}
	return true
}

func (d *demo) heartbeats() bool {
	d.system.SendHeartbeats()
	return d.pause(500 * time.Millisecond)
}

func (d *demo) resourceContention() bool {
	d.system.SimulateResourceContention()
	return d.pause(500 * time.Millisecond)
}

func (d *demo) loadBalancing() bool {
	for i := 0; i < 10; i++ {
		d.system.CreateProcess((i % 3) + 1)
		if !d.pause(50 * time.Millisecond) {
			return false
		}
	}
	d.system.BalanceLoad()
	return d.pause(500 * time.Millisecond)
}

func (d *demo) scalability() bool {
	for i := 0; i < 20; i++ {
		d.system.CreateProcess((i % 5) + 1)
		if !d.pause(40 * time.Millisecond) {
			return false
		}
	}
	return d.pause(500 * time.Millisecond)
}
