package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/PiusTetteh/301-GroupProject/internal/config"
	"github.com/PiusTetteh/301-GroupProject/internal/events"
	"github.com/PiusTetteh/301-GroupProject/internal/models"
	"github.com/PiusTetteh/301-GroupProject/internal/parser"
	"github.com/PiusTetteh/301-GroupProject/internal/state"
)

var (
	ErrAlreadyRunning = errors.New("system already running")
	ErrNotRunning     = errors.New("system not running")
	ErrStopTimeout    = errors.New("system did not stop in time")
)

// Supervisor owns the lifecycle of the kernel process. It spawns the
// configured command, feeds every captured output line through the parser
// into the store and the event sink, and reaps the process on exit.
type Supervisor struct {
	mu    sync.Mutex
	cfg   *config.MonitorConfig
	store *state.Store
	sink  events.Sink
	logs  *LogBuffer

	cmd      *exec.Cmd
	waitDone chan struct{}
}

// capturedLine is one output line tagged with its source stream. Stderr
// lines are logged but never parsed.
type capturedLine struct {
	text       string
	fromStderr bool
}

func NewSupervisor(cfg *config.MonitorConfig, store *state.Store, sink events.Sink) *Supervisor {
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Supervisor{
		cfg:   cfg,
		store: store,
		sink:  sink,
		logs:  NewLogBuffer(1000),
	}
}

// Start spawns the kernel process and launches the capture pipeline.
// Returns ErrAlreadyRunning while a session is active.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store.Running() {
		return ErrAlreadyRunning
	}

	cmd := exec.Command(s.cfg.Command, s.cfg.Args...)

	if s.cfg.Directory != "" {
		cmd.Dir = s.cfg.Directory
	}

	if len(s.cfg.Environment) > 0 {
		cmd.Env = os.Environ()
		for k, v := range s.cfg.Environment {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", s.cfg.Command, err)
	}

	if s.cfg.ResetOnStart {
		s.store.Reset()
	}
	s.store.MarkStarted()

	s.cmd = cmd
	s.waitDone = make(chan struct{})

	log.Printf("Kernel started: %s (PID %d)", s.cfg.Command, cmd.Process.Pid)

	lines := make(chan capturedLine, 256)

	var readers sync.WaitGroup
	readers.Add(2)
	go readStream(stdout, false, lines, &readers)
	go readStream(stderr, true, lines, &readers)
	go func() {
		readers.Wait()
		close(lines)
	}()

	go s.dispatch(cmd, lines, s.waitDone)

	return nil
}

// Stop sends the configured signal and waits up to the stop timeout for the
// kernel to exit. On timeout the process is killed and ErrStopTimeout is
// returned. Returns ErrNotRunning when no session is active.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Running() || s.cmd == nil || s.cmd.Process == nil {
		return ErrNotRunning
	}

	var sig syscall.Signal
	switch s.cfg.StopSignal {
	case "SIGKILL":
		sig = syscall.SIGKILL
	case "SIGINT":
		sig = syscall.SIGINT
	default:
		sig = syscall.SIGTERM
	}

	log.Printf("Sending %s to kernel (PID %d)", s.cfg.StopSignal, s.cmd.Process.Pid)

	if err := s.cmd.Process.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			// Exited between the running check and the signal. The
			// dispatcher reaps it and flips the state.
			return ErrNotRunning
		}
		return fmt.Errorf("signal kernel: %w", err)
	}

	select {
	case <-s.waitDone:
		log.Printf("Kernel stopped")
	case <-time.After(time.Duration(s.cfg.StopTimeout) * time.Second):
		log.Printf("Kernel did not stop within %ds, killing", s.cfg.StopTimeout)
		s.cmd.Process.Kill()
		s.store.MarkStopped()
		return ErrStopTimeout
	}

	s.store.MarkStopped()
	return nil
}

// Logs returns the most recent captured lines.
func (s *Supervisor) Logs(limit int) []models.LogEntry {
	return s.logs.GetLast(limit)
}

// LogsByLevel returns captured lines filtered by level ("info" for stdout,
// "error" for stderr).
func (s *Supervisor) LogsByLevel(level string, limit int) []models.LogEntry {
	return s.logs.GetByLevel(level, limit)
}

func readStream(r io.Reader, fromStderr bool, lines chan<- capturedLine, wg *sync.WaitGroup) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines <- capturedLine{text: scanner.Text(), fromStderr: fromStderr}
	}
	// A killed process surfaces as plain EOF here; anything else is a real
	// read fault worth a line in the server log.
	if err := scanner.Err(); err != nil {
		log.Printf("Output stream read error: %v", err)
	}
}

// dispatch is the single consumer of the capture pipeline. Lines are parsed,
// applied to the store and published in arrival order; once both streams
// close it reaps the process and marks the session stopped.
func (s *Supervisor) dispatch(cmd *exec.Cmd, lines <-chan capturedLine, done chan struct{}) {
	for line := range lines {
		level := "info"
		logEv := events.LogLine{Message: line.text, Timestamp: time.Now()}

		if line.fromStderr {
			level = "error"
		} else {
			var specific events.Event
			specific, logEv = parser.Classify(line.text)
			if specific != nil {
				s.store.Apply(specific)
				s.sink.Publish(specific)
			}
		}

		s.logs.Add(models.LogEntry{
			Timestamp: logEv.Timestamp.Format(time.RFC3339),
			Message:   logEv.Message,
			Level:     level,
		})
		s.sink.Publish(logEv)
	}

	err := cmd.Wait()
	close(done)

	// A new session may already have started if Stop escalated to a kill
	// and Start followed at once. Only flip the state for our own session.
	s.mu.Lock()
	if s.cmd == cmd {
		s.store.MarkStopped()
	}
	s.mu.Unlock()

	if err != nil {
		log.Printf("Kernel exited: %v", err)
	} else {
		log.Printf("Kernel exited normally")
	}
}
