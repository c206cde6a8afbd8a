package server

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-go-golems/qalog/pkg/helpers"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const DefaultPidFile = ".qalog.pid"

var (
	ErrAlreadyRunning = errors.New("server is already running")
	ErrNotRunning     = errors.New("server is not running")
)

// Supervisor manages a detached server process through a pid file.
type Supervisor struct {
	pidFile     string
	name        string
	args        []string
	logFile     string
	stopTimeout time.Duration
}

type SupervisorOption func(*Supervisor)

// WithCommand replaces the command started by Start. The default is the
// running executable with the "serve" subcommand.
func WithCommand(name string, args ...string) SupervisorOption {
	return func(s *Supervisor) {
		s.name = name
		s.args = args
	}
}

// WithArgs keeps the default executable and replaces its arguments.
func WithArgs(args ...string) SupervisorOption {
	return func(s *Supervisor) {
		s.args = args
	}
}

// WithLogFile sends the child's stdout and stderr to path.
func WithLogFile(path string) SupervisorOption {
	return func(s *Supervisor) {
		s.logFile = path
	}
}

func WithStopTimeout(d time.Duration) SupervisorOption {
	return func(s *Supervisor) {
		s.stopTimeout = d
	}
}

func NewSupervisor(pidFile string, options ...SupervisorOption) (*Supervisor, error) {
	s := &Supervisor{
		pidFile:     pidFile,
		args:        []string{"serve"},
		stopTimeout: 5 * time.Second,
	}
	for _, option := range options {
		option(s)
	}
	if s.name == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, errors.Wrap(err, "could not find executable")
		}
		s.name = exe
	}
	return s, nil
}

// Status returns the pid recorded in the pid file and whether that process
// is still alive. A missing pid file means not running.
func (s *Supervisor) Status() (int, bool, error) {
	b, err := os.ReadFile(s.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, errors.Wrapf(err, "could not read pid file %s", s.pidFile)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0, false, errors.Errorf("invalid pid file %s", s.pidFile)
	}
	return pid, processAlive(pid), nil
}

func (s *Supervisor) Start() (int, error) {
	pid, running, err := s.Status()
	if err != nil {
		return 0, err
	}
	if running {
		return pid, errors.Wrapf(ErrAlreadyRunning, "pid %d", pid)
	}

	cmd := exec.Command(s.name, s.args...)
	cmd.SysProcAttr = detachedProcAttr()
	if s.logFile != "" {
		if err := os.MkdirAll(filepath.Dir(s.logFile), 0o755); err != nil {
			return 0, errors.Wrap(err, "could not create log directory")
		}
		f, err := os.OpenFile(s.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return 0, errors.Wrapf(err, "could not open log file %s", s.logFile)
		}
		defer f.Close()
		cmd.Stdout = f
		cmd.Stderr = f
	}

	if err := cmd.Start(); err != nil {
		return 0, errors.Wrapf(err, "could not start %s", s.name)
	}
	pid = cmd.Process.Pid

	if err := helpers.WriteFileAtomic(s.pidFile, []byte(strconv.Itoa(pid)+"\n"), 0o644); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return 0, err
	}

	// reaps the child if this process outlives it
	go func() {
		_ = cmd.Wait()
	}()

	log.Info().Int("pid", pid).Str("pid_file", s.pidFile).Msg("started server")
	return pid, nil
}

// Stop sends SIGTERM, waits for the process to exit and kills it after the
// stop timeout. The pid file is removed, also when it was stale.
func (s *Supervisor) Stop() error {
	pid, running, err := s.Status()
	if err != nil {
		return err
	}
	if !running {
		if pid != 0 {
			log.Debug().Int("pid", pid).Msg("removing stale pid file")
			_ = os.Remove(s.pidFile)
		}
		return ErrNotRunning
	}

	p, err := os.FindProcess(pid)
	if err != nil {
		return errors.Wrapf(err, "could not find process %d", pid)
	}
	if err := terminate(p); err != nil {
		return errors.Wrapf(err, "could not signal process %d", pid)
	}

	deadline := time.Now().Add(s.stopTimeout)
	for processAlive(pid) {
		if time.Now().After(deadline) {
			log.Warn().Int("pid", pid).Msg("server did not stop in time, killing")
			if err := p.Kill(); err != nil {
				return errors.Wrapf(err, "could not kill process %d", pid)
			}
			break
		}
		time.Sleep(50 * time.Millisecond)
	}

	if err := os.Remove(s.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "could not remove pid file %s", s.pidFile)
	}
	log.Info().Int("pid", pid).Msg("stopped server")
	return nil
}

func (s *Supervisor) Restart() (int, error) {
	if err := s.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		return 0, err
	}
	return s.Start()
}
