// Package process supervises the external OBS Studio process: liveness by
// executable name, launch with a fixed argument set, and termination of the
// tracked handle.
package process

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	gops "github.com/shirou/gopsutil/v3/process"
)

// launchArgs keep OBS out of the way when driven remotely: start minimized,
// never self-update, never prompt about unclean shutdowns, and select the
// managed recording profile.
func launchArgs(profile string) []string {
	return []string{
		"--minimize-to-tray",
		"--disable-updater",
		"--disable-shutdown-check",
		"--profile", profile,
	}
}

// Supervisor tracks at most one spawned OBS process. The handle is owned
// from spawn until Terminate or program exit and never shared.
type Supervisor struct {
	binDir  string
	exeName string
	profile string
	log     *slog.Logger

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewSupervisor returns a supervisor for the executable exeName inside
// binDir, launching with the given OBS profile selected.
func NewSupervisor(binDir, exeName, profile string, log *slog.Logger) *Supervisor {
	return &Supervisor{
		binDir:  binDir,
		exeName: exeName,
		profile: profile,
		log:     log,
	}
}

// Installed reports whether the OBS executable exists at the expected path.
func (s *Supervisor) Installed() bool {
	_, err := os.Stat(filepath.Join(s.binDir, s.exeName))
	return err == nil
}

// IsRunning reports whether any process on the host matches the configured
// executable name. Processes that cannot be inspected are skipped.
func (s *Supervisor) IsRunning() bool {
	procs, err := gops.Processes()
	if err != nil {
		s.log.Error("process list failed", slog.String("error", err.Error()))
		return false
	}
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if strings.EqualFold(name, s.exeName) {
			return true
		}
	}
	return false
}

// Launch starts OBS if it is not already running. Launch failures are
// logged, not returned; callers re-check IsRunning to confirm success.
func (s *Supervisor) Launch() {
	if s.IsRunning() {
		s.log.Info("obs process is already running")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.binDir, s.exeName)
	cmd := exec.Command(path, launchArgs(s.profile)...)
	// OBS resolves plugins and locale data relative to its bin directory.
	cmd.Dir = s.binDir

	if err := cmd.Start(); err != nil {
		s.log.Error("failed to start obs",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}

	s.cmd = cmd
	s.log.Info("obs started", slog.Int("pid", cmd.Process.Pid), slog.String("profile", s.profile))

	// Reap the child when it exits so it never lingers as a zombie.
	go func() {
		_ = cmd.Wait()
	}()
}

// Terminate kills the tracked process handle if one exists. Safe to call
// repeatedly and when nothing was launched.
func (s *Supervisor) Terminate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil || s.cmd.Process == nil {
		s.log.Debug("no obs process to terminate")
		return
	}

	if err := s.cmd.Process.Kill(); err != nil {
		s.log.Error("failed to terminate obs", slog.String("error", err.Error()))
	} else {
		s.log.Info("obs process terminated", slog.Int("pid", s.cmd.Process.Pid))
	}
	s.cmd = nil
}
