package controller

import (
	"errors"
	"log/slog"
	"os"
	"testing"
)

// testLogger returns a logger that stays quiet below error level.
func testLogger(t *testing.T) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeSupervisor reports a fixed liveness state.
type fakeSupervisor struct {
	running    bool
	launches   int
	terminates int
}

func (f *fakeSupervisor) IsRunning() bool { return f.running }
func (f *fakeSupervisor) Launch()         { f.launches++ }
func (f *fakeSupervisor) Terminate()      { f.terminates++ }

// fakeConn records calls and returns configured errors. onSave runs before
// SaveReplayBuffer returns, letting tests drop a file into the directory the
// way OBS would.
type fakeConn struct {
	startErr   error
	stopErr    error
	saveErr    error
	closeErr   error
	version    string
	versionErr error
	onSave     func()

	starts int
	stops  int
	saves  int
	closes int
}

func (f *fakeConn) StartReplayBuffer() error {
	f.starts++
	return f.startErr
}

func (f *fakeConn) StopReplayBuffer() error {
	f.stops++
	return f.stopErr
}

func (f *fakeConn) SaveReplayBuffer() error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	if f.onSave != nil {
		f.onSave()
	}
	return nil
}

func (f *fakeConn) Version() (string, error) {
	return f.version, f.versionErr
}

func (f *fakeConn) Close() error {
	f.closes++
	return f.closeErr
}

// fakeDialer hands out conn, or fails with dialErr.
type fakeDialer struct {
	conn    *fakeConn
	dialErr error
	dials   int
}

func (f *fakeDialer) Dial(host string, port int, password string) (Conn, error) {
	f.dials++
	if f.dialErr != nil {
		return nil, f.dialErr
	}
	return f.conn, nil
}

var errFake = errors.New("fake failure")
