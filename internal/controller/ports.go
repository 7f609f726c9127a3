package controller

// Conn is a single live control-plane connection to OBS. Responses are not
// interpreted beyond success or failure, except the version string.
type Conn interface {
	StartReplayBuffer() error
	StopReplayBuffer() error
	SaveReplayBuffer() error
	Version() (string, error)
	Close() error
}

// Dialer opens control-plane connections to the OBS websocket server.
type Dialer interface {
	Dial(host string, port int, password string) (Conn, error)
}

// Supervisor reports and controls the external OBS process.
type Supervisor interface {
	// IsRunning reports whether a process matching the configured
	// executable name is currently alive on the host.
	IsRunning() bool

	// Launch starts the OBS process if it is not already running. Failures
	// are logged, not returned; callers re-check IsRunning to confirm.
	Launch()

	// Terminate requests termination of the tracked process handle.
	// Safe to call when nothing is running.
	Terminate()
}
