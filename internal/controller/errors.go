package controller

import "errors"

var (
	// ErrProcessNotRunning is returned by session-dependent operations when
	// the OBS process is not alive on the host.
	ErrProcessNotRunning = errors.New("obs process is not running")

	// ErrNotConnected is returned by session-dependent operations when no
	// live websocket session exists.
	ErrNotConnected = errors.New("not connected to obs websocket")

	// ErrConnectionFailed is returned when opening or closing a websocket
	// session fails at the protocol level.
	ErrConnectionFailed = errors.New("obs websocket connection failed")

	// ErrSaveTimeout is returned when a replay save request was issued but no
	// new video file appeared on disk before the configured deadline.
	ErrSaveTimeout = errors.New("timed out waiting for saved replay file")
)
