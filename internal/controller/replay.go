package controller

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultSaveTimeout bounds how long a save waits for the replay file
	// to appear on disk.
	DefaultSaveTimeout = 5 * time.Minute

	// DefaultPollInterval is the sleep between directory polls while
	// confirming a save.
	DefaultPollInterval = time.Second
)

// ReplayController drives the OBS replay buffer through a Session and
// confirms saves by watching the video directory for a new file. The
// websocket acknowledgment for SaveReplayBuffer does not guarantee the file
// is flushed, so a new or changed newest file is the observable proxy for
// completion.
type ReplayController struct {
	session      *Session
	index        *DirectoryIndex
	saveTimeout  time.Duration
	pollInterval time.Duration
	log          *slog.Logger
}

// NewReplayController returns a controller bound to session and index.
// Non-positive timeout or interval values fall back to the defaults.
func NewReplayController(session *Session, index *DirectoryIndex, saveTimeout, pollInterval time.Duration, log *slog.Logger) *ReplayController {
	if saveTimeout <= 0 {
		saveTimeout = DefaultSaveTimeout
	}
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &ReplayController{
		session:      session,
		index:        index,
		saveTimeout:  saveTimeout,
		pollInterval: pollInterval,
		log:          log,
	}
}

// StartBuffer asks OBS to start the replay buffer. Success is the protocol
// acknowledgment; no file exists to verify against at start time.
func (rc *ReplayController) StartBuffer() error {
	return rc.session.Use(func(conn Conn) error {
		if err := conn.StartReplayBuffer(); err != nil {
			rc.log.Error("failed to start replay buffer", slog.String("error", err.Error()))
			return fmt.Errorf("start replay buffer: %w", err)
		}
		rc.log.Info("replay buffer started")
		return nil
	})
}

// StopBuffer asks OBS to stop the replay buffer.
func (rc *ReplayController) StopBuffer() error {
	return rc.session.Use(func(conn Conn) error {
		if err := conn.StopReplayBuffer(); err != nil {
			rc.log.Error("failed to stop replay buffer", slog.String("error", err.Error()))
			return fmt.Errorf("stop replay buffer: %w", err)
		}
		rc.log.Info("replay buffer stopped")
		return nil
	})
}

// SaveBuffer asks OBS to flush the replay buffer to disk and polls the video
// directory until a new newest file appears or the deadline elapses. On
// timeout it returns ErrSaveTimeout; the remote save request is not
// cancelled and may still complete later. ctx is only consulted between
// poll iterations.
//
// Two saves issued faster than the filesystem's mtime resolution can confuse
// the comparison; that window is accepted.
func (rc *ReplayController) SaveBuffer(ctx context.Context) error {
	return rc.session.Use(func(conn Conn) error {
		before, hadBefore := rc.index.Latest()

		if err := conn.SaveReplayBuffer(); err != nil {
			rc.log.Error("failed to request replay save", slog.String("error", err.Error()))
			return fmt.Errorf("save replay buffer: %w", err)
		}

		deadline := time.Now().Add(rc.saveTimeout)
		for !time.Now().After(deadline) {
			if after, ok := rc.index.Latest(); ok && (!hadBefore || after.Path != before.Path) {
				rc.log.Info("replay saved", slog.String("path", after.Path))
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(rc.pollInterval):
			}
		}

		rc.log.Warn("replay save not confirmed before deadline",
			slog.Duration("timeout", rc.saveTimeout))
		return ErrSaveTimeout
	})
}
