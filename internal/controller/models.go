package controller

import "time"

// VideoFileInfo is a point-in-time snapshot of one video file's identity.
// Two snapshots are compared by Path to detect a new file; values are
// produced on each directory scan and never persisted.
type VideoFileInfo struct {
	Path     string
	Size     int64
	ModTime  time.Time
	Created  time.Time
	Accessed time.Time
}
