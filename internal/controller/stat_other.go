//go:build !linux

package controller

import (
	"os"
	"time"
)

// fileTimes falls back to the modification time on platforms where the stat
// structure is not portable. Retention ordering degrades to mtime order,
// which matches creation order for files OBS writes once and never touches.
func fileTimes(info os.FileInfo) (created, accessed time.Time) {
	return info.ModTime(), info.ModTime()
}
