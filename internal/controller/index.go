package controller

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// videoExt is the extension of replay files OBS writes to the save directory.
const videoExt = ".mp4"

// DirectoryIndex answers read-only queries over the managed video directory.
// Scan errors (missing directory, permission denied, transient I/O) are
// logged and treated as empty results so that callers on the monitoring path
// never fail on filesystem hiccups.
type DirectoryIndex struct {
	dir string
	log *slog.Logger
}

// NewDirectoryIndex returns an index over dir.
func NewDirectoryIndex(dir string, log *slog.Logger) *DirectoryIndex {
	return &DirectoryIndex{dir: dir, log: log}
}

// Dir returns the managed directory path.
func (ix *DirectoryIndex) Dir() string {
	return ix.dir
}

// Latest returns the video file with the maximum modification time, or
// ok=false if the directory is empty or unreadable. Ties resolve to the
// first file encountered in scan order.
func (ix *DirectoryIndex) Latest() (latest VideoFileInfo, ok bool) {
	files := ix.scan()
	if len(files) == 0 {
		return VideoFileInfo{}, false
	}

	latest = files[0]
	for _, f := range files[1:] {
		if f.ModTime.After(latest.ModTime) {
			latest = f
		}
	}
	return latest, true
}

// TotalSize returns the sum of file sizes of all video files in the
// directory; 0 for an empty or missing directory.
func (ix *DirectoryIndex) TotalSize() int64 {
	var total int64
	for _, f := range ix.scan() {
		total += f.Size
	}
	return total
}

// scan reads the directory and snapshots every video file. Entries that
// disappear between listing and stat are skipped.
func (ix *DirectoryIndex) scan() []VideoFileInfo {
	entries, err := os.ReadDir(ix.dir)
	if err != nil {
		ix.log.Warn("video directory scan failed", slog.String("dir", ix.dir), slog.String("error", err.Error()))
		return nil
	}

	files := make([]VideoFileInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), videoExt) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		created, accessed := fileTimes(info)
		files = append(files, VideoFileInfo{
			Path:     filepath.Join(ix.dir, entry.Name()),
			Size:     info.Size(),
			ModTime:  info.ModTime(),
			Created:  created,
			Accessed: accessed,
		})
	}
	return files
}
