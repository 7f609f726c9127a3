package controller

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/mathiascn/obs-controller/internal/platform/metrics"
)

// DefaultRetentionInterval is how often the periodic sweep enforces the cap.
const DefaultRetentionInterval = time.Minute

// RetentionManager keeps the aggregate size of the video directory under a
// byte cap by deleting the oldest files first. Enforcement is best-effort:
// OBS may write new files while a sweep runs, and a locked file is skipped
// rather than aborting the sweep.
type RetentionManager struct {
	index    *DirectoryIndex
	maxBytes int64
	interval time.Duration
	log      *slog.Logger
	metrics  *metrics.Metrics
	remove   func(string) error
}

// NewRetentionManager returns a manager that evicts files from index's
// directory once the total exceeds maxBytes. Metrics may be nil to disable
// metric recording (e.g. in tests). If interval <= 0,
// DefaultRetentionInterval is used for Run.
func NewRetentionManager(index *DirectoryIndex, maxBytes int64, interval time.Duration, log *slog.Logger, m *metrics.Metrics) *RetentionManager {
	if interval <= 0 {
		interval = DefaultRetentionInterval
	}
	return &RetentionManager{
		index:    index,
		maxBytes: maxBytes,
		interval: interval,
		log:      log,
		metrics:  m,
		remove:   os.Remove,
	}
}

// Run enforces the cap on a fixed interval until ctx is cancelled.
func (rm *RetentionManager) Run(ctx context.Context) {
	ticker := time.NewTicker(rm.interval)
	defer ticker.Stop()

	rm.log.Info("retention sweep started",
		slog.String("dir", rm.index.Dir()),
		slog.Int64("max_bytes", rm.maxBytes),
		slog.Duration("interval", rm.interval),
	)

	for {
		select {
		case <-ctx.Done():
			rm.log.Info("retention sweep stopped", slog.String("dir", rm.index.Dir()))
			return
		case <-ticker.C:
			rm.Enforce()
		}
	}
}

// Enforce deletes the oldest files (by creation time ascending) until the
// directory total is at or below the cap or no candidates remain. Failed
// deletions are logged and skipped; the freed estimate is only adjusted for
// files actually removed.
func (rm *RetentionManager) Enforce() {
	files := rm.index.scan()

	var total int64
	for _, f := range files {
		total += f.Size
	}
	if total <= rm.maxBytes {
		rm.log.Debug("video directory within cap",
			slog.Int64("total_bytes", total),
			slog.Int64("max_bytes", rm.maxBytes),
		)
		return
	}

	rm.log.Info("video directory over cap, evicting oldest files",
		slog.Int64("total_bytes", total),
		slog.Int64("max_bytes", rm.maxBytes),
	)

	// Stable sort keeps scan order for files with equal creation time.
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Created.Before(files[j].Created)
	})

	for _, oldest := range files {
		if total <= rm.maxBytes {
			break
		}
		if err := rm.remove(oldest.Path); err != nil {
			rm.log.Error("could not delete video",
				slog.String("path", oldest.Path),
				slog.String("error", err.Error()),
			)
			continue
		}
		total -= oldest.Size
		rm.log.Info("deleted old video",
			slog.String("path", oldest.Path),
			slog.Int64("freed_bytes", oldest.Size),
		)
		if rm.metrics != nil {
			rm.metrics.AddRetentionDelete(oldest.Size)
		}
	}
}
