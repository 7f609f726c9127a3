package controller

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// writeVideoNow creates a file and waits briefly so the next file gets a
// strictly later creation time.
func writeVideoNow(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := writeVideo(t, dir, name, size, time.Time{})
	time.Sleep(20 * time.Millisecond)
	return path
}

func TestRetentionManager_Enforce(t *testing.T) {
	t.Run("evicts_oldest_until_under_cap", func(t *testing.T) {
		dir := t.TempDir()
		clipA := writeVideoNow(t, dir, "clipA.mp4", 100)
		clipB := writeVideoNow(t, dir, "clipB.mp4", 50)

		rm := NewRetentionManager(ix(t, dir), 120, 0, testLogger(t), nil)
		rm.Enforce()

		if _, err := os.Stat(clipA); !os.IsNotExist(err) {
			t.Errorf("clipA (oldest) should be deleted, stat err=%v", err)
		}
		if _, err := os.Stat(clipB); err != nil {
			t.Errorf("clipB should survive: %v", err)
		}
		if got := ix(t, dir).TotalSize(); got > 120 {
			t.Errorf("total %d exceeds cap 120", got)
		}
	})

	t.Run("under_cap_is_noop", func(t *testing.T) {
		dir := t.TempDir()
		clip := writeVideoNow(t, dir, "clip.mp4", 50)

		rm := NewRetentionManager(ix(t, dir), 100, 0, testLogger(t), nil)
		rm.Enforce()

		if _, err := os.Stat(clip); err != nil {
			t.Errorf("file under cap should survive: %v", err)
		}
	})

	t.Run("empty_directory_is_noop", func(t *testing.T) {
		rm := NewRetentionManager(ix(t, t.TempDir()), 100, 0, testLogger(t), nil)
		rm.Enforce()
	})

	t.Run("survivors_are_newest_suffix", func(t *testing.T) {
		dir := t.TempDir()
		names := []string{"1.mp4", "2.mp4", "3.mp4", "4.mp4"}
		for _, name := range names {
			writeVideoNow(t, dir, name, 25)
		}

		// Cap of 50 keeps exactly the two newest files.
		rm := NewRetentionManager(ix(t, dir), 50, 0, testLogger(t), nil)
		rm.Enforce()

		for _, name := range names[:2] {
			if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
				t.Errorf("%s should be deleted, stat err=%v", name, err)
			}
		}
		for _, name := range names[2:] {
			if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
				t.Errorf("%s should survive: %v", name, err)
			}
		}
	})

	t.Run("failed_deletion_is_skipped", func(t *testing.T) {
		dir := t.TempDir()
		clipA := writeVideoNow(t, dir, "clipA.mp4", 100)
		clipB := writeVideoNow(t, dir, "clipB.mp4", 50)
		clipC := writeVideoNow(t, dir, "clipC.mp4", 50)

		rm := NewRetentionManager(ix(t, dir), 120, 0, testLogger(t), nil)
		rm.remove = func(path string) error {
			if path == clipA {
				return errFake
			}
			return os.Remove(path)
		}
		rm.Enforce()

		// clipA's failure must not count as freed bytes: the sweep still
		// needs both clipB and clipC gone to get 200 under the cap.
		if _, err := os.Stat(clipA); err != nil {
			t.Errorf("clipA survives its failed deletion: %v", err)
		}
		if _, err := os.Stat(clipB); !os.IsNotExist(err) {
			t.Errorf("clipB should be deleted, stat err=%v", err)
		}
		if _, err := os.Stat(clipC); !os.IsNotExist(err) {
			t.Errorf("clipC should be deleted, stat err=%v", err)
		}
	})

	t.Run("terminates_when_all_deletions_fail", func(t *testing.T) {
		dir := t.TempDir()
		writeVideoNow(t, dir, "a.mp4", 10)
		writeVideoNow(t, dir, "b.mp4", 10)

		rm := NewRetentionManager(ix(t, dir), 5, 0, testLogger(t), nil)
		removes := 0
		rm.remove = func(string) error {
			removes++
			return errFake
		}
		rm.Enforce()

		if removes != 2 {
			t.Errorf("expected the sweep to try every candidate once, got %d attempts", removes)
		}
		if got := ix(t, dir).TotalSize(); got != 20 {
			t.Errorf("no file should be gone, total=%d", got)
		}
	})

	t.Run("cap_zero_clears_directory", func(t *testing.T) {
		dir := t.TempDir()
		writeVideoNow(t, dir, "a.mp4", 10)
		writeVideoNow(t, dir, "b.mp4", 10)

		rm := NewRetentionManager(ix(t, dir), 0, 0, testLogger(t), nil)
		rm.Enforce()

		if got := ix(t, dir).TotalSize(); got != 0 {
			t.Errorf("expected empty directory, got %d bytes", got)
		}
	})
}

func TestNewRetentionManager_defaultInterval(t *testing.T) {
	rm := NewRetentionManager(ix(t, t.TempDir()), 100, 0, testLogger(t), nil)
	if rm.interval != DefaultRetentionInterval {
		t.Errorf("interval: got %v, want %v", rm.interval, DefaultRetentionInterval)
	}
}
