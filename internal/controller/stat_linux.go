package controller

import (
	"os"
	"syscall"
	"time"
)

// fileTimes extracts the inode change time and last access time from the
// platform stat structure. The change time stands in for creation time,
// which Linux does not expose through os.FileInfo.
func fileTimes(info os.FileInfo) (created, accessed time.Time) {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		created = time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
		accessed = time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec))
		return created, accessed
	}
	return info.ModTime(), info.ModTime()
}
