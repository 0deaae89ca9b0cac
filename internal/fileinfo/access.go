package fileinfo

import (
	"time"

	"github.com/djherbis/times"
)

// LastAccessed returns the access time recorded by the filesystem. The
// second result is false when the file cannot be stat'ed or the platform
// does not track access times.
func LastAccessed(path string) (time.Time, bool) {
	ts, err := times.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	at := ts.AccessTime()
	if at.IsZero() {
		return time.Time{}, false
	}
	return at, true
}
