package snapshot

import (
	"time"

	"golang.org/x/sys/unix"
)

func defaultNow() int64 {
	return time.Now().Unix()
}

// readNonBlocking reads into buf, translating EAGAIN/EWOULDBLOCK into a
// zero-length result with the errNoData sentinel, so callers can tell
// "nothing pending" apart from a genuine read error.
func readNonBlocking(fd int, buf []byte) (int, error) {
	n, err := unix.Read(fd, buf)
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
		return 0, errNoData
	}
	return n, err
}

var errNoData = errNoDataSentinel{}

type errNoDataSentinel struct{}

func (errNoDataSentinel) Error() string { return "snapshot: no data pending on self-pipe" }

// Close releases the self-pipe's write end only; it neither unregisters
// nor closes the read end.
func (s *Snapshotter) Close() error {
	return s.pipeWrite.Close()
}
