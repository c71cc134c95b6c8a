//go:build linux

package osmem

import "golang.org/x/sys/unix"

// ThreadID returns the id of the OS thread the calling goroutine is
// currently running on. Goroutines migrate between threads, the id is a
// routing hint for per-thread caches, never a correctness anchor.
func ThreadID() uint64 {
	return uint64(unix.Gettid())
}
