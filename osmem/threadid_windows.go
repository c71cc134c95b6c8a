//go:build windows

package osmem

import "golang.org/x/sys/windows"

// ThreadID returns the id of the OS thread the calling goroutine is
// currently running on.
func ThreadID() uint64 {
	return uint64(windows.GetCurrentThreadId())
}
