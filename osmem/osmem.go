package osmem

import "runtime"
import "sync/atomic"

// PageShift fixes the allocator page at 8KB. Every quantity exchanged
// with the core is expressed in these pages.
const PageShift = 13

// PageSize in bytes, derived from PageShift.
const PageSize = 1 << PageShift

// HugePageThreshold requests at or above this size make one opportunistic
// attempt at OS huge pages before falling back to standard pages.
const HugePageThreshold = 2 * 1024 * 1024

// Concurrency returns the number of CPUs usable by the process, consulted
// once at startup to size the page-heap shards and thread caches.
func Concurrency() int {
	return runtime.NumCPU()
}

var pausetick uint32

// Pause is the spin-wait relax hint used inside lock backoff loops. Go
// exposes no PAUSE instruction, an uncontended atomic load stands in as
// the cheapest non-eliminable tick.
func Pause() {
	_ = atomic.LoadUint32(&pausetick)
}

// Yield gives up the processor to the scheduler, the last rung of the
// spin-lock backoff ladder.
func Yield() {
	runtime.Gosched()
}
