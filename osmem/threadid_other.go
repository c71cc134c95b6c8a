//go:build !linux && !windows

package osmem

// ThreadID falls back to a constant on platforms without a cheap thread-id
// query. All goroutines then share one cache shard, which is slower under
// contention but still correct.
func ThreadID() uint64 {
	return 0
}
