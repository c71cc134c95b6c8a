package kzalloc

import "fmt"

import humanize "github.com/dustin/go-humanize"

import "github.com/Exfdr/KzAlloc/lib"

// Stats returns a snapshot of page-heap accounting: per-shard hot and
// cold page counts plus process totals. Shards are locked one at a time,
// the snapshot is not atomic across shards.
func Stats() map[string]interface{} {
	boot()
	stats := make(map[string]interface{})
	totalhot, totalcold := int64(0), int64(0)
	for _, shard := range heap.shards {
		shard.mu.Lock()
		hot, cold := shard.hotPages, shard.coldPages
		shard.mu.Unlock()
		stats[fmt.Sprintf("shard%v.hotpages", shard.shardID)] = hot
		stats[fmt.Sprintf("shard%v.coldpages", shard.shardID)] = cold
		totalhot += hot
		totalcold += cold
	}
	stats["shards"] = int64(len(heap.shards))
	stats["hotpages"] = totalhot
	stats["coldpages"] = totalcold
	return stats
}

// LogStatistics logs the current page-heap accounting with humanized
// byte counts, through the package logger.
func LogStatistics() {
	stats := Stats()
	hot := stats["hotpages"].(int64) << pageShift
	cold := stats["coldpages"].(int64) << pageShift
	infof("kzalloc hot %v cold %v over %v shards\n",
		humanize.Bytes(uint64(hot)), humanize.Bytes(uint64(cold)), stats["shards"])
	debugf("kzalloc stats %v\n", lib.Prettystats(stats, true))
}
