package kzalloc

import "os"
import "strconv"

import s "github.com/bnclabs/gosettings"

import "github.com/Exfdr/KzAlloc/osmem"

// pageHeap routes span traffic to shards. Allocation routes by a hash of
// the calling OS thread's id, release routes by the span's origin shard,
// which keeps coalescing correct without any cross-shard locking.
type pageHeap struct {
	shards []*pageShard
	mask   uint64
}

func newPageHeap(setts s.Settings, pmap *pageMap) *pageHeap {
	cores := osmem.Concurrency()
	if cores <= 0 {
		cores = 8
	}
	target := int64(cores) * 2
	if cores >= 32 {
		target = int64(cores) * 4
	}
	if n := setts.Int64("shards"); n > 0 {
		target = n
	}
	count := nextpow2(uint64(target))

	threshold := shardthreshold(setts, int64(count))

	heap := &pageHeap{
		shards: make([]*pageShard, count),
		mask:   count - 1,
	}
	for i := range heap.shards {
		heap.shards[i] = newPageShard(uint8(i), threshold, pmap)
	}
	infof("kzalloc page heap: %v shards, threshold %v pages/shard\n", count, threshold)
	return heap
}

// shardthreshold computes the per-shard release budget: a quarter of
// physical memory capped at 4GB, spread over the shards, floored at 4096
// pages. Settings and the environment override the computed value, the
// environment winning.
func shardthreshold(setts s.Settings, shardcount int64) int64 {
	maxcache := osmem.PhysicalMemory() / 4
	if hardlimit := uint64(4) << 30; maxcache > hardlimit {
		maxcache = hardlimit
	}
	threshold := int64(maxcache>>pageShift) / shardcount
	if threshold < 4096 {
		threshold = 4096
	}
	if n := setts.Int64("shard.threshold.pages"); n > 0 {
		threshold = n
	}
	if env := os.Getenv(EnvShardThreshold); env != "" {
		if n, err := strconv.ParseInt(env, 10, 64); err == nil && n > 0 {
			threshold = n
		}
	}
	return threshold
}

// routeindex picks a shard for the calling thread. The thread id is
// mixed so adjacent ids spread across shards.
func (heap *pageHeap) routeindex() uint64 {
	return (osmem.ThreadID() * 0x9e3779b97f4a7c15) >> 32 & heap.mask
}

// newSpan allocates k pages from the routed shard and stamps the origin
// shard id, redundantly with the shard's own stamp, for defense.
func (heap *pageHeap) newSpan(k int64) *span {
	idx := heap.routeindex()
	s := heap.shards[idx].newSpan(k)
	s.shardID = uint8(idx)
	return s
}

// releaseSpan returns a span to the shard it was born from.
func (heap *pageHeap) releaseSpan(s *span) {
	if s == nil {
		return
	}
	idx := int(s.shardID)
	if idx >= len(heap.shards) {
		panicerr("releaseSpan: shard id %v out of range", idx)
	}
	heap.shards[idx].releaseSpan(s)
}
