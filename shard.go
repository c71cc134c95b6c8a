package kzalloc

import "sync"
import "unsafe"

import "github.com/Exfdr/KzAlloc/osmem"

// pageShard owns a partition of the page heap: hot and cold free lists,
// a span-metadata pool and the release budget. Every operation runs under
// the shard mutex, a blocking mutex because critical sections include OS
// calls for decommit and allocation. Spans born here are stamped with the
// shard id and always return here; coalescing never crosses shards.
type pageShard struct {
	mu sync.Mutex

	// hot: physical backing committed.
	smallHot [npages]spanList
	largeHot largeTable

	// cold: backing advised away, virtual range retained.
	smallCold [npages]spanList
	largeCold largeTable

	pool *objectPool // span metadata and sentinels

	hotPages  int64
	coldPages int64
	threshold int64 // demote above this many hot pages

	shardID uint8
	pmap    *pageMap
}

func newPageShard(id uint8, threshold int64, pmap *pageMap) *pageShard {
	shard := &pageShard{
		pool:      newObjectPool(spansize),
		threshold: threshold,
		shardID:   id,
		pmap:      pmap,
	}
	for i := 1; i < npages; i++ {
		shard.smallHot[i].init(shard.pool)
		shard.smallCold[i].init(shard.pool)
	}
	shard.largeHot.init(shard.pool)
	shard.largeCold.init(shard.pool)
	return shard
}

// newspan allocates one span metadata object.
func (shard *pageShard) newspan() *span {
	return (*span)(shard.pool.allocptr())
}

// mapborders publishes the sparse first/last page mapping used for free
// spans, enough for neighbours to find them while coalescing.
func (shard *pageShard) mapborders(s *span) {
	shard.pmap.set(s.pageID, s)
	shard.pmap.set(s.pageID+uint64(s.npages)-1, s)
}

// mapall publishes every page of an in-use span.
func (shard *pageShard) mapall(s *span) {
	for i := uint64(0); i < uint64(s.npages); i++ {
		shard.pmap.set(s.pageID+i, s)
	}
}

// newSpan fulfils a request for k pages. The retry loop discards ghost
// entries left in the large tables by lazy erasure and re-enters.
func (shard *pageShard) newSpan(k int64) *span {
	if k <= 0 {
		panicerr("pageShard.newSpan: %v pages", k)
	}
	shard.mu.Lock()
	defer shard.mu.Unlock()

	for {
		// Phase 1: hot exact or split.
		if k < npages {
			for i := k; i < npages; i++ {
				if !shard.smallHot[i].empty() {
					return shard.allocFromHot(&shard.smallHot[i], k)
				}
			}
		} else {
			if n, list, ok := shard.largeHot.lowerBound(k); ok {
				if s := shard.allocFromLarge(&shard.largeHot, n, list, k, false); s != nil {
					return s
				}
				continue // ghost entry erased, retry
			}
		}

		// Phase 2: cold exact or split. A cold span found here is
		// reactivated, the OS faults in fresh zero pages on first write.
		if k < npages {
			for i := k; i < npages; i++ {
				if !shard.smallCold[i].empty() {
					return shard.allocFromCold(&shard.smallCold[i], k)
				}
			}
		}
		if !shard.largeCold.empty() {
			if n, list, ok := shard.largeCold.lowerBound(k); ok {
				if s := shard.allocFromLarge(&shard.largeCold, n, list, k, true); s != nil {
					return s
				}
				continue
			}
		}

		// Phase 3: grow from the OS.
		if k >= npages {
			ptr := osmem.Alloc(k)
			if ptr == nil {
				panic(ErrorOutofMemory)
			}
			s := shard.newspan()
			s.pageID = uint64(uintptr(ptr)) >> pageShift
			s.npages = k
			s.inUse = true
			s.shardID = shard.shardID
			shard.mapall(s)
			return s
		}

		// Small request: batch npages-1 pages into the hot array and let
		// the next iteration carve from it.
		ptr := osmem.Alloc(npages - 1)
		if ptr == nil {
			panic(ErrorOutofMemory)
		}
		debugf("kzalloc shard %v grew %v pages from OS\n", shard.shardID, npages-1)
		batch := shard.newspan()
		batch.pageID = uint64(uintptr(ptr)) >> pageShift
		batch.npages = npages - 1
		batch.shardID = shard.shardID
		shard.mapborders(batch)
		shard.smallHot[batch.npages].pushFront(batch)
		shard.hotPages += batch.npages
	}
}

// allocFromHot pops a span of >= k pages from a hot list, carves off k
// pages and returns the residual to the hot structures.
func (shard *pageShard) allocFromHot(list *spanList, k int64) *span {
	s := list.popFront()
	shard.hotPages -= s.npages
	if s.npages > k {
		shard.splitresidual(s, k, false)
	}
	shard.mapall(s)
	s.inUse, s.isCold = true, false
	return s
}

// allocFromCold pops a cold span, reactivates the allocated part and
// keeps any residual cold. Cold spans never contribute to the hot
// counter, and the allocated part transitions straight to in-use.
func (shard *pageShard) allocFromCold(list *spanList, k int64) *span {
	s := list.popFront()
	shard.coldPages -= s.npages
	if s.npages > k {
		shard.splitresidual(s, k, true)
	}
	shard.mapall(s)
	s.inUse, s.isCold = true, false
	return s
}

// allocFromLarge serves k pages from a large table list. A nil return
// means the list was a ghost entry: the key has been erased and the
// caller must retry.
func (shard *pageShard) allocFromLarge(t *largeTable, n int64, list *spanList, k int64, cold bool) *span {
	s := list.popFront()
	if s == nil {
		t.erase(n)
		return nil
	}
	if cold {
		shard.coldPages -= s.npages
	} else {
		shard.hotPages -= s.npages
	}
	if s.npages > k {
		shard.splitresidual(s, k, cold)
	}
	shard.mapall(s)
	s.inUse, s.isCold = true, false
	return s
}

// splitresidual carves s down to k pages and files the residual in the
// hot or cold structures, inheriting the donor's temperature.
func (shard *pageShard) splitresidual(s *span, k int64, cold bool) {
	rest := shard.newspan()
	rest.pageID = s.pageID + uint64(k)
	rest.npages = s.npages - k
	rest.isCold = cold
	rest.shardID = shard.shardID
	s.npages = k

	shard.insertfree(rest, cold)
	shard.mapborders(rest)
}

// insertfree files a free span into the small array or large table of
// the matching temperature and maintains the page counters.
func (shard *pageShard) insertfree(s *span, cold bool) {
	switch {
	case cold && s.npages < npages:
		shard.smallCold[s.npages].pushFront(s)
		shard.coldPages += s.npages
	case cold:
		shard.largeCold.get(s.npages).pushFront(s)
		shard.coldPages += s.npages
	case s.npages < npages:
		shard.smallHot[s.npages].pushFront(s)
		shard.hotPages += s.npages
	default:
		shard.largeHot.get(s.npages).pushFront(s)
		shard.hotPages += s.npages
	}
}

// releaseSpan accepts a span back, coalesces with free same-shard
// neighbours on both sides, files the merged span hot and demotes if the
// shard is over budget.
func (shard *pageShard) releaseSpan(s *span) {
	shard.mu.Lock()
	defer shard.mu.Unlock()

	// coalesce left
	for {
		left := shard.pmap.get(s.pageID - 1)
		if left == nil || left.inUse || left.shardID != shard.shardID {
			break
		}
		left.unlink()
		if left.isCold {
			shard.coldPages -= left.npages
		} else {
			shard.hotPages -= left.npages
		}
		s.pageID = left.pageID
		s.npages += left.npages
		shard.pool.freeptr(unsafe.Pointer(left))
	}

	// coalesce right
	for {
		right := shard.pmap.get(s.pageID + uint64(s.npages))
		if right == nil || right.inUse || right.shardID != shard.shardID {
			break
		}
		right.unlink()
		if right.isCold {
			shard.coldPages -= right.npages
		} else {
			shard.hotPages -= right.npages
		}
		s.npages += right.npages
		shard.pool.freeptr(unsafe.Pointer(right))
	}

	// Merging reactivates: the span may absorb cold parts, it still goes
	// back on the hot lists and demotion will cool it again if unused.
	s.inUse, s.isCold = false, false
	shard.mapborders(s)
	shard.insertfree(s, false)

	if shard.hotPages > shard.threshold {
		shard.demote()
	}
}

// demote moves hot spans to cold, largest first, until the hot counter
// drops back to the threshold. Walking the small array downward spares
// the hottest one- and two-page spans.
func (shard *pageShard) demote() {
	for shard.hotPages > shard.threshold && !shard.largeHot.empty() {
		n, list, _ := shard.largeHot.largest()
		if list.empty() {
			shard.largeHot.erase(n)
			continue
		}
		shard.demotespan(list.popFront())
	}

	if shard.hotPages <= shard.threshold {
		return
	}
	for i := int64(npages - 1); i > 0; i-- {
		list := &shard.smallHot[i]
		for shard.hotPages > shard.threshold && !list.empty() {
			shard.demotespan(list.popFront())
		}
		if shard.hotPages <= shard.threshold {
			break
		}
	}
}

// demotespan decommits one span and files it cold. The radix mapping is
// left as is, neighbours keep finding the span for coalescing.
func (shard *pageShard) demotespan(s *span) {
	shard.hotPages -= s.npages
	s.isCold = true
	osmem.Decommit(s.base(), s.npages<<pageShift)
	debugf("kzalloc shard %v demoted %v pages to cold\n", shard.shardID, s.npages)

	if s.npages < npages {
		shard.smallCold[s.npages].pushFront(s)
	} else {
		shard.largeCold.get(s.npages).pushFront(s)
	}
	shard.coldPages += s.npages
}
