package kzalloc

import "unsafe"

// threadCache is the allocator front-end: one free list per size class,
// reached through a spin mutex that is uncontended while the owning
// thread keeps hitting the same cache. Refills follow the slow-start
// schedule, over-long lists drain back to the central cache.
type threadCache struct {
	mu      spinMutex
	lists   [MaxClasses]blockList
	central *centralCache
}

func newThreadCache(central *centralCache) *threadCache {
	tc := &threadCache{central: central}
	for i := range tc.lists {
		tc.lists[i].maxsize = 1
		tc.lists[i].maxnum = batchmax(i)
	}
	return tc
}

// alloc serves one block of the class covering size.
func (tc *threadCache) alloc(size int64) unsafe.Pointer {
	class := classindex(size)
	tc.mu.lock()
	list := &tc.lists[class]
	if !list.empty() {
		ptr := list.pop()
		tc.mu.unlock()
		return ptr
	}
	ptr := tc.fetchfromcentral(list, size)
	tc.mu.unlock()
	return ptr
}

// fetchfromcentral refills the list with a slow-start batch and returns
// the first block. Called with tc.mu held.
func (tc *threadCache) fetchfromcentral(list *blockList, size int64) unsafe.Pointer {
	batch := list.maxsize << 1
	if batch > list.maxnum {
		batch = list.maxnum
	}
	list.maxsize = batch

	head, tail, actual := tc.central.fetchRange(batch, size)
	if actual < 1 {
		panicerr("threadCache: central cache returned %v blocks", actual)
	}
	if actual > 1 {
		list.pushRange(nextblock(head), tail, actual-1)
	}
	return head
}

// free files one block, shedding the oldest maxnum blocks back to the
// central cache when the list reaches maxsize+maxnum.
func (tc *threadCache) free(ptr unsafe.Pointer, size int64) {
	if ptr == nil {
		panicerr("threadCache.free: nil pointer")
	}
	class := classindex(size)
	tc.mu.lock()
	list := &tc.lists[class]
	list.push(ptr)
	if list.size >= list.maxsize+list.maxnum {
		// keep the newest blocks at the head, cut the oldest maxnum
		// blocks off the tail end.
		keep := list.size - list.maxnum
		last := list.head
		for i := int64(1); i < keep; i++ {
			last = nextblock(last)
		}
		head := nextblock(last)
		setnextblock(last, nil)
		list.tail, list.size = last, keep
		tc.mu.unlock()
		tc.central.releaseList(head, size)
		return
	}
	tc.mu.unlock()
}

// drain flushes every class list back to the central cache, so cached
// blocks return to circulation instead of idling here. Caches live for
// the whole process; the facade's Drain fans out over all of them.
func (tc *threadCache) drain() {
	for class := range tc.lists {
		tc.mu.lock()
		list := &tc.lists[class]
		if list.empty() {
			tc.mu.unlock()
			continue
		}
		head, _ := list.popRange(list.size)
		size := classtosize[class]
		tc.mu.unlock()
		tc.central.releaseList(head, size)
	}
}
