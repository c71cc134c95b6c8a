package kzalloc

import "unsafe"

// releaseSafety bounds the walk over a returned block chain. A cycle in
// the chain means a double free; fail fast instead of spinning forever
// under the bucket lock.
const releaseSafety = 1 << 20

// centralBucket is one size class worth of spans plus its spin mutex,
// padded out to its own cache line.
type centralBucket struct {
	mu   spinMutex
	list spanList
	_    [48]byte // pad to one cache line
}

// centralCache brokers batches of fixed-size blocks between thread
// caches and the page heap, one bucket per size class.
type centralCache struct {
	buckets [MaxClasses]centralBucket
	pool    *objectPool // bucket sentinels
	heap    *pageHeap
	pmap    *pageMap
}

func newCentralCache(heap *pageHeap, pmap *pageMap) *centralCache {
	cc := &centralCache{
		pool: newObjectPool(spansize),
		heap: heap,
		pmap: pmap,
	}
	for i := range cc.buckets {
		cc.buckets[i].list.init(cc.pool)
	}
	return cc
}

// fetchRange hands out up to n blocks of the class serving `size` as a
// pre-linked chain. Returns the chain head, tail and the actual count,
// always at least 1. The raw size indexes the bucket directly, roundup
// happens only on the cold path when a new span must be carved.
func (cc *centralCache) fetchRange(n, size int64) (head, tail unsafe.Pointer, actual int64) {
	bucket := &cc.buckets[classindex(size)]
	bucket.mu.lock()

	sp := cc.getonespan(bucket, size)

	head = sp.freeList
	tail = head
	actual = 1
	for actual < n && nextblock(tail) != nil {
		tail = nextblock(tail)
		actual++
	}
	sp.freeList = nextblock(tail)
	setnextblock(tail, nil)
	sp.useCount += actual

	bucket.mu.unlock()
	return head, tail, actual
}

// getonespan finds a span with blocks to hand out, carving a fresh one
// from the page heap when the bucket runs dry. The bucket lock is
// dropped across the page-heap call and the carve.
func (cc *centralCache) getonespan(bucket *centralBucket, size int64) *span {
	for it := bucket.list.head.next; it != bucket.list.head; it = it.next {
		if it.freeList != nil {
			return it
		}
	}

	bucket.mu.unlock()

	aligned := roundup(size)
	sp := cc.heap.newSpan(spanpages(aligned))
	sp.inUse = true
	sp.objSize = aligned
	cc.carve(sp, aligned)

	bucket.mu.lock()
	bucket.list.pushFront(sp)
	return sp
}

// carve lays an intrusive free list through the span at the aligned
// block stride. The final partial remainder, if any, is left unused so
// every block is whole.
func (cc *centralCache) carve(sp *span, aligned int64) {
	base := uintptr(sp.base())
	bytes := uintptr(sp.npages) << pageShift
	last := base + bytes - uintptr(aligned)

	sp.freeList = unsafe.Pointer(base)
	tail := base
	for cur := base + uintptr(aligned); cur <= last; cur += uintptr(aligned) {
		setnextblock(unsafe.Pointer(tail), unsafe.Pointer(cur))
		tail = cur
	}
	setnextblock(unsafe.Pointer(tail), nil)
}

// releaseList walks a chain of returned blocks, files each into its
// span's free list and returns fully-idle spans to their origin shard.
// The bucket lock is dropped around the shard call to preserve the
// bucket -> shard lock order.
func (cc *centralCache) releaseList(head unsafe.Pointer, size int64) {
	bucket := &cc.buckets[classindex(size)]
	bucket.mu.lock()

	walked := 0
	for head != nil {
		if walked++; walked > releaseSafety {
			panicerr("releaseList: block chain too long, double free?")
		}
		next := nextblock(head)

		id := uint64(uintptr(head)) >> pageShift
		sp := cc.pmap.get(id)
		if sp == nil {
			panicerr("releaseList: unmapped block %v", head)
		}

		setnextblock(head, sp.freeList)
		sp.freeList = head
		sp.useCount--

		if sp.useCount == 0 {
			sp.unlink()
			sp.freeList = nil

			bucket.mu.unlock()
			cc.heap.releaseSpan(sp)
			bucket.mu.lock()
		}
		head = next
	}
	bucket.mu.unlock()
}
