package kzalloc

import "math"
import "sync"
import "unsafe"

import s "github.com/bnclabs/gosettings"

import "github.com/Exfdr/KzAlloc/api"
import "github.com/Exfdr/KzAlloc/lib"
import "github.com/Exfdr/KzAlloc/osmem"

// process-wide singletons, built once on first use. Shards, buckets and
// thread caches are anchored here so the garbage collector keeps them
// alive for the life of the process.
var bootonce sync.Once
var settsmu sync.Mutex
var usersetts s.Settings

var pmap *pageMap
var heap *pageHeap
var central *centralCache
var caches []*threadCache
var cachemask uint64

// Configure overrides Defaultsettings for the allocator singleton. Must
// be called before the first allocation; later calls are ignored with a
// warning.
func Configure(setts s.Settings) {
	settsmu.Lock()
	defer settsmu.Unlock()
	if pmap != nil {
		warnf("kzalloc: Configure after first use, ignored\n")
		return
	}
	usersetts = setts
}

func boot() {
	bootonce.Do(func() {
		settsmu.Lock()
		setts := Defaultsettings()
		if usersetts != nil {
			setts = setts.Mixin(usersetts)
		}
		settsmu.Unlock()

		initsizemap()
		pm := newPageMap()
		heap = newPageHeap(setts, pm)
		central = newCentralCache(heap, pm)

		cores := osmem.Concurrency()
		if cores <= 0 {
			cores = 8
		}
		count := nextpow2(uint64(cores) * 2)
		caches = make([]*threadCache, count)
		for i := range caches {
			caches[i] = newThreadCache(central)
		}
		cachemask = count - 1
		pmap = pm
	})
}

// threadcache routes the calling goroutine to the cache of its current
// OS thread.
func threadcache() *threadCache {
	return caches[(osmem.ThreadID()*0x9e3779b97f4a7c15)>>32&cachemask]
}

// Malloc allocates size bytes and returns a pointer aligned to at least
// 8 bytes; requests above MaxSmallBytes are page-aligned. Panics with
// ErrorOutofMemory when the OS refuses to supply memory.
func Malloc(size int64) unsafe.Pointer {
	boot()
	if size < 0 {
		panicerr("Malloc: negative size %v", size)
	}
	if size > MaxSmallBytes {
		aligned := roundup(size)
		sp := heap.newSpan(aligned >> pageShift)
		sp.objSize = aligned
		sp.inUse = true
		return sp.base()
	}
	return threadcache().alloc(size)
}

// Free releases a pointer returned by Malloc, resolving its size through
// the radix map. Panics on a pointer this allocator never handed out.
func Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	boot()
	sp := pmap.get(uint64(uintptr(ptr)) >> pageShift)
	if sp == nil {
		panicerr("Free: unmapped pointer %v", ptr)
	}
	if sp.objSize > MaxSmallBytes {
		heap.releaseSpan(sp)
		return
	}
	threadcache().free(ptr, sp.objSize)
}

// FreeSized releases a pointer whose request size the caller still
// knows, skipping the radix lookup for small classes.
func FreeSized(ptr unsafe.Pointer, size int64) {
	if ptr == nil {
		return
	}
	if size > MaxSmallBytes {
		Free(ptr)
		return
	}
	boot()
	threadcache().free(ptr, size)
}

// ReallocSized resizes an allocation whose original request size the
// caller knows. Same-class and shrinking requests return ptr unchanged;
// growth allocates, copies the caller-known old size and frees.
func ReallocSized(ptr unsafe.Pointer, oldsize, newsize int64) unsafe.Pointer {
	if ptr == nil {
		return Malloc(newsize)
	}
	if newsize == 0 {
		FreeSized(ptr, oldsize)
		return nil
	}
	boot()

	oldaligned, newaligned := roundup(oldsize), roundup(newsize)
	if newaligned == oldaligned {
		return ptr
	}
	if newaligned < oldaligned {
		// lazy shrink, keep the block rather than churn
		return ptr
	}

	newptr := Malloc(newsize)
	lib.Memcpy(newptr, ptr, int(oldsize))
	FreeSized(ptr, oldsize)
	return newptr
}

// Realloc resizes an allocation, recovering the old size from the radix
// map. The copy covers the whole old block including rounding padding.
func Realloc(ptr unsafe.Pointer, newsize int64) unsafe.Pointer {
	if ptr == nil {
		return Malloc(newsize)
	}
	if newsize == 0 {
		Free(ptr)
		return nil
	}
	boot()
	sp := pmap.get(uint64(uintptr(ptr)) >> pageShift)
	if sp == nil {
		panicerr("Realloc: unmapped pointer %v", ptr)
	}
	return ReallocSized(ptr, sp.objSize, newsize)
}

// MallocN allocates room for n elements of elemsize bytes, panicking
// with ErrorOverflow when the product overflows.
func MallocN(n, elemsize int64) unsafe.Pointer {
	if n < 0 || elemsize < 0 {
		panicerr("MallocN: negative dimensions %v x %v", n, elemsize)
	}
	if elemsize > 0 && n > math.MaxInt64/elemsize {
		panic(ErrorOverflow)
	}
	return Malloc(n * elemsize)
}

// Drain flushes every thread cache's free lists back to the central
// cache, letting idle spans return to the page heap where they coalesce
// and cool past the release threshold. Thread caches live for the whole
// process, so this is the retirement hook: embedders call it when a
// worker pool winds down or at idle points to hand cached blocks back.
func Drain() {
	boot()
	for _, tc := range caches {
		tc.drain()
	}
}

// Chunklen returns the usable length of an allocated block, its rounded
// class size or its page-rounded size for large allocations.
func Chunklen(ptr unsafe.Pointer) int64 {
	boot()
	sp := pmap.get(uint64(uintptr(ptr)) >> pageShift)
	if sp == nil {
		panicerr("Chunklen: unmapped pointer %v", ptr)
	}
	return sp.objSize
}

// Heap exposes the process-wide allocator as an api.Allocator value, for
// callers that inject allocators rather than call package functions.
type Heap struct{}

// Alloc implement api.Allocator{} interface.
func (h Heap) Alloc(n int64) unsafe.Pointer { return Malloc(n) }

// AllocN implement api.Allocator{} interface.
func (h Heap) AllocN(n, elemsize int64) unsafe.Pointer { return MallocN(n, elemsize) }

// Free implement api.Allocator{} interface.
func (h Heap) Free(ptr unsafe.Pointer) { Free(ptr) }

// FreeSized implement api.Allocator{} interface.
func (h Heap) FreeSized(ptr unsafe.Pointer, n int64) { FreeSized(ptr, n) }

// Realloc implement api.Allocator{} interface.
func (h Heap) Realloc(ptr unsafe.Pointer, n int64) unsafe.Pointer { return Realloc(ptr, n) }

// ReallocSized implement api.Allocator{} interface.
func (h Heap) ReallocSized(ptr unsafe.Pointer, oldn, newn int64) unsafe.Pointer {
	return ReallocSized(ptr, oldn, newn)
}

// Chunklen implement api.Allocator{} interface.
func (h Heap) Chunklen(ptr unsafe.Pointer) int64 { return Chunklen(ptr) }

// Drain implement api.Allocator{} interface.
func (h Heap) Drain() { Drain() }

// Stats implement api.Allocator{} interface.
func (h Heap) Stats() map[string]interface{} { return Stats() }

var _ api.Allocator = Heap{}
