package kzalloc

import "fmt"
import "runtime"
import "testing"
import "unsafe"

var _ = fmt.Sprintf("dummy")

func TestAlignmentSweep(t *testing.T) {
	for size := int64(1); size <= 4096; size++ {
		ptr := Malloc(size)
		if ptr == nil {
			t.Fatalf("Malloc(%v) failed", size)
		}
		if x := uintptr(ptr) & 7; x != 0 {
			t.Fatalf("Malloc(%v): %v not 8-byte aligned", size, ptr)
		}
		Free(ptr)
	}
}

func TestLargeRoundtrip(t *testing.T) {
	size := int64(1 << 20)
	ptr := Malloc(size)
	if ptr == nil {
		t.Fatalf("Malloc(%v) failed", size)
	}
	if x := uintptr(ptr) & (pageSize - 1); x != 0 {
		t.Fatalf("large allocation %v not page aligned", ptr)
	}
	buf := unsafe.Slice((*byte)(ptr), size)
	buf[0], buf[size-1] = 'A', 'Z'
	if buf[0] != 'A' || buf[size-1] != 'Z' {
		t.Errorf("expected %v %v, got %v %v", 'A', 'Z', buf[0], buf[size-1])
	}
	Free(ptr)

	// a fresh region of the same size must be writable end to end
	ptr = Malloc(size)
	buf = unsafe.Slice((*byte)(ptr), size)
	buf[0], buf[size-1] = 'A', 'Z'
	Free(ptr)
}

func TestSameThreadReuse(t *testing.T) {
	// pin to one OS thread so both calls route to the same cache
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ptr := Malloc(48)
	Free(ptr)
	if x := Malloc(48); x != ptr {
		t.Errorf("expected %v, got %v", ptr, x)
	} else {
		Free(x)
	}
}

func TestFreeSized(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ptr := Malloc(100)
	FreeSized(ptr, 100)
	if x := Malloc(100); x != ptr {
		t.Errorf("expected %v, got %v", ptr, x)
	} else {
		FreeSized(x, 100)
	}

	big := Malloc(MaxSmallBytes + 1)
	FreeSized(big, MaxSmallBytes+1) // falls back to the unsized path
}

func TestChunklen(t *testing.T) {
	ptr := Malloc(13)
	if x := Chunklen(ptr); x != 16 {
		t.Errorf("expected %v, got %v", 16, x)
	}
	Free(ptr)

	ptr = Malloc(MaxSmallBytes + 1)
	if x := Chunklen(ptr); x != MaxSmallBytes+pageSize {
		t.Errorf("expected %v, got %v", MaxSmallBytes+pageSize, x)
	}
	Free(ptr)
}

func TestReallocSameClass(t *testing.T) {
	ptr := Malloc(25)
	if x := ReallocSized(ptr, 25, 31); x != ptr {
		t.Errorf("expected %v, got %v", ptr, x) // both in the 32-byte class
	}
	FreeSized(ptr, 31)
}

func TestReallocAcrossClasses(t *testing.T) {
	ptr := Malloc(13)
	*(*byte)(ptr) = 0xAB
	q := ReallocSized(ptr, 13, 4096)
	if q == ptr {
		t.Errorf("expected relocation across classes")
	}
	if x := *(*byte)(q); x != 0xAB {
		t.Errorf("expected %v, got %v", 0xAB, x)
	}
	if x := uintptr(q) & 7; x != 0 {
		t.Errorf("%v not aligned", q)
	}
	FreeSized(q, 4096)
}

func TestReallocShrink(t *testing.T) {
	ptr := Malloc(4096)
	if x := ReallocSized(ptr, 4096, 64); x != ptr {
		t.Errorf("expected lazy shrink to keep %v, got %v", ptr, x)
	}
	FreeSized(ptr, 4096)
}

func TestReallocEdgeCases(t *testing.T) {
	// nil pointer allocates
	ptr := Realloc(nil, 64)
	if ptr == nil {
		t.Fatalf("Realloc(nil) failed")
	}
	// zero size frees
	if x := Realloc(ptr, 0); x != nil {
		t.Errorf("expected nil, got %v", x)
	}

	ptr = ReallocSized(nil, 0, 64)
	if ptr == nil {
		t.Fatalf("ReallocSized(nil) failed")
	}
	if x := ReallocSized(ptr, 64, 0); x != nil {
		t.Errorf("expected nil, got %v", x)
	}
}

func TestReallocUnsized(t *testing.T) {
	ptr := Malloc(40)
	*(*uint64)(ptr) = 0xDEADBEEF
	q := Realloc(ptr, 100000)
	if x := *(*uint64)(q); x != 0xDEADBEEF {
		t.Errorf("expected %v, got %v", uint64(0xDEADBEEF), x)
	}
	Free(q)
}

func TestMallocNOverflow(t *testing.T) {
	defer func() {
		if r := recover(); r != ErrorOverflow {
			t.Errorf("expected %v, got %v", ErrorOverflow, r)
		}
	}()
	MallocN(1<<40, 1<<40)
}

func TestFreeUnmapped(t *testing.T) {
	boot()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on unmapped pointer")
		}
	}()
	var local int64
	Free(unsafe.Pointer(&local))
}

func TestStats(t *testing.T) {
	ptr := Malloc(1 << 20)
	Free(ptr)
	stats := Stats()
	if x := stats["shards"].(int64); x < 1 {
		t.Errorf("expected shards, got %v", x)
	}
	if _, ok := stats["hotpages"]; !ok {
		t.Errorf("missing hotpages")
	}
	LogStatistics()
}

func TestDrain(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	ptr := Malloc(64)
	Free(ptr) // parks the block in this thread's cache
	Drain()
	// the cache no longer holds the block, so the next allocation of the
	// class refetches from the central cache
	tc := threadcache()
	if x := tc.lists[classindex(64)].size; x != 0 {
		t.Errorf("expected drained list, got %v blocks", x)
	}
	ptr = Malloc(64)
	Free(ptr)
}

func TestHeapInterface(t *testing.T) {
	var h Heap
	ptr := h.Alloc(64)
	if x := h.Chunklen(ptr); x != 64 {
		t.Errorf("expected %v, got %v", 64, x)
	}
	h.FreeSized(ptr, 64)
	ptr = h.AllocN(8, 16)
	h.Free(ptr)
	h.Drain()
}
