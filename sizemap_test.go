package kzalloc

import "fmt"
import "testing"

var _ = fmt.Sprintf("dummy")

func TestSizemapRoundtrip(t *testing.T) {
	initsizemap()
	for size := int64(1); size <= MaxSmallBytes; size++ {
		class := classindex(size)
		if block := classtosize[class]; block < size {
			t.Fatalf("size %v: class %v block %v below request", size, class, block)
		} else if block >= size+alignmentof(size) {
			t.Fatalf("size %v: class %v block %v over-rounded", size, class, block)
		}
	}
}

func alignmentof(size int64) int64 {
	switch {
	case size <= 128:
		return 8
	case size <= 1024:
		return 16
	case size <= 8*1024:
		return 128
	case size <= 64*1024:
		return 512
	default:
		return 8 * 1024
	}
}

func TestSizemapBoundaries(t *testing.T) {
	initsizemap()
	if x := roundup(1); x != 8 {
		t.Errorf("expected %v, got %v", 8, x)
	}
	if x := roundup(8); x != 8 {
		t.Errorf("expected %v, got %v", 8, x)
	}
	if x := roundup(9); x != 16 {
		t.Errorf("expected %v, got %v", 16, x)
	}
	if x := roundup(128); x != 128 {
		t.Errorf("expected %v, got %v", 128, x)
	}
	if x := roundup(129); x != 144 {
		t.Errorf("expected %v, got %v", 144, x)
	}
	if x := roundup(MaxSmallBytes); x != MaxSmallBytes {
		t.Errorf("expected %v, got %v", MaxSmallBytes, x)
	}
	if x := roundup(MaxSmallBytes + 1); x != MaxSmallBytes+pageSize-(MaxSmallBytes%pageSize) {
		t.Errorf("unexpected page roundup %v", x)
	}
	if x := roundup(1 << 20); x != 1<<20 {
		t.Errorf("expected %v, got %v", 1<<20, x)
	}
}

func TestSizemapClassCount(t *testing.T) {
	initsizemap()
	if x := int(sizetoclass[MaxSmallBytes]); x != MaxClasses-1 {
		t.Errorf("expected %v, got %v", MaxClasses-1, x)
	}
	// raw and rounded sizes land in the same class, the hot-path
	// optimization in the central cache depends on it.
	for _, size := range []int64{1, 13, 129, 1025, 8193, 65537, 200000} {
		if x, y := classindex(size), classindex(roundup(size)); x != y {
			t.Errorf("size %v: raw class %v, rounded class %v", size, x, y)
		}
	}
}

func TestBatchmax(t *testing.T) {
	initsizemap()
	if x := batchmax(0); x != 32768 {
		t.Errorf("expected %v, got %v", 32768, x)
	}
	last := classindex(MaxSmallBytes)
	if x := batchmax(last); x != 2 {
		t.Errorf("expected %v, got %v", 2, x)
	}
}

func TestSpanpages(t *testing.T) {
	initsizemap()
	if x := spanpages(8); x != 1 {
		t.Errorf("expected %v, got %v", 1, x)
	}
	if x := spanpages(MaxSmallBytes); x != MaxSmallBytes>>pageShift {
		t.Errorf("expected %v, got %v", MaxSmallBytes>>pageShift, x)
	}
	if x := spanblocks(MaxSmallBytes); x != 1 {
		t.Errorf("expected %v, got %v", 1, x)
	}
	if x := spanblocks(8); x != 512 {
		t.Errorf("expected %v, got %v", 512, x)
	}
}
