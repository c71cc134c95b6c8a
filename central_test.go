package kzalloc

import "testing"
import "unsafe"

import s "github.com/bnclabs/gosettings"

func testcentral() *centralCache {
	initsizemap()
	pm := newPageMap()
	setts := Defaultsettings().Mixin(s.Settings{"shards": int64(1)})
	return newCentralCache(newPageHeap(setts, pm), pm)
}

func TestCentralFetchRange(t *testing.T) {
	cc := testcentral()

	head, tail, actual := cc.fetchRange(8, 13)
	if actual != 8 {
		t.Errorf("expected %v, got %v", 8, actual)
	}
	count, last := int64(0), unsafe.Pointer(nil)
	for ptr := head; ptr != nil; ptr = nextblock(ptr) {
		count, last = count+1, ptr
	}
	if count != actual || last != tail {
		t.Errorf("chain of %v ends at %v, want %v at %v", count, last, actual, tail)
	}

	// blocks stride at the rounded class size inside one span
	span := cc.pmap.get(uint64(uintptr(head)) >> pageShift)
	if span == nil || span.objSize != 16 {
		t.Fatalf("unexpected span %+v", span)
	}
	if span.useCount != actual {
		t.Errorf("expected %v, got %v", actual, span.useCount)
	}
}

func TestCentralFetchPartial(t *testing.T) {
	cc := testcentral()

	// a whole span of the largest class holds a single block, fetches
	// are capped by what the span can supply
	_, _, actual := cc.fetchRange(4, MaxSmallBytes)
	if actual < 1 || actual > 4 {
		t.Errorf("unexpected actual %v", actual)
	}
}

func TestCentralReleaseList(t *testing.T) {
	cc := testcentral()

	head, _, actual := cc.fetchRange(16, 64)
	span := cc.pmap.get(uint64(uintptr(head)) >> pageShift)
	if span.useCount != actual {
		t.Fatalf("expected %v, got %v", actual, span.useCount)
	}

	cc.releaseList(head, 64)
	// all blocks returned, the span went back to its shard
	shard := cc.heap.shards[span.shardID]
	shard.mu.Lock()
	hot := shard.hotPages
	shard.mu.Unlock()
	if hot == 0 {
		t.Errorf("expected reclaimed pages in shard")
	}
	if span.inUse {
		t.Errorf("span still marked in use")
	}
}

func TestCentralRefetchAfterRelease(t *testing.T) {
	cc := testcentral()

	head, _, _ := cc.fetchRange(4, 32)
	cc.releaseList(head, 32)

	head2, _, actual := cc.fetchRange(4, 32)
	if actual != 4 {
		t.Errorf("expected %v, got %v", 4, actual)
	}
	for ptr := head2; ptr != nil; ptr = nextblock(ptr) {
		if uintptr(ptr)&7 != 0 {
			t.Errorf("block %v not aligned", ptr)
		}
	}
}
