package kzalloc

import "runtime"
import "testing"

import s "github.com/bnclabs/gosettings"

func TestPageHeapShardCount(t *testing.T) {
	pm := newPageMap()
	setts := Defaultsettings().Mixin(s.Settings{"shards": int64(5)})
	heap := newPageHeap(setts, pm)
	if x := len(heap.shards); x != 8 { // rounded up to a power of two
		t.Errorf("expected %v, got %v", 8, x)
	}
	if heap.mask != 7 {
		t.Errorf("expected %v, got %v", 7, heap.mask)
	}
	for i, shard := range heap.shards {
		if int(shard.shardID) != i {
			t.Errorf("shard %v: id %v", i, shard.shardID)
		}
	}
}

func TestPageHeapOriginReturn(t *testing.T) {
	pm := newPageMap()
	setts := Defaultsettings().Mixin(s.Settings{"shards": int64(4)})
	heap := newPageHeap(setts, pm)

	sp := heap.newSpan(2)
	origin := sp.shardID
	heap.releaseSpan(sp)

	// the span went back to its origin shard, wherever it was released
	shard := heap.shards[origin]
	shard.mu.Lock()
	hot := shard.hotPages
	shard.mu.Unlock()
	if hot == 0 {
		t.Errorf("origin shard %v holds no pages after release", origin)
	}
}

func TestPageHeapRouteStable(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	pm := newPageMap()
	heap := newPageHeap(Defaultsettings(), pm)
	idx := heap.routeindex()
	for i := 0; i < 100; i++ {
		if x := heap.routeindex(); x != idx {
			t.Fatalf("routing flapped from %v to %v", idx, x)
		}
	}
}
