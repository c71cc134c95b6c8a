package kzalloc

import "sort"

// largeTable is the ordered page-count -> spanList mapping for spans of
// npages and above. Keys live in a sorted slice for lower-bound lookup
// (binary search, not best-fit scans), lists hold pool-allocated
// sentinels. Emptied entries are erased lazily on the next visit, so
// lookups must tolerate ghost keys.
type largeTable struct {
	keys  []int64
	lists map[int64]*spanList
	pool  *objectPool
}

func (t *largeTable) init(pool *objectPool) {
	t.keys = make([]int64, 0, 8)
	t.lists = make(map[int64]*spanList)
	t.pool = pool
}

func (t *largeTable) empty() bool {
	return len(t.keys) == 0
}

// get returns the list for exactly n pages, creating it on demand.
func (t *largeTable) get(n int64) *spanList {
	if list, ok := t.lists[n]; ok {
		return list
	}
	list := &spanList{}
	list.init(t.pool)
	t.lists[n] = list
	i := sort.Search(len(t.keys), func(i int) bool { return t.keys[i] >= n })
	t.keys = append(t.keys, 0)
	copy(t.keys[i+1:], t.keys[i:])
	t.keys[i] = n
	return list
}

// lowerBound returns the smallest key >= k and its list.
func (t *largeTable) lowerBound(k int64) (int64, *spanList, bool) {
	i := sort.Search(len(t.keys), func(i int) bool { return t.keys[i] >= k })
	if i == len(t.keys) {
		return 0, nil, false
	}
	n := t.keys[i]
	return n, t.lists[n], true
}

// largest returns the biggest key and its list, consumed by demotion.
func (t *largeTable) largest() (int64, *spanList, bool) {
	if len(t.keys) == 0 {
		return 0, nil, false
	}
	n := t.keys[len(t.keys)-1]
	return n, t.lists[n], true
}

// erase removes a ghost key whose list has gone empty.
func (t *largeTable) erase(n int64) {
	list, ok := t.lists[n]
	if !ok {
		return
	}
	list.release(t.pool)
	delete(t.lists, n)
	i := sort.Search(len(t.keys), func(i int) bool { return t.keys[i] >= n })
	if i < len(t.keys) && t.keys[i] == n {
		t.keys = append(t.keys[:i], t.keys[i+1:]...)
	}
}
