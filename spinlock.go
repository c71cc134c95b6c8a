package kzalloc

import "sync/atomic"

import "github.com/Exfdr/KzAlloc/osmem"

// spinMutex is a test-test-and-set spin lock with a relax hint in the
// read loop and a scheduler yield after spinYieldAfter failed attempts.
// Critical sections guarded by it are short list manipulations; paths
// that may enter the OS drop it first.
type spinMutex struct {
	flag int32
}

func (m *spinMutex) lock() {
	if atomic.CompareAndSwapInt32(&m.flag, 0, 1) {
		return
	}
	spins := 0
	for {
		for atomic.LoadInt32(&m.flag) != 0 {
			osmem.Pause()
			if spins++; spins > spinYieldAfter {
				osmem.Yield()
				spins = 0
			}
		}
		if atomic.CompareAndSwapInt32(&m.flag, 0, 1) {
			return
		}
		if spins++; spins > spinYieldAfter {
			osmem.Yield()
			spins = 0
		}
	}
}

func (m *spinMutex) unlock() {
	atomic.StoreInt32(&m.flag, 0)
}
