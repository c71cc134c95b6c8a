// Package kzalloc implements a general-purpose concurrent memory
// allocator with a three-tier caching hierarchy:
//
//   - a per-thread front-end of free lists, routed by OS-thread identity,
//     serving the fast path with an almost-always-uncontended spin lock,
//   - a central cache brokering batches of fixed-size blocks between
//     threads, one spin-locked bucket per size class,
//   - a sharded page heap owning page-aligned runs of virtual memory
//     acquired from the operating system, with hot/cold span lists,
//     adjacent-span coalescing and madvise-style decommit.
//
// Requests up to 256KB round up to one of 264 size classes and are served
// from carved spans; larger requests round up to 8KB pages and go straight
// to the page heap. Freed pointers resolve back to their span through a
// lock-free radix tree keyed by page id.
//
// All block memory and all metadata reachable from it live outside the Go
// heap, allocated through osmem. Memory handed out by this package is
// invisible to the garbage collector; callers must not store Go pointers
// in it.
package kzalloc
