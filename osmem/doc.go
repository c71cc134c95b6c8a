// Package osmem supplies the operating-system memory primitives consumed
// by the allocator core, with a limited scope:
//
//   - Alloc and Free work at page granularity, where a page is the
//     allocator's page (8KB) and not necessarily the OS page.
//   - Memory returned by Alloc is page-aligned, zero-filled and virtually
//     contiguous. It lives outside the Go heap and is never seen by the
//     garbage collector.
//   - Decommit releases the physical backing of a range while keeping its
//     virtual reservation. On POSIX systems the next touch faults in
//     fresh zero pages; on Windows the range must be committed again
//     before it is touched.
//   - ThreadID anchors per-thread caches, PhysicalMemory and Concurrency
//     size the page heap at startup, Pause backs spin-lock loops.
//
// Platform specific behaviour lives in build-tagged files, one per OS
// family.
package osmem
