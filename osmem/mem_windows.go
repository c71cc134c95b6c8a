//go:build windows

package osmem

import "unsafe"

import "golang.org/x/sys/windows"

// Alloc reserves and commits kpages of zero-filled memory. VirtualAlloc
// returns 64KB aligned regions, which satisfies PageSize alignment.
// Returns nil when the OS is out of address space or memory.
func Alloc(kpages int64) unsafe.Pointer {
	size := uintptr(kpages) << PageShift
	addr, err := windows.VirtualAlloc(
		0, size, windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return nil
	}
	return unsafe.Pointer(addr)
}

// Free releases kpages starting at ptr, both reservation and backing.
func Free(ptr unsafe.Pointer, kpages int64) {
	if ptr == nil {
		return
	}
	windows.VirtualFree(uintptr(ptr), 0, windows.MEM_RELEASE)
}

// Decommit drops the physical backing of [ptr, ptr+bytes) while keeping
// the reservation. The range is not accessible again until it is
// committed anew; touching it before that faults.
func Decommit(ptr unsafe.Pointer, bytes int64) {
	if ptr == nil || bytes <= 0 {
		return
	}
	windows.VirtualFree(uintptr(ptr), uintptr(bytes), windows.MEM_DECOMMIT)
}
