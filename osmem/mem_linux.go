//go:build linux

package osmem

import "os"
import "unsafe"

import "golang.org/x/sys/unix"

// Alloc maps kpages of zero-filled memory, aligned to PageSize. Requests
// of 2MB and above make one attempt at huge pages; on refusal the request
// falls through to standard pages. Returns nil when the OS is out of
// address space or memory.
func Alloc(kpages int64) unsafe.Pointer {
	size := uintptr(kpages) << PageShift

	if size >= HugePageThreshold {
		flags := unix.MAP_PRIVATE | unix.MAP_ANONYMOUS | unix.MAP_HUGETLB | unix.MAP_POPULATE
		if ptr := mmap(size, flags); ptr != nil {
			return ptr
		}
	}

	flags := unix.MAP_PRIVATE | unix.MAP_ANONYMOUS
	if uintptr(os.Getpagesize()) >= PageSize {
		// OS pages are at least as coarse as allocator pages, mmap
		// alignment is already sufficient.
		return mmap(size, flags)
	}

	// Over-request one allocator page, then trim the misaligned head and
	// the unused tail back to the OS.
	raw := mmap(size+PageSize, flags)
	if raw == nil {
		return nil
	}
	rawaddr := uintptr(raw)
	aligned := (rawaddr + PageSize - 1) &^ uintptr(PageSize-1)
	if prefix := aligned - rawaddr; prefix > 0 {
		munmap(rawaddr, prefix)
	}
	if suffix := (rawaddr + PageSize) - aligned; suffix > 0 {
		munmap(aligned+size, suffix)
	}
	return unsafe.Pointer(aligned)
}

// Free unmaps kpages starting at ptr, releasing both the virtual
// reservation and its physical backing.
func Free(ptr unsafe.Pointer, kpages int64) {
	if ptr == nil {
		return
	}
	munmap(uintptr(ptr), uintptr(kpages)<<PageShift)
}

// Decommit advises the kernel that [ptr, ptr+bytes) is not needed. The
// mapping stays valid, the next write faults in fresh zero pages.
func Decommit(ptr unsafe.Pointer, bytes int64) {
	if ptr == nil || bytes <= 0 {
		return
	}
	unix.Madvise(unsafe.Slice((*byte)(ptr), bytes), unix.MADV_DONTNEED)
}

func mmap(size uintptr, flags int) unsafe.Pointer {
	ptr, err := unix.MmapPtr(-1, 0, nil, size, unix.PROT_READ|unix.PROT_WRITE, flags)
	if err != nil {
		return nil
	}
	return ptr
}

func munmap(addr, size uintptr) {
	unix.MunmapPtr(unsafe.Pointer(addr), size)
}
