//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package osmem

import "os"
import "unsafe"

import "golang.org/x/sys/unix"

// Alloc maps kpages of zero-filled memory, aligned to PageSize. The BSDs
// have no MAP_HUGETLB, large requests use standard pages. Returns nil
// when the OS is out of address space or memory.
func Alloc(kpages int64) unsafe.Pointer {
	size := uintptr(kpages) << PageShift
	flags := unix.MAP_PRIVATE | unix.MAP_ANON

	if uintptr(os.Getpagesize()) >= PageSize {
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

// Free unmaps kpages starting at ptr.
func Free(ptr unsafe.Pointer, kpages int64) {
	if ptr == nil {
		return
	}
	munmap(uintptr(ptr), uintptr(kpages)<<PageShift)
}

// Decommit advises the kernel that [ptr, ptr+bytes) is not needed while
// keeping the virtual reservation.
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
