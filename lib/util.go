// Package lib holds utility functions shared across the allocator's
// packages.
package lib

import "fmt"
import "sort"
import "strings"
import "unsafe"

// Memcpy copies ln bytes from src to dst. Both regions must be at least
// ln bytes and may not overlap.
func Memcpy(dst, src unsafe.Pointer, ln int) int {
	dstnd := unsafe.Slice((*byte)(dst), ln)
	srcnd := unsafe.Slice((*byte)(src), ln)
	return copy(dstnd, srcnd)
}

// Prettystats render a stats map as one line, or indented with sorted
// keys when pretty is true.
func Prettystats(stats map[string]interface{}, pretty bool) string {
	if !pretty {
		return fmt.Sprintf("%v", stats)
	}
	keys := make([]string, 0, len(stats))
	for key := range stats {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("    %q: %v", key, stats[key]))
	}
	return "{\n" + strings.Join(parts, ",\n") + "\n}"
}

// AbsInt64 absolute value of x.
func AbsInt64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
