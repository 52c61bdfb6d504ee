//go:build !unix

package arena

// Mmap falls back to the heap where anonymous mappings are unavailable.
func Mmap() Allocator {
	return Heap()
}
