//go:build unix

package arena

import (
	"fmt"
	"math"

	"golang.org/x/sys/unix"

	"github.com/mit-pdos/go-ramdisk/common"
)

type mmap struct{}

// Mmap allocates arenas as anonymous private mappings, outside the Go heap.
func Mmap() Allocator {
	return mmap{}
}

func (mmap) Alloc(sz uint64) ([]byte, error) {
	if sz == 0 || sz > math.MaxInt32 {
		return nil, fmt.Errorf("mmap arena of %d bytes: %w", sz, common.ErrOutOfMemory)
	}
	mem, err := unix.Mmap(-1, 0, int(sz), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("mmap arena of %d bytes: %v: %w", sz, err, common.ErrOutOfMemory)
	}
	return mem, nil
}

func (mmap) Free(mem []byte) error {
	return unix.Munmap(mem)
}
