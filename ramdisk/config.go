package ramdisk

import (
	"github.com/mit-pdos/go-ramdisk/arena"
	"github.com/mit-pdos/go-ramdisk/common"
	"github.com/mit-pdos/go-ramdisk/layout"
)

// Config fixes the sizing of a Ramdisk when it is made.
type Config struct {
	Geometry layout.Geometry

	// number of slots in a newly created file descriptor table
	InitFdtLen uint64

	// where the arena comes from
	Allocator arena.Allocator
}

// DefaultConfig returns the reference sizing, backed by an anonymous
// mapping.
func DefaultConfig() *Config {
	return &Config{
		Geometry:   layout.DefaultGeometry(),
		InitFdtLen: common.InitFdtLen,
		Allocator:  arena.Mmap(),
	}
}
