package disk

import (
	"github.com/tchajed/goose/machine/disk"
)

// Block is one data block's worth of bytes.
type Block = disk.Block

// Disk provides access to a logical block-based device
type Disk interface {
	// Read reads a disk block by address
	Read(a uint64) (Block, error)

	// ReadTo reads the disk block at a and stores the result in b
	ReadTo(a uint64, b Block) error

	// Write updates a disk block by address
	Write(a uint64, v Block) error

	// Size reports how big the disk is, in blocks
	Size() (uint64, error)

	// Barrier ensures data is persisted.
	Barrier() error

	// Close releases any resources used by the disk and makes it unusable.
	Close() error
}
