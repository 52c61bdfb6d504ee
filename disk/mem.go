package disk

import (
	"fmt"
	"sync"

	"github.com/mit-pdos/go-ramdisk/common"
)

var _ Disk = (*MemDisk)(nil)

// MemDisk is the data-block region of the arena viewed as a disk.
type MemDisk struct {
	l         *sync.RWMutex // protects the contents of mem
	mem       []byte
	blockSize uint64
	numBlocks uint64
}

func NewMemDisk(mem []byte, blockSize uint64) *MemDisk {
	if blockSize == 0 || uint64(len(mem))%blockSize != 0 {
		panic(fmt.Errorf("%d-byte region is not a whole number of %d-byte blocks",
			len(mem), blockSize))
	}
	return &MemDisk{
		l:         new(sync.RWMutex),
		mem:       mem,
		blockSize: blockSize,
		numBlocks: uint64(len(mem)) / blockSize,
	}
}

func (d *MemDisk) block(a uint64) ([]byte, error) {
	if a >= d.numBlocks {
		return nil, fmt.Errorf("block %d of %d: %w", a, d.numBlocks, common.ErrInvalidBlock)
	}
	off := a * d.blockSize
	return d.mem[off : off+d.blockSize : off+d.blockSize], nil
}

func (d *MemDisk) checkLen(b Block) error {
	if uint64(len(b)) != d.blockSize {
		return fmt.Errorf("%d bytes: %w", len(b), common.ErrBadBlockSize)
	}
	return nil
}

func (d *MemDisk) ReadTo(a uint64, buf Block) error {
	if err := d.checkLen(buf); err != nil {
		return err
	}
	blk, err := d.block(a)
	if err != nil {
		return err
	}
	d.l.RLock()
	copy(buf, blk)
	d.l.RUnlock()
	return nil
}

func (d *MemDisk) Read(a uint64) (Block, error) {
	buf := make(Block, d.blockSize)
	if err := d.ReadTo(a, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *MemDisk) Write(a uint64, v Block) error {
	if err := d.checkLen(v); err != nil {
		return err
	}
	blk, err := d.block(a)
	if err != nil {
		return err
	}
	d.l.Lock()
	copy(blk, v)
	d.l.Unlock()
	return nil
}

func (d *MemDisk) Size() (uint64, error) {
	// this never changes so it is safe to read lock-free
	return d.numBlocks, nil
}

// the arena is memory; there is nothing to persist
func (d *MemDisk) Barrier() error { return nil }

func (d *MemDisk) Close() error { return nil }
