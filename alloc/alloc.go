package alloc

import (
	"fmt"
	"sync"

	"github.com/mit-pdos/go-ramdisk/addr"
	"github.com/mit-pdos/go-ramdisk/common"
	"github.com/mit-pdos/go-ramdisk/util"
)

// Alloc uses a bit map to allocate and free block numbers. Bit 0 of byte 0
// corresponds to block 0, bit 1 to block 1, and so on. Allocation always
// returns the lowest free number.
type Alloc struct {
	lock      *sync.Mutex // protects bitmap and nfree
	bitmap    []byte
	blockSize uint64 // size of the blocks the bitmap is stored in
	max       uint64 // numbers in [0, max) are managed
	nfree     uint64
}

// MkAlloc manages the first max bits of bitmap. Bits already set in bitmap
// count as used.
func MkAlloc(bitmap []byte, blockSize uint64, max uint64) *Alloc {
	if max > uint64(len(bitmap))*8 {
		panic("MkAlloc")
	}
	a := &Alloc{
		lock:      new(sync.Mutex),
		bitmap:    bitmap,
		blockSize: blockSize,
		max:       max,
	}
	var used uint64
	for n := uint64(0); n < max; n++ {
		if a.isSet(n) {
			used++
		}
	}
	a.nfree = max - used
	return a
}

// Assumes caller holds lock
func (a *Alloc) isSet(n uint64) bool {
	ad := addr.MkBitAddr(0, n, a.blockSize)
	return a.bitmap[ad.Byte(a.blockSize)]&(1<<ad.Bit()) != 0
}

// Assumes caller holds lock
func (a *Alloc) setBit(n uint64) {
	ad := addr.MkBitAddr(0, n, a.blockSize)
	i := ad.Byte(a.blockSize)
	a.bitmap[i] = a.bitmap[i] | (1 << ad.Bit())
}

// Assumes caller holds lock
func (a *Alloc) clearBit(n uint64) {
	ad := addr.MkBitAddr(0, n, a.blockSize)
	i := ad.Byte(a.blockSize)
	a.bitmap[i] = a.bitmap[i] & ^(1 << ad.Bit())
}

// Returns the lowest clear bit, skipping full bytes. Assumes caller holds
// lock.
func (a *Alloc) findFreeBit() (uint64, bool) {
	nbytes := util.RoundUp(a.max, 8)
	for i := uint64(0); i < nbytes; i++ {
		if a.bitmap[i] == 0xff {
			continue
		}
		for bit := uint64(0); bit < 8; bit++ {
			n := i*8 + bit
			if n >= a.max {
				return 0, false
			}
			if a.bitmap[i]&(1<<bit) == 0 {
				return n, true
			}
		}
	}
	return 0, false
}

func (a *Alloc) checkNum(n uint64) error {
	if n >= a.max {
		return fmt.Errorf("block %d of %d: %w", n, a.max, common.ErrInvalidBlock)
	}
	return nil
}

// AllocNum marks the lowest free number used and returns it.
func (a *Alloc) AllocNum() (uint64, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	n, ok := a.findFreeBit()
	if !ok {
		util.DPrintf(5, "AllocNum: full\n")
		return 0, common.ErrStorageFull
	}
	a.setBit(n)
	a.nfree--
	util.DPrintf(10, "AllocNum: %d\n", n)
	return n, nil
}

// FreeNum marks n free. Freeing a number that is already free succeeds and
// changes nothing.
func (a *Alloc) FreeNum(n uint64) error {
	if err := a.checkNum(n); err != nil {
		return err
	}
	a.lock.Lock()
	defer a.lock.Unlock()
	if !a.isSet(n) {
		util.Warnf("FreeNum: block %d is already free", n)
		return nil
	}
	a.clearBit(n)
	a.nfree++
	return nil
}

// MarkUsed marks n used, whether or not it was free.
func (a *Alloc) MarkUsed(n uint64) error {
	if err := a.checkNum(n); err != nil {
		return err
	}
	a.lock.Lock()
	if !a.isSet(n) {
		a.setBit(n)
		a.nfree--
	}
	a.lock.Unlock()
	return nil
}

func (a *Alloc) IsUsed(n uint64) (bool, error) {
	if err := a.checkNum(n); err != nil {
		return false, err
	}
	a.lock.Lock()
	used := a.isSet(n)
	a.lock.Unlock()
	return used, nil
}

func (a *Alloc) NumFree() uint64 {
	a.lock.Lock()
	n := a.nfree
	a.lock.Unlock()
	return n
}

// Snapshot returns the allocation state of every managed number.
func (a *Alloc) Snapshot() []bool {
	used := make([]bool, a.max)
	a.lock.Lock()
	for n := uint64(0); n < a.max; n++ {
		used[n] = a.isSet(n)
	}
	a.lock.Unlock()
	return used
}
