package addr

import (
	"github.com/mit-pdos/go-ramdisk/common"
)

// Addr identifies the start of an object inside a region of the arena.
//
// Blkno is the block number (relative to the region) containing the object,
// and Off is the location of the object within the block, expressed as a bit
// offset. The size of the object is determined by the context in which Addr
// is used.
type Addr struct {
	Blkno common.Bnum
	Off   uint64 // offset in bits
}

// Byte is the byte offset of a from the start of its region.
func (a Addr) Byte(blockSize uint64) uint64 {
	return uint64(a.Blkno)*blockSize + a.Off/8
}

// Bit is the bit within Byte() that a names.
func (a Addr) Bit() uint64 {
	return a.Off % 8
}

func MkAddr(blkno common.Bnum, off uint64) Addr {
	return Addr{Blkno: blkno, Off: off}
}

// MkBitAddr addresses bit n of a bitmap that begins at block start.
func MkBitAddr(start common.Bnum, n uint64, blockSize uint64) Addr {
	nbitblock := blockSize * 8
	bit := n % nbitblock
	i := n / nbitblock
	return MkAddr(start+common.Bnum(i), bit)
}

// MkObjAddr addresses the n-th fixed-size object of a table packed into
// blocks starting at start. objSize is in bytes.
func MkObjAddr(start common.Bnum, n uint64, objSize uint64, blockSize uint64) Addr {
	perBlock := blockSize / objSize
	return MkAddr(start+common.Bnum(n/perBlock), (n%perBlock)*objSize*8)
}
