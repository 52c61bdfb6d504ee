// Package layout computes where each region of the ramdisk lives inside the
// arena.
//
// The arena is carved, in order, into:
//
//	[ superblock | inode table | block bitmap | data blocks ]
//	  1 block      NInodeBlocks  NBitmapBlocks  the rest
//
// A Layout is computed once from a Geometry and never changes. All access to
// a region goes through one of the view methods, which slice the arena with
// the region's capacity so a view can never reach into its neighbour.
package layout

import (
	"fmt"

	"github.com/mit-pdos/go-ramdisk/common"
	"github.com/mit-pdos/go-ramdisk/util"
)

// MinBlockSize is the size of the encoded superblock, which must fit in
// block 0.
const MinBlockSize uint64 = 80

// Geometry holds the sizing constants a Layout is derived from.
type Geometry struct {
	Size          uint64 // total arena size in bytes
	BlockSize     uint64
	InodeSize     uint64
	NInodeBlocks  uint64
	NBitmapBlocks uint64
}

// DefaultGeometry is the reference sizing.
func DefaultGeometry() Geometry {
	return Geometry{
		Size:          common.RDSize,
		BlockSize:     common.BlockSize,
		InodeSize:     common.InodeSize,
		NInodeBlocks:  common.NInodeBlocks,
		NBitmapBlocks: common.NBitmapBlocks,
	}
}

type Layout struct {
	Geometry

	SuperStart  uint64
	SuperLen    uint64
	InodeStart  uint64
	InodeLen    uint64
	BitmapStart uint64
	BitmapLen   uint64
	DataStart   uint64
	DataLen     uint64

	NInodes     uint64
	NDataBlocks uint64
}

func invalid(format string, a ...interface{}) error {
	return fmt.Errorf("%w: %s", common.ErrInvalidGeometry, fmt.Sprintf(format, a...))
}

// MkLayout validates g and computes the region boundaries.
//
// The inode table is NInodeBlocks whole blocks, so it holds
// NInodeBlocks*BlockSize/InodeSize records (1024 at the default sizing),
// not NInodeBlocks*InodeSize bytes. Sizing it by records would shift every
// later region and change the data block count from 7931.
func MkLayout(g Geometry) (*Layout, error) {
	if g.BlockSize < MinBlockSize || g.BlockSize%8 != 0 {
		return nil, invalid("block size %d is not a multiple of 8 of at least %d",
			g.BlockSize, MinBlockSize)
	}
	if g.InodeSize == 0 || g.InodeSize > g.BlockSize || g.BlockSize%g.InodeSize != 0 {
		return nil, invalid("inode size %d does not divide block size %d",
			g.InodeSize, g.BlockSize)
	}
	if g.Size%g.BlockSize != 0 {
		return nil, invalid("size %d is not a whole number of blocks", g.Size)
	}
	nblocks := g.Size / g.BlockSize
	if g.NInodeBlocks == 0 || g.NBitmapBlocks == 0 {
		return nil, invalid("%d inode blocks and %d bitmap blocks",
			g.NInodeBlocks, g.NBitmapBlocks)
	}
	if util.SumOverflows(1, g.NInodeBlocks) ||
		util.SumOverflows(1+g.NInodeBlocks, g.NBitmapBlocks) {
		return nil, invalid("metadata block count overflows (%d inode, %d bitmap)",
			g.NInodeBlocks, g.NBitmapBlocks)
	}
	nmeta := 1 + g.NInodeBlocks + g.NBitmapBlocks
	if nmeta >= nblocks {
		return nil, invalid("%d metadata blocks leave no room for data in %d blocks",
			nmeta, nblocks)
	}
	if util.MulOverflows(g.NInodeBlocks, g.BlockSize) ||
		util.MulOverflows(g.NBitmapBlocks, g.BlockSize) {
		return nil, invalid("metadata region size overflows")
	}
	ndata := nblocks - nmeta
	if g.NBitmapBlocks*g.BlockSize < util.RoundUp(ndata, 8) {
		return nil, invalid("%d bitmap blocks cannot track %d data blocks",
			g.NBitmapBlocks, ndata)
	}

	l := &Layout{Geometry: g}
	l.SuperStart = 0
	l.SuperLen = g.BlockSize
	l.InodeStart = l.SuperStart + l.SuperLen
	l.InodeLen = g.NInodeBlocks * g.BlockSize
	l.BitmapStart = l.InodeStart + l.InodeLen
	l.BitmapLen = g.NBitmapBlocks * g.BlockSize
	l.DataStart = l.BitmapStart + l.BitmapLen
	l.DataLen = ndata * g.BlockSize
	l.NInodes = l.InodeLen / g.InodeSize
	l.NDataBlocks = ndata
	if l.DataStart+l.DataLen != g.Size {
		panic("MkLayout")
	}
	return l, nil
}

func (l *Layout) view(mem []byte, start, n uint64) []byte {
	if uint64(len(mem)) != l.Size {
		panic(fmt.Errorf("layout of %d bytes applied to %d-byte arena", l.Size, len(mem)))
	}
	return mem[start : start+n : start+n]
}

func (l *Layout) Super(mem []byte) []byte {
	return l.view(mem, l.SuperStart, l.SuperLen)
}

func (l *Layout) Inodes(mem []byte) []byte {
	return l.view(mem, l.InodeStart, l.InodeLen)
}

func (l *Layout) Bitmap(mem []byte) []byte {
	return l.view(mem, l.BitmapStart, l.BitmapLen)
}

func (l *Layout) Data(mem []byte) []byte {
	return l.view(mem, l.DataStart, l.DataLen)
}

func (l *Layout) String() string {
	return fmt.Sprintf("layout{size %d super [%d,%d) inodes [%d,%d) bitmap [%d,%d) data [%d,%d)}",
		l.Size, l.SuperStart, l.InodeStart, l.InodeStart, l.BitmapStart,
		l.BitmapStart, l.DataStart, l.DataStart, l.DataStart+l.DataLen)
}
