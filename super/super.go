// Package super maintains the superblock, the first block of the arena.
package super

import (
	"sync"

	"github.com/tchajed/marshal"

	"github.com/mit-pdos/go-ramdisk/layout"
	"github.com/mit-pdos/go-ramdisk/util"
)

// Magic marks an arena whose superblock has been written ("RAMDISK").
const Magic uint64 = 0x4b5349444d4152

// number of uint64 fields in the encoded superblock
const nfields uint64 = 10

// SuperBlock is the decoded form of block 0.
type SuperBlock struct {
	Magic       uint64
	Generation  uint64
	Size        uint64
	BlockSize   uint64
	InodeStart  uint64
	BitmapStart uint64
	DataStart   uint64
	NInodes     uint64
	NDataBlocks uint64
	FreeBlocks  uint64
}

type Super struct {
	mu  *sync.Mutex // protects blk
	blk []byte
}

// MkSuper formats blk (the superblock view of an arena) for l.
func MkSuper(blk []byte, l *layout.Layout, gen uint64) *Super {
	if uint64(len(blk)) < nfields*8 {
		panic("MkSuper")
	}
	s := &Super{
		mu:  new(sync.Mutex),
		blk: blk,
	}
	sb := SuperBlock{
		Magic:       Magic,
		Generation:  gen,
		Size:        l.Size,
		BlockSize:   l.BlockSize,
		InodeStart:  l.InodeStart,
		BitmapStart: l.BitmapStart,
		DataStart:   l.DataStart,
		NInodes:     l.NInodes,
		NDataBlocks: l.NDataBlocks,
		FreeBlocks:  l.NDataBlocks,
	}
	s.encode(&sb)
	util.DPrintf(1, "MkSuper: gen %d %v\n", gen, l)
	return s
}

// Assumes caller holds mu
func (s *Super) encode(sb *SuperBlock) {
	enc := marshal.NewEnc(nfields * 8)
	enc.PutInt(sb.Magic)
	enc.PutInt(sb.Generation)
	enc.PutInt(sb.Size)
	enc.PutInt(sb.BlockSize)
	enc.PutInt(sb.InodeStart)
	enc.PutInt(sb.BitmapStart)
	enc.PutInt(sb.DataStart)
	enc.PutInt(sb.NInodes)
	enc.PutInt(sb.NDataBlocks)
	enc.PutInt(sb.FreeBlocks)
	copy(s.blk, enc.Finish())
}

// Assumes caller holds mu
func (s *Super) decode() SuperBlock {
	dec := marshal.NewDec(s.blk[:nfields*8])
	var sb SuperBlock
	sb.Magic = dec.GetInt()
	sb.Generation = dec.GetInt()
	sb.Size = dec.GetInt()
	sb.BlockSize = dec.GetInt()
	sb.InodeStart = dec.GetInt()
	sb.BitmapStart = dec.GetInt()
	sb.DataStart = dec.GetInt()
	sb.NInodes = dec.GetInt()
	sb.NDataBlocks = dec.GetInt()
	sb.FreeBlocks = dec.GetInt()
	return sb
}

func (s *Super) Get() SuperBlock {
	s.mu.Lock()
	sb := s.decode()
	s.mu.Unlock()
	return sb
}

// Update applies f to the superblock and writes the result back.
func (s *Super) Update(f func(sb *SuperBlock)) {
	s.mu.Lock()
	sb := s.decode()
	f(&sb)
	s.encode(&sb)
	s.mu.Unlock()
}
