// Package ramdisk ties the arena, its regions and the file descriptor
// tables into one object.
//
// A Ramdisk starts uninitialized. Initialize allocates the arena, zeroes it,
// carves it into regions and publishes them; it succeeds at most once until
// Teardown. Every storage operation fails with ErrNotInitialized before
// that.
//
// Locking: initLock guards which arena (if any) is published. Storage
// operations hold it for reading while they run, so Teardown waits for them.
// Each region then has its own lock (see super, alloc, inode and disk), and
// operations on different regions do not contend. The only nesting is the
// superblock lock around a read of the bitmap's free count. The file
// descriptor registry does not depend on the arena and never takes
// initLock.
package ramdisk

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mit-pdos/go-ramdisk/alloc"
	"github.com/mit-pdos/go-ramdisk/arena"
	"github.com/mit-pdos/go-ramdisk/common"
	"github.com/mit-pdos/go-ramdisk/disk"
	"github.com/mit-pdos/go-ramdisk/fdt"
	"github.com/mit-pdos/go-ramdisk/inode"
	"github.com/mit-pdos/go-ramdisk/layout"
	"github.com/mit-pdos/go-ramdisk/super"
	"github.com/mit-pdos/go-ramdisk/util"
)

// regions are the views of one arena. They are immutable once published.
type regions struct {
	mem    []byte
	super  *super.Super
	alloc  *alloc.Alloc
	inodes *inode.Table
	data   disk.Disk
}

// syncFree copies the allocator's free count into the superblock. The count
// is read under the superblock lock, so the last writer always stores the
// current value.
func (rs *regions) syncFree() {
	rs.super.Update(func(sb *super.SuperBlock) {
		sb.FreeBlocks = rs.alloc.NumFree()
	})
}

type Ramdisk struct {
	initLock *sync.RWMutex // protects rs and gen
	rs       *regions      // nil until initialized
	gen      uint64        // number of arenas built so far

	layout    *layout.Layout
	allocator arena.Allocator
	fdts      *fdt.Registry
}

// MkRamdisk validates cfg and returns an uninitialized ramdisk.
func MkRamdisk(cfg *Config) (*Ramdisk, error) {
	l, err := layout.MkLayout(cfg.Geometry)
	if err != nil {
		return nil, err
	}
	a := cfg.Allocator
	if a == nil {
		a = arena.Heap()
	}
	n := cfg.InitFdtLen
	if n == 0 || n > common.MaxFiles {
		return nil, fmt.Errorf("initial fdt length %d out of range [1, %d]: %w",
			n, common.MaxFiles, common.ErrInvalidGeometry)
	}
	return &Ramdisk{
		initLock:  new(sync.RWMutex),
		layout:    l,
		allocator: a,
		fdts:      fdt.MkRegistry(n),
	}, nil
}

// IsReady reports whether the arena has been built.
func (rd *Ramdisk) IsReady() bool {
	rd.initLock.RLock()
	ready := rd.rs != nil
	rd.initLock.RUnlock()
	return ready
}

// Initialize builds the arena. Concurrent callers are serialized on
// initLock, and readiness is checked only after it is held, so exactly one
// of them allocates.
func (rd *Ramdisk) Initialize() error {
	rd.initLock.Lock()
	defer rd.initLock.Unlock()
	if rd.rs != nil {
		return common.ErrAlreadyInitialized
	}
	util.DPrintf(1, "Initialize: %v\n", rd.layout)
	mem, err := rd.allocator.Alloc(rd.layout.Size)
	if err != nil {
		util.Log.Errorf("ramdisk: arena allocation failed: %v", err)
		if !errors.Is(err, common.ErrOutOfMemory) {
			err = fmt.Errorf("arena of %d bytes: %v: %w", rd.layout.Size, err, common.ErrOutOfMemory)
		}
		return err
	}
	if uint64(len(mem)) != rd.layout.Size {
		if ferr := rd.allocator.Free(mem); ferr != nil {
			util.Log.Errorf("ramdisk: freeing short arena: %v", ferr)
		}
		return fmt.Errorf("allocator returned %d of %d bytes: %w",
			len(mem), rd.layout.Size, common.ErrOutOfMemory)
	}
	clear(mem)

	l := rd.layout
	rs := &regions{
		mem:    mem,
		super:  super.MkSuper(l.Super(mem), l, rd.gen+1),
		alloc:  alloc.MkAlloc(l.Bitmap(mem), l.BlockSize, l.NDataBlocks),
		inodes: inode.MkTable(l.Inodes(mem), l.InodeSize, l.BlockSize),
		data:   disk.NewMemDisk(l.Data(mem), l.BlockSize),
	}
	rd.gen++
	rd.rs = rs
	return nil
}

// Teardown releases the arena and returns the ramdisk to the uninitialized
// state. File descriptor tables are left alone.
func (rd *Ramdisk) Teardown() error {
	rd.initLock.Lock()
	defer rd.initLock.Unlock()
	if rd.rs == nil {
		return common.ErrNotInitialized
	}
	mem := rd.rs.mem
	rd.rs = nil
	util.DPrintf(1, "Teardown: freeing arena gen %d\n", rd.gen)
	return rd.allocator.Free(mem)
}

// with runs f on the published regions while holding initLock for reading.
func (rd *Ramdisk) with(f func(rs *regions) error) error {
	rd.initLock.RLock()
	defer rd.initLock.RUnlock()
	if rd.rs == nil {
		return common.ErrNotInitialized
	}
	return f(rd.rs)
}

// Layout is available before initialization; it is fixed by the Config.
func (rd *Ramdisk) Layout() *layout.Layout {
	return rd.layout
}

func (rd *Ramdisk) Super() (super.SuperBlock, error) {
	var sb super.SuperBlock
	err := rd.with(func(rs *regions) error {
		sb = rs.super.Get()
		return nil
	})
	return sb, err
}

// AllocBlock allocates the lowest free data block.
func (rd *Ramdisk) AllocBlock() (common.Bnum, error) {
	var bn common.Bnum
	err := rd.with(func(rs *regions) error {
		n, err := rs.alloc.AllocNum()
		if err != nil {
			return err
		}
		rs.syncFree()
		bn = common.Bnum(n)
		return nil
	})
	return bn, err
}

// FreeBlock releases data block bn. Freeing a free block succeeds.
func (rd *Ramdisk) FreeBlock(bn common.Bnum) error {
	return rd.with(func(rs *regions) error {
		if err := rs.alloc.FreeNum(bn); err != nil {
			return err
		}
		rs.syncFree()
		return nil
	})
}

// Inodes returns the inode table of the current arena. It must not be used
// after Teardown.
func (rd *Ramdisk) Inodes() (*inode.Table, error) {
	var t *inode.Table
	err := rd.with(func(rs *regions) error {
		t = rs.inodes
		return nil
	})
	return t, err
}

func (rd *Ramdisk) RecordAt(inum common.Inum) (inode.Record, error) {
	var rec inode.Record
	err := rd.with(func(rs *regions) error {
		var err error
		rec, err = rs.inodes.RecordAt(inum)
		return err
	})
	return rec, err
}

// Data returns the data-block region of the current arena. It must not be
// used after Teardown.
func (rd *Ramdisk) Data() (disk.Disk, error) {
	var d disk.Disk
	err := rd.with(func(rs *regions) error {
		d = rs.data
		return nil
	})
	return d, err
}

func (rd *Ramdisk) ReadBlock(bn common.Bnum) (disk.Block, error) {
	var blk disk.Block
	err := rd.with(func(rs *regions) error {
		var err error
		blk, err = rs.data.Read(bn)
		return err
	})
	return blk, err
}

func (rd *Ramdisk) WriteBlock(bn common.Bnum, blk disk.Block) error {
	return rd.with(func(rs *regions) error {
		return rs.data.Write(bn, blk)
	})
}

// Stat is a snapshot of the ramdisk's usage.
type Stat struct {
	Super      super.SuperBlock
	Used       []bool // allocation state of every data block
	FreeBlocks uint64
	Tables     uint64
}

func (rd *Ramdisk) Stat() (Stat, error) {
	var st Stat
	err := rd.with(func(rs *regions) error {
		st.Used = rs.alloc.Snapshot()
		st.FreeBlocks = rs.alloc.NumFree()
		st.Super = rs.super.Get()
		return nil
	})
	st.Tables = rd.fdts.Len()
	return st, err
}

// File descriptor tables are keyed by the caller's process id and are
// independent of the arena.

func (rd *Ramdisk) CreateTable(pid common.Pid) error {
	return rd.fdts.Create(pid)
}

func (rd *Ramdisk) Table(pid common.Pid) (*fdt.Table, bool) {
	return rd.fdts.Get(pid)
}

func (rd *Ramdisk) RemoveTable(pid common.Pid) {
	rd.fdts.Remove(pid)
}

func (rd *Ramdisk) Tables() *fdt.Registry {
	return rd.fdts
}
