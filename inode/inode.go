// Package inode manages the inode table region of the arena.
//
// The table is a fixed array of fixed-size records. What a record contains
// belongs to the file layer; this package guarantees only that the records
// exist, are zeroed when the arena is built, and are accessed in bounds and
// under the table's reader/writer lock.
package inode

import (
	"fmt"
	"sync"

	"github.com/mit-pdos/go-ramdisk/addr"
	"github.com/mit-pdos/go-ramdisk/common"
	"github.com/mit-pdos/go-ramdisk/lockmap"
	"github.com/mit-pdos/go-ramdisk/util"
)

// Record is a view of one inode's bytes inside the arena.
type Record []byte

type Table struct {
	mu        *sync.RWMutex // protects the contents of mem
	mem       []byte
	recSz     uint64
	blockSize uint64
	n         uint64
	locks     *lockmap.LockMap
}

// MkTable lays out records of recSz bytes, packed blockSize bytes to a
// block, over mem.
func MkTable(mem []byte, recSz uint64, blockSize uint64) *Table {
	if recSz == 0 || blockSize == 0 || blockSize%recSz != 0 || uint64(len(mem))%blockSize != 0 {
		panic("MkTable")
	}
	t := &Table{
		mu:        new(sync.RWMutex),
		mem:       mem,
		recSz:     recSz,
		blockSize: blockSize,
		n:         uint64(len(mem)) / recSz,
		locks:     lockmap.MkLockMap(),
	}
	util.DPrintf(5, "MkTable: %d records of %d bytes\n", t.n, recSz)
	return t
}

func (t *Table) Len() uint64 {
	return t.n
}

// RecordAt returns the record for inum. The view aliases the arena; callers
// must coordinate access through Read/Write or hold the inode via Acquire.
func (t *Table) RecordAt(inum common.Inum) (Record, error) {
	if uint64(inum) >= t.n {
		return nil, fmt.Errorf("inode %d of %d: %w", inum, t.n, common.ErrInvalidIndex)
	}
	off := addr.MkObjAddr(0, uint64(inum), t.recSz, t.blockSize).Byte(t.blockSize)
	return Record(t.mem[off : off+t.recSz : off+t.recSz]), nil
}

// Read calls f with the record for inum while holding the table read lock.
func (t *Table) Read(inum common.Inum, f func(rec Record)) error {
	rec, err := t.RecordAt(inum)
	if err != nil {
		return err
	}
	t.mu.RLock()
	f(rec)
	t.mu.RUnlock()
	return nil
}

// Write calls f with the record for inum while holding the table write lock.
func (t *Table) Write(inum common.Inum, f func(rec Record)) error {
	rec, err := t.RecordAt(inum)
	if err != nil {
		return err
	}
	t.mu.Lock()
	f(rec)
	t.mu.Unlock()
	return nil
}

// Load returns a copy of the record for inum.
func (t *Table) Load(inum common.Inum) ([]byte, error) {
	var data []byte
	err := t.Read(inum, func(rec Record) {
		data = util.CloneByteSlice(rec)
	})
	return data, err
}

// Store overwrites the record for inum. data may be shorter than a record;
// the remainder is zeroed.
func (t *Table) Store(inum common.Inum, data []byte) error {
	if uint64(len(data)) > t.recSz {
		return fmt.Errorf("%d bytes into a %d-byte inode: %w",
			len(data), t.recSz, common.ErrBadInodeSize)
	}
	return t.Write(inum, func(rec Record) {
		n := copy(rec, data)
		for i := n; i < len(rec); i++ {
			rec[i] = 0
		}
	})
}

// Acquire holds inum on behalf of a file operation that spans several
// record accesses. It does not block Read or Write.
func (t *Table) Acquire(inum common.Inum) error {
	if uint64(inum) >= t.n {
		return fmt.Errorf("inode %d of %d: %w", inum, t.n, common.ErrInvalidIndex)
	}
	t.locks.Acquire(uint64(inum))
	return nil
}

func (t *Table) Release(inum common.Inum) {
	t.locks.Release(uint64(inum))
}
