// Package fdt keeps the per-process file descriptor tables.
//
// A Table is a fixed-capacity array of slots, each either free or holding a
// FileObject. A Registry maps process ids to their Table; a process has at
// most one Table at a time.
package fdt

import (
	"fmt"
	"sync"

	"github.com/mit-pdos/go-ramdisk/common"
	"github.com/mit-pdos/go-ramdisk/util"
)

// Fd is a slot number in a Table.
type Fd uint16

// FileObject is the state behind one open file descriptor.
type FileObject struct {
	Inum  common.Inum
	Pos   uint64
	Flags uint32
}

type Table struct {
	mu      *sync.Mutex // protects entries and nfree
	owner   common.Pid
	entries []*FileObject // nil entries are free
	nfree   uint64
}

func mkTable(owner common.Pid, n uint64) *Table {
	return &Table{
		mu:      new(sync.Mutex),
		owner:   owner,
		entries: make([]*FileObject, n),
		nfree:   n,
	}
}

func (t *Table) Owner() common.Pid {
	return t.owner
}

// Len is the number of slots, free or not.
func (t *Table) Len() uint64 {
	t.mu.Lock()
	n := uint64(len(t.entries))
	t.mu.Unlock()
	return n
}

func (t *Table) NumFree() uint64 {
	t.mu.Lock()
	n := t.nfree
	t.mu.Unlock()
	return n
}

func (t *Table) NumUsed() uint64 {
	t.mu.Lock()
	n := uint64(len(t.entries)) - t.nfree
	t.mu.Unlock()
	return n
}

// Insert stores fo in the lowest free slot.
func (t *Table) Insert(fo FileObject) (Fd, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.nfree == 0 {
		return 0, fmt.Errorf("process %d, %d slots: %w", t.owner, len(t.entries), common.ErrTableFull)
	}
	for i, e := range t.entries {
		if e == nil {
			obj := fo
			t.entries[i] = &obj
			t.nfree--
			util.DPrintf(5, "fdt %d: insert fd %d inum %d\n", t.owner, i, fo.Inum)
			return Fd(i), nil
		}
	}
	panic("fdt: nfree does not match entries")
}

// Get returns the object at fd. The pointer stays valid until fd is removed
// or the table is dropped from its Registry.
func (t *Table) Get(fd Fd) (*FileObject, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(fd) >= len(t.entries) {
		return nil, false
	}
	e := t.entries[fd]
	return e, e != nil
}

// Update calls f on the object at fd while holding the table lock.
func (t *Table) Update(fd Fd, f func(fo *FileObject)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(fd) >= len(t.entries) || t.entries[fd] == nil {
		return fmt.Errorf("process %d fd %d: %w", t.owner, fd, common.ErrBadFd)
	}
	f(t.entries[fd])
	return nil
}

// Remove frees fd. Removing a free or out-of-range slot does nothing.
func (t *Table) Remove(fd Fd) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if int(fd) >= len(t.entries) || t.entries[fd] == nil {
		util.Warnf("fdt %d: remove of unused fd %d", t.owner, fd)
		return
	}
	t.entries[fd] = nil
	t.nfree++
}

// Grow extends the table to n slots. Tables never grow on their own; a full
// table fails Insert until the caller grows it or removes an entry.
func (t *Table) Grow(n uint64) error {
	if n > common.MaxFiles {
		return fmt.Errorf("grow to %d slots, max %d: %w", n, common.MaxFiles, common.ErrTableFull)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := uint64(len(t.entries))
	if n <= cur {
		return nil
	}
	entries := make([]*FileObject, n)
	copy(entries, t.entries)
	t.entries = entries
	t.nfree += n - cur
	util.DPrintf(5, "fdt %d: grow %d -> %d\n", t.owner, cur, n)
	return nil
}
