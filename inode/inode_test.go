package inode

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-ramdisk/common"
)

func mkTable() (*Table, []byte) {
	mem := make([]byte, common.NInodeBlocks*common.BlockSize)
	return MkTable(mem, common.InodeSize, common.BlockSize), mem
}

func TestCapacity(t *testing.T) {
	tbl, _ := mkTable()
	assert.Equal(t, uint64(1024), tbl.Len())
}

func TestRecordPacking(t *testing.T) {
	assert := assert.New(t)
	tbl, mem := mkTable()
	perBlock := common.BlockSize / common.InodeSize
	for _, inum := range []uint64{0, perBlock - 1, perBlock, 5*perBlock + 2} {
		rec, err := tbl.RecordAt(common.Inum(inum))
		require.NoError(t, err)
		rec[0] = byte(inum + 1)
		off := (inum/perBlock)*common.BlockSize + (inum%perBlock)*common.InodeSize
		assert.Equal(byte(inum+1), mem[off], "inode %d", inum)
	}
}

func TestMkTableBadSizes(t *testing.T) {
	assert.Panics(t, func() { MkTable(make([]byte, 512), 48, 256) })
	assert.Panics(t, func() { MkTable(make([]byte, 500), 64, 256) })
	assert.Panics(t, func() { MkTable(make([]byte, 512), 0, 256) })
}

func TestRecordAtBounds(t *testing.T) {
	assert := assert.New(t)
	tbl, mem := mkTable()

	rec, err := tbl.RecordAt(common.Inum(tbl.Len() - 1))
	require.NoError(t, err)
	assert.Equal(int(common.InodeSize), len(rec))
	assert.Equal(len(rec), cap(rec))
	rec[0] = 0xab
	assert.Equal(byte(0xab), mem[uint64(len(mem))-common.InodeSize])

	_, err = tbl.RecordAt(common.Inum(tbl.Len()))
	assert.True(errors.Is(err, common.ErrInvalidIndex))
	assert.True(errors.Is(tbl.Read(1<<20, func(Record) {}), common.ErrInvalidIndex))
	assert.True(errors.Is(tbl.Write(1<<20, func(Record) {}), common.ErrInvalidIndex))
}

func TestZeroed(t *testing.T) {
	tbl, _ := mkTable()
	for i := uint64(0); i < tbl.Len(); i++ {
		data, err := tbl.Load(common.Inum(i))
		require.NoError(t, err)
		assert.Equal(t, make([]byte, common.InodeSize), data)
	}
}

func TestStoreLoad(t *testing.T) {
	assert := assert.New(t)
	tbl, _ := mkTable()
	assert.NoError(tbl.Write(3, func(rec Record) {
		for i := range rec {
			rec[i] = 0xff
		}
	}))
	assert.NoError(tbl.Store(3, []byte{1, 2, 3}))
	data, err := tbl.Load(3)
	assert.NoError(err)
	assert.Equal([]byte{1, 2, 3}, data[:3])
	assert.Equal(make([]byte, common.InodeSize-3), data[3:], "tail is zeroed")

	neighbour, _ := tbl.Load(4)
	assert.Equal(make([]byte, common.InodeSize), neighbour)

	err = tbl.Store(3, make([]byte, common.InodeSize+1))
	assert.True(errors.Is(err, common.ErrBadInodeSize), "%v", err)
	data, _ = tbl.Load(3)
	assert.Equal([]byte{1, 2, 3}, data[:3], "oversized store leaves the record alone")
}

func TestAcquire(t *testing.T) {
	tbl, _ := mkTable()
	var wg sync.WaitGroup
	count := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if !assert.NoError(t, tbl.Acquire(1)) {
					return
				}
				count++
				tbl.Release(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, count)
	assert.True(t, errors.Is(tbl.Acquire(common.Inum(tbl.Len())), common.ErrInvalidIndex))
}
