package disk

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-ramdisk/common"
)

func data(sz uint64) Block {
	d := make(Block, sz)
	rand.Read(d)
	return d
}

func mkDisk() (*MemDisk, []byte) {
	mem := make([]byte, common.NDataBlocks*common.BlockSize)
	return NewMemDisk(mem, common.BlockSize), mem
}

func TestReadWrite(t *testing.T) {
	assert := assert.New(t)
	d, mem := mkDisk()

	sz, err := d.Size()
	assert.NoError(err)
	assert.Equal(common.NDataBlocks, sz)

	x := data(common.BlockSize)
	require.NoError(t, d.Write(2, x))
	b, err := d.Read(2)
	assert.NoError(err)
	assert.Equal(x, b, "read incorrect data")
	assert.Equal([]byte(x), mem[2*common.BlockSize:3*common.BlockSize])

	b[0]++
	b2, _ := d.Read(2)
	assert.Equal(x, b2, "Read returns a copy")

	assert.NoError(d.Barrier())
	assert.NoError(d.Close())
}

func TestOutOfRange(t *testing.T) {
	d, _ := mkDisk()
	_, err := d.Read(common.NDataBlocks)
	assert.True(t, errors.Is(err, common.ErrInvalidBlock))
	err = d.Write(common.NDataBlocks, data(common.BlockSize))
	assert.True(t, errors.Is(err, common.ErrInvalidBlock))
	err = d.ReadTo(1<<63, make(Block, common.BlockSize))
	assert.True(t, errors.Is(err, common.ErrInvalidBlock))
}

func TestBadBlockSize(t *testing.T) {
	d, _ := mkDisk()
	err := d.Write(0, make(Block, 10))
	assert.True(t, errors.Is(err, common.ErrBadBlockSize))
	err = d.ReadTo(0, make(Block, common.BlockSize+1))
	assert.True(t, errors.Is(err, common.ErrBadBlockSize))
}

func TestWriteStaysInBlock(t *testing.T) {
	d, _ := mkDisk()
	x := make(Block, common.BlockSize)
	for i := range x {
		x[i] = 0xff
	}
	require.NoError(t, d.Write(5, x))
	b, _ := d.Read(6)
	assert.Equal(t, make(Block, common.BlockSize), b, "write must not spill into the next block")
	b, _ = d.Read(4)
	assert.Equal(t, make(Block, common.BlockSize), b)
}

func TestConcurrentReadWrite(t *testing.T) {
	d, _ := mkDisk()
	var wg sync.WaitGroup
	for i := uint64(0); i < 8; i++ {
		wg.Add(1)
		go func(i uint64) {
			defer wg.Done()
			x := data(common.BlockSize)
			for j := 0; j < 50; j++ {
				assert.NoError(t, d.Write(i, x))
				b, err := d.Read(i)
				assert.NoError(t, err)
				assert.Equal(t, x, b)
			}
		}(i)
	}
	wg.Wait()
}
