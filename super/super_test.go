package super

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-ramdisk/layout"
)

func mkSuper(t *testing.T) (*Super, *layout.Layout, []byte) {
	l, err := layout.MkLayout(layout.DefaultGeometry())
	require.NoError(t, err)
	mem := make([]byte, l.Size)
	return MkSuper(l.Super(mem), l, 3), l, mem
}

func TestMkSuper(t *testing.T) {
	assert := assert.New(t)
	s, l, _ := mkSuper(t)
	sb := s.Get()
	assert.Equal(Magic, sb.Magic)
	assert.Equal(uint64(3), sb.Generation)
	assert.Equal(l.Size, sb.Size)
	assert.Equal(l.BlockSize, sb.BlockSize)
	assert.Equal(l.InodeStart, sb.InodeStart)
	assert.Equal(l.BitmapStart, sb.BitmapStart)
	assert.Equal(l.DataStart, sb.DataStart)
	assert.Equal(l.NInodes, sb.NInodes)
	assert.Equal(l.NDataBlocks, sb.NDataBlocks)
	assert.Equal(l.NDataBlocks, sb.FreeBlocks)
}

func TestEncodingFitsMinBlock(t *testing.T) {
	assert.LessOrEqual(t, nfields*8, layout.MinBlockSize)
	l, err := layout.MkLayout(layout.Geometry{Size: 80 * 64, BlockSize: layout.MinBlockSize,
		InodeSize: 80, NInodeBlocks: 1, NBitmapBlocks: 1})
	require.NoError(t, err)
	mem := make([]byte, l.Size)
	s := MkSuper(l.Super(mem), l, 1)
	assert.Equal(t, l.NDataBlocks, s.Get().FreeBlocks)
}

func TestSuperStaysInBlockZero(t *testing.T) {
	s, l, mem := mkSuper(t)
	s.Update(func(sb *SuperBlock) { sb.FreeBlocks = 0 })
	for i := l.InodeStart; i < l.Size; i++ {
		if mem[i] != 0 {
			t.Fatalf("superblock leaked into byte %d", i)
		}
	}
}

func TestConcurrentUpdate(t *testing.T) {
	s, l, _ := mkSuper(t)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Update(func(sb *SuperBlock) { sb.FreeBlocks-- })
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, l.NDataBlocks-1600, s.Get().FreeBlocks)
}
