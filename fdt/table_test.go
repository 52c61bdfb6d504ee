package fdt

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mit-pdos/go-ramdisk/common"
	"github.com/mit-pdos/go-ramdisk/util"
)

func TestTableCapacity(t *testing.T) {
	assert := assert.New(t)
	tbl := mkTable(7, 4)

	seen := make(map[Fd]bool)
	for i := 0; i < 4; i++ {
		fd, err := tbl.Insert(FileObject{Inum: common.Inum(i)})
		require.NoError(t, err)
		assert.False(seen[fd], "fd %d handed out twice", fd)
		seen[fd] = true
	}
	assert.Equal(uint64(0), tbl.NumFree())
	_, err := tbl.Insert(FileObject{})
	assert.True(errors.Is(err, common.ErrTableFull))

	tbl.Remove(2)
	fd, err := tbl.Insert(FileObject{Inum: 9})
	assert.NoError(err)
	assert.Equal(Fd(2), fd, "lowest free slot is reused")
	_, err = tbl.Insert(FileObject{})
	assert.True(errors.Is(err, common.ErrTableFull))
}

func TestTableGet(t *testing.T) {
	assert := assert.New(t)
	tbl := mkTable(1, 4)
	fd, _ := tbl.Insert(FileObject{Inum: 5, Pos: 10, Flags: 2})

	fo, ok := tbl.Get(fd)
	assert.True(ok)
	assert.Equal(FileObject{Inum: 5, Pos: 10, Flags: 2}, *fo)

	_, ok = tbl.Get(fd + 1)
	assert.False(ok, "free slot")
	_, ok = tbl.Get(100)
	assert.False(ok, "out of range")
}

func TestTableUpdate(t *testing.T) {
	tbl := mkTable(1, 2)
	fd, _ := tbl.Insert(FileObject{Inum: 5})
	require.NoError(t, tbl.Update(fd, func(fo *FileObject) { fo.Pos += 100 }))
	fo, _ := tbl.Get(fd)
	assert.Equal(t, uint64(100), fo.Pos)

	err := tbl.Update(1, func(fo *FileObject) {})
	assert.True(t, errors.Is(err, common.ErrBadFd))
}

func TestTableRemoveUnused(t *testing.T) {
	hook := test.NewLocal(util.Log)
	defer hook.Reset()

	tbl := mkTable(3, 2)
	tbl.Remove(1)
	tbl.Remove(50)
	assert.Equal(t, uint64(2), tbl.NumFree(), "removing a free slot changes nothing")
	require.Len(t, hook.Entries, 2)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestTableGrow(t *testing.T) {
	assert := assert.New(t)
	tbl := mkTable(1, 2)
	tbl.Insert(FileObject{Inum: 1})
	tbl.Insert(FileObject{Inum: 2})

	assert.NoError(tbl.Grow(4))
	assert.Equal(uint64(4), tbl.Len())
	assert.Equal(uint64(2), tbl.NumFree())
	fo, ok := tbl.Get(1)
	assert.True(ok)
	assert.Equal(common.Inum(2), fo.Inum, "entries survive growth")

	fd, err := tbl.Insert(FileObject{})
	assert.NoError(err)
	assert.Equal(Fd(2), fd)

	assert.NoError(tbl.Grow(3), "shrinking is a no-op")
	assert.Equal(uint64(4), tbl.Len())

	assert.True(errors.Is(tbl.Grow(common.MaxFiles+1), common.ErrTableFull))
}
