package common

// Reference sizing of the ramdisk. These are fixed at build time; a
// layout.Geometry is derived from them.
const (
	RDSize        uint64 = 0x200000 // 2 MiB arena
	BlockSize     uint64 = 256
	InodeSize     uint64 = 64
	NInodeBlocks  uint64 = 256
	NBitmapBlocks uint64 = 4

	NBITBLOCK uint64 = BlockSize * 8
	INODEBLK  uint64 = BlockSize / InodeSize

	NInodes     uint64 = NInodeBlocks * INODEBLK
	NDataBlocks uint64 = (RDSize - BlockSize*(1+NInodeBlocks+NBitmapBlocks)) / BlockSize

	// initial number of slots in a process's file descriptor table
	InitFdtLen uint64 = 64
	MaxFiles   uint64 = 1023
)

// Shape of inodes and directories as seen by the file layer.
const (
	Direct             uint64 = 8
	PtrSize            uint64 = 4
	PtrsPerBlock       uint64 = BlockSize / PtrSize
	DirEntrySize       uint64 = 16
	DirEntriesPerBlock uint64 = BlockSize / DirEntrySize
	MaxFileNameLen     uint64 = 14 // including the terminating NUL
	MaxFileSize        uint64 = BlockSize * (Direct + PtrsPerBlock + PtrsPerBlock*PtrsPerBlock)
)

type Inum uint64
type Bnum = uint64

// Pid identifies the process that owns a file descriptor table. It is
// supplied by the caller and never derived here.
type Pid int
