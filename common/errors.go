package common

import "errors"

var (
	ErrAlreadyInitialized = errors.New("ramdisk already initialized")
	ErrNotInitialized     = errors.New("ramdisk not initialized")
	ErrOutOfMemory        = errors.New("out of memory")
	ErrStorageFull        = errors.New("no free data block")
	ErrInvalidBlock       = errors.New("invalid block number")
	ErrInvalidIndex       = errors.New("invalid inode index")
	ErrAlreadyExists      = errors.New("file descriptor table already exists")
	ErrTableFull          = errors.New("file descriptor table full")
	ErrBadFd              = errors.New("bad file descriptor")
	ErrInvalidCommand     = errors.New("invalid command")
	ErrInvalidGeometry    = errors.New("invalid ramdisk geometry")
	ErrBadBlockSize       = errors.New("buffer is not block-sized")
	ErrBadInodeSize       = errors.New("record larger than an inode")
)
