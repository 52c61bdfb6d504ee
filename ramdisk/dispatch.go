package ramdisk

import (
	"fmt"

	"github.com/mit-pdos/go-ramdisk/common"
	"github.com/mit-pdos/go-ramdisk/util"
)

// Cmd is a control command code, in the style of an ioctl request number.
type Cmd uint32

const (
	CmdInit        Cmd = 0x5200 + iota
	CmdCreateTable     // arg: pid
	CmdRemoveTable     // arg: pid
	CmdAllocBlock      // returns the block number
	CmdFreeBlock       // arg: block number
	CmdStat            // returns the number of free blocks
)

func (c Cmd) String() string {
	switch c {
	case CmdInit:
		return "INIT"
	case CmdCreateTable:
		return "CREATE_FDT"
	case CmdRemoveTable:
		return "REMOVE_FDT"
	case CmdAllocBlock:
		return "ALLOC_BLOCK"
	case CmdFreeBlock:
		return "FREE_BLOCK"
	case CmdStat:
		return "STAT"
	}
	return fmt.Sprintf("Cmd(%#x)", uint32(c))
}

// Dispatch is the single control entry point. Every command other than
// CmdInit is refused until the ramdisk is initialized.
func (rd *Ramdisk) Dispatch(cmd Cmd, arg uint64) (uint64, error) {
	util.DPrintf(5, "Dispatch: %v %d\n", cmd, arg)
	if cmd != CmdInit && !rd.IsReady() {
		util.Log.Errorf("ramdisk: %v called before initialization", cmd)
		return 0, common.ErrNotInitialized
	}
	switch cmd {
	case CmdInit:
		return 0, rd.Initialize()
	case CmdCreateTable:
		return 0, rd.CreateTable(common.Pid(arg))
	case CmdRemoveTable:
		rd.RemoveTable(common.Pid(arg))
		return 0, nil
	case CmdAllocBlock:
		bn, err := rd.AllocBlock()
		return uint64(bn), err
	case CmdFreeBlock:
		return 0, rd.FreeBlock(common.Bnum(arg))
	case CmdStat:
		st, err := rd.Stat()
		return st.FreeBlocks, err
	}
	return 0, fmt.Errorf("%v: %w", cmd, common.ErrInvalidCommand)
}
