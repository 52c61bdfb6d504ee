// Command rdctl builds a ramdisk, drives it through its control entry point
// and reports on the result.
package main

import (
	"flag"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/mit-pdos/go-ramdisk/arena"
	"github.com/mit-pdos/go-ramdisk/common"
	"github.com/mit-pdos/go-ramdisk/ramdisk"
	"github.com/mit-pdos/go-ramdisk/report"
	"github.com/mit-pdos/go-ramdisk/util"
)

func main() {
	nblocks := flag.Uint64("blocks", 128, "Number of data blocks to allocate")
	nprocs := flag.Int("procs", 4, "Number of processes to create fd tables for")
	fdtLen := flag.Uint64("fdt-len", common.InitFdtLen, "Initial fd table length")
	heap := flag.Bool("heap", false, "Allocate the arena on the Go heap instead of mmap")
	pngPath := flag.String("png", "", "Write a usage report PNG to this path")
	debug := flag.Uint64("debug", 0, "Debug print level")
	flag.Parse()

	util.Debug = *debug
	log := util.Log

	cfg := ramdisk.DefaultConfig()
	cfg.InitFdtLen = *fdtLen
	if *heap {
		cfg.Allocator = arena.Heap()
	}
	rd, err := ramdisk.MkRamdisk(cfg)
	if err != nil {
		log.Fatalf("Failed to configure ramdisk: %v", err)
	}

	if _, err := rd.Dispatch(ramdisk.CmdInit, 0); err != nil {
		log.Fatalf("Failed to initialize ramdisk: %v", err)
	}
	defer rd.Teardown()

	for pid := 1; pid <= *nprocs; pid++ {
		if _, err := rd.Dispatch(ramdisk.CmdCreateTable, uint64(pid)); err != nil {
			log.Fatalf("Failed to create fd table for %d: %v", pid, err)
		}
	}
	for i := uint64(0); i < *nblocks; i++ {
		if _, err := rd.Dispatch(ramdisk.CmdAllocBlock, 0); err != nil {
			log.Warnf("Stopped after %d blocks: %v", i, err)
			break
		}
	}

	st, err := rd.Stat()
	if err != nil {
		log.Fatalf("Failed to stat ramdisk: %v", err)
	}
	l := rd.Layout()
	log.WithFields(logrus.Fields{
		"size":         l.Size,
		"inode_start":  l.InodeStart,
		"bitmap_start": l.BitmapStart,
		"data_start":   l.DataStart,
		"inodes":       l.NInodes,
		"blocks":       l.NDataBlocks,
	}).Info("layout")
	log.WithFields(logrus.Fields{
		"generation":  st.Super.Generation,
		"free_blocks": st.FreeBlocks,
		"tables":      st.Tables,
	}).Info("usage")

	if *pngPath != "" {
		f, err := os.Create(*pngPath)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *pngPath, err)
		}
		defer f.Close()
		if err := report.Render(l, st, f); err != nil {
			log.Fatalf("Failed to render report: %v", err)
		}
		log.Infof("Wrote report to %s", *pngPath)
	}
}
