package fdt

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mit-pdos/go-ramdisk/common"
	"github.com/mit-pdos/go-ramdisk/util"
)

type tableShard struct {
	mu     *sync.RWMutex
	tables map[common.Pid]*Table
}

func mkTableShard() *tableShard {
	return &tableShard{
		mu:     new(sync.RWMutex),
		tables: make(map[common.Pid]*Table),
	}
}

// Registry maps process ids to file descriptor tables. Lookups of
// different processes only contend when they hash to the same shard.
type Registry struct {
	shards  []*tableShard
	initLen uint64
}

const NSHARD uint64 = 61

// MkRegistry returns an empty registry whose tables start with initLen
// slots.
func MkRegistry(initLen uint64) *Registry {
	var shards []*tableShard
	for i := uint64(0); i < NSHARD; i++ {
		shards = append(shards, mkTableShard())
	}
	return &Registry{
		shards:  shards,
		initLen: initLen,
	}
}

func (r *Registry) getShard(pid common.Pid) *tableShard {
	return r.shards[uint64(uint32(pid))%NSHARD]
}

// Create makes an empty table for pid.
func (r *Registry) Create(pid common.Pid) error {
	shard := r.getShard(pid)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	if _, ok := shard.tables[pid]; ok {
		util.Warnf("fdt: process %d already has a table", pid)
		return fmt.Errorf("process %d: %w", pid, common.ErrAlreadyExists)
	}
	shard.tables[pid] = mkTable(pid, r.initLen)
	util.DPrintf(3, "fdt: create table for process %d\n", pid)
	return nil
}

func (r *Registry) Get(pid common.Pid) (*Table, bool) {
	shard := r.getShard(pid)
	shard.mu.RLock()
	t, ok := shard.tables[pid]
	shard.mu.RUnlock()
	return t, ok
}

// Remove drops pid's table. A missing table is reported, not returned.
func (r *Registry) Remove(pid common.Pid) {
	shard := r.getShard(pid)
	shard.mu.Lock()
	_, ok := shard.tables[pid]
	delete(shard.tables, pid)
	shard.mu.Unlock()
	if !ok {
		util.Warnf("fdt: remove of nonexistent table for process %d", pid)
		return
	}
	util.DPrintf(3, "fdt: remove table for process %d\n", pid)
}

func (r *Registry) Len() uint64 {
	var n uint64
	for _, shard := range r.shards {
		shard.mu.RLock()
		n += uint64(len(shard.tables))
		shard.mu.RUnlock()
	}
	return n
}

// Pids lists the processes with a table, in increasing order.
func (r *Registry) Pids() []common.Pid {
	var pids []common.Pid
	for _, shard := range r.shards {
		shard.mu.RLock()
		for pid := range shard.tables {
			pids = append(pids, pid)
		}
		shard.mu.RUnlock()
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}
