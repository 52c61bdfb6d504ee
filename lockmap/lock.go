// Package lockmap provides one logical lock per uint64 key without
// allocating a lock for every key.
//
// Keys are spread over a fixed number of shards; shard i owns every key k
// with k % NSHARD == i. A key's state exists only while the key is held or
// waited on, so an idle LockMap holds no per-key memory.
package lockmap

import (
	"sync"
)

type keyState struct {
	held    bool
	cond    *sync.Cond
	waiters uint64
}

type shard struct {
	mu    *sync.Mutex
	state map[uint64]*keyState
}

func mkShard() *shard {
	return &shard{
		mu:    new(sync.Mutex),
		state: make(map[uint64]*keyState),
	}
}

// Assumes caller holds sh.mu
func (sh *shard) lookup(key uint64) *keyState {
	st, ok := sh.state[key]
	if !ok {
		st = &keyState{cond: sync.NewCond(sh.mu)}
		sh.state[key] = st
	}
	return st
}

func (sh *shard) acquire(key uint64) {
	sh.mu.Lock()
	st := sh.lookup(key)
	for st.held {
		st.waiters++
		st.cond.Wait()
		st.waiters--
	}
	st.held = true
	sh.mu.Unlock()
}

func (sh *shard) release(key uint64) {
	sh.mu.Lock()
	st, ok := sh.state[key]
	if !ok || !st.held {
		panic("lockmap: release of unheld key")
	}
	st.held = false
	if st.waiters > 0 {
		st.cond.Signal()
	} else {
		delete(sh.state, key)
	}
	sh.mu.Unlock()
}

const NSHARD uint64 = 43

type LockMap struct {
	shards []*shard
}

func MkLockMap() *LockMap {
	shards := make([]*shard, NSHARD)
	for i := range shards {
		shards[i] = mkShard()
	}
	return &LockMap{shards: shards}
}

func (lmap *LockMap) Acquire(key uint64) {
	lmap.shards[key%NSHARD].acquire(key)
}

func (lmap *LockMap) Release(key uint64) {
	lmap.shards[key%NSHARD].release(key)
}

// nheld counts keys with live state; used by tests to check cleanup.
func (lmap *LockMap) nheld() int {
	n := 0
	for _, sh := range lmap.shards {
		sh.mu.Lock()
		n += len(sh.state)
		sh.mu.Unlock()
	}
	return n
}
