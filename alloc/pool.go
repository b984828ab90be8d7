// Package alloc provides fixed-capacity object pools for the
// restored inode and block graph, modeled on the teacher's
// util.ByteSliceAtomicList free-list (get from the free list, or
// manufacture a new value; put back onto the free list when done)
// and, in turn, on the original's os_mempool-backed
// ffs_inode_entry_pool / ffs_block_entry_pool: a restore running on a
// memory-constrained device must fail with an out-of-memory error
// rather than grow without bound (spec.md §7's OOM class).
//
// Unlike the teacher's version this pool is not lock-free: restore
// runs as a single exclusive pass (spec.md §5), so there is no
// concurrent access to guard against, and a plain slice-backed stack
// is both simpler and avoids the teacher's atomic CAS loop spinning
// for no reason.
package alloc

import "github.com/go-ffs/ffs/ffserr"

// Pool hands out and reclaims values of type T, capping the number
// live at once. A capacity of 0 means unbounded, which is what most
// tests in this module use; the OOM tests and a mount driver restoring
// onto a real memory-constrained device set a real capacity.
type Pool[T any] struct {
	new      func() T
	capacity int
	live     int
	free     []T
}

// NewPool builds a pool that manufactures new values with newFn,
// capped at capacity live values (0 for unbounded).
func NewPool[T any](capacity int, newFn func() T) *Pool[T] {
	return &Pool[T]{new: newFn, capacity: capacity}
}

// Get returns a value off the free list, or manufactures a fresh one.
// It returns ffserr.OOM once capacity live values are already
// outstanding.
func (p *Pool[T]) Get() (T, error) {
	var zero T
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		p.free = p.free[:n-1]
		p.live++
		return v, nil
	}
	if p.capacity > 0 && p.live >= p.capacity {
		return zero, ffserr.OOM
	}
	p.live++
	return p.new(), nil
}

// Put returns value to the free list for reuse.
func (p *Pool[T]) Put(value T) {
	p.free = append(p.free, value)
	p.live--
}

// Live reports how many values are currently checked out.
func (p *Pool[T]) Live() int { return p.live }

// Cap reports the pool's configured capacity, or 0 for unbounded.
func (p *Pool[T]) Cap() int { return p.capacity }
