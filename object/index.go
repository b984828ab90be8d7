package object

// hasID is satisfied by any object that can report the id it lives
// under, which for this module means *Inode and *Block (both embed
// Object, so both inherit ObjectID via promotion).
type hasID interface {
	ObjectID() uint32
}

const defaultBucketCount = 64

// Index is a fixed-bucket-count hash index from id to object. It
// replaces the original's SLIST-per-hash-bucket (ffs_hash_entry
// chained through SLIST_ENTRY) with a slice per bucket — restore
// builds the whole index up front and then mutates it in place, so
// there is no need for the original's intrusive-list node reuse.
type Index[T hasID] struct {
	buckets [][]T
	count   int
}

// NewIndex builds an empty index.
func NewIndex[T hasID]() *Index[T] {
	return &Index[T]{buckets: make([][]T, defaultBucketCount)}
}

func (ix *Index[T]) bucketFor(id uint32) int {
	return int(id % uint32(len(ix.buckets)))
}

// Find returns the object stored under id, or the zero value and
// false if none is indexed.
func (ix *Index[T]) Find(id uint32) (T, bool) {
	b := ix.buckets[ix.bucketFor(id)]
	for _, v := range b {
		if v.ObjectID() == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Insert adds v, replacing any existing entry with the same id.
func (ix *Index[T]) Insert(v T) {
	idx := ix.bucketFor(v.ObjectID())
	b := ix.buckets[idx]
	for i, existing := range b {
		if existing.ObjectID() == v.ObjectID() {
			b[i] = v
			return
		}
	}
	ix.buckets[idx] = append(b, v)
	ix.count++
}

// Delete removes the entry for id, if any.
func (ix *Index[T]) Delete(id uint32) {
	idx := ix.bucketFor(id)
	b := ix.buckets[idx]
	for i, existing := range b {
		if existing.ObjectID() == id {
			ix.buckets[idx] = append(b[:i], b[i+1:]...)
			ix.count--
			return
		}
	}
}

// Len reports how many objects are currently indexed.
func (ix *Index[T]) Len() int { return ix.count }

// Each calls fn once per indexed object, in unspecified order.
func (ix *Index[T]) Each(fn func(T)) {
	for _, b := range ix.buckets {
		for _, v := range b {
			fn(v)
		}
	}
}

// Sweep removes every object for which remove returns true, calling
// removed for each one as it goes. Unlike the original's
// ffs_restore_sweep, which walks a SLIST and must take care to fetch
// SLIST_NEXT before freeing the current node, this rebuilds each
// bucket slice in place, which is inherently safe against removing
// the element currently being visited.
func (ix *Index[T]) Sweep(remove func(T) bool, removed func(T)) {
	for bi, b := range ix.buckets {
		kept := b[:0]
		for _, v := range b {
			if remove(v) {
				ix.count--
				if removed != nil {
					removed(v)
				}
				continue
			}
			kept = append(kept, v)
		}
		ix.buckets[bi] = kept
	}
}
