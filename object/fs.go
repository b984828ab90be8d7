package object

import "github.com/go-ffs/ffs/util"

// Area is what restore's object graph needs to remember about each
// area after detection: its index-stable position in the device
// list, and the area header restore read off it.
type Area struct {
	ID     uint16
	GCSeq  uint32
	Base   int64
	Length int64
}

// FS is the explicit, caller-held restore result (spec.md §9's design
// note: "an explicit handle, not package-level globals"). Nothing in
// this module reaches for a package-level filesystem; every operation
// takes an *FS, the same way the teacher's own filesystem types are
// threaded explicitly rather than reached for via globals.
type FS struct {
	lock util.MutexLocked

	Inodes *Index[*Inode]
	Blocks *Index[*Block]

	Areas          []Area
	ScratchAreaIdx int // NoAreaIdx if none

	Root   *Inode
	NextID uint32
}

// New returns an empty handle, ready for restore to populate.
func New() *FS {
	return &FS{
		Inodes:         NewIndex[*Inode](),
		Blocks:         NewIndex[*Block](),
		ScratchAreaIdx: NoAreaIdx,
		NextID:         1,
	}
}

// Lock serializes access to fs for the duration of the returned
// unlock call, matching spec.md §5's single-exclusive-pass
// concurrency model: restore holds this for the whole mount, and any
// caller wanting to inspect fs concurrently with a later re-restore
// must take the same lock.
func (fs *FS) Lock() (unlock func()) { return fs.lock.Locked() }

// Reset discards every restored object, leaving fs as if New had just
// been called. restore.Mount calls it on any fatal error.
func (fs *FS) Reset() {
	fs.Inodes = NewIndex[*Inode]()
	fs.Blocks = NewIndex[*Block]()
	fs.Areas = nil
	fs.ScratchAreaIdx = NoAreaIdx
	fs.Root = nil
	fs.NextID = 1
}

// AllocID returns the next never-yet-used object id. Nothing in the
// restore pipeline calls it — every id restore sees comes off disk,
// and restore only advances NextID past them — so it exists for any
// higher layer that creates new objects after mount; the allocator
// lives on the handle rather than in a package the restore core would
// otherwise need to import back.
func (fs *FS) AllocID() uint32 {
	id := fs.NextID
	fs.NextID++
	return id
}
