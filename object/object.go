// Package object holds the in-RAM graph restore builds: inodes,
// blocks, the hash index that maps id to object, and the filesystem
// handle that owns all of it. It is the "comparatively
// straightforward data-structure work" spec.md §1 contrasts with the
// restore pipeline itself — but since the hash index and allocators
// are external collaborators from the restore core's point of view
// (spec.md §6), this repository still has to build them, since
// nothing else here does.
package object

import "github.com/go-ffs/ffs/wire"

// NoID is the sentinel id meaning "no object" — used for a root
// inode's parent id and a few other "nothing here" fields.
const NoID = wire.IDNone

// NoAreaIdx marks an object with no area location, e.g. a freshly
// allocated dummy placeholder that has never been backed by a disk
// record.
const NoAreaIdx = -1

// Type distinguishes the two kinds of logged object.
type Type uint8

const (
	TypeInode Type = iota
	TypeBlock
)

func (t Type) String() string {
	switch t {
	case TypeInode:
		return "inode"
	case TypeBlock:
		return "block"
	default:
		return "invalid"
	}
}

// Flag is the bitset carried by both Inode and Block.
type Flag uint8

const (
	// FlagDeleted marks an object logically removed; swept on the
	// next restore.
	FlagDeleted Flag = 1 << iota

	// FlagDummy marks a placeholder created because something
	// referenced this id before its defining record was seen. Cleared
	// the moment a real record for the same id is merged in.
	FlagDummy

	// FlagDirectory marks an inode as a directory rather than a file.
	// Meaningless on a Block.
	FlagDirectory

	// FlagRoot marks the distinguished root directory inode. At most
	// one inode in a restored graph carries it.
	FlagRoot
)

func (f Flag) Has(bit Flag) bool { return f&bit != 0 }

// Object is the common head of every logged entity (spec.md §3):
// a stable id, a monotonic per-id sequence number, the index of the
// area holding its latest record (or NoAreaIdx), and its type tag.
type Object struct {
	ID      uint32
	Seq     uint32
	AreaIdx int
	Type    Type
}

// ObjectID satisfies the hasID constraint the hash Index is built on.
func (o *Object) ObjectID() uint32 { return o.ID }
