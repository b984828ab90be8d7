package object

// Block is the restored, in-RAM form of a data block record: its
// identity (via the embedded Object), the owning inode it belongs
// under, and where on disk its data payload lives so the caller can
// read it back later without holding the payload in RAM during
// restore (spec.md §3's "restore reconstructs structure, not
// necessarily content").
type Block struct {
	Object

	Flags   Flag
	OwnerID uint32
	Owner   *Inode
	AreaOff int64 // byte offset of the data payload within its area
	DataLen int
}

// NewDummyBlock builds an unresolved placeholder standing in for a
// block referenced (by an inode's block list reconstruction) before
// its own defining record has been scanned.
func NewDummyBlock(id uint32) *Block {
	return &Block{
		Object: Object{ID: id, Type: TypeBlock, AreaIdx: NoAreaIdx},
		Flags:  FlagDummy,
	}
}
