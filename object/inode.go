package object

// Inode is the restored, in-RAM form of an inode record: its
// identity and sequence number (via the embedded Object), its parse
// flags, and the links restore has established to its parent and
// children, spec.md §3's "a name, a parent link, and for directories
// a child list".
type Inode struct {
	Object

	Flags    Flag
	Filename string
	ParentID uint32 // NoID for the root inode

	Parent   *Inode
	Children []*Inode
	Blocks   []*Block
}

// IsDir reports whether this inode is a directory.
func (n *Inode) IsDir() bool { return n.Flags.Has(FlagDirectory) }

// AddChild links child under n, in the order restore encountered it.
// Children keep that encounter order, which is also what a plain
// forward scan naturally produces; nothing re-sorts them.
func (n *Inode) AddChild(child *Inode) {
	for _, c := range n.Children {
		if c == child {
			return
		}
	}
	n.Children = append(n.Children, child)
	child.Parent = n
}

// RemoveChild unlinks child from n, if present.
func (n *Inode) RemoveChild(child *Inode) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			if child.Parent == n {
				child.Parent = nil
			}
			return
		}
	}
}

// AddBlock attaches block to n's block list, in encounter order.
func (n *Inode) AddBlock(b *Block) {
	for _, existing := range n.Blocks {
		if existing == b {
			return
		}
	}
	n.Blocks = append(n.Blocks, b)
	b.Owner = n
}

// RemoveBlock detaches b from n's block list, if present.
func (n *Inode) RemoveBlock(b *Block) {
	for i, existing := range n.Blocks {
		if existing == b {
			n.Blocks = append(n.Blocks[:i], n.Blocks[i+1:]...)
			return
		}
	}
}

// NewDummyInode builds an unresolved placeholder standing in for an
// inode referenced before its defining record has been scanned
// (spec.md §4's forward-reference handling).
func NewDummyInode(id uint32) *Inode {
	return &Inode{
		Object: Object{ID: id, Type: TypeInode, AreaIdx: NoAreaIdx},
		Flags:  FlagDummy,
	}
}
