package restore

import "github.com/go-ffs/ffs/object"

// sweep implements spec.md §4.6: remove every object still marked
// DELETED or DUMMY, and every block whose owner never resolved.
// object.Index.Sweep already rebuilds each bucket in place rather
// than mutating a linked list mid-traversal, which is what gives this
// "resilient to removal of the current element" for free.
func sweep(fs *object.FS, m *Metrics) {
	dummies := 0
	fs.Inodes.Each(func(n *object.Inode) {
		if n.Flags.Has(object.FlagDummy) {
			dummies++
		}
	})
	fs.Blocks.Each(func(b *object.Block) {
		if b.Flags.Has(object.FlagDummy) {
			dummies++
		}
	})
	m.setDummiesSwept(dummies)

	// Inodes first: an inode leaving RAM orphans every block it owns,
	// including a block whose owner was only ever a DUMMY placeholder
	// (restore/merge.go's linkBlockOwner). Nulling each owned block's
	// Owner here is what lets the block pass below catch them.
	fs.Inodes.Sweep(
		func(n *object.Inode) bool {
			return n.Flags.Has(object.FlagDeleted) || n.Flags.Has(object.FlagDummy)
		},
		func(n *object.Inode) {
			if n.Parent != nil {
				n.Parent.RemoveChild(n)
			}
			if fs.Root == n {
				fs.Root = nil
			}
			for _, b := range n.Blocks {
				b.Owner = nil
			}
		},
	)

	fs.Blocks.Sweep(
		func(b *object.Block) bool {
			return b.Flags.Has(object.FlagDeleted) || b.Flags.Has(object.FlagDummy) || b.Owner == nil
		},
		func(b *object.Block) {
			if b.Owner != nil {
				b.Owner.RemoveBlock(b)
			}
		},
	)
}
