package restore

import (
	"github.com/go-ffs/ffs/alloc"
	"github.com/go-ffs/ffs/object"
)

// pools bundles the two object allocators restore draws from. Kept
// as one struct so Scan/merge functions only need to thread a single
// extra argument instead of two.
type pools struct {
	inodes *alloc.Pool[*object.Inode]
	blocks *alloc.Pool[*object.Block]
}

func newPools(inodeCapacity, blockCapacity int) *pools {
	return &pools{
		inodes: alloc.NewPool(inodeCapacity, func() *object.Inode { return &object.Inode{} }),
		blocks: alloc.NewPool(blockCapacity, func() *object.Block { return &object.Block{} }),
	}
}
