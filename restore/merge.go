package restore

import (
	"github.com/go-ffs/ffs/ffserr"
	"github.com/go-ffs/ffs/object"
	"github.com/go-ffs/ffs/wire"
)

// diskInodeFlags translates an on-disk InodeRecord.Flags byte into
// the in-RAM object.Flag bitset. FlagDummy has no on-disk
// representation: a disk record is by definition not a placeholder.
func diskInodeFlags(b uint8) object.Flag {
	var f object.Flag
	if b&wire.FlagDirectory != 0 {
		f |= object.FlagDirectory
	}
	if b&wire.FlagRoot != 0 {
		f |= object.FlagRoot
	}
	if b&wire.FlagDeleted != 0 {
		f |= object.FlagDeleted
	}
	return f
}

// mergeInode implements spec.md §4.4.1: look the record's id up in
// the hash, apply the not-found/dummy/real-with-arbitration rules,
// then resolve the parent link.
func mergeInode(fs *object.FS, p *pools, m *Metrics, areaIdx int, r wire.InodeRecord) error {
	existing, found := fs.Inodes.Find(r.ID)

	switch {
	case !found:
		n, err := p.inodes.Get()
		if err != nil {
			return err
		}
		*n = object.Inode{
			Object:   object.Object{ID: r.ID, Seq: r.Seq, AreaIdx: areaIdx, Type: object.TypeInode},
			Flags:    diskInodeFlags(r.Flags),
			Filename: r.Filename,
			ParentID: r.ParentID,
		}
		fs.Inodes.Insert(n)
		if err := linkInodeParent(fs, p, m, n); err != nil {
			return err
		}

	case existing.Flags.Has(object.FlagDummy):
		if existing.Parent != nil {
			existing.Parent.RemoveChild(existing)
		}
		existing.Seq = r.Seq
		existing.AreaIdx = areaIdx
		existing.Flags = diskInodeFlags(r.Flags)
		existing.Filename = r.Filename
		existing.ParentID = r.ParentID
		if err := linkInodeParent(fs, p, m, existing); err != nil {
			return err
		}

	default:
		switch {
		case existing.Seq < r.Seq:
			if existing.Parent != nil {
				existing.Parent.RemoveChild(existing)
			}
			existing.Seq = r.Seq
			existing.AreaIdx = areaIdx
			existing.Flags = diskInodeFlags(r.Flags)
			existing.Filename = r.Filename
			existing.ParentID = r.ParentID
			if err := linkInodeParent(fs, p, m, existing); err != nil {
				return err
			}
		case existing.Seq > r.Seq:
			// Stale record, discard.
		default:
			return ffserr.Corrupt
		}
	}

	if r.ID+1 > fs.NextID {
		fs.NextID = r.ID + 1
	}
	return nil
}

// linkInodeParent resolves n's parent link. A NoID parent with the
// root bit set installs n as fs.Root; otherwise the parent is looked
// up (creating a DUMMY directory placeholder if it hasn't been seen
// yet) and n is appended to its child list in encounter order.
func linkInodeParent(fs *object.FS, p *pools, m *Metrics, n *object.Inode) error {
	if n.ParentID == object.NoID {
		if n.Flags.Has(object.FlagRoot) {
			fs.Root = n
		}
		return nil
	}

	parent, found := fs.Inodes.Find(n.ParentID)
	if !found {
		var err error
		parent, err = p.inodes.Get()
		if err != nil {
			return err
		}
		*parent = object.Inode{
			Object: object.Object{ID: n.ParentID, Type: object.TypeInode, AreaIdx: object.NoAreaIdx},
			Flags:  object.FlagDummy | object.FlagDirectory,
		}
		fs.Inodes.Insert(parent)
		m.dummyCreated()
	}
	parent.AddChild(n)
	return nil
}

// mergeBlock implements spec.md §4.4.2: the same not-found/dummy/real
// arbitration as mergeInode, with the owner resolved by id instead of
// a parent link, and no separate root concept.
func mergeBlock(fs *object.FS, p *pools, m *Metrics, areaIdx int, r wire.BlockRecord, areaOffset int64, dataLen int) error {
	existing, found := fs.Blocks.Find(r.ID)

	switch {
	case !found:
		b, err := p.blocks.Get()
		if err != nil {
			return err
		}
		*b = object.Block{
			Object:  object.Object{ID: r.ID, Seq: r.Seq, AreaIdx: areaIdx, Type: object.TypeBlock},
			OwnerID: r.OwnerID,
			AreaOff: areaOffset,
			DataLen: dataLen,
		}
		fs.Blocks.Insert(b)
		if err := linkBlockOwner(fs, p, m, b); err != nil {
			return err
		}

	case existing.Flags.Has(object.FlagDummy):
		existing.Seq = r.Seq
		existing.AreaIdx = areaIdx
		existing.Flags = 0
		existing.OwnerID = r.OwnerID
		existing.AreaOff = areaOffset
		existing.DataLen = dataLen
		if err := linkBlockOwner(fs, p, m, existing); err != nil {
			return err
		}

	default:
		switch {
		case existing.Seq < r.Seq:
			if existing.OwnerID != r.OwnerID {
				return ffserr.Corrupt
			}
			existing.Seq = r.Seq
			existing.AreaIdx = areaIdx
			existing.AreaOff = areaOffset
			existing.DataLen = dataLen
		case existing.Seq > r.Seq:
			// Stale record, discard.
		default:
			return ffserr.Corrupt
		}
	}

	if r.ID+1 > fs.NextID {
		fs.NextID = r.ID + 1
	}
	return nil
}

// linkBlockOwner resolves b's owner inode, creating a DUMMY
// non-directory placeholder if the owner hasn't been seen yet, and
// appends b to the owner's block list in encounter order.
func linkBlockOwner(fs *object.FS, p *pools, m *Metrics, b *object.Block) error {
	owner, found := fs.Inodes.Find(b.OwnerID)
	if !found {
		var err error
		owner, err = p.inodes.Get()
		if err != nil {
			return err
		}
		*owner = object.Inode{
			Object: object.Object{ID: b.OwnerID, Type: object.TypeInode, AreaIdx: object.NoAreaIdx},
			Flags:  object.FlagDummy,
		}
		fs.Inodes.Insert(owner)
		m.dummyCreated()
	}
	owner.AddBlock(b)
	return nil
}
