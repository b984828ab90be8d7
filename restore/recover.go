package restore

import (
	"github.com/go-ffs/ffs/area"
	"github.com/go-ffs/ffs/ffserr"
	"github.com/go-ffs/ffs/flashdev"
	"github.com/go-ffs/ffs/mlog"
	"github.com/go-ffs/ffs/object"
	"github.com/go-ffs/ffs/wire"
)

// recoverScratch implements spec.md §4.5: run when the registry still has no
// scratch area after every descriptor has been scanned. It finds the
// twin pair an interrupted GC cycle left behind, dummies out
// everything that lived only in the "bad" twin, re-scans the "good"
// twin so any record present there overwrites the dummied entries,
// and reformats "bad" as the new scratch area.
//
// good and bad are registry area indices, not positions in the
// caller's original descriptor list: a descriptor that area.Detect
// rejected, or an extra scratch area the registry dropped, shifts
// registry indices out of step with the caller's slice. reg.Descs is
// index-parallel to reg.Areas by construction (area.Registry.Accept
// appends to both together), so the recoverer re-reads the area it
// actually registered through reg.Descs rather than indexing the
// caller's slice.
//
// Per spec.md §9's first documented open question, records that lived
// only in the bad area are lost: step 2 dummies them before the
// re-scan in step 3 touches only the good area, so nothing restores
// them. This is preserved as-is rather than "fixed", since the
// original is explicit that the bad twin may already be mid-erase or
// partially unreadable.
func recoverScratch(fs *object.FS, p *pools, m *Metrics, reg *area.Registry) error {
	a, b, found := reg.FindTwins()
	if !found {
		mlog.Printf2("restore/recover", "no twin areas found, unrecoverable")
		return ffserr.Corrupt
	}
	if reg.Areas[a].GCSeq == reg.Areas[b].GCSeq {
		return ffserr.Corrupt
	}

	good, bad := a, b
	if reg.Areas[b].GCSeq > reg.Areas[a].GCSeq {
		good, bad = b, a
	}

	mlog.Printf2("restore/recover", "GC-crash twins found"+mlog.Fields("good", good, "bad", bad))

	fs.Inodes.Each(func(n *object.Inode) {
		if n.AreaIdx == bad {
			n.Flags |= object.FlagDummy
		}
	})
	fs.Blocks.Each(func(b *object.Block) {
		if b.AreaIdx == bad {
			b.Flags |= object.FlagDummy
		}
	})

	if err := Scan(fs, p, m, good, reg.Descs[good]); err != nil {
		return err
	}

	if err := reformatScratch(reg, bad, reg.Descs[bad]); err != nil {
		return err
	}
	reg.ScratchIdx = bad
	return nil
}

// reformatScratch rewrites bad's header as a fresh scratch area (id
// sentinel, GC sequence one past bad's own) if the
// underlying device supports writes; devices that don't (e.g. a
// read-only test fixture) are left with only their in-RAM descriptor
// updated.
func reformatScratch(reg *area.Registry, bad int, desc area.Desc) error {
	w, ok := desc.Device.(flashdev.Writer)
	if !ok {
		reg.Areas[bad].ID = wire.AreaIDNone
		return nil
	}
	header := wire.AreaHeader{ID: wire.AreaIDNone, GCSeq: reg.Areas[bad].GCSeq + 1}
	if err := w.WriteAt(wire.EncodeAreaHeader(header), desc.Offset); err != nil {
		mlog.Printf2("restore/recover", "reformat scratch failed"+mlog.Fields("area", bad, "err", err))
		return ffserr.Flash
	}
	reg.Areas[bad].ID = wire.AreaIDNone
	reg.Areas[bad].GCSeq = header.GCSeq
	return nil
}
