package restore

import (
	"encoding/binary"

	"github.com/go-ffs/ffs/area"
	"github.com/go-ffs/ffs/ffserr"
	"github.com/go-ffs/ffs/flashdev"
	"github.com/go-ffs/ffs/mlog"
	"github.com/go-ffs/ffs/object"
	"github.com/go-ffs/ffs/wire"
)

// Scan implements spec.md §4.3: walk desc's append-only record log
// from just past the area header until an empty record, a read past
// the area end, or an unparseable magic, merging every record it
// accepts via mergeInode/mergeBlock. A corrupt mid-area record ends
// the scan for this area without error, per spec.md §9's documented
// (if surprising) open question: "the source accepts a mid-area
// corrupt record as silent end-of-log".
func Scan(fs *object.FS, p *pools, m *Metrics, areaIdx int, desc area.Desc) error {
	a := flashdev.Area{Device: desc.Device, Base: desc.Offset, Length: desc.Length}
	offset := int64(wire.AreaHeaderSize)

	for {
		var magicBuf [4]byte
		if err := a.ReadAt(magicBuf[:], offset); err != nil {
			// Range here means "ran off the end of the area" — clean
			// termination per spec.md §4.3, not a scan failure. Any
			// other error is a flash failure and fatal to the mount.
			if err == ffserr.Range {
				return nil
			}
			return err
		}
		magic := binary.LittleEndian.Uint32(magicBuf[:])

		switch magic {
		case wire.EmptyMarker:
			return nil

		case wire.InodeMagic:
			rec, consumed, ok := readInode(a, offset+4)
			if !ok {
				mlog.Printf2("restore/scan", "corrupt inode record, ending area scan"+mlog.Fields("area", areaIdx, "offset", offset))
				return nil
			}
			if err := mergeInode(fs, p, m, areaIdx, rec); err != nil {
				if err == ffserr.Corrupt {
					m.recordRejected()
					mlog.Printf2("restore/scan", "duplicate sequence number, ending area scan"+mlog.Fields("area", areaIdx, "id", rec.ID))
					return nil
				}
				return err
			}
			m.recordAccepted()
			offset += 4 + consumed

		case wire.BlockMagic:
			rec, payloadOffset, dataLen, ok := readBlockHeader(a, offset+4)
			if !ok {
				mlog.Printf2("restore/scan", "corrupt block record, ending area scan"+mlog.Fields("area", areaIdx, "offset", offset))
				return nil
			}
			if payloadOffset+int64(dataLen) > desc.Length {
				mlog.Printf2("restore/scan", "block payload exceeds area bound, ending area scan"+mlog.Fields("area", areaIdx, "offset", offset))
				return nil
			}
			if err := mergeBlock(fs, p, m, areaIdx, rec, payloadOffset, dataLen); err != nil {
				if err == ffserr.Corrupt {
					m.recordRejected()
					mlog.Printf2("restore/scan", "duplicate sequence number, ending area scan"+mlog.Fields("area", areaIdx, "id", rec.ID))
					return nil
				}
				return err
			}
			m.recordAccepted()
			offset = payloadOffset + int64(dataLen)

		default:
			mlog.Printf2("restore/scan", "unrecognized magic, ending area scan"+mlog.Fields("area", areaIdx, "offset", offset, "magic", magic))
			return nil
		}
	}
}

// readInode reads and decodes one inode record's fixed tail plus its
// filename, starting at offset (just past the already-consumed
// magic). ok is false for anything the log scanner treats as
// corruption: a short read, or a decoded filename length/bound
// mismatch.
func readInode(a flashdev.Area, offset int64) (rec wire.InodeRecord, consumed int64, ok bool) {
	tail := make([]byte, wire.InodeHeaderSize-4)
	if err := a.ReadAt(tail, offset); err != nil {
		return wire.InodeRecord{}, 0, false
	}
	rec, filenameLen, err := wire.DecodeInodeHeader(tail)
	if err != nil {
		return wire.InodeRecord{}, 0, false
	}
	name := make([]byte, filenameLen)
	if filenameLen > 0 {
		if err := a.ReadAt(name, offset+int64(len(tail))); err != nil {
			return wire.InodeRecord{}, 0, false
		}
	}
	rec.Filename = string(name)
	return rec, int64(len(tail)) + int64(filenameLen), true
}

// readBlockHeader reads and decodes one block record's fixed tail,
// starting at offset (just past the magic). It does not read the
// data payload itself — restore never copies block content into RAM
// (spec.md §3) — only validates that dataLen is nonnegative and
// returns where the payload would begin.
func readBlockHeader(a flashdev.Area, offset int64) (rec wire.BlockRecord, payloadOffset int64, dataLen int, ok bool) {
	tail := make([]byte, wire.BlockHeaderSize-4)
	if err := a.ReadAt(tail, offset); err != nil {
		return wire.BlockRecord{}, 0, 0, false
	}
	rec, dataLen, err := wire.DecodeBlockHeader(tail)
	if err != nil || dataLen < 0 {
		return wire.BlockRecord{}, 0, 0, false
	}
	return rec, offset + int64(len(tail)), dataLen, true
}
