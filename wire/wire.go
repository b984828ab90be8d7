// Package wire defines the on-disk byte layout of flash areas and
// the two record types that make up an area's append-only log:
// inode records and block records. It is the disk-record codec that
// spec.md §6 calls out as an external collaborator ("inode_read_disk",
// "block_read_disk") — here given a concrete, fixed-layout encoding
// via encoding/binary, since the whole point of the format is to be a
// byte-for-byte stable layout on real flash, which is exactly what
// encoding/binary buys without pulling in a general-purpose
// serialization library.
package wire

import (
	"encoding/binary"

	"github.com/go-ffs/ffs/ffserr"
)

// IDNone is the sentinel object id meaning "no such id" — used for a
// root inode's parent id and, packed into uint16, reused as
// AreaIDNone for the scratch area.
const IDNone uint32 = 0xFFFFFFFF

// AreaIDNone marks an area header as describing the scratch area
// rather than a data area.
const AreaIDNone uint16 = 0xFFFF

// Magic values. The area magic is deliberately distinct from both
// record magics so a stray area header can never be misparsed as a
// record, and vice versa.
const (
	AreaMagic   uint32 = 0x53414646 // "FFAS" little-endian
	InodeMagic  uint32 = 0x444e4946 // "FIND" little-endian
	BlockMagic  uint32 = 0x4b4c4246 // "FBLK" little-endian
	EmptyMarker uint32 = 0xFFFFFFFF
)

// AreaHeaderSize is the fixed size of an encoded AreaHeader, padded
// so the first record in an area starts at a round offset.
const AreaHeaderSize = 16

// AreaHeader is the fixed-size record at offset 0 of every area.
type AreaHeader struct {
	ID    uint16
	GCSeq uint32
}

// IsScratch reports whether this header describes the scratch area.
func (h AreaHeader) IsScratch() bool {
	return h.ID == AreaIDNone
}

// EncodeAreaHeader renders h as AreaHeaderSize bytes.
func EncodeAreaHeader(h AreaHeader) []byte {
	buf := make([]byte, AreaHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], AreaMagic)
	binary.LittleEndian.PutUint16(buf[4:6], h.ID)
	binary.LittleEndian.PutUint32(buf[6:10], h.GCSeq)
	return buf
}

// DecodeAreaHeader parses an AreaHeaderSize-byte buffer. It returns
// ffserr.Corrupt if the magic is missing, which the area detector
// treats as "skip this region, but not fatal to the mount".
func DecodeAreaHeader(buf []byte) (AreaHeader, error) {
	if len(buf) < AreaHeaderSize {
		return AreaHeader{}, ffserr.Corrupt
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != AreaMagic {
		return AreaHeader{}, ffserr.Corrupt
	}
	return AreaHeader{
		ID:    binary.LittleEndian.Uint16(buf[4:6]),
		GCSeq: binary.LittleEndian.Uint32(buf[6:10]),
	}, nil
}

// InodeHeaderSize is the fixed portion of an inode record (magic
// included), excluding the trailing filename bytes.
const InodeHeaderSize = 4 + 4 + 4 + 4 + 1 + 1

// inodeHeaderTailSize is InodeHeaderSize minus the magic already
// consumed by the caller when discriminating the record type.
const inodeHeaderTailSize = InodeHeaderSize - 4

// InodeRecord is one on-disk inode record: fixed header plus an
// inline, bounded filename.
type InodeRecord struct {
	ID       uint32
	Seq      uint32
	ParentID uint32
	Flags    uint8
	Filename string
}

// Size returns the total on-disk size of the record, header plus
// filename, which is exactly how far the log scanner's cursor
// advances after accepting it.
func (r InodeRecord) Size() int {
	return InodeHeaderSize + len(r.Filename)
}

// MaxFilenameLen is the largest filename the 1-byte length prefix can
// encode.
const MaxFilenameLen = 255

// On-disk inode flag bits, packed into InodeRecord.Flags. These are a
// distinct bit layout from the in-RAM object.Flag bitset: DUMMY, for
// instance, is purely an in-RAM concept and is never written to disk,
// since a dummy placeholder has by definition no defining record of
// its own.
const (
	FlagDirectory uint8 = 1 << 0
	FlagRoot      uint8 = 1 << 1
	FlagDeleted   uint8 = 1 << 2
)

// EncodeInode renders r as InodeHeaderSize+len(Filename) bytes,
// header magic included.
func EncodeInode(r InodeRecord) []byte {
	buf := make([]byte, r.Size())
	binary.LittleEndian.PutUint32(buf[0:4], InodeMagic)
	binary.LittleEndian.PutUint32(buf[4:8], r.ID)
	binary.LittleEndian.PutUint32(buf[8:12], r.Seq)
	binary.LittleEndian.PutUint32(buf[12:16], r.ParentID)
	buf[16] = r.Flags
	buf[17] = uint8(len(r.Filename))
	copy(buf[InodeHeaderSize:], r.Filename)
	return buf
}

// DecodeInodeHeader parses the fixed part of an inode record that
// follows the magic (InodeHeaderSize-4 bytes; the caller has already
// consumed the magic) and reports
// how many additional filename bytes must be read.
func DecodeInodeHeader(buf []byte) (r InodeRecord, filenameLen int, err error) {
	if len(buf) < inodeHeaderTailSize {
		return InodeRecord{}, 0, ffserr.Corrupt
	}
	r.ID = binary.LittleEndian.Uint32(buf[0:4])
	r.Seq = binary.LittleEndian.Uint32(buf[4:8])
	r.ParentID = binary.LittleEndian.Uint32(buf[8:12])
	r.Flags = buf[12]
	filenameLen = int(buf[13])
	return r, filenameLen, nil
}

// BlockHeaderSize is the fixed portion of a block record (magic
// included), excluding the trailing data bytes.
const BlockHeaderSize = 4 + 4 + 4 + 4 + 4

// blockHeaderTailSize is BlockHeaderSize minus the magic already
// consumed by the caller when discriminating the record type.
const blockHeaderTailSize = BlockHeaderSize - 4

// BlockRecord is one on-disk block record. Data is kept so tests can
// round-trip a full record, but restore itself never retains it past
// validating the length against the area bound — spec.md §3 is
// explicit that block data is not copied into RAM during restore.
type BlockRecord struct {
	ID      uint32
	Seq     uint32
	OwnerID uint32
	Data    []byte
}

// Size returns the total on-disk size of the record.
func (r BlockRecord) Size() int {
	return BlockHeaderSize + len(r.Data)
}

// EncodeBlock renders r as BlockHeaderSize+len(Data) bytes, header
// magic included.
func EncodeBlock(r BlockRecord) []byte {
	buf := make([]byte, r.Size())
	binary.LittleEndian.PutUint32(buf[0:4], BlockMagic)
	binary.LittleEndian.PutUint32(buf[4:8], r.ID)
	binary.LittleEndian.PutUint32(buf[8:12], r.Seq)
	binary.LittleEndian.PutUint32(buf[12:16], r.OwnerID)
	binary.LittleEndian.PutUint32(buf[16:20], uint32(len(r.Data)))
	copy(buf[BlockHeaderSize:], r.Data)
	return buf
}

// DecodeBlockHeader parses the fixed part of a block record that
// follows the magic (BlockHeaderSize-4 bytes; the magic is already
// consumed) and reports the data length
// that follows.
func DecodeBlockHeader(buf []byte) (r BlockRecord, dataLen int, err error) {
	if len(buf) < blockHeaderTailSize {
		return BlockRecord{}, 0, ffserr.Corrupt
	}
	r.ID = binary.LittleEndian.Uint32(buf[0:4])
	r.Seq = binary.LittleEndian.Uint32(buf[4:8])
	r.OwnerID = binary.LittleEndian.Uint32(buf[8:12])
	dataLen = int(binary.LittleEndian.Uint32(buf[12:16]))
	return r, dataLen, nil
}
