// Package area implements spec.md §4.1-4.2: reading and classifying
// one flash area's header, and the registry that accepts classified
// areas into the restore run's area table, enforcing the "at most one
// scratch area" rule.
package area

import (
	"github.com/go-ffs/ffs/ffserr"
	"github.com/go-ffs/ffs/flashdev"
	"github.com/go-ffs/ffs/mlog"
	"github.com/go-ffs/ffs/object"
	"github.com/go-ffs/ffs/wire"
)

// Desc is one caller-supplied candidate flash region, the Go
// rendering of spec.md §6's "(flash_offset, length) pairs" — except
// the terminating zero-length sentinel of the original C calling
// convention is replaced by an ordinary Go slice, since Go has no
// need for an in-band terminator.
type Desc struct {
	Device flashdev.Device
	Offset int64
	Length int64
}

// Detect reads and classifies the header of one candidate area. It
// returns the decoded header on success, ffserr.Corrupt if the magic
// is missing (a locally recoverable condition — the caller skips this
// region), or ffserr.Flash if the underlying read failed (fatal to
// the whole mount).
func Detect(desc Desc) (wire.AreaHeader, error) {
	buf := make([]byte, wire.AreaHeaderSize)
	if err := desc.Device.ReadAt(buf, desc.Offset); err != nil {
		mlog.Printf2("area/area", "Detect read failed"+mlog.Fields("offset", desc.Offset, "err", err))
		if err == ffserr.Range {
			return wire.AreaHeader{}, ffserr.Corrupt
		}
		return wire.AreaHeader{}, ffserr.Flash
	}
	header, err := wire.DecodeAreaHeader(buf)
	if err != nil {
		mlog.Printf2("area/area", "Detect: bad magic"+mlog.Fields("offset", desc.Offset))
		return wire.AreaHeader{}, ffserr.Corrupt
	}
	return header, nil
}

// Registry accepts classified areas in the order the driver scans
// them, assigning each accepted area the next free index and
// enforcing that at most one scratch area is registered.
type Registry struct {
	Areas      []object.Area
	Descs      []Desc // Descs[i] is the descriptor Areas[i] was accepted from
	ScratchIdx int
}

// NewRegistry returns an empty registry with no scratch area yet.
func NewRegistry() *Registry {
	return &Registry{ScratchIdx: object.NoAreaIdx}
}

// Accept registers desc/header as area index len(Areas). If header
// advertises scratch and a scratch is already registered, the area is
// silently dropped (spec.md §4.2) and Accept returns ok=false.
func (r *Registry) Accept(desc Desc, header wire.AreaHeader) (idx int, isScratch bool, ok bool) {
	isScratch = header.IsScratch()
	if isScratch && r.ScratchIdx != object.NoAreaIdx {
		mlog.Printf2("area/area", "Accept: dropping extra scratch area"+mlog.Fields("offset", desc.Offset))
		return 0, true, false
	}
	idx = len(r.Areas)
	r.Areas = append(r.Areas, object.Area{
		ID:     header.ID,
		GCSeq:  header.GCSeq,
		Base:   desc.Offset,
		Length: desc.Length,
	})
	r.Descs = append(r.Descs, desc)
	if isScratch {
		r.ScratchIdx = idx
	}
	return idx, isScratch, true
}

// FindTwins returns the indices of two areas sharing the same
// non-scratch id, used by the corruption recoverer (spec.md §4.5) to
// locate the good/bad pair left behind by an interrupted GC. It
// returns ok=false if no such pair exists.
func (r *Registry) FindTwins() (a, b int, ok bool) {
	for i := 0; i < len(r.Areas); i++ {
		for j := i + 1; j < len(r.Areas); j++ {
			if r.Areas[i].ID == r.Areas[j].ID {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// MinAreaLength returns the length of the smallest registered area,
// used by the validator to derive the maximum permissible block
// payload (spec.md §4.7). It returns 0 if no areas are registered.
func (r *Registry) MinAreaLength() int64 {
	var min int64
	for i, a := range r.Areas {
		if i == 0 || a.Length < min {
			min = a.Length
		}
	}
	return min
}
