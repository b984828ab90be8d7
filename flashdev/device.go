// Package flashdev is the flash abstraction layer spec.md §6 treats
// as an external collaborator: raw byte reads addressed by absolute
// offset, plus an Area helper that turns those into
// area-relative reads bounds-checked the way ffs_flash_read is
// ("fail with a range error when area_offset+length exceeds area
// length").
package flashdev

import (
	"github.com/go-ffs/ffs/ffserr"
	"github.com/go-ffs/ffs/mlog"
)

// Device is the flash_read(offset, buffer, length) primitive. Reads
// never straddle a restore boundary in a way that matters here: every
// call that can fail distinguishes ffserr.Flash (fatal to the mount)
// from a short/out-of-range read (ffserr.Range, recoverable as
// end-of-log).
type Device interface {
	// ReadAt reads len(buf) bytes starting at offset. It returns
	// ffserr.Range if the device is shorter than offset+len(buf), and
	// the ffserr.Flash sentinel itself (not wrapped) for any other read
	// failure.
	ReadAt(buf []byte, offset int64) error

	// Size returns the total addressable length of the device.
	Size() int64

	// Close releases any resources backing the device.
	Close() error
}

// Writer is implemented by devices that support reformatting a
// region in place — real flash (erase+program) and the in-memory test
// device, but deliberately not required of Device in general, since
// the ordinary restore/scan path never writes.
type Writer interface {
	WriteAt(buf []byte, offset int64) error
}

// Area is a Device restricted to one flash region, the unit the area
// detector and log scanner operate on. It implements
// ffs_flash_read: reads are relative to the area's own base offset,
// and anything crossing the area's length comes back as
// ffserr.Range regardless of how much real flash lies beyond it.
type Area struct {
	Device Device
	Base   int64
	Length int64
}

// ReadAt reads len(buf) bytes at an offset relative to the area's
// base, bounds-checked against the area's own length rather than the
// underlying device's.
func (a Area) ReadAt(buf []byte, offset int64) error {
	if offset < 0 || offset+int64(len(buf)) > a.Length {
		mlog.Printf2("flashdev/device", "area.ReadAt out of range"+mlog.Fields("offset", offset, "len", len(buf), "areaLen", a.Length))
		return ffserr.Range
	}
	return a.Device.ReadAt(buf, a.Base+offset)
}
