package flashdev

import (
	"io"
	"os"

	"github.com/go-ffs/ffs/ffserr"
	"github.com/go-ffs/ffs/mlog"
)

// File is an *os.File-backed Device, for real block/character devices
// or flat image files on a host filesystem — the host-side analogue
// of the teacher's file-per-block storage backend, but addressed by
// byte offset instead of by content-hashed block id, since flash is
// position-addressed, not content-addressed.
type File struct {
	f    *os.File
	size int64
}

// OpenFile opens path for reading and writing raw flash offsets.
func OpenFile(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		mlog.Printf2("flashdev/file", "OpenFile failed"+mlog.Fields("path", path, "err", err))
		return nil, ffserr.Flash
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ffserr.Flash
	}
	return &File{f: f, size: fi.Size()}, nil
}

func (d *File) ReadAt(buf []byte, offset int64) error {
	if offset < 0 || offset+int64(len(buf)) > d.size {
		return ffserr.Range
	}
	n, err := d.f.ReadAt(buf, offset)
	if err != nil && err != io.EOF {
		mlog.Printf2("flashdev/file", "ReadAt failed"+mlog.Fields("offset", offset, "err", err))
		return ffserr.Flash
	}
	if n != len(buf) {
		return ffserr.Range
	}
	return nil
}

// WriteAt writes buf at offset; used only by test fixtures and the
// recoverer's scratch-area reformat, never by the read-only scan
// path.
func (d *File) WriteAt(buf []byte, offset int64) error {
	if offset+int64(len(buf)) > d.size {
		return ffserr.Range
	}
	_, err := d.f.WriteAt(buf, offset)
	if err != nil {
		return ffserr.Flash
	}
	return nil
}

func (d *File) Size() int64 { return d.size }

func (d *File) Close() error { return d.f.Close() }
