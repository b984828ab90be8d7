// Package imagebuild assembles synthetic flash images record by
// record for tests, so test cases read as "an area containing these
// records" rather than as hand-packed byte literals.
package imagebuild

import (
	"log"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/go-ffs/ffs/wire"
)

// Area accumulates an area header followed by a sequence of encoded
// records into one []byte, tracking the cursor the way a real area's
// fa_cur would advance during a prior append-only session.
type Area struct {
	buf     []byte
	written int
}

// NewArea starts a new area image of the given header and total
// length, erased (0xff) beyond the header.
func NewArea(header wire.AreaHeader, length int) *Area {
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = 0xff
	}
	copy(buf, wire.EncodeAreaHeader(header))
	return &Area{buf: buf, written: wire.AreaHeaderSize}
}

// PutInode appends an inode record at the current cursor position
// (tracked implicitly: callers append in order, so "current position"
// is just "right after the last Put").
func (a *Area) PutInode(r wire.InodeRecord) *Area {
	return a.put(wire.EncodeInode(r))
}

// PutBlock appends a block record.
func (a *Area) PutBlock(r wire.BlockRecord) *Area {
	return a.put(wire.EncodeBlock(r))
}

func (a *Area) put(encoded []byte) *Area {
	cur := a.cursor()
	if cur+len(encoded) > len(a.buf) {
		log.Panicf("imagebuild: record of %d bytes does not fit at offset %d of %d-byte area", len(encoded), cur, len(a.buf))
	}
	copy(a.buf[cur:], encoded)
	a.mark(cur + len(encoded))
	return a
}

// cursor and mark track how far the image has been written. The byte
// immediately past the last record is left at its erased 0xff value,
// so the natural end-of-log empty marker is already in place without
// writing one explicitly.
func (a *Area) cursor() int {
	return a.written
}

func (a *Area) mark(n int) {
	a.written = n
}

// Bytes returns the finished image.
func (a *Area) Bytes() []byte { return a.buf }

// Random returns a seeded math/rand source, honoring the SEED
// environment variable for reproducing a failing fuzz run — the same
// convention the teacher's own util.GetSeededRng used.
func Random() *rand.Rand {
	seedValue := time.Now().UnixNano()
	if s := os.Getenv("SEED"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			log.Panic(err)
		}
		seedValue = v
	}
	return rand.New(rand.NewSource(seedValue))
}

// RandomBytes returns n random bytes from r, for the "adversarial:
// random bytes" termination property (spec.md §8).
func RandomBytes(r *rand.Rand, n int) []byte {
	buf := make([]byte, n)
	r.Read(buf)
	return buf
}
