package flashdev

import (
	"github.com/go-ffs/ffs/ffserr"
)

// Memory is a []byte-backed Device: the RAM-shadowed flash the
// original firmware uses in its own test suite, and the device this
// module's restore tests build synthetic images against.
type Memory struct {
	data []byte
}

// NewMemory wraps an existing byte slice as a Device without copying
// it — callers that want an erased device should pass a buffer
// pre-filled with 0xff, since that's what erased NOR/NAND flash reads
// back as.
func NewMemory(data []byte) *Memory {
	return &Memory{data: data}
}

// NewErasedMemory returns a size-byte Memory device filled with 0xff,
// the all-ones pattern spec.md §8 calls out for its "empty flash" and
// "adversarial: all-ones" termination scenarios.
func NewErasedMemory(size int) *Memory {
	buf := make([]byte, size)
	for i := range buf {
		buf[i] = 0xff
	}
	return &Memory{data: buf}
}

func (m *Memory) ReadAt(buf []byte, offset int64) error {
	if offset < 0 || offset+int64(len(buf)) > int64(len(m.data)) {
		return ffserr.Range
	}
	copy(buf, m.data[offset:offset+int64(len(buf))])
	return nil
}

// WriteAt writes buf at offset, for test fixtures and the
// recoverer's scratch-area reformat.
func (m *Memory) WriteAt(buf []byte, offset int64) error {
	if offset < 0 || offset+int64(len(buf)) > int64(len(m.data)) {
		return ffserr.Range
	}
	copy(m.data[offset:], buf)
	return nil
}

func (m *Memory) Size() int64 { return int64(len(m.data)) }

func (m *Memory) Close() error { return nil }

// Bytes returns the backing slice, for tests that want to mutate the
// image in place (e.g. truncating it to simulate power loss).
func (m *Memory) Bytes() []byte { return m.data }
