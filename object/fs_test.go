package object

import (
	"testing"

	"github.com/stvp/assert"
)

func TestNewFSEmpty(t *testing.T) {
	fs := New()
	assert.Equal(t, fs.Inodes.Len(), 0)
	assert.Equal(t, fs.Blocks.Len(), 0)
	assert.Equal(t, fs.ScratchAreaIdx, NoAreaIdx)
	assert.Equal(t, fs.Root == nil, true)
}

func TestFSReset(t *testing.T) {
	fs := New()
	fs.Inodes.Insert(&Inode{Object: Object{ID: 1}})
	fs.Root = &Inode{Object: Object{ID: 1}}
	fs.ScratchAreaIdx = 2
	fs.Reset()
	assert.Equal(t, fs.Inodes.Len(), 0)
	assert.Equal(t, fs.ScratchAreaIdx, NoAreaIdx)
	assert.Equal(t, fs.Root == nil, true)
}

func TestFSLockSerializes(t *testing.T) {
	fs := New()
	var order []int
	unlock := fs.Lock()
	order = append(order, 1)

	acquired := make(chan struct{})
	go func() {
		unlock2 := fs.Lock()
		order = append(order, 2)
		close(acquired)
		unlock2()
	}()

	order = append(order, 3)
	unlock()
	<-acquired

	assert.Equal(t, order[0], 1)
	assert.Equal(t, order[1], 3)
	assert.Equal(t, order[2], 2)
}

func TestAllocIDIncrements(t *testing.T) {
	fs := New()
	a := fs.AllocID()
	b := fs.AllocID()
	assert.Equal(t, b, a+1)
}
