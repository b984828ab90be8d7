// Package restore implements the restore/mount pipeline: scan every
// caller-supplied flash area, reconstruct the inode/block graph by
// sequence-number arbitration, recover from an interrupted
// garbage-collection cycle if needed, sweep unresolved placeholders,
// and validate the result before handing it to the caller.
package restore

import (
	"context"
	"time"

	"github.com/go-ffs/ffs/area"
	"github.com/go-ffs/ffs/ffserr"
	"github.com/go-ffs/ffs/mlog"
	"github.com/go-ffs/ffs/object"
)

// Options configures one Mount call.
type Options struct {
	// InodeCapacity and BlockCapacity bound the inode/block pools; 0
	// means unbounded. A device-constrained caller sizes these to the
	// expected object count so restore fails with ffserr.OOM instead
	// of growing without bound.
	InodeCapacity int
	BlockCapacity int

	// Metrics, if non-nil, records counters/gauges for this run.
	Metrics *Metrics
}

// Result is what a successful Mount hands back beyond the filesystem
// handle itself.
type Result struct {
	FS              *object.FS
	MaxBlockPayload int64
}

// Mount implements spec.md §4.8, the mount driver: reset, then for
// each descriptor detect, register, and (for data areas) scan
// immediately; run the corruption recoverer if no scratch area turned
// up; sweep; validate; publish. Any fatal error resets fs to empty
// before returning.
func Mount(ctx context.Context, descs []area.Desc, opts Options) (*Result, error) {
	start := time.Now()
	fs := object.New()
	unlock := fs.Lock()
	defer unlock()

	res, err := mount(ctx, fs, descs, opts)
	if opts.Metrics != nil {
		opts.Metrics.MountDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		fs.Reset()
		return nil, err
	}
	return res, nil
}

func mount(ctx context.Context, fs *object.FS, descs []area.Desc, opts Options) (*Result, error) {
	reg := area.NewRegistry()
	p := newPools(opts.InodeCapacity, opts.BlockCapacity)
	m := opts.Metrics

	for _, desc := range descs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		header, err := area.Detect(desc)
		if err == ffserr.Corrupt {
			mlog.Printf2("restore/mount", "skipping unreadable area header"+mlog.Fields("offset", desc.Offset))
			continue
		}
		if err != nil {
			return nil, err
		}

		idx, isScratch, ok := reg.Accept(desc, header)
		if !ok {
			continue
		}
		if !isScratch {
			m.areaScanned()
			if err := Scan(fs, p, m, idx, desc); err != nil {
				return nil, err
			}
		}
	}

	if reg.ScratchIdx == object.NoAreaIdx {
		if err := recoverScratch(fs, p, m, reg); err != nil {
			return nil, err
		}
	}

	sweep(fs, m)

	maxPayload, err := validate(fs, reg)
	if err != nil {
		return nil, err
	}

	fs.Areas = append([]object.Area(nil), reg.Areas...)
	fs.ScratchAreaIdx = reg.ScratchIdx

	return &Result{FS: fs, MaxBlockPayload: maxPayload}, nil
}
