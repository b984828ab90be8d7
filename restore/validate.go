package restore

import (
	"github.com/go-ffs/ffs/area"
	"github.com/go-ffs/ffs/ffserr"
	"github.com/go-ffs/ffs/object"
)

// validate implements spec.md §4.7: both checks are fatal on failure.
// It also returns the maximum permissible block payload, derived from
// the smallest registered area, since any block must fit entirely
// within one area.
func validate(fs *object.FS, reg *area.Registry) (maxBlockPayload int64, err error) {
	if reg.ScratchIdx == object.NoAreaIdx {
		return 0, ffserr.Corrupt
	}
	if fs.Root == nil {
		return 0, ffserr.Corrupt
	}
	return reg.MinAreaLength(), nil
}
