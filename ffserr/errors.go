// Package ffserr collects the sentinel errors shared by every layer
// of the restore pipeline (flash, wire, object, area, restore). One
// package, rather than one error type per layer, keeps the
// errors.Is(err, ffserr.Corrupt) checks uniform end to end: the
// reconstructor and the CLI both care whether something is
// "corrupt", not which package first noticed.
package ffserr

import "errors"

var (
	// Empty marks the end-of-log sentinel. Internal: a caller that
	// sees this should stop scanning successfully, never propagate it
	// further up as a failure.
	Empty = errors.New("ffs: end of log")

	// Range marks a read that would cross the end of an area.
	// Internal, treated identically to Empty by the log scanner.
	Range = errors.New("ffs: read past area bound")

	// Flash marks a failed read from the underlying device. Always
	// fatal to the mount in progress.
	Flash = errors.New("ffs: flash read failed")

	// Corrupt marks a magic mismatch, a duplicate (id, seq) pair, or
	// an unmet GC-recovery precondition. Whether it is fatal depends
	// on where it occurs — see restore.Mount's propagation policy.
	Corrupt = errors.New("ffs: corrupt")

	// NotFound marks a hash-index lookup miss. Internal: it drives
	// dummy-object creation and should never reach a caller of Mount.
	NotFound = errors.New("ffs: object not found")

	// OOM marks allocator exhaustion. Always fatal.
	OOM = errors.New("ffs: out of memory")

	// Invalid marks an argument or tag that should be impossible by
	// construction (a closed type switch falling through). Reaching
	// it means a caller violated an invariant the type system should
	// have prevented.
	Invalid = errors.New("ffs: invalid argument")

	// NoFilesystem means no mountable filesystem is present. It is not
	// returned by restore.Mount, which reports that condition as
	// Corrupt.
	NoFilesystem = errors.New("ffs: no mountable filesystem present")
)
