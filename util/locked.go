// Package util holds a small concurrency helper shared across the
// restore pipeline that doesn't deserve a package of its own.
package util

import "sync"

// MutexLocked is sync.Mutex with a defer-friendly API: defer
// fs.lock.Locked()() acquires and schedules the release in one line.
// object.FS embeds one of these to make "restore holds the handle for
// its exclusive duration" (spec §5) mechanical rather than just
// documented.
type MutexLocked sync.Mutex

func (l *MutexLocked) Locked() (unlock func()) {
	mut := (*sync.Mutex)(l)
	mut.Lock()
	return mut.Unlock
}
