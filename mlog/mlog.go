// Package mlog is a "maybe log": a thin wrapper around the standard
// log package that is free when disabled and otherwise prints with
// call-depth indentation so a restore pass reads as a trace rather
// than a wall of unindented lines.
//
// Output is gated by the MLOG environment variable or the -mlog flag,
// both holding a regular expression matched against the caller's file
// path. Nothing is printed unless the pattern matches, and once mlog
// has found no pattern set, every call returns before paying for
// runtime.Caller(). While a pattern is set, Printf pays for the
// Caller lookup even for files the pattern does not match.
package mlog

import (
	"flag"
	"fmt"
	"log"
	"os"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
)

var logger = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)

const (
	stateUninitialized int32 = iota
	stateInitializing
	stateDisabled
	stateEnabled
)

var status int32 = stateUninitialized

var mutex sync.Mutex

// Everything below is guarded by mutex.
var flagPattern = flag.String("mlog", "", "enable mlog output for files matching this regexp")
var pattern string
var patternRegexp *regexp.Regexp
var file2enabled map[string]*bool
var minDepth int
var callers []uintptr

const maxDepth = 100

func init() {
	Reset()
}

// Reset restores mlog to its uninitialized state. Primarily useful in
// tests that want a clean slate between SetPattern calls.
func Reset() {
	mutex.Lock()
	defer mutex.Unlock()
	atomic.StoreInt32(&status, stateUninitialized)
	minDepth = maxDepth
	callers = make([]uintptr, maxDepth)
}

// IsEnabled reports whether mlog is configured to print anything at
// all, so callers can skip building an expensive log line entirely.
func IsEnabled() bool {
	return atomic.LoadInt32(&status) != stateDisabled
}

// SetLogger overrides the destination logger; the returned func
// restores the previous one.
func SetLogger(l *log.Logger) (undo func()) {
	mutex.Lock()
	defer mutex.Unlock()
	old := logger
	logger = l
	return func() {
		mutex.Lock()
		defer mutex.Unlock()
		logger = old
	}
}

// SetPattern overrides the MLOG pattern programmatically; the
// returned func restores the previous one.
func SetPattern(p string) (undo func()) {
	mutex.Lock()
	defer mutex.Unlock()
	old := pattern
	setPatternLocked(p)
	return func() {
		mutex.Lock()
		defer mutex.Unlock()
		setPatternLocked(old)
	}
}

func setPatternLocked(p string) {
	if p == "" {
		atomic.StoreInt32(&status, stateDisabled)
		pattern = p
		return
	}
	patternRegexp = regexp.MustCompile(p)
	file2enabled = make(map[string]*bool)
	atomic.StoreInt32(&status, stateEnabled)
	pattern = p
}

func initialize() {
	if !atomic.CompareAndSwapInt32(&status, stateUninitialized, stateInitializing) {
		return
	}
	p := os.Getenv("MLOG")
	if *flagPattern != "" {
		p = *flagPattern
	}
	setPatternLocked(p)
}

// Printf is a drop-in replacement for log.Printf, tagged with the
// caller's file automatically via runtime.Caller. Prefer Printf2 on
// any hot path, since Printf still pays for the Caller lookup even
// when mlog as a whole is disabled for everything but this one file.
func Printf(format string, args ...interface{}) {
	if atomic.LoadInt32(&status) == stateDisabled {
		return
	}
	_, file, _, ok := runtime.Caller(1)
	if !ok {
		return
	}
	Printf2(file, format, args...)
}

// Printf2 is Printf with the file tag supplied by the caller, so
// callers on a genuinely hot path (the log scanner, the reconstructor)
// can hoist the tag to a package-level constant.
func Printf2(file, format string, args ...interface{}) {
	if atomic.LoadInt32(&status) == stateDisabled {
		return
	}
	mutex.Lock()
	defer mutex.Unlock()

	st := atomic.LoadInt32(&status)
	if st < stateDisabled {
		initialize()
		st = atomic.LoadInt32(&status)
		if st <= stateDisabled {
			return
		}
	}

	enabled := true
	if p := file2enabled[file]; p != nil {
		enabled = *p
	} else {
		enabled = patternRegexp.Find([]byte(file)) != nil
		file2enabled[file] = &enabled
	}
	if !enabled {
		return
	}

	depth := runtime.Callers(1, callers)
	if depth < minDepth {
		minDepth = depth
	}
	depth -= minDepth
	if depth > 0 {
		format = strings.Repeat(".", depth) + format
	}
	logger.Printf(format, args...)
}

// Fields renders a structured key/value tail for a Printf2 call, e.g.
// mlog.Printf2("restore/scan", "record accepted"+mlog.Fields("area", i, "off", off)).
func Fields(kv ...interface{}) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	return b.String()
}
