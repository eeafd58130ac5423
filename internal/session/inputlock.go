package session

import "sync/atomic"

// InputLock gates keystrokes bound for the remote session while an overlay
// owns focus. The command-submission path checks it at send time, not at
// keystroke time; a submission made while locked is discarded, never queued
// for replay.
type InputLock struct {
	locked atomic.Bool
}

// SetLocked sets the gate. Idempotent.
func (l *InputLock) SetLocked(v bool) {
	l.locked.Store(v)
}

// Locked reports whether submissions must be suppressed.
func (l *InputLock) Locked() bool {
	return l.locked.Load()
}
