// Package authflow holds the session token and the process-wide
// auth-failure signal.
//
// The failure signal used to be modeled (in a prior incarnation of this
// dashboard) as a global mutable flag with an ad-hoc listener. Here it is an
// explicit capacity-1 channel with reset-on-consume semantics: the fetch
// error classifier raises it, and exactly one consumer (the root UI model)
// drains it and switches to the setup view. Raising while already raised is
// a no-op, so concurrent classifiers cannot stack redirects.
package authflow

// Flag is a latch-style signal with a single consumer.
type Flag struct {
	ch chan struct{}
}

// NewFlag creates an unraised flag.
func NewFlag() *Flag {
	return &Flag{ch: make(chan struct{}, 1)}
}

// Raise sets the flag. Never blocks; raising an already-raised flag
// does nothing.
func (f *Flag) Raise() {
	select {
	case f.ch <- struct{}{}:
	default:
	}
}

// TryConsume reports whether the flag was raised, clearing it in the
// same step.
func (f *Flag) TryConsume() bool {
	select {
	case <-f.ch:
		return true
	default:
		return false
	}
}

// Raised exposes the underlying channel for select-based consumers.
// Receiving from it consumes the signal.
func (f *Flag) Raised() <-chan struct{} {
	return f.ch
}
