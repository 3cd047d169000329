package clock

import "time"

// Clock supplies the deposit timestamp. It is an external collaborator: the
// core queries it once per deposit and never does its own time math.
type Clock interface {
	Now() int64
}

// System reads the wall clock as a unix epoch in seconds.
type System struct{}

// Now returns the current unix timestamp.
func (System) Now() int64 { return time.Now().UTC().Unix() }

// Fixed is a test clock pinned to a settable instant.
type Fixed struct {
	TS int64
}

// Now returns the pinned timestamp.
func (f *Fixed) Now() int64 { return f.TS }
