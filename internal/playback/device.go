package playback

import "context"

// Device is a synthesizer that can be held by one request at a time
type Device interface {
	// Acquire blocks until the device is free or ctx is done
	Acquire(ctx context.Context) (Session, error)
	// Realtime reports whether notes sound as they are sent. Non-realtime
	// devices are driven without waiting between events.
	Realtime() bool
	Name() string
}

// Session is exclusive access to a Device. Close silences every sounding
// note and releases the device; it is safe to call more than once.
type Session interface {
	NoteOn(channel, key, velocity int)
	NoteOff(channel, key int)
	Close() error
}
