package synth

import "context"

// slot is a mutex whose Lock can be abandoned when ctx ends
type slot chan struct{}

func newSlot() slot {
	return make(slot, 1)
}

func (s slot) acquire(ctx context.Context) error {
	select {
	case s <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s slot) release() {
	<-s
}
