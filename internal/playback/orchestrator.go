package playback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Conceptual-Machines/chordsmith-api/internal/logger"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
)

// Store keeps the record of past performances
type Store interface {
	Save(ctx context.Context, p *models.Performance) error
	Latest(ctx context.Context) (*models.Performance, error)
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the wall-clock SleepFunc
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options configures an Orchestrator
type Options struct {
	TempoBPM    float64
	MaxDuration time.Duration
	Sleep       SleepFunc
	Metrics     metrics.Recorder
}

// Orchestrator turns note groups into timed synthesizer messages
type Orchestrator struct {
	device      Device
	store       Store
	tempo       float64
	maxDuration time.Duration
	sleep       SleepFunc
	metrics     metrics.Recorder
	now         func() time.Time
}

// Request is one playback
type Request struct {
	Kind   string
	Label  string
	Groups []models.NoteGroup
}

// NewOrchestrator creates an orchestrator for the device
func NewOrchestrator(device Device, store Store, opts Options) *Orchestrator {
	if opts.TempoBPM <= 0 {
		opts.TempoBPM = DefaultTempoBPM
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.Nop{}
	}
	return &Orchestrator{
		device:      device,
		store:       store,
		tempo:       opts.TempoBPM,
		maxDuration: opts.MaxDuration,
		sleep:       opts.Sleep,
		metrics:     opts.Metrics,
		now:         time.Now,
	}
}

// TempoBPM returns the tempo used to convert beats to seconds
func (o *Orchestrator) TempoBPM() float64 {
	return o.tempo
}

// Device returns the device name
func (o *Orchestrator) Device() string {
	return o.device.Name()
}

// MaxDuration is the longest sequence Play accepts; zero means no limit
func (o *Orchestrator) MaxDuration() time.Duration {
	return o.maxDuration
}

// Realtime reports whether Play waits for the notes to sound
func (o *Orchestrator) Realtime() bool {
	return o.device.Realtime()
}

// Play records the performance, then sends every note to the device in
// time order. On a realtime device it blocks until the last note is
// released. If ctx ends first the sounding notes are silenced and ctx.Err()
// is returned.
func (o *Orchestrator) Play(ctx context.Context, req Request) (*models.Performance, error) {
	if err := validateGroups(req.Groups); err != nil {
		return nil, err
	}

	events := Flatten(req.Groups)
	perf := &models.Performance{
		ID:        uuid.New().String(),
		CreatedAt: o.now().UTC(),
		Kind:      req.Kind,
		Label:     req.Label,
		TempoBPM:  o.tempo,
		Events:    events,
	}

	total := BeatsToDuration(perf.DurationBeats(), o.tempo)
	if o.maxDuration > 0 && total > o.maxDuration {
		return nil, invalid("sequence lasts %s, limit is %s", total.Round(time.Millisecond), o.maxDuration)
	}

	if o.store != nil {
		if err := o.store.Save(ctx, perf); err != nil {
			return nil, fmt.Errorf("failed to store performance: %w", err)
		}
	}

	started := time.Now()
	err := o.perform(ctx, events)
	elapsed := time.Since(started)
	o.metrics.RecordPlayback(ctx, req.Kind, o.device.Name(), len(events), elapsed, err)
	logger.LogPlayback(ctx, req.Kind, o.device.Name(), len(events), elapsed, err)
	if err != nil {
		return perf, err
	}

	log.Printf("🎹 Played %s %q: %d notes over %s on %s", req.Kind, req.Label, len(events), total.Round(time.Millisecond), o.device.Name())
	return perf, nil
}

func (o *Orchestrator) perform(ctx context.Context, events []models.NoteEvent) error {
	if o.maxDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.maxDuration+time.Second)
		defer cancel()
	}

	session, err := o.device.Acquire(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		var unavailable *SynthesizerUnavailableError
		if errors.As(err, &unavailable) {
			return err
		}
		return &SynthesizerUnavailableError{Device: o.device.Name(), Err: err}
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			logger.Warn("Failed to release synthesizer", logger.Fields{"device": o.device.Name(), "error": cerr.Error()})
		}
	}()

	realtime := o.device.Realtime()
	var elapsed time.Duration
	for _, m := range Timeline(events, o.tempo) {
		if realtime && m.At > elapsed {
			if err := o.sleep(ctx, m.At-elapsed); err != nil {
				return err
			}
			elapsed = m.At
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if m.On {
			session.NoteOn(pianoChannel, m.Key, m.Velocity)
		} else {
			session.NoteOff(pianoChannel, m.Key)
		}
	}
	return nil
}

// Latest returns the most recent performance
func (o *Orchestrator) Latest(ctx context.Context) (*models.Performance, error) {
	if o.store == nil {
		return nil, ErrNoPerformance
	}
	return o.store.Latest(ctx)
}
