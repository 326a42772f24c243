package storage

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/chordsmith-api/internal/database"
	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
)

func newPerformance(label string) *models.Performance {
	return &models.Performance{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Kind:      models.PerformanceChord,
		Label:     label,
		TempoBPM:  120,
		Events: models.NoteEvents{
			{MidiNoteNumber: 60, Velocity: 80, StartBeats: 0, DurationBeats: 2},
		},
	}
}

func TestMemoryStoreLatest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(2)

	_, err := store.Latest(ctx)
	assert.ErrorIs(t, err, playback.ErrNoPerformance)

	first := newPerformance("C")
	for i, p := range []*models.Performance{first, newPerformance("F"), newPerformance("G")} {
		require.NoError(t, store.Save(ctx, p), "save %d", i)
	}

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, "G", latest.Label)

	_, err = store.Get(ctx, first.ID)
	assert.ErrorIs(t, err, playback.ErrNoPerformance, "oldest entry should be evicted")
}

func TestNoteEventsColumn(t *testing.T) {
	events := models.NoteEvents{{MidiNoteNumber: 64, Velocity: 90, StartBeats: 1, DurationBeats: 0.5}}

	value, err := events.Value()
	require.NoError(t, err)

	var back models.NoteEvents
	require.NoError(t, back.Scan([]byte(value.(string))))
	assert.Equal(t, events, back)

	assert.Error(t, back.Scan(42))
}

// Runs against a real Postgres when DATABASE_URL is set
func TestGormStore(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" || testing.Short() {
		t.Skip("DATABASE_URL not set")
	}

	db, err := database.Connect(url)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	store := NewGormStore(db)
	ctx := context.Background()

	p := newPerformance(fmt.Sprintf("test-%d", time.Now().UnixNano()))
	require.NoError(t, store.Save(ctx, p))

	latest, err := store.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.ID, latest.ID)
	assert.Equal(t, p.Events, latest.Events)

	got, err := store.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Label, got.Label)
}
