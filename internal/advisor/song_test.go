package advisor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Conceptual-Machines/chordsmith-api/internal/llm"
	"github.com/Conceptual-Machines/chordsmith-api/internal/metrics"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

const letItBe = `song(title="Let It Be", artist="The Beatles", key="C", tempo=72); ` +
	`chord(symbol="C", beats=4); chord(symbol="G", beats=4); chord(symbol="Am", beats=4); ` +
	`chord(symbol="F", beats=2); chord(symbol="Fmaj7/E", beats=2)`

func TestAnalyzeSong(t *testing.T) {
	provider := &stubProvider{generate: respondWith(letItBe)}
	a := newTestAdvisor(t, provider)

	got, err := a.AnalyzeSong(context.Background(), "Let It Be")
	require.NoError(t, err)

	assert.Equal(t, metrics.SourceAI, got.Source)
	assert.Equal(t, "Let It Be", got.Title)
	assert.Equal(t, "The Beatles", got.Artist)
	assert.Equal(t, "C", got.Key)
	assert.Equal(t, 72.0, got.TempoBPM)
	assert.Equal(t, []string{"C", "G", "Am", "F", "Fmaj7/E"}, got.Chords())
	assert.Equal(t, 14.0, got.Steps[4].StartBeats)

	require.Len(t, provider.requests, 1)
	require.NotNil(t, provider.requests[0].CFGGrammar)
	assert.Equal(t, llm.SongDSLToolName, provider.requests[0].CFGGrammar.ToolName)

	again, err := a.AnalyzeSong(context.Background(), "  let it be ")
	require.NoError(t, err)
	assert.Equal(t, metrics.SourceCache, again.Source)
	assert.Equal(t, 1, provider.calls)
}

func TestAnalyzeSongSkipsInvalidChords(t *testing.T) {
	provider := &stubProvider{generate: respondWith(
		`song(title="Odd", key="C"); chord(symbol="C", beats=4); chord(symbol="Xq7", beats=4); chord(symbol="G7", beats=4)`,
	)}
	a := newTestAdvisor(t, provider)

	got, err := a.AnalyzeSong(context.Background(), "Odd")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "G7"}, got.Chords())
	assert.Equal(t, []string{"Xq7"}, got.Skipped)
	assert.Equal(t, 4.0, got.Steps[1].StartBeats)
}

func TestAnalyzeSongFallback(t *testing.T) {
	tests := []struct {
		name     string
		provider llm.Provider
	}{
		{name: "no provider"},
		{
			name: "unreachable",
			provider: &stubProvider{generate: func(context.Context, *llm.GenerationRequest) (*llm.GenerationResponse, error) {
				return nil, errors.New("connection reset")
			}},
		},
		{
			name:     "prose instead of DSL",
			provider: &stubProvider{generate: respondWith("I'm not sure which song you mean.")},
		},
		{
			name:     "only invalid chords",
			provider: &stubProvider{generate: respondWith(`song(title="x"); chord(symbol="Q", beats=4)`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAdvisor(t, tt.provider)

			got, err := a.AnalyzeSong(context.Background(), "Some Song")
			require.NoError(t, err)
			assert.Equal(t, metrics.SourceFallback, got.Source)
			assert.Equal(t, "Some Song", got.Title)
			assert.Equal(t, []string{"C", "Am", "F", "G"}, got.Chords())
		})
	}
}

func TestAnalyzeSongEmptyTitle(t *testing.T) {
	a := newTestAdvisor(t, nil)

	_, err := a.AnalyzeSong(context.Background(), "   ")
	var parseErr *theory.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestSongDSLParser(t *testing.T) {
	parser, err := NewSongDSLParser()
	require.NoError(t, err)

	header, chords, err := parser.ParseDSL(context.Background(), "```\n"+letItBe+"\n```")
	require.NoError(t, err)
	assert.Equal(t, "Let It Be", header.Title)
	require.Len(t, chords, 5)
	assert.Equal(t, theory.TimedChord{Symbol: "Fmaj7/E", Beats: 2}, chords[4])

	_, _, err = parser.ParseDSL(context.Background(), "")
	assert.Error(t, err)
}

func TestScanDSL(t *testing.T) {
	header, chords := scanDSL(`song(title = "Blue Bossa", tempo=140)
chord(symbol="Cm7", beats=8)
chord(symbol = "Fm7")`)

	assert.Equal(t, "Blue Bossa", header.Title)
	assert.Equal(t, 140.0, header.Tempo)
	assert.Equal(t, []theory.TimedChord{{Symbol: "Cm7", Beats: 8}, {Symbol: "Fm7"}}, chords)
}

func TestNormalizeDSL(t *testing.T) {
	assert.Equal(t,
		`song(title="A"); chord(symbol="C", beats=4); chord(symbol="G", beats=4)`,
		normalizeDSL("song(title=\"A\");\n  chord(symbol=\"C\", beats=4)\n\nchord(symbol=\"G\", beats=4);"),
	)
}
