package advisor

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/Conceptual-Machines/grammar-school-go/gs"

	"github.com/Conceptual-Machines/chordsmith-api/internal/llm"
	"github.com/Conceptual-Machines/chordsmith-api/internal/theory"
)

// songHeader is the song() call of the DSL
type songHeader struct {
	Title  string
	Artist string
	Key    string
	Tempo  float64
}

// SongDSLParser parses song analysis DSL code using Grammar School.
// A parser holds per-parse state and is not safe for concurrent use.
type SongDSLParser struct {
	engine *gs.Engine
	dsl    *SongDSL
}

// SongDSL implements the DSL side-effect methods
type SongDSL struct {
	header songHeader
	chords []theory.TimedChord
}

// NewSongDSLParser creates a new song DSL parser
func NewSongDSLParser() (*SongDSLParser, error) {
	dsl := &SongDSL{}

	engine, err := gs.NewEngine(llm.GetSongDSLGrammar(), dsl, gs.NewLarkParser())
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return &SongDSLParser{engine: engine, dsl: dsl}, nil
}

// ParseDSL parses DSL code and returns the header and chords in order
func (p *SongDSLParser) ParseDSL(ctx context.Context, dslCode string) (songHeader, []theory.TimedChord, error) {
	dslCode = normalizeDSL(dslCode)
	if dslCode == "" {
		return songHeader{}, nil, fmt.Errorf("empty DSL code")
	}

	p.dsl.header = songHeader{}
	p.dsl.chords = nil

	err := p.engine.Execute(ctx, dslCode)
	if err == nil && len(p.dsl.chords) > 0 {
		log.Printf("✅ Song DSL Parser: %d chords for %q", len(p.dsl.chords), p.dsl.header.Title)
		return p.dsl.header, p.dsl.chords, nil
	}
	if err == nil {
		err = fmt.Errorf("no chords found in DSL code")
	}

	// Models outside the CFG path sometimes drift from the grammar; the call
	// shapes are simple enough to recover by pattern
	header, chords := scanDSL(dslCode)
	if len(chords) == 0 {
		return songHeader{}, nil, fmt.Errorf("failed to execute DSL: %w", err)
	}
	log.Printf("⚠️  Song DSL did not match the grammar, recovered %d chords by scanning: %v", len(chords), err)
	return header, chords, nil
}

// Song handles song() calls
func (d *SongDSL) Song(args gs.Args) error {
	d.header.Title = stringArg(args, "title")
	d.header.Artist = stringArg(args, "artist")
	d.header.Key = stringArg(args, "key")
	if tempo, ok := args["tempo"]; ok && tempo.Kind == gs.ValueNumber {
		d.header.Tempo = tempo.Num
	}
	return nil
}

// Chord handles chord() calls
func (d *SongDSL) Chord(args gs.Args) error {
	symbol := stringArg(args, "symbol")
	if symbol == "" {
		return fmt.Errorf("chord: missing symbol")
	}

	beats := 0.0
	if value, ok := args["beats"]; ok && value.Kind == gs.ValueNumber {
		beats = value.Num
	}

	d.chords = append(d.chords, theory.TimedChord{Symbol: symbol, Beats: beats})
	return nil
}

func stringArg(args gs.Args, name string) string {
	if value, ok := args[name]; ok && value.Kind == gs.ValueString {
		return strings.Trim(value.Str, "\"")
	}
	return ""
}

// normalizeDSL puts every call on one line separated by "; "
func normalizeDSL(code string) string {
	code = strings.TrimSpace(code)
	code = strings.TrimPrefix(code, "```")
	code = strings.TrimSuffix(code, "```")

	var calls []string
	for _, part := range strings.FieldsFunc(code, func(r rune) bool { return r == ';' || r == '\n' }) {
		if part = strings.TrimSpace(part); part != "" {
			calls = append(calls, part)
		}
	}
	return strings.Join(calls, "; ")
}

var (
	songCallPattern  = regexp.MustCompile(`song\(([^)]*)\)`)
	chordCallPattern = regexp.MustCompile(`chord\(([^)]*)\)`)
	argPattern       = regexp.MustCompile(`(\w+)\s*=\s*("[^"]*"|[\d.]+)`)
)

// scanDSL extracts calls without the grammar
func scanDSL(code string) (songHeader, []theory.TimedChord) {
	var header songHeader
	if m := songCallPattern.FindStringSubmatch(code); m != nil {
		args := scanArgs(m[1])
		header.Title = args["title"]
		header.Artist = args["artist"]
		header.Key = args["key"]
		header.Tempo, _ = strconv.ParseFloat(args["tempo"], 64)
	}

	var chords []theory.TimedChord
	for _, m := range chordCallPattern.FindAllStringSubmatch(code, -1) {
		args := scanArgs(m[1])
		if args["symbol"] == "" {
			continue
		}
		beats, _ := strconv.ParseFloat(args["beats"], 64)
		chords = append(chords, theory.TimedChord{Symbol: args["symbol"], Beats: beats})
	}
	return header, chords
}

func scanArgs(s string) map[string]string {
	out := make(map[string]string)
	for _, m := range argPattern.FindAllStringSubmatch(s, -1) {
		out[m[1]] = strings.Trim(m[2], "\"")
	}
	return out
}
