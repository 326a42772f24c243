package llm

// SongDSLToolName is the CFG tool the model calls with its analysis
const SongDSLToolName = "song_progression"

// GetSongDSLGrammar returns the Lark grammar for the song analysis DSL.
// A song header is followed by one chord() call per harmonic change.
func GetSongDSLGrammar() string {
	return `
// Song Analysis DSL Grammar
// SYNTAX:
//   song(title="Let It Be", key="C", tempo=72); chord(symbol="C", beats=4); chord(symbol="G", beats=4)
//
// Chord symbols use standard notation: C, Am, F#m7, Bb7, G/B, Dsus4, Cmaj7

// ---------- Start rule ----------
start: song_call (";" SP chord_call)+

// ---------- Song header ----------
song_call: "song" "(" song_named_params ")"
song_named_params: song_named_param ("," SP song_named_param)*
song_named_param: "title" "=" STRING
                | "artist" "=" STRING
                | "key" "=" STRING
                | "tempo" "=" NUMBER

// ---------- Chords ----------
chord_call: "chord" "(" chord_named_params ")"
chord_named_params: chord_named_param ("," SP chord_named_param)*
chord_named_param: "symbol" "=" STRING
                 | "beats" "=" NUMBER
                 | "section" "=" STRING

// ---------- Terminals ----------
SP: " "+
STRING: /"[^"]*"/
NUMBER: /\d+(\.\d+)?/
`
}

// SongDSLCFG returns the CFG tool configuration for song analysis
func SongDSLCFG() *CFGConfig {
	return &CFGConfig{
		ToolName:    SongDSLToolName,
		Description: "Emit the chord progression of the requested song",
		Grammar:     GetSongDSLGrammar(),
		Syntax:      "lark",
	}
}
