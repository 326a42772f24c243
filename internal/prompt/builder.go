package prompt

import (
	"fmt"
	"strings"
	"text/template"
)

// ScalePromptData fills the scale advisor template
type ScalePromptData struct {
	Chord   string
	Root    string
	Quality string
	Tones   []string
	Scales  []string
}

// SongPromptData fills the song analysis template
type SongPromptData struct {
	Title  string
	Artist string
}

// Builder renders advisor prompts from the embedded templates
type Builder struct {
	loader *Loader
	scale  *template.Template
	song   *template.Template
}

var funcs = template.FuncMap{"join": strings.Join}

// NewPromptBuilder parses the embedded templates
func NewPromptBuilder() (*Builder, error) {
	loader := NewPromptLoader()

	scale, err := template.New("scale").Funcs(funcs).Parse(loader.GetScaleAdvisorUserTemplate())
	if err != nil {
		return nil, fmt.Errorf("failed to parse scale advisor template: %w", err)
	}
	song, err := template.New("song").Funcs(funcs).Parse(loader.GetSongAnalysisUserTemplate())
	if err != nil {
		return nil, fmt.Errorf("failed to parse song analysis template: %w", err)
	}

	return &Builder{loader: loader, scale: scale, song: song}, nil
}

// BuildScalePrompt returns the system prompt and user message for a scale request
func (b *Builder) BuildScalePrompt(data ScalePromptData) (system, user string, err error) {
	var sb strings.Builder
	if err := b.scale.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("failed to render scale prompt: %w", err)
	}
	return b.loader.GetScaleAdvisorSystemPrompt(), strings.TrimSpace(sb.String()), nil
}

// BuildSongPrompt returns the system prompt and user message for a song analysis
func (b *Builder) BuildSongPrompt(data SongPromptData) (system, user string, err error) {
	var sb strings.Builder
	if err := b.song.Execute(&sb, data); err != nil {
		return "", "", fmt.Errorf("failed to render song prompt: %w", err)
	}
	return b.loader.GetSongAnalysisSystemPrompt(), strings.TrimSpace(sb.String()), nil
}
