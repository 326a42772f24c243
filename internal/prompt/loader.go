package prompt

import (
	"strings"

	"github.com/Conceptual-Machines/chordsmith-api/pkg/embedded"
)

// Loader reads the embedded prompt files
type Loader struct{}

// NewPromptLoader creates a new prompt loader
func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetScaleAdvisorSystemPrompt loads the scale advisor system prompt
func (l *Loader) GetScaleAdvisorSystemPrompt() string {
	return strings.TrimSpace(string(embedded.ScaleAdvisorSystemTxt))
}

// GetScaleAdvisorUserTemplate loads the scale advisor user message template
func (l *Loader) GetScaleAdvisorUserTemplate() string {
	return string(embedded.ScaleAdvisorUserTmpl)
}

// GetSongAnalysisSystemPrompt loads the song analysis system prompt
func (l *Loader) GetSongAnalysisSystemPrompt() string {
	return strings.TrimSpace(string(embedded.SongAnalysisSystemTxt))
}

// GetSongAnalysisUserTemplate loads the song analysis user message template
func (l *Loader) GetSongAnalysisUserTemplate() string {
	return string(embedded.SongAnalysisUserTmpl)
}
