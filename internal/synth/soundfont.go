package synth

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/ezmidi/go-meltysynth/meltysynth"
)

const (
	blockSize        = 64
	maximumPolyphony = 64
)

var (
	soundFontMu    sync.Mutex
	soundFontCache = map[string]*meltysynth.SoundFont{}
)

// LoadSoundFont reads and caches a SoundFont. Failed loads are not cached
// so a font copied in after startup is picked up on the next request.
func LoadSoundFont(path string) (*meltysynth.SoundFont, error) {
	soundFontMu.Lock()
	defer soundFontMu.Unlock()

	if sf, ok := soundFontCache[path]; ok {
		return sf, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sound font: %w", err)
	}
	defer f.Close()

	sf, err := meltysynth.NewSoundFont(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sound font %s: %w", path, err)
	}

	log.Printf("🎹 Loaded sound font %s", path)
	soundFontCache[path] = sf
	return sf, nil
}

// NewSynthesizer creates a piano synthesizer from the SoundFont at path
func NewSynthesizer(path string, sampleRate int) (*meltysynth.Synthesizer, error) {
	sf, err := LoadSoundFont(path)
	if err != nil {
		return nil, err
	}

	settings := &meltysynth.SynthesizerSettings{
		SampleRate:            int32(sampleRate),
		BlockSize:             blockSize,
		MaximumPolyphony:      maximumPolyphony,
		EnableReverbAndChorus: true,
	}

	synthesizer, err := meltysynth.NewSynthesizer(sf, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}
	return synthesizer, nil
}
