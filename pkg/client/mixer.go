package client

import (
	"sync"

	"github.com/eyepyon/waiwine/internal/model"
)

// Mixer computes playback gains from the local participant's settings.
// While translation is enabled, every remote speaker's live audio is held at
// OriginalVolume for as long as the setting stays on; this is a sustained
// attenuation, not a momentary duck around each synthesized clip.
type Mixer struct {
	mu       sync.RWMutex
	settings model.TranslationSettings
}

// NewMixer creates a mixer with the given starting settings.
func NewMixer(s model.TranslationSettings) *Mixer {
	return &Mixer{settings: s}
}

// Apply swaps in new settings (called on settings_updated).
func (m *Mixer) Apply(s model.TranslationSettings) {
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
}

// Settings returns a copy of the current settings.
func (m *Mixer) Settings() model.TranslationSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

// OriginalGain returns the gain for a remote speaker's live audio track.
func (m *Mixer) OriginalGain() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.settings.VoiceEnabled {
		return m.settings.OriginalVolume
	}
	return 1.0
}

// TranslatedGain returns the gain for synthesized translation clips.
func (m *Mixer) TranslatedGain() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings.TranslatedVolume
}
