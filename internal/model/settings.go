package model

// SubtitlePosition is where captions are rendered on the client.
type SubtitlePosition string

const (
	SubtitleTop     SubtitlePosition = "top"
	SubtitleBottom  SubtitlePosition = "bottom"
	SubtitleOverlay SubtitlePosition = "overlay"
)

// TranslationSettings holds one participant's translation preferences.
// A copy is attached to every participant channel; instances are never
// shared between participants.
type TranslationSettings struct {
	TextEnabled      bool             `json:"text_enabled"`
	VoiceEnabled     bool             `json:"voice_enabled"`
	OriginalVolume   float64          `json:"original_volume"`
	TranslatedVolume float64          `json:"translated_volume"`
	PreferredVoiceID string           `json:"preferred_voice_id"`
	VoiceSpeed       float64          `json:"voice_speed"`
	SubtitlePosition SubtitlePosition `json:"subtitle_position"`
	SubtitleFontSize int              `json:"subtitle_font_size"`
	SubtitleOpacity  float64          `json:"subtitle_opacity"`
}

// DefaultTranslationSettings returns the safe defaults used when the
// settings store has no row for a participant or cannot be reached:
// text on, voice off.
func DefaultTranslationSettings() TranslationSettings {
	return TranslationSettings{
		TextEnabled:      true,
		VoiceEnabled:     false,
		OriginalVolume:   0.3,
		TranslatedVolume: 0.8,
		VoiceSpeed:       1.0,
		SubtitlePosition: SubtitleBottom,
		SubtitleFontSize: 16,
		SubtitleOpacity:  0.7,
	}
}

const (
	minVoiceSpeed = 0.5
	maxVoiceSpeed = 2.0
	minFontSize   = 8
	maxFontSize   = 72
)

// Validate checks every bounded field and returns the name of the first
// invalid one. An update with any invalid field is rejected in full; the
// caller keeps its prior settings.
func (s TranslationSettings) Validate() (field string, ok bool) {
	if s.OriginalVolume < 0 || s.OriginalVolume > 1 {
		return "original_volume", false
	}
	if s.TranslatedVolume < 0 || s.TranslatedVolume > 1 {
		return "translated_volume", false
	}
	if s.VoiceSpeed < minVoiceSpeed || s.VoiceSpeed > maxVoiceSpeed {
		return "voice_speed", false
	}
	switch s.SubtitlePosition {
	case SubtitleTop, SubtitleBottom, SubtitleOverlay:
	default:
		return "subtitle_position", false
	}
	if s.SubtitleFontSize < minFontSize || s.SubtitleFontSize > maxFontSize {
		return "subtitle_font_size", false
	}
	if s.SubtitleOpacity < 0 || s.SubtitleOpacity > 1 {
		return "subtitle_opacity", false
	}
	return "", true
}

// Clamp normalizes bounded fields to their valid ranges. Used when loading
// rows from the store so a stale or hand-edited row cannot leak an
// out-of-range value into a live session.
func (s TranslationSettings) Clamp() TranslationSettings {
	s.OriginalVolume = clamp01(s.OriginalVolume)
	s.TranslatedVolume = clamp01(s.TranslatedVolume)
	if s.VoiceSpeed < minVoiceSpeed {
		s.VoiceSpeed = minVoiceSpeed
	}
	if s.VoiceSpeed > maxVoiceSpeed {
		s.VoiceSpeed = maxVoiceSpeed
	}
	switch s.SubtitlePosition {
	case SubtitleTop, SubtitleBottom, SubtitleOverlay:
	default:
		s.SubtitlePosition = SubtitleBottom
	}
	if s.SubtitleFontSize < minFontSize {
		s.SubtitleFontSize = minFontSize
	}
	if s.SubtitleFontSize > maxFontSize {
		s.SubtitleFontSize = maxFontSize
	}
	s.SubtitleOpacity = clamp01(s.SubtitleOpacity)
	return s
}

// Enabled reports whether the participant wants any translation output.
func (s TranslationSettings) Enabled() bool {
	return s.TextEnabled || s.VoiceEnabled
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
