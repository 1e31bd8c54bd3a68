package provider

import "github.com/eyepyon/waiwine/internal/model"

// Curated voice profiles per language. Languages without a curated set fall
// back to a synthetic "<lang>-standard" default so synthesis stays
// deterministic for any supported language.
var voiceProfiles = map[string][]model.VoiceProfile{
	"ja": {
		{ID: "ja-JP-Wavenet-A", Name: "Japanese Female 1", Language: "ja", Gender: "female"},
		{ID: "ja-JP-Wavenet-B", Name: "Japanese Male 1", Language: "ja", Gender: "male"},
		{ID: "ja-JP-Wavenet-C", Name: "Japanese Female 2", Language: "ja", Gender: "female"},
		{ID: "ja-JP-Wavenet-D", Name: "Japanese Male 2", Language: "ja", Gender: "male"},
	},
	"en": {
		{ID: "en-US-Wavenet-A", Name: "English Female 1", Language: "en", Gender: "female"},
		{ID: "en-US-Wavenet-B", Name: "English Male 1", Language: "en", Gender: "male"},
		{ID: "en-US-Wavenet-C", Name: "English Female 2", Language: "en", Gender: "female"},
		{ID: "en-US-Wavenet-D", Name: "English Male 2", Language: "en", Gender: "male"},
	},
	"ko": {
		{ID: "ko-KR-Wavenet-A", Name: "Korean Female 1", Language: "ko", Gender: "female"},
		{ID: "ko-KR-Wavenet-B", Name: "Korean Female 2", Language: "ko", Gender: "female"},
		{ID: "ko-KR-Wavenet-C", Name: "Korean Male 1", Language: "ko", Gender: "male"},
		{ID: "ko-KR-Wavenet-D", Name: "Korean Male 2", Language: "ko", Gender: "male"},
	},
}

var supportedLanguages = []model.Language{
	{Code: "ja", Name: "Japanese"},
	{Code: "en", Name: "English"},
	{Code: "ko", Name: "Korean"},
	{Code: "zh", Name: "Chinese"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
}

// Voices returns the voice profiles available for a language.
func Voices(language string) []model.VoiceProfile {
	return voiceProfiles[language]
}

// DefaultVoice returns the deterministic default voice id for a language:
// the first curated profile, or "<lang>-standard" when none are curated.
func DefaultVoice(language string) string {
	if profiles := voiceProfiles[language]; len(profiles) > 0 {
		return profiles[0].ID
	}
	return language + "-standard"
}

// KnownVoice reports whether id is a curated voice for the language.
func KnownVoice(language, id string) bool {
	for _, p := range voiceProfiles[language] {
		if p.ID == id {
			return true
		}
	}
	return false
}

// SupportedLanguages returns the languages the relay translates between.
func SupportedLanguages() []model.Language {
	out := make([]model.Language, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// SupportedLanguage reports whether code is a supported language.
func SupportedLanguage(code string) bool {
	for _, l := range supportedLanguages {
		if l.Code == code {
			return true
		}
	}
	return false
}
