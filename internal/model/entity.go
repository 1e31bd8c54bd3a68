package model

import "time"

// TranslationSettingsEntity is the durable per-user settings row (GORM).
type TranslationSettingsEntity struct {
	ID               string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID           string    `gorm:"size:64;not null;uniqueIndex"`
	TextEnabled      bool      `gorm:"not null;default:true"`
	VoiceEnabled     bool      `gorm:"not null;default:false"`
	OriginalVolume   float64   `gorm:"not null;default:0.3"`
	TranslatedVolume float64   `gorm:"not null;default:0.8"`
	PreferredVoiceID string    `gorm:"size:64"`
	VoiceSpeed       float64   `gorm:"not null;default:1.0"`
	SubtitlePosition string    `gorm:"size:16;not null;default:bottom"`
	SubtitleFontSize int       `gorm:"not null;default:16"`
	SubtitleOpacity  float64   `gorm:"not null;default:0.7"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`
}

func (TranslationSettingsEntity) TableName() string { return "translation_settings" }

// Settings converts the row to the in-memory form, clamping bounded fields.
func (e *TranslationSettingsEntity) Settings() TranslationSettings {
	return TranslationSettings{
		TextEnabled:      e.TextEnabled,
		VoiceEnabled:     e.VoiceEnabled,
		OriginalVolume:   e.OriginalVolume,
		TranslatedVolume: e.TranslatedVolume,
		PreferredVoiceID: e.PreferredVoiceID,
		VoiceSpeed:       e.VoiceSpeed,
		SubtitlePosition: SubtitlePosition(e.SubtitlePosition),
		SubtitleFontSize: e.SubtitleFontSize,
		SubtitleOpacity:  e.SubtitleOpacity,
	}.Clamp()
}

// ApplySettings copies in-memory settings onto the row for persistence.
func (e *TranslationSettingsEntity) ApplySettings(s TranslationSettings) {
	e.TextEnabled = s.TextEnabled
	e.VoiceEnabled = s.VoiceEnabled
	e.OriginalVolume = s.OriginalVolume
	e.TranslatedVolume = s.TranslatedVolume
	e.PreferredVoiceID = s.PreferredVoiceID
	e.VoiceSpeed = s.VoiceSpeed
	e.SubtitlePosition = string(s.SubtitlePosition)
	e.SubtitleFontSize = s.SubtitleFontSize
	e.SubtitleOpacity = s.SubtitleOpacity
}
