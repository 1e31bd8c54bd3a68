package model

import "encoding/json"

// Inbound WebSocket message types (client -> relay).
const (
	MsgAudioFrame     = "audio_frame"
	MsgUpdateSettings = "update_settings"
	MsgGetVoices      = "get_voices"
	MsgPing           = "ping"
)

// Outbound WebSocket message types (relay -> client).
const (
	MsgTextTranslation  = "text_translation"
	MsgVoiceTranslation = "voice_translation"
	MsgSettingsUpdated  = "settings_updated"
	MsgVoicesList       = "voices_list"
	MsgConnected        = "connection_established"
	MsgPong             = "pong"
	MsgError            = "error"
)

// InboundMessage is the envelope for all client -> relay messages. Payload
// fields are pointers so a message can be told apart from its zero value.
type InboundMessage struct {
	Type           string               `json:"type"`
	SourceLanguage string               `json:"source_language,omitempty"`
	Samples        []float32            `json:"samples,omitempty"`
	Settings       *TranslationSettings `json:"settings,omitempty"`
	Language       string               `json:"language,omitempty"`
}

// AudioFrame is one fixed-size chunk of speaker audio tagged with the
// speaker's settings snapshot at send time.
type AudioFrame struct {
	SpeakerID      string
	SourceLanguage string
	Samples        []float32
	Settings       TranslationSettings
}

// TextTranslationMessage mirrors TextEnvelope on the wire.
type TextTranslationMessage struct {
	Type           string `json:"type"`
	SpeakerID      string `json:"speaker_id"`
	Original       string `json:"original"`
	Translated     string `json:"translated"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// VoiceTranslationMessage mirrors VoiceEnvelope on the wire. Audio is
// base64-encoded by encoding/json ([]byte marshals to base64).
type VoiceTranslationMessage struct {
	Type           string `json:"type"`
	SpeakerID      string `json:"speaker_id"`
	TargetLanguage string `json:"target_language"`
	VoiceID        string `json:"voice_id"`
	AudioPayload   []byte `json:"audio_payload"`
}

// SettingsUpdatedMessage acknowledges an update_settings request.
type SettingsUpdatedMessage struct {
	Type     string               `json:"type"`
	OK       bool                 `json:"ok"`
	Field    string               `json:"field,omitempty"`
	Reason   string               `json:"reason,omitempty"`
	Settings *TranslationSettings `json:"settings,omitempty"`
}

// VoicesListMessage answers a get_voices request.
type VoicesListMessage struct {
	Type     string         `json:"type"`
	Language string         `json:"language"`
	Voices   []VoiceProfile `json:"voices"`
}

// ErrorMessage reports a connection-scoped error to the client.
type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// VoiceProfile describes one synthesis voice available for a language.
type VoiceProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Language string `json:"language"`
	Gender   string `json:"gender"`
}

// MarshalEnvelope converts a delivery envelope to its outbound wire form.
func MarshalEnvelope(env Envelope) ([]byte, error) {
	switch e := env.(type) {
	case TextEnvelope:
		return json.Marshal(TextTranslationMessage{
			Type:           MsgTextTranslation,
			SpeakerID:      e.SpeakerID,
			Original:       e.Original,
			Translated:     e.Translated,
			SourceLanguage: e.SourceLanguage,
			TargetLanguage: e.TargetLanguage,
		})
	case VoiceEnvelope:
		return json.Marshal(VoiceTranslationMessage{
			Type:           MsgVoiceTranslation,
			SpeakerID:      e.SpeakerID,
			TargetLanguage: e.TargetLanguage,
			VoiceID:        e.VoiceID,
			AudioPayload:   e.Audio,
		})
	default:
		return json.Marshal(ErrorMessage{Type: MsgError, Message: "unknown envelope"})
	}
}
