package model

import "time"

// ConnectionState is the liveness state of a participant channel.
type ConnectionState string

const (
	StateConnected   ConnectionState = "connected"
	StateGracePeriod ConnectionState = "grace_period"
	StateExpired     ConnectionState = "expired"
)

// Participant is the API view of a room participant.
type Participant struct {
	ID             string          `json:"id"`
	SourceLanguage string          `json:"source_language"`
	State          ConnectionState `json:"state"`
	JoinedAt       time.Time       `json:"joined_at"`
}

// RoomParticipantsResponse is the response for GET /rooms/:id/participants.
type RoomParticipantsResponse struct {
	RoomID       string        `json:"room_id"`
	Participants []Participant `json:"participants"`
}

// TranslateTextRequest is the body for POST /translation/translate.
type TranslateTextRequest struct {
	Text           string `json:"text" binding:"required"`
	SourceLanguage string `json:"source_language" binding:"required"`
	TargetLanguage string `json:"target_language" binding:"required"`
}

// TranslateTextResponse is the response for POST /translation/translate.
type TranslateTextResponse struct {
	Original       string `json:"original"`
	Translated     string `json:"translated"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// DetectLanguageRequest is the body for POST /translation/detect-language.
type DetectLanguageRequest struct {
	Text string `json:"text" binding:"required"`
}

// DetectLanguageResponse is the response for POST /translation/detect-language.
type DetectLanguageResponse struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// SynthesizeRequest is the body for POST /translation/synthesize.
type SynthesizeRequest struct {
	Text       string  `json:"text" binding:"required"`
	Language   string  `json:"language" binding:"required"`
	VoiceID    string  `json:"voice_id"`
	VoiceSpeed float64 `json:"voice_speed"`
}

// SynthesizeResponse is the response for POST /translation/synthesize.
type SynthesizeResponse struct {
	VoiceID      string `json:"voice_id"`
	AudioPayload []byte `json:"audio_payload"`
}

// Language is one supported translation language.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}
