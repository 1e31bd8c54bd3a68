package model

// EnvelopeKind separates caption and audio payloads in the delivery queue;
// overflow eviction only ever displaces an envelope of the same kind.
type EnvelopeKind string

const (
	EnvelopeText  EnvelopeKind = "text"
	EnvelopeVoice EnvelopeKind = "voice"
)

// Envelope is a self-contained delivery unit queued to exactly one listener.
// Envelopes are fire-and-forget: queued once, never retried.
type Envelope interface {
	Kind() EnvelopeKind
}

// TextEnvelope carries one translated caption.
type TextEnvelope struct {
	SpeakerID      string
	Original       string
	Translated     string
	SourceLanguage string
	TargetLanguage string
}

func (TextEnvelope) Kind() EnvelopeKind { return EnvelopeText }

// VoiceEnvelope carries one synthesized audio clip.
type VoiceEnvelope struct {
	SpeakerID      string
	TargetLanguage string
	VoiceID        string
	Audio          []byte
}

func (VoiceEnvelope) Kind() EnvelopeKind { return EnvelopeVoice }

// Utterance is the unit of fan-out: one recognized chunk of speech from one
// speaker, together with the speaker's settings snapshot captured when the
// frame was submitted. It lives for a single recognize-translate-deliver
// cycle and is never persisted.
type Utterance struct {
	RoomID         string
	SpeakerID      string
	SourceLanguage string
	Text           string
	Settings       TranslationSettings
}
