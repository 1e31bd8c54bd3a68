package provider

import (
	"context"
	"errors"
)

// ErrEmptyTranscript is returned by recognizers for silence or non-speech
// audio. It is an expected outcome, not a failure: the frame is discarded
// without output or log noise above debug level.
var ErrEmptyTranscript = errors.New("empty transcript")

// Recognizer transcribes one audio frame to text. Implementations must
// honour the context deadline; on expiry the call counts as a failure for
// that frame only and is never retried.
type Recognizer interface {
	Recognize(ctx context.Context, samples []float32, sourceLanguage string) (string, error)
}

// Translator converts text between languages.
type Translator interface {
	Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error)
}

// Detector identifies the language of a piece of text. Confidence is in
// [0,1]; implementations return an error for empty input rather than
// guessing.
type Detector interface {
	DetectLanguage(ctx context.Context, text string) (language string, confidence float64, err error)
}

// Synthesizer converts text to speech audio. An empty voiceID selects the
// deterministic default voice for the target language.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, targetLanguage, voiceID string, speed float64) ([]byte, error)
}
