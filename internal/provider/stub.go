package provider

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// StubConfig configures the deterministic stub providers used in development
// and tests.
type StubConfig struct {
	// ProcessingDelay simulates provider latency.
	ProcessingDelay time.Duration
	// Transcripts maps a frame's sample count to a transcript. If nil, any
	// non-silent frame recognizes to "transcript <n>" where n is the sample
	// count, so tests can steer recognition by frame size.
	Transcripts map[int]string
	// Dictionary maps [targetLang][sourceText] to a translated text. Missing
	// entries translate to "[<lang>] " + source text.
	Dictionary map[string]map[string]string
}

// DefaultStubConfig returns sensible defaults for testing.
func DefaultStubConfig() *StubConfig {
	return &StubConfig{
		Dictionary: map[string]map[string]string{
			"en": {
				"こんにちは":       "Hello",
				"ありがとうございます":  "Thank you very much",
				"このワインは素晴らしい": "This wine is wonderful",
			},
			"ko": {
				"こんにちは": "안녕하세요",
			},
		},
	}
}

// StubRecognizer recognizes deterministically from frame shape: silent
// frames (all zero samples) produce ErrEmptyTranscript.
type StubRecognizer struct {
	config *StubConfig
}

// NewStubRecognizer creates a stub recognizer.
func NewStubRecognizer(config *StubConfig) *StubRecognizer {
	if config == nil {
		config = DefaultStubConfig()
	}
	return &StubRecognizer{config: config}
}

func (s *StubRecognizer) Recognize(ctx context.Context, samples []float32, sourceLanguage string) (string, error) {
	if err := s.config.wait(ctx); err != nil {
		return "", err
	}
	silent := true
	for _, v := range samples {
		if v != 0 {
			silent = false
			break
		}
	}
	if len(samples) == 0 || silent {
		return "", ErrEmptyTranscript
	}
	if s.config.Transcripts != nil {
		if text, ok := s.config.Transcripts[len(samples)]; ok {
			if strings.TrimSpace(text) == "" {
				return "", ErrEmptyTranscript
			}
			return text, nil
		}
		return "", ErrEmptyTranscript
	}
	return fmt.Sprintf("transcript %d", len(samples)), nil
}

// StubTranslator returns dictionary translations, or a "[lang] text" prefix
// form for unknown source text.
type StubTranslator struct {
	config *StubConfig
}

// NewStubTranslator creates a stub translator.
func NewStubTranslator(config *StubConfig) *StubTranslator {
	if config == nil {
		config = DefaultStubConfig()
	}
	return &StubTranslator{config: config}
}

func (s *StubTranslator) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	if err := s.config.wait(ctx); err != nil {
		return "", err
	}
	if langDict, ok := s.config.Dictionary[targetLanguage]; ok {
		if translated, ok := langDict[text]; ok {
			return translated, nil
		}
	}
	return "[" + targetLanguage + "] " + text, nil
}

// StubDetector detects language from script: kana reads as Japanese, hangul
// as Korean, han without kana as Chinese, anything else as English. The
// confidence is the share of the winning script among the text's letters.
type StubDetector struct {
	config *StubConfig
}

// NewStubDetector creates a stub language detector.
func NewStubDetector(config *StubConfig) *StubDetector {
	if config == nil {
		config = DefaultStubConfig()
	}
	return &StubDetector{config: config}
}

func (s *StubDetector) DetectLanguage(ctx context.Context, text string) (string, float64, error) {
	if err := s.config.wait(ctx); err != nil {
		return "", 0, err
	}
	if strings.TrimSpace(text) == "" {
		return "", 0, fmt.Errorf("cannot detect language of empty text")
	}
	var kana, hangul, han, other int
	for _, r := range text {
		switch {
		case r >= 0x3040 && r <= 0x30FF:
			kana++
		case r >= 0xAC00 && r <= 0xD7AF:
			hangul++
		case r >= 0x4E00 && r <= 0x9FFF:
			han++
		case unicode.IsLetter(r):
			other++
		}
	}
	total := kana + hangul + han + other
	if total == 0 {
		return "en", 1.0, nil
	}
	switch {
	case kana > 0:
		// Kana marks Japanese even in mixed kana/kanji text.
		return "ja", float64(kana+han) / float64(total), nil
	case hangul > 0:
		return "ko", float64(hangul) / float64(total), nil
	case han > 0:
		return "zh", float64(han) / float64(total), nil
	default:
		return "en", float64(other) / float64(total), nil
	}
}

// StubSynthesizer produces a deterministic payload naming the synthesis key,
// so tests can assert which (language, voice, speed) group a clip came from.
type StubSynthesizer struct {
	config *StubConfig
}

// NewStubSynthesizer creates a stub synthesizer.
func NewStubSynthesizer(config *StubConfig) *StubSynthesizer {
	if config == nil {
		config = DefaultStubConfig()
	}
	return &StubSynthesizer{config: config}
}

func (s *StubSynthesizer) Synthesize(ctx context.Context, text, targetLanguage, voiceID string, speed float64) ([]byte, error) {
	if err := s.config.wait(ctx); err != nil {
		return nil, err
	}
	if voiceID == "" {
		voiceID = DefaultVoice(targetLanguage)
	}
	return []byte(fmt.Sprintf("audio:%s:%s:%.2f:%s", targetLanguage, voiceID, speed, text)), nil
}

func (c *StubConfig) wait(ctx context.Context) error {
	if c.ProcessingDelay <= 0 {
		return nil
	}
	select {
	case <-time.After(c.ProcessingDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
