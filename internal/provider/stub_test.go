package provider

import (
	"context"
	"errors"
	"testing"
)

func TestStubRecognizer_Recognize(t *testing.T) {
	t.Parallel()

	rec := NewStubRecognizer(nil)
	ctx := context.Background()

	text, err := rec.Recognize(ctx, []float32{0.1, -0.2, 0.3}, "ja")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if text != "transcript 3" {
		t.Errorf("expected 'transcript 3', got %q", text)
	}
}

func TestStubRecognizer_SilenceIsEmptyTranscript(t *testing.T) {
	t.Parallel()

	rec := NewStubRecognizer(nil)
	ctx := context.Background()

	if _, err := rec.Recognize(ctx, []float32{0, 0, 0, 0}, "ja"); !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("expected ErrEmptyTranscript for silence, got %v", err)
	}
	if _, err := rec.Recognize(ctx, nil, "ja"); !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("expected ErrEmptyTranscript for empty frame, got %v", err)
	}
}

func TestStubRecognizer_TranscriptTable(t *testing.T) {
	t.Parallel()

	rec := NewStubRecognizer(&StubConfig{Transcripts: map[int]string{
		2: "こんにちは",
		3: "  ",
	}})
	ctx := context.Background()

	text, err := rec.Recognize(ctx, []float32{0.5, 0.5}, "ja")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if text != "こんにちは" {
		t.Errorf("expected table transcript, got %q", text)
	}
	// A whitespace-only table entry counts as non-speech.
	if _, err := rec.Recognize(ctx, []float32{0.1, 0.2, 0.3}, "ja"); !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("expected ErrEmptyTranscript for blank entry, got %v", err)
	}
	// Unlisted sizes are discarded rather than inventing text.
	if _, err := rec.Recognize(ctx, []float32{0.1, 0.2, 0.3, 0.4}, "ja"); !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("expected ErrEmptyTranscript for unlisted size, got %v", err)
	}
}

func TestStubTranslator_Translate(t *testing.T) {
	t.Parallel()

	tr := NewStubTranslator(nil)
	ctx := context.Background()

	text, err := tr.Translate(ctx, "こんにちは", "ja", "en")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if text != "Hello" {
		t.Errorf("expected 'Hello', got %q", text)
	}

	text, err = tr.Translate(ctx, "unknown phrase", "ja", "de")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if text != "[de] unknown phrase" {
		t.Errorf("expected prefix fallback, got %q", text)
	}
}

func TestStubDetector_DetectLanguage(t *testing.T) {
	t.Parallel()

	det := NewStubDetector(nil)
	ctx := context.Background()

	cases := []struct {
		text string
		want string
	}{
		{"こんにちは", "ja"},
		{"日本語が話せます", "ja"}, // mixed kana/kanji still reads as Japanese
		{"안녕하세요", "ko"},
		{"你好", "zh"},
		{"Hello there", "en"},
	}
	for _, tc := range cases {
		lang, conf, err := det.DetectLanguage(ctx, tc.text)
		if err != nil {
			t.Fatalf("DetectLanguage(%q) failed: %v", tc.text, err)
		}
		if lang != tc.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tc.text, lang, tc.want)
		}
		if conf <= 0 || conf > 1 {
			t.Errorf("DetectLanguage(%q) confidence = %v, want (0,1]", tc.text, conf)
		}
	}
}

func TestStubDetector_EmptyText(t *testing.T) {
	t.Parallel()

	det := NewStubDetector(nil)
	if _, _, err := det.DetectLanguage(context.Background(), "   "); err == nil {
		t.Error("expected error for blank text")
	}
}

func TestStubSynthesizer_Synthesize(t *testing.T) {
	t.Parallel()

	syn := NewStubSynthesizer(nil)
	ctx := context.Background()

	audio, err := syn.Synthesize(ctx, "Hello", "en", "en-US-Wavenet-B", 1.5)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "audio:en:en-US-Wavenet-B:1.50:Hello" {
		t.Errorf("unexpected payload %q", audio)
	}
}

func TestStubSynthesizer_EmptyVoiceSelectsDefault(t *testing.T) {
	t.Parallel()

	syn := NewStubSynthesizer(nil)
	audio, err := syn.Synthesize(context.Background(), "안녕하세요", "ko", "", 1.0)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "audio:ko:ko-KR-Wavenet-A:1.00:안녕하세요" {
		t.Errorf("unexpected payload %q", audio)
	}
}

func TestVoices(t *testing.T) {
	t.Parallel()

	if got := len(Voices("ja")); got != 4 {
		t.Errorf("expected 4 japanese voices, got %d", got)
	}
	if Voices("zh") != nil {
		t.Error("expected no curated voices for zh")
	}

	if got := DefaultVoice("en"); got != "en-US-Wavenet-A" {
		t.Errorf("expected 'en-US-Wavenet-A', got %q", got)
	}
	if got := DefaultVoice("zh"); got != "zh-standard" {
		t.Errorf("expected 'zh-standard', got %q", got)
	}

	if !KnownVoice("ko", "ko-KR-Wavenet-C") {
		t.Error("expected ko-KR-Wavenet-C known for ko")
	}
	if KnownVoice("en", "ko-KR-Wavenet-C") {
		t.Error("expected korean voice unknown for en")
	}
}

func TestSupportedLanguage(t *testing.T) {
	t.Parallel()

	for _, code := range []string{"ja", "en", "ko", "zh", "es", "fr", "de"} {
		if !SupportedLanguage(code) {
			t.Errorf("expected %q supported", code)
		}
	}
	if SupportedLanguage("tlh") {
		t.Error("expected 'tlh' unsupported")
	}
}
