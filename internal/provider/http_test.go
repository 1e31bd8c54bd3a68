package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecognitionClient_Recognize(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotReq recognizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/recognize" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(recognizeResponse{Transcript: "  こんにちは  "})
	}))
	defer srv.Close()

	client, err := NewRecognitionClient(HTTPConfig{BaseURL: srv.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("NewRecognitionClient failed: %v", err)
	}
	text, err := client.Recognize(context.Background(), []float32{0.5, -0.25}, "ja")
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if text != "こんにちは" {
		t.Errorf("expected trimmed transcript, got %q", text)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotReq.Language != "ja" {
		t.Errorf("expected language 'ja', got %q", gotReq.Language)
	}
	if len(gotReq.Audio) != 8 {
		t.Errorf("expected 8 bytes of f32le audio, got %d", len(gotReq.Audio))
	}
}

func TestRecognitionClient_EmptyTranscript(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(recognizeResponse{Transcript: "   "})
	}))
	defer srv.Close()

	client, err := NewRecognitionClient(HTTPConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewRecognitionClient failed: %v", err)
	}
	if _, err := client.Recognize(context.Background(), []float32{0.5}, "ja"); !errors.Is(err, ErrEmptyTranscript) {
		t.Errorf("expected ErrEmptyTranscript, got %v", err)
	}
}

func TestRecognitionClient_RequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewRecognitionClient(HTTPConfig{}); err == nil {
		t.Error("expected error for missing base URL")
	}
}

func TestTranslationClient_Translate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.SourceLanguage != "ja" || req.TargetLanguage != "en" {
			t.Errorf("unexpected language pair %q -> %q", req.SourceLanguage, req.TargetLanguage)
		}
		json.NewEncoder(w).Encode(translateResponse{TranslatedText: "Hello"})
	}))
	defer srv.Close()

	client, err := NewTranslationClient(HTTPConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewTranslationClient failed: %v", err)
	}
	text, err := client.Translate(context.Background(), "こんにちは", "ja", "en")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if text != "Hello" {
		t.Errorf("expected 'Hello', got %q", text)
	}
}

func TestTranslationClient_DetectLanguage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/detect-language" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req detectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Text != "こんにちは" {
			t.Errorf("unexpected text %q", req.Text)
		}
		json.NewEncoder(w).Encode(detectResponse{Language: "ja", Confidence: 0.97})
	}))
	defer srv.Close()

	client, err := NewTranslationClient(HTTPConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewTranslationClient failed: %v", err)
	}
	lang, conf, err := client.DetectLanguage(context.Background(), "こんにちは")
	if err != nil {
		t.Fatalf("DetectLanguage failed: %v", err)
	}
	if lang != "ja" || conf != 0.97 {
		t.Errorf("expected (ja, 0.97), got (%q, %v)", lang, conf)
	}
}

func TestTranslationClient_DetectLanguageEmptyResult(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(detectResponse{})
	}))
	defer srv.Close()

	client, err := NewTranslationClient(HTTPConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewTranslationClient failed: %v", err)
	}
	if _, _, err := client.DetectLanguage(context.Background(), "text"); err == nil {
		t.Fatal("expected error for empty detection result")
	}
}

func TestTranslationClient_ProviderError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewTranslationClient(HTTPConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewTranslationClient failed: %v", err)
	}
	_, err = client.Translate(context.Background(), "text", "ja", "en")
	if err == nil {
		t.Fatal("expected error from non-200 status")
	}
	if !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected status and body in error, got %v", err)
	}
}

func TestTranslationClient_HonoursContextDeadline(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client, err := NewTranslationClient(HTTPConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewTranslationClient failed: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if _, err := client.Translate(ctx, "text", "ja", "en"); err == nil {
		t.Fatal("expected deadline error")
	}
}

func TestSynthesisClient_Synthesize(t *testing.T) {
	t.Parallel()

	var gotReq synthesizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(synthesizeResponse{Audio: []byte("pcm")})
	}))
	defer srv.Close()

	client, err := NewSynthesisClient(HTTPConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewSynthesisClient failed: %v", err)
	}
	audio, err := client.Synthesize(context.Background(), "Hello", "en", "", 1.25)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if string(audio) != "pcm" {
		t.Errorf("unexpected audio %q", audio)
	}
	// An empty voice id is resolved to the language default before the call.
	if gotReq.VoiceID != "en-US-Wavenet-A" {
		t.Errorf("expected default voice, got %q", gotReq.VoiceID)
	}
	if gotReq.Speed != 1.25 {
		t.Errorf("expected speed 1.25, got %v", gotReq.Speed)
	}
}

func TestSynthesisClient_EmptyAudioIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(synthesizeResponse{})
	}))
	defer srv.Close()

	client, err := NewSynthesisClient(HTTPConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewSynthesisClient failed: %v", err)
	}
	if _, err := client.Synthesize(context.Background(), "Hello", "en", "en-US-Wavenet-A", 1.0); err == nil {
		t.Fatal("expected error for empty audio")
	}
}
