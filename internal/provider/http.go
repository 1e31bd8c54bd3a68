package provider

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
)

// HTTPConfig holds connection settings shared by the HTTP provider clients.
// Per-call deadlines come from the caller's context, not the HTTP client.
type HTTPConfig struct {
	BaseURL string
	APIKey  string
}

// RecognitionClient calls a speech-to-text service over HTTP.
type RecognitionClient struct {
	cfg        HTTPConfig
	httpClient *http.Client
}

// NewRecognitionClient creates a recognition provider client.
func NewRecognitionClient(cfg HTTPConfig) (*RecognitionClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("recognition base URL is required")
	}
	return &RecognitionClient{cfg: cfg, httpClient: &http.Client{}}, nil
}

type recognizeRequest struct {
	Audio    []byte `json:"audio"` // PCM f32le, base64 via encoding/json
	Language string `json:"language"`
}

type recognizeResponse struct {
	Transcript string `json:"transcript"`
}

// Recognize transcribes one frame. Silence comes back as ErrEmptyTranscript.
func (c *RecognitionClient) Recognize(ctx context.Context, samples []float32, sourceLanguage string) (string, error) {
	req := recognizeRequest{Audio: encodePCM(samples), Language: sourceLanguage}
	var resp recognizeResponse
	if err := postJSON(ctx, c.httpClient, c.cfg, "/v1/recognize", req, &resp); err != nil {
		return "", err
	}
	transcript := strings.TrimSpace(resp.Transcript)
	if transcript == "" {
		return "", ErrEmptyTranscript
	}
	return transcript, nil
}

// TranslationClient calls a text translation service over HTTP.
type TranslationClient struct {
	cfg        HTTPConfig
	httpClient *http.Client
}

// NewTranslationClient creates a translation provider client.
func NewTranslationClient(cfg HTTPConfig) (*TranslationClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("translation base URL is required")
	}
	return &TranslationClient{cfg: cfg, httpClient: &http.Client{}}, nil
}

type translateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
}

// Translate converts text to the target language.
func (c *TranslationClient) Translate(ctx context.Context, text, sourceLanguage, targetLanguage string) (string, error) {
	req := translateRequest{Text: text, SourceLanguage: sourceLanguage, TargetLanguage: targetLanguage}
	var resp translateResponse
	if err := postJSON(ctx, c.httpClient, c.cfg, "/v1/translate", req, &resp); err != nil {
		return "", err
	}
	if resp.TranslatedText == "" {
		return "", fmt.Errorf("translation provider returned empty result")
	}
	return resp.TranslatedText, nil
}

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// DetectLanguage identifies the language of text. The translation service
// hosts this endpoint, so TranslationClient implements Detector.
func (c *TranslationClient) DetectLanguage(ctx context.Context, text string) (string, float64, error) {
	if strings.TrimSpace(text) == "" {
		return "", 0, fmt.Errorf("cannot detect language of empty text")
	}
	var resp detectResponse
	if err := postJSON(ctx, c.httpClient, c.cfg, "/v1/detect-language", detectRequest{Text: text}, &resp); err != nil {
		return "", 0, err
	}
	if resp.Language == "" {
		return "", 0, fmt.Errorf("detection provider returned empty language")
	}
	return resp.Language, resp.Confidence, nil
}

// SynthesisClient calls a text-to-speech service over HTTP.
type SynthesisClient struct {
	cfg        HTTPConfig
	httpClient *http.Client
}

// NewSynthesisClient creates a synthesis provider client.
func NewSynthesisClient(cfg HTTPConfig) (*SynthesisClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("synthesis base URL is required")
	}
	return &SynthesisClient{cfg: cfg, httpClient: &http.Client{}}, nil
}

type synthesizeRequest struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	VoiceID  string  `json:"voice_id"`
	Speed    float64 `json:"speed"`
}

type synthesizeResponse struct {
	Audio []byte `json:"audio"`
}

// Synthesize renders text as speech with the given voice and speed.
func (c *SynthesisClient) Synthesize(ctx context.Context, text, targetLanguage, voiceID string, speed float64) ([]byte, error) {
	if voiceID == "" {
		voiceID = DefaultVoice(targetLanguage)
	}
	req := synthesizeRequest{Text: text, Language: targetLanguage, VoiceID: voiceID, Speed: speed}
	var resp synthesizeResponse
	if err := postJSON(ctx, c.httpClient, c.cfg, "/v1/synthesize", req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Audio) == 0 {
		return nil, fmt.Errorf("synthesis provider returned empty audio")
	}
	return resp.Audio, nil
}

func postJSON(ctx context.Context, client *http.Client, cfg HTTPConfig, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(cfg.BaseURL, "/")+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("provider status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// encodePCM packs samples as little-endian float32, the layout the capture
// client sends.
func encodePCM(samples []float32) []byte {
	buf := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}
	return buf
}
