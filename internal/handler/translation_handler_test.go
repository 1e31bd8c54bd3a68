package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyepyon/waiwine/internal/config"
	"github.com/eyepyon/waiwine/internal/model"
	"github.com/eyepyon/waiwine/internal/provider"
	"github.com/eyepyon/waiwine/internal/registry"
	"github.com/eyepyon/waiwine/internal/store"
)

func newTestAPI(st store.Store, reg *registry.Registry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		TranslateTimeout:  time.Second,
		SynthesizeTimeout: time.Second,
	}
	h := NewTranslationHandler(st, reg,
		provider.NewStubTranslator(nil), provider.NewStubDetector(nil),
		provider.NewStubSynthesizer(nil), cfg, zap.NewNop())

	r := gin.New()
	tr := r.Group("/translation")
	{
		tr.GET("/settings", h.GetSettings)
		tr.PUT("/settings", h.UpdateSettings)
		tr.GET("/voices/:language", h.GetVoices)
		tr.GET("/languages", h.GetLanguages)
		tr.POST("/translate", h.Translate)
		tr.POST("/detect-language", h.DetectLanguage)
		tr.POST("/synthesize", h.Synthesize)
	}
	r.GET("/rooms/:id/participants", h.GetRoomParticipants)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetSettings_UnknownUserGetsDefaults(t *testing.T) {
	t.Parallel()

	r := newTestAPI(store.NewMemoryStore(), nil)
	w := doJSON(t, r, http.MethodGet, "/translation/settings?user_id=nobody", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var got model.TranslationSettings
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got != model.DefaultTranslationSettings() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestGetSettings_RequiresUserID(t *testing.T) {
	t.Parallel()

	r := newTestAPI(store.NewMemoryStore(), nil)
	w := doJSON(t, r, http.MethodGet, "/translation/settings", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestGetSettings_StoreUnavailable(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	st.FailLoads = true
	r := newTestAPI(st, nil)
	w := doJSON(t, r, http.MethodGet, "/translation/settings?user_id=alice", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestUpdateSettings_RoundTrip(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	r := newTestAPI(st, nil)

	want := model.DefaultTranslationSettings()
	want.VoiceEnabled = true
	want.VoiceSpeed = 1.5
	w := doJSON(t, r, http.MethodPut, "/translation/settings?user_id=alice", want)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	saved, err := st.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if saved != want {
		t.Errorf("expected %+v persisted, got %+v", want, saved)
	}
}

func TestUpdateSettings_InvalidFieldRejectsWholeUpdate(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	r := newTestAPI(st, nil)

	bad := model.DefaultTranslationSettings()
	bad.OriginalVolume = 1.5
	w := doJSON(t, r, http.MethodPut, "/translation/settings?user_id=alice", bad)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Field string `json:"field"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Field != "original_volume" {
		t.Errorf("expected field 'original_volume', got %q", resp.Field)
	}
	// Nothing was persisted.
	if _, err := st.Load(context.Background(), "alice"); err == nil {
		t.Error("expected no settings row after rejected update")
	}
}

func TestGetVoices(t *testing.T) {
	t.Parallel()

	r := newTestAPI(store.NewMemoryStore(), nil)

	w := doJSON(t, r, http.MethodGet, "/translation/voices/ja", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var voices []model.VoiceProfile
	if err := json.Unmarshal(w.Body.Bytes(), &voices); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(voices) != 4 {
		t.Errorf("expected 4 japanese voices, got %d", len(voices))
	}

	// Supported but uncurated languages answer with an empty list.
	w = doJSON(t, r, http.MethodGet, "/translation/voices/zh", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for zh, got %d", w.Code)
	}
	if body := w.Body.String(); body != "[]" {
		t.Errorf("expected empty array, got %s", body)
	}

	w = doJSON(t, r, http.MethodGet, "/translation/voices/tlh", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unsupported language, got %d", w.Code)
	}
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	r := newTestAPI(store.NewMemoryStore(), nil)
	w := doJSON(t, r, http.MethodPost, "/translation/translate", model.TranslateTextRequest{
		Text:           "こんにちは",
		SourceLanguage: "ja",
		TargetLanguage: "en",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp model.TranslateTextResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Translated != "Hello" {
		t.Errorf("expected 'Hello', got %q", resp.Translated)
	}
}

func TestTranslate_MissingFields(t *testing.T) {
	t.Parallel()

	r := newTestAPI(store.NewMemoryStore(), nil)
	w := doJSON(t, r, http.MethodPost, "/translation/translate", map[string]string{"text": "hi"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Parallel()

	r := newTestAPI(store.NewMemoryStore(), nil)
	w := doJSON(t, r, http.MethodPost, "/translation/detect-language", model.DetectLanguageRequest{
		Text: "こんにちは",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp model.DetectLanguageResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Language != "ja" {
		t.Errorf("expected 'ja', got %q", resp.Language)
	}
	if resp.Confidence <= 0 || resp.Confidence > 1 {
		t.Errorf("expected confidence in (0,1], got %v", resp.Confidence)
	}

	w = doJSON(t, r, http.MethodPost, "/translation/detect-language", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing text, got %d", w.Code)
	}
}

func TestSynthesize_DefaultsVoiceAndSpeed(t *testing.T) {
	t.Parallel()

	r := newTestAPI(store.NewMemoryStore(), nil)
	w := doJSON(t, r, http.MethodPost, "/translation/synthesize", model.SynthesizeRequest{
		Text:     "Hello",
		Language: "en",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp model.SynthesizeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.VoiceID != "en-US-Wavenet-A" {
		t.Errorf("expected default voice, got %q", resp.VoiceID)
	}
	if string(resp.AudioPayload) != "audio:en:en-US-Wavenet-A:1.00:Hello" {
		t.Errorf("unexpected audio %q", resp.AudioPayload)
	}
}

func TestGetRoomParticipants(t *testing.T) {
	t.Parallel()

	reg := registry.New(store.NewMemoryStore(), time.Minute, 8, zap.NewNop())
	defer reg.Close()
	if _, _, err := reg.Join(context.Background(), "room-1", "alice", "ja"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	r := newTestAPI(store.NewMemoryStore(), reg)

	w := doJSON(t, r, http.MethodGet, "/rooms/room-1/participants", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp model.RoomParticipantsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RoomID != "room-1" || len(resp.Participants) != 1 {
		t.Errorf("unexpected response %+v", resp)
	}

	w = doJSON(t, r, http.MethodGet, "/rooms/nowhere/participants", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown room, got %d", w.Code)
	}
}
