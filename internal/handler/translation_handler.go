package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eyepyon/waiwine/internal/config"
	"github.com/eyepyon/waiwine/internal/errs"
	"github.com/eyepyon/waiwine/internal/model"
	"github.com/eyepyon/waiwine/internal/provider"
	"github.com/eyepyon/waiwine/internal/registry"
	"github.com/eyepyon/waiwine/internal/store"
)

// TranslationHandler handles the REST API: per-user settings, voice and
// language catalogs, and one-shot translate/synthesize passthroughs.
type TranslationHandler struct {
	store      store.Store
	reg        *registry.Registry
	translator provider.Translator
	detector   provider.Detector
	synth      provider.Synthesizer
	cfg        *config.Config
	logger     *zap.Logger
}

// NewTranslationHandler creates the REST handler.
func NewTranslationHandler(st store.Store, reg *registry.Registry, tr provider.Translator,
	det provider.Detector, syn provider.Synthesizer, cfg *config.Config, logger *zap.Logger) *TranslationHandler {
	return &TranslationHandler{store: st, reg: reg, translator: tr, detector: det, synth: syn, cfg: cfg, logger: logger}
}

// GetSettings godoc
// GET /translation/settings?user_id=...
func (h *TranslationHandler) GetSettings(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	s, err := h.store.Load(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, errs.ErrSettingsNotFound) {
			c.JSON(http.StatusOK, model.DefaultTranslationSettings())
			return
		}
		h.logger.Warn("load settings failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "settings store unavailable"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// UpdateSettings godoc
// PUT /translation/settings?user_id=...
// The update is all-or-nothing: any out-of-range field rejects the whole
// request and the stored settings keep their last valid values.
func (h *TranslationHandler) UpdateSettings(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id required"})
		return
	}
	var s model.TranslationSettings
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if field, ok := s.Validate(); !ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid settings", "field": field})
		return
	}
	if err := h.store.Save(c.Request.Context(), userID, s); err != nil {
		h.logger.Warn("save settings failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "settings store unavailable"})
		return
	}
	c.JSON(http.StatusOK, s)
}

// GetVoices godoc
// GET /translation/voices/:language
func (h *TranslationHandler) GetVoices(c *gin.Context) {
	language := c.Param("language")
	if !provider.SupportedLanguage(language) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unsupported language"})
		return
	}
	voices := provider.Voices(language)
	if voices == nil {
		voices = []model.VoiceProfile{}
	}
	c.JSON(http.StatusOK, voices)
}

// GetLanguages godoc
// GET /translation/languages
func (h *TranslationHandler) GetLanguages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"languages": provider.SupportedLanguages()})
}

// Translate godoc
// POST /translation/translate
func (h *TranslationHandler) Translate(c *gin.Context) {
	var req model.TranslateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.TranslateTimeout)
	defer cancel()
	translated, err := h.translator.Translate(ctx, req.Text, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		h.logger.Warn("translate failed", zap.String("target_language", req.TargetLanguage), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "translation failed"})
		return
	}
	c.JSON(http.StatusOK, model.TranslateTextResponse{
		Original:       req.Text,
		Translated:     translated,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
	})
}

// DetectLanguage godoc
// POST /translation/detect-language
func (h *TranslationHandler) DetectLanguage(c *gin.Context) {
	var req model.DetectLanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.TranslateTimeout)
	defer cancel()
	language, confidence, err := h.detector.DetectLanguage(ctx, req.Text)
	if err != nil {
		h.logger.Warn("language detection failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "language detection failed"})
		return
	}
	c.JSON(http.StatusOK, model.DetectLanguageResponse{Language: language, Confidence: confidence})
}

// Synthesize godoc
// POST /translation/synthesize
func (h *TranslationHandler) Synthesize(c *gin.Context) {
	var req model.SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "message": err.Error()})
		return
	}
	if req.VoiceSpeed == 0 {
		req.VoiceSpeed = 1.0
	}
	voiceID := req.VoiceID
	if voiceID == "" {
		voiceID = provider.DefaultVoice(req.Language)
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.SynthesizeTimeout)
	defer cancel()
	audio, err := h.synth.Synthesize(ctx, req.Text, req.Language, voiceID, req.VoiceSpeed)
	if err != nil {
		h.logger.Warn("synthesize failed", zap.String("voice_id", voiceID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "synthesis failed"})
		return
	}
	c.JSON(http.StatusOK, model.SynthesizeResponse{VoiceID: voiceID, AudioPayload: audio})
}

// GetRoomParticipants godoc
// GET /rooms/:id/participants
func (h *TranslationHandler) GetRoomParticipants(c *gin.Context) {
	roomID := c.Param("id")
	if roomID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_id required"})
		return
	}
	participants, err := h.reg.Participants(roomID)
	if err != nil {
		if errors.Is(err, errs.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get participants"})
		return
	}
	c.JSON(http.StatusOK, model.RoomParticipantsResponse{RoomID: roomID, Participants: participants})
}
