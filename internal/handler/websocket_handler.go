package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/eyepyon/waiwine/internal/config"
	"github.com/eyepyon/waiwine/internal/delivery"
	"github.com/eyepyon/waiwine/internal/errs"
	"github.com/eyepyon/waiwine/internal/fanout"
	"github.com/eyepyon/waiwine/internal/ingest"
	"github.com/eyepyon/waiwine/internal/model"
	"github.com/eyepyon/waiwine/internal/provider"
	"github.com/eyepyon/waiwine/internal/registry"
)

// TranslateWSHandler handles WebSocket connections for
// /ws/translate/:room_id/:participant_id.
type TranslateWSHandler struct {
	reg          *registry.Registry
	orchestrator *fanout.Orchestrator
	recognizer   provider.Recognizer
	cfg          *config.Config
	upgrader     websocket.Upgrader
	logger       *zap.Logger
}

// NewTranslateWSHandler creates the WebSocket relay handler.
func NewTranslateWSHandler(reg *registry.Registry, orch *fanout.Orchestrator, rec provider.Recognizer,
	cfg *config.Config, logger *zap.Logger) *TranslateWSHandler {
	return &TranslateWSHandler{
		reg:          reg,
		orchestrator: orch,
		recognizer:   rec,
		cfg:          cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.WSReadBufferSize,
			WriteBufferSize: cfg.WSWriteBufferSize,
			// Allow all origins for dev; in prod set CheckOrigin.
		},
		logger: logger,
	}
}

// ServeWS upgrades the request and runs the relay loop for one participant.
// Path: /ws/translate/:room_id/:participant_id?lang=ja
// Reconnecting with the same identifiers inside the grace period resumes the
// prior channel, settings included.
func (h *TranslateWSHandler) ServeWS(c *gin.Context) {
	roomID := c.Param("room_id")
	participantID := c.Param("participant_id")
	lang := c.DefaultQuery("lang", "en")
	if roomID == "" || participantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "room_id and participant_id required"})
		return
	}
	if !provider.SupportedLanguage(lang) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	if h.cfg.WSMaxMessageSize > 0 {
		conn.SetReadLimit(h.cfg.WSMaxMessageSize)
	}

	// Connection id correlates the log lines of one physical connection;
	// a grace-period reconnect gets a fresh one for the same participant.
	logger := h.logger.With(zap.String("conn_id", uuid.NewString()),
		zap.String("room_id", roomID), zap.String("participant_id", participantID))

	queue, settings, err := h.reg.Join(c.Request.Context(), roomID, participantID, lang)
	if err != nil {
		logger.Warn("join failed", zap.Error(err))
		return
	}
	defer h.reg.Leave(roomID, participantID, queue)
	logger.Info("websocket connected", zap.String("source_language", lang))
	defer logger.Info("websocket disconnected")

	speaker := ingest.NewSpeaker(roomID, participantID, h.recognizer, h.orchestrator,
		h.cfg.RecognizeTimeout, h.cfg.MaxInflightFrames, h.logger)
	defer speaker.Close()

	p := &peer{
		roomID:        roomID,
		participantID: participantID,
		lang:          lang,
		settings:      settings,
		conn:          conn,
		queue:         queue,
		outbound:      make(chan []byte, 64),
	}

	p.send(model.SettingsUpdatedMessage{Type: model.MsgConnected, OK: true, Settings: &settings})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.writePump(ctx, p)
	go h.drainQueue(ctx, p)

	h.readPump(p, speaker)
}

// peer is one connected relay participant.
type peer struct {
	roomID        string
	participantID string
	lang          string
	settings      model.TranslationSettings
	conn          *websocket.Conn
	queue         *delivery.Queue
	outbound      chan []byte
}

// send marshals a control message onto the outbound channel, dropping it if
// the connection cannot keep up.
func (p *peer) send(msg any) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case p.outbound <- raw:
	default:
	}
}

// drainQueue moves delivery envelopes from the listener's queue to the
// outbound channel until the queue closes.
func (h *TranslateWSHandler) drainQueue(ctx context.Context, p *peer) {
	for {
		env, ok := p.queue.Dequeue(ctx)
		if !ok {
			return
		}
		raw, err := model.MarshalEnvelope(env)
		if err != nil {
			h.logger.Warn("marshal envelope failed", zap.Error(err))
			continue
		}
		select {
		case p.outbound <- raw:
		case <-ctx.Done():
			return
		}
	}
}

func (h *TranslateWSHandler) writePump(ctx context.Context, p *peer) {
	defer func() {
		_ = p.conn.Close()
	}()
	for {
		select {
		case data := <-p.outbound:
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *TranslateWSHandler) readPump(p *peer, speaker *ingest.Speaker) {
	defer func() {
		_ = p.conn.Close()
	}()
	for {
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("read error", zap.Error(err))
			}
			return
		}
		var msg model.InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			p.send(model.ErrorMessage{Type: model.MsgError, Message: "invalid JSON"})
			continue
		}
		switch msg.Type {
		case model.MsgAudioFrame:
			h.handleAudioFrame(p, speaker, msg)
		case model.MsgUpdateSettings:
			h.handleUpdateSettings(p, msg)
		case model.MsgGetVoices:
			lang := msg.Language
			if lang == "" {
				lang = p.lang
			}
			p.send(model.VoicesListMessage{Type: model.MsgVoicesList, Language: lang, Voices: provider.Voices(lang)})
		case model.MsgPing:
			p.send(map[string]string{"type": model.MsgPong})
		default:
			h.logger.Debug("unknown message type", zap.String("type", msg.Type))
			p.send(model.ErrorMessage{Type: model.MsgError, Message: "unknown message type: " + msg.Type})
		}
	}
}

func (h *TranslateWSHandler) handleAudioFrame(p *peer, speaker *ingest.Speaker, msg model.InboundMessage) {
	lang := msg.SourceLanguage
	if lang == "" {
		lang = p.lang
	}
	// The frame carries the speaker's settings snapshot at send time; a frame
	// without one uses the settings this connection last acknowledged.
	snapshot := p.settings
	if msg.Settings != nil {
		snapshot = *msg.Settings
	}
	speaker.Submit(model.AudioFrame{
		SpeakerID:      p.participantID,
		SourceLanguage: lang,
		Samples:        msg.Samples,
		Settings:       snapshot,
	})
}

func (h *TranslateWSHandler) handleUpdateSettings(p *peer, msg model.InboundMessage) {
	if msg.Settings == nil {
		p.send(model.SettingsUpdatedMessage{Type: model.MsgSettingsUpdated, OK: false, Reason: "settings required"})
		return
	}
	err := h.reg.UpdateSettings(context.Background(), p.roomID, p.participantID, *msg.Settings)
	if err != nil {
		if ie, ok := errs.AsInvalidSettings(err); ok {
			p.send(model.SettingsUpdatedMessage{
				Type: model.MsgSettingsUpdated, OK: false, Field: ie.Field, Reason: "out of range",
			})
			return
		}
		h.logger.Warn("settings update failed",
			zap.String("participant_id", p.participantID), zap.Error(err))
		p.send(model.SettingsUpdatedMessage{Type: model.MsgSettingsUpdated, OK: false, Reason: "update failed"})
		return
	}
	p.settings = *msg.Settings
	p.send(model.SettingsUpdatedMessage{Type: model.MsgSettingsUpdated, OK: true, Settings: msg.Settings})
}
