// Package client is a Go client for the translation relay: it speaks the
// WebSocket wire protocol and implements the caption/playback controller
// contract (caption lanes with auto-expiry, sustained original-audio
// attenuation while translation is on).
package client

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/eyepyon/waiwine/internal/model"
)

// VoiceClip is one synthesized translation ready for playback.
type VoiceClip struct {
	SpeakerID      string
	TargetLanguage string
	VoiceID        string
	Audio          []byte
	Gain           float64
}

// Client is one participant's relay connection.
type Client struct {
	conn *websocket.Conn

	Captions *CaptionBoard
	Mixer    *Mixer

	mu      sync.Mutex
	voiceCh chan VoiceClip
	ackCh   chan model.SettingsUpdatedMessage
	done    chan struct{}
	readErr error
}

// Dial connects to the relay for the given room and participant.
func Dial(wsURL string, captionTTL time.Duration) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	c := &Client{
		conn:     conn,
		Captions: NewCaptionBoard(captionTTL),
		Mixer:    NewMixer(model.DefaultTranslationSettings()),
		voiceCh:  make(chan VoiceClip, 16),
		ackCh:    make(chan model.SettingsUpdatedMessage, 4),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// SendFrame submits one audio frame with the current settings snapshot.
func (c *Client) SendFrame(sourceLanguage string, samples []float32) error {
	s := c.Mixer.Settings()
	return c.write(model.InboundMessage{
		Type:           model.MsgAudioFrame,
		SourceLanguage: sourceLanguage,
		Samples:        samples,
		Settings:       &s,
	})
}

// UpdateSettings submits a full settings update; the reply arrives on Acks.
func (c *Client) UpdateSettings(s model.TranslationSettings) error {
	return c.write(model.InboundMessage{Type: model.MsgUpdateSettings, Settings: &s})
}

// Ping sends a keepalive.
func (c *Client) Ping() error {
	return c.write(model.InboundMessage{Type: model.MsgPing})
}

// Voice returns the channel of synthesized clips to play.
func (c *Client) Voice() <-chan VoiceClip { return c.voiceCh }

// Acks returns the channel of settings_updated replies.
func (c *Client) Acks() <-chan model.SettingsUpdatedMessage { return c.ackCh }

// Done is closed when the connection ends; Err reports why.
func (c *Client) Done() <-chan struct{} { return c.done }

// Err returns the read loop's terminal error, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readErr
}

// Close tears the connection down.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) write(msg model.InboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (c *Client) readLoop() {
	defer close(c.done)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			c.readErr = err
			c.mu.Unlock()
			return
		}
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return
	}
	switch head.Type {
	case model.MsgTextTranslation:
		var msg model.TextTranslationMessage
		if json.Unmarshal(data, &msg) != nil {
			return
		}
		c.Captions.Show(Caption{
			SpeakerID:      msg.SpeakerID,
			Original:       msg.Original,
			Translated:     msg.Translated,
			SourceLanguage: msg.SourceLanguage,
			TargetLanguage: msg.TargetLanguage,
		})
	case model.MsgVoiceTranslation:
		var msg model.VoiceTranslationMessage
		if json.Unmarshal(data, &msg) != nil {
			return
		}
		clip := VoiceClip{
			SpeakerID:      msg.SpeakerID,
			TargetLanguage: msg.TargetLanguage,
			VoiceID:        msg.VoiceID,
			Audio:          msg.AudioPayload,
			Gain:           c.Mixer.TranslatedGain(),
		}
		select {
		case c.voiceCh <- clip:
		default:
			// Playback is behind; a stale clip is worth less than a fresh one.
		}
	case model.MsgSettingsUpdated, model.MsgConnected:
		var msg model.SettingsUpdatedMessage
		if json.Unmarshal(data, &msg) != nil {
			return
		}
		if msg.OK && msg.Settings != nil {
			c.Mixer.Apply(*msg.Settings)
		}
		select {
		case c.ackCh <- msg:
		default:
		}
	}
}
