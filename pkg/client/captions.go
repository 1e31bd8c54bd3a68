package client

import (
	"sync"
	"time"
)

// Caption is one caption currently on screen.
type Caption struct {
	SpeakerID      string
	Original       string
	Translated     string
	SourceLanguage string
	TargetLanguage string
	ShownAt        time.Time
	ExpiresAt      time.Time
}

// DefaultCaptionTTL is how long a caption stays visible unless superseded.
const DefaultCaptionTTL = 5 * time.Second

// CaptionBoard keeps one caption lane per speaker: a new caption from a
// speaker supersedes that speaker's previous one, while captions from
// concurrent speakers stay visible side by side. Captions expire after a
// fixed timeout.
type CaptionBoard struct {
	mu    sync.Mutex
	ttl   time.Duration
	lanes map[string]Caption
	now   func() time.Time
}

// NewCaptionBoard creates a board with the given caption lifetime; ttl <= 0
// selects DefaultCaptionTTL.
func NewCaptionBoard(ttl time.Duration) *CaptionBoard {
	if ttl <= 0 {
		ttl = DefaultCaptionTTL
	}
	return &CaptionBoard{ttl: ttl, lanes: make(map[string]Caption), now: time.Now}
}

// Show puts a caption on the speaker's lane, superseding any prior one.
func (b *CaptionBoard) Show(c Caption) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	c.ShownAt = now
	c.ExpiresAt = now.Add(b.ttl)
	b.lanes[c.SpeakerID] = c
}

// Active returns the captions still visible, dropping expired lanes.
func (b *CaptionBoard) Active() []Caption {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	out := make([]Caption, 0, len(b.lanes))
	for id, c := range b.lanes {
		if now.After(c.ExpiresAt) {
			delete(b.lanes, id)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Clear removes every lane.
func (b *CaptionBoard) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lanes = make(map[string]Caption)
}
