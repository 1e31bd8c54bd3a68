// Package registry is the sole writer of room membership and per-participant
// translation settings. Each room runs a serialized command loop; every other
// component observes membership through read-only snapshots and never holds a
// reference into the registry's internal maps.
package registry

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eyepyon/waiwine/internal/delivery"
	"github.com/eyepyon/waiwine/internal/errs"
	"github.com/eyepyon/waiwine/internal/model"
	"github.com/eyepyon/waiwine/internal/provider"
	"github.com/eyepyon/waiwine/internal/store"
)

// validVoice checks a preferred voice id against the curated voice table for
// the listener's own language (the language they receive translations in).
func validVoice(lang, id string) bool {
	return provider.KnownVoice(lang, id)
}

// Listener is one entry of a room snapshot: copies only, safe to use after
// the participant leaves. Delivery to a closed queue is silently dropped.
type Listener struct {
	ID             string
	SourceLanguage string
	Settings       model.TranslationSettings
	Queue          *delivery.Queue
}

// Registry owns all room sessions.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*room

	store         store.Store
	gracePeriod   time.Duration
	queueCapacity int
	log           *zap.Logger
}

// New creates a registry backed by the given settings store.
func New(st store.Store, gracePeriod time.Duration, queueCapacity int, log *zap.Logger) *Registry {
	return &Registry{
		rooms:         make(map[string]*room),
		store:         st,
		gracePeriod:   gracePeriod,
		queueCapacity: queueCapacity,
		log:           log,
	}
}

type channel struct {
	id             string
	sourceLanguage string
	settings       model.TranslationSettings
	queue          *delivery.Queue
	state          model.ConnectionState
	joinedAt       time.Time
	graceTimer     *time.Timer
}

type room struct {
	id        string
	createdAt time.Time
	members   map[string]*channel

	cmds chan func()
	done chan struct{}
}

// do submits fn to the room's command loop. It returns false when the room
// has already been torn down.
func (rm *room) do(fn func()) bool {
	select {
	case rm.cmds <- fn:
		return true
	case <-rm.done:
		return false
	}
}

func (rm *room) run() {
	for {
		select {
		case fn := <-rm.cmds:
			fn()
		case <-rm.done:
			return
		}
	}
}

func (r *Registry) getOrCreateRoom(roomID string) *room {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rm, ok := r.rooms[roomID]; ok {
		return rm
	}
	rm := &room{
		id:        roomID,
		createdAt: time.Now(),
		members:   make(map[string]*channel),
		cmds:      make(chan func()),
		done:      make(chan struct{}),
	}
	r.rooms[roomID] = rm
	go rm.run()
	r.log.Info("room created", zap.String("room_id", roomID))
	return rm
}

func (r *Registry) getRoom(roomID string) (*room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	return rm, ok
}

func (r *Registry) removeRoom(rm *room) {
	r.mu.Lock()
	cur, ok := r.rooms[rm.id]
	if !ok || cur != rm {
		r.mu.Unlock()
		return
	}
	delete(r.rooms, rm.id)
	r.mu.Unlock()
	close(rm.done)
	r.log.Info("room closed", zap.String("room_id", rm.id))
}

// Join adds a participant to a room, creating the room on first join. A
// reconnect within the grace period reuses the prior channel's settings and
// language; a fresh join loads settings from the store, falling back to safe
// defaults (text on, voice off) when the store cannot serve them.
func (r *Registry) Join(ctx context.Context, roomID, participantID, sourceLanguage string) (*delivery.Queue, model.TranslationSettings, error) {
	// Store IO stays outside the room loop so a slow store cannot stall the
	// room's other members.
	loaded := r.loadSettings(ctx, participantID)

	for {
		rm := r.getOrCreateRoom(roomID)
		type joinResult struct {
			queue    *delivery.Queue
			settings model.TranslationSettings
		}
		reply := make(chan joinResult, 1)
		ok := rm.do(func() {
			q := delivery.NewQueue(r.queueCapacity)
			if ch, exists := rm.members[participantID]; exists {
				switch ch.state {
				case model.StateGracePeriod:
					ch.graceTimer.Stop()
					ch.state = model.StateConnected
					ch.queue = q
					reply <- joinResult{queue: q, settings: ch.settings}
					r.log.Info("participant reconnected",
						zap.String("room_id", roomID),
						zap.String("participant_id", participantID))
					return
				case model.StateConnected:
					// Half-open takeover: the relay has not yet noticed the
					// old socket is dead. The fresh connection displaces it;
					// closing the old queue unblocks its drain loop, and the
					// stale connection's Leave is a no-op because its queue
					// no longer matches.
					ch.queue.Close()
					ch.queue = q
					reply <- joinResult{queue: q, settings: ch.settings}
					r.log.Info("participant reconnected over live channel",
						zap.String("room_id", roomID),
						zap.String("participant_id", participantID))
					return
				}
			}
			ch := &channel{
				id:             participantID,
				sourceLanguage: sourceLanguage,
				settings:       loaded,
				queue:          q,
				state:          model.StateConnected,
				joinedAt:       time.Now(),
			}
			rm.members[participantID] = ch
			reply <- joinResult{queue: q, settings: ch.settings}
			r.log.Info("participant joined",
				zap.String("room_id", roomID),
				zap.String("participant_id", participantID),
				zap.String("source_language", sourceLanguage))
		})
		if !ok {
			// Lost a race with room teardown; retry against a fresh room.
			continue
		}
		res := <-reply
		return res.queue, res.settings, nil
	}
}

func (r *Registry) loadSettings(ctx context.Context, participantID string) model.TranslationSettings {
	s, err := r.store.Load(ctx, participantID)
	switch {
	case err == nil:
		return s.Clamp()
	case errors.Is(err, errs.ErrSettingsNotFound):
		defaults := model.DefaultTranslationSettings()
		if saveErr := r.store.Save(ctx, participantID, defaults); saveErr != nil {
			r.log.Debug("default settings save failed", zap.String("participant_id", participantID), zap.Error(saveErr))
		}
		return defaults
	default:
		r.log.Warn("settings store unavailable, using defaults",
			zap.String("participant_id", participantID), zap.Error(err))
		return model.DefaultTranslationSettings()
	}
}

// Leave marks a participant's channel Grace-Period and closes its delivery
// queue. The queue identifies the leaving connection: a stale connection
// whose channel was taken over by a reconnect cannot demote the fresh one.
// Without a reconnect inside the grace window the channel expires; the room
// is torn down when its last channel goes.
func (r *Registry) Leave(roomID, participantID string, q *delivery.Queue) {
	rm, ok := r.getRoom(roomID)
	if !ok {
		return
	}
	rm.do(func() {
		ch, exists := rm.members[participantID]
		if !exists || ch.state != model.StateConnected || ch.queue != q {
			return
		}
		ch.state = model.StateGracePeriod
		ch.queue.Close()
		ch.graceTimer = time.AfterFunc(r.gracePeriod, func() {
			rm.do(func() { r.expire(rm, participantID) })
		})
		r.log.Info("participant left, grace period started",
			zap.String("room_id", roomID),
			zap.String("participant_id", participantID))
	})
}

// expire runs inside the room loop.
func (r *Registry) expire(rm *room, participantID string) {
	ch, exists := rm.members[participantID]
	if !exists || ch.state != model.StateGracePeriod {
		return
	}
	ch.state = model.StateExpired
	delete(rm.members, participantID)
	r.log.Info("participant expired",
		zap.String("room_id", rm.id),
		zap.String("participant_id", participantID))
	if len(rm.members) == 0 {
		r.removeRoom(rm)
	}
}

// UpdateSettings validates and atomically swaps a participant's settings.
// Any out-of-range field rejects the whole update; the prior settings stay
// in force. On success the new settings are persisted best-effort.
func (r *Registry) UpdateSettings(ctx context.Context, roomID, participantID string, s model.TranslationSettings) error {
	if field, ok := s.Validate(); !ok {
		return &errs.InvalidSettingsError{Field: field}
	}
	if s.PreferredVoiceID != "" {
		// Validating the voice needs the listener's target language, which is
		// their source language setting on the channel.
		rm, ok := r.getRoom(roomID)
		if !ok {
			return errs.ErrRoomNotFound
		}
		var lang string
		found := make(chan bool, 1)
		if !rm.do(func() {
			ch, exists := rm.members[participantID]
			if exists {
				lang = ch.sourceLanguage
			}
			found <- exists
		}) {
			return errs.ErrRoomNotFound
		}
		if !<-found {
			return errs.ErrParticipantNotFound
		}
		if !validVoice(lang, s.PreferredVoiceID) {
			return &errs.InvalidSettingsError{Field: "preferred_voice_id"}
		}
	}

	rm, ok := r.getRoom(roomID)
	if !ok {
		return errs.ErrRoomNotFound
	}
	result := make(chan error, 1)
	if !rm.do(func() {
		ch, exists := rm.members[participantID]
		if !exists {
			result <- errs.ErrParticipantNotFound
			return
		}
		ch.settings = s
		result <- nil
	}) {
		return errs.ErrRoomNotFound
	}
	if err := <-result; err != nil {
		return err
	}
	if err := r.store.Save(ctx, participantID, s); err != nil {
		r.log.Warn("settings save failed, session keeps in-memory settings",
			zap.String("participant_id", participantID), zap.Error(err))
	}
	return nil
}

// Settings returns a participant's current settings.
func (r *Registry) Settings(roomID, participantID string) (model.TranslationSettings, error) {
	rm, ok := r.getRoom(roomID)
	if !ok {
		return model.TranslationSettings{}, errs.ErrRoomNotFound
	}
	type res struct {
		s  model.TranslationSettings
		ok bool
	}
	reply := make(chan res, 1)
	if !rm.do(func() {
		ch, exists := rm.members[participantID]
		if !exists {
			reply <- res{}
			return
		}
		reply <- res{s: ch.settings, ok: true}
	}) {
		return model.TranslationSettings{}, errs.ErrRoomNotFound
	}
	out := <-reply
	if !out.ok {
		return model.TranslationSettings{}, errs.ErrParticipantNotFound
	}
	return out.s, nil
}

// Snapshot returns the connected members of a room at this moment. The
// orchestrator consumes one snapshot per utterance; a participant who leaves
// mid fan-out simply has a closed queue, and delivery to it is dropped.
func (r *Registry) Snapshot(roomID string) []Listener {
	rm, ok := r.getRoom(roomID)
	if !ok {
		return nil
	}
	reply := make(chan []Listener, 1)
	if !rm.do(func() {
		out := make([]Listener, 0, len(rm.members))
		for _, ch := range rm.members {
			if ch.state != model.StateConnected {
				continue
			}
			out = append(out, Listener{
				ID:             ch.id,
				SourceLanguage: ch.sourceLanguage,
				Settings:       ch.settings,
				Queue:          ch.queue,
			})
		}
		reply <- out
	}) {
		return nil
	}
	return <-reply
}

// Participants returns the API view of a room's members, grace-period ones
// included.
func (r *Registry) Participants(roomID string) ([]model.Participant, error) {
	rm, ok := r.getRoom(roomID)
	if !ok {
		return nil, errs.ErrRoomNotFound
	}
	reply := make(chan []model.Participant, 1)
	if !rm.do(func() {
		out := make([]model.Participant, 0, len(rm.members))
		for _, ch := range rm.members {
			out = append(out, model.Participant{
				ID:             ch.id,
				SourceLanguage: ch.sourceLanguage,
				State:          ch.state,
				JoinedAt:       ch.joinedAt,
			})
		}
		reply <- out
	}) {
		return nil, errs.ErrRoomNotFound
	}
	return <-reply, nil
}

// Close tears down every room, closing all delivery queues.
func (r *Registry) Close() {
	r.mu.Lock()
	rooms := make([]*room, 0, len(r.rooms))
	for _, rm := range r.rooms {
		rooms = append(rooms, rm)
	}
	r.mu.Unlock()
	for _, rm := range rooms {
		rm.do(func() {
			for _, ch := range rm.members {
				ch.queue.Close()
				if ch.graceTimer != nil {
					ch.graceTimer.Stop()
				}
			}
			rm.members = make(map[string]*channel)
		})
		r.removeRoom(rm)
	}
}
