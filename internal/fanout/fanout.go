// Package fanout converts one recognized utterance into delivery envelopes
// for every listener in the room, deduplicating provider calls so cost and
// latency stay bounded by the number of distinct requirements, not the
// number of listeners.
package fanout

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/eyepyon/waiwine/internal/model"
	"github.com/eyepyon/waiwine/internal/provider"
	"github.com/eyepyon/waiwine/internal/registry"
)

// Snapshotter supplies the listener set consulted once per utterance.
type Snapshotter interface {
	Snapshot(roomID string) []registry.Listener
}

// Orchestrator drives translate and synthesize calls for one utterance at a
// time. Translation is deduplicated by target language (the text is the same
// for every listener of that language); synthesis by the finer (language,
// voice, speed) key, because voice and speed change the audio bytes.
type Orchestrator struct {
	snapshots         Snapshotter
	translator        provider.Translator
	synthesizer       provider.Synthesizer
	translateTimeout  time.Duration
	synthesizeTimeout time.Duration
	log               *zap.Logger
}

// New creates an orchestrator.
func New(snapshots Snapshotter, tr provider.Translator, syn provider.Synthesizer,
	translateTimeout, synthesizeTimeout time.Duration, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		snapshots:         snapshots,
		translator:        tr,
		synthesizer:       syn,
		translateTimeout:  translateTimeout,
		synthesizeTimeout: synthesizeTimeout,
		log:               log,
	}
}

// synthKey identifies one synthesis call shared by all listeners requesting
// the exact same audio.
type synthKey struct {
	language string
	voiceID  string
	speed    float64
}

// Dispatch fans one utterance out to the current room membership. A failed
// or timed-out translation skips only the listeners needing that language; a
// failed synthesis drops only that voice group's audio, captions unaffected.
// Dispatch returns after every enqueue for the utterance is done, which is
// what preserves per speaker-to-listener FIFO when the ingest layer calls it
// once per utterance in recognition order.
func (o *Orchestrator) Dispatch(ctx context.Context, utt model.Utterance) {
	listeners := o.snapshots.Snapshot(utt.RoomID)

	// Listeners sharing the speaker's language hear the original directly.
	targets := make([]registry.Listener, 0, len(listeners))
	for _, l := range listeners {
		if l.ID == utt.SpeakerID || l.SourceLanguage == utt.SourceLanguage {
			continue
		}
		if !l.Settings.Enabled() {
			continue
		}
		targets = append(targets, l)
	}
	if len(targets) == 0 {
		return
	}

	translations := o.translateAll(ctx, utt, targets)

	for _, l := range targets {
		if !l.Settings.TextEnabled {
			continue
		}
		translated, ok := translations[l.SourceLanguage]
		if !ok {
			continue
		}
		l.Queue.Enqueue(model.TextEnvelope{
			SpeakerID:      utt.SpeakerID,
			Original:       utt.Text,
			Translated:     translated,
			SourceLanguage: utt.SourceLanguage,
			TargetLanguage: l.SourceLanguage,
		})
	}

	o.synthesizeGroups(ctx, utt, targets, translations)
}

// translateAll invokes the translation provider exactly once per distinct
// target language, concurrently. Results are cached only for this utterance.
func (o *Orchestrator) translateAll(ctx context.Context, utt model.Utterance, targets []registry.Listener) map[string]string {
	distinct := make(map[string]struct{})
	for _, l := range targets {
		distinct[l.SourceLanguage] = struct{}{}
	}

	var (
		mu           sync.Mutex
		wg           sync.WaitGroup
		translations = make(map[string]string, len(distinct))
	)
	for lang := range distinct {
		wg.Add(1)
		go func(lang string) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, o.translateTimeout)
			defer cancel()
			text, err := o.translator.Translate(callCtx, utt.Text, utt.SourceLanguage, lang)
			if err != nil {
				o.log.Warn("translation failed, skipping language",
					zap.String("room_id", utt.RoomID),
					zap.String("speaker_id", utt.SpeakerID),
					zap.String("target_language", lang),
					zap.Error(err))
				return
			}
			mu.Lock()
			translations[lang] = text
			mu.Unlock()
		}(lang)
	}
	wg.Wait()
	return translations
}

// synthesizeGroups invokes the synthesis provider exactly once per distinct
// (language, voice, speed) combination and fans the clip to every listener
// sharing it.
func (o *Orchestrator) synthesizeGroups(ctx context.Context, utt model.Utterance, targets []registry.Listener, translations map[string]string) {
	groups := make(map[synthKey][]registry.Listener)
	for _, l := range targets {
		if !l.Settings.VoiceEnabled {
			continue
		}
		if _, ok := translations[l.SourceLanguage]; !ok {
			continue
		}
		voice := l.Settings.PreferredVoiceID
		if voice == "" {
			voice = provider.DefaultVoice(l.SourceLanguage)
		}
		key := synthKey{language: l.SourceLanguage, voiceID: voice, speed: l.Settings.VoiceSpeed}
		groups[key] = append(groups[key], l)
	}
	if len(groups) == 0 {
		return
	}

	var wg sync.WaitGroup
	for key, members := range groups {
		wg.Add(1)
		go func(key synthKey, members []registry.Listener) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, o.synthesizeTimeout)
			defer cancel()
			audio, err := o.synthesizer.Synthesize(callCtx, translations[key.language], key.language, key.voiceID, key.speed)
			if err != nil {
				o.log.Warn("synthesis failed, voice group receives captions only",
					zap.String("room_id", utt.RoomID),
					zap.String("speaker_id", utt.SpeakerID),
					zap.String("target_language", key.language),
					zap.String("voice_id", key.voiceID),
					zap.Error(err))
				return
			}
			for _, l := range members {
				l.Queue.Enqueue(model.VoiceEnvelope{
					SpeakerID:      utt.SpeakerID,
					TargetLanguage: key.language,
					VoiceID:        key.voiceID,
					Audio:          audio,
				})
			}
		}(key, members)
	}
	wg.Wait()
}
