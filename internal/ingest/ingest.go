// Package ingest runs the per-speaker audio pipeline: frames in, recognized
// utterances out, in order, without letting one frame's provider latency
// stall the next frame's ingest.
package ingest

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/eyepyon/waiwine/internal/model"
	"github.com/eyepyon/waiwine/internal/provider"
)

// Dispatcher receives recognized utterances, one call per utterance, in
// recognition order.
type Dispatcher interface {
	Dispatch(ctx context.Context, utt model.Utterance)
}

// Speaker is one speaker's ingest channel. Frames are pipelined through the
// recognizer under a bounded in-flight window; a sequence number per frame
// and a small reorder buffer put results back in submission order before
// dispatch, so listeners see this speaker's utterances FIFO.
type Speaker struct {
	roomID           string
	id               string
	recognizer       provider.Recognizer
	dispatcher       Dispatcher
	recognizeTimeout time.Duration
	log              *zap.Logger

	frames  chan model.AudioFrame
	results chan result
	done    chan struct{}

	errorCount    atomic.Uint64
	framesDropped atomic.Uint64
}

type result struct {
	seq uint64
	utt model.Utterance
	ok  bool
}

// NewSpeaker starts the pipeline for one speaker. Close releases it.
func NewSpeaker(roomID, speakerID string, rec provider.Recognizer, disp Dispatcher,
	recognizeTimeout time.Duration, maxInflight int, log *zap.Logger) *Speaker {
	if maxInflight <= 0 {
		maxInflight = 1
	}
	s := &Speaker{
		roomID:           roomID,
		id:               speakerID,
		recognizer:       rec,
		dispatcher:       disp,
		recognizeTimeout: recognizeTimeout,
		log:              log,
		frames:           make(chan model.AudioFrame, 2*maxInflight),
		results:          make(chan result, maxInflight),
		done:             make(chan struct{}),
	}
	go s.recognizeLoop(maxInflight)
	go s.dispatchLoop()
	return s
}

// Submit hands one frame to the pipeline. A full pipeline drops the frame
// rather than blocking the connection's read loop.
func (s *Speaker) Submit(frame model.AudioFrame) {
	// The settings snapshot travels with the frame: disabling translation
	// mid-utterance does not retract frames already submitted.
	if !frame.Settings.Enabled() {
		return
	}
	select {
	case s.frames <- frame:
	default:
		s.framesDropped.Add(1)
		s.log.Debug("ingest saturated, frame dropped",
			zap.String("room_id", s.roomID), zap.String("speaker_id", s.id))
	}
}

// Close stops accepting frames and lets in-flight recognitions drain.
func (s *Speaker) Close() {
	close(s.frames)
	<-s.done
}

// ErrorCount returns the number of non-timeout recognition failures.
func (s *Speaker) ErrorCount() uint64 { return s.errorCount.Load() }

func (s *Speaker) recognizeLoop(maxInflight int) {
	sem := make(chan struct{}, maxInflight)
	var seq uint64
	for frame := range s.frames {
		sem <- struct{}{}
		frameSeq := seq
		seq++
		go func(frame model.AudioFrame, frameSeq uint64) {
			defer func() { <-sem }()
			s.results <- s.recognize(frame, frameSeq)
		}(frame, frameSeq)
	}
	// Wait for in-flight recognitions, then stop the dispatcher.
	for i := 0; i < maxInflight; i++ {
		sem <- struct{}{}
	}
	close(s.results)
}

func (s *Speaker) recognize(frame model.AudioFrame, frameSeq uint64) result {
	ctx, cancel := context.WithTimeout(context.Background(), s.recognizeTimeout)
	defer cancel()
	text, err := s.recognizer.Recognize(ctx, frame.Samples, frame.SourceLanguage)
	if err != nil {
		switch {
		case errors.Is(err, provider.ErrEmptyTranscript), errors.Is(err, context.DeadlineExceeded):
			// Silence, non-speech and timeouts are expected; the frame is
			// discarded without retry and the next frame is a fresh attempt.
			s.log.Debug("frame discarded",
				zap.String("speaker_id", s.id), zap.Error(err))
		default:
			s.errorCount.Add(1)
			s.log.Warn("recognition failed",
				zap.String("room_id", s.roomID),
				zap.String("speaker_id", s.id),
				zap.Uint64("error_count", s.errorCount.Load()),
				zap.Error(err))
		}
		return result{seq: frameSeq}
	}
	return result{
		seq: frameSeq,
		ok:  true,
		utt: model.Utterance{
			RoomID:         s.roomID,
			SpeakerID:      s.id,
			SourceLanguage: frame.SourceLanguage,
			Text:           text,
			Settings:       frame.Settings,
		},
	}
}

// dispatchLoop reorders pipelined results back into submission order and
// hands utterances to the orchestrator one at a time.
func (s *Speaker) dispatchLoop() {
	defer close(s.done)
	pending := make(map[uint64]result)
	var next uint64
	for res := range s.results {
		pending[res.seq] = res
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if ready.ok {
				s.dispatcher.Dispatch(context.Background(), ready.utt)
			}
		}
	}
}
