package speech

import (
	"context"
	"time"

	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
)

// AudioSink plays one synthesized announcement. Satisfied by *Player;
// tests substitute a recorder.
type AudioSink interface {
	Play(wav []byte) error
	Stop()
}

// SpeakerOption configures the speaker.
type SpeakerOption func(*Speaker)

// WithPollInterval sets how often the speaker checks the queue when idle.
func WithPollInterval(d time.Duration) SpeakerOption {
	return func(s *Speaker) { s.interval = d }
}

// WithGap sets the minimum pause between two spoken announcements so
// consecutive changes don't blur together.
func WithGap(d time.Duration) SpeakerOption {
	return func(s *Speaker) { s.gap = d }
}

// Speaker is the speech-engine side of the pipeline: it drains the queue
// and renders each announcement, one at a time. With no synthesizer or
// sink configured it degrades to logging the text, which keeps the
// pipeline observable on machines without audio.
type Speaker struct {
	queue    *Queue
	tts      domain.Synthesizer
	sink     AudioSink
	log      *logger.Logger
	interval time.Duration
	gap      time.Duration
}

// NewSpeaker creates a speaker. tts and sink may be nil together for the
// text-only fallback.
func NewSpeaker(queue *Queue, tts domain.Synthesizer, sink AudioSink, log *logger.Logger, opts ...SpeakerOption) *Speaker {
	s := &Speaker{
		queue:    queue,
		tts:      tts,
		sink:     sink,
		log:      log,
		interval: 250 * time.Millisecond,
		gap:      400 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run drains the queue until ctx is cancelled. Blocks; intended to be
// called as a goroutine from the composition root.
func (s *Speaker) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("speaker started (interval=%s)", s.interval)

	for {
		select {
		case <-ctx.Done():
			if s.sink != nil {
				s.sink.Stop()
			}
			s.log.Info("speaker stopped")
			return
		case <-ticker.C:
			s.drain(ctx)
		}
	}
}

// drain speaks everything currently pending, highest priority first.
func (s *Speaker) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		item, ok := s.queue.Dequeue()
		if !ok {
			return
		}

		waited := time.Since(item.EnqueuedAt).Round(time.Millisecond)
		s.log.Debug("speaker: speaking (priority=%d, waited=%s): %s", item.Priority, waited, item.Text)
		s.speak(ctx, item.Text)

		if s.gap > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.gap):
			}
		}
	}
}

func (s *Speaker) speak(ctx context.Context, text string) {
	if s.tts == nil || s.sink == nil {
		// Text fallback.
		s.log.Info("fala: %s", text)
		return
	}

	audio, err := s.tts.Synthesize(ctx, text)
	if err != nil {
		s.log.Error("speaker: synthesis failed: %v", err)
		return
	}
	if err := s.sink.Play(audio); err != nil {
		s.log.Error("speaker: playback failed: %v", err)
	}
}
