package speech

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/andrevmm/ondeestou/internal/logger"
)

// fakeSynth returns the text itself as "audio".
type fakeSynth struct{}

func (fakeSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	return []byte(text), nil
}

// fakeSink records everything played.
type fakeSink struct {
	mu     sync.Mutex
	played []string
}

func (f *fakeSink) Play(wav []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, string(wav))
	return nil
}

func (f *fakeSink) Stop() {}

func (f *fakeSink) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...)
}

func TestSpeakerDrainsInPriorityOrder(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	q, err := NewQueue(log)
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}

	mustEnqueue(t, q, "rua", PriorityLow)
	mustEnqueue(t, q, "município", PriorityHigh)
	mustEnqueue(t, q, "bairro", PriorityNormal)

	sink := &fakeSink{}
	s := NewSpeaker(q, fakeSynth{}, sink, log,
		WithPollInterval(10*time.Millisecond),
		WithGap(0),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(sink.snapshot()) == 3 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	got := sink.snapshot()
	want := []string{"município", "bairro", "rua"}
	if len(got) != len(want) {
		t.Fatalf("played %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("played %v, want %v", got, want)
		}
	}
}

func TestSpeakerTextFallback(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	q, err := NewQueue(log)
	if err != nil {
		t.Fatalf("new queue: %v", err)
	}
	mustEnqueue(t, q, "anywhere", PriorityNormal)

	s := NewSpeaker(q, nil, nil, log, WithPollInterval(10*time.Millisecond), WithGap(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if q.IsEmpty() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("text fallback must still drain the queue")
}
