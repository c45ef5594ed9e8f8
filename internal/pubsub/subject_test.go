package pubsub

import (
	"errors"
	"testing"

	"github.com/andrevmm/ondeestou/internal/domain"
	"github.com/andrevmm/ondeestou/internal/logger"
)

// recorder collects the args it was notified with.
type recorder struct {
	calls [][]any
}

func (r *recorder) Update(args ...any) {
	r.calls = append(r.calls, args)
}

func TestSubjectNotifiesObserverAndFunc(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	s := New(log)

	rec := &recorder{}
	if err := s.Subscribe(rec); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	var fnCalls int
	if _, err := s.SubscribeFunc(func(args ...any) { fnCalls++ }); err != nil {
		t.Fatalf("subscribe func: %v", err)
	}

	s.Notify("hello", 42)

	if len(rec.calls) != 1 {
		t.Fatalf("expected 1 observer call, got %d", len(rec.calls))
	}
	if rec.calls[0][0] != "hello" || rec.calls[0][1] != 42 {
		t.Fatalf("unexpected args: %v", rec.calls[0])
	}
	if fnCalls != 1 {
		t.Fatalf("expected 1 func call, got %d", fnCalls)
	}
}

func TestSubjectRejectsNil(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	s := New(log)

	if err := s.Subscribe(nil); !errors.Is(err, domain.ErrNilObserver) {
		t.Fatalf("expected ErrNilObserver, got %v", err)
	}
	if _, err := s.SubscribeFunc(nil); !errors.Is(err, domain.ErrNilObserver) {
		t.Fatalf("expected ErrNilObserver, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("nil registrations must not be stored")
	}
}

func TestSubjectUnsubscribe(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	s := New(log)

	rec := &recorder{}
	if err := s.Subscribe(rec); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	s.Unsubscribe(rec)
	s.Notify("after")
	if len(rec.calls) != 0 {
		t.Fatalf("unsubscribed observer was notified")
	}

	// Removing an unknown observer is a no-op, not an error.
	s.Unsubscribe(&recorder{})
}

func TestSubjectCancelFunc(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	s := New(log)

	var calls int
	sub, err := s.SubscribeFunc(func(args ...any) { calls++ })
	if err != nil {
		t.Fatalf("subscribe func: %v", err)
	}

	s.Notify()
	s.Cancel(sub)
	s.Notify()

	if calls != 1 {
		t.Fatalf("expected 1 call before cancel, got %d", calls)
	}
}

func TestSubjectIsolatesPanickingListener(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	s := New(log)

	if _, err := s.SubscribeFunc(func(args ...any) { panic("boom") }); err != nil {
		t.Fatalf("subscribe func: %v", err)
	}
	rec := &recorder{}
	if err := s.Subscribe(rec); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	s.Notify("payload")

	if len(rec.calls) != 1 {
		t.Fatalf("listener after panicking one was not notified")
	}
}

func TestSubjectNotifyOrderIsRegistrationOrder(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	s := New(log)

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		if _, err := s.SubscribeFunc(func(args ...any) { order = append(order, i) }); err != nil {
			t.Fatalf("subscribe func: %v", err)
		}
	}

	s.Notify()

	for i, got := range order {
		if got != i {
			t.Fatalf("expected registration order, got %v", order)
		}
	}
}
