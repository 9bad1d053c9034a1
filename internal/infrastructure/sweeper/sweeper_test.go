package sweeper_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/payflow/internal/infrastructure/sweeper"
)

type fakeBalance struct {
	calls int
	swept int
	err   error
	times []time.Time
}

func (f *fakeBalance) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	f.calls++
	f.times = append(f.times, now)
	return f.swept, f.err
}

func TestSweep(t *testing.T) {
	fake := &fakeBalance{swept: 3}
	s := sweeper.New(sweeper.Config{Balance: fake})

	if err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if fake.calls != 1 {
		t.Fatalf("expected 1 sweep call, got %d", fake.calls)
	}
	if fake.times[0].Location() != time.UTC {
		t.Errorf("expected UTC cutoff, got %v", fake.times[0].Location())
	}
}

func TestSweepPropagatesError(t *testing.T) {
	fake := &fakeBalance{err: errors.New("database unavailable")}
	s := sweeper.New(sweeper.Config{Balance: fake})

	if err := s.Sweep(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestStartStopsOnContextCancel(t *testing.T) {
	fake := &fakeBalance{}
	s := sweeper.New(sweeper.Config{Balance: fake, Interval: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("sweeper did not stop after cancel")
	}

	// One sweep on start plus at least one tick.
	if fake.calls < 2 {
		t.Fatalf("expected at least 2 sweep calls, got %d", fake.calls)
	}
}
