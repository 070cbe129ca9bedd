package data

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRefresh(t *testing.T) {
	store := NewStore()
	fail := false

	generator := GeneratorFunc(func(_ context.Context) ([]byte, []byte, error) {
		if fail {
			return nil, nil, errors.New("all sources down")
		}
		return []byte("#EXTM3U\n"), []byte(`{"fetched":0}`), nil
	})

	r := NewRefresher(store, generator, time.Minute, testLogger())

	if err := r.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	playlist, ok := store.GetPlaylist()
	if !ok || string(playlist) != "#EXTM3U\n" {
		t.Fatalf("Expected stored playlist, got %q", playlist)
	}

	fail = true
	if err := r.Refresh(context.Background()); err == nil {
		t.Fatal("Expected refresh error")
	}
	if playlist, _ := store.GetPlaylist(); string(playlist) != "#EXTM3U\n" {
		t.Error("Failed refresh should keep the previous playlist")
	}
}

func TestScheduleNextRefresh(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		err      error
		expected time.Duration
	}{
		{name: "success", interval: 30 * time.Minute, expected: 30 * time.Minute},
		{name: "error halves interval", interval: 4 * time.Minute, err: errors.New("x"), expected: 2 * time.Minute},
		{name: "error capped", interval: 30 * time.Minute, err: errors.New("x"), expected: 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRefresher(NewStore(), nil, tt.interval, testLogger())
			if got := r.scheduleNextRefresh(tt.err); got != tt.expected {
				t.Errorf("scheduleNextRefresh() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRefresherStartStops(t *testing.T) {
	calls := make(chan struct{}, 10)
	generator := GeneratorFunc(func(_ context.Context) ([]byte, []byte, error) {
		select {
		case calls <- struct{}{}:
		default:
		}
		return []byte("#EXTM3U\n"), nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	r := NewRefresher(NewStore(), generator, 10*time.Millisecond, testLogger())

	done := make(chan struct{})
	go func() {
		r.Start(ctx)
		close(done)
	}()

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("Refresher did not run")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Refresher did not stop")
	}
}
