package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_CoalescesBursts(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 10; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("callback ran %d times, want 1", got)
	}
}

func TestDebouncer_StopCancels(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Stop()
	d.Trigger(func() { calls.Add(1) })

	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("callback ran %d times after Stop", got)
	}
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	original := GetConfig()
	defer SetConfig(original)

	path := writeConfig(t, "env: before\n")
	w, err := NewWatcher(path, 20*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}

	reloaded := make(chan *Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = w.Watch(ctx, func(cfg *Config) { reloaded <- cfg }) }()
	time.Sleep(100 * time.Millisecond)

	// invalid content is ignored
	if err := os.WriteFile(path, []byte("limits:\n  rate: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(150 * time.Millisecond)

	if err := os.WriteFile(path, []byte("env: after\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for done := false; !done; {
		select {
		case cfg := <-reloaded:
			done = cfg.Env == "after"
		case <-deadline:
			t.Fatal("no reload with the new content observed")
		}
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
}
