package pool

import (
	"context"
	"testing"
	"time"
)

func TestNew_DefaultsToParallelism(t *testing.T) {
	p := New(0)
	if p.Size() < 1 {
		t.Fatalf("expected size >= 1, got %d", p.Size())
	}
}

func TestAcquireRelease(t *testing.T) {
	p := New(1)
	ctx := context.Background()

	h, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Interpreter() == nil {
		t.Fatal("expected a non-nil interpreter")
	}
	h.Release()

	h2, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error on reacquire: %v", err)
	}
	h2.Release()
}

func TestAcquire_BlocksUntilReleased(t *testing.T) {
	p := New(1)
	ctx := context.Background()

	h, err := p.Acquire(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		h2, err := p.Acquire(context.Background())
		if err != nil {
			return
		}
		h2.Release()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire should not have succeeded before release")
	case <-time.After(50 * time.Millisecond):
	}

	h.Release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire did not unblock after release")
	}
}

func TestAcquire_ContextCancelled(t *testing.T) {
	p := New(1)
	h, err := p.Acquire(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer h.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Acquire(ctx); err == nil {
		t.Fatal("expected an error acquiring with a cancelled context")
	}
}
