package taskloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopRunsImmediatelyThenOnInterval(t *testing.T) {
	var calls int32
	l := New(20*time.Millisecond, func(ctx context.Context) {
		atomic.AddInt32(&calls, 1)
	})

	go l.Start(context.Background())
	time.Sleep(5 * time.Millisecond)
	if atomic.LoadInt32(&calls) < 1 {
		t.Fatal("expected an immediate call before the first tick")
	}

	time.Sleep(60 * time.Millisecond)
	l.Stop()

	if got := atomic.LoadInt32(&calls); got < 3 {
		t.Fatalf("expected at least 3 calls after ~60ms at a 20ms interval, got %d", got)
	}
}

func TestLoopStopBlocksUntilGoroutineExits(t *testing.T) {
	started := make(chan struct{})
	blocking := make(chan struct{})
	l := New(time.Millisecond, func(ctx context.Context) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-blocking
	})

	go l.Start(context.Background())
	<-started

	done := make(chan struct{})
	go func() {
		l.Stop()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Stop returned before the blocked call finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(blocking)
	<-done
}
