package audit

import (
	"context"
	"sync"
	"time"
)

// writeTimeout bounds a single asynchronous audit write.
const writeTimeout = 5 * time.Second

// AsyncLogger runs LogEvent in a goroutine so request handlers are not blocked by the
// audit store. Request cancellation does not abort an in-flight write; the request's
// values (client IP, span) are kept.
type AsyncLogger struct {
	inner *Logger
	wg    sync.WaitGroup
}

// NewAsyncLogger wraps l. A nil l makes LogEvent a no-op.
func NewAsyncLogger(l *Logger) *AsyncLogger {
	return &AsyncLogger{inner: l}
}

func (a *AsyncLogger) LogEvent(ctx context.Context, actorID, targetID, action, metadata string) {
	if a.inner == nil {
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		a.inner.LogEvent(writeCtx, actorID, targetID, action, metadata)
	}()
}

// Drain waits for in-flight writes, or until ctx is done.
func (a *AsyncLogger) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
