package httpapi

import (
	"context"
)

// serverBaseCtx is a process-level context that can be canceled on shutdown.
// Long-lived streams end when it is done.
var serverBaseCtx = context.Background()

// SetBaseContext sets the process-level base context used by streaming handlers.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// streamContext returns a context that is canceled when either the request or
// the server base context is done. The returned cancel func must be called to
// release the watcher goroutine.
func streamContext(req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(req)
	base := serverBaseCtx
	go func() {
		select {
		case <-base.Done():
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
