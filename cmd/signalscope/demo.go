package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"signalscope/internal/reactive"
	"signalscope/internal/registry"
)

// demo is a tiny controller that gives the dashboard something to show.
type demo struct {
	count  *reactive.Signal[int]
	double *reactive.Computed[int]
	parity *reactive.Computed[string]
}

func (d *demo) DebugName() string { return "Demo" }

func newDemo(reg *registry.Registry) *demo {
	d := &demo{count: reactive.NewSignal(0)}
	d.double = reactive.NewComputed(func() int { return d.count.Get() * 2 }, d.count)
	d.parity = reactive.NewComputed(func() string {
		if d.count.Get()%2 == 0 {
			return "even"
		}
		return "odd"
	}, d.count)
	reg.RegisterNotifier(d, d.count, "count", registry.KindSignal)
	reg.RegisterNotifier(d, d.double, "double", registry.KindComputed)
	reg.RegisterNotifier(d, d.parity, "parity", registry.KindComputed)
	return d
}

// tick advances the counter; every fifth tick is also logged as middleware
// activity.
func (d *demo) tick(reg *registry.Registry) {
	d.count.Update(func(n int) int { return n + 1 })
	if n := d.count.Get(); n%5 == 0 {
		reg.RecordMiddlewareEvent("ticker", map[string]any{"tick": n})
	}
}

func (d *demo) close(reg *registry.Registry) {
	reg.UnregisterController(d)
	d.double.Dispose()
	d.parity.Dispose()
}

func startDemo(ctx context.Context, reg *registry.Registry, every time.Duration, log zerolog.Logger) {
	if every <= 0 {
		every = time.Second
	}
	d := newDemo(reg)
	log.Info().Dur("every", every).Msg("demo counter running")
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		defer d.close(reg)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				d.tick(reg)
			}
		}
	}()
}
