package registry

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"signalscope/internal/reactive"
)

func TestRegistryProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(4242)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("ids stay unique whatever the labels", prop.ForAll(
		func(labels []string) bool {
			r := New(Config{Clock: tickClock()})
			owner := &Counter{}
			seen := make(map[string]bool)
			for _, l := range labels {
				id := r.RegisterNotifier(owner, reactive.NewSignal(0), l, KindSignal)
				if id == "" || seen[id] {
					return false
				}
				seen[id] = true
			}
			return r.Counts().Signals == len(labels)
		},
		gen.SliceOf(gen.OneConstOf("", "count", "total", "a.b", "Counter.count")),
	))

	properties.Property("histories never exceed their caps", prop.ForAll(
		func(limit, perID, emits int) bool {
			r := New(Config{HistoryLimit: limit, PerIDHistoryLimit: perID, Clock: tickClock()})
			r.Enable()
			s := reactive.NewSignal(0)
			id := r.RegisterNotifier(&Counter{}, s, "count", KindSignal)
			for i := 1; i <= emits; i++ {
				s.Set(i)
			}
			global := r.History()
			bucket := r.HistoryFor(id)
			if len(global) > limit || len(bucket) > perID {
				return false
			}
			// The newest event always survives eviction.
			return len(bucket) > 0 && bucket[len(bucket)-1].Value == emits
		},
		gen.IntRange(1, 20),
		gen.IntRange(1, 20),
		gen.IntRange(1, 60),
	))

	properties.Property("per-id history mirrors the global tail", prop.ForAll(
		func(emits int) bool {
			r := New(Config{HistoryLimit: 1000, Clock: tickClock()})
			r.Enable()
			s := reactive.NewSignal(0)
			id := r.RegisterNotifier(&Counter{}, s, "count", KindSignal)
			for i := 1; i <= emits; i++ {
				s.Set(i)
			}
			global := r.History()
			bucket := r.HistoryFor(id)
			// Global additionally holds the controller registration.
			if len(global) != len(bucket)+1 {
				return false
			}
			for i, e := range bucket {
				g := global[i+1]
				if g.Kind != e.Kind || g.Value != e.Value || g.Timestamp != e.Timestamp {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 50),
	))

	properties.TestingRun(t)
}
