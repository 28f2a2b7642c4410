package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"signalscope/internal/encode"
	"signalscope/internal/event"
	"signalscope/pkg/types"
)

type controller struct {
	key       any
	name      string
	createdAt time.Time
	seq       uint64
	counter   int
	ids       map[string]struct{}
}

type record struct {
	id         string
	key        any // nil when the notifier has no usable identity
	n          Notifier
	kind       Kind
	controller *controller
	label      string
	updatedAt  time.Time
	seq        uint64
	detach     func()
}

// Registry tracks controllers, notifiers and their event history.
type Registry struct {
	mu      sync.Mutex
	enabled bool

	codec   *encode.Codec
	now     func() time.Time
	log     zerolog.Logger
	pub     Publisher
	metrics func() map[string]any

	historyLimit int
	perIDLimit   int
	limits       map[string]int

	controllers map[any]*controller
	names       map[string]*controller
	notifiers   map[string]*record
	byNotifier  map[any]string
	seq         uint64

	global   *ring[event.Event]
	perID    map[string]*ring[event.Event]
	activity *ring[types.MiddlewareActivity]
}

// New constructs a disabled Registry from cfg, applying defaults.
func New(cfg Config) *Registry {
	r := &Registry{
		now:     time.Now,
		log:     zerolog.Nop(),
		pub:     noopPublisher{},
		metrics: cfg.Metrics,
	}
	if cfg.Clock != nil {
		r.now = cfg.Clock
	}
	if cfg.Logger != nil {
		r.log = *cfg.Logger
	}
	if cfg.Publisher != nil {
		r.pub = cfg.Publisher
	}
	r.codec = encode.New(encode.WithMaxDepth(cfg.EncodeMaxDepth))
	r.historyLimit = DefaultHistoryLimit
	if cfg.HistoryLimit > 0 {
		r.historyLimit = cfg.HistoryLimit
	}
	if cfg.PerIDHistoryLimit > 0 {
		r.perIDLimit = cfg.PerIDHistoryLimit
	}
	r.resetState()
	return r
}

func (r *Registry) resetState() {
	r.enabled = false
	r.limits = make(map[string]int)
	r.controllers = make(map[any]*controller)
	r.names = make(map[string]*controller)
	r.notifiers = make(map[string]*record)
	r.byNotifier = make(map[any]string)
	r.global = newRing[event.Event](r.historyLimit)
	r.perID = make(map[string]*ring[event.Event])
	r.activity = newRing[types.MiddlewareActivity](r.historyLimit)
}

var defaultRegistry = New(Config{})

// Default returns the process-wide registry. It starts disabled.
func Default() *Registry { return defaultRegistry }

// SetLogger installs a structured logger.
func (r *Registry) SetLogger(l zerolog.Logger) {
	r.mu.Lock()
	r.log = l
	r.mu.Unlock()
}

// SetPublisher replaces the live event tap. nil restores the no-op publisher.
func (r *Registry) SetPublisher(p Publisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p == nil {
		r.pub = noopPublisher{}
		return
	}
	r.pub = p
}

// SetMetricsProvider installs the provider whose output is embedded in
// snapshots. nil removes it.
func (r *Registry) SetMetricsProvider(fn func() map[string]any) {
	r.mu.Lock()
	r.metrics = fn
	r.mu.Unlock()
}

// SetEncodeMaxDepth changes the nesting limit used when encoding values.
// Non-positive values restore the default.
func (r *Registry) SetEncodeMaxDepth(n int) {
	r.mu.Lock()
	r.codec = encode.New(encode.WithMaxDepth(n))
	r.mu.Unlock()
}

// Enabled reports whether listeners are attached and events recorded.
func (r *Registry) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Enable starts recording. Notifiers registered while disabled get their
// listener now, and one register event is synthesized per live notifier so a
// client joining later can rebuild present state. No-op when already enabled.
func (r *Registry) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled {
		return
	}
	r.enabled = true
	recs := r.recordsInOrder()
	for _, rec := range recs {
		if rec.detach == nil {
			r.attach(rec)
		}
		r.recordEvent(event.NewRegister(rec.id, r.read(rec), r.now(), rec.meta()))
	}
	r.log.Info().Int("notifiers", len(recs)).Msg("debug registry enabled")
}

// Disable stops recording. Listeners stay attached and history stays
// queryable.
func (r *Registry) Disable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	r.enabled = false
	r.log.Info().Msg("debug registry disabled")
}

// Reset detaches every listener and drops all controllers, notifiers and
// history, leaving the registry disabled. Limits configured at construction
// are kept; per-id overrides are dropped.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.notifiers {
		r.detach(rec)
	}
	r.resetState()
}

func (r *Registry) recordsInOrder() []*record {
	out := make([]*record, 0, len(r.notifiers))
	for _, rec := range r.notifiers {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (r *Registry) nextSeq() uint64 {
	r.seq++
	return r.seq
}
