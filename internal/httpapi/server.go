package httpapi

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signalscope/internal/event"
	"signalscope/internal/protocol"
	"signalscope/internal/stream"
	"signalscope/pkg/types"
)

// Service defines the registry reads required by the HTTP API layer.
type Service interface {
	Snapshot() types.Snapshot
	History() []event.Event
	Counts() types.Counts
	Controllers() []types.ControllerSummary
}

// Events hands out live event subscriptions.
type Events interface {
	Subscribe(buffer int) *stream.Subscription
}

//go:embed ui.html
var uiPage []byte

type handlers struct {
	svc    Service
	events Events
}

// NewMux builds the read-only debug API. events may be nil, in which case the
// streaming routes answer 503.
func NewMux(svc Service, events Events) http.Handler {
	h := &handlers{svc: svc, events: events}
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(corsOptions()))
	}
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed)
	})

	// Access logs and compression for JSON endpoints only; streams log their own
	// lifecycle and must flush frame by frame.
	r.Group(func(r chi.Router) {
		r.Use(AccessLog)
		r.Use(middleware.Compress(5))
		r.Get("/", h.health)
		r.Get("/health", h.health)
		r.Get("/snapshot", h.snapshot)
		r.Get("/events", h.history)
		r.Get("/registry", h.registry)
		r.Get("/protocol", h.info)
		r.Get("/ui", h.ui)
	})

	r.Get("/stream", h.sse)
	r.Get("/ws", h.ws)

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

func corsOptions() cors.Options {
	methods := corsAllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodOptions}
	}
	headers := corsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Accept", "Content-Type", "X-Log-Level"}
	}
	return cors.Options{
		AllowedOrigins: corsAllowedOrigins,
		AllowedMethods: methods,
		AllowedHeaders: headers,
		MaxAge:         300,
	}
}

// health godoc
// @Summary Liveness
// @Tags debug
// @Produce json
// @Success 200 {object} types.HealthMessage
// @Router /health [get]
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, protocol.Health())
}

// snapshot godoc
// @Summary Full registry snapshot
// @Tags debug
// @Produce json
// @Success 200 {object} types.SnapshotMessage
// @Failure 500 {object} types.ErrorMessage
// @Router /snapshot [get]
func (h *handlers) snapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, protocol.SnapshotMessage(h.svc.Snapshot()))
}

// history godoc
// @Summary Global event history, oldest first
// @Tags debug
// @Produce json
// @Success 200 {object} types.EventsMessage
// @Router /events [get]
func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, protocol.Events(event.MapAll(h.svc.History())))
}

// registry godoc
// @Summary Registry counts and controllers
// @Tags debug
// @Produce json
// @Success 200 {object} types.RegistryMessage
// @Router /registry [get]
func (h *handlers) registry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, protocol.Registry(h.svc.Counts(), h.svc.Controllers()))
}

// info godoc
// @Summary Protocol capabilities
// @Tags debug
// @Produce json
// @Success 200 {object} types.InfoMessage
// @Router /protocol [get]
func (h *handlers) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, protocol.Info(session))
}

func (h *handlers) ui(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(uiPage)
}
