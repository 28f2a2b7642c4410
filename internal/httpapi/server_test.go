package httpapi

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"signalscope/internal/reactive"
	"signalscope/internal/registry"
	"signalscope/internal/stream"
)

type Counter struct{ n int }

type fixture struct {
	reg   *registry.Registry
	bus   *stream.Broadcaster
	count *reactive.Signal[int]
	h     http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bus := stream.New()
	t.Cleanup(bus.Close)
	reg := registry.New(registry.Config{Publisher: bus})
	count := reactive.NewSignal(0)
	reg.RegisterNotifier(&Counter{}, count, "count", registry.KindSignal)
	reg.Enable()
	return &fixture{reg: reg, bus: bus, count: count, h: NewMux(reg, bus)}
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	return body
}

func TestHealthRoutes(t *testing.T) {
	f := newFixture(t)
	for _, p := range []string{"/", "/health"} {
		w := f.get(t, p)
		if w.Code != http.StatusOK {
			t.Fatalf("%s status=%d", p, w.Code)
		}
		body := decodeBody(t, w)
		if body["type"] != "health" || body["status"] != "ok" || body["protocol"] != "1.0.0" {
			t.Fatalf("%s body=%v", p, body)
		}
		if w.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Fatalf("missing nosniff header")
		}
	}
}

func TestSnapshotRoute(t *testing.T) {
	f := newFixture(t)
	f.count.Set(4)
	body := decodeBody(t, f.get(t, "/snapshot"))
	if body["type"] != "snapshot" {
		t.Fatalf("type=%v", body["type"])
	}
	snap := body["snapshot"].(map[string]any)
	view := snap["signals"].(map[string]any)["Counter.count"].(map[string]any)
	if view["value"] != float64(4) || view["controller"] != "Counter" {
		t.Fatalf("view=%v", view)
	}
	per := snap["perSignalHistory"].(map[string]any)["Counter.count"].([]any)
	if len(per) != 2 {
		t.Fatalf("per-id history len=%d", len(per))
	}
}

func TestEventsRoute(t *testing.T) {
	f := newFixture(t)
	f.count.Set(1)
	body := decodeBody(t, f.get(t, "/events"))
	hist := body["history"].([]any)
	if body["type"] != "events" || len(hist) != 2 {
		t.Fatalf("body=%v", body)
	}
	last := hist[1].(map[string]any)
	if last["kind"] != "signalEmit" || last["id"] != "Counter.count" || last["value"] != float64(1) {
		t.Fatalf("last=%v", last)
	}
}

func TestRegistryRoute(t *testing.T) {
	f := newFixture(t)
	body := decodeBody(t, f.get(t, "/registry"))
	counts := body["counts"].(map[string]any)
	if counts["signals"] != float64(1) || counts["controllers"] != float64(1) || counts["computed"] != float64(0) {
		t.Fatalf("counts=%v", counts)
	}
	ctrls := body["controllers"].([]any)
	if len(ctrls) != 1 || ctrls[0].(map[string]any)["signalCount"] != float64(1) {
		t.Fatalf("controllers=%v", ctrls)
	}
}

func TestProtocolRoute(t *testing.T) {
	f := newFixture(t)
	SetSession("test-session")
	body := decodeBody(t, f.get(t, "/protocol"))
	if body["type"] != "info" || body["session"] != "test-session" {
		t.Fatalf("body=%v", body)
	}
	if n := len(body["eventTypes"].([]any)); n != 6 {
		t.Fatalf("eventTypes=%d", n)
	}
}

func TestUIRoute(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/ui")
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Fatalf("status=%d ct=%s", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "EventSource") {
		t.Fatalf("dashboard not served")
	}
}

func TestUnknownRouteIsNotFoundEnvelope(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/nope")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	body := decodeBody(t, w)
	if body["type"] != "error" || body["message"] != "not_found" || body["code"] != float64(404) {
		t.Fatalf("body=%v", body)
	}
}

func TestWrongMethod(t *testing.T) {
	f := newFixture(t)
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/snapshot", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", w.Code)
	}
	if body := decodeBody(t, w); body["message"] != "method_not_allowed" {
		t.Fatalf("body=%v", body)
	}
}

func TestJSONRoutesCompress(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/snapshot", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip, headers=%v", w.Header())
	}
	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	b, _ := io.ReadAll(zr)
	if !strings.Contains(string(b), `"type":"snapshot"`) {
		t.Fatalf("body=%s", b)
	}
}

func TestStreamingUnavailableWithoutEvents(t *testing.T) {
	h := NewMux(registry.New(registry.Config{}), nil)
	for _, p := range []string{"/stream", "/ws"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, p, nil))
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s status=%d", p, w.Code)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	SetCORSOptions(true, []string{"http://devtools.local"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/snapshot", nil)
	req.Header.Set("Origin", "http://devtools.local")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	f.h.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://devtools.local" {
		t.Fatalf("allow-origin=%q", got)
	}
}

func TestMetricsRoute(t *testing.T) {
	f := newFixture(t)
	f.get(t, "/snapshot")
	f.get(t, "/does-not-exist")
	w := f.get(t, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("/metrics status=%d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`signalscope_http_requests_total{method="GET",path="/snapshot",status="200"}`,
		`signalscope_http_requests_total{method="GET",path="unmatched",status="404"}`,
		"signalscope_registry_events_recorded_total",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %s", want)
		}
	}
}
