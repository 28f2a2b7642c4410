package registry

import "github.com/prometheus/client_golang/prometheus"

var (
	eventsRecordedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalscope",
			Subsystem: "registry",
			Name:      "events_recorded_total",
			Help:      "Events appended to the global history",
		},
		[]string{"kind"},
	)

	listenersAttachedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signalscope",
		Subsystem: "registry",
		Name:      "listeners_attached_total",
		Help:      "Change listeners attached to notifiers",
	})

	listenersDetachedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "signalscope",
		Subsystem: "registry",
		Name:      "listeners_detached_total",
		Help:      "Change listeners detached from notifiers",
	})

	recoveredPanicsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "signalscope",
			Subsystem: "registry",
			Name:      "recovered_panics_total",
			Help:      "Panics raised by notifiers or providers and recovered by the registry",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(eventsRecordedTotal, listenersAttachedTotal, listenersDetachedTotal, recoveredPanicsTotal)
}
