package ecs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// registerer aliases the Prometheus registry interface so callers without
// metrics never touch the dependency.
type registerer = prometheus.Registerer

// ==============================================
// Metrics
// ==============================================

// Metrics carries the world's optional Prometheus instruments. The zero
// configuration is a no-op: nothing is registered, observation costs one
// branch.
type Metrics struct {
	enabled bool

	ticksTotal     prometheus.Counter
	tickDuration   prometheus.Histogram
	systemDuration *prometheus.HistogramVec
	entitiesAlive  prometheus.Gauge
	poolFree       prometheus.Gauge
	eventsTotal    prometheus.Counter

	mu         sync.Mutex
	lastEvents uint64
	snap       PerformanceMetrics
}

// PerformanceMetrics is a point-in-time summary for debugging surfaces.
type PerformanceMetrics struct {
	TickCount     uint32        `json:"tick_count"`
	EntityCount   int           `json:"entity_count"`
	PoolFree      int           `json:"pool_free"`
	EventsPushed  uint64        `json:"events_pushed"`
	LastTickTime  time.Duration `json:"last_tick_time"`
	Timestamp     time.Time     `json:"timestamp"`
}

func noopMetrics() *Metrics {
	return &Metrics{}
}

func newMetrics(reg registerer) (*Metrics, error) {
	m := &Metrics{
		enabled: true,
		ticksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "canvasloom", Name: "ticks_total",
			Help: "Completed scheduler ticks.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "canvasloom", Name: "tick_duration_seconds",
			Help:    "Wall time of one full tick.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		systemDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "canvasloom", Name: "system_duration_seconds",
			Help:    "Wall time of one system execution.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14),
		}, []string{"system"}),
		entitiesAlive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "canvasloom", Name: "entities_alive",
			Help: "Alive entities at the last tick boundary.",
		}),
		poolFree: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "canvasloom", Name: "entity_pool_free",
			Help: "Free ids remaining in the entity pool.",
		}),
		eventsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "canvasloom", Name: "events_total",
			Help: "Events pushed to the ring.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.ticksTotal, m.tickDuration, m.systemDuration,
		m.entitiesAlive, m.poolFree, m.eventsTotal,
	} {
		if err := reg.Register(c); err != nil {
			return nil, WrapError(err, ErrInternalError, "metrics registration")
		}
	}
	return m, nil
}

func (m *Metrics) observeSystem(name string, d time.Duration) {
	if !m.enabled {
		return
	}
	m.systemDuration.WithLabelValues(name).Observe(d.Seconds())
}

func (m *Metrics) observeTick(w *World, d time.Duration) {
	if !m.enabled {
		return
	}
	alive := 0
	w.buf.EachAlive(func(EntityID) { alive++ })
	pushed := w.ring.WriteIndex()

	m.ticksTotal.Inc()
	m.tickDuration.Observe(d.Seconds())
	m.entitiesAlive.Set(float64(alive))
	m.poolFree.Set(float64(w.pool.Free()))

	m.mu.Lock()
	m.eventsTotal.Add(float64(pushed - m.lastEvents))
	m.lastEvents = pushed
	m.snap = PerformanceMetrics{
		TickCount:    w.tick,
		EntityCount:  alive,
		PoolFree:     w.pool.Free(),
		EventsPushed: pushed,
		LastTickTime: d,
		Timestamp:    time.Now(),
	}
	m.mu.Unlock()
}

// Snapshot returns the last tick's summary. Zero value until the first
// completed tick, or always when metrics are disabled.
func (m *Metrics) Snapshot() PerformanceMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Metrics returns the world's metrics handle.
func (w *World) Metrics() *Metrics {
	return w.metrics
}
