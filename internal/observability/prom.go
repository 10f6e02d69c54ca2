package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec

	// roster
	RosterSize        prometheus.Gauge
	RosterEventsTotal *prometheus.CounterVec
}

func NewProm(reg prometheus.Registerer) *Prom {
	p := &Prom{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rosterhub",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "rosterhub",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "rosterhub",
				Name:      "http_in_flight_requests",
				Help:      "Current number of in-flight HTTP requests.",
			},
			[]string{"method", "route"},
		),
		RosterSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "rosterhub",
				Subsystem: "roster",
				Name:      "users",
				Help:      "Number of users currently on the roster.",
			},
		),
		RosterEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "rosterhub",
				Subsystem: "roster",
				Name:      "events_total",
				Help:      "Roster change events by type and publish result.",
			},
			[]string{"type", "result"}, // result=published|failed
		),
	}
	reg.MustRegister(p.RequestsTotal, p.RequestsDuration, p.InFlight, p.RosterSize, p.RosterEventsTotal)

	return p
}

func (p *Prom) SetRosterSize(n int) {
	p.RosterSize.Set(float64(n))
}

func (p *Prom) ObserveRosterEvent(eventType string, err error) {
	result := "published"
	if err != nil {
		result = "failed"
	}
	p.RosterEventsTotal.WithLabelValues(eventType, result).Inc()
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()

		// route template is only available after routing
		route := ctx.FullPath()

		if route == "" {
			route = "unmatched"
		}

		method := ctx.Request.Method
		p.InFlight.WithLabelValues(method, route).Inc()
		defer p.InFlight.WithLabelValues(method, route).Dec()
		ctx.Next()

		status := strconv.Itoa(ctx.Writer.Status())
		secs := time.Since(start).Seconds()

		p.RequestsTotal.WithLabelValues(method, route, status).Inc()
		p.RequestsDuration.WithLabelValues(method, route, status).Observe(secs)
	}
}
