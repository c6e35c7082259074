package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vetclinic"

var (
	requestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	errorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors (status >= 400)",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	conflictCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "appointment_conflicts_total",
		Help:      "Total number of rejected overlapping appointment writes",
	})
)

// Middleware registra contadores y latencia por request.
// Usa el route pattern de chi (no el path crudo) para no explotar cardinalidad.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := chi.RouteContext(r.Context()).RoutePattern()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(ww.Status())

		requestCounter.WithLabelValues(r.Method, path).Inc()
		requestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		if ww.Status() >= 400 {
			errorCounter.WithLabelValues(r.Method, path, status).Inc()
		}
	})
}

// RecordAppointmentConflict cuenta un intento de doble reserva rechazado.
func RecordAppointmentConflict() {
	conflictCounter.Inc()
}

// Handler expone /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
