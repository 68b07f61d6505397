package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codesync",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "codesync",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	wsConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codesync",
		Name:      "ws_connections",
		Help:      "Current number of live websocket connections",
	})

	activeRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "codesync",
		Name:      "rooms_active",
		Help:      "Current number of non-empty rooms",
	})

	eventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "codesync",
		Name:      "events_received_total",
		Help:      "Inbound events processed by the relay, by event name",
	}, []string{"event"})
)

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack must pass through for websocket upgrades.
func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics with Prometheus labels. Websocket
// upgrades hijack the connection, so their latency reflects the whole
// session lifetime.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(rec.status),
		}
		httpRequests.With(labels).Inc()
		httpLatency.With(labels).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

func ConnOpened() { wsConnections.Inc() }
func ConnClosed() { wsConnections.Dec() }

func RoomOpened() { activeRooms.Inc() }
func RoomClosed() { activeRooms.Dec() }

func EventReceived(event string) { eventsReceived.WithLabelValues(event).Inc() }
