package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// Entity kinds used as the "kind" label.
const (
	KindUser     = "user"
	KindPost     = "post"
	KindComment  = "comment"
	KindLike     = "like"
	KindFollower = "follower"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	EntitiesCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moments_entities_created_total",
		Help: "Total entities successfully created",
	}, []string{"kind"})

	DuplicateRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moments_duplicate_rejections_total",
		Help: "Total create requests rejected because the relation already exists",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(EntitiesCreated)
	prometheus.MustRegister(DuplicateRejections)
}

func Created(kind string) {
	EntitiesCreated.WithLabelValues(kind).Inc()
}

func DuplicateRejected(kind string) {
	DuplicateRejections.WithLabelValues(kind).Inc()
}

// InstrumentHandler records request duration labelled by the matched chi
// route pattern, so ids in the path do not create new series.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestDuration.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
