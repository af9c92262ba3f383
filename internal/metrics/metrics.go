package metrics

import (
	"strconv"
	"time"

	apperrors "wavvly/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavvly_posts_created_total",
		Help: "Posts created.",
	})
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavvly_comments_created_total",
		Help: "Comments added to posts.",
	})
	LikeMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavvly_like_mutations_total",
		Help: "Like set changes by action (like, unlike).",
	}, []string{"action"})
	FollowMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavvly_follow_mutations_total",
		Help: "Follow edge changes by action (follow, unfollow).",
	}, []string{"action"})
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wavvly_notifications_created_total",
		Help: "Notifications stored by type.",
	}, []string{"type"})
	EventPublishFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wavvly_event_publish_failures_total",
		Help: "Domain events that could not be handed to the broker.",
	})

	requestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wavvly_http_request_duration_seconds",
			Help:    "Histogram of API request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "route", "status_code"},
	)
)

// Middleware records request latency labelled by the matched route pattern,
// so path parameters do not explode label cardinality.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			// the app error handler has not written the response yet
			status = apperrors.StatusCode(err)
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		route := c.Route().Path
		requestLatency.WithLabelValues(c.Method(), route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
