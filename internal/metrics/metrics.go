// Package metrics exposes Prometheus metrics for the HTTP API and recipe interactions.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector handles Prometheus metrics collection
type Collector struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	interactionsTotal *prometheus.CounterVec
	recipesCreated    prometheus.Counter
	recipeViews       prometheus.Counter
	uploadsTotal      *prometheus.CounterVec
}

// NewCollector creates a collector backed by its own registry, so tests can build
// as many as they need.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		interactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipeshare_interactions_total",
				Help: "Applied recipe interactions by kind",
			},
			[]string{"kind"},
		),
		recipesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipeshare_recipes_created_total",
			Help: "Recipes created",
		}),
		recipeViews: factory.NewCounter(prometheus.CounterOpts{
			Name: "recipeshare_recipe_views_total",
			Help: "Counted recipe views",
		}),
		uploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recipeshare_image_uploads_total",
				Help: "Image uploads by result",
			},
			[]string{"result"},
		),
	}
}

// Middleware records request count and latency per route template.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		c.httpRequestsTotal.WithLabelValues(ctx.Request.Method, path, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.httpRequestDuration.WithLabelValues(ctx.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Interaction counts an applied interaction ("like", "unlike", "save", "rate", "comment", ...).
func (c *Collector) Interaction(kind string) {
	if c == nil {
		return
	}
	c.interactionsTotal.WithLabelValues(kind).Inc()
}

// RecipeCreated counts a created recipe.
func (c *Collector) RecipeCreated() {
	if c == nil {
		return
	}
	c.recipesCreated.Inc()
}

// RecipeViewed counts a view that was recorded by the store.
func (c *Collector) RecipeViewed() {
	if c == nil {
		return
	}
	c.recipeViews.Inc()
}

// Upload counts an image upload outcome.
func (c *Collector) Upload(ok bool) {
	if c == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.uploadsTotal.WithLabelValues(result).Inc()
}
