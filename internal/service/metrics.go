package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"storyweaver/internal/narrative"
)

var (
	// 服务自己的指标注册表，不使用全局 DefaultRegistry
	registry = prometheus.NewRegistry()

	storyGenerations = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyweaver_story_generations_total",
			Help: "Total number of story generations, partitioned by status.",
		},
		[]string{"status"},
	)
	narrativeTiers = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyweaver_narrative_tier_total",
			Help: "Total number of generated stories, partitioned by the tier that produced the pages.",
		},
		[]string{"tier"},
	)
	storyDuration = promauto.With(registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storyweaver_story_generation_duration_seconds",
			Help:    "Wall-clock time spent assembling a story.",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	)
	imageRelayRequests = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyweaver_image_relay_requests_total",
			Help: "Total number of image-to-image relay requests, partitioned by status.",
		},
		[]string{"status"},
	)
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
	statusInvalid = "invalid"
)

// Registry 返回服务指标注册表，供 /metrics 暴露
func Registry() *prometheus.Registry {
	return registry
}

func observeStory(success bool, tier narrative.Tier, seconds float64) {
	storyDuration.Observe(seconds)
	if !success {
		storyGenerations.WithLabelValues(statusFailure).Inc()
		return
	}
	storyGenerations.WithLabelValues(statusSuccess).Inc()
	narrativeTiers.WithLabelValues(string(tier)).Inc()
}
