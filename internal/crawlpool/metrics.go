package crawlpool

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/corvidsearch/notice/internal/store"
)

// Prometheus metrics for the crawler worker pool.
var (
	queuePending = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crawler_queue_pending",
		Help: "Number of pending URLs in the crawl queue",
	})
	queueInProgress = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crawler_queue_in_progress",
		Help: "Number of URLs currently being processed",
	})
	queueCompleted = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crawler_queue_completed",
		Help: "Number of successfully crawled URLs",
	})
	queueFailed = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "crawler_queue_failed",
		Help: "Number of URLs that failed to crawl",
	})
	urlsProcessedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_urls_processed_total",
		Help: "Total number of URLs processed by this instance",
	})
	crawlErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_errors_total",
		Help: "Total number of URLs that ended a pass in error",
	})
	documentsIndexedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crawler_documents_indexed_total",
		Help: "Total number of documents written to the full-text index",
	})
	summariesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crawler_summaries_total",
		Help: "Total number of summarization attempts by outcome",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(
		queuePending,
		queueInProgress,
		queueCompleted,
		queueFailed,
		urlsProcessedTotal,
		crawlErrorsTotal,
		documentsIndexedTotal,
		summariesTotal,
	)
}

// updateQueueMetrics publishes a queue snapshot to the gauges.
func updateQueueMetrics(stats store.QueueStats) {
	queuePending.Set(float64(stats.Pending))
	queueInProgress.Set(float64(stats.InProgress))
	queueCompleted.Set(float64(stats.Completed))
	queueFailed.Set(float64(stats.Failed))
}
