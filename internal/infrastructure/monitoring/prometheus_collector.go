package monitoring

import (
	"time"

	"github.com/Netboss008/yacoolo/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Counters
	streamsLiveTotal    prometheus.Gauge
	viewersTotal        prometheus.Gauge
	wsConnectionsTotal  prometheus.Counter
	hookRequestsTotal   *prometheus.CounterVec
	moderationsTotal    *prometheus.CounterVec
	judgmentErrorsTotal prometheus.Counter

	// Histograms
	judgmentDuration prometheus.Histogram

	// Stream metrics
	streamViewerCount *prometheus.GaugeVec
	streamGuestCount  *prometheus.GaugeVec
	controlActive     *prometheus.GaugeVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		streamsLiveTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "yacoolo_streams_live_total",
			Help: "Total number of live streams",
		}),

		viewersTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "yacoolo_viewers_total",
			Help: "Total number of connected viewers across all streams",
		}),

		wsConnectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "yacoolo_websocket_connections_total",
			Help: "Total number of websocket connections accepted",
		}),

		hookRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "yacoolo_ingest_hook_requests_total",
			Help: "Ingest hook requests by hook name and outcome",
		}, []string{"hook", "outcome"}),

		moderationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "yacoolo_moderations_total",
			Help: "Moderation actions recorded by action type",
		}, []string{"action"}),

		judgmentErrorsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "yacoolo_judgment_errors_total",
			Help: "Failed calls to the external judgment service",
		}),

		judgmentDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "yacoolo_judgment_duration_seconds",
			Help:    "Duration of judgment service calls",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),

		streamViewerCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "yacoolo_stream_viewer_count",
			Help: "Number of viewers per stream",
		}, []string{"stream_id"}),

		streamGuestCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "yacoolo_stream_guest_count",
			Help: "Number of guest broadcasters per stream",
		}, []string{"stream_id"}),

		controlActive: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "yacoolo_stream_control_active",
			Help: "Active control state per stream (intervention or takeover)",
		}, []string{"stream_id", "kind"}),
	}
}

func (p *PrometheusCollector) RecordStreamLive(streamID domain.StreamID) {
	p.streamsLiveTotal.Inc()
}

func (p *PrometheusCollector) RecordStreamEnded(streamID domain.StreamID) {
	p.streamsLiveTotal.Dec()

	p.streamViewerCount.DeleteLabelValues(string(streamID))
	p.streamGuestCount.DeleteLabelValues(string(streamID))
	p.controlActive.DeleteLabelValues(string(streamID), "intervention")
	p.controlActive.DeleteLabelValues(string(streamID), "takeover")
}

func (p *PrometheusCollector) RecordViewerJoined(streamID domain.StreamID, count int) {
	p.viewersTotal.Inc()
	p.wsConnectionsTotal.Inc()
	p.streamViewerCount.WithLabelValues(string(streamID)).Set(float64(count))
}

func (p *PrometheusCollector) RecordViewerLeft(streamID domain.StreamID, count int) {
	p.viewersTotal.Dec()
	p.streamViewerCount.WithLabelValues(string(streamID)).Set(float64(count))
}

func (p *PrometheusCollector) RecordGuestCount(streamID domain.StreamID, count int) {
	p.streamGuestCount.WithLabelValues(string(streamID)).Set(float64(count))
}

func (p *PrometheusCollector) RecordHookRequest(hook string, allowed bool) {
	outcome := "rejected"
	if allowed {
		outcome = "allowed"
	}
	p.hookRequestsTotal.WithLabelValues(hook, outcome).Inc()
}

func (p *PrometheusCollector) RecordModeration(action domain.ModerationAction) {
	p.moderationsTotal.WithLabelValues(string(action)).Inc()
}

func (p *PrometheusCollector) RecordJudgmentCall(duration time.Duration, err error) {
	p.judgmentDuration.Observe(duration.Seconds())
	if err != nil {
		p.judgmentErrorsTotal.Inc()
	}
}

func (p *PrometheusCollector) RecordControlStarted(streamID domain.StreamID, kind string) {
	p.controlActive.WithLabelValues(string(streamID), kind).Set(1)
}

func (p *PrometheusCollector) RecordControlEnded(streamID domain.StreamID, kind string) {
	p.controlActive.WithLabelValues(string(streamID), kind).Set(0)
}
