package websocket

import "github.com/prometheus/client_golang/prometheus"

var (
	wsConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "faq_assist_ws_connections",
			Help: "Current number of active websocket connections.",
		},
	)
	wsLinks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "faq_assist_ws_links",
			Help: "Current number of live-chat links.",
		},
	)
	wsFramesDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "faq_assist_ws_frames_delivered_total",
			Help: "Total frames delivered to websocket clients.",
		},
	)
	wsTranslationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "faq_assist_ws_translation_failures_total",
			Help: "Frames relayed untranslated because translation failed.",
		},
	)
)

func init() {
	prometheus.MustRegister(wsConnections, wsLinks, wsFramesDelivered, wsTranslationFailures)
}

func incConnections() {
	wsConnections.Inc()
}

func decConnections() {
	wsConnections.Dec()
}

func setLinks(count int) {
	wsLinks.Set(float64(count))
}

func incDelivered() {
	wsFramesDelivered.Inc()
}

func incTranslationFailures() {
	wsTranslationFailures.Inc()
}
