package gps

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	linesReadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gpsmon_lines_read_total",
		Help: "Non empty lines read from the GNSS connection",
	})
	sentencesDecodedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gpsmon_sentences_decoded_total",
		Help: "Sentences decoded, by sentence type",
	}, []string{"type"})
	sentencesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gpsmon_sentences_skipped_total",
		Help: "Lines ignored because they are too short or of an unhandled type",
	}, []string{"type"})
	decodeErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gpsmon_decode_errors_total",
		Help: "Sentences dropped because of an invalid timestamp",
	}, []string{"type"})
	fieldParseFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gpsmon_field_parse_failures_total",
		Help: "Fields replaced by the unknown marker, by field",
	}, []string{"field"})
	sessionFaultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gpsmon_session_faults_total",
		Help: "Sessions ended by a read error or a lost connection",
	})
	eventsDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gpsmon_events_dropped_total",
		Help: "Events not delivered because a subscriber buffer was full",
	})
	satellitesInView = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "gpsmon_satellites_in_view",
		Help: "Satellites in view from the last GSV sentence, by constellation",
	}, []string{"constellation"})
	decodeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gpsmon_decode_latency_seconds",
		Help:    "Time to decode one line and update the fix",
		Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
	})
)

func observeDecodeLatency(start time.Time) {
	decodeLatency.Observe(time.Since(start).Seconds())
}
