package taste

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	VoteEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosound_vote_events_total",
			Help: "Count of processed vote events by choice and source.",
		},
		[]string{"choice", "source"},
	)
)

func init() {
	prometheus.MustRegister(VoteEventsTotal)
}
