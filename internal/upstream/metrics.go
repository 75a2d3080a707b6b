package upstream

import "github.com/prometheus/client_golang/prometheus"

var fetchFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "cafereco_upstream_fetch_failures_total",
	Help: "Collaborator API fetches that failed or returned malformed payloads, by endpoint.",
}, []string{"path"})

func init() {
	if err := prometheus.Register(fetchFailures); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			panic(err)
		}
	}
}
