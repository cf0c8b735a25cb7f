package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ApplicationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visa_applications_created_total",
		Help: "Draft applications created.",
	})

	ApplicationsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "visa_applications_submitted_total",
		Help: "Applications submitted by applicants.",
	})

	StatusTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visa_status_transitions_total",
		Help: "Admin status transitions by target status.",
	}, []string{"status"})

	NotificationEmails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "visa_notification_emails_total",
		Help: "Decision notification emails by result.",
	}, []string{"result"})
)

// Serve exposes /metrics on its own listener, away from the API port.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("metrics server error: %v", err)
	}
}
