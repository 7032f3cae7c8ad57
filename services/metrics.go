package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for the testimonial workflow. Package-level so repeated service
// construction (tests) never re-registers collectors.
var (
	submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_testimonial_submissions_total",
		Help: "Total number of testimonial submission attempts",
	}, []string{"outcome"}) // stored, deflected, rejected, rate_limited

	moderationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "portfolio_testimonial_moderations_total",
		Help: "Total number of moderation decisions",
	}, []string{"action"}) // approve, decline

	approvedDeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "portfolio_testimonial_approved_deletes_total",
		Help: "Total number of published testimonials deleted",
	})
)
