package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "awaas_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "route", "status"})

	GuestRegistrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "awaas_guest_registrations_total",
		Help: "Guest registration outcomes",
	}, []string{"outcome"})

	DashboardStatsDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "awaas_dashboard_stats_duration_seconds",
		Help:    "Time spent assembling dashboard statistics",
		Buckets: prometheus.DefBuckets,
	})

	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "awaas_notifications_total",
		Help: "Notifications sent by channel and outcome",
	}, []string{"channel", "outcome"})

	DigestRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "awaas_digest_runs_total",
		Help: "Total daily digest runs",
	})
)
