package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"result"},
	)

	Lockouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admission_login_lockouts_total",
			Help: "Client addresses locked out after repeated login failures",
		},
	)

	Registrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_registrations_total",
			Help: "Registration attempts by outcome",
		},
		[]string{"result"},
	)

	OrphanedCredentials = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "admission_orphaned_credentials_total",
			Help: "Credentials left without an application record after a failed compensating delete",
		},
	)

	StatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_status_transitions_total",
			Help: "Application status transitions",
		},
		[]string{"from", "to"},
	)

	DocumentsUploaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_documents_uploaded_total",
			Help: "Uploaded documents by type",
		},
		[]string{"document_type"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_notifications_total",
			Help: "Email notifications by kind and delivery status",
		},
		[]string{"kind", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "admission_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)

	MaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_maintenance_runs_total",
			Help: "Scheduled maintenance job runs by job and outcome",
		},
		[]string{"job", "result"},
	)

	MaintenanceRemoved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_maintenance_removed_total",
			Help: "Entries removed by scheduled maintenance jobs",
		},
		[]string{"job"},
	)
)
