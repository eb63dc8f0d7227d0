package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Result label values.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics holds the service's collectors. A nil *Metrics is valid and
// records nothing, which keeps services usable without a registry.
type Metrics struct {
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec

	InvitesIssuedTotal   *prometheus.CounterVec
	InvitesRedeemedTotal *prometheus.CounterVec
	InviteMailsTotal     *prometheus.CounterVec
	RoleChangesTotal     *prometheus.CounterVec
	AuditWritesTotal     *prometheus.CounterVec
	LoginsTotal          *prometheus.CounterVec
}

// New builds the collectors with a constant service label and registers
// them on reg.
func New(reg prometheus.Registerer, service string) *Metrics {
	constLabels := prometheus.Labels{"service": service}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "http_requests_total",
				Help:        "Total number of HTTP requests.",
				ConstLabels: constLabels,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:        "http_request_duration_seconds",
				Help:        "Duration of HTTP requests.",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			[]string{"method", "path"},
		),
		InvitesIssuedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "backoffice_invites_issued_total",
				Help:        "Total number of admin invite tokens issued.",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		InvitesRedeemedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "backoffice_invites_redeemed_total",
				Help:        "Total number of invite redemption attempts by outcome.",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		InviteMailsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "backoffice_invite_mails_total",
				Help:        "Total number of invite notification deliveries.",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
		RoleChangesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "backoffice_role_changes_total",
				Help:        "Total number of role change attempts.",
				ConstLabels: constLabels,
			},
			[]string{"role", "result"},
		),
		AuditWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "backoffice_audit_writes_total",
				Help:        "Total number of audit log writes.",
				ConstLabels: constLabels,
			},
			[]string{"action", "result"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "backoffice_logins_total",
				Help:        "Total number of login attempts.",
				ConstLabels: constLabels,
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.InvitesIssuedTotal,
		m.InvitesRedeemedTotal,
		m.InviteMailsTotal,
		m.RoleChangesTotal,
		m.AuditWritesTotal,
		m.LoginsTotal,
	)
	return m
}

func (m *Metrics) InviteIssued(result string) {
	if m == nil {
		return
	}
	m.InvitesIssuedTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) InviteRedeemed(result string) {
	if m == nil {
		return
	}
	m.InvitesRedeemedTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) InviteMail(result string) {
	if m == nil {
		return
	}
	m.InviteMailsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RoleChange(role, result string) {
	if m == nil {
		return
	}
	m.RoleChangesTotal.WithLabelValues(role, result).Inc()
}

func (m *Metrics) AuditWrite(action, result string) {
	if m == nil {
		return
	}
	m.AuditWritesTotal.WithLabelValues(action, result).Inc()
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}
