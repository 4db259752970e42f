package prometheus

import (
	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/acldev/aclauth"
)

// SnapshotSource yields the current counter values, typically the base
// aclauth.Service.
type SnapshotSource interface {
	MetricsSnapshot() aclauth.MetricsSnapshot
}

var metricNames = map[aclauth.MetricID]string{
	aclauth.MetricRegisterSuccess:     "aclauth_register_success_total",
	aclauth.MetricRegisterFailure:     "aclauth_register_failure_total",
	aclauth.MetricLoginSuccess:        "aclauth_login_success_total",
	aclauth.MetricLoginFailure:        "aclauth_login_failure_total",
	aclauth.MetricLoginThrottled:      "aclauth_login_throttled_total",
	aclauth.MetricAmbiguousIdentity:   "aclauth_login_ambiguous_identity_total",
	aclauth.MetricRememberIssued:      "aclauth_remember_issued_total",
	aclauth.MetricRememberResumed:     "aclauth_remember_resumed_total",
	aclauth.MetricRememberRejected:    "aclauth_remember_rejected_total",
	aclauth.MetricLogout:              "aclauth_logout_total",
	aclauth.MetricResetRequested:      "aclauth_reset_requested_total",
	aclauth.MetricResetRequestFailure: "aclauth_reset_request_failure_total",
	aclauth.MetricResetCheckFailure:   "aclauth_reset_check_failure_total",
	aclauth.MetricResetConsumed:       "aclauth_reset_consumed_total",
	aclauth.MetricAccessDenied:        "aclauth_access_denied_total",
	aclauth.MetricAssertionIssued:     "aclauth_assertion_issued_total",
}

var metricHelp = map[aclauth.MetricID]string{
	aclauth.MetricRegisterSuccess:     "Successful registrations.",
	aclauth.MetricRegisterFailure:     "Failed registrations.",
	aclauth.MetricLoginSuccess:        "Successful logins.",
	aclauth.MetricLoginFailure:        "Failed logins (unknown identity or wrong password).",
	aclauth.MetricLoginThrottled:      "Logins refused by the attempt budget.",
	aclauth.MetricAmbiguousIdentity:   "Logins that matched more than one directory row.",
	aclauth.MetricRememberIssued:      "Remember tokens issued.",
	aclauth.MetricRememberResumed:     "Sessions resumed from remember cookies.",
	aclauth.MetricRememberRejected:    "Remember cookie pairs rejected.",
	aclauth.MetricLogout:              "Logouts.",
	aclauth.MetricResetRequested:      "Password reset tokens issued.",
	aclauth.MetricResetRequestFailure: "Failed password reset requests.",
	aclauth.MetricResetCheckFailure:   "Failed reset token checks.",
	aclauth.MetricResetConsumed:       "Password resets completed.",
	aclauth.MetricAccessDenied:        "Access decisions that denied the request.",
	aclauth.MetricAssertionIssued:     "Session assertions minted.",
}

// Collector implements prometheus.Collector over a SnapshotSource.
type Collector struct {
	source SnapshotSource
	descs  map[aclauth.MetricID]*prom.Desc
}

// NewCollector builds a Collector reading from source.
func NewCollector(source SnapshotSource) *Collector {
	descs := make(map[aclauth.MetricID]*prom.Desc, len(metricNames))
	for id, name := range metricNames {
		descs[id] = prom.NewDesc(name, metricHelp[id], nil, nil)
	}
	return &Collector{source: source, descs: descs}
}

func (c *Collector) Describe(ch chan<- *prom.Desc) {
	for _, desc := range c.descs {
		ch <- desc
	}
}

func (c *Collector) Collect(ch chan<- prom.Metric) {
	snap := c.source.MetricsSnapshot()
	for id, desc := range c.descs {
		ch <- prom.MustNewConstMetric(desc, prom.CounterValue, float64(snap.Counters[id]))
	}
}
