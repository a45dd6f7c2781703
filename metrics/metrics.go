// Package metrics exposes Prometheus counters for the signing workflow and a
// small server that publishes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "docsign"

// Sign results.
const (
	SignSuccess           = "success"
	SignInvalidCredential = "invalid_credential"
	SignRejected          = "rejected"
	SignError             = "error"
)

var (
	signTotal = mustRegisterCounterVec("signing", "sign_total",
		"Number of sign requests by result.", "result")

	verifyTotal = mustRegisterCounterVec("signing", "verify_total",
		"Number of completed verifications by outcome.", "outcome")

	registryWriteFailures = mustRegisterCounterVec("registry", "write_failures_total",
		"Number of signing events the registry failed to record, by reason.", "reason")

	archiveWriteFailures = mustRegisterCounter("archive", "write_failures_total",
		"Number of signed documents the archive failed to store.")
)

// mustRegisterCounterVec creates and registers a counter vector.
// Must be called from `init`.
func mustRegisterCounterVec(component, name, help string, labelNames ...string) *prometheus.CounterVec {
	m := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
	}, labelNames)
	prometheus.MustRegister(m)
	return m
}

// mustRegisterCounter creates and registers a counter.
// Must be called from `init`.
func mustRegisterCounter(component, name, help string) prometheus.Counter {
	m := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: component,
		Name:      name,
		Help:      help,
	})
	prometheus.MustRegister(m)
	return m
}

// RecordSign counts a sign request with one of the Sign* results.
func RecordSign(result string) {
	signTotal.WithLabelValues(result).Inc()
}

// RecordVerify counts a completed verification.
func RecordVerify(outcome string) {
	verifyTotal.WithLabelValues(outcome).Inc()
}

// RecordRegistryWriteFailure counts a registry insert that did not land.
// reason is "conflict" or "error".
func RecordRegistryWriteFailure(reason string) {
	registryWriteFailures.WithLabelValues(reason).Inc()
}

// RecordArchiveWriteFailure counts a failed archive write.
func RecordArchiveWriteFailure() {
	archiveWriteFailures.Inc()
}
