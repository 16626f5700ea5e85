// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Redeemr Contributors

package auth

import "github.com/prometheus/client_golang/prometheus"

// Metrics contains the Prometheus counters for the credential subsystem.
// A nil *Metrics records nothing.
type Metrics struct {
	LoginsTotal        *prometheus.CounterVec
	ResolutionsTotal   *prometheus.CounterVec
	TokenFailuresTotal *prometheus.CounterVec
	ResetTokensTotal   *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redeemr_auth_logins_total",
				Help: "Total number of login attempts by result",
			},
			[]string{"result"},
		),
		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redeemr_auth_resolutions_total",
				Help: "Total number of bearer token resolutions by result",
			},
			[]string{"result"},
		),
		TokenFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redeemr_auth_token_failures_total",
				Help: "Total number of rejected tokens by kind",
			},
			[]string{"kind"},
		),
		ResetTokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redeemr_auth_reset_tokens_total",
				Help: "Total number of reset token operations by operation and result",
			},
			[]string{"operation", "result"},
		),
	}

	reg.MustRegister(m.LoginsTotal)
	reg.MustRegister(m.ResolutionsTotal)
	reg.MustRegister(m.TokenFailuresTotal)
	reg.MustRegister(m.ResetTokensTotal)

	return m
}

func (m *Metrics) login(result string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) resolution(result string) {
	if m == nil {
		return
	}
	m.ResolutionsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) tokenFailure(kind TokenErrorKind) {
	if m == nil {
		return
	}
	m.TokenFailuresTotal.WithLabelValues(kind.String()).Inc()
}

func (m *Metrics) resetToken(operation, result string) {
	if m == nil {
		return
	}
	m.ResetTokensTotal.WithLabelValues(operation, result).Inc()
}
