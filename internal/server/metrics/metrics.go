// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements the observer hooks of the otp engine, the ledger and
// the session manager.
type Metrics struct {
	ChallengesIssued   *prometheus.CounterVec
	ChallengesVerified *prometheus.CounterVec
	Transfers          *prometheus.CounterVec
	Logins             *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		ChallengesIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pointgate",
			Name:      "challenges_issued_total",
			Help:      "One-time challenges issued, by purpose kind.",
		}, []string{"purpose"}),
		ChallengesVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pointgate",
			Name:      "challenge_verifications_total",
			Help:      "Challenge verification attempts, by outcome.",
		}, []string{"outcome"}),
		Transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pointgate",
			Name:      "transfers_total",
			Help:      "Recorded transactions, by kind and final status.",
		}, []string{"kind", "status"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pointgate",
			Name:      "logins_total",
			Help:      "Login attempts, by outcome.",
		}, []string{"outcome"}),
		gatherer: reg,
	}

	for _, c := range []**prometheus.CounterVec{&m.ChallengesIssued, &m.ChallengesVerified, &m.Transfers, &m.Logins} {
		if err := register(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// register reuses an already registered collector of the same name.
func register(reg prometheus.Registerer, c **prometheus.CounterVec) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}

	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return err
	}
	existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
	if !ok {
		return err
	}
	*c = existing
	return nil
}

// ChallengeIssued keeps label cardinality bounded: transfer purposes embed
// wallet IDs, so only the leading word is used.
func (m *Metrics) ChallengeIssued(purpose string) {
	m.ChallengesIssued.WithLabelValues(purposeKind(purpose)).Inc()
}

func (m *Metrics) ChallengeVerified(outcome string) {
	m.ChallengesVerified.WithLabelValues(outcome).Inc()
}

func (m *Metrics) TransferRecorded(kind, status string) {
	m.Transfers.WithLabelValues(kind, status).Inc()
}

func (m *Metrics) LoginAttempt(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func purposeKind(purpose string) string {
	for i, r := range purpose {
		if r == ' ' || r == ':' {
			return purpose[:i]
		}
	}
	if purpose == "" {
		return "unspecified"
	}
	return purpose
}
