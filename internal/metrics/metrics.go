// Package metrics holds the prometheus collectors for the portal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	StateReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contest_state_reloads_total",
		Help: "Full state reloads triggered by store change notifications.",
	}, []string{"table"})

	StatusTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contest_status_transitions_total",
		Help: "Contest week status transitions applied by admins.",
	}, []string{"status"})

	WinnerSelections = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contest_winner_selections_total",
		Help: "Winner upserts applied by admins.",
	})

	VotesCast = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contest_votes_cast_total",
		Help: "Votes successfully recorded.",
	})

	VotesRemoved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contest_votes_removed_total",
		Help: "Votes successfully removed.",
	})

	AppsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "contest_apps_submitted_total",
		Help: "Apps successfully submitted.",
	})
)

// Register installs all collectors on the default registry.  Call once
// from main.
func Register() {
	prometheus.MustRegister(
		StateReloads,
		StatusTransitions,
		WinnerSelections,
		VotesCast,
		VotesRemoved,
		AppsSubmitted,
	)
}
