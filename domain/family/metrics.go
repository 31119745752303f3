package family

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	familiesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindred_families_created_total",
		Help: "Families created, labelled by root mode.",
	}, []string{"mode"})

	membersJoined = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindred_family_members_joined_total",
		Help: "Members attached to existing families.",
	})

	usernameRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kindred_family_username_retries_total",
		Help: "Family username regenerations after a collision with the unique index.",
	})
)
