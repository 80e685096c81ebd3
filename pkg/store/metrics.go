package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	savesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lendbook",
			Subsystem: "store",
			Name:      "saves_total",
			Help:      "Total number of ledger saves by result",
		},
		[]string{"result"},
	)
	backupsPrunedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lendbook",
			Subsystem: "store",
			Name:      "backups_pruned_total",
			Help:      "Total number of backup files removed by retention",
		},
	)
	recoveriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lendbook",
			Subsystem: "store",
			Name:      "recoveries_total",
			Help:      "Total number of ledgers restored from a backup",
		},
	)
)
