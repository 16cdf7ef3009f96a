package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	settlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "taxaware_settlements_total",
		Help: "Verified gateway settlements, by purpose and outcome.",
	}, []string{"purpose", "outcome"})

	interestAccrualsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taxaware_interest_accruals_total",
		Help: "Accounts credited with quarterly interest.",
	})

	recurringMaterializationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "taxaware_recurring_materializations_total",
		Help: "Transactions materialized from recurring rules.",
	})
)
