package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK             = "ok"
	outcomeInserted       = "inserted"
	outcomeConflict       = "conflict"
	outcomeRaceConflict   = "race_conflict"
	outcomeBadRequest     = "bad_request"
	outcomeQuotaExceeded  = "quota_exceeded"
	outcomeStorageFailure = "storage_failure"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "words_submissions_total",
			Help: "Word batch submissions by outcome",
		},
		[]string{"outcome"},
	)

	validationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "words_validations_total",
			Help: "Word batch validations by outcome",
		},
		[]string{"outcome"},
	)
)
