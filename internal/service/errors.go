package service

import (
	"errors"
	"net/http"

	"github.com/gamma-omg/tenwords/internal/model"
	"github.com/gamma-omg/tenwords/internal/pkg/serr"
)

var (
	errUnauthenticated = errors.New("no authenticated user")
	errBatchSize       = errors.New("wrong batch size")
	errConflict        = errors.New("word conflicts")
	errQuota           = errors.New("daily quota exceeded")
)

func unauthenticatedError() *serr.ServiceError {
	return serr.NewServiceError(errUnauthenticated, http.StatusUnauthorized, "Unauthorized")
}

func batchSizeError(actual int) *serr.ServiceError {
	se := serr.NewServiceError(errBatchSize, http.StatusBadRequest,
		"batch must contain exactly %d words, got %d", model.BatchSize, actual)
	se.Fields["expected"] = model.BatchSize
	se.Fields["actual"] = actual
	return se
}

func conflictError(userID string, report model.ConflictReport) *serr.ServiceError {
	se := serr.NewServiceError(errConflict, http.StatusConflict, "some words are already taken")
	se.Fields["conflicts"] = report
	se.Env["user_id"] = userID
	return se
}

func quotaError(userID string, limit int) *serr.ServiceError {
	se := serr.NewServiceError(errQuota, http.StatusTooManyRequests,
		"daily limit of %d batches reached", limit)
	se.Env["user_id"] = userID
	return se
}

func storageError(err error) *serr.ServiceError {
	return serr.NewServiceError(err, http.StatusInternalServerError, "storage failure").
		WithKind(serr.KindStorageFailure)
}
