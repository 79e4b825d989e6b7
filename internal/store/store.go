package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gamma-omg/tenwords/internal/model"
)

var (
	ErrExists   = errors.New("already exists")
	ErrNotFound = errors.New("not found")
)

// DuplicateKeyError reports the word keys rejected by the unique index.
// It matches ErrExists with errors.Is.
type DuplicateKeyError struct {
	Keys []string
	Err  error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate word keys: %s", strings.Join(e.Keys, ", "))
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrExists
}

func (e *DuplicateKeyError) Unwrap() error {
	return e.Err
}

type DataStore interface {
	FindExisting(ctx context.Context, r FindExistingRequest) ([]string, error)
	InsertWords(ctx context.Context, r InsertWordsRequest) (int, error)
	ListWords(ctx context.Context, r ListWordsRequest) ([]model.Word, error)
	WithinTx(ctx context.Context, fn func(tx DataStore) error) error
}
