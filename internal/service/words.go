package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gamma-omg/tenwords/internal/model"
	"github.com/gamma-omg/tenwords/internal/store"
	"github.com/google/uuid"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 100
)

// wordStore is the word repository the service depends on.
type wordStore interface {
	FindExisting(ctx context.Context, r store.FindExistingRequest) ([]string, error)
	InsertWords(ctx context.Context, r store.InsertWordsRequest) (int, error)
	ListWords(ctx context.Context, r store.ListWordsRequest) ([]model.Word, error)
}

// WordsService validates and stores daily word batches. Every call re-reads
// storage; nothing learned by a previous call is trusted.
type WordsService struct {
	store      wordStore
	quota      DailyQuota
	quotaLimit int
	lists      *listCache
	now        func() time.Time
	newID      func() string
}

type WordsServiceConfig struct {
	DailyBatchLimit int
	ListCacheKeys   int64
	ListCacheCost   int64
	ListCacheTTL    time.Duration
}

func NewWordsService(st wordStore, q DailyQuota, cfg WordsServiceConfig) *WordsService {
	if q == nil || cfg.DailyBatchLimit <= 0 {
		q = NoQuota{}
	}

	return &WordsService{
		store:      st,
		quota:      q,
		quotaLimit: cfg.DailyBatchLimit,
		lists:      newListCache(cfg.ListCacheKeys, cfg.ListCacheCost, cfg.ListCacheTTL),
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func (s *WordsService) Close() {
	s.lists.Close()
}

type ValidateResponse struct {
	OK        bool
	Conflicts model.ConflictReport
}

// Validate reports the conflicts of a batch without writing anything.
func (s *WordsService) Validate(ctx context.Context, userID string, raw []any) (ValidateResponse, error) {
	if userID == "" {
		return ValidateResponse{}, unauthenticatedError()
	}

	batch := NormalizeBatch(raw)
	if batch.Len() != model.BatchSize {
		validationsTotal.WithLabelValues(outcomeBadRequest).Inc()
		return ValidateResponse{}, batchSizeError(batch.Len())
	}

	report, err := s.DetectConflicts(ctx, batch.Keys)
	if err != nil {
		validationsTotal.WithLabelValues(outcomeStorageFailure).Inc()
		return ValidateResponse{}, storageError(fmt.Errorf("detect conflicts: %w", err))
	}

	if report.Empty() {
		validationsTotal.WithLabelValues(outcomeOK).Inc()
	} else {
		validationsTotal.WithLabelValues(outcomeConflict).Inc()
	}

	return ValidateResponse{
		OK:        report.Empty(),
		Conflicts: report,
	}, nil
}

// DetectConflicts classifies keys as duplicated within the batch and/or
// already stored. The two checks are independent; a key may be in both.
func (s *WordsService) DetectConflicts(ctx context.Context, keys []string) (model.ConflictReport, error) {
	inBatch := duplicateKeys(keys)

	stored, err := s.store.FindExisting(ctx, store.FindExistingRequest{Keys: uniqueKeys(keys)})
	if err != nil {
		return model.ConflictReport{}, fmt.Errorf("find existing: %w", err)
	}

	return model.NewConflictReport(stored, inBatch), nil
}

type SubmitResponse struct {
	InsertedCount int
}

// Submit stores a batch when it has no conflicts. Conflicts discovered by the
// insert itself, because a concurrent submit got there first, are reported
// exactly like the ones found up front.
func (s *WordsService) Submit(ctx context.Context, userID string, raw []any) (SubmitResponse, error) {
	if userID == "" {
		return SubmitResponse{}, unauthenticatedError()
	}

	batch := NormalizeBatch(raw)
	if batch.Len() != model.BatchSize {
		submissionsTotal.WithLabelValues(outcomeBadRequest).Inc()
		return SubmitResponse{}, batchSizeError(batch.Len())
	}

	report, err := s.DetectConflicts(ctx, batch.Keys)
	if err != nil {
		submissionsTotal.WithLabelValues(outcomeStorageFailure).Inc()
		return SubmitResponse{}, storageError(fmt.Errorf("detect conflicts: %w", err))
	}
	if !report.Empty() {
		submissionsTotal.WithLabelValues(outcomeConflict).Inc()
		return SubmitResponse{}, conflictError(userID, report)
	}

	now := s.now().UTC()
	ok, err := s.quota.Reserve(ctx, userID, now)
	if err != nil {
		submissionsTotal.WithLabelValues(outcomeStorageFailure).Inc()
		return SubmitResponse{}, storageError(fmt.Errorf("reserve quota: %w", err))
	}
	if !ok {
		submissionsTotal.WithLabelValues(outcomeQuotaExceeded).Inc()
		return SubmitResponse{}, quotaError(userID, s.quotaLimit)
	}

	words := make([]model.Word, 0, batch.Len())
	for i, display := range batch.Words {
		words = append(words, model.Word{
			ID:      s.newID(),
			Owner:   userID,
			Display: display,
			Key:     batch.Keys[i],
			AddedAt: now,
		})
	}

	inserted, err := s.store.InsertWords(ctx, store.InsertWordsRequest{Words: words})
	if err != nil {
		s.releaseQuota(ctx, userID, now)

		if errors.Is(err, store.ErrExists) {
			return SubmitResponse{}, s.recoverRace(ctx, userID, batch.Keys, err)
		}

		submissionsTotal.WithLabelValues(outcomeStorageFailure).Inc()
		return SubmitResponse{}, storageError(fmt.Errorf("insert words: %w", err))
	}

	s.lists.Invalidate()
	submissionsTotal.WithLabelValues(outcomeInserted).Inc()
	slog.Info("word batch stored", "user_id", userID, "count", inserted)

	return SubmitResponse{InsertedCount: inserted}, nil
}

// recoverRace turns a unique violation from the insert into a conflict report
// built from what storage holds now. The batch itself was already verified to
// have no in-batch duplicates.
func (s *WordsService) recoverRace(ctx context.Context, userID string, keys []string, insertErr error) error {
	stored, err := s.store.FindExisting(ctx, store.FindExistingRequest{Keys: uniqueKeys(keys)})
	if err != nil {
		submissionsTotal.WithLabelValues(outcomeStorageFailure).Inc()
		return storageError(fmt.Errorf("re-check after duplicate insert: %w", errors.Join(err, insertErr)))
	}

	if len(stored) == 0 {
		var dup *store.DuplicateKeyError
		if errors.As(insertErr, &dup) {
			stored = dup.Keys
		}
	}

	slog.Warn("word batch lost insert race", "user_id", userID, "keys", stored)
	submissionsTotal.WithLabelValues(outcomeRaceConflict).Inc()

	return conflictError(userID, model.NewConflictReport(stored, nil))
}

func (s *WordsService) releaseQuota(ctx context.Context, userID string, day time.Time) {
	if err := s.quota.Release(context.WithoutCancel(ctx), userID, day); err != nil {
		slog.Error("failed to release daily quota", "user_id", userID, "error", err)
	}
}

// ListWords returns stored words matching q. Only the caller's own words are
// listed unless q.All is set.
func (s *WordsService) ListWords(ctx context.Context, userID string, q model.ListQuery) ([]model.Word, error) {
	if userID == "" {
		return nil, unauthenticatedError()
	}

	q = normalizeQuery(userID, q)
	gen := s.lists.Generation()
	if words, ok := s.lists.Get(gen, q); ok {
		return words, nil
	}

	owner := q.Owner
	if q.All {
		owner = ""
	}

	words, err := s.store.ListWords(ctx, store.ListWordsRequest{
		Owner:  owner,
		Search: q.Search,
		Sort:   q.Sort,
		Order:  q.Order,
		Limit:  q.Limit,
	})
	if err != nil {
		return nil, storageError(fmt.Errorf("list words: %w", err))
	}

	s.lists.Set(gen, q, words)
	return words, nil
}

func normalizeQuery(userID string, q model.ListQuery) model.ListQuery {
	q.Owner = userID
	q.Search = WordKey(strings.TrimSpace(q.Search))

	switch q.Sort {
	case model.SortAdded, model.SortAlpha:
	default:
		q.Sort = model.SortAdded
	}

	switch q.Order {
	case model.OrderAsc, model.OrderDesc:
	default:
		if q.Sort == model.SortAlpha {
			q.Order = model.OrderAsc
		} else {
			q.Order = model.OrderDesc
		}
	}

	switch {
	case q.Limit <= 0:
		q.Limit = DefaultListLimit
	case q.Limit > MaxListLimit:
		q.Limit = MaxListLimit
	}

	return q
}
