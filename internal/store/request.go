package store

import "github.com/gamma-omg/tenwords/internal/model"

type FindExistingRequest struct {
	Keys []string
}

// InsertWordsRequest inserts Words in order; the first failure aborts the
// whole request.
type InsertWordsRequest struct {
	Words []model.Word
}

// ListWordsRequest filters stored words. An empty Owner lists every owner.
// Search is a lower-case substring of the key.
type ListWordsRequest struct {
	Owner  string
	Search string
	Sort   model.SortField
	Order  model.SortOrder
	Limit  int
}
