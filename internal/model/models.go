package model

import (
	"slices"
	"time"
)

// BatchSize is the exact number of words a submission must contain.
const BatchSize = 10

// Word is a stored vocabulary entry. Key is the canonical comparison form of
// Display and is unique across all owners.
type Word struct {
	ID      string
	Owner   string
	Display string
	Key     string
	AddedAt time.Time
}

// ConflictReport lists the keys that prevent a batch from being stored.
// Both lists are sorted and free of duplicates.
type ConflictReport struct {
	Stored  []string `json:"stored"`
	InBatch []string `json:"in_batch"`
}

func NewConflictReport(stored, inBatch []string) ConflictReport {
	return ConflictReport{
		Stored:  sortedSet(stored),
		InBatch: sortedSet(inBatch),
	}
}

func (r ConflictReport) Empty() bool {
	return len(r.Stored) == 0 && len(r.InBatch) == 0
}

func sortedSet(keys []string) []string {
	out := slices.Clone(keys)
	if out == nil {
		out = []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

type SortField string

const (
	SortAdded SortField = "added"
	SortAlpha SortField = "alpha"
)

type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// ListQuery selects stored words. When All is false only Owner's words are
// returned. Search matches a case-insensitive substring of the key.
type ListQuery struct {
	Owner  string
	All    bool
	Search string
	Sort   SortField
	Order  SortOrder
	Limit  int
}
