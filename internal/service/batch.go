package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Batch is a normalized submission. Words and Keys are aligned: Keys[i] is
// the comparison key of Words[i].
type Batch struct {
	Words []string
	Keys  []string
}

func (b Batch) Len() int {
	return len(b.Words)
}

// NormalizeBatch coerces raw values to strings, trims them and drops the
// empty ones. Order is preserved.
func NormalizeBatch(raw []any) Batch {
	b := Batch{
		Words: make([]string, 0, len(raw)),
		Keys:  make([]string, 0, len(raw)),
	}

	for _, v := range raw {
		word := strings.TrimSpace(coerce(v))
		if word == "" {
			continue
		}

		b.Words = append(b.Words, word)
		b.Keys = append(b.Keys, WordKey(word))
	}

	return b
}

// WordKey returns the canonical comparison form of a word: NFC composed and
// lower-cased.
func WordKey(word string) string {
	return strings.ToLower(norm.NFC.String(word))
}

func coerce(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}

	return string(b)
}

// duplicateKeys returns every key that occurs more than once.
func duplicateKeys(keys []string) []string {
	seen := make(map[string]int, len(keys))
	var dups []string
	for _, k := range keys {
		seen[k]++
		if seen[k] == 2 {
			dups = append(dups, k)
		}
	}

	return dups
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}

	return out
}
