package v1

import (
	"github.com/KreischerPanoptic/net-ipfs-hypermedia/pkg/hypermedia"
)

// findExtent locates the exact textual extent of a list item by trial
// validation ("grow-and-test").
//
// The format declares item counts but never byte lengths, and items are
// recursively variable in size, so "is this prefix a complete,
// self-consistent record" is the only boundary oracle available. Starting
// from a one-character window just past the item's opening bracket, the
// window grows by exactly one character until the candidate satisfies the
// item kind's validity predicate. A window that exhausts the remaining
// input without success is malformed or truncated input, not an excuse to
// loop forever.
//
// Cost is O(n) validation calls per boundary (each itself linear), which
// is proportional, not exponential; documents are modest in size and fully
// materialized anyway.
func findExtent(body string, isValid func(candidate string) bool) (int, error) {
	if len(body) == 0 || body[0] != '[' {
		return 0, &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: "list item does not open with a record bracket"}
	}

	for end := 2; end <= len(body); end++ {
		if isValid(body[:end]) {
			return end, nil
		}
	}
	return 0, &hypermedia.FormatError{Code: hypermedia.ErrMalformedFraming, Message: "cannot locate item boundary (malformed or truncated record)"}
}
