// Package dedup merges near-duplicate business records gathered from
// multiple noisy sources into a unique set. It is pure computation over
// in-memory data: no step can fail, and no hidden state survives a call.
package dedup

import "github.com/sells-group/leadgen-cli/internal/model"

// Deduplicator applies the similarity matcher and merge policy across
// an incoming stream of records.
type Deduplicator struct {
	matcher *Matcher
}

// New creates a Deduplicator with the given matcher config.
func New(cfg MatcherConfig) *Deduplicator {
	return &Deduplicator{matcher: NewMatcher(cfg)}
}

// Deduplicate processes records in input order, maintaining a unique
// set. The first similar record seen keeps its position in the output
// even when a later, higher-confidence duplicate wins the merge.
// Callers must reject records with empty names before this point.
//
// O(n^2) pairwise checks; lead batches run a few hundred to a few
// thousand records, which keeps this well under a second.
func (d *Deduplicator) Deduplicate(records []model.BusinessRecord) []model.BusinessRecord {
	unique := make([]model.BusinessRecord, 0, len(records))

	for i := range records {
		r := &records[i]

		idx := -1
		for j := range unique {
			if d.matcher.AreSimilar(r, &unique[j]) {
				idx = j
				break
			}
		}

		if idx < 0 {
			unique = append(unique, r.Clone())
			continue
		}

		// Higher confidence wins; ties favor the earlier record.
		existing := &unique[idx]
		if r.Confidence > existing.Confidence {
			unique[idx] = Merge(r, existing)
		} else {
			unique[idx] = Merge(existing, r)
		}
	}

	return unique
}
