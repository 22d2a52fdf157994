package dedup

import "github.com/sells-group/leadgen-cli/internal/model"

// Merge combines two matched records into one. The winner's non-empty
// fields always take precedence; the loser only fills gaps. Provenance
// is the deduplicated union of both records' sources, winner's order
// first. Confidence is the max of the two. Inputs are not mutated.
func Merge(winner, loser *model.BusinessRecord) model.BusinessRecord {
	out := winner.Clone()

	if out.Address == "" {
		out.Address = loser.Address
	}
	if out.Phone == "" {
		out.Phone = loser.Phone
	}
	if out.Email == "" {
		out.Email = loser.Email
	}
	if out.Website == "" {
		out.Website = loser.Website
	}
	if out.Rating == 0 {
		out.Rating = loser.Rating
	}
	if out.ReviewCount == 0 {
		out.ReviewCount = loser.ReviewCount
	}
	if out.Category == "" {
		out.Category = loser.Category
	}
	if out.Coordinates == nil && loser.Coordinates != nil {
		c := *loser.Coordinates
		out.Coordinates = &c
	}

	out.DataSources = unionSources(winner, loser)
	if loser.Confidence > out.Confidence {
		out.Confidence = loser.Confidence
	}

	return out
}

// unionSources merges provenance lists, preserving first-seen order.
func unionSources(winner, loser *model.BusinessRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(srcs []string, fallback string) {
		if len(srcs) == 0 && fallback != "" {
			srcs = []string{fallback}
		}
		for _, s := range srcs {
			if s == "" {
				continue
			}
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	add(winner.DataSources, winner.DataSource)
	add(loser.DataSources, loser.DataSource)
	return out
}
