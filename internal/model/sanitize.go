package model

import "strings"

// placeholders are sentinel strings the upstream scrapers emit when a
// field could not be found. They carry no information and must be
// treated as absent, not as contact data.
var placeholders = map[string]struct{}{
	"not available":             {},
	"n/a":                       {},
	"na":                        {},
	"none":                      {},
	"unknown":                   {},
	"no rating":                 {},
	"research required":         {},
	"contact research required": {},
	"website research required": {},
	"contact via website":       {},
}

// CleanField trims a raw string field and collapses placeholder
// sentinels to the empty string.
func CleanField(s string) string {
	s = strings.TrimSpace(s)
	if _, ok := placeholders[strings.ToLower(s)]; ok {
		return ""
	}
	return s
}

// Sanitize canonicalizes a record in place: placeholder strings become
// empty, out-of-range numeric fields degrade to zero. Malformed
// optional fields never reject a record; they just stop contributing.
func Sanitize(r *BusinessRecord) {
	r.Name = CleanField(r.Name)
	r.Address = CleanField(r.Address)
	r.Phone = CleanField(r.Phone)
	r.Email = CleanField(r.Email)
	r.Website = CleanField(r.Website)
	r.Category = CleanField(r.Category)

	if r.Rating < 0 || r.Rating > 5 {
		r.Rating = 0
	}
	if r.ReviewCount < 0 {
		r.ReviewCount = 0
	}
	if r.Confidence < 0 {
		r.Confidence = 0
	}
	if r.Confidence > 1 {
		r.Confidence = 1
	}

	if len(r.DataSources) == 0 && r.DataSource != "" {
		r.DataSources = []string{r.DataSource}
	}
}
