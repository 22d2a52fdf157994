// Package scorer computes a weighted 0-100 lead score and priority
// tier for each unique business record. Scoring is additive across
// independent factors and never fails: a record with nothing but a
// name scores the floor, not an error.
package scorer

import (
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// LeadScorer scores records against a configured weight table.
type LeadScorer struct {
	cfg   Config
	tiers []TierBoundary // pre-sorted descending by MinScore
}

// New creates a LeadScorer. The config should be validated first;
// an empty tier table falls back to the defaults.
func New(cfg Config) *LeadScorer {
	if len(cfg.Tiers) == 0 {
		cfg.Tiers = DefaultConfig().Tiers
	}
	return &LeadScorer{cfg: cfg, tiers: sortedTiers(cfg.Tiers)}
}

// Score computes the lead score for a record. Pure: the input is not
// mutated. Placeholder contact values must already be sanitized away
// (model.Sanitize); Score re-checks them anyway so a stray sentinel
// cannot inflate a score.
func (s *LeadScorer) Score(r *model.BusinessRecord) model.LeadScore {
	total := 0
	fired := factorSet{}

	if HasPhone(r) {
		total += s.cfg.PhonePoints
		fired.phone = true
	}
	if HasEmail(r) {
		total += s.cfg.EmailPoints
		fired.email = true
	}
	if HasWebsite(r) {
		total += s.cfg.WebsitePoints
		fired.website = true
	}

	total += s.scoreRating(r.Rating)
	total += s.scoreReviews(r.ReviewCount)
	total += s.scoreAddress(r.Address)

	if pts := s.scoreIndustry(r.Category, r.Enrichment); pts > 0 {
		total += pts
		fired.industry = true
	}
	if pts := s.scoreDigitalGap(r.Enrichment); pts > 0 {
		total += pts
		fired.digitalGap = true
	}

	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}

	return model.LeadScore{
		TotalScore:      total,
		Priority:        s.priorityFor(total),
		Recommendations: s.recommend(r, total, fired),
	}
}

// factorSet records which scoring factors fired, for the
// recommendation rule table.
type factorSet struct {
	phone      bool
	email      bool
	website    bool
	industry   bool
	digitalGap bool
}

// HasPhone reports whether the record carries a usable phone value.
func HasPhone(r *model.BusinessRecord) bool {
	return model.CleanField(r.Phone) != ""
}

// HasEmail reports whether the record carries a valid-looking email:
// something before an @, and a domain with a TLD of at least 2 chars.
func HasEmail(r *model.BusinessRecord) bool {
	e := model.CleanField(r.Email)
	at := strings.Index(e, "@")
	if at < 1 {
		return false
	}
	domain := e[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot < 1 {
		return false
	}
	return len(domain)-dot-1 >= 2
}

// HasWebsite reports whether the record carries an http(s) URL.
func HasWebsite(r *model.BusinessRecord) bool {
	w := strings.ToLower(model.CleanField(r.Website))
	return strings.HasPrefix(w, "http")
}

func (s *LeadScorer) scoreRating(rating float64) int {
	for _, b := range s.cfg.RatingBands {
		if rating >= b.Min {
			return b.Points
		}
	}
	return 0
}

func (s *LeadScorer) scoreReviews(count int) int {
	for _, b := range s.cfg.ReviewBands {
		if count > b.Min {
			return b.Points
		}
	}
	return 0
}

func (s *LeadScorer) scoreAddress(address string) int {
	n := len(model.CleanField(address))
	if n == 0 {
		return 0
	}
	for _, b := range s.cfg.AddressBands {
		if n > b.Min {
			return b.Points
		}
	}
	return 0
}

// scoreIndustry substring-matches the free-text category (and the AI
// industry classification, when present) against the bonus table.
// The highest matching bonus wins.
func (s *LeadScorer) scoreIndustry(category string, enr *model.Enrichment) int {
	haystack := strings.ToLower(category)
	if enr != nil && enr.AI != nil {
		haystack += " " + strings.ToLower(enr.AI.IndustryCategory)
	}
	if strings.TrimSpace(haystack) == "" {
		return 0
	}

	best := 0
	for kw, pts := range s.cfg.IndustryBonuses {
		if strings.Contains(haystack, kw) && pts > best {
			best = pts
		}
	}
	return best
}

// scoreDigitalGap rewards businesses that are behind on technology:
// they are the better transformation-sales targets.
func (s *LeadScorer) scoreDigitalGap(enr *model.Enrichment) int {
	if enr == nil || enr.Website == nil {
		return 0
	}
	bonus := s.cfg.MaturityBonuses[enr.Website.DigitalMaturity] +
		s.cfg.SecurityBonuses[enr.Website.Security]
	if s.cfg.MaxDigitalGapBonus > 0 && bonus > s.cfg.MaxDigitalGapBonus {
		bonus = s.cfg.MaxDigitalGapBonus
	}
	return bonus
}

// priorityFor resolves the tier for a total score from the highest
// boundary down.
func (s *LeadScorer) priorityFor(total int) model.Priority {
	for _, t := range s.tiers {
		if total >= t.MinScore {
			return t.Priority
		}
	}
	return s.tiers[len(s.tiers)-1].Priority
}

// recommend builds the next-action list from a deterministic rule
// table keyed on which factors fired. Always returns at least one
// entry.
func (s *LeadScorer) recommend(r *model.BusinessRecord, total int, fired factorSet) []string {
	var recs []string

	if fired.digitalGap {
		recs = append(recs, "Outdated technology detected - lead with a modernization and security assessment")
	}
	if !fired.website {
		recs = append(recs, "No website detected - recommend a digital presence audit")
	}
	if !fired.email {
		recs = append(recs, "Find an email contact through the website or social media before outreach")
	}
	if !fired.phone {
		recs = append(recs, "Locate a direct phone line before outreach")
	}
	if r.Rating >= 4.5 && r.ReviewCount > 50 {
		recs = append(recs, "Established reputation - reference their customer reviews in the pitch")
	}
	if fired.industry {
		recs = append(recs, "High-value industry - use an industry-specific approach")
	}

	topTier := s.tiers[0].MinScore
	switch {
	case total >= topTier:
		recs = append(recs, "Schedule immediate consultation - high conversion potential")
	case total >= s.midBoundary():
		recs = append(recs, "Add to nurture campaign for follow-up")
	}

	if len(recs) == 0 {
		recs = append(recs, "Research additional contact information before outreach")
	}
	return recs
}

// midBoundary returns the middle tier boundary, used to gate the
// nurture-campaign recommendation.
func (s *LeadScorer) midBoundary() int {
	return s.tiers[len(s.tiers)/2].MinScore
}
