package dedup

import (
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Auxiliary thresholds for the address-plus-weak-name rule. The same
// business often lists slightly different display names across sources
// ("XYZ Properties" vs "XYZ Properties LLC") with a consistent address,
// so a strong address match lowers the name bar.
const (
	addressThreshold  = 0.7
	weakNameThreshold = 0.6
)

// MatcherConfig tunes duplicate detection. NameThreshold is the single
// knob exposed through configuration.
type MatcherConfig struct {
	// NameThreshold is the minimum normalized name similarity for a
	// name-only match. Default 0.8.
	NameThreshold float64

	// MinPhoneDigits is the minimum digit count for a phone match to
	// count as identity evidence. Default 7.
	MinPhoneDigits int
}

// DefaultMatcherConfig returns the standard thresholds.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		NameThreshold:  0.8,
		MinPhoneDigits: 7,
	}
}

// Matcher decides whether two records refer to the same business.
type Matcher struct {
	cfg MatcherConfig
}

// NewMatcher creates a Matcher, filling zero config fields with defaults.
func NewMatcher(cfg MatcherConfig) *Matcher {
	if cfg.NameThreshold <= 0 {
		cfg.NameThreshold = 0.8
	}
	if cfg.MinPhoneDigits <= 0 {
		cfg.MinPhoneDigits = 7
	}
	return &Matcher{cfg: cfg}
}

// AreSimilar reports whether a and b are likely the same business.
// Pure and symmetric; inputs are never mutated. Rules short-circuit in
// order: strong name match, address + weaker name match, exact phone
// match.
func (m *Matcher) AreSimilar(a, b *model.BusinessRecord) bool {
	// A missing name carries no identity signal, so two empty names
	// score 0, not the 1.0 that Similarity gives two empty strings.
	nameSim := 0.0
	if a.Name != "" && b.Name != "" {
		nameSim = Similarity(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
	if nameSim >= m.cfg.NameThreshold {
		return true
	}

	if a.Address != "" && b.Address != "" {
		addrSim := Similarity(strings.ToLower(a.Address), strings.ToLower(b.Address))
		if addrSim >= addressThreshold && nameSim >= weakNameThreshold {
			return true
		}
	}

	// A shared direct phone line is near-conclusive identity evidence
	// even when name and address disagree.
	if a.Phone != "" && b.Phone != "" {
		p1, p2 := DigitsOnly(a.Phone), DigitsOnly(b.Phone)
		if p1 != "" && p1 == p2 && len(p1) >= m.cfg.MinPhoneDigits {
			return true
		}
	}

	return false
}
