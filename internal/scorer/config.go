package scorer

import (
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// RatingBand awards points when a rating reaches Min.
type RatingBand struct {
	Min    float64 `yaml:"min" mapstructure:"min"`
	Points int     `yaml:"points" mapstructure:"points"`
}

// CountBand awards points when a count (reviews, address length)
// exceeds Min.
type CountBand struct {
	Min    int `yaml:"min" mapstructure:"min"`
	Points int `yaml:"points" mapstructure:"points"`
}

// TierBoundary maps a minimum total score to a priority label.
type TierBoundary struct {
	MinScore int            `yaml:"min_score" mapstructure:"min_score"`
	Priority model.Priority `yaml:"priority" mapstructure:"priority"`
}

// Config is the full weight/threshold table for lead scoring. The
// exact numbers are business policy, not algorithmic constraint, so
// every one of them is tunable; cutoff schemes drift per campaign.
type Config struct {
	PhonePoints   int `yaml:"phone_points" mapstructure:"phone_points"`
	EmailPoints   int `yaml:"email_points" mapstructure:"email_points"`
	WebsitePoints int `yaml:"website_points" mapstructure:"website_points"`

	RatingBands  []RatingBand `yaml:"rating_bands" mapstructure:"rating_bands"`
	ReviewBands  []CountBand  `yaml:"review_bands" mapstructure:"review_bands"`
	AddressBands []CountBand  `yaml:"address_bands" mapstructure:"address_bands"`

	// IndustryBonuses maps lowercase category keywords to bonus points;
	// the highest matching keyword wins.
	IndustryBonuses map[string]int `yaml:"industry_bonuses" mapstructure:"industry_bonuses"`

	// Digital-gap bonuses: a business that is behind on technology is a
	// better transformation-sales target, so low maturity and weak
	// security add points rather than subtract them.
	MaturityBonuses    map[model.MaturityLevel]int `yaml:"maturity_bonuses" mapstructure:"maturity_bonuses"`
	SecurityBonuses    map[model.SecurityLevel]int `yaml:"security_bonuses" mapstructure:"security_bonuses"`
	MaxDigitalGapBonus int                         `yaml:"max_digital_gap_bonus" mapstructure:"max_digital_gap_bonus"`

	// Tiers maps score boundaries to priority labels, evaluated from
	// the highest MinScore down. The lowest boundary should be 0 so
	// every score lands in a tier.
	Tiers []TierBoundary `yaml:"tiers" mapstructure:"tiers"`
}

// DefaultConfig returns the standard scoring table.
func DefaultConfig() Config {
	return Config{
		PhonePoints:   20,
		EmailPoints:   25,
		WebsitePoints: 15,
		RatingBands: []RatingBand{
			{Min: 4.5, Points: 25},
			{Min: 4.0, Points: 20},
			{Min: 3.5, Points: 15},
			{Min: 0.01, Points: 8},
		},
		ReviewBands: []CountBand{
			{Min: 100, Points: 20},
			{Min: 50, Points: 15},
			{Min: 20, Points: 10},
			{Min: 5, Points: 5},
		},
		AddressBands: []CountBand{
			{Min: 25, Points: 15},
			{Min: 15, Points: 10},
			{Min: 0, Points: 5},
		},
		IndustryBonuses: map[string]int{
			"legal":               12,
			"law":                 12,
			"finance":             12,
			"accounting":          8,
			"real estate":         10,
			"property management": 10,
			"healthcare":          10,
			"medical":             10,
			"consulting":          8,
		},
		MaturityBonuses: map[model.MaturityLevel]int{
			model.MaturityOutdated: 25,
			model.MaturityBasic:    15,
		},
		SecurityBonuses: map[model.SecurityLevel]int{
			model.SecurityLow:   15,
			model.SecurityBasic: 10,
		},
		MaxDigitalGapBonus: 25,
		Tiers: []TierBoundary{
			{MinScore: 80, Priority: model.PriorityUrgent},
			{MinScore: 65, Priority: model.PriorityHigh},
			{MinScore: 50, Priority: model.PriorityMedium},
			{MinScore: 0, Priority: model.PriorityLow},
		},
	}
}

// Validate checks a scoring config for internal consistency.
func Validate(cfg Config) error {
	if cfg.PhonePoints < 0 || cfg.EmailPoints < 0 || cfg.WebsitePoints < 0 {
		return eris.New("scorer: contact points must be non-negative")
	}
	if len(cfg.Tiers) == 0 {
		return eris.New("scorer: at least one priority tier is required")
	}
	for _, t := range cfg.Tiers {
		if t.MinScore < 0 || t.MinScore > 100 {
			return eris.Errorf("scorer: tier boundary %d out of range [0,100]", t.MinScore)
		}
		if t.Priority == "" {
			return eris.Errorf("scorer: tier at %d has no priority label", t.MinScore)
		}
	}
	sorted := sortedTiers(cfg.Tiers)
	if sorted[len(sorted)-1].MinScore != 0 {
		return eris.New("scorer: lowest tier boundary must be 0")
	}
	return nil
}

// LoadProfile reads a scoring profile from a YAML file. Fields absent
// from the file keep their defaults, so a profile only needs to name
// the tables it changes.
func LoadProfile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, eris.Wrapf(err, "scorer: read profile %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, eris.Wrapf(err, "scorer: parse profile %s", path)
	}
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// sortedTiers returns tiers ordered by MinScore descending.
func sortedTiers(tiers []TierBoundary) []TierBoundary {
	out := append([]TierBoundary(nil), tiers...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MinScore > out[j].MinScore
	})
	return out
}
