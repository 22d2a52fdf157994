package model

// Priority buckets a lead score into a coarse outreach tier.
type Priority string

const (
	PriorityUrgent Priority = "Urgent"
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// priorityRank orders tiers for minimum-priority filtering.
var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
	PriorityUrgent: 3,
}

// Rank returns the ordinal position of the tier (higher = hotter).
// Unknown tiers rank below Low.
func (p Priority) Rank() int {
	r, ok := priorityRank[p]
	if !ok {
		return -1
	}
	return r
}

// Coordinates is a WGS84 point attached to a listing.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BusinessRecord is one business listing as gathered from a source
// collector. Optional fields are empty/zero when the source did not
// supply them; Sanitize canonicalizes placeholder strings to empty
// before the record enters dedup or scoring.
type BusinessRecord struct {
	Name        string       `json:"name"`
	Address     string       `json:"address,omitempty"`
	Phone       string       `json:"phone,omitempty"`
	Email       string       `json:"email,omitempty"`
	Website     string       `json:"website,omitempty"`
	Rating      float64      `json:"rating,omitempty"`
	ReviewCount int          `json:"review_count,omitempty"`
	Category    string       `json:"category,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`

	// DataSource is the origin collector; DataSources accumulates
	// provenance as duplicates are merged (insertion order = merge order).
	DataSource  string   `json:"data_source"`
	DataSources []string `json:"data_sources"`

	// Confidence is the source collector's self-reported reliability in [0,1].
	Confidence float64 `json:"confidence"`

	Enrichment *Enrichment `json:"enrichment,omitempty"`
	LeadScore  *LeadScore  `json:"lead_score,omitempty"`
}

// Enrichment holds derived signals added by enrichment collaborators
// after deduplication.
type Enrichment struct {
	Website *WebsiteAnalysis  `json:"website_analysis,omitempty"`
	AI      *AIClassification `json:"ai_classification,omitempty"`
}

// MaturityLevel grades how current a website's technology stack is.
type MaturityLevel string

const (
	MaturityOutdated   MaturityLevel = "Outdated"
	MaturityBasic      MaturityLevel = "Basic"
	MaturityDeveloping MaturityLevel = "Developing"
	MaturityMature     MaturityLevel = "Mature"
	MaturityAdvanced   MaturityLevel = "Advanced"
)

// SecurityLevel grades visible security posture of a website.
type SecurityLevel string

const (
	SecurityLow    SecurityLevel = "Low"
	SecurityBasic  SecurityLevel = "Basic"
	SecurityGood   SecurityLevel = "Good"
	SecurityStrong SecurityLevel = "Strong"
)

// WebsiteAnalysis summarizes technology signals detected on a
// business's website.
type WebsiteAnalysis struct {
	DigitalMaturity MaturityLevel `json:"digital_maturity"`
	Security        SecurityLevel `json:"security"`
	Technologies    []string      `json:"technologies,omitempty"`
	HasSSL          bool          `json:"has_ssl"`
}

// AIClassification is the LLM's read on a business.
type AIClassification struct {
	BusinessSize     string `json:"business_size"`     // SME, Enterprise, Startup
	IndustryCategory string `json:"industry_category"` // free text
	TargetMarket     string `json:"target_market"`     // B2B, B2C, mixed
	KeyInsights      string `json:"key_insights,omitempty"`
}

// LeadScore is the scorer's output for a record.
type LeadScore struct {
	TotalScore      int      `json:"total_score"`
	Priority        Priority `json:"priority"`
	Recommendations []string `json:"recommendations"`
}

// Valid reports whether the record may enter the dedup pipeline.
// The only hard requirement is a non-empty name.
func (r *BusinessRecord) Valid() bool {
	return r.Name != ""
}

// Clone returns a deep copy so merges never alias nested state.
func (r BusinessRecord) Clone() BusinessRecord {
	out := r
	if r.Coordinates != nil {
		c := *r.Coordinates
		out.Coordinates = &c
	}
	if len(r.DataSources) > 0 {
		out.DataSources = append([]string(nil), r.DataSources...)
	}
	if r.Enrichment != nil {
		e := *r.Enrichment
		if r.Enrichment.Website != nil {
			w := *r.Enrichment.Website
			w.Technologies = append([]string(nil), w.Technologies...)
			e.Website = &w
		}
		if r.Enrichment.AI != nil {
			a := *r.Enrichment.AI
			e.AI = &a
		}
		out.Enrichment = &e
	}
	if r.LeadScore != nil {
		ls := *r.LeadScore
		ls.Recommendations = append([]string(nil), ls.Recommendations...)
		out.LeadScore = &ls
	}
	return out
}
