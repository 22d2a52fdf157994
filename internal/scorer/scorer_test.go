package scorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestScore_NameOnlyRecord(t *testing.T) {
	s := New(DefaultConfig())

	ls := s.Score(&model.BusinessRecord{Name: "Mystery Shop"})

	assert.Equal(t, 0, ls.TotalScore)
	assert.Equal(t, model.PriorityLow, ls.Priority)
	assert.NotEmpty(t, ls.Recommendations)
}

func TestScore_FullyPopulatedRecordIsUrgent(t *testing.T) {
	s := New(DefaultConfig())

	ls := s.Score(&model.BusinessRecord{
		Name:        "Premium Legal Associates",
		Address:     "Suite 1904, Index Tower, DIFC, Dubai",
		Phone:       "+971 4 555 0100",
		Email:       "contact@premiumlegal.ae",
		Website:     "https://premiumlegal.ae",
		Rating:      4.8,
		ReviewCount: 120,
		Category:    "Legal Services",
	})

	// phone 20 + email 25 + website 15 + rating 25 + reviews 20 +
	// address 15 + industry 12 = 132, clamped to 100.
	assert.Equal(t, 100, ls.TotalScore)
	assert.Equal(t, model.PriorityUrgent, ls.Priority)
}

func TestScore_Bounded(t *testing.T) {
	s := New(DefaultConfig())

	records := []model.BusinessRecord{
		{Name: "A"},
		{Name: "B", Phone: "+971501112222", Email: "b@b.ae", Website: "https://b.ae"},
		{
			Name: "C", Phone: "+971501112222", Email: "c@c.ae", Website: "https://c.ae",
			Rating: 5, ReviewCount: 10000, Address: "A very long address that is definitely over twenty-five characters",
			Category: "law finance healthcare",
			Enrichment: &model.Enrichment{Website: &model.WebsiteAnalysis{
				DigitalMaturity: model.MaturityOutdated,
				Security:        model.SecurityLow,
			}},
		},
	}

	for i := range records {
		ls := s.Score(&records[i])
		assert.GreaterOrEqual(t, ls.TotalScore, 0, records[i].Name)
		assert.LessOrEqual(t, ls.TotalScore, 100, records[i].Name)
	}
}

func TestScore_PhoneMonotonic(t *testing.T) {
	s := New(DefaultConfig())

	base := model.BusinessRecord{
		Name:        "Phone Test Co",
		Email:       "x@test.ae",
		Rating:      4.2,
		ReviewCount: 30,
	}
	withPhone := base
	withPhone.Phone = "+971501112222"

	without := s.Score(&base)
	with := s.Score(&withPhone)
	assert.Greater(t, with.TotalScore, without.TotalScore)
	assert.Equal(t, DefaultConfig().PhonePoints, with.TotalScore-without.TotalScore)
}

func TestScore_PlaceholderContactsDoNotCount(t *testing.T) {
	s := New(DefaultConfig())

	clean := s.Score(&model.BusinessRecord{Name: "Shop"})
	dirty := s.Score(&model.BusinessRecord{
		Name:    "Shop",
		Phone:   "Contact research required",
		Email:   "N/A",
		Website: "Website research required",
	})
	assert.Equal(t, clean.TotalScore, dirty.TotalScore)
}

func TestHasEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"info@abc.ae", true},
		{"a@b.co", true},
		{"user@mail.example.com", true},
		{"no-at-sign", false},
		{"@nodomain.com", false},
		{"user@nodot", false},
		{"user@dot.", false},
		{"user@x.a", false},
		{"", false},
	}
	for _, tt := range tests {
		r := model.BusinessRecord{Email: tt.email}
		assert.Equal(t, tt.want, HasEmail(&r), tt.email)
	}
}

func TestHasWebsite(t *testing.T) {
	assert.True(t, HasWebsite(&model.BusinessRecord{Website: "https://x.ae"}))
	assert.True(t, HasWebsite(&model.BusinessRecord{Website: "HTTP://X.AE"}))
	assert.False(t, HasWebsite(&model.BusinessRecord{Website: "x.ae"}))
	assert.False(t, HasWebsite(&model.BusinessRecord{Website: ""}))
}

func TestScore_RatingBands(t *testing.T) {
	s := New(DefaultConfig())

	tests := []struct {
		rating float64
		want   int
	}{
		{4.9, 25},
		{4.5, 25},
		{4.2, 20},
		{3.7, 15},
		{2.0, 8},
		{0, 0},
	}
	for _, tt := range tests {
		ls := s.Score(&model.BusinessRecord{Name: "R", Rating: tt.rating})
		assert.Equal(t, tt.want, ls.TotalScore, "rating %v", tt.rating)
	}
}

func TestScore_ReviewBands(t *testing.T) {
	s := New(DefaultConfig())

	tests := []struct {
		count int
		want  int
	}{
		{150, 20},
		{100, 15},
		{51, 15},
		{21, 10},
		{6, 5},
		{5, 0},
		{0, 0},
	}
	for _, tt := range tests {
		ls := s.Score(&model.BusinessRecord{Name: "R", ReviewCount: tt.count})
		assert.Equal(t, tt.want, ls.TotalScore, "reviews %d", tt.count)
	}
}

func TestScore_IndustryBonusBestMatchWins(t *testing.T) {
	s := New(DefaultConfig())

	// "law" (12) and "consulting" (8) both match; the higher wins.
	ls := s.Score(&model.BusinessRecord{Name: "X", Category: "Law & Consulting"})
	assert.Equal(t, 12, ls.TotalScore)

	// AI classification contributes to the haystack too.
	enriched := s.Score(&model.BusinessRecord{
		Name: "X",
		Enrichment: &model.Enrichment{
			AI: &model.AIClassification{IndustryCategory: "Healthcare Services"},
		},
	})
	assert.Equal(t, 10, enriched.TotalScore)
}

func TestScore_DigitalGapCapped(t *testing.T) {
	s := New(DefaultConfig())

	ls := s.Score(&model.BusinessRecord{
		Name: "Gap Co",
		Enrichment: &model.Enrichment{Website: &model.WebsiteAnalysis{
			DigitalMaturity: model.MaturityOutdated, // 25
			Security:        model.SecurityLow,      // 15
		}},
	})
	// 25 + 15 = 40, capped at 25.
	assert.Equal(t, 25, ls.TotalScore)
}

func TestScore_Recommendations(t *testing.T) {
	s := New(DefaultConfig())

	gap := s.Score(&model.BusinessRecord{
		Name: "Gap Co",
		Enrichment: &model.Enrichment{Website: &model.WebsiteAnalysis{
			DigitalMaturity: model.MaturityOutdated,
		}},
	})
	assert.Contains(t, gap.Recommendations[0], "modernization")

	reputable := s.Score(&model.BusinessRecord{
		Name:        "Famous Co",
		Phone:       "+971501112222",
		Email:       "x@famous.ae",
		Website:     "https://famous.ae",
		Rating:      4.7,
		ReviewCount: 80,
	})
	assert.Contains(t, reputable.Recommendations, "Established reputation - reference their customer reviews in the pitch")
}

func TestPriorityTiers(t *testing.T) {
	s := New(DefaultConfig())

	tests := []struct {
		total int
		want  model.Priority
	}{
		{100, model.PriorityUrgent},
		{80, model.PriorityUrgent},
		{79, model.PriorityHigh},
		{65, model.PriorityHigh},
		{64, model.PriorityMedium},
		{50, model.PriorityMedium},
		{49, model.PriorityLow},
		{0, model.PriorityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.priorityFor(tt.total), "score %d", tt.total)
	}
}

func TestScore_DoesNotMutate(t *testing.T) {
	s := New(DefaultConfig())
	r := model.BusinessRecord{Name: "Pure Co", Phone: "+971501112222"}
	before := r.Clone()
	_ = s.Score(&r)
	require.Equal(t, before, r)
}
