package enrich

import (
	"context"
	"testing"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// cannedMessenger returns a fixed reply and captures the params.
type cannedMessenger struct {
	reply  string
	err    error
	params sdk.MessageNewParams
}

func (m *cannedMessenger) New(_ context.Context, params sdk.MessageNewParams, _ ...option.RequestOption) (*sdk.Message, error) {
	m.params = params
	if m.err != nil {
		return nil, m.err
	}
	return &sdk.Message{
		Content: []sdk.ContentBlockUnion{
			{Type: "text", Text: m.reply},
		},
	}, nil
}

func newTestClassifier(m *cannedMessenger) *Classifier {
	return &Classifier{
		cfg:      ClassifierConfig{Model: "claude-haiku-4-5-20251001", MaxTokens: 512},
		messages: m,
	}
}

func TestClassifier_Enrich(t *testing.T) {
	m := &cannedMessenger{reply: `{
		"business_size": "SME",
		"industry_category": "Legal Services",
		"target_market": "B2B",
		"key_insights": "Established firm without a modern website."
	}`}
	c := newTestClassifier(m)

	rec := model.BusinessRecord{Name: "Premium Legal", Category: "Legal", Rating: 4.6, ReviewCount: 88}
	require.NoError(t, c.Enrich(context.Background(), &rec))

	require.NotNil(t, rec.Enrichment)
	require.NotNil(t, rec.Enrichment.AI)
	assert.Equal(t, "SME", rec.Enrichment.AI.BusinessSize)
	assert.Equal(t, "Legal Services", rec.Enrichment.AI.IndustryCategory)
	assert.Equal(t, "B2B", rec.Enrichment.AI.TargetMarket)

	// The prompt carried the listing fields.
	assert.Equal(t, sdk.Model("claude-haiku-4-5-20251001"), m.params.Model)
	require.Len(t, m.params.Messages, 1)
}

func TestClassifier_EnrichAPIError(t *testing.T) {
	c := newTestClassifier(&cannedMessenger{err: eris.New("overloaded")})

	rec := model.BusinessRecord{Name: "Some Co"}
	assert.Error(t, c.Enrich(context.Background(), &rec))
	assert.Nil(t, rec.Enrichment)
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain json", `{"business_size": "SME", "industry_category": "Retail", "target_market": "B2C"}`, false},
		{"fenced json", "```json\n{\"business_size\": \"SME\", \"industry_category\": \"Retail\"}\n```", false},
		{"prose around json", "Here you go: {\"business_size\": \"Enterprise\"} hope that helps", false},
		{"no json at all", "I cannot classify this business.", true},
		{"empty object", `{}`, true},
		{"empty string", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := parseClassification(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, out)
		})
	}
}

func TestDescribeRecord(t *testing.T) {
	rec := model.BusinessRecord{
		Name:        "Falcon Clinic",
		Category:    "Healthcare",
		Address:     "Jumeirah, Dubai",
		Website:     "https://falcon.ae",
		Rating:      4.3,
		ReviewCount: 21,
		Enrichment: &model.Enrichment{Website: &model.WebsiteAnalysis{
			DigitalMaturity: model.MaturityBasic,
			Security:        model.SecurityBasic,
		}},
	}
	desc := describeRecord(&rec)
	assert.Contains(t, desc, "Falcon Clinic")
	assert.Contains(t, desc, "Healthcare")
	assert.Contains(t, desc, "4.3 (21 reviews)")
	assert.Contains(t, desc, "Basic maturity")
}
