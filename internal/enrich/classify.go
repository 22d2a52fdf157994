package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// ClassifierConfig configures the LLM business classifier.
type ClassifierConfig struct {
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int64  `yaml:"max_tokens" mapstructure:"max_tokens"`
}

const classifySystemPrompt = `You are a B2B lead researcher. Given a business listing,
classify it and respond with ONLY a JSON object, no prose:
{
  "business_size": "SME" | "Enterprise" | "Startup",
  "industry_category": "<short industry label>",
  "target_market": "B2B" | "B2C" | "Mixed",
  "key_insights": "<one sentence on why this business is or is not a good lead>"
}`

// messenger is the slice of the SDK the classifier uses; tests swap in
// a canned implementation.
type messenger interface {
	New(ctx context.Context, params sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Classifier asks an LLM to size and categorize a business.
type Classifier struct {
	cfg      ClassifierConfig
	messages messenger
}

// NewClassifier creates a Classifier backed by the official SDK.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	if cfg.Model == "" {
		cfg.Model = "claude-haiku-4-5-20251001"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	client := sdk.NewClient(option.WithAPIKey(cfg.APIKey))
	return &Classifier{cfg: cfg, messages: &client.Messages}
}

func (c *Classifier) Name() string { return "ai-classification" }

// Enrich classifies the record and attaches the result. API or parse
// failures propagate so the orchestrator can log and move on; the
// record's enrichment stays as it was.
func (c *Classifier) Enrich(ctx context.Context, rec *model.BusinessRecord) error {
	msg, err := c.messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.cfg.Model),
		MaxTokens: c.cfg.MaxTokens,
		System: []sdk.TextBlockParam{
			{Text: classifySystemPrompt},
		},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(describeRecord(rec))),
		},
	})
	if err != nil {
		return eris.Wrapf(err, "enrich: classify %q", rec.Name)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	classification, err := parseClassification(text)
	if err != nil {
		return eris.Wrapf(err, "enrich: parse classification for %q", rec.Name)
	}

	if rec.Enrichment == nil {
		rec.Enrichment = &model.Enrichment{}
	}
	rec.Enrichment.AI = classification

	zap.L().Debug("enrich: classified",
		zap.String("business", rec.Name),
		zap.String("size", classification.BusinessSize),
		zap.String("industry", classification.IndustryCategory),
	)
	return nil
}

// describeRecord renders the listing fields the model needs.
func describeRecord(rec *model.BusinessRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", rec.Name)
	if rec.Category != "" {
		fmt.Fprintf(&sb, "Category: %s\n", rec.Category)
	}
	if rec.Address != "" {
		fmt.Fprintf(&sb, "Address: %s\n", rec.Address)
	}
	if rec.Website != "" {
		fmt.Fprintf(&sb, "Website: %s\n", rec.Website)
	}
	if rec.Rating > 0 {
		fmt.Fprintf(&sb, "Rating: %.1f (%d reviews)\n", rec.Rating, rec.ReviewCount)
	}
	if rec.Enrichment != nil && rec.Enrichment.Website != nil {
		fmt.Fprintf(&sb, "Website tech: %s maturity, %s security\n",
			rec.Enrichment.Website.DigitalMaturity, rec.Enrichment.Website.Security)
	}
	return sb.String()
}

// parseClassification tolerates markdown fences around the JSON.
func parseClassification(text string) (*model.AIClassification, error) {
	text = strings.TrimSpace(text)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var out model.AIClassification
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return nil, eris.Wrap(err, "unmarshal")
	}
	if out.BusinessSize == "" && out.IndustryCategory == "" {
		return nil, eris.New("empty classification")
	}
	return &out, nil
}
