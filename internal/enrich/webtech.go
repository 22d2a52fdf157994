// Package enrich adds derived signals to deduplicated records: website
// technology analysis and LLM business classification. Every enricher
// fails per-record only; a bad website or API hiccup never aborts the
// batch.
package enrich

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// maxBodyBytes bounds how much of a page we read for marker sniffing.
const maxBodyBytes = 256 << 10

// WebTechConfig configures the website technology analyzer.
type WebTechConfig struct {
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
}

// WebTech inspects a business's website for technology and security
// signals and grades its digital maturity.
type WebTech struct {
	cfg    WebTechConfig
	client *http.Client
}

// NewWebTech creates the analyzer.
func NewWebTech(cfg WebTechConfig) *WebTech {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "leadgen-cli/1.0"
	}
	return &WebTech{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (w *WebTech) Name() string { return "website-analysis" }

// Enrich fetches the record's website and attaches a WebsiteAnalysis.
// Records without a usable website are skipped silently.
func (w *WebTech) Enrich(ctx context.Context, rec *model.BusinessRecord) error {
	site := model.CleanField(rec.Website)
	if !strings.HasPrefix(strings.ToLower(site), "http") {
		return nil
	}

	analysis, err := w.analyze(ctx, site)
	if err != nil {
		return eris.Wrapf(err, "enrich: analyze %s", site)
	}

	if rec.Enrichment == nil {
		rec.Enrichment = &model.Enrichment{}
	}
	rec.Enrichment.Website = analysis

	zap.L().Debug("enrich: website analyzed",
		zap.String("business", rec.Name),
		zap.String("maturity", string(analysis.DigitalMaturity)),
		zap.String("security", string(analysis.Security)),
	)
	return nil
}

// techMarkers maps body/header substrings to technology labels.
// Ordered roughly old-to-new; the maturity grade counts modern vs
// legacy hits.
var techMarkers = []struct {
	marker string
	label  string
	modern bool
}{
	{"wp-content", "WordPress", false},
	{"wp-includes", "WordPress", false},
	{"joomla", "Joomla", false},
	{"drupal", "Drupal", false},
	{"jquery", "jQuery", false},
	{"bootstrap", "Bootstrap", false},
	{"react", "React", true},
	{"next.js", "Next.js", true},
	{"_next/static", "Next.js", true},
	{"vue", "Vue", true},
	{"angular", "Angular", true},
	{"svelte", "Svelte", true},
	{"tailwind", "Tailwind", true},
}

func (w *WebTech) analyze(ctx context.Context, site string) (*model.WebsiteAnalysis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, site, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", w.cfg.UserAgent)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	hasSSL := resp.TLS != nil || strings.HasPrefix(strings.ToLower(resp.Request.URL.Scheme), "https")
	return Grade(string(body), resp.Header, hasSSL), nil
}

// Grade derives the maturity and security levels from page content,
// response headers, and the SSL bit. Split from the fetch so the
// decision table is testable without a server.
func Grade(body string, header http.Header, hasSSL bool) *model.WebsiteAnalysis {
	lower := strings.ToLower(body)

	var techs []string
	seen := map[string]struct{}{}
	modern, legacy := 0, 0
	for _, m := range techMarkers {
		if !strings.Contains(lower, m.marker) {
			continue
		}
		if _, dup := seen[m.label]; dup {
			continue
		}
		seen[m.label] = struct{}{}
		techs = append(techs, m.label)
		if m.modern {
			modern++
		} else {
			legacy++
		}
	}

	securityHeaders := 0
	for _, h := range []string{
		"Strict-Transport-Security",
		"Content-Security-Policy",
		"X-Frame-Options",
		"X-Content-Type-Options",
	} {
		if header.Get(h) != "" {
			securityHeaders++
		}
	}

	return &model.WebsiteAnalysis{
		DigitalMaturity: gradeMaturity(hasSSL, modern, legacy, len(techs)),
		Security:        gradeSecurity(hasSSL, securityHeaders),
		Technologies:    techs,
		HasSSL:          hasSSL,
	}
}

func gradeMaturity(hasSSL bool, modern, legacy, total int) model.MaturityLevel {
	switch {
	case !hasSSL && modern == 0:
		return model.MaturityOutdated
	case modern == 0 && legacy > 0:
		return model.MaturityBasic
	case modern > 0 && legacy > 0:
		return model.MaturityDeveloping
	case modern >= 2:
		return model.MaturityAdvanced
	case modern > 0:
		return model.MaturityMature
	case total == 0 && hasSSL:
		// Nothing recognizable; a bare page behind SSL reads as basic.
		return model.MaturityBasic
	default:
		return model.MaturityDeveloping
	}
}

func gradeSecurity(hasSSL bool, securityHeaders int) model.SecurityLevel {
	switch {
	case !hasSSL:
		return model.SecurityLow
	case securityHeaders == 0:
		return model.SecurityBasic
	case securityHeaders < 3:
		return model.SecurityGood
	default:
		return model.SecurityStrong
	}
}
