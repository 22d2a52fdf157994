// Package export writes ranked lead lists to files. Sinks consume the
// list unchanged; a sink failure never invalidates the list, which the
// caller may still write elsewhere.
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Columns is the fixed column set shared by the CSV and XLSX sinks.
var Columns = []string{
	"name",
	"category",
	"address",
	"phone",
	"email",
	"website",
	"rating",
	"review_count",
	"data_sources",
	"confidence",
	"total_score",
	"priority",
	"recommendations",
	"digital_maturity",
	"security_level",
	"business_size",
	"industry_category",
	"target_market",
}

// Meta describes the run that produced a lead list.
type Meta struct {
	Query       string    `json:"query"`
	Location    string    `json:"location"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Row flattens one record into the fixed column order.
func Row(r *model.BusinessRecord) []string {
	row := []string{
		r.Name,
		r.Category,
		r.Address,
		r.Phone,
		r.Email,
		r.Website,
		formatFloat(r.Rating),
		strconv.Itoa(r.ReviewCount),
		strings.Join(r.DataSources, "; "),
		formatFloat(r.Confidence),
	}

	if r.LeadScore != nil {
		row = append(row,
			strconv.Itoa(r.LeadScore.TotalScore),
			string(r.LeadScore.Priority),
			strings.Join(r.LeadScore.Recommendations, "; "),
		)
	} else {
		row = append(row, "", "", "")
	}

	var maturity, security string
	if r.Enrichment != nil && r.Enrichment.Website != nil {
		maturity = string(r.Enrichment.Website.DigitalMaturity)
		security = string(r.Enrichment.Website.Security)
	}
	var size, industry, market string
	if r.Enrichment != nil && r.Enrichment.AI != nil {
		size = r.Enrichment.AI.BusinessSize
		industry = r.Enrichment.AI.IndustryCategory
		market = r.Enrichment.AI.TargetMarket
	}
	return append(row, maturity, security, size, industry, market)
}

func formatFloat(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
