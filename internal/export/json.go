package export

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// jsonEnvelope wraps the lead list with run metadata.
type jsonEnvelope struct {
	Query       string                 `json:"query"`
	Location    string                 `json:"location"`
	GeneratedAt time.Time              `json:"generated_at"`
	Total       int                    `json:"total"`
	Leads       []model.BusinessRecord `json:"leads"`
}

// WriteJSON writes the lead list with a metadata envelope.
func WriteJSON(w io.Writer, meta Meta, leads []model.BusinessRecord) error {
	if meta.GeneratedAt.IsZero() {
		meta.GeneratedAt = time.Now().UTC()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err := enc.Encode(jsonEnvelope{
		Query:       meta.Query,
		Location:    meta.Location,
		GeneratedAt: meta.GeneratedAt,
		Total:       len(leads),
		Leads:       leads,
	})
	return eris.Wrap(err, "export: encode json")
}

// WriteJSONFile writes the JSON envelope to a path.
func WriteJSONFile(path string, meta Meta, leads []model.BusinessRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := WriteJSON(f, meta, leads); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}
