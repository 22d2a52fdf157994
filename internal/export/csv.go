package export

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// WriteCSV writes one row per record with the fixed column set.
// encoding/csv handles quoting and quote doubling.
func WriteCSV(w io.Writer, leads []model.BusinessRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(Columns); err != nil {
		return eris.Wrap(err, "export: csv header")
	}
	for i := range leads {
		if err := cw.Write(Row(&leads[i])); err != nil {
			return eris.Wrapf(err, "export: csv row %d", i)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: csv flush")
}

// WriteCSVFile writes the CSV to a path.
func WriteCSVFile(path string, leads []model.BusinessRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	if err := WriteCSV(f, leads); err != nil {
		f.Close()
		return err
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}
