package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// WriteXLSXFile writes the lead list as a single-sheet workbook, the
// hand-off format sales teams actually open.
func WriteXLSXFile(path string, leads []model.BusinessRecord) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Leads")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	headerStyle := xlsx.NewStyle()
	headerStyle.Font.Bold = true

	header := sheet.AddRow()
	for _, col := range Columns {
		cell := header.AddCell()
		cell.Value = col
		cell.SetStyle(headerStyle)
	}

	for i := range leads {
		row := sheet.AddRow()
		for _, v := range Row(&leads[i]) {
			row.AddCell().Value = v
		}
	}

	return eris.Wrapf(file.Save(path), "export: save %s", path)
}
