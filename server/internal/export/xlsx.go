package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/o2calc/o2calc/pkg/oxygen"
)

// SheetName is the name of the single worksheet in the workbook.
const SheetName = "Reference"

// ReferenceHeader is the header row of the reference sheet.
var ReferenceHeader = []string{"Flow Rate (LPM)", "O₂ %", "Device"}

var columnWidths = []float64{16, 10, 40}

// ReferenceWorkbook builds an XLSX workbook listing rows and returns its bytes.
func ReferenceWorkbook(rows []oxygen.ReferenceRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(SheetName)
	if err != nil {
		return nil, fmt.Errorf("export: create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("export: delete default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#0066CC"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}
	pctFormat := "0.0\"%\""
	pctStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &pctFormat})
	if err != nil {
		return nil, fmt.Errorf("export: percentage style: %w", err)
	}

	for col, header := range ReferenceHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("export: header cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, header); err != nil {
			return nil, fmt.Errorf("export: set header %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("export: style header %s: %w", cell, err)
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return nil, fmt.Errorf("export: column name: %w", err)
		}
		if err := f.SetColWidth(SheetName, name, name, columnWidths[col]); err != nil {
			return nil, fmt.Errorf("export: column width: %w", err)
		}
	}

	for i, row := range rows {
		r := i + 2
		values := []any{row.FlowRate, row.Percentage, row.Device.Short()}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, r)
			if err != nil {
				return nil, fmt.Errorf("export: row %d: %w", r, err)
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return nil, fmt.Errorf("export: set %s: %w", cell, err)
			}
		}
		pctCell, _ := excelize.CoordinatesToCellName(2, r)
		if err := f.SetCellStyle(SheetName, pctCell, pctCell, pctStyle); err != nil {
			return nil, fmt.Errorf("export: style %s: %w", pctCell, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
