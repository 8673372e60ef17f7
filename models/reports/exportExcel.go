package reports

import (
	"context"
	"fmt"
	"io"

	"bitbucket.org/aahdc/lottery_backend/utils"
	"github.com/xuri/excelize/v2"
)

// WriteAllocationExcel renders the allocation summary workbook to w.
func WriteAllocationExcel(ctx context.Context, w io.Writer) error {
	data, err := BuildAllocationReport(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Allocation Summary"
	f.SetSheetName("Sheet1", sheet)

	// Add headers
	f.SetCellValue(sheet, "A1", "Unit ID")
	f.SetCellValue(sheet, "B1", "Typology")
	f.SetCellValue(sheet, "C1", "Net Area")
	f.SetCellValue(sheet, "D1", "Gross Area")
	f.SetCellValue(sheet, "E1", "Floor No.")
	f.SetCellValue(sheet, "F1", "Block Name")
	f.SetCellValue(sheet, "G1", "Owner")
	f.SetCellValue(sheet, "H1", "Candidate Phone")

	// Add data
	for i, u := range data.Units {
		row := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+row, u.UnitId)
		f.SetCellValue(sheet, "B"+row, string(u.Typology))
		f.SetCellValue(sheet, "C"+row, u.NetArea)
		f.SetCellValue(sheet, "D"+row, u.GrossArea)
		f.SetCellValue(sheet, "E"+row, u.FloorNumber)
		f.SetCellValue(sheet, "F"+row, u.BlockName)
		f.SetCellValue(sheet, "G"+row, u.Owner)
		f.SetCellValue(sheet, "H"+row, utils.DereferencePtr(u.CandidatePhone, "-"))
	}

	// Summary block
	row := len(data.Units) + 3
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Total Gross Area (All Units):")
	f.SetCellValue(sheet, "D"+fmt.Sprint(row), FormatArea(data.TotalGrossArea))
	row++
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "AAHDC Gross Area:")
	f.SetCellValue(sheet, "D"+fmt.Sprint(row), FormatArea(data.AahdcGrossArea))
	row++
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Developer Gross Area:")
	f.SetCellValue(sheet, "D"+fmt.Sprint(row), FormatArea(data.DeveloperGrossArea))
	row += 2
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "AAHDC Typology Mix (Gross Area % of residential):")
	if data.AahdcResidentialArea > 0 {
		for _, typology := range residentialTypologies {
			row++
			f.SetCellValue(sheet, "A"+fmt.Sprint(row), string(typology)+":")
			f.SetCellValue(sheet, "D"+fmt.Sprint(row),
				FormatShare(data.AahdcTypologyArea[typology], data.AahdcResidentialArea))
		}
	}

	return f.Write(w)
}
