package reports

import (
	"context"
	"fmt"
	"io"

	"bitbucket.org/aahdc/lottery_backend/utils"
	"github.com/jung-kurt/gofpdf"
)

var pdfTableHeaders = []string{"Unit ID", "Typology", "Gross Area", "Floor", "Block", "Owner", "Candidate Phone"}

// column widths in mm, fitted to an A4 page.
var pdfColWidths = []float64{28, 20, 24, 16, 28, 40, 34}

// WriteAllocationPdf renders the allocation report as a PDF to w.
func WriteAllocationPdf(ctx context.Context, w io.Writer) error {
	data, err := BuildAllocationReport(ctx)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "AAHDC Unit Allocation Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "U", 12)
	pdf.CellFormat(0, 7, "Allocation Summary:", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 6, fmt.Sprintf("Total Project Gross Area: %s sqm", FormatArea(data.TotalGrossArea)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("AAHDC Allocated Gross Area: %s sqm (%s)",
		FormatArea(data.AahdcGrossArea), FormatShare(data.AahdcGrossArea, data.TotalGrossArea)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Developer Allocated Gross Area: %s sqm (%s)",
		FormatArea(data.DeveloperGrossArea), FormatShare(data.DeveloperGrossArea, data.TotalGrossArea)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.CellFormat(0, 6, "AAHDC Typology Mix (Residential Gross Area %):", "", 1, "L", false, 0, "")
	if data.AahdcResidentialArea > 0 {
		for _, typology := range residentialTypologies {
			pdf.CellFormat(0, 6, fmt.Sprintf("  %s: %d units - %s sqm (%s)",
				typology,
				data.AahdcTypologyCounts[typology],
				FormatArea(data.AahdcTypologyArea[typology]),
				FormatShare(data.AahdcTypologyArea[typology], data.AahdcResidentialArea)), "", 1, "L", false, 0, "")
		}
	}
	pdf.Ln(4)

	pdf.CellFormat(0, 6, "Detailed Unit Allocation:", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	writeTableHeader(pdf)
	pdf.SetFont("Helvetica", "", 9)
	for _, u := range data.Units {
		if pdf.GetY() > 270 {
			pdf.AddPage()
			writeTableHeader(pdf)
			pdf.SetFont("Helvetica", "", 9)
		}
		cells := []string{
			u.UnitId,
			string(u.Typology),
			FormatArea(u.GrossArea),
			fmt.Sprint(u.FloorNumber),
			u.BlockName,
			u.Owner,
			utils.DereferencePtr(u.CandidatePhone, "-"),
		}
		for i, cell := range cells {
			pdf.CellFormat(pdfColWidths[i], 6, cell, "", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

func writeTableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 9)
	for i, header := range pdfTableHeaders {
		pdf.CellFormat(pdfColWidths[i], 7, header, "", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}
