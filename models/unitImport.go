package models

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Spreadsheet headers for developer unit submissions. The Phone Number
// column identifies the developer contact; it is not stored on the unit.
var unitImportHeaders = []string{
	"Unique ID",
	"Typology",
	"Net Area",
	"Gross Area",
	"Floor Number",
	"Block/Building Name",
	"Total Gross Area of Building",
	"Phone Number",
}

type UnitImportResult struct {
	ImportedCount int      `json:"importedCount"`
	Errors        []string `json:"errors"`
}

func parseFloatCell(value string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}

// ImportUnitsFromExcel parses a developer spreadsheet into a unit batch.
// Row problems are collected per row; any error means nothing is imported
// (a developer submission is accepted whole or not at all). A clean batch
// goes through the same submission validation as the JSON endpoint,
// including the per-block gross area check.
func ImportUnitsFromExcel(ctx context.Context, reader io.Reader) (*UnitImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, &ValidationError{Message: "Unable to read Excel file: " + err.Error()}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ValidationError{Message: "Excel file contains no sheets."}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, &ValidationError{Message: "Excel file is empty or contains no data rows."}
	}

	headers := rows[0]
	headerIndex := make(map[string]int, len(headers))
	for i, h := range headers {
		headerIndex[strings.TrimSpace(h)] = i
	}
	var missingHeaders []string
	for _, h := range unitImportHeaders {
		if _, ok := headerIndex[h]; !ok {
			missingHeaders = append(missingHeaders, h)
		}
	}
	if len(missingHeaders) > 0 {
		return &UnitImportResult{Errors: []string{
			"Missing required headers in Excel: " + strings.Join(missingHeaders, ", "),
		}}, nil
	}

	cell := func(row []string, header string) string {
		idx := headerIndex[header]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var importErrors []string
	var inputs []*NewUnit

	for i, row := range rows[1:] {
		rowNo := i + 2 // 1-based plus header row
		var rowErrors []string

		unitId := cell(row, "Unique ID")
		if unitId == "" {
			rowErrors = append(rowErrors, "Unique ID is missing.")
		}

		typology := cell(row, "Typology")
		if !NormalizeTypology(typology).IsValid() {
			rowErrors = append(rowErrors, fmt.Sprintf("Invalid Typology: %s.", typology))
		}

		numeric := map[string]float64{}
		for _, field := range []string{"Net Area", "Gross Area", "Floor Number", "Total Gross Area of Building"} {
			raw := cell(row, field)
			if raw == "" {
				rowErrors = append(rowErrors, field+" is missing.")
				continue
			}
			value, err := parseFloatCell(raw)
			if err != nil {
				rowErrors = append(rowErrors, field+" must be a number.")
				continue
			}
			numeric[field] = value
		}

		if v, ok := numeric["Gross Area"]; ok && v <= 0 {
			rowErrors = append(rowErrors, "Gross Area must be positive.")
		}
		if v, ok := numeric["Net Area"]; ok && v <= 0 {
			rowErrors = append(rowErrors, "Net Area must be positive.")
		}
		if v, ok := numeric["Floor Number"]; ok && v < 0 {
			rowErrors = append(rowErrors, "Floor Number cannot be negative.")
		}
		if v, ok := numeric["Total Gross Area of Building"]; ok && v <= 0 {
			rowErrors = append(rowErrors, "Total Gross Area of Building must be positive.")
		}

		blockName := cell(row, "Block/Building Name")
		if blockName == "" {
			rowErrors = append(rowErrors, "Block/Building Name is missing.")
		}

		if len(rowErrors) > 0 {
			importErrors = append(importErrors, fmt.Sprintf("Row %d: %s", rowNo, strings.Join(rowErrors, "; ")))
			continue
		}

		floor := int(numeric["Floor Number"])
		inputs = append(inputs, &NewUnit{
			UnitId:                 unitId,
			Typology:               typology,
			NetArea:                numeric["Net Area"],
			GrossArea:              numeric["Gross Area"],
			FloorNumber:            &floor,
			BlockName:              blockName,
			TotalBuildingGrossArea: numeric["Total Gross Area of Building"],
		})
	}

	if len(importErrors) > 0 {
		return &UnitImportResult{Errors: importErrors}, nil
	}

	units, err := SubmitUnits(ctx, inputs)
	if err != nil {
		switch e := err.(type) {
		case *ValidationError:
			return &UnitImportResult{Errors: []string{e.Message}}, nil
		case *ConflictError:
			return &UnitImportResult{Errors: []string{e.Message}}, nil
		}
		return nil, err
	}
	return &UnitImportResult{ImportedCount: len(units)}, nil
}
