package models

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"bitbucket.org/aahdc/lottery_backend/config"
	"bitbucket.org/aahdc/lottery_backend/utils"
	"github.com/xuri/excelize/v2"
)

var candidateImportHeaders = []string{"name", "email", "phone", "typology"}

type FailedCandidateRow struct {
	Row     int      `json:"row"`
	Errors  []string `json:"errors"`
	RowData []string `json:"rowData"`
}

type CandidateImportResult struct {
	ImportedCount int                  `json:"importedCount"`
	FailedRows    []FailedCandidateRow `json:"failedRows"`
	ErrorDetails  []string             `json:"errorDetails"`
}

// CandidateTemplateExcel builds the blank spreadsheet handed to admins for
// batch candidate entry. The candidateId column is deliberately absent: it
// is assigned by the database.
func CandidateTemplateExcel() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Candidates"
	f.SetSheetName("Sheet1", sheet)
	for i, header := range candidateImportHeaders {
		cellRef, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cellRef, header); err != nil {
			return nil, err
		}
	}
	return f.WriteToBuffer()
}

// ImportCandidatesFromExcel loads candidates row by row. A bad row is
// recorded and skipped; it never aborts the rest of the file.
func ImportCandidatesFromExcel(ctx context.Context, reader io.Reader) (*CandidateImportResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, &ValidationError{Message: "Unable to read Excel file: " + err.Error()}
	}
	defer f.Close()

	result := &CandidateImportResult{}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.ErrorDetails = append(result.ErrorDetails, "Excel file contains no sheets.")
		return result, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		result.ErrorDetails = append(result.ErrorDetails, "Excel file is empty or contains no data rows.")
		return result, nil
	}

	headerIndex := make(map[string]int)
	for i, h := range rows[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, h := range candidateImportHeaders {
		if _, ok := headerIndex[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		result.ErrorDetails = append(result.ErrorDetails,
			"Missing required headers: "+strings.Join(missing, ", "))
		return result, nil
	}

	cell := func(row []string, header string) string {
		idx := headerIndex[header]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	db := config.GetDB()
	for i, row := range rows[1:] {
		rowNo := i + 2

		blank := true
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		name := cell(row, "name")
		email := cell(row, "email")
		phone := cell(row, "phone")
		typology := cell(row, "typology")

		var rowErrors []string
		if name == "" {
			rowErrors = append(rowErrors, "Name is required.")
		}
		if typology != "" && !NormalizeTypology(typology).IsValid() {
			rowErrors = append(rowErrors, fmt.Sprintf("Invalid typology: %s", typology))
		}
		if phone != "" {
			if err := utils.ValidatePhoneNumber(phone, utils.DefaultPhoneRegion); err != nil {
				rowErrors = append(rowErrors, fmt.Sprintf("Invalid phone number: %s", phone))
			}
		}

		if len(rowErrors) > 0 {
			result.FailedRows = append(result.FailedRows, FailedCandidateRow{Row: rowNo, Errors: rowErrors, RowData: row})
			continue
		}

		candidate := Candidate{
			Name:     name,
			Email:    email,
			Phone:    phone,
			Typology: NormalizeTypology(typology),
		}
		if err := db.WithContext(ctx).Create(&candidate).Error; err != nil {
			result.FailedRows = append(result.FailedRows, FailedCandidateRow{Row: rowNo, Errors: []string{err.Error()}, RowData: row})
			continue
		}
		result.ImportedCount++
	}

	if result.ImportedCount == 0 && (len(result.FailedRows) > 0 || len(result.ErrorDetails) > 0) {
		result.ErrorDetails = append(result.ErrorDetails,
			"No valid candidates found in file. See failedRows for details.")
	}
	return result, nil
}
