package reports_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"bitbucket.org/aahdc/lottery_backend/config"
	"bitbucket.org/aahdc/lottery_backend/models"
	"bitbucket.org/aahdc/lottery_backend/models/reports"
	"github.com/xuri/excelize/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int

func setupReportDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBCounter++
	dsn := fmt.Sprintf("file:reporttest%d?mode=memory&cache=shared", testDBCounter)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	config.SetDB(db)
	models.MigrateTable()
	return db
}

func seedSnapshot(t *testing.T, db *gorm.DB) {
	t.Helper()
	now := time.Now()
	rows := []*models.AllocatedUnit{
		{UnitId: "A-01", Typology: models.UnitTypologyStudio, NetArea: 34, GrossArea: 40,
			FloorNumber: 1, BlockName: "A", TotalBuildingGrossArea: 300,
			Owner: models.OwnerAahdc, Allocated: true, AllocatedAt: now},
		{UnitId: "A-02", Typology: models.UnitTypologyOneBR, NetArea: 51, GrossArea: 60,
			FloorNumber: 2, BlockName: "A", TotalBuildingGrossArea: 300,
			Owner: models.OwnerAahdc, Allocated: true, AllocatedAt: now},
		{UnitId: "A-03", Typology: models.UnitTypologyShop, NetArea: 42, GrossArea: 50,
			FloorNumber: 0, BlockName: "A", TotalBuildingGrossArea: 300,
			Owner: models.OwnerDeveloper, Allocated: true, AllocatedAt: now},
		{UnitId: "A-04", Typology: models.UnitTypologyTwoBR, NetArea: 127, GrossArea: 150,
			FloorNumber: 3, BlockName: "A", TotalBuildingGrossArea: 300,
			Owner: models.OwnerDeveloper, Allocated: true, AllocatedAt: now},
	}
	if err := db.Create(rows).Error; err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
}

func TestBuildAllocationReportTotals(t *testing.T) {
	db := setupReportDB(t)
	seedSnapshot(t, db)

	data, err := reports.BuildAllocationReport(context.Background())
	if err != nil {
		t.Fatalf("BuildAllocationReport: %v", err)
	}
	if data.TotalGrossArea != 300 {
		t.Fatalf("expected total 300, got %.2f", data.TotalGrossArea)
	}
	if data.AahdcGrossArea != 100 {
		t.Fatalf("expected AAHDC area 100, got %.2f", data.AahdcGrossArea)
	}
	if data.DeveloperGrossArea != 200 {
		t.Fatalf("expected developer area 200, got %.2f", data.DeveloperGrossArea)
	}
	if data.AahdcResidentialArea != 100 {
		t.Fatalf("expected AAHDC residential area 100, got %.2f", data.AahdcResidentialArea)
	}
	if data.AahdcTypologyCounts[models.UnitTypologyStudio] != 1 {
		t.Fatalf("expected one AAHDC studio, got %d", data.AahdcTypologyCounts[models.UnitTypologyStudio])
	}
}

func TestFormatShare(t *testing.T) {
	cases := []struct {
		part, total float64
		expected    string
	}{
		{30, 100, "30.00%"},
		{29.95, 100, "29.95%"},
		{1, 3, "33.33%"},
		{0, 0, "0.00%"},
	}
	for _, tc := range cases {
		if got := reports.FormatShare(tc.part, tc.total); got != tc.expected {
			t.Fatalf("FormatShare(%v, %v) = %q, expected %q", tc.part, tc.total, got, tc.expected)
		}
	}
}

func TestFormatArea(t *testing.T) {
	if got := reports.FormatArea(1234.567); got != "1234.57" {
		t.Fatalf("FormatArea(1234.567) = %q", got)
	}
	if got := reports.FormatArea(40); got != "40.00" {
		t.Fatalf("FormatArea(40) = %q", got)
	}
}

func TestWriteAllocationExcelProducesWorkbook(t *testing.T) {
	db := setupReportDB(t)
	seedSnapshot(t, db)

	var buf bytes.Buffer
	if err := reports.WriteAllocationExcel(context.Background(), &buf); err != nil {
		t.Fatalf("WriteAllocationExcel: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read workbook: %v", err)
	}
	// Header plus one row per snapshot unit, then the summary block.
	if len(rows) < 5 {
		t.Fatalf("expected at least 5 rows, got %d", len(rows))
	}
	if rows[0][0] != "Unit ID" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
}

func TestWriteAllocationPdfProducesDocument(t *testing.T) {
	db := setupReportDB(t)
	seedSnapshot(t, db)

	var buf bytes.Buffer
	if err := reports.WriteAllocationPdf(context.Background(), &buf); err != nil {
		t.Fatalf("WriteAllocationPdf: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", buf.Bytes()[:8])
	}
}
