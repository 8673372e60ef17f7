package models_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bitbucket.org/aahdc/lottery_backend/models"
	"bitbucket.org/aahdc/lottery_backend/utils"
)

func newUnitInput(id, typology string, grossArea float64, floor int, block string, blockTotal float64) *models.NewUnit {
	return &models.NewUnit{
		UnitId:                 id,
		Typology:               typology,
		NetArea:                grossArea * 0.85,
		GrossArea:              grossArea,
		FloorNumber:            &floor,
		BlockName:              block,
		TotalBuildingGrossArea: blockTotal,
	}
}

func TestSubmitUnitsStoresBatch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	units, err := models.SubmitUnits(ctx, []*models.NewUnit{
		newUnitInput("A-01", "Studio", 40, 1, "A", 100),
		newUnitInput("A-02", "1br", 60, 2, "A", 100),
	})
	if err != nil {
		t.Fatalf("SubmitUnits: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[1].Typology != models.UnitTypologyOneBR {
		t.Fatalf("expected typology normalized to 1BR, got %q", units[1].Typology)
	}

	var count int64
	if err := db.Model(&models.Unit{}).
		Where("allocated = ? AND owner = ?", false, models.OwnerDeveloper).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 unallocated developer units, got %d", count)
	}
}

func TestSubmitUnitsRejectsEmptyBatch(t *testing.T) {
	setupTestDB(t)

	_, err := models.SubmitUnits(context.Background(), nil)
	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitUnitsRejectsBlockAreaMismatch(t *testing.T) {
	setupTestDB(t)

	_, err := models.SubmitUnits(context.Background(), []*models.NewUnit{
		newUnitInput("A-01", "Studio", 40, 1, "A", 100),
		newUnitInput("A-02", "1BR", 60.02, 2, "A", 100),
	})
	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(validationErr.Message, "Gross area mismatch for block A") {
		t.Fatalf("unexpected message: %q", validationErr.Message)
	}
}

func TestSubmitUnitsToleratesSmallBlockDrift(t *testing.T) {
	setupTestDB(t)

	_, err := models.SubmitUnits(context.Background(), []*models.NewUnit{
		newUnitInput("A-01", "Studio", 40, 1, "A", 100.005),
		newUnitInput("A-02", "1BR", 60, 2, "A", 100.005),
	})
	if err != nil {
		t.Fatalf("drift within tolerance must pass: %v", err)
	}
}

func TestSubmitUnitsRejectsDuplicateInBatch(t *testing.T) {
	setupTestDB(t)

	_, err := models.SubmitUnits(context.Background(), []*models.NewUnit{
		newUnitInput("A-01", "Studio", 50, 1, "A", 100),
		newUnitInput("A-01", "Studio", 50, 2, "A", 100),
	})
	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !strings.Contains(validationErr.Message, "Duplicate Unit ID") {
		t.Fatalf("unexpected message: %q", validationErr.Message)
	}
}

func TestSubmitUnitsRejectsExistingIds(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	batch := []*models.NewUnit{newUnitInput("A-01", "Studio", 100, 1, "A", 100)}
	if _, err := models.SubmitUnits(ctx, batch); err != nil {
		t.Fatalf("first submission: %v", err)
	}

	_, err := models.SubmitUnits(ctx, batch)
	var conflictErr *models.ConflictError
	if !errors.As(err, &conflictErr) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestSubmitUnitsRejectsUnknownTypology(t *testing.T) {
	setupTestDB(t)

	_, err := models.SubmitUnits(context.Background(), []*models.NewUnit{
		newUnitInput("A-01", "Penthouse", 100, 1, "A", 100),
	})
	var validationErr *models.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetUnallocatedUnitsFiltersOwnedAndAllocated(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	free := makeUnit("F1", models.UnitTypologyStudio, 40, 1, "A")
	taken := makeUnit("T1", models.UnitTypologyStudio, 40, 2, "A")
	taken.Allocated = true
	taken.Owner = models.OwnerAahdc
	seedUnits(t, db, []*models.Unit{free, taken})

	units, err := models.GetUnallocatedUnits(ctx)
	if err != nil {
		t.Fatalf("GetUnallocatedUnits: %v", err)
	}
	if len(units) != 1 || units[0].UnitId != "F1" {
		t.Fatalf("expected only F1, got %v", unitIDs(units))
	}
}

func TestGetCandidateNotFound(t *testing.T) {
	setupTestDB(t)

	_, err := models.GetCandidate(context.Background(), 999)
	if !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("expected record-not-found, got %v", err)
	}
}
