package models_test

import (
	"strings"
	"testing"

	"bitbucket.org/aahdc/lottery_backend/models"
)

func TestPreAllocationComplianceEmptyPool(t *testing.T) {
	result := models.CheckPreAllocationCompliance(nil, models.DefaultExternalComplianceFlags())
	if result.IsCompliant {
		t.Fatal("empty pool must not be compliant")
	}
	if len(result.Issues) != 1 || result.Issues[0] != "No units submitted for allocation." {
		t.Fatalf("unexpected issues: %v", result.Issues)
	}
}

func TestPreAllocationComplianceBalancedPoolPasses(t *testing.T) {
	result := models.CheckPreAllocationCompliance(mixedPool(), models.DefaultExternalComplianceFlags())
	if !result.IsCompliant {
		t.Fatalf("balanced pool should pass, got issues: %v", result.Issues)
	}
}

func TestPreAllocationComplianceFlagsOverweightTypology(t *testing.T) {
	// All residential area in studios, far beyond the 15% cap.
	pool := []*models.Unit{
		makeUnit("ST1", models.UnitTypologyStudio, 100, 1, "A"),
		makeUnit("ST2", models.UnitTypologyStudio, 100, 2, "A"),
	}

	result := models.CheckPreAllocationCompliance(pool, models.DefaultExternalComplianceFlags())
	if result.IsCompliant {
		t.Fatal("all-studio pool must fail the typology mix check")
	}
	found := false
	for _, issue := range result.Issues {
		if strings.Contains(issue, "Studio typology exceeds 15%") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected studio cap issue, got: %v", result.Issues)
	}
}

func TestPreAllocationComplianceExternalFlags(t *testing.T) {
	result := models.CheckPreAllocationCompliance(mixedPool(), models.ExternalComplianceFlags{
		ConstructionComplete: false,
		AgreementSigned:      false,
	})
	if result.IsCompliant {
		t.Fatal("unmet external preconditions must fail")
	}
	joined := strings.Join(result.Issues, " | ")
	if !strings.Contains(joined, "Clause 7.9") || !strings.Contains(joined, "Schedule 7") {
		t.Fatalf("expected clause violations, got: %v", result.Issues)
	}
}

func TestPostAllocationComplianceUnderTarget(t *testing.T) {
	aahdc := []*models.Unit{makeUnit("A1", models.UnitTypologyOneBR, 10, 1, "A")}
	dev := []*models.Unit{makeUnit("D1", models.UnitTypologyOneBR, 90, 1, "A")}

	result := models.CheckPostAllocationCompliance(aahdc, dev)
	if result.IsCompliant {
		t.Fatal("10% allocation must raise a Clause 5.6 issue")
	}
	if !strings.Contains(result.Issues[0], "Clause 5.6 violation") ||
		!strings.Contains(result.Issues[0], "10.00%") {
		t.Fatalf("unexpected issue: %q", result.Issues[0])
	}
}

func TestPostAllocationComplianceBoundaryAbsorbsFloatDrift(t *testing.T) {
	// 29.95% sits below the statutory 30% but above the 29.9 float
	// boundary, so no area issue is raised.
	aahdc := []*models.Unit{makeUnit("A1", models.UnitTypologyOneBR, 29.95, 1, "A")}
	dev := []*models.Unit{makeUnit("D1", models.UnitTypologyTwoBR, 70.05, 1, "A")}

	result := models.CheckPostAllocationCompliance(aahdc, dev)
	for _, issue := range result.Issues {
		if strings.Contains(issue, "Clause 5.6") {
			t.Fatalf("29.95%% should not trip the area check: %q", issue)
		}
	}
}

func TestPostAllocationComplianceShopShare(t *testing.T) {
	aahdc := []*models.Unit{makeUnit("S1", models.UnitTypologyShop, 10, 0, "A")}
	dev := []*models.Unit{
		makeUnit("S2", models.UnitTypologyShop, 90, 0, "A"),
		makeUnit("R1", models.UnitTypologyOneBR, 100, 1, "A"),
	}

	result := models.CheckPostAllocationCompliance(aahdc, dev)
	found := false
	for _, issue := range result.Issues {
		if strings.Contains(issue, "Shop allocation is less than 30%") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected shop share issue, got: %v", result.Issues)
	}
}
