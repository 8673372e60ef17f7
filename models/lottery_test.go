package models_test

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"bitbucket.org/aahdc/lottery_backend/models"
)

func makeUnit(id string, typology models.UnitTypology, grossArea float64, floor int, block string) *models.Unit {
	return &models.Unit{
		UnitId:      id,
		Typology:    typology,
		NetArea:     grossArea * 0.85,
		GrossArea:   grossArea,
		FloorNumber: floor,
		BlockName:   block,
		Owner:       models.OwnerDeveloper,
	}
}

// mixedPool builds a pool whose residential mix lands exactly on the
// typology caps (they sum to 100%), so both the compliance checker and the
// lottery cap checks can be satisfied.
func mixedPool() []*models.Unit {
	var units []*models.Unit
	id := 0
	add := func(typology models.UnitTypology, grossArea float64, count int) {
		for i := 0; i < count; i++ {
			id++
			units = append(units, makeUnit(unitID(id), typology, grossArea, id%10, "A"))
		}
	}
	add(models.UnitTypologyStudio, 40, 15)   // 600 = 15% of 4000
	add(models.UnitTypologyOneBR, 80, 20)    // 1600 = 40%
	add(models.UnitTypologyTwoBR, 100, 10)   // 1000 = 25%
	add(models.UnitTypologyThreeBR, 100, 8)  // 800 = 20%
	add(models.UnitTypologyShop, 50, 8)
	return units
}

func unitID(n int) string {
	return "U-" + string(rune('A'+n/100)) + "-" + string(rune('0'+(n/10)%10)) + string(rune('0'+n%10))
}

func unitIDs(units []*models.Unit) []string {
	ids := make([]string, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.UnitId)
	}
	sort.Strings(ids)
	return ids
}

func assertConservation(t *testing.T, pool []*models.Unit, result *models.DistributionResult) {
	t.Helper()
	seen := make(map[string]int)
	for _, u := range result.AahdcUnits {
		seen[u.UnitId]++
	}
	for _, u := range result.DevUnits {
		seen[u.UnitId]++
	}
	if len(seen) != len(pool) {
		t.Fatalf("expected %d distinct units across both sides, got %d", len(pool), len(seen))
	}
	for _, u := range pool {
		if seen[u.UnitId] != 1 {
			t.Fatalf("unit %s appeared %d times", u.UnitId, seen[u.UnitId])
		}
	}

	var aahdcArea float64
	for _, u := range result.AahdcUnits {
		aahdcArea += u.GrossArea
	}
	if math.Abs(aahdcArea-result.AllocatedAahdcArea) > 1e-6 {
		t.Fatalf("AllocatedAahdcArea %.4f does not match summed AAHDC area %.4f",
			result.AllocatedAahdcArea, aahdcArea)
	}
}

func assertTypologyCaps(t *testing.T, aahdcUnits []*models.Unit) {
	t.Helper()
	var residentialArea float64
	areaByTypology := make(map[models.UnitTypology]float64)
	for _, u := range aahdcUnits {
		if u.Typology == models.UnitTypologyShop {
			continue
		}
		residentialArea += u.GrossArea
		areaByTypology[u.Typology] += u.GrossArea
	}
	if residentialArea == 0 {
		return
	}
	for typology, limit := range models.TypologyCaps {
		share := areaByTypology[typology] / residentialArea
		if share > limit+0.001 {
			t.Fatalf("%s share %.4f exceeds cap %.2f", typology, share, limit)
		}
	}
}

func TestFullLotteryConservesUnitsAndRespectsCaps(t *testing.T) {
	pool := mixedPool()
	result := models.FullLottery(pool, rand.New(rand.NewSource(7)))

	assertConservation(t, pool, result)
	assertTypologyCaps(t, result.AahdcUnits)

	totalArea := 0.0
	for _, u := range pool {
		totalArea += u.GrossArea
	}
	if result.AllocatedAahdcArea > totalArea*models.AahdcTargetShare+models.AreaTolerance {
		t.Fatalf("AAHDC area %.2f exceeds 30%% target %.2f",
			result.AllocatedAahdcArea, totalArea*models.AahdcTargetShare)
	}
}

func TestFullLotteryReachesTargetOnDivisiblePool(t *testing.T) {
	// Shops only: no caps interfere, 100 units of 10 sqm, target is 300.
	var pool []*models.Unit
	for i := 1; i <= 100; i++ {
		pool = append(pool, makeUnit(unitID(i), models.UnitTypologyShop, 10, 0, "A"))
	}

	result := models.FullLottery(pool, rand.New(rand.NewSource(3)))
	if math.Abs(result.AllocatedAahdcArea-300) > models.AreaTolerance {
		t.Fatalf("expected AAHDC area 300, got %.2f", result.AllocatedAahdcArea)
	}
}

func TestFullLotteryDeterministicUnderFixedSeed(t *testing.T) {
	pool := mixedPool()
	first := models.FullLottery(pool, rand.New(rand.NewSource(42)))
	second := models.FullLottery(pool, rand.New(rand.NewSource(42)))

	firstIDs := unitIDs(first.AahdcUnits)
	secondIDs := unitIDs(second.AahdcUnits)
	if len(firstIDs) != len(secondIDs) {
		t.Fatalf("runs differ in size: %d vs %d", len(firstIDs), len(secondIDs))
	}
	for i := range firstIDs {
		if firstIDs[i] != secondIDs[i] {
			t.Fatalf("runs differ at %d: %s vs %s", i, firstIDs[i], secondIDs[i])
		}
	}
}

func TestHybridLotterySplitsResidentialAndCommercial(t *testing.T) {
	pool := []*models.Unit{
		makeUnit("R1", models.UnitTypologyOneBR, 60, 1, "A"),
		makeUnit("R2", models.UnitTypologyTwoBR, 80, 1, "A"),
		makeUnit("R3", models.UnitTypologyStudio, 40, 2, "A"),
		makeUnit("S1", models.UnitTypologyShop, 10, 0, "A"),
		makeUnit("S2", models.UnitTypologyShop, 20, 0, "A"),
		makeUnit("S3", models.UnitTypologyShop, 70, 0, "A"),
	}

	result := models.HybridLottery(pool, rand.New(rand.NewSource(11)))
	assertConservation(t, pool, result)

	// Commercial target is 30 of 100; ascending fill takes S1 and S2.
	if math.Abs(result.AllocatedAahdcCommercialArea-30) > models.AreaTolerance {
		t.Fatalf("expected commercial AAHDC area 30, got %.2f", result.AllocatedAahdcCommercialArea)
	}
	for _, u := range result.AahdcUnits {
		if u.UnitId == "S3" {
			t.Fatal("largest shop should stay with the developer")
		}
	}
}

func TestBlockByBlockIsDeterministicAndAtomic(t *testing.T) {
	// Blocks sum to 1000; target 300, overshoot ceiling 315. Alphabetical
	// walk takes block A whole and nothing else.
	pool := []*models.Unit{
		makeUnit("B1", models.UnitTypologyShop, 200, 1, "B"),
		makeUnit("B2", models.UnitTypologyShop, 150, 2, "B"),
		makeUnit("A1", models.UnitTypologyShop, 100, 1, "A"),
		makeUnit("A2", models.UnitTypologyShop, 200, 2, "A"),
		makeUnit("C1", models.UnitTypologyShop, 350, 1, "C"),
	}

	result := models.BlockByBlockAssignment(pool)
	assertConservation(t, pool, result)

	aahdcIDs := unitIDs(result.AahdcUnits)
	want := []string{"A1", "A2"}
	if len(aahdcIDs) != len(want) {
		t.Fatalf("expected AAHDC units %v, got %v", want, aahdcIDs)
	}
	for i := range want {
		if aahdcIDs[i] != want[i] {
			t.Fatalf("expected AAHDC units %v, got %v", want, aahdcIDs)
		}
	}

	again := models.BlockByBlockAssignment(pool)
	if len(unitIDs(again.AahdcUnits)) != len(aahdcIDs) {
		t.Fatal("block assignment is not deterministic")
	}

	// Block atomicity: no block may straddle both sides.
	sideByBlock := make(map[string]string)
	for _, u := range result.AahdcUnits {
		sideByBlock[u.BlockName] = "aahdc"
	}
	for _, u := range result.DevUnits {
		if sideByBlock[u.BlockName] == "aahdc" {
			t.Fatalf("block %s is split across both sides", u.BlockName)
		}
	}
}

func TestFloorBasedLotteryFillsLowestFloorsFirst(t *testing.T) {
	pool := []*models.Unit{
		makeUnit("F2", models.UnitTypologyShop, 40, 2, "A"),
		makeUnit("F0", models.UnitTypologyShop, 30, 0, "A"),
		makeUnit("F1", models.UnitTypologyShop, 30, 1, "A"),
	}

	// Target is 30; only the floor-0 unit fits.
	result := models.FloorBasedLottery(pool, rand.New(rand.NewSource(5)))
	assertConservation(t, pool, result)

	if len(result.AahdcUnits) != 1 || result.AahdcUnits[0].UnitId != "F0" {
		t.Fatalf("expected only the ground-floor unit allocated, got %v", unitIDs(result.AahdcUnits))
	}
}

func TestPairCandidatesByTypologyPairsUpToSmallerPool(t *testing.T) {
	units := []*models.Unit{
		makeUnit("ST1", models.UnitTypologyStudio, 40, 1, "A"),
		makeUnit("ST2", models.UnitTypologyStudio, 40, 2, "A"),
		makeUnit("ST3", models.UnitTypologyStudio, 40, 3, "A"),
	}
	candidates := []*models.Candidate{
		{CandidateId: 1, Name: "Abebe", Typology: models.UnitTypologyStudio},
		{CandidateId: 2, Name: "Hana", Typology: models.UnitTypologyStudio},
	}

	pairings := models.PairCandidatesByTypology(units, candidates, rand.New(rand.NewSource(9)))
	if len(pairings) != 2 {
		t.Fatalf("expected 2 pairings, got %d", len(pairings))
	}

	seenUnits := make(map[string]bool)
	seenCandidates := make(map[int]bool)
	for _, p := range pairings {
		if p.Unit.Typology != p.Candidate.Typology {
			t.Fatalf("typology mismatch: unit %s vs candidate %d", p.Unit.UnitId, p.Candidate.CandidateId)
		}
		if seenUnits[p.Unit.UnitId] || seenCandidates[p.Candidate.CandidateId] {
			t.Fatal("unit or candidate paired twice")
		}
		seenUnits[p.Unit.UnitId] = true
		seenCandidates[p.Candidate.CandidateId] = true
	}
}

func TestPairCandidatesNormalizesCandidateTypology(t *testing.T) {
	units := []*models.Unit{makeUnit("ST1", models.UnitTypologyStudio, 40, 1, "A")}
	candidates := []*models.Candidate{{CandidateId: 1, Name: "Abebe", Typology: "studio"}}

	pairings := models.PairCandidatesByTypology(units, candidates, rand.New(rand.NewSource(1)))
	if len(pairings) != 1 {
		t.Fatalf("expected lowercase candidate typology to match, got %d pairings", len(pairings))
	}
}
