package reports

import (
	"context"

	"bitbucket.org/aahdc/lottery_backend/models"
	"github.com/shopspring/decimal"
)

// AllocationReportData aggregates the snapshot table for the Excel and PDF
// renderers. Owner buckets follow the stored owner string: rows whose owner
// was swapped to a candidate name count toward neither AAHDC nor the
// developer, matching the on-screen grouping.
type AllocationReportData struct {
	Units []*models.AllocatedUnit

	TotalGrossArea     float64
	AahdcGrossArea     float64
	DeveloperGrossArea float64

	AahdcResidentialArea float64
	AahdcTypologyCounts  map[models.UnitTypology]int
	AahdcTypologyArea    map[models.UnitTypology]float64
}

// residentialTypologies in report order.
var residentialTypologies = []models.UnitTypology{
	models.UnitTypologyStudio,
	models.UnitTypologyOneBR,
	models.UnitTypologyTwoBR,
	models.UnitTypologyThreeBR,
}

func BuildAllocationReport(ctx context.Context) (*AllocationReportData, error) {
	units, err := models.GetAllocatedUnits(ctx)
	if err != nil {
		return nil, err
	}

	data := &AllocationReportData{
		Units:               units,
		AahdcTypologyCounts: make(map[models.UnitTypology]int),
		AahdcTypologyArea:   make(map[models.UnitTypology]float64),
	}

	for _, u := range units {
		data.TotalGrossArea += u.GrossArea
		switch u.Owner {
		case models.OwnerAahdc:
			data.AahdcGrossArea += u.GrossArea
			if u.Typology != models.UnitTypologyShop {
				data.AahdcResidentialArea += u.GrossArea
				data.AahdcTypologyCounts[u.Typology]++
				data.AahdcTypologyArea[u.Typology] += u.GrossArea
			}
		case models.OwnerDeveloper:
			data.DeveloperGrossArea += u.GrossArea
		}
	}
	return data, nil
}

// FormatArea renders an area rounded to two decimals.
func FormatArea(area float64) string {
	return decimal.NewFromFloat(area).Round(2).StringFixed(2)
}

// FormatShare renders part/total as a percentage with two decimals, e.g.
// "29.97%". Zero total renders "0.00%".
func FormatShare(part, total float64) string {
	if total == 0 {
		return "0.00%"
	}
	return decimal.NewFromFloat(part / total * 100).Round(2).StringFixed(2) + "%"
}
