package csvexport

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

func TestExportPRList(t *testing.T) {
	created := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	list := []dbmodels.PurchaseRequest{
		{
			BaseModel:       dbmodels.BaseModel{ID: "1", CreatedAt: created},
			PRNumber:        "PR-2025-000002",
			Title:           `Laptops "Pro" 14, silver`,
			Department:      models.DepartmentIT,
			Requestor:       "Anna",
			Status:          models.PRStatusSubmitted,
			Priority:        models.PriorityHigh,
			EstimatedBudget: 6000.5,
			Currency:        models.CurrencyUSD,
		},
		{
			BaseModel:       dbmodels.BaseModel{ID: "2", CreatedAt: created.AddDate(0, 0, -3)},
			PRNumber:        "PR-2025-000001",
			Title:           "Desks",
			Department:      models.DepartmentFacilities,
			Requestor:       "Boris",
			Status:          models.PRStatusDraft,
			Priority:        models.PriorityMedium,
			EstimatedBudget: 2500,
			Currency:        models.CurrencyINR,
		},
	}
	t.Run("golden check", func(t *testing.T) {
		g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
		g.Assert(t, "pr_list", ExportPRList(list))
	})
	t.Run("header only check", func(t *testing.T) {
		require.Equal(t, header, string(ExportPRList(nil)))
	})
	t.Run("quote check", func(t *testing.T) {
		require.Equal(t, `""""`, quote(`"`))
		require.Equal(t, `""`, quote(""))
	})
}
