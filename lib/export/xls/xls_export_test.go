package xlsexport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

func TestExportPRList(t *testing.T) {
	created := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	list := []dbmodels.PurchaseRequest{
		{
			BaseModel:       dbmodels.BaseModel{ID: "1", CreatedAt: created},
			PRNumber:        "PR-2025-000002",
			Title:           "Laptops",
			Department:      models.DepartmentIT,
			Requestor:       "Anna",
			Status:          models.PRStatusSubmitted,
			Priority:        models.PriorityHigh,
			EstimatedBudget: 6000.5,
			Currency:        models.CurrencyUSD,
		},
		{
			BaseModel:  dbmodels.BaseModel{ID: "2", CreatedAt: created.AddDate(0, 0, -1)},
			PRNumber:   "PR-2025-000001",
			Title:      "Desks",
			Department: models.DepartmentFacilities,
			Status:     models.PRStatusDraft,
		},
	}
	t.Run("rows check", func(t *testing.T) {
		buf, err := impl{}.ExportPRList(list)
		require.NoError(t, err)
		f, err := excelize.OpenReader(buf)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Purchase Requests")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		require.Equal(t, prHeaders, rows[0])
		require.Equal(t, "PR-2025-000002", rows[1][0])
		require.Equal(t, "2025-03-10", rows[1][8])
		require.Equal(t, "Desks", rows[2][1])
		value, err := f.GetCellValue("Purchase Requests", "G2", excelize.Options{RawCellValue: true})
		require.NoError(t, err)
		require.Equal(t, "6000.5", value)
	})
	t.Run("empty list check", func(t *testing.T) {
		buf, err := impl{}.ExportPRList(nil)
		require.NoError(t, err)
		f, err := excelize.OpenReader(buf)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Purchase Requests")
		require.NoError(t, err)
		require.Len(t, rows, 1)
	})
}
