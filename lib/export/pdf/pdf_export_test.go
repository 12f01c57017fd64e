package pdfexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

func TestGeneratePR(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	rec := dbmodels.PurchaseRequest{
		BaseModel:             dbmodels.BaseModel{ID: "1", CreatedAt: now},
		PRNumber:              "PR-2025-000001",
		Title:                 "Laptops for the café team",
		Department:            models.DepartmentIT,
		Requestor:             "Anna",
		CostCenter:            "CC-2025-001",
		BusinessJustification: "Old machines are out of warranty.",
		Status:                models.PRStatusSubmitted,
		EstimatedBudget:       6000,
		Currency:              models.CurrencyUSD,
		Items: []dbmodels.PRItem{
			{ItemNumber: 1, Description: "Laptop", Quantity: 2, Unit: models.ItemUnitEach, UnitPrice: 2500, Total: 5000},
		},
		Approvals: []dbmodels.Approval{
			{Level: 1, LevelName: models.LevelManager, Approver: "Boris", Status: models.ApprovalStatusPending, DueDate: now},
		},
	}
	t.Run("document check", func(t *testing.T) {
		data, err := GeneratePR(rec, now)
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
		require.Equal(t, "PR-2025-000001.pdf", FileName(rec))
	})
	t.Run("without children check", func(t *testing.T) {
		rec.Items, rec.Approvals = nil, nil
		data, err := GeneratePR(rec, now)
		require.NoError(t, err)
		require.NotEmpty(t, data)
	})
}
