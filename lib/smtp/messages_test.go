package smtp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

func TestMessages(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	pr := dbmodels.PurchaseRequest{
		PRNumber:             "PR-2025-000007",
		Title:                "Laptops",
		Department:           models.DepartmentIT,
		Requestor:            "Anna",
		EstimatedBudget:      6000,
		Currency:             models.CurrencyUSD,
		ApproverInstructions: "check the quote",
	}
	entry := dbmodels.Approval{
		Level:     2,
		LevelName: models.LevelFinance,
		Approver:  "Boris",
		Status:    models.ApprovalStatusPending,
		DueDate:   now.Add(-50 * time.Hour),
	}
	t.Run("approval requested check", func(t *testing.T) {
		subject, message := ApprovalRequested(pr, entry)
		require.Equal(t, "approval requested for PR-2025-000007", subject)
		require.Contains(t, message, "Dear Boris")
		require.Contains(t, message, "Finance approval (level 2)")
		require.Contains(t, message, "6000.00 USD")
		require.Contains(t, message, "Instructions: check the quote")
	})
	t.Run("reminder check", func(t *testing.T) {
		entry.PurchaseRequest = &pr
		subject, message := ApprovalReminder(entry, now)
		require.Equal(t, "reminder: approval pending for PR-2025-000007", subject)
		require.Contains(t, message, "2 day(s) overdue")
	})
}
