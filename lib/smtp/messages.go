package smtp

import (
	"fmt"
	"strings"
	"time"

	dbmodels "procurement-backend/models/db"
)

// ApprovalRequested is sent to every approver of a request that was just submitted.
func ApprovalRequested(pr dbmodels.PurchaseRequest, entry dbmodels.Approval) (subject, message string) {
	subject = fmt.Sprintf("approval requested for %s", pr.PRNumber)
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Dear %s,\n\n", entry.Approver))
	sb.WriteString(fmt.Sprintf("Purchase request %s \"%s\" is waiting for your %s approval (level %d).\n",
		pr.PRNumber, pr.Title, entry.LevelName, entry.Level))
	sb.WriteString(fmt.Sprintf("Department: %s\nRequestor: %s\nEstimated budget: %.2f %s\n",
		pr.Department, pr.Requestor, pr.EstimatedBudget, pr.Currency))
	sb.WriteString(fmt.Sprintf("Due date: %s\n", entry.DueDate.Format(time.DateOnly)))
	if pr.ApproverInstructions != "" {
		sb.WriteString(fmt.Sprintf("\nInstructions: %s\n", pr.ApproverInstructions))
	}
	return subject, sb.String()
}

func ApprovalReminder(entry dbmodels.Approval, now time.Time) (subject, message string) {
	prNumber, title := "", ""
	if entry.PurchaseRequest != nil {
		prNumber, title = entry.PurchaseRequest.PRNumber, entry.PurchaseRequest.Title
	}
	subject = fmt.Sprintf("reminder: approval pending for %s", prNumber)
	message = fmt.Sprintf("Dear %s,\n\nYour %s approval (level %d) of purchase request %s \"%s\" was due on %s and is %d day(s) overdue.\n",
		entry.Approver, entry.LevelName, entry.Level, prNumber, title,
		entry.DueDate.Format(time.DateOnly), entry.DaysOverdue(now))
	return subject, message
}
