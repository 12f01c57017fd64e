// Package workflow holds the purchase request state machine as pure functions.
// A command takes a snapshot of the aggregate and returns the next snapshot together
// with the audit entries it emits. Nothing here touches storage.
package workflow

import (
	"sort"
	"time"

	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

type State struct {
	PR          dbmodels.PurchaseRequest
	Items       []dbmodels.PRItem
	Attachments []dbmodels.Attachment
	Approvals   []dbmodels.Approval
}

type Outcome struct {
	State  State
	Events []dbmodels.AuditEntry
}

func NewState(pr dbmodels.PurchaseRequest) State {
	s := State{
		PR:          pr,
		Items:       pr.Items,
		Attachments: pr.Attachments,
		Approvals:   pr.Approvals,
	}
	s.PR.Items = nil
	s.PR.Attachments = nil
	s.PR.Approvals = nil
	return s.clone()
}

// Aggregate folds the children back into the PR record for read models.
func (s State) Aggregate() dbmodels.PurchaseRequest {
	c := s.clone()
	pr := c.PR
	pr.Items = c.Items
	pr.Attachments = c.Attachments
	pr.Approvals = c.Approvals
	return pr
}

func (s State) clone() State {
	next := State{PR: s.PR}
	next.PR.AuditLog = append(dbmodels.AuditLog(nil), s.PR.AuditLog...)
	if s.Items != nil {
		next.Items = append([]dbmodels.PRItem{}, s.Items...)
	}
	if s.Attachments != nil {
		next.Attachments = append([]dbmodels.Attachment{}, s.Attachments...)
	}
	if s.Approvals != nil {
		next.Approvals = append([]dbmodels.Approval{}, s.Approvals...)
	}
	return next
}

func (s State) approvalIndex(level int) int {
	for idx, approval := range s.Approvals {
		if approval.Level == level {
			return idx
		}
	}
	return -1
}

func (s State) itemIndex(itemID string) int {
	for idx, item := range s.Items {
		if item.ID == itemID {
			return idx
		}
	}
	return -1
}

func (s State) attachmentIndex(attachmentID string) int {
	for idx, attachment := range s.Attachments {
		if attachment.ID == attachmentID {
			return idx
		}
	}
	return -1
}

func (s State) nextItemNumber() int {
	next := s.PR.LastItemNumber
	for _, item := range s.Items {
		if item.ItemNumber > next {
			next = item.ItemNumber
		}
	}
	return next + 1
}

func allApproved(approvals []dbmodels.Approval) bool {
	if len(approvals) == 0 {
		return false
	}
	for _, approval := range approvals {
		if approval.Status != models.ApprovalStatusApproved {
			return false
		}
	}
	return true
}

// currentLevel is the lowest pending level, or the chain length when nothing is pending.
func currentLevel(approvals []dbmodels.Approval) int {
	levels := make([]int, 0, len(approvals))
	for _, approval := range approvals {
		if approval.Status.IsPending() {
			levels = append(levels, approval.Level)
		}
	}
	if len(levels) == 0 {
		return len(approvals)
	}
	sort.Ints(levels)
	return levels[0]
}

// skipPending moves every pending entry to Skipped and returns the affected levels.
func skipPending(approvals []dbmodels.Approval, actor string, now time.Time) []int {
	skipped := []int{}
	for idx := range approvals {
		if !approvals[idx].Status.IsPending() {
			continue
		}
		approvals[idx].Status = models.ApprovalStatusSkipped
		approvals[idx].LastModifiedBy = actor
		approvals[idx].UpdatedAt = now
		skipped = append(skipped, approvals[idx].Level)
	}
	sort.Ints(skipped)
	return skipped
}

func touch(pr *dbmodels.PurchaseRequest, actor string, now time.Time) {
	pr.LastModifiedBy = actor
	pr.UpdatedAt = now
	pr.Version++
	pr.RecalcBudgetVariance()
}

func emit(s State, actor string, now time.Time, payload dbmodels.AuditPayload) Outcome {
	entry := dbmodels.NewAuditEntry(actor, now, payload)
	s.PR.AuditLog = append(s.PR.AuditLog, entry)
	return Outcome{
		State:  s,
		Events: []dbmodels.AuditEntry{entry},
	}
}

func requireActor(actor string) error {
	if actor == "" {
		return models.ValidationErrorf("actor is required")
	}
	return nil
}
