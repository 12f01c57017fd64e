package prhandler

import (
	"reflect"

	"gorm.io/gorm"
	approvalstore "procurement-backend/lib/approval-chain/store"
	attachmentstore "procurement-backend/lib/purchase-request/attachment-store"
	itemstore "procurement-backend/lib/purchase-request/item-store"
	prstore "procurement-backend/lib/purchase-request/store"
	"procurement-backend/lib/workflow"
	dbmodels "procurement-backend/models/db"
)

// Stores groups the stores of one aggregate bound to the same *gorm.DB.
type Stores struct {
	PR          prstore.Provider
	Items       itemstore.Provider
	Attachments attachmentstore.Provider
	Approvals   approvalstore.Provider
}

func NewStores(DB *gorm.DB) Stores {
	return Stores{
		PR:          prstore.NewInstance(DB),
		Items:       itemstore.NewInstance(DB),
		Attachments: attachmentstore.NewInstance(DB),
		Approvals:   approvalstore.NewInstance(DB),
	}
}

// TxRunner runs fn with stores bound to a single transaction.
type TxRunner func(fn func(s Stores) error) error

func NewTxRunner(DB *gorm.DB) TxRunner {
	return func(fn func(s Stores) error) error {
		return DB.Transaction(func(tx *gorm.DB) error {
			return fn(NewStores(tx))
		})
	}
}

// persist writes the difference between two snapshots. Removed children go first
// so replaced item numbers and approval levels do not hit their unique indexes.
func persist(s Stores, prev workflow.State, outcome workflow.Outcome) error {
	next := outcome.State
	removedItems, changedItems := diff(prev.Items, next.Items, func(rec dbmodels.PRItem) string { return rec.ID })
	removedApprovals, changedApprovals := diff(prev.Approvals, next.Approvals, func(rec dbmodels.Approval) string { return rec.ID })
	_, changedAttachments := diff(prev.Attachments, next.Attachments, func(rec dbmodels.Attachment) string { return rec.ID })

	if err := s.Items.Delete(next.PR.ID, removedItems); err != nil {
		return err
	}
	if err := s.Approvals.Delete(next.PR.ID, removedApprovals); err != nil {
		return err
	}
	if err := s.PR.Save(next.PR); err != nil {
		return err
	}
	for _, rec := range changedItems {
		if err := s.Items.Save(rec); err != nil {
			return err
		}
	}
	for _, rec := range changedAttachments {
		if err := s.Attachments.Save(rec); err != nil {
			return err
		}
	}
	for _, rec := range changedApprovals {
		if err := s.Approvals.Save(rec); err != nil {
			return err
		}
	}
	return s.PR.AppendAudit(next.PR.ID, outcome.Events)
}

// insert stores a freshly created aggregate.
func insert(s Stores, outcome workflow.Outcome) error {
	header := outcome.State.PR
	header.AuditLog = dbmodels.AuditLog{}
	if _, err := s.PR.Create(header); err != nil {
		return err
	}
	for _, rec := range outcome.State.Items {
		if err := s.Items.Save(rec); err != nil {
			return err
		}
	}
	for _, rec := range outcome.State.Attachments {
		if err := s.Attachments.Save(rec); err != nil {
			return err
		}
	}
	for _, rec := range outcome.State.Approvals {
		if err := s.Approvals.Save(rec); err != nil {
			return err
		}
	}
	return s.PR.AppendAudit(header.ID, outcome.Events)
}

func diff[T any](prev, next []T, id func(T) string) (removed []string, changed []T) {
	before := make(map[string]T, len(prev))
	for _, rec := range prev {
		before[id(rec)] = rec
	}
	kept := make(map[string]bool, len(next))
	for _, rec := range next {
		kept[id(rec)] = true
		if old, ok := before[id(rec)]; ok && reflect.DeepEqual(old, rec) {
			continue
		}
		changed = append(changed, rec)
	}
	for _, rec := range prev {
		if !kept[id(rec)] {
			removed = append(removed, id(rec))
		}
	}
	return removed, changed
}
