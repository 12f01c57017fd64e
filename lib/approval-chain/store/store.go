package approvalstore

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"procurement-backend/lib/utils/helpers"
	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

type Provider interface {
	Save(rec dbmodels.Approval) error
	Delete(prID string, ids []string) error
	GetByLevel(prID string, level int) (rec *dbmodels.Approval, err error)
	ListOverdue(now time.Time) (list []dbmodels.Approval, err error)
	ListPending(approverEmail string, now time.Time) (list []dbmodels.Approval, err error)
	ListForReminder(now time.Time, maxReminders, limit int) (list []dbmodels.Approval, err error)
	Stats(prID string, now time.Time) (stats dbmodels.ApprovalStats, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Save(rec dbmodels.Approval) error {
	return i.db.
		Omit(clause.Associations).
		Save(&rec).
		Error
}

func (i impl) Delete(prID string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return i.db.
		Where("pr_id = ?", prID).
		Where("id in (?)", ids).
		Delete(&dbmodels.Approval{}).
		Error
}

func (i impl) GetByLevel(prID string, level int) (*dbmodels.Approval, error) {
	rec := dbmodels.Approval{}
	err := i.db.
		Where("pr_id = ?", prID).
		Where("level = ?", level).
		First(&rec).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (i impl) ListOverdue(now time.Time) (list []dbmodels.Approval, err error) {
	list = []dbmodels.Approval{}
	err = i.pending().
		Where("approvals.due_date < ?", now).
		Order("approvals.due_date").
		Find(&list).
		Error
	return list, err
}

// ListPending returns entries still waiting on the approver and not yet overdue.
func (i impl) ListPending(approverEmail string, now time.Time) (list []dbmodels.Approval, err error) {
	list = []dbmodels.Approval{}
	err = i.pending().
		Where("approvals.approver_email = ?", helpers.NormalizeEmail(approverEmail)).
		Where("approvals.due_date >= ?", now).
		Order("approvals.due_date").
		Find(&list).
		Error
	return list, err
}

// ListForReminder picks overdue entries that were not reminded during the last day.
func (i impl) ListForReminder(now time.Time, maxReminders, limit int) (list []dbmodels.Approval, err error) {
	list = []dbmodels.Approval{}
	err = i.pending().
		Where("approvals.due_date < ?", now).
		Where("approvals.reminder_count < ?", maxReminders).
		Where("approvals.last_reminder_date is null or approvals.last_reminder_date < ?", now.Add(-24*time.Hour)).
		Order("approvals.due_date").
		Limit(limit).
		Find(&list).
		Error
	return list, err
}

func (i impl) Stats(prID string, now time.Time) (stats dbmodels.ApprovalStats, err error) {
	err = i.db.
		Model(&dbmodels.Approval{}).
		Where("pr_id = ?", prID).
		Select(`count(*) as total,
			count(*) filter (where status = ?) as pending,
			count(*) filter (where status = ?) as approved,
			count(*) filter (where status = ?) as rejected,
			count(*) filter (where status = ? and due_date < ?) as overdue`,
			models.ApprovalStatusPending, models.ApprovalStatusApproved, models.ApprovalStatusRejected,
			models.ApprovalStatusPending, now).
		Scan(&stats).
		Error
	return stats, err
}

// pending joins the request header so entries of deleted requests are skipped.
func (i impl) pending() *gorm.DB {
	return i.db.
		Model(&dbmodels.Approval{}).
		Joins("PurchaseRequest").
		Where("approvals.status = ?", models.ApprovalStatusPending).
		Where(`"PurchaseRequest".is_deleted = false`)
}
