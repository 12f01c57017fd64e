package dbmodels

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"procurement-backend/models"
)

type Approval struct {
	BaseModel
	PRID               string                   `gorm:"type:varchar(36);uniqueIndex:idx_pr_approval_level"`
	Level              int                      `gorm:"uniqueIndex:idx_pr_approval_level"`
	LevelName          models.ApprovalLevelName `gorm:"type:varchar(50)"`
	Approver           string                   `gorm:"type:varchar(50)"`
	ApproverEmail      string                   `gorm:"type:varchar(255);index"`
	ApproverDepartment string                   `gorm:"type:varchar(50)"`
	Status             models.ApprovalStatus    `gorm:"type:varchar(20);index"`
	Comments           string                   `gorm:"type:varchar(500)"`
	ApprovedDate       *time.Time
	DueDate            time.Time `gorm:"index"`
	DelegatedFrom      string    `gorm:"type:varchar(255)"`
	DelegatedTo        string    `gorm:"type:varchar(255)"`
	DelegationReason   string    `gorm:"type:varchar(200)"`
	IsEscalated        bool
	EscalatedDate      *time.Time
	EscalatedBy        string `gorm:"type:varchar(255)"`
	EscalationReason   string `gorm:"type:varchar(200)"`
	ReminderSent       bool
	ReminderCount      int
	LastReminderDate   *time.Time
	ApprovalConditions ApprovalConditions `gorm:"type:jsonb;default:'[]'"`
	CreatedBy          string             `gorm:"type:varchar(255)"`
	LastModifiedBy     string             `gorm:"type:varchar(255)"`
	PurchaseRequest    *PurchaseRequest   `gorm:"foreignKey:PRID"`
}

const day = 24 * time.Hour

func (a Approval) IsOverdue(now time.Time) bool {
	return a.Status == models.ApprovalStatusPending && a.DueDate.Before(now)
}

// DaysOverdue counts whole days past the due date of a pending entry.
func (a Approval) DaysOverdue(now time.Time) int {
	if !a.IsOverdue(now) {
		return 0
	}
	return int(now.Sub(a.DueDate) / day)
}

// ApprovalDuration counts whole days from creation to approval; nil until approved.
func (a Approval) ApprovalDuration() *int {
	if a.ApprovedDate == nil || a.CreatedAt.IsZero() {
		return nil
	}
	days := int(a.ApprovedDate.Sub(a.CreatedAt) / day)
	return &days
}

type ApprovalCondition struct {
	Condition string     `json:"condition"`
	IsMet     bool       `json:"is_met"`
	MetDate   *time.Time `json:"met_date,omitempty"`
}

type ApprovalConditions []ApprovalCondition

func (j ApprovalConditions) Value() (driver.Value, error) {
	if j == nil {
		return "[]", nil
	}
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *ApprovalConditions) Scan(value any) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	case nil:
		*j = ApprovalConditions{}
		return nil
	}
	return errors.Errorf("unsupported approval conditions type %T", value)
}

type ApprovalStats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
	Overdue  int64 `json:"overdue"`
}

type AttachmentStats struct {
	TotalFiles int64                       `json:"total_files"`
	TotalSize  int64                       `json:"total_size"`
	Categories []models.AttachmentCategory `json:"categories"`
}
