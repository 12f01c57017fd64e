package dbmodels

import (
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"procurement-backend/models"
)

type PurchaseRequest struct {
	BaseModel
	PRNumber              string            `gorm:"type:varchar(20);uniqueIndex"`
	Title                 string            `gorm:"type:varchar(100)"`
	Description           string
	Department            models.Department `gorm:"type:varchar(50);index"`
	Requestor             string            `gorm:"type:varchar(50);index"`
	RequestorEmail        string            `gorm:"type:varchar(255)"`
	CostCenter            string            `gorm:"type:varchar(20)"`
	BusinessJustification string            `gorm:"type:varchar(500)"`
	Priority              models.Priority   `gorm:"type:varchar(20);index"`
	RequiredDate          *time.Time
	EstimatedBudget       float64
	ActualSpend           float64
	BudgetVariance        float64
	Currency              models.Currency `gorm:"type:varchar(3)"`
	PreferredVendor       string          `gorm:"type:varchar(100)"`
	VendorContact         string          `gorm:"type:varchar(50)"`
	VendorEmail           string          `gorm:"type:varchar(255)"`
	VendorPhone           string          `gorm:"type:varchar(50)"`
	VendorNotes           string          `gorm:"type:varchar(300)"`
	DirectManager         string          `gorm:"type:varchar(50)"`
	FinanceApprover       string          `gorm:"type:varchar(50)"`
	ApproverInstructions  string          `gorm:"type:varchar(300)"`
	Status                models.PRStatus `gorm:"type:varchar(20);index"`
	CurrentApprovalLevel  int
	TotalApprovalLevels   int
	LastItemNumber        int
	SubmittedDate         *time.Time
	ApprovedDate          *time.Time
	RejectedDate          *time.Time
	CancelledDate         *time.Time
	RejectionReason       string `gorm:"type:varchar(500)"`
	CancellationReason    string `gorm:"type:varchar(500)"`
	InternalNotes         string `gorm:"type:varchar(1000)"`
	CreatedBy             string `gorm:"type:varchar(255)"`
	LastModifiedBy        string `gorm:"type:varchar(255)"`
	Version               int
	AuditLog              AuditLog `gorm:"type:jsonb;default:'[]'"`
	IsDeleted             bool     `gorm:"index"`
	DeletedDate           *time.Time
	DeletedBy             string       `gorm:"type:varchar(255)"`
	Items                 []PRItem     `gorm:"foreignKey:PRID;constraint:OnDelete:CASCADE"`
	Attachments           []Attachment `gorm:"foreignKey:PRID;constraint:OnDelete:CASCADE"`
	Approvals             []Approval   `gorm:"foreignKey:PRID;constraint:OnDelete:CASCADE"`
}

func (p *PurchaseRequest) BeforeSave(tx *gorm.DB) error {
	p.RecalcBudgetVariance()
	return nil
}

func (p *PurchaseRequest) RecalcBudgetVariance() {
	p.BudgetVariance = p.EstimatedBudget - p.ActualSpend
}

// CalculatedTotal is the sum of line item totals.
func (p PurchaseRequest) CalculatedTotal() float64 {
	total := 0.0
	for _, item := range p.Items {
		total += item.Total
	}
	return total
}

// ApprovalProgress is the share of approved chain entries, in percent.
func (p PurchaseRequest) ApprovalProgress() int {
	if len(p.Approvals) == 0 {
		return 0
	}
	approved := 0
	for _, approval := range p.Approvals {
		if approval.Status == models.ApprovalStatusApproved {
			approved++
		}
	}
	return int(math.Round(float64(approved) / float64(len(p.Approvals)) * 100))
}

func FormatPRNumber(year int, seq int64) string {
	return fmt.Sprintf("PR-%d-%06d", year, seq)
}
