package prapimodels

import (
	"time"

	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

type PRView struct {
	PRData
	ID                   string          `json:"id"`
	PRNumber             string          `json:"pr_number"`
	Status               models.PRStatus `json:"status"`
	BudgetVariance       float64         `json:"budget_variance"`
	CalculatedTotal      float64         `json:"calculated_total"`
	CurrentApprovalLevel int             `json:"current_approval_level"`
	TotalApprovalLevels  int             `json:"total_approval_levels"`
	ApprovalProgress     int             `json:"approval_progress"` // percent
	SubmittedDate        *time.Time      `json:"submitted_date"`
	ApprovedDate         *time.Time      `json:"approved_date"`
	RejectedDate         *time.Time      `json:"rejected_date"`
	CancelledDate        *time.Time      `json:"cancelled_date"`
	RejectionReason      string          `json:"rejection_reason,omitempty"`
	CancellationReason   string          `json:"cancellation_reason,omitempty"`
	CreatedBy            string          `json:"created_by"`
	LastModifiedBy       string          `json:"last_modified_by"`
	Version              int             `json:"version"`
	CreatedDate          time.Time       `json:"created_date"`
	UpdatedDate          time.Time       `json:"updated_date"`

	Items       []ItemView        `json:"items"`
	Attachments []AttachmentView  `json:"attachments"`
	Approvals   []ApprovalView    `json:"approvals"`
	AuditLog    dbmodels.AuditLog `json:"audit_log,omitempty"`
}

type ItemView struct {
	ItemData
	ID         string    `json:"id"`
	ItemNumber int       `json:"item_number"`
	Total      float64   `json:"total"`
	CreatedBy  string    `json:"created_by"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type AttachmentView struct {
	AttachmentData
	ID               string     `json:"id"`
	SizeFormatted    string     `json:"size_formatted"`
	UploadDate       time.Time  `json:"upload_date"`
	UploadedBy       string     `json:"uploaded_by"`
	IsActive         bool       `json:"is_active"`
	DownloadCount    int        `json:"download_count"`
	LastAccessedDate *time.Time `json:"last_accessed_date"`
	LastAccessedBy   string     `json:"last_accessed_by,omitempty"`
}

type ApprovalView struct {
	ApprovalData
	ID               string                `json:"id"`
	PRID             string                `json:"pr_id"`
	Level            int                   `json:"level"`
	Status           models.ApprovalStatus `json:"status"`
	Comments         string                `json:"comments,omitempty"`
	ApprovedDate     *time.Time            `json:"approved_date"`
	IsOverdue        bool                  `json:"is_overdue"`
	DaysOverdue      int                   `json:"days_overdue"`
	ApprovalDuration *int                  `json:"approval_duration"` // days
	DelegatedFrom    string                `json:"delegated_from,omitempty"`
	DelegatedTo      string                `json:"delegated_to,omitempty"`
	DelegationReason string                `json:"delegation_reason,omitempty"`
	IsEscalated      bool                  `json:"is_escalated"`
	EscalatedDate    *time.Time            `json:"escalated_date"`
	EscalatedBy      string                `json:"escalated_by,omitempty"`
	EscalationReason string                `json:"escalation_reason,omitempty"`
	ReminderCount    int                   `json:"reminder_count"`
	LastReminderDate *time.Time            `json:"last_reminder_date"`
	PRNumber         string                `json:"pr_number,omitempty"`
	PRTitle          string                `json:"pr_title,omitempty"`
}

type BulkResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type StatsView struct {
	Overview     dbmodels.StatsOverview    `json:"overview"`
	ByDepartment []dbmodels.DepartmentStat `json:"by_department"`
}

type DashboardView struct {
	StatusCounts     []dbmodels.StatusCount `json:"status_counts"`
	RecentPRs        []PRView               `json:"recent_prs"`
	PendingApprovals []PRView               `json:"pending_approvals"`
}

func dataOf(rec dbmodels.PurchaseRequest) PRData {
	return PRData{
		Title:                 rec.Title,
		Description:           rec.Description,
		Department:            rec.Department,
		Requestor:             rec.Requestor,
		RequestorEmail:        rec.RequestorEmail,
		CostCenter:            rec.CostCenter,
		BusinessJustification: rec.BusinessJustification,
		Priority:              rec.Priority,
		RequiredDate:          rec.RequiredDate,
		EstimatedBudget:       rec.EstimatedBudget,
		ActualSpend:           rec.ActualSpend,
		Currency:              rec.Currency,
		PreferredVendor:       rec.PreferredVendor,
		VendorContact:         rec.VendorContact,
		VendorEmail:           rec.VendorEmail,
		VendorPhone:           rec.VendorPhone,
		VendorNotes:           rec.VendorNotes,
		DirectManager:         rec.DirectManager,
		FinanceApprover:       rec.FinanceApprover,
		ApproverInstructions:  rec.ApproverInstructions,
		InternalNotes:         rec.InternalNotes,
	}
}

// PRConvert renders the full aggregate, audit trail included.
func PRConvert(rec dbmodels.PurchaseRequest, now time.Time) PRView {
	view := PRListConvert(rec, now)
	view.AuditLog = rec.AuditLog
	if view.AuditLog == nil {
		view.AuditLog = dbmodels.AuditLog{}
	}
	return view
}

// PRListConvert drops the audit trail.
func PRListConvert(rec dbmodels.PurchaseRequest, now time.Time) PRView {
	view := PRView{
		PRData:               dataOf(rec),
		ID:                   rec.ID,
		PRNumber:             rec.PRNumber,
		Status:               rec.Status,
		BudgetVariance:       rec.BudgetVariance,
		CalculatedTotal:      rec.CalculatedTotal(),
		CurrentApprovalLevel: rec.CurrentApprovalLevel,
		TotalApprovalLevels:  rec.TotalApprovalLevels,
		ApprovalProgress:     rec.ApprovalProgress(),
		SubmittedDate:        rec.SubmittedDate,
		ApprovedDate:         rec.ApprovedDate,
		RejectedDate:         rec.RejectedDate,
		CancelledDate:        rec.CancelledDate,
		RejectionReason:      rec.RejectionReason,
		CancellationReason:   rec.CancellationReason,
		CreatedBy:            rec.CreatedBy,
		LastModifiedBy:       rec.LastModifiedBy,
		Version:              rec.Version,
		CreatedDate:          rec.CreatedAt,
		UpdatedDate:          rec.UpdatedAt,
		Items:                make([]ItemView, 0, len(rec.Items)),
		Attachments:          make([]AttachmentView, 0, len(rec.Attachments)),
		Approvals:            make([]ApprovalView, 0, len(rec.Approvals)),
	}
	for _, item := range rec.Items {
		view.Items = append(view.Items, ItemConvert(item))
	}
	for _, attachment := range rec.Attachments {
		view.Attachments = append(view.Attachments, AttachmentConvert(attachment))
	}
	for _, approval := range rec.Approvals {
		view.Approvals = append(view.Approvals, ApprovalConvert(approval, now))
	}
	return view
}

func PRListConvertAll(list []dbmodels.PurchaseRequest, now time.Time) []PRView {
	result := make([]PRView, 0, len(list))
	for _, rec := range list {
		result = append(result, PRListConvert(rec, now))
	}
	return result
}

func ItemConvert(rec dbmodels.PRItem) ItemView {
	return ItemView{
		ItemData: ItemData{
			Description:  rec.Description,
			Category:     rec.Category,
			Quantity:     rec.Quantity,
			Unit:         rec.Unit,
			UnitPrice:    rec.UnitPrice,
			Supplier:     rec.Supplier,
			DeliveryDate: rec.DeliveryDate,
			Notes:        rec.Notes,
			Status:       rec.Status,
		},
		ID:         rec.ID,
		ItemNumber: rec.ItemNumber,
		Total:      rec.Total,
		CreatedBy:  rec.CreatedBy,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func AttachmentConvert(rec dbmodels.Attachment) AttachmentView {
	return AttachmentView{
		AttachmentData: AttachmentData{
			Filename:     rec.Filename,
			OriginalName: rec.OriginalName,
			MimeType:     rec.MimeType,
			Size:         rec.Size,
			Path:         rec.Path,
			Description:  rec.Description,
			Category:     rec.Category,
			AccessLevel:  rec.AccessLevel,
			Version:      rec.Version,
		},
		ID:               rec.ID,
		SizeFormatted:    rec.SizeFormatted(),
		UploadDate:       rec.UploadDate,
		UploadedBy:       rec.UploadedBy,
		IsActive:         rec.IsActive,
		DownloadCount:    rec.DownloadCount,
		LastAccessedDate: rec.LastAccessedDate,
		LastAccessedBy:   rec.LastAccessedBy,
	}
}

func ApprovalConvert(rec dbmodels.Approval, now time.Time) ApprovalView {
	view := ApprovalView{
		ApprovalData: ApprovalData{
			LevelName:          rec.LevelName,
			Approver:           rec.Approver,
			ApproverEmail:      rec.ApproverEmail,
			ApproverDepartment: rec.ApproverDepartment,
			DueDate:            rec.DueDate,
			Conditions:         rec.ApprovalConditions,
		},
		ID:               rec.ID,
		PRID:             rec.PRID,
		Level:            rec.Level,
		Status:           rec.Status,
		Comments:         rec.Comments,
		ApprovedDate:     rec.ApprovedDate,
		IsOverdue:        rec.IsOverdue(now),
		DaysOverdue:      rec.DaysOverdue(now),
		ApprovalDuration: rec.ApprovalDuration(),
		DelegatedFrom:    rec.DelegatedFrom,
		DelegatedTo:      rec.DelegatedTo,
		DelegationReason: rec.DelegationReason,
		IsEscalated:      rec.IsEscalated,
		EscalatedDate:    rec.EscalatedDate,
		EscalatedBy:      rec.EscalatedBy,
		EscalationReason: rec.EscalationReason,
		ReminderCount:    rec.ReminderCount,
		LastReminderDate: rec.LastReminderDate,
	}
	if rec.PurchaseRequest != nil {
		view.PRNumber = rec.PurchaseRequest.PRNumber
		view.PRTitle = rec.PurchaseRequest.Title
	}
	return view
}

func ApprovalConvertAll(list []dbmodels.Approval, now time.Time) []ApprovalView {
	result := make([]ApprovalView, 0, len(list))
	for _, rec := range list {
		result = append(result, ApprovalConvert(rec, now))
	}
	return result
}
