package models

type PRStatus string

const (
	PRStatusDraft       PRStatus = "Draft"
	PRStatusSubmitted   PRStatus = "Submitted"
	PRStatusUnderReview PRStatus = "Under Review"
	PRStatusApproved    PRStatus = "Approved"
	PRStatusRejected    PRStatus = "Rejected"
	PRStatusCancelled   PRStatus = "Cancelled"
)

var PRStatuses = []PRStatus{
	PRStatusDraft,
	PRStatusSubmitted,
	PRStatusUnderReview,
	PRStatusApproved,
	PRStatusRejected,
	PRStatusCancelled,
}

func (s PRStatus) Validate() error {
	for _, item := range PRStatuses {
		if s == item {
			return nil
		}
	}
	return ValidationErrorf("unknown status: %v", s)
}

// IsTerminal reports whether the request can no longer be edited.
func (s PRStatus) IsTerminal() bool {
	return s == PRStatusApproved || s == PRStatusRejected || s == PRStatusCancelled
}

func (s PRStatus) AllowSubmit() bool {
	return s == PRStatusDraft
}

func (s PRStatus) AllowCancel() bool {
	return s == PRStatusDraft || s == PRStatusSubmitted || s == PRStatusUnderReview
}

func (s PRStatus) AllowEdit() bool {
	return !s.IsTerminal()
}

// AllowItemChange covers add/update/remove of line items.
func (s PRStatus) AllowItemChange() bool {
	return !s.IsTerminal()
}

func (s PRStatus) AllowDelete() bool {
	return s != PRStatusApproved
}

type Department string

const (
	DepartmentIT         Department = "IT"
	DepartmentHR         Department = "HR"
	DepartmentFinance    Department = "Finance"
	DepartmentMarketing  Department = "Marketing"
	DepartmentOperations Department = "Operations"
	DepartmentFacilities Department = "Facilities"
	DepartmentLegal      Department = "Legal"
)

var Departments = []Department{
	DepartmentIT,
	DepartmentHR,
	DepartmentFinance,
	DepartmentMarketing,
	DepartmentOperations,
	DepartmentFacilities,
	DepartmentLegal,
}

func (d Department) Validate() error {
	for _, item := range Departments {
		if d == item {
			return nil
		}
	}
	return ValidationErrorf("unknown department: %v", d)
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return nil
	}
	return ValidationErrorf("unknown priority: %v", p)
}

type Currency string

const (
	CurrencyINR Currency = "INR"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

func (c Currency) Validate() error {
	switch c {
	case CurrencyINR, CurrencyUSD, CurrencyEUR, CurrencyGBP:
		return nil
	}
	return ValidationErrorf("unknown currency: %v", c)
}

type ItemCategory string

const (
	ItemCategoryITHardware     ItemCategory = "IT Hardware"
	ItemCategorySoftware       ItemCategory = "Software"
	ItemCategoryOfficeSupplies ItemCategory = "Office Supplies"
	ItemCategoryServices       ItemCategory = "Services"
	ItemCategoryEquipment      ItemCategory = "Equipment"
	ItemCategoryMaintenance    ItemCategory = "Maintenance"
)

func (c ItemCategory) Validate() error {
	switch c {
	case ItemCategoryITHardware, ItemCategorySoftware, ItemCategoryOfficeSupplies,
		ItemCategoryServices, ItemCategoryEquipment, ItemCategoryMaintenance:
		return nil
	}
	return ValidationErrorf("unknown item category: %v", c)
}

type ItemUnit string

const (
	ItemUnitEach  ItemUnit = "Each"
	ItemUnitPiece ItemUnit = "Piece"
	ItemUnitSet   ItemUnit = "Set"
	ItemUnitHour  ItemUnit = "Hour"
	ItemUnitDay   ItemUnit = "Day"
	ItemUnitMonth ItemUnit = "Month"
	ItemUnitYear  ItemUnit = "Year"
)

func (u ItemUnit) Validate() error {
	switch u {
	case ItemUnitEach, ItemUnitPiece, ItemUnitSet, ItemUnitHour, ItemUnitDay, ItemUnitMonth, ItemUnitYear:
		return nil
	}
	return ValidationErrorf("unknown unit: %v", u)
}

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "Pending"
	ItemStatusOrdered   ItemStatus = "Ordered"
	ItemStatusDelivered ItemStatus = "Delivered"
	ItemStatusCancelled ItemStatus = "Cancelled"
)

func (s ItemStatus) Validate() error {
	switch s {
	case ItemStatusPending, ItemStatusOrdered, ItemStatusDelivered, ItemStatusCancelled:
		return nil
	}
	return ValidationErrorf("unknown item status: %v", s)
}

type AttachmentCategory string

const (
	AttachmentCategoryQuote         AttachmentCategory = "Quote"
	AttachmentCategorySpecification AttachmentCategory = "Specification"
	AttachmentCategoryDrawing       AttachmentCategory = "Drawing"
	AttachmentCategoryContract      AttachmentCategory = "Contract"
	AttachmentCategoryOther         AttachmentCategory = "Other"
)

func (c AttachmentCategory) Validate() error {
	switch c {
	case AttachmentCategoryQuote, AttachmentCategorySpecification, AttachmentCategoryDrawing,
		AttachmentCategoryContract, AttachmentCategoryOther:
		return nil
	}
	return ValidationErrorf("unknown attachment category: %v", c)
}

type AccessLevel string

const (
	AccessLevelPublic       AccessLevel = "Public"
	AccessLevelInternal     AccessLevel = "Internal"
	AccessLevelConfidential AccessLevel = "Confidential"
)

func (a AccessLevel) Validate() error {
	switch a {
	case AccessLevelPublic, AccessLevelInternal, AccessLevelConfidential:
		return nil
	}
	return ValidationErrorf("unknown access level: %v", a)
}

type ApprovalStatus string

const (
	ApprovalStatusPending   ApprovalStatus = "Pending"
	ApprovalStatusApproved  ApprovalStatus = "Approved"
	ApprovalStatusRejected  ApprovalStatus = "Rejected"
	ApprovalStatusSkipped   ApprovalStatus = "Skipped"
	ApprovalStatusDelegated ApprovalStatus = "Delegated"
)

func (s ApprovalStatus) IsPending() bool {
	return s == ApprovalStatusPending
}

type ApprovalLevelName string

const (
	LevelManager        ApprovalLevelName = "Manager"
	LevelFinance        ApprovalLevelName = "Finance"
	LevelDirector       ApprovalLevelName = "Director"
	LevelCEO            ApprovalLevelName = "CEO"
	LevelDepartmentHead ApprovalLevelName = "Department Head"
	LevelBudgetOwner    ApprovalLevelName = "Budget Owner"
	LevelLegal          ApprovalLevelName = "Legal"
	LevelCompliance     ApprovalLevelName = "Compliance"
	LevelProcurement    ApprovalLevelName = "Procurement"
	LevelExecutive      ApprovalLevelName = "Executive"
)

func (n ApprovalLevelName) Validate() error {
	switch n {
	case LevelManager, LevelFinance, LevelDirector, LevelCEO, LevelDepartmentHead,
		LevelBudgetOwner, LevelLegal, LevelCompliance, LevelProcurement, LevelExecutive:
		return nil
	}
	return ValidationErrorf("unknown approval level name: %v", n)
}

type BulkAction string

const (
	BulkActionSubmit BulkAction = "submit"
	BulkActionReject BulkAction = "reject"
)

func (a BulkAction) Validate() error {
	switch a {
	case BulkActionSubmit, BulkActionReject:
		return nil
	}
	return ValidationErrorf("unknown bulk action: %v", a)
}

const (
	MaxItemQuantity    = 10000
	MaxItemUnitPrice   = 10_000_000
	MaxEstimatedBudget = 50_000_000
	MaxAttachmentSize  = 10 * 1024 * 1024
	MaxApprovalLevel   = 10
)
