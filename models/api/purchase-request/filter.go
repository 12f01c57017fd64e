package prapimodels

import (
	"regexp"
	"time"

	"procurement-backend/models"
	apimodels "procurement-backend/models/api"
)

// sortColumns maps accepted sort_by values onto table columns.
var sortColumns = map[string]string{
	"created_date":     "created_at",
	"updated_date":     "updated_at",
	"pr_number":        "pr_number",
	"title":            "title",
	"department":       "department",
	"requestor":        "requestor",
	"priority":         "priority",
	"status":           "status",
	"estimated_budget": "estimated_budget",
	"required_date":    "required_date",
}

type PRFilter struct {
	apimodels.Pagination
	Status     models.PRStatus   `json:"status"`
	Department models.Department `json:"department"`
	Requestor  string            `json:"requestor"`
	Priority   models.Priority   `json:"priority"`
	Search     string            `json:"search"`     // case-insensitive pattern over number, title and justification
	SortBy     string            `json:"sort_by"`    // created_date by default
	SortOrder  string            `json:"sort_order"` // asc or desc, desc by default
}

// validateEnums checks the optional status, department and priority filters.
func validateEnums(status models.PRStatus, department models.Department, priority models.Priority) error {
	if status != "" {
		if err := status.Validate(); err != nil {
			return err
		}
	}
	if department != "" {
		if err := department.Validate(); err != nil {
			return err
		}
	}
	if priority != "" {
		if err := priority.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f PRFilter) Validate() error {
	if err := validateEnums(f.Status, f.Department, f.Priority); err != nil {
		return err
	}
	if f.SortBy != "" {
		if _, ok := sortColumns[f.SortBy]; !ok {
			return models.ValidationErrorf("unsupported sort_by: %s", f.SortBy)
		}
	}
	if f.SortOrder != "" && f.SortOrder != "asc" && f.SortOrder != "desc" {
		return models.ValidationErrorf("sort_order must be asc or desc")
	}
	return validatePattern(f.Search)
}

// GetSort returns a safe ORDER BY clause.
func (f PRFilter) GetSort() string {
	column, ok := sortColumns[f.SortBy]
	if !ok {
		column = "created_at"
	}
	if f.SortOrder == "asc" {
		return column + " asc"
	}
	return column + " desc"
}

type SearchFilter struct {
	apimodels.Pagination
	Query      string            `json:"query"`
	Department models.Department `json:"department"`
	Status     models.PRStatus   `json:"status"`
	Priority   models.Priority   `json:"priority"`
	Requestor  string            `json:"requestor"`
	BudgetMin  *float64          `json:"budget_min"`
	BudgetMax  *float64          `json:"budget_max"`
	DateFrom   string            `json:"date_from"` // YYYY-MM-DD
	DateTo     string            `json:"date_to"`   // YYYY-MM-DD, inclusive
}

func (f SearchFilter) Validate() error {
	if err := validateEnums(f.Status, f.Department, f.Priority); err != nil {
		return err
	}
	if f.BudgetMin != nil && f.BudgetMax != nil && *f.BudgetMin > *f.BudgetMax {
		return models.ValidationErrorf("budget_min cannot exceed budget_max")
	}
	if _, err := NewDateRange(f.DateFrom, f.DateTo); err != nil {
		return err
	}
	return validatePattern(f.Query)
}

func (f SearchFilter) GetDateRange() DateRange {
	r, _ := NewDateRange(f.DateFrom, f.DateTo)
	return r
}

type ExportFilter struct {
	Status     models.PRStatus   `query:"status"`
	Department models.Department `query:"department"`
	DateFrom   string            `query:"date_from"`
	DateTo     string            `query:"date_to"`
}

func (f ExportFilter) Validate() error {
	if err := validateEnums(f.Status, f.Department, ""); err != nil {
		return err
	}
	_, err := NewDateRange(f.DateFrom, f.DateTo)
	return err
}

func (f ExportFilter) GetDateRange() DateRange {
	r, _ := NewDateRange(f.DateFrom, f.DateTo)
	return r
}

// DateRange bounds created_at: From inclusive, Before exclusive.
type DateRange struct {
	From   *time.Time
	Before *time.Time
}

func NewDateRange(from, to string) (DateRange, error) {
	r := DateRange{}
	if from != "" {
		date, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return r, models.ValidationErrorf("invalid date_from: %s", from)
		}
		r.From = &date
	}
	if to != "" {
		date, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return r, models.ValidationErrorf("invalid date_to: %s", to)
		}
		before := date.AddDate(0, 0, 1)
		r.Before = &before
	}
	if r.From != nil && r.Before != nil && !r.From.Before(*r.Before) {
		return r, models.ValidationErrorf("date_from cannot be after date_to")
	}
	return r, nil
}

func validatePattern(pattern string) error {
	if pattern == "" {
		return nil
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return models.ValidationErrorf("invalid search pattern: %s", pattern)
	}
	return nil
}
