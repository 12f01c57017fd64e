package dbmodels

import "procurement-backend/models"

type StatsOverview struct {
	TotalPRs     int64   `gorm:"column:total_prs" json:"total_prs"`
	DraftPRs     int64   `gorm:"column:draft_prs" json:"draft_prs"`
	SubmittedPRs int64   `gorm:"column:submitted_prs" json:"submitted_prs"`
	ApprovedPRs  int64   `gorm:"column:approved_prs" json:"approved_prs"`
	RejectedPRs  int64   `gorm:"column:rejected_prs" json:"rejected_prs"`
	TotalValue   float64 `gorm:"column:total_value" json:"total_value"`
	AvgValue     float64 `gorm:"column:avg_value" json:"avg_value"`
}

type StatusCount struct {
	Status models.PRStatus `json:"status"`
	Count  int64           `json:"count"`
}

type DepartmentStat struct {
	Department models.Department `json:"department"`
	Count      int64             `json:"count"`
	TotalValue float64           `json:"total_value"`
}

