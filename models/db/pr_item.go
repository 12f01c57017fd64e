package dbmodels

import (
	"time"

	"gorm.io/gorm"
	"procurement-backend/models"
)

type PRItem struct {
	BaseModel
	PRID           string              `gorm:"type:varchar(36);uniqueIndex:idx_pr_item_number"`
	ItemNumber     int                 `gorm:"uniqueIndex:idx_pr_item_number"`
	Description    string              `gorm:"type:varchar(200)"`
	Category       models.ItemCategory `gorm:"type:varchar(50);index"`
	Quantity       int
	Unit           models.ItemUnit `gorm:"type:varchar(20)"`
	UnitPrice      float64
	Total          float64
	Supplier       string `gorm:"type:varchar(100)"`
	DeliveryDate   *time.Time
	Status         models.ItemStatus `gorm:"type:varchar(20);index"`
	Notes          string            `gorm:"type:varchar(200)"`
	CreatedBy      string            `gorm:"type:varchar(255)"`
	LastModifiedBy string            `gorm:"type:varchar(255)"`
}

func (i *PRItem) BeforeSave(tx *gorm.DB) error {
	i.RecalcTotal()
	return nil
}

func (i *PRItem) RecalcTotal() {
	i.Total = float64(i.Quantity) * i.UnitPrice
}
