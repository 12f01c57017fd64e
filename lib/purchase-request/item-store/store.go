package itemstore

import (
	"gorm.io/gorm"
	dbmodels "procurement-backend/models/db"
)

type Provider interface {
	Save(rec dbmodels.PRItem) error
	Delete(prID string, ids []string) error
	ListByPR(prID string) (list []dbmodels.PRItem, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

// Save inserts or overwrites the item row.
func (i impl) Save(rec dbmodels.PRItem) error {
	return i.db.
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
		Delete(&dbmodels.PRItem{}).
		Error
}

func (i impl) ListByPR(prID string) (list []dbmodels.PRItem, err error) {
	list = []dbmodels.PRItem{}
	err = i.db.
		Where("pr_id = ?", prID).
		Order("item_number").
		Find(&list).
		Error
	return list, err
}
