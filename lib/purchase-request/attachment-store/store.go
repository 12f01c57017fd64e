package attachmentstore

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"procurement-backend/models"
	dbmodels "procurement-backend/models/db"
)

type Provider interface {
	Save(rec dbmodels.Attachment) error
	GetByID(prID, id string) (rec *dbmodels.Attachment, err error)
	Stats(prID string) (stats dbmodels.AttachmentStats, err error)
}

func NewInstance(DB *gorm.DB) Provider {
	return &impl{
		db: DB,
	}
}

type impl struct {
	db *gorm.DB
}

func (i impl) Save(rec dbmodels.Attachment) error {
	return i.db.
		Save(&rec).
		Error
}

func (i impl) GetByID(prID, id string) (*dbmodels.Attachment, error) {
	rec := dbmodels.Attachment{}
	err := i.db.
		Where("id = ?", id).
		Where("pr_id = ?", prID).
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

// Stats covers active attachments only.
func (i impl) Stats(prID string) (stats dbmodels.AttachmentStats, err error) {
	row := struct {
		TotalFiles int64
		TotalSize  int64
	}{}
	tx := i.db.
		Model(&dbmodels.Attachment{}).
		Where("pr_id = ?", prID).
		Where("is_active = true")
	err = tx.Select("count(*) as total_files, coalesce(sum(size), 0) as total_size").
		Scan(&row).
		Error
	if err != nil {
		return stats, err
	}
	categories := []models.AttachmentCategory{}
	err = i.db.
		Model(&dbmodels.Attachment{}).
		Where("pr_id = ?", prID).
		Where("is_active = true").
		Distinct("category").
		Order("category").
		Pluck("category", &categories).
		Error
	if err != nil {
		return stats, err
	}
	stats.TotalFiles = row.TotalFiles
	stats.TotalSize = row.TotalSize
	stats.Categories = categories
	return stats, nil
}
