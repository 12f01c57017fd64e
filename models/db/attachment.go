package dbmodels

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"procurement-backend/models"
)

type Attachment struct {
	BaseModel
	PRID             string `gorm:"type:varchar(36);index"`
	Filename         string `gorm:"type:varchar(255);index"`
	OriginalName     string `gorm:"type:varchar(255)"`
	MimeType         string `gorm:"type:varchar(100)"`
	Size             int64
	Path             string `gorm:"type:varchar(500)"`
	UploadDate       time.Time
	UploadedBy       string                    `gorm:"type:varchar(255);index"`
	Description      string                    `gorm:"type:varchar(200)"`
	Category         models.AttachmentCategory `gorm:"type:varchar(50);index"`
	Version          int
	IsActive         bool               `gorm:"index"`
	AccessLevel      models.AccessLevel `gorm:"type:varchar(20)"`
	LastAccessedDate *time.Time
	LastAccessedBy   string `gorm:"type:varchar(255)"`
	DownloadCount    int
	DeactivatedBy    string `gorm:"type:varchar(255)"`
	DeactivatedDate  *time.Time
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// SizeFormatted renders the size with a binary unit, e.g. "1.5 KB".
func (a Attachment) SizeFormatted() string {
	if a.Size <= 0 {
		return "0 Bytes"
	}
	i := int(math.Floor(math.Log(float64(a.Size)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	value := math.Round(float64(a.Size)/math.Pow(1024, float64(i))*100) / 100
	return fmt.Sprintf("%s %s", strconv.FormatFloat(value, 'f', -1, 64), sizeUnits[i])
}
