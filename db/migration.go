package db

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	dbmodels "procurement-backend/models/db"
)

func AutoMigrateDB() error {
	log.Info("running migrations")
	if err := DB.AutoMigrate(&dbmodels.PurchaseRequest{}); err != nil {
		return errors.Wrap(err, "error migrating PurchaseRequest")
	}
	if err := DB.AutoMigrate(&dbmodels.PRItem{}); err != nil {
		return errors.Wrap(err, "error migrating PRItem")
	}
	if err := DB.AutoMigrate(&dbmodels.Attachment{}); err != nil {
		return errors.Wrap(err, "error migrating Attachment")
	}
	if err := DB.AutoMigrate(&dbmodels.Approval{}); err != nil {
		return errors.Wrap(err, "error migrating Approval")
	}
	log.Info("migrations applied")
	return nil
}
