package xlsexport

import (
	"bytes"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"
	dbmodels "procurement-backend/models/db"
)

type Provider interface {
	ExportPRList(list []dbmodels.PurchaseRequest) (*bytes.Buffer, error)
}

var Instance Provider

func NewHandler() {
	Instance = NewInstance()
}

func NewInstance() Provider {
	return impl{}
}

type impl struct{}

var prHeaders = []string{"PR Number", "Title", "Department", "Requestor", "Status", "Priority", "Estimated Budget", "Currency", "Created Date"}

const budgetCol = 7

func (i impl) ExportPRList(list []dbmodels.PurchaseRequest) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.WithError(err).Error("error closing xlsx file")
		}
	}()
	sheet := "Sheet1"
	row, err := writeHeader(f, sheet, prHeaders, 22)
	if err != nil {
		return nil, errors.Wrap(err, "error writing xlsx header")
	}
	if len(list) != 0 {
		if err = writePRData(f, sheet, list, row); err != nil {
			return nil, errors.Wrap(err, "error writing xlsx rows")
		}
	}
	if err = f.SetSheetName(sheet, "Purchase Requests"); err != nil {
		return nil, errors.Wrap(err, "error naming xlsx sheet")
	}
	return f.WriteToBuffer()
}

func writePRData(f *excelize.File, sheet string, list []dbmodels.PurchaseRequest, row int) error {
	first, last := row+1, row+len(list)
	if err := applyDataCellStyle(f, sheet, 1, first, len(prHeaders), last); err != nil {
		return err
	}
	if err := applyAmountStyle(f, sheet, budgetCol, first, last); err != nil {
		return err
	}
	for _, rec := range list {
		row++
		err := writeRow(f, sheet, row, []interface{}{
			rec.PRNumber,
			rec.Title,
			string(rec.Department),
			rec.Requestor,
			string(rec.Status),
			string(rec.Priority),
			rec.EstimatedBudget,
			string(rec.Currency),
			rec.CreatedAt.Format(time.DateOnly),
		})
		if err != nil {
			return err
		}
	}
	return nil
}
