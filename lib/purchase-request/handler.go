package prhandler

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"procurement-backend/config"
	"procurement-backend/db"
	xlsexport "procurement-backend/lib/export/xls"
	filestorage "procurement-backend/lib/file-storage"
	"procurement-backend/lib/metrics"
	"procurement-backend/lib/notify"
	prnumber "procurement-backend/lib/pr-number"
	"procurement-backend/lib/smtp"
	"procurement-backend/lib/utils/lock"
	"procurement-backend/lib/workflow"
	"procurement-backend/models"
	prapimodels "procurement-backend/models/api/purchase-request"
	dbmodels "procurement-backend/models/db"
)

type Provider interface {
	Create(ctx context.Context, actor string, data prapimodels.PRCreate) (prapimodels.PRView, error)
	GetByID(id string) (prapimodels.PRView, error)
	Update(ctx context.Context, actor, id string, data prapimodels.PRUpdate) (prapimodels.PRView, error)
	Delete(ctx context.Context, actor, id string) error
	Submit(ctx context.Context, actor, id string) (prapimodels.PRView, error)
	Approve(ctx context.Context, actor, id string, data prapimodels.ApproveRequest) (prapimodels.PRView, error)
	Reject(ctx context.Context, actor, id, reason string) (prapimodels.PRView, error)
	Cancel(ctx context.Context, actor, id, reason string) (prapimodels.PRView, error)

	AddItem(ctx context.Context, actor, id string, data prapimodels.ItemData) (prapimodels.PRView, error)
	UpdateItem(ctx context.Context, actor, id, itemID string, data prapimodels.ItemUpdate) (prapimodels.PRView, error)
	RemoveItem(ctx context.Context, actor, id, itemID string) (prapimodels.PRView, error)
	UpdateItemStatus(ctx context.Context, actor, id, itemID string, status models.ItemStatus) (prapimodels.PRView, error)

	AddAttachment(ctx context.Context, actor, id string, data prapimodels.AttachmentData) (prapimodels.PRView, error)
	UploadAttachment(ctx context.Context, actor, id string, data prapimodels.AttachmentUpload, file FileData) (prapimodels.PRView, error)
	RemoveAttachment(ctx context.Context, actor, id, attachmentID string) (prapimodels.PRView, error)
	DownloadAttachment(ctx context.Context, actor, id, attachmentID string) (prapimodels.AttachmentView, io.ReadCloser, error)
	AttachmentStats(id string) (dbmodels.AttachmentStats, error)

	List(filter prapimodels.PRFilter) (list []prapimodels.PRView, rowCount int64, err error)
	Search(filter prapimodels.SearchFilter) (list []prapimodels.PRView, rowCount int64, err error)
	Stats() (prapimodels.StatsView, error)
	Dashboard() (prapimodels.DashboardView, error)
	ExportCSV(filter prapimodels.ExportFilter) ([]byte, error)
	ExportXLSX(filter prapimodels.ExportFilter) ([]byte, error)
	ExportPDF(id string) (data []byte, fileName string, err error)

	BulkStatus(ctx context.Context, actor string, data prapimodels.BulkStatusRequest) ([]prapimodels.BulkResult, error)
	BulkDelete(ctx context.Context, actor string, data prapimodels.BulkDeleteRequest) ([]prapimodels.BulkResult, error)
}

// FileData is an uploaded file as received from the client.
type FileData struct {
	Name     string
	MimeType string
	Size     int64
	Reader   io.Reader
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		stores:    NewStores(db.DB),
		run:       NewTxRunner(db.DB),
		allocator: prnumber.Instance,
		files:     filestorage.Instance,
		xls:       xlsexport.Instance,
		mailer:    smtp.Instance,
		publisher: notify.Instance,
		metrics:   metrics.Instance,
		lockWait:  time.Duration(config.Conf.Workflow.LockWaitSec) * time.Second,
		retries:   config.Conf.Workflow.CreateRetries,
		now:       time.Now,
	}
}

type impl struct {
	stores    Stores
	run       TxRunner
	allocator prnumber.Allocator
	files     filestorage.Provider
	xls       xlsexport.Provider
	mailer    smtp.Provider
	publisher notify.Publisher
	metrics   *metrics.Metrics
	lockWait  time.Duration
	retries   int
	now       func() time.Time
}

type command func(s workflow.State, now time.Time) (workflow.Outcome, error)

func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(models.ErrDuplicateKey, err.Error())
	}
	return err
}

func (i impl) load(s Stores, id string) (workflow.State, error) {
	rec, err := s.PR.GetByID(id)
	if err != nil {
		return workflow.State{}, err
	}
	if rec == nil || rec.IsDeleted {
		return workflow.State{}, models.NotFoundErrorf("purchase request %s", id)
	}
	return workflow.NewState(*rec), nil
}

// loadForUpdate is load for use inside a transaction that is going to write the request.
func (i impl) loadForUpdate(s Stores, id string) (workflow.State, error) {
	rec, err := s.PR.GetForUpdate(id)
	if err != nil {
		return workflow.State{}, err
	}
	if rec == nil || rec.IsDeleted {
		return workflow.State{}, models.NotFoundErrorf("purchase request %s", id)
	}
	return workflow.NewState(*rec), nil
}

// locked serialises work on one request inside this process; loadForUpdate covers other processes.
func (i impl) locked(ctx context.Context, id string, fn func() error) error {
	ok, err := lock.WithDelay(ctx, id, i.lockWait, fn)
	if err != nil {
		return err
	}
	if !ok {
		return models.BusyErrorf("purchase request %s is being changed by another operation", id)
	}
	return nil
}

// mutate loads the request, applies cmd and persists the outcome in one transaction.
// Events are published only after the commit.
func (i impl) mutate(ctx context.Context, name, id string, cmd command) (workflow.State, error) {
	start := time.Now()
	defer i.metrics.ObserveCommand(name, start)
	var outcome workflow.Outcome
	err := i.locked(ctx, id, func() error {
		return i.run(func(s Stores) error {
			prev, err := i.loadForUpdate(s, id)
			if err != nil {
				return err
			}
			outcome, err = cmd(prev, i.now())
			if err != nil {
				return err
			}
			return persist(s, prev, outcome)
		})
	})
	if err != nil {
		err = translate(err)
		i.fail(name, id, err)
		return workflow.State{}, err
	}
	i.afterCommit(ctx, outcome)
	return outcome.State, nil
}

func (i impl) fail(name, id string, err error) {
	kind := models.Kind(err)
	i.metrics.IncrementFailure(name, kind)
	logger := log.
		WithField("command", name).
		WithField("pr_id", id).
		WithError(err)
	if kind == "internal" {
		logger.Error("purchase request command failed")
		return
	}
	logger.Info("purchase request command refused")
}

func (i impl) afterCommit(ctx context.Context, outcome workflow.Outcome) {
	for _, entry := range outcome.Events {
		i.metrics.IncrementEvent(string(entry.Action))
	}
	notify.PublishAll(ctx, i.publisher, outcome.State.PR.ID, outcome.State.PR.PRNumber, outcome.Events)
}

func (i impl) view(s workflow.State) prapimodels.PRView {
	return prapimodels.PRConvert(s.Aggregate(), i.now())
}

func (i impl) mutateView(ctx context.Context, name, id string, cmd command) (prapimodels.PRView, error) {
	state, err := i.mutate(ctx, name, id, cmd)
	if err != nil {
		return prapimodels.PRView{}, err
	}
	return i.view(state), nil
}
