package approvalchainhandler

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"procurement-backend/config"
	"procurement-backend/db"
	"procurement-backend/lib/metrics"
	prhandler "procurement-backend/lib/purchase-request"
	"procurement-backend/lib/smtp"
	"procurement-backend/lib/utils/lock"
	"procurement-backend/lib/workflow"
	"procurement-backend/models"
	prapimodels "procurement-backend/models/api/purchase-request"
	dbmodels "procurement-backend/models/db"
)

type Provider interface {
	RejectEntry(ctx context.Context, actor, prID string, level int, comments string) (prapimodels.ApprovalView, error)
	Delegate(ctx context.Context, actor, prID string, level int, data prapimodels.DelegateRequest) (prapimodels.ApprovalView, error)
	Escalate(ctx context.Context, actor, prID string, level int, reason string) (prapimodels.ApprovalView, error)
	Remind(ctx context.Context, actor, prID string, level int) (prapimodels.ApprovalView, error)
	RemindOverdue(ctx context.Context) (sent int, err error)
	Overdue() ([]prapimodels.ApprovalView, error)
	Pending(approverEmail string) ([]prapimodels.ApprovalView, error)
	Stats(prID string) (dbmodels.ApprovalStats, error)
}

var Instance Provider

func NewHandler() {
	Instance = impl{
		stores:       prhandler.NewStores(db.DB),
		run:          prhandler.NewTxRunner(db.DB),
		mailer:       smtp.Instance,
		metrics:      metrics.Instance,
		lockWait:     time.Duration(config.Conf.Workflow.LockWaitSec) * time.Second,
		maxReminders: config.Conf.Reminder.MaxReminders,
		batchSize:    config.Conf.Reminder.BatchSize,
		now:          time.Now,
	}
}

type impl struct {
	stores       prhandler.Stores
	run          prhandler.TxRunner
	mailer       smtp.Provider
	metrics      *metrics.Metrics
	lockWait     time.Duration
	maxReminders int
	batchSize    int
	now          func() time.Time
}

type entryCommand func(entry dbmodels.Approval, now time.Time) (dbmodels.Approval, error)

func (i impl) GetLogger(prID string, level int) *log.Entry {
	return log.
		WithField("pr_id", prID).
		WithField("level", level)
}

// change applies cmd to one chain entry under the request lock. The entry comes back
// with its request header attached.
func (i impl) change(ctx context.Context, name, prID string, level int, cmd entryCommand) (dbmodels.Approval, error) {
	start := time.Now()
	defer i.metrics.ObserveCommand(name, start)
	var result dbmodels.Approval
	ok, err := lock.WithDelay(ctx, prID, i.lockWait, func() error {
		return i.run(func(s prhandler.Stores) error {
			pr, err := s.PR.GetForUpdate(prID)
			if err != nil {
				return err
			}
			if pr == nil || pr.IsDeleted {
				return models.NotFoundErrorf("purchase request %s", prID)
			}
			entry, err := s.Approvals.GetByLevel(prID, level)
			if err != nil {
				return err
			}
			if entry == nil {
				return models.NotFoundErrorf("approval level %d", level)
			}
			result, err = cmd(*entry, i.now())
			if err != nil {
				return err
			}
			if err = s.Approvals.Save(result); err != nil {
				return err
			}
			header := *pr
			header.Items, header.Attachments, header.Approvals = nil, nil, nil
			result.PurchaseRequest = &header
			return nil
		})
	})
	if err == nil && !ok {
		err = models.BusyErrorf("purchase request %s is being changed by another operation", prID)
	}
	if err != nil {
		kind := models.Kind(err)
		i.metrics.IncrementFailure(name, kind)
		logger := i.GetLogger(prID, level).WithField("command", name).WithError(err)
		if kind == "internal" {
			logger.Error("approval command failed")
		} else {
			logger.Info("approval command refused")
		}
		return dbmodels.Approval{}, err
	}
	return result, nil
}

func (i impl) RejectEntry(ctx context.Context, actor, prID string, level int, comments string) (prapimodels.ApprovalView, error) {
	entry, err := i.change(ctx, "reject_entry", prID, level, func(entry dbmodels.Approval, now time.Time) (dbmodels.Approval, error) {
		return workflow.RejectEntry(entry, comments, actor, now)
	})
	if err != nil {
		return prapimodels.ApprovalView{}, err
	}
	return prapimodels.ApprovalConvert(entry, i.now()), nil
}

func (i impl) Delegate(ctx context.Context, actor, prID string, level int, data prapimodels.DelegateRequest) (prapimodels.ApprovalView, error) {
	if err := data.Validate(); err != nil {
		return prapimodels.ApprovalView{}, err
	}
	entry, err := i.change(ctx, "delegate", prID, level, func(entry dbmodels.Approval, now time.Time) (dbmodels.Approval, error) {
		return workflow.DelegateEntry(entry, data.DelegateTo, data.Reason, actor, now)
	})
	if err != nil {
		return prapimodels.ApprovalView{}, err
	}
	return prapimodels.ApprovalConvert(entry, i.now()), nil
}

func (i impl) Escalate(ctx context.Context, actor, prID string, level int, reason string) (prapimodels.ApprovalView, error) {
	entry, err := i.change(ctx, "escalate", prID, level, func(entry dbmodels.Approval, now time.Time) (dbmodels.Approval, error) {
		return workflow.EscalateEntry(entry, reason, actor, now)
	})
	if err != nil {
		return prapimodels.ApprovalView{}, err
	}
	return prapimodels.ApprovalConvert(entry, i.now()), nil
}

// Remind stamps the entry and mails the approver. A failed mail does not undo the stamp.
func (i impl) Remind(ctx context.Context, actor, prID string, level int) (prapimodels.ApprovalView, error) {
	entry, err := i.change(ctx, "remind", prID, level, func(entry dbmodels.Approval, now time.Time) (dbmodels.Approval, error) {
		if actor == "" {
			return entry, models.ValidationErrorf("actor is required")
		}
		return workflow.SendReminder(entry, now), nil
	})
	if err != nil {
		return prapimodels.ApprovalView{}, err
	}
	i.mail(entry)
	return prapimodels.ApprovalConvert(entry, i.now()), nil
}

func (i impl) mail(entry dbmodels.Approval) {
	i.metrics.RemindersSent.Inc()
	if i.mailer == nil {
		return
	}
	subject, message := smtp.ApprovalReminder(entry, i.now())
	if err := i.mailer.SendEMail(entry.ApproverEmail, subject, message); err != nil {
		i.GetLogger(entry.PRID, entry.Level).
			WithError(err).
			Warn("approval reminder mail not sent")
	}
}

// RemindOverdue sends one reminder per overdue entry that was not reminded during the last day,
// up to the configured batch size. Entries that changed meanwhile are skipped.
func (i impl) RemindOverdue(ctx context.Context) (sent int, err error) {
	list, err := i.stores.Approvals.ListForReminder(i.now(), i.maxReminders, i.batchSize)
	if err != nil {
		return 0, errors.Wrap(err, "error reading approvals due for a reminder")
	}
	for _, candidate := range list {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}
		entry, err := i.change(ctx, "remind", candidate.PRID, candidate.Level, func(entry dbmodels.Approval, now time.Time) (dbmodels.Approval, error) {
			if !entry.IsOverdue(now) {
				return entry, models.AlreadyProcessedErrorf("approval level %d is no longer overdue", entry.Level)
			}
			return workflow.SendReminder(entry, now), nil
		})
		if err != nil {
			continue
		}
		i.mail(entry)
		sent++
	}
	return sent, nil
}

func (i impl) Overdue() ([]prapimodels.ApprovalView, error) {
	now := i.now()
	list, err := i.stores.Approvals.ListOverdue(now)
	if err != nil {
		return nil, errors.Wrap(err, "error reading overdue approvals")
	}
	return prapimodels.ApprovalConvertAll(list, now), nil
}

func (i impl) Pending(approverEmail string) ([]prapimodels.ApprovalView, error) {
	if approverEmail == "" {
		return nil, models.ValidationErrorf("approver_email is required")
	}
	now := i.now()
	list, err := i.stores.Approvals.ListPending(approverEmail, now)
	if err != nil {
		return nil, errors.Wrap(err, "error reading pending approvals")
	}
	return prapimodels.ApprovalConvertAll(list, now), nil
}

func (i impl) Stats(prID string) (dbmodels.ApprovalStats, error) {
	pr, err := i.stores.PR.GetByID(prID)
	if err != nil {
		return dbmodels.ApprovalStats{}, err
	}
	if pr == nil || pr.IsDeleted {
		return dbmodels.ApprovalStats{}, models.NotFoundErrorf("purchase request %s", prID)
	}
	return i.stores.Approvals.Stats(prID, i.now())
}
