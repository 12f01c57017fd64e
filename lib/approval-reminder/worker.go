package approvalreminderworker

import (
	"context"
	"time"

	"procurement-backend/config"
	approvalchainhandler "procurement-backend/lib/approval-chain"
	baseworker "procurement-backend/lib/utils/base-worker"
	"procurement-backend/lib/utils/helpers"
)

const workerName = "ApprovalReminderWorker"

func StartWorker(ctx context.Context) {
	conf := config.Conf.Reminder
	i := newWorker(approvalchainhandler.Instance,
		time.Duration(conf.FirstRunDelayMin)*time.Minute,
		time.Duration(conf.IntervalMin)*time.Minute)
	go i.Run(ctx, i.handle)
}

type impl struct {
	baseworker.BaseImpl
	approvals approvalchainhandler.Provider
}

func newWorker(approvals approvalchainhandler.Provider, firstRunDelay, runInterval time.Duration) *impl {
	return &impl{
		BaseImpl:  *baseworker.NewInstance(workerName, firstRunDelay, runInterval),
		approvals: approvals,
	}
}

func (i impl) handle(ctx context.Context) {
	if helpers.IsContextDone(ctx) {
		return
	}
	logger := i.GetLogger()
	sent, err := i.approvals.RemindOverdue(ctx)
	if err != nil {
		logger.WithError(err).Error("error sending approval reminders")
		return
	}
	logger.WithField("sent", sent).Info("approval reminders sent")
}
