package prhandler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"procurement-backend/lib/smtp"
	"procurement-backend/lib/workflow"
	"procurement-backend/models"
	prapimodels "procurement-backend/models/api/purchase-request"
	dbmodels "procurement-backend/models/db"
)

func newItems(list []prapimodels.ItemData) []dbmodels.PRItem {
	result := prapimodels.ItemsToDB(list)
	for idx := range result {
		result[idx].ID = uuid.NewString()
	}
	return result
}

func newAttachments(list []prapimodels.AttachmentData) []dbmodels.Attachment {
	result := prapimodels.AttachmentsToDB(list)
	for idx := range result {
		result[idx].ID = uuid.NewString()
	}
	return result
}

func newApprovals(list []prapimodels.ApprovalData) []dbmodels.Approval {
	result := prapimodels.ApprovalsToDB(list)
	for idx := range result {
		result[idx].ID = uuid.NewString()
	}
	return result
}

// Create allocates a number and stores the aggregate. A number taken by a concurrent
// create surfaces as a duplicate key and is retried with a fresh allocation.
func (i impl) Create(ctx context.Context, actor string, data prapimodels.PRCreate) (prapimodels.PRView, error) {
	start := time.Now()
	defer i.metrics.ObserveCommand("create", start)
	if err := data.Validate(); err != nil {
		i.fail("create", "", err)
		return prapimodels.PRView{}, err
	}
	rec := data.ToDB()
	rec.ID = uuid.NewString()
	draft := workflow.NewState(rec)
	draft.Items = newItems(data.Items)
	draft.Attachments = newAttachments(data.Attachments)
	draft.Approvals = newApprovals(data.Approvals)

	retries := i.retries
	if retries < 1 {
		retries = 1
	}
	var outcome workflow.Outcome
	var err error
	for attempt := 1; attempt <= retries; attempt++ {
		err = i.run(func(s Stores) error {
			now := i.now()
			number, err := i.allocator.Next(ctx, s.PR, now)
			if err != nil {
				return err
			}
			outcome, err = workflow.Create(draft, number, actor, now)
			if err != nil {
				return err
			}
			return insert(s, outcome)
		})
		err = translate(err)
		if !errors.Is(err, models.ErrDuplicateKey) {
			break
		}
		i.metrics.NumberCollisions.Inc()
		log.
			WithField("attempt", attempt).
			WithError(err).
			Warn("pr number already taken, retrying")
	}
	if err != nil {
		i.fail("create", rec.ID, err)
		return prapimodels.PRView{}, err
	}
	i.afterCommit(ctx, outcome)
	return i.view(outcome.State), nil
}

func toPatch(data prapimodels.PRUpdate) workflow.Patch {
	patch := workflow.Patch{
		Title:                 data.Title,
		Description:           data.Description,
		Department:            data.Department,
		Requestor:             data.Requestor,
		RequestorEmail:        data.RequestorEmail,
		CostCenter:            data.CostCenter,
		BusinessJustification: data.BusinessJustification,
		Priority:              data.Priority,
		RequiredDate:          data.RequiredDate,
		EstimatedBudget:       data.EstimatedBudget,
		ActualSpend:           data.ActualSpend,
		Currency:              data.Currency,
		PreferredVendor:       data.PreferredVendor,
		VendorContact:         data.VendorContact,
		VendorEmail:           data.VendorEmail,
		VendorPhone:           data.VendorPhone,
		VendorNotes:           data.VendorNotes,
		DirectManager:         data.DirectManager,
		FinanceApprover:       data.FinanceApprover,
		ApproverInstructions:  data.ApproverInstructions,
		InternalNotes:         data.InternalNotes,
	}
	if data.Items != nil {
		items := newItems(*data.Items)
		patch.Items = &items
	}
	if data.Attachments != nil {
		attachments := newAttachments(*data.Attachments)
		patch.Attachments = &attachments
	}
	if data.Approvals != nil {
		approvals := newApprovals(*data.Approvals)
		patch.Approvals = &approvals
	}
	return patch
}

func (i impl) Update(ctx context.Context, actor, id string, data prapimodels.PRUpdate) (prapimodels.PRView, error) {
	if err := data.Validate(); err != nil {
		return prapimodels.PRView{}, err
	}
	patch := toPatch(data)
	return i.mutateView(ctx, "update", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.Update(s, patch, actor, now)
	})
}

func (i impl) Delete(ctx context.Context, actor, id string) error {
	_, err := i.mutate(ctx, "delete", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.SoftDelete(s, actor, now)
	})
	return err
}

func (i impl) Submit(ctx context.Context, actor, id string) (prapimodels.PRView, error) {
	state, err := i.mutate(ctx, "submit", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.Submit(s, actor, now)
	})
	if err != nil {
		return prapimodels.PRView{}, err
	}
	i.notifyApprovers(state)
	return i.view(state), nil
}

// notifyApprovers mails every pending approver; a failed mail is logged only.
func (i impl) notifyApprovers(state workflow.State) {
	if i.mailer == nil {
		return
	}
	for _, entry := range state.Approvals {
		if !entry.Status.IsPending() {
			continue
		}
		subject, message := smtp.ApprovalRequested(state.PR, entry)
		if err := i.mailer.SendEMail(entry.ApproverEmail, subject, message); err != nil {
			log.
				WithField("pr_id", state.PR.ID).
				WithField("level", entry.Level).
				WithError(err).
				Warn("approval request mail not sent")
		}
	}
}

func (i impl) Approve(ctx context.Context, actor, id string, data prapimodels.ApproveRequest) (prapimodels.PRView, error) {
	if err := data.Validate(); err != nil {
		return prapimodels.PRView{}, err
	}
	return i.mutateView(ctx, "approve", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.Approve(s, data.Level, actor, data.Comments, now)
	})
}

func (i impl) Reject(ctx context.Context, actor, id, reason string) (prapimodels.PRView, error) {
	return i.mutateView(ctx, "reject", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.Reject(s, reason, actor, now)
	})
}

func (i impl) Cancel(ctx context.Context, actor, id, reason string) (prapimodels.PRView, error) {
	return i.mutateView(ctx, "cancel", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.Cancel(s, reason, actor, now)
	})
}

func (i impl) AddItem(ctx context.Context, actor, id string, data prapimodels.ItemData) (prapimodels.PRView, error) {
	if err := data.Validate(); err != nil {
		return prapimodels.PRView{}, err
	}
	item := data.ToDB()
	item.ID = uuid.NewString()
	return i.mutateView(ctx, "add_item", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.AddItem(s, item, actor, now)
	})
}

func (i impl) UpdateItem(ctx context.Context, actor, id, itemID string, data prapimodels.ItemUpdate) (prapimodels.PRView, error) {
	patch := workflow.ItemPatch{
		Description:  data.Description,
		Category:     data.Category,
		Quantity:     data.Quantity,
		Unit:         data.Unit,
		UnitPrice:    data.UnitPrice,
		Supplier:     data.Supplier,
		DeliveryDate: data.DeliveryDate,
		Notes:        data.Notes,
		Status:       data.Status,
	}
	return i.mutateView(ctx, "update_item", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.UpdateItem(s, itemID, patch, actor, now)
	})
}

func (i impl) RemoveItem(ctx context.Context, actor, id, itemID string) (prapimodels.PRView, error) {
	return i.mutateView(ctx, "remove_item", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.RemoveItem(s, itemID, actor, now)
	})
}

func (i impl) UpdateItemStatus(ctx context.Context, actor, id, itemID string, status models.ItemStatus) (prapimodels.PRView, error) {
	return i.mutateView(ctx, "update_item_status", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
		return workflow.UpdateItemStatus(s, itemID, status, actor, now)
	})
}
