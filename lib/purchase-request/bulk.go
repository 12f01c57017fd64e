package prhandler

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"procurement-backend/lib/workflow"
	"procurement-backend/models"
	prapimodels "procurement-backend/models/api/purchase-request"
)

const defaultBulkRejectReason = "Bulk rejection"

func bulkResult(id string, err error, success string) prapimodels.BulkResult {
	if err == nil {
		return prapimodels.BulkResult{ID: id, Success: true, Message: success}
	}
	message := models.Message(err)
	if errors.Is(err, models.ErrNotFound) {
		message = "PR not found"
	}
	return prapimodels.BulkResult{ID: id, Success: false, Message: message}
}

// BulkStatus applies the action to every id on its own; one failure does not stop the batch.
// Bulk submit only takes drafts and bulk reject only takes submitted requests.
func (i impl) BulkStatus(ctx context.Context, actor string, data prapimodels.BulkStatusRequest) ([]prapimodels.BulkResult, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	reason := data.Reason
	if reason == "" {
		reason = defaultBulkRejectReason
	}
	results := make([]prapimodels.BulkResult, 0, len(data.IDs))
	for _, id := range data.IDs {
		var err error
		switch data.Action {
		case models.BulkActionSubmit:
			_, err = i.mutate(ctx, "bulk_submit", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
				if s.PR.Status != models.PRStatusDraft {
					return workflow.Outcome{}, invalidBulkTransition(s, data.Action)
				}
				return workflow.Submit(s, actor, now)
			})
			results = append(results, bulkResult(id, err, "PR submitted successfully"))
		case models.BulkActionReject:
			_, err = i.mutate(ctx, "bulk_reject", id, func(s workflow.State, now time.Time) (workflow.Outcome, error) {
				if s.PR.Status != models.PRStatusSubmitted {
					return workflow.Outcome{}, invalidBulkTransition(s, data.Action)
				}
				return workflow.Reject(s, reason, actor, now)
			})
			results = append(results, bulkResult(id, err, "PR rejected successfully"))
		}
	}
	return results, nil
}

func invalidBulkTransition(s workflow.State, action models.BulkAction) error {
	return models.InvalidTransitionErrorf("Invalid status transition from %v to %v", s.PR.Status, action)
}

func (i impl) BulkDelete(ctx context.Context, actor string, data prapimodels.BulkDeleteRequest) ([]prapimodels.BulkResult, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	results := make([]prapimodels.BulkResult, 0, len(data.IDs))
	for _, id := range data.IDs {
		err := i.Delete(ctx, actor, id)
		results = append(results, bulkResult(id, err, "PR deleted successfully"))
	}
	return results, nil
}
