package apiv1

import (
	"github.com/gofiber/fiber/v2"
	approvalchainhandler "procurement-backend/lib/approval-chain"
	apimodels "procurement-backend/models/api"
	prapimodels "procurement-backend/models/api/purchase-request"
)

// @Summary Overdue approvals
// @Tags Approval chain
// @Description Pending entries past their due date, oldest first
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]prapimodels.ApprovalView}
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/approvals/overdue [get]
func (c *purchaseRequestApiController) overdueApprovals(ctx *fiber.Ctx) error {
	list, err := approvalchainhandler.Instance.Overdue()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error reading overdue approvals")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Pending approvals
// @Tags Approval chain
// @Description Entries waiting on the approver that are not overdue yet
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   approver_email     	query    string  				    	true         "approver e-mail"
// @Success 200 {object} apimodels.Response{data=[]prapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/approvals/pending [get]
func (c *purchaseRequestApiController) pendingApprovals(ctx *fiber.Ctx) error {
	list, err := approvalchainhandler.Instance.Pending(ctx.Query("approver_email"))
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error reading pending approvals")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(list))
}

// @Summary Approval stats
// @Tags Approval chain
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=dbmodels.ApprovalStats}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/approvals/stats [get]
func (c *purchaseRequestApiController) approvalStats(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	stats, err := approvalchainhandler.Instance.Stats(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error reading approval stats")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(stats))
}

// @Summary Reject approval level
// @Tags Approval chain
// @Description Rejects one pending entry, the request status is left as is
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   level          		path    int  				    	true         "approval level"
// @Param	body body	 prapimodels.CommentsRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=prapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/approvals/{level}/reject [put]
func (c *purchaseRequestApiController) rejectApproval(ctx *fiber.Ctx) error {
	id, level, err := c.getLevelIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.CommentsRequest
	if err = c.OptionalBodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := approvalchainhandler.Instance.RejectEntry(ctx.UserContext(), c.GetActor(ctx), id, level, payload.Comments)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error rejecting approval")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Delegate approval level
// @Tags Approval chain
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   level          		path    int  				    	true         "approval level"
// @Param	body body	 prapimodels.DelegateRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=prapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/approvals/{level}/delegate [put]
func (c *purchaseRequestApiController) delegateApproval(ctx *fiber.Ctx) error {
	id, level, err := c.getLevelIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.DelegateRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := approvalchainhandler.Instance.Delegate(ctx.UserContext(), c.GetActor(ctx), id, level, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error delegating approval")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Escalate approval level
// @Tags Approval chain
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   level          		path    int  				    	true         "approval level"
// @Param	body body	 prapimodels.ReasonRequest	false	"request body"
// @Success 200 {object} apimodels.Response{data=prapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/approvals/{level}/escalate [put]
func (c *purchaseRequestApiController) escalateApproval(ctx *fiber.Ctx) error {
	id, level, err := c.getLevelIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.ReasonRequest
	if err = c.OptionalBodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := approvalchainhandler.Instance.Escalate(ctx.UserContext(), c.GetActor(ctx), id, level, payload.Reason)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error escalating approval")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Remind approver
// @Tags Approval chain
// @Description Stamps a reminder on the entry and mails the approver
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   level          		path    int  				    	true         "approval level"
// @Success 200 {object} apimodels.Response{data=prapimodels.ApprovalView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/approvals/{level}/remind [put]
func (c *purchaseRequestApiController) remindApproval(ctx *fiber.Ctx) error {
	id, level, err := c.getLevelIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := approvalchainhandler.Instance.Remind(ctx.UserContext(), c.GetActor(ctx), id, level)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error sending approval reminder")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

func (c *purchaseRequestApiController) getLevelIDs(ctx *fiber.Ctx) (id string, level int, err error) {
	id, err = c.GetID(ctx)
	if err != nil {
		return "", 0, err
	}
	level, err = c.GetLevel(ctx)
	return id, level, err
}
