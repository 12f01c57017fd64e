package apiv1

import (
	"github.com/gofiber/fiber/v2"
	"procurement-backend/controllers"
	prhandler "procurement-backend/lib/purchase-request"
	apimodels "procurement-backend/models/api"
	prapimodels "procurement-backend/models/api/purchase-request"
)

type purchaseRequestApiController struct {
	controllers.BaseAPIController
}

func InitPurchaseRequestApiRouters(app *fiber.App) {
	controller := purchaseRequestApiController{}
	app.Route("purchase_requests", func(router fiber.Router) {
		router.Post("", controller.create)
		router.Post("list", controller.list)
		router.Post("search", controller.search)
		router.Get("stats", controller.stats)
		router.Get("dashboard", controller.dashboard)
		router.Get("export/csv", controller.exportCSV)
		router.Get("export/xlsx", controller.exportXLSX)
		router.Post("bulk/status", controller.bulkStatus)
		router.Post("bulk/delete", controller.bulkDelete)
		router.Get("approvals/overdue", controller.overdueApprovals)
		router.Get("approvals/pending", controller.pendingApprovals)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Put("", controller.update)
			idRoute.Delete("", controller.delete)
			idRoute.Get("pdf", controller.pdf)
			idRoute.Put("submit", controller.submit)
			idRoute.Put("approve", controller.approve)
			idRoute.Put("reject", controller.reject)
			idRoute.Put("cancel", controller.cancel)

			idRoute.Post("items", controller.addItem)
			idRoute.Put("items/:itemId", controller.updateItem)
			idRoute.Delete("items/:itemId", controller.removeItem)
			idRoute.Put("items/:itemId/status", controller.updateItemStatus)

			idRoute.Post("attachments", controller.addAttachment)
			idRoute.Post("attachments/upload", controller.uploadAttachment)
			idRoute.Get("attachments/stats", controller.attachmentStats)
			idRoute.Get("attachments/:attachmentId/download", controller.downloadAttachment)
			idRoute.Delete("attachments/:attachmentId", controller.removeAttachment)

			idRoute.Get("approvals/stats", controller.approvalStats)
			idRoute.Put("approvals/:level/reject", controller.rejectApproval)
			idRoute.Put("approvals/:level/delegate", controller.delegateApproval)
			idRoute.Put("approvals/:level/escalate", controller.escalateApproval)
			idRoute.Put("approvals/:level/remind", controller.remindApproval)
		})
	})
}

// @Summary Create
// @Tags Purchase request
// @Description Creates a Draft purchase request together with its items, attachments and approval chain
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 prapimodels.PRCreate	true	"request body"
// @Success 201 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 401 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests [post]
func (c *purchaseRequestApiController) create(ctx *fiber.Ctx) error {
	var payload prapimodels.PRCreate
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.Create(ctx.UserContext(), c.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error creating purchase request")
	}
	return ctx.Status(fiber.StatusCreated).JSON(apimodels.NewResponse(view))
}

// @Summary List
// @Tags Purchase request
// @Description Paged list with filters and sorting. Deleted requests are never listed
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 prapimodels.PRFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/list [post]
func (c *purchaseRequestApiController) list(ctx *fiber.Ctx) error {
	var payload prapimodels.PRFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, rowCount, err := prhandler.Instance.List(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error listing purchase requests")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Search
// @Tags Purchase request
// @Description Advanced search by text, budget range and creation dates
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 prapimodels.SearchFilter	true	"request body"
// @Success 200 {object} apimodels.ScrollerResponse{data=[]prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/search [post]
func (c *purchaseRequestApiController) search(ctx *fiber.Ctx) error {
	var payload prapimodels.SearchFilter
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	list, rowCount, err := prhandler.Instance.Search(payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error searching purchase requests")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewScrollerResponse(list, rowCount))
}

// @Summary Get
// @Tags Purchase request
// @Description Full aggregate with items, attachments, approvals and audit log
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id} [get]
func (c *purchaseRequestApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.GetByID(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error reading purchase request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Update
// @Tags Purchase request
// @Description Partial update. Items and approvals, when sent, replace the whole set
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param	body body	 prapimodels.PRUpdate	true	"request body"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id} [put]
func (c *purchaseRequestApiController) update(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.PRUpdate
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.Update(ctx.UserContext(), c.GetActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error updating purchase request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Delete
// @Tags Purchase request
// @Description Soft delete. Approved requests cannot be deleted
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id} [delete]
func (c *purchaseRequestApiController) delete(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = prhandler.Instance.Delete(ctx.UserContext(), c.GetActor(ctx), id); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error deleting purchase request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Submit
// @Tags Purchase request
// @Description Draft -> Submitted, approvers get an e-mail
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/submit [put]
func (c *purchaseRequestApiController) submit(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.Submit(ctx.UserContext(), c.GetActor(ctx), id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error submitting purchase request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Approve
// @Tags Purchase request
// @Description Records the approval of one level. The last pending level approves the request
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param	body body	 prapimodels.ApproveRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/approve [put]
func (c *purchaseRequestApiController) approve(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.ApproveRequest
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.Approve(ctx.UserContext(), c.GetActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error approving purchase request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Reject
// @Tags Purchase request
// @Description Submitted -> Rejected, pending levels are skipped
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param	body body	 prapimodels.ReasonRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/reject [put]
func (c *purchaseRequestApiController) reject(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.ReasonRequest
	if err = c.OptionalBodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.Reject(ctx.UserContext(), c.GetActor(ctx), id, payload.Reason)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error rejecting purchase request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Cancel
// @Tags Purchase request
// @Description Draft or Submitted -> Cancelled
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param	body body	 prapimodels.ReasonRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/cancel [put]
func (c *purchaseRequestApiController) cancel(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.ReasonRequest
	if err = c.OptionalBodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.Cancel(ctx.UserContext(), c.GetActor(ctx), id, payload.Reason)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error cancelling purchase request")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}
