package apiv1

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	prhandler "procurement-backend/lib/purchase-request"
	apimodels "procurement-backend/models/api"
	prapimodels "procurement-backend/models/api/purchase-request"
)

// @Summary Add item
// @Tags Purchase request items
// @Description Appends a line item to a Draft or Submitted request
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param	body body	 prapimodels.ItemData	true	"request body"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/items [post]
func (c *purchaseRequestApiController) addItem(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.ItemData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.AddItem(ctx.UserContext(), c.GetActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error adding item")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Update item
// @Tags Purchase request items
// @Description Partial update of one line item
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   itemId         		path    string  				    	true         "item ID"
// @Param	body body	 prapimodels.ItemUpdate	true	"request body"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/items/{itemId} [put]
func (c *purchaseRequestApiController) updateItem(ctx *fiber.Ctx) error {
	id, itemID, err := c.getItemIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.ItemUpdate
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.UpdateItem(ctx.UserContext(), c.GetActor(ctx), id, itemID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error updating item")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Remove item
// @Tags Purchase request items
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   itemId         		path    string  				    	true         "item ID"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/items/{itemId} [delete]
func (c *purchaseRequestApiController) removeItem(ctx *fiber.Ctx) error {
	id, itemID, err := c.getItemIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.RemoveItem(ctx.UserContext(), c.GetActor(ctx), id, itemID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error removing item")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Update item status
// @Tags Purchase request items
// @Description Fulfilment status of one line item, allowed in any request status
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   itemId         		path    string  				    	true         "item ID"
// @Param	body body	 prapimodels.ItemStatusUpdate	true	"request body"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/items/{itemId}/status [put]
func (c *purchaseRequestApiController) updateItemStatus(ctx *fiber.Ctx) error {
	id, itemID, err := c.getItemIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.ItemStatusUpdate
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error updating item status")
	}
	view, err := prhandler.Instance.UpdateItemStatus(ctx.UserContext(), c.GetActor(ctx), id, itemID, payload.Status)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error updating item status")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

func (c *purchaseRequestApiController) getItemIDs(ctx *fiber.Ctx) (id, itemID string, err error) {
	id, err = c.GetID(ctx)
	if err != nil {
		return "", "", err
	}
	itemID, err = c.GetIDByKey(ctx, "itemId")
	return id, itemID, err
}

// @Summary Add attachment
// @Tags Purchase request attachments
// @Description Registers attachment metadata for a file stored elsewhere
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param	body body	 prapimodels.AttachmentData	true	"request body"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/attachments [post]
func (c *purchaseRequestApiController) addAttachment(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.AttachmentData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.AddAttachment(ctx.UserContext(), c.GetActor(ctx), id, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error adding attachment")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Upload attachment
// @Tags Purchase request attachments
// @Description Stores the file and registers it as an attachment
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   file			formData	file 	true 	"attachment"
// @Param   description		formData	string 	false 	"description"
// @Param   category		formData	string 	false 	"category"
// @Param   access_level	formData	string 	false 	"access level"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/attachments/upload [post]
func (c *purchaseRequestApiController) uploadAttachment(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload prapimodels.AttachmentUpload
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError("file is required"))
	}
	reader, err := file.Open()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error reading uploaded file")
	}
	defer reader.Close()
	fileData := prhandler.FileData{
		Name:     file.Filename,
		MimeType: file.Header.Get("Content-Type"),
		Size:     file.Size,
		Reader:   reader,
	}
	view, err := prhandler.Instance.UploadAttachment(ctx.UserContext(), c.GetActor(ctx), id, payload, fileData)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error uploading attachment")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

// @Summary Attachment stats
// @Tags Purchase request attachments
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {object} apimodels.Response{data=dbmodels.AttachmentStats}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/attachments/stats [get]
func (c *purchaseRequestApiController) attachmentStats(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	stats, err := prhandler.Instance.AttachmentStats(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error reading attachment stats")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(stats))
}

// @Summary Download attachment
// @Tags Purchase request attachments
// @Description Streams the stored file and counts the download
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   attachmentId   		path    string  				    	true         "attachment ID"
// @Success 200 {file} file
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/attachments/{attachmentId}/download [get]
func (c *purchaseRequestApiController) downloadAttachment(ctx *fiber.Ctx) error {
	id, attachmentID, err := c.getAttachmentIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, reader, err := prhandler.Instance.DownloadAttachment(ctx.UserContext(), c.GetActor(ctx), id, attachmentID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error downloading attachment")
	}
	if view.MimeType != "" {
		ctx.Set(fiber.HeaderContentType, view.MimeType)
	}
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", view.OriginalName))
	return ctx.SendStream(reader, int(view.Size))
}

// @Summary Remove attachment
// @Tags Purchase request attachments
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Param   attachmentId   		path    string  				    	true         "attachment ID"
// @Success 200 {object} apimodels.Response{data=prapimodels.PRView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/attachments/{attachmentId} [delete]
func (c *purchaseRequestApiController) removeAttachment(ctx *fiber.Ctx) error {
	id, attachmentID, err := c.getAttachmentIDs(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	view, err := prhandler.Instance.RemoveAttachment(ctx.UserContext(), c.GetActor(ctx), id, attachmentID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error removing attachment")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(view))
}

func (c *purchaseRequestApiController) getAttachmentIDs(ctx *fiber.Ctx) (id, attachmentID string, err error) {
	id, err = c.GetID(ctx)
	if err != nil {
		return "", "", err
	}
	attachmentID, err = c.GetIDByKey(ctx, "attachmentId")
	return id, attachmentID, err
}
