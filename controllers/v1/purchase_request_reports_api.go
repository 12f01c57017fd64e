package apiv1

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	csvexport "procurement-backend/lib/export/csv"
	prhandler "procurement-backend/lib/purchase-request"
	apimodels "procurement-backend/models/api"
	prapimodels "procurement-backend/models/api/purchase-request"
)

const (
	xlsxExportName = "purchase_requests.xlsx"
	xlsxMimeType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// @Summary Stats
// @Tags Purchase request reports
// @Description Counts by status, by department and budget totals
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=prapimodels.StatsView}
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/stats [get]
func (c *purchaseRequestApiController) stats(ctx *fiber.Ctx) error {
	stats, err := prhandler.Instance.Stats()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error reading stats")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(stats))
}

// @Summary Dashboard
// @Tags Purchase request reports
// @Param   Authorization		header		string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=prapimodels.DashboardView}
// @Failure 401 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/dashboard [get]
func (c *purchaseRequestApiController) dashboard(ctx *fiber.Ctx) error {
	dashboard, err := prhandler.Instance.Dashboard()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error reading dashboard")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(dashboard))
}

// @Summary Export CSV
// @Tags Purchase request reports
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   status          	query    string  				    	false         "status"
// @Param   department         	query    string  				    	false         "department"
// @Param   date_from          	query    string  				    	false         "YYYY-MM-DD"
// @Param   date_to          	query    string  				    	false         "YYYY-MM-DD"
// @Success 200 {file} file
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/export/csv [get]
func (c *purchaseRequestApiController) exportCSV(ctx *fiber.Ctx) error {
	filter, err := c.getExportFilter(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	data, err := prhandler.Instance.ExportCSV(filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error exporting purchase requests")
	}
	return c.sendFile(ctx, "text/csv", csvexport.FileName, data)
}

// @Summary Export XLSX
// @Tags Purchase request reports
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   status          	query    string  				    	false         "status"
// @Param   department         	query    string  				    	false         "department"
// @Param   date_from          	query    string  				    	false         "YYYY-MM-DD"
// @Param   date_to          	query    string  				    	false         "YYYY-MM-DD"
// @Success 200 {file} file
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/export/xlsx [get]
func (c *purchaseRequestApiController) exportXLSX(ctx *fiber.Ctx) error {
	filter, err := c.getExportFilter(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	data, err := prhandler.Instance.ExportXLSX(filter)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error exporting purchase requests")
	}
	return c.sendFile(ctx, xlsxMimeType, xlsxExportName, data)
}

// @Summary PDF
// @Tags Purchase request reports
// @Description Printable purchase request document
// @Param   Authorization		header		string	true	"Authorization token"
// @Param   id          		path    string  				    	true         "rec ID"
// @Success 200 {file} file
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/{id}/pdf [get]
func (c *purchaseRequestApiController) pdf(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	data, fileName, err := prhandler.Instance.ExportPDF(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error building pdf document")
	}
	return c.sendFile(ctx, "application/pdf", fileName, data)
}

// @Summary Bulk status
// @Tags Purchase request bulk
// @Description Submits Draft or rejects Submitted requests one by one, failures are reported per id
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 prapimodels.BulkStatusRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=[]prapimodels.BulkResult}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/bulk/status [post]
func (c *purchaseRequestApiController) bulkStatus(ctx *fiber.Ctx) error {
	var payload prapimodels.BulkStatusRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	results, err := prhandler.Instance.BulkStatus(ctx.UserContext(), c.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error changing purchase request status")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(results))
}

// @Summary Bulk delete
// @Tags Purchase request bulk
// @Param   Authorization		header		string	true	"Authorization token"
// @Param	body body	 prapimodels.BulkDeleteRequest	true	"request body"
// @Success 200 {object} apimodels.Response{data=[]prapimodels.BulkResult}
// @Failure 400 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/purchase_requests/bulk/delete [post]
func (c *purchaseRequestApiController) bulkDelete(ctx *fiber.Ctx) error {
	var payload prapimodels.BulkDeleteRequest
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	results, err := prhandler.Instance.BulkDelete(ctx.UserContext(), c.GetActor(ctx), payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "error deleting purchase requests")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(results))
}

func (c *purchaseRequestApiController) getExportFilter(ctx *fiber.Ctx) (prapimodels.ExportFilter, error) {
	var filter prapimodels.ExportFilter
	if err := ctx.QueryParser(&filter); err != nil {
		c.GetLogger(ctx).WithError(err).Error("error parsing export filter")
		return filter, errors.New("unable to read export filter")
	}
	return filter, nil
}

func (c *purchaseRequestApiController) sendFile(ctx *fiber.Ctx, mimeType, fileName string, data []byte) error {
	ctx.Set(fiber.HeaderContentType, mimeType)
	ctx.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return ctx.Status(fiber.StatusOK).Send(data)
}
