package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/mhedlund/csp-invoice-allocator/dto"
	"github.com/mhedlund/csp-invoice-allocator/service"
	"github.com/mhedlund/csp-invoice-allocator/utils"
)

type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	log            zerolog.Logger
}

func NewInvoiceHandler(invoiceService *service.InvoiceService, log zerolog.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		log:            log,
	}
}

// ProcessInvoice handles the POST /invoice/process endpoint. The caller
// sends either a PDF under "file" or pre-extracted text under "text".
func (h *InvoiceHandler) ProcessInvoice(c *gin.Context) {
	h.log.Info().Msg("received invoice processing request")

	request := &dto.ProcessInvoiceRequest{
		Text: c.PostForm("text"),
	}
	if file, err := c.FormFile("file"); err == nil {
		request.File = file
	}

	if err := request.Validate(); err != nil {
		h.sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	response, err := h.invoiceService.ProcessInvoice(request)
	if err != nil {
		var malformed *utils.MalformedNumberError
		var persistence *service.PersistenceError
		switch {
		case errors.Is(err, utils.ErrNoLicenseData), errors.As(err, &malformed):
			h.sendError(c, http.StatusUnprocessableEntity, "EXTRACTION_FAILED", err)
		case errors.As(err, &persistence):
			h.sendError(c, http.StatusInternalServerError, "PERSISTENCE_FAILED", err)
		default:
			h.sendError(c, http.StatusInternalServerError, "PROCESSING_FAILED", err)
		}
		return
	}

	h.log.Info().Str("run_id", response.RunID).Msg("invoice processed successfully")
	c.JSON(http.StatusOK, response)
}

// sendError sends a structured error response.
func (h *InvoiceHandler) sendError(c *gin.Context, statusCode int, code string, err error) {
	h.log.Error().Err(err).Str("code", code).Msg("request failed")
	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: err.Error(),
		Code:    statusCode,
	})
}
