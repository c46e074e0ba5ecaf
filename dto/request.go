package dto

import (
	"errors"
	"mime/multipart"
)

// ProcessInvoiceRequest represents the incoming request. Either a PDF upload
// or pre-extracted OCR text must be provided; Text wins when both are set so
// a caller can replay a stored OCR snapshot without re-running the engine.
type ProcessInvoiceRequest struct {
	File *multipart.FileHeader `form:"file"`
	Text string                `form:"text"`
}

// Validate performs basic validation on the request.
func (r *ProcessInvoiceRequest) Validate() error {
	if r.File == nil && r.Text == "" {
		return errors.New("either a PDF file or raw invoice text is required")
	}
	return nil
}
