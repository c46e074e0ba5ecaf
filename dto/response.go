package dto

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ProcessInvoiceResponse is the final response structure for one processed
// invoice run.
type ProcessInvoiceResponse struct {
	RunID          string            `json:"run_id"`
	Invoice        AggregatedInvoice `json:"invoice"`
	AccountingRows []AccountingRow   `json:"accounting_rows"`
	Validation     ValidationReport  `json:"validation"`
	Comment        string            `json:"comment"`
	Warnings       []string          `json:"warnings,omitempty"`
	OutputFile     string            `json:"output_file"`
	BackupFiles    []string          `json:"backup_files"`
	ProcessedAt    string            `json:"processed_at"`
}
