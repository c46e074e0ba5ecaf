package service

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mhedlund/csp-invoice-allocator/client"
	"github.com/mhedlund/csp-invoice-allocator/config"
	"github.com/mhedlund/csp-invoice-allocator/dto"
	"github.com/mhedlund/csp-invoice-allocator/utils"
)

// lowConfidenceThreshold marks OCR output worth a warning; the run still
// proceeds because the pattern matching is the real arbiter of usability.
const lowConfidenceThreshold = 60.0

// InvoiceService runs the whole pipeline for one invoice: OCR text →
// extraction → allocation → validation → comment → persistence. Each call
// loads a fresh roster snapshot and builds a fresh aggregate; nothing is
// shared between runs.
type InvoiceService struct {
	tesseract *client.TesseractClient
	pdf       PDFProcessor
	workbook  *client.WorkbookClient
	backups   *BackupStore
	cfg       *config.Config
	log       zerolog.Logger
}

func NewInvoiceService(
	tesseract *client.TesseractClient,
	pdf PDFProcessor,
	workbook *client.WorkbookClient,
	backups *BackupStore,
	cfg *config.Config,
	log zerolog.Logger,
) *InvoiceService {
	return &InvoiceService{
		tesseract: tesseract,
		pdf:       pdf,
		workbook:  workbook,
		backups:   backups,
		cfg:       cfg,
		log:       log,
	}
}

// ProcessInvoice processes one invoice end to end. Extraction errors abort
// with no partial output; validation mismatches are reported in the
// response; persistence failures abort after the result has been fully
// computed.
func (s *InvoiceService) ProcessInvoice(req *dto.ProcessInvoiceRequest) (*dto.ProcessInvoiceResponse, error) {
	runID := uuid.NewString()
	startedAt := time.Now()
	log := s.log.With().Str("run_id", runID).Logger()

	people, rosterWarnings, err := s.workbook.LoadRoster(s.cfg.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	settings, settingWarnings, err := s.workbook.LoadProjectSettings(s.cfg.RosterPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load project settings: %w", err)
	}
	resolver := NewSettingsResolver(settings, DefaultProjectSettings, log)

	text := req.Text
	if text == "" {
		text, err = s.readInvoiceText(req, log)
		if err != nil {
			return nil, err
		}
	}

	invoice, err := utils.ParseLicenseText(text)
	if err != nil {
		return nil, err
	}
	for _, t := range dto.AllLicenseTypes {
		if !invoice.HasLicense(t) {
			log.Info().Str("license_type", string(t)).Msg("license type not present on invoice")
		}
	}

	rows := NewAllocationEngine(resolver, s.cfg.Approver, log).Allocate(invoice, people)
	report := NewValidator(log).Validate(rows, invoice, people)
	comment := ComposeComment(invoice, people, resolver)

	var warnings []string
	warnings = append(warnings, rosterWarnings...)
	warnings = append(warnings, settingWarnings...)
	warnings = append(warnings, resolver.Warnings()...)

	// The result is now complete in memory; everything below is persistence
	// and may be retried by the caller on failure.
	var backupFiles []string
	for _, snapshot := range []struct {
		kind    string
		payload interface{}
	}{
		{"ocr_backup", text},
		{"parsed_licenses", invoice},
		{"accounting_rows", rows},
	} {
		path, err := s.backups.Save(snapshot.kind, runID, startedAt, snapshot.payload)
		if err != nil {
			return nil, err
		}
		backupFiles = append(backupFiles, path)
	}

	outputFile := filepath.Join(s.cfg.OutputDir, fmt.Sprintf("kontering_%s.xlsx", startedAt.Format("20060102_150405")))
	if err := s.workbook.WriteAccountingRows(rows, outputFile); err != nil {
		return nil, &PersistenceError{Path: outputFile, Err: err}
	}

	log.Info().Int("rows", len(rows)).Bool("validation_ok", report.OK()).
		Msg("invoice processed")

	return &dto.ProcessInvoiceResponse{
		RunID:          runID,
		Invoice:        invoice,
		AccountingRows: rows,
		Validation:     report,
		Comment:        comment,
		Warnings:       warnings,
		OutputFile:     outputFile,
		BackupFiles:    backupFiles,
		ProcessedAt:    startedAt.Format(time.RFC3339),
	}, nil
}

// readInvoiceText pulls text out of the uploaded PDF: the embedded text
// layer when present, image-based OCR for scanned documents.
func (s *InvoiceService) readInvoiceText(req *dto.ProcessInvoiceRequest, log zerolog.Logger) (string, error) {
	f, err := req.File.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload %s: %w", req.File.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("failed to read upload %s: %w", req.File.Filename, err)
	}

	text, err := s.pdf.ExtractText(data)
	if err != nil {
		log.Warn().Err(err).Msg("pdf text extraction failed, falling back to OCR")
	}

	if len(strings.TrimSpace(text)) < 20 {
		log.Info().Msg("pdf has no usable text layer, running OCR on page images")
		text, err = s.ocrPages(data, log)
		if err != nil {
			return "", err
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("no text could be extracted from %s", req.File.Filename)
	}
	return text, nil
}

func (s *InvoiceService) ocrPages(pdfData []byte, log zerolog.Logger) (string, error) {
	images, err := s.pdf.ExtractImages(pdfData)
	if err != nil {
		return "", fmt.Errorf("failed to extract page images: %w", err)
	}
	if len(images) == 0 {
		return "", fmt.Errorf("pdf contains no extractable page images")
	}

	var combined strings.Builder
	for i, img := range images {
		tempImg, err := saveImageToTempFile(img)
		if err != nil {
			log.Warn().Err(err).Int("page", i+1).Msg("failed to stage page image for OCR")
			continue
		}

		pageText, confidence, err := s.tesseract.ExtractTextFromImageFile(tempImg)
		os.Remove(tempImg)
		if err != nil {
			log.Warn().Err(err).Int("page", i+1).Msg("OCR failed for page")
			continue
		}
		if confidence > 0 && confidence < lowConfidenceThreshold {
			log.Warn().Float64("confidence", confidence).Int("page", i+1).
				Msg("low OCR confidence")
		}

		combined.WriteString(pageText)
		combined.WriteString("\n")
	}

	return combined.String(), nil
}

// saveImageToTempFile stages an image.Image as a temporary PNG for the OCR
// engine, which reads from disk.
func saveImageToTempFile(img image.Image) (string, error) {
	tempFile, err := os.CreateTemp("", "invoice-page-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create temp image file: %w", err)
	}
	defer tempFile.Close()

	if err := png.Encode(tempFile, img); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("failed to encode image to PNG: %w", err)
	}

	return tempFile.Name(), nil
}
