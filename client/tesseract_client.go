package client

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"
)

// TesseractClient wraps the Tesseract OCR engine. The invoice vendor bills
// in Swedish, so the language is configurable and defaults to "swe".
type TesseractClient struct {
	dataPath string
	language string
	log      zerolog.Logger
}

func NewTesseractClient(dataPath, language string, log zerolog.Logger) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
		language: language,
		log:      log,
	}
}

// ExtractTextFromImageFile runs OCR over one page image and returns the text
// together with the mean word confidence reported by the engine.
func (tc *TesseractClient) ExtractTextFromImageFile(filePath string) (string, float64, error) {
	ocr := gosseract.NewClient()
	defer ocr.Close()

	ocr.SetTessdataPrefix(tc.dataPath)
	if err := ocr.SetLanguage(tc.language); err != nil {
		return "", 0, fmt.Errorf("failed to set OCR language %q: %w", tc.language, err)
	}

	if err := ocr.SetImage(filePath); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := ocr.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}

	boxes, err := ocr.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		// Confidence is advisory; text extraction already succeeded.
		return text, 0, nil
	}

	var totalConf float64
	for _, box := range boxes {
		totalConf += box.Confidence
	}

	avgConf := 0.0
	if len(boxes) > 0 {
		avgConf = totalConf / float64(len(boxes))
	}

	return text, avgConf, nil
}

// Close performs cleanup.
func (tc *TesseractClient) Close() {
	tc.log.Debug().Msg("tesseract client closed")
}
