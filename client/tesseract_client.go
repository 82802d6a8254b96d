package client

import (
	"fmt"
	"os"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"

	"github.com/stoyanh/receipt-scanner/logger"
)

// TesseractClient wraps the Tesseract OCR engine
type TesseractClient struct {
	dataPath string
	log      zerolog.Logger
}

func NewTesseractClient(dataPath string) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
		log:      logger.WithComponent("tesseract"),
	}
}

// ExtractText runs OCR over the given image bytes. engineLang is a Tesseract
// language identifier (e.g. "bul", "eng"), not a UI language tag. The image
// is written to a temporary file which is removed before returning.
func (tc *TesseractClient) ExtractText(imageData []byte, engineLang string) (string, error) {
	tempFile, err := tc.createTempFile(imageData)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tempFile)

	text, err := tc.extractText(tempFile, engineLang)
	if err != nil {
		return "", fmt.Errorf("OCR extraction failed: %w", err)
	}

	tc.log.Debug().Int("chars", len(text)).Str("lang", engineLang).Msg("OCR extraction completed")
	return text, nil
}

func (tc *TesseractClient) createTempFile(data []byte) (string, error) {
	tempFile, err := os.CreateTemp("", "receipt-ocr-*.png")
	if err != nil {
		return "", err
	}
	defer tempFile.Close()

	if _, err := tempFile.Write(data); err != nil {
		os.Remove(tempFile.Name())
		return "", err
	}

	return tempFile.Name(), nil
}

func (tc *TesseractClient) extractText(filePath, engineLang string) (string, error) {
	c := gosseract.NewClient()
	defer c.Close()

	if tc.dataPath != "" {
		c.SetTessdataPrefix(tc.dataPath)
	}

	if err := c.SetLanguage(engineLang); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if err := c.SetImage(filePath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	return text, nil
}

// Close performs cleanup
func (tc *TesseractClient) Close() {
	tc.log.Debug().Msg("Tesseract client closed")
}
