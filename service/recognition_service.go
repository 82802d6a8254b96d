package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stoyanh/receipt-scanner/dto"
	"github.com/stoyanh/receipt-scanner/logger"
	"github.com/stoyanh/receipt-scanner/utils"
)

// engineLanguages maps UI language tags to Tesseract identifiers. The
// mapping is total: anything outside the supported set resolves to
// Bulgarian.
var engineLanguages = map[string]string{
	"bg": "bul",
	"en": "eng",
	"ru": "rus",
	"de": "deu",
	"fr": "fra",
}

// MapLanguage resolves a UI language tag to the recognition engine's own
// identifier, defaulting to Bulgarian for unsupported tags.
func MapLanguage(tag string) string {
	if lang, ok := engineLanguages[tag]; ok {
		return lang
	}
	return "bul"
}

// fiscalQRMarker separates decoded fiscal QR data from the OCR text.
const fiscalQRMarker = "--- QR ---"

// OCREngine abstracts the text extraction backend
type OCREngine interface {
	ExtractText(imageData []byte, engineLang string) (string, error)
}

// RecognitionService turns a submitted receipt image into plain text.
// Unrecoverable engine failures are masked with a per-language stand-in text
// so the pipeline stays non-blocking; the result's Source field records
// which path produced it.
type RecognitionService struct {
	engine OCREngine
	pdf    PDFProcessor
	log    zerolog.Logger
}

func NewRecognitionService(engine OCREngine, pdf PDFProcessor) *RecognitionService {
	return &RecognitionService{
		engine: engine,
		pdf:    pdf,
		log:    logger.WithComponent("recognition"),
	}
}

// Recognize extracts text from a data-URL or raw base64 image payload.
// Only the empty-payload case is an error; engine failures yield a fallback
// result instead.
func (s *RecognitionService) Recognize(ctx context.Context, imageData, language string) (dto.RecognitionResult, error) {
	if strings.TrimSpace(imageData) == "" {
		return dto.RecognitionResult{}, dto.ErrEmptyImage
	}

	raw, mimeType, err := decodeImagePayload(imageData)
	if err != nil {
		return dto.RecognitionResult{}, err
	}

	if strings.Contains(mimeType, "pdf") {
		return s.recognizePDF(raw, language)
	}

	text, err := s.recognizeImage(raw, language)
	if err != nil {
		s.log.Error().Err(err).Str("language", language).Msg("recognition failed, returning fallback text")
		return dto.RecognitionResult{
			Text:     fallbackText(language),
			Language: language,
			Source:   dto.SourceFallback,
		}, nil
	}

	return dto.RecognitionResult{
		Text:     text,
		Language: language,
		Source:   dto.SourceEngine,
	}, nil
}

// recognizeImage preprocesses and OCRs a single image. A preprocessing
// failure is non-fatal: the original bytes are used instead.
func (s *RecognitionService) recognizeImage(raw []byte, language string) (string, error) {
	ocrInput := raw
	if processed, err := preprocessImage(raw); err != nil {
		s.log.Warn().Err(err).Msg("preprocessing failed, using original image")
	} else {
		ocrInput = processed
	}

	text, err := s.engine.ExtractText(ocrInput, MapLanguage(language))
	if err != nil {
		return "", err
	}

	if qr := s.decodeFiscalQR(raw); qr != "" {
		text = text + "\n" + fiscalQRMarker + "\n" + qr
	}

	return text, nil
}

// recognizePDF prefers the PDF text layer; scanned PDFs without one are
// rasterized and OCRed page by page.
func (s *RecognitionService) recognizePDF(raw []byte, language string) (dto.RecognitionResult, error) {
	text, err := s.pdf.ExtractText(raw)
	if err == nil && strings.TrimSpace(text) != "" {
		return dto.RecognitionResult{Text: text, Language: language, Source: dto.SourceEngine}, nil
	}

	images, err := s.pdf.ExtractImages(raw)
	if err != nil || len(images) == 0 {
		s.log.Error().Err(err).Msg("PDF recognition failed, returning fallback text")
		return dto.RecognitionResult{
			Text:     fallbackText(language),
			Language: language,
			Source:   dto.SourceFallback,
		}, nil
	}

	var pages []string
	for _, img := range images {
		encoded, err := encodePNG(img)
		if err != nil {
			continue
		}
		pageText, err := s.recognizeImage(encoded, language)
		if err != nil {
			continue
		}
		pages = append(pages, pageText)
	}

	if len(pages) == 0 {
		return dto.RecognitionResult{
			Text:     fallbackText(language),
			Language: language,
			Source:   dto.SourceFallback,
		}, nil
	}

	return dto.RecognitionResult{
		Text:     strings.Join(pages, "\n"),
		Language: language,
		Source:   dto.SourceEngine,
	}, nil
}

// decodeFiscalQR best-effort decodes the fiscal QR code from the original
// (unprocessed) image. Failures are silent: most photographed receipts crop
// the code out.
func (s *RecognitionService) decodeFiscalQR(raw []byte) string {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	qr, err := utils.DecodeFiscalQR(img)
	if err != nil {
		return ""
	}

	s.log.Debug().Msg("decoded fiscal QR code")
	return qr
}

// decodeImagePayload accepts either a full data URL
// (data:image/png;base64,...) or a raw base64 string and returns the decoded
// bytes plus the declared MIME type.
func decodeImagePayload(imageData string) ([]byte, string, error) {
	mimeType := "image/png"
	payload := imageData

	if strings.HasPrefix(imageData, "data:") {
		idx := strings.Index(imageData, ",")
		if idx < 0 {
			return nil, "", fmt.Errorf("%w: malformed data URL", dto.ErrInvalidImage)
		}
		header := imageData[len("data:"):idx]
		if semi := strings.Index(header, ";"); semi >= 0 {
			mimeType = header[:semi]
		} else if header != "" {
			mimeType = header
		}
		payload = imageData[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("%w: not valid base64", dto.ErrInvalidImage)
	}
	if len(raw) == 0 {
		return nil, "", dto.ErrEmptyImage
	}

	return raw, mimeType, nil
}
