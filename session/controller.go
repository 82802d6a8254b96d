// Package session drives the receipt pipeline on behalf of a user interface:
// load an image, recognize its text, edit, analyze.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stoyanh/receipt-scanner/dto"
	"github.com/stoyanh/receipt-scanner/notify"
	"github.com/stoyanh/receipt-scanner/progress"
)

// State is the controller's position in the pipeline
type State string

const (
	StateEmpty              State = "empty"
	StateImageLoaded        State = "image-loaded"
	StateOCRInProgress      State = "ocr-in-progress"
	StateTextReady          State = "text-ready"
	StateAnalysisInProgress State = "analysis-in-progress"
	StateAnalyzed           State = "analyzed"
)

// AnalysisResult is the transient analysis output held by the controller
type AnalysisResult struct {
	Text      string
	Timestamp time.Time
}

// Pipeline is the subset of the API the controller drives
type Pipeline interface {
	PerformOCR(ctx context.Context, imageBase64, language string) (*dto.OCRResponse, error)
	AnalyzeReceipt(ctx context.Context, text, language string) (*dto.AnalyzeResponse, error)
}

// Controller owns the client-side pipeline state. Failed operations return
// to the pre-action state; there is no persistent error state, only status
// messages. There is no request fencing: a response arriving after Reset
// will still land (known limitation carried over from the original flow).
type Controller struct {
	mu        sync.Mutex
	state     State
	imageData string
	language  string
	ocrText   string
	analysis  AnalysisResult

	api      Pipeline
	Status   *notify.Center
	Progress *progress.Tracker
}

func NewController(api Pipeline) *Controller {
	return &Controller{
		state:    StateEmpty,
		language: dto.DefaultLanguage,
		api:      api,
		Status:   notify.NewCenter(notify.DefaultTTL),
		Progress: progress.NewTracker(),
	}
}

// LoadImage accepts a captured or uploaded image as a data URL or raw base64.
func (c *Controller) LoadImage(imageData string) {
	if imageData == "" {
		c.Status.Show("Моля, първо качете изображение.", dto.StatusWarning)
		return
	}

	c.mu.Lock()
	c.imageData = imageData
	c.state = StateImageLoaded
	c.mu.Unlock()
}

// Reset discards the image and any recognized text.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.imageData = ""
	c.ocrText = ""
	c.state = StateEmpty
	c.mu.Unlock()
}

// RecognizeText runs OCR on the loaded image. Guarded: requires an image and
// no recognition or analysis in flight.
func (c *Controller) RecognizeText(ctx context.Context) error {
	c.mu.Lock()
	if c.imageData == "" {
		c.mu.Unlock()
		c.Status.Show("Моля, първо качете изображение.", dto.StatusWarning)
		return fmt.Errorf("no image loaded")
	}
	if c.state == StateOCRInProgress || c.state == StateAnalysisInProgress {
		c.mu.Unlock()
		return fmt.Errorf("operation already in progress")
	}
	prev := c.state
	c.state = StateOCRInProgress
	imageData, language := c.imageData, c.language
	c.mu.Unlock()

	c.Progress.Start(200*time.Millisecond, 5)

	resp, err := c.api.PerformOCR(ctx, imageData, language)
	if err != nil {
		c.Progress.Fail()
		c.mu.Lock()
		c.state = prev
		c.mu.Unlock()
		c.Status.Show(fmt.Sprintf("Грешка при OCR обработката: %v", err), dto.StatusError)
		return err
	}

	c.Progress.Complete()

	c.mu.Lock()
	c.ocrText = resp.Text
	c.state = StateTextReady
	c.mu.Unlock()

	c.Status.Show("OCR обработката завърши успешно!", dto.StatusSuccess)
	return nil
}

// SetText replaces the recognized text with a hand-edited version.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ocrText = text
	if text != "" && (c.state == StateImageLoaded || c.state == StateEmpty) {
		c.state = StateTextReady
	}
}

// SetLanguage changes the recognition language tag.
func (c *Controller) SetLanguage(language string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.language = language
}

// AnalyzeText sends the current text for analysis. Guarded: requires
// non-empty text and no recognition or analysis in flight. On failure the
// controller returns to text-ready.
func (c *Controller) AnalyzeText(ctx context.Context) error {
	c.mu.Lock()
	if c.ocrText == "" {
		c.mu.Unlock()
		c.Status.Show("Моля, първо извършете OCR или въведете текст.", dto.StatusWarning)
		return fmt.Errorf("no text to analyze")
	}
	if c.state == StateOCRInProgress || c.state == StateAnalysisInProgress {
		c.mu.Unlock()
		return fmt.Errorf("operation already in progress")
	}
	c.state = StateAnalysisInProgress
	text, language := c.ocrText, c.language
	c.mu.Unlock()

	resp, err := c.api.AnalyzeReceipt(ctx, text, language)
	if err != nil {
		c.mu.Lock()
		c.state = StateTextReady
		c.mu.Unlock()
		c.Status.Show(fmt.Sprintf("Грешка при анализа: %v", err), dto.StatusError)
		return err
	}

	c.mu.Lock()
	c.analysis = AnalysisResult{Text: resp.Text, Timestamp: time.Now()}
	c.state = StateAnalyzed
	c.mu.Unlock()

	c.Status.Show("AI анализът завърши успешно!", dto.StatusSuccess)
	return nil
}

// State returns the current pipeline state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Text returns the current (possibly edited) OCR text.
func (c *Controller) Text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ocrText
}

// Analysis returns the last analysis result.
func (c *Controller) Analysis() AnalysisResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.analysis
}

// Close releases the controller's timers.
func (c *Controller) Close() {
	c.Progress.Stop()
	c.Status.Close()
}
