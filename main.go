package main

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/stoyanh/receipt-scanner/client"
	"github.com/stoyanh/receipt-scanner/config"
	"github.com/stoyanh/receipt-scanner/handler"
	"github.com/stoyanh/receipt-scanner/logger"
	"github.com/stoyanh/receipt-scanner/service"
	"github.com/stoyanh/receipt-scanner/store"
)

//go:embed web/index.html
var indexHTML []byte

func main() {
	cfg := config.LoadConfig()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)

	if !cfg.HasOpenAIKey() {
		log.Warn().Msg("OPENAI_API_KEY is not set; /api/analyze-receipt will reject requests")
	}

	// Clients
	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath)
	defer tesseractClient.Close()
	openaiClient := client.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel)

	// Services
	pdfProcessor := service.NewPDFProcessor()
	recognitionService := service.NewRecognitionService(tesseractClient, pdfProcessor)
	analysisService := service.NewAnalysisService(openaiClient)

	// In-memory store, constructed once and passed by handle so tests can
	// substitute their own instance.
	receiptStore := store.NewReceiptStore()

	// Handlers
	receiptHandler := handler.NewReceiptHandler(recognitionService, analysisService, receiptStore, cfg.HasOpenAIKey())
	keyHandler := handler.NewKeyHandler(openaiClient, cfg.HasOpenAIKey())

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Receipt Scanner",
		})
	})

	api := router.Group("/api")
	{
		api.POST("/ocr", receiptHandler.PerformOCR)
		api.POST("/analyze-receipt", receiptHandler.AnalyzeReceipt)
		api.GET("/receipts", receiptHandler.ListReceipts)
		api.GET("/receipts/:id", receiptHandler.GetReceipt)
		api.GET("/check-openai-key", keyHandler.CheckOpenAIKey)
	}

	log.Info().Str("port", cfg.ServerPort).Msg("starting receipt scanner service")
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
