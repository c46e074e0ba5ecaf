package main

import (
	"github.com/gin-gonic/gin"

	"github.com/mhedlund/csp-invoice-allocator/client"
	"github.com/mhedlund/csp-invoice-allocator/config"
	"github.com/mhedlund/csp-invoice-allocator/handler"
	"github.com/mhedlund/csp-invoice-allocator/logger"
	"github.com/mhedlund/csp-invoice-allocator/service"
)

func main() {
	log := logger.New()

	cfg := config.LoadConfig()
	log.Info().Str("roster", cfg.RosterPath).Str("output", cfg.OutputDir).
		Str("ocr_language", cfg.OCRLanguage).Msg("configuration loaded")

	tesseractClient := client.NewTesseractClient(cfg.TesseractDataPath, cfg.OCRLanguage, log)
	defer tesseractClient.Close()

	workbookClient := client.NewWorkbookClient(log)
	pdfProcessor := service.NewPDFProcessor()
	backupStore := service.NewBackupStore(cfg.OutputDir, log)

	invoiceService := service.NewInvoiceService(
		tesseractClient, pdfProcessor, workbookClient, backupStore, cfg, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)

	router := gin.Default()
	router.MaxMultipartMemory = cfg.MaxFileSize

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "CSP Invoice Allocator",
		})
	})

	api := router.Group("/api/v1")
	{
		invoice := api.Group("/invoice")
		{
			invoice.POST("/process", invoiceHandler.ProcessInvoice)
		}
	}

	log.Info().Str("port", cfg.ServerPort).Msg("starting CSP invoice allocator")
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
