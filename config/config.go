package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort        string
	TesseractDataPath string
	OCRLanguage       string
	RosterPath        string
	OutputDir         string
	Approver          string
	MaxFileSize       int64
}

func LoadConfig() *Config {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	return &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		TesseractDataPath: getEnv("TESSDATA_PREFIX", "/usr/share/tesseract-ocr/5/tessdata/"),
		OCRLanguage:       getEnv("OCR_LANGUAGE", "swe"),
		RosterPath:        getEnv("ROSTER_PATH", "data/users.xlsx"),
		OutputDir:         getEnv("OUTPUT_DIR", "output"),
		Approver:          getEnv("APPROVER", "John Munthe"),
		MaxFileSize:       32 * 1024 * 1024, // 32 MB
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
