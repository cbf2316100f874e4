package config

import (
	"log"
	"os"
)

type Config struct {
	Port    string
	DBDSN   string
	LogFile string

	MidtransServerKey string
	MidtransBaseURL   string
	FonnteToken       string
	FonnteBaseURL     string
	OpsPhone          string
	FrontendURL       string
}

func Load() Config {
	cfg := Config{
		Port:              getenv("PORT", "8080"),
		DBDSN:             getenv("DB_DSN", "dkmandiri.db"), // sqlite file in project root
		LogFile:           getenv("LOG_FILE", "./dkmandiri.log"),
		MidtransServerKey: os.Getenv("MIDTRANS_SERVER_KEY"),
		MidtransBaseURL:   getenv("MIDTRANS_BASE_URL", "https://app.sandbox.midtrans.com"),
		FonnteToken:       os.Getenv("FONNTE_TOKEN"),
		FonnteBaseURL:     getenv("FONNTE_BASE_URL", "https://api.fonnte.com"),
		OpsPhone:          getenv("OPS_PHONE", "6281227848422"),
		FrontendURL:       getenv("FRONTEND_URL", "http://localhost:3000"),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s MIDTRANS_BASE_URL=%s", cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.MidtransBaseURL)
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
