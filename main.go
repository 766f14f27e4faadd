package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/vovansuong/bao-cao-doanh-thu/cmd"
	"github.com/vovansuong/bao-cao-doanh-thu/config"
	"github.com/vovansuong/bao-cao-doanh-thu/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.Setup(cfg.GetLoggerConfig()); err != nil {
		log.Printf("Warning: Invalid logger configuration: %v", err)
		if err := logger.Setup(logger.DefaultConfig()); err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
	}

	cmd.Execute(cfg)
}
