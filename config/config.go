package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vovansuong/bao-cao-doanh-thu/logger"
)

const (
	PolicyContinue = "continue"
	PolicyFailFast = "fail_fast"

	EngineTesseract = "tesseract"
	EnginePaddle    = "paddle"
)

type Config struct {
	ServerPort         string `yaml:"server_port"`
	TesseractDataPath  string `yaml:"tessdata_prefix"`
	OCRLanguage        string `yaml:"ocr_language"`
	OCREngine          string `yaml:"ocr_engine"`
	PaddleAPIURL       string `yaml:"paddleocr_api_url"`
	UploadDir          string `yaml:"upload_dir"`
	KeepUploads        bool   `yaml:"keep_uploads"`
	MaxFileSize        int64  `yaml:"max_file_size"`
	MaxMultipartMemory int64  `yaml:"max_multipart_memory"`

	OCRWorkers    int           `yaml:"ocr_workers"`
	OCRTimeout    time.Duration `yaml:"ocr_timeout"`
	FailurePolicy string        `yaml:"batch_failure_policy"`
	BatchTTL      time.Duration `yaml:"batch_ttl"`
	MaxBatches    int           `yaml:"max_batches"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	LogOutput string `yaml:"log_output"`
}

// Default returns the configuration used when neither file nor environment set a value.
func Default() *Config {
	return &Config{
		ServerPort:         "8080",
		TesseractDataPath:  "/usr/share/tesseract-ocr/5/tessdata/",
		OCRLanguage:        "vie",
		OCREngine:          EngineTesseract,
		PaddleAPIURL:       "http://paddleocr:8866/predict/ocr_system",
		UploadDir:          "./uploads",
		KeepUploads:        true,
		MaxFileSize:        10 * 1024 * 1024, // 10 MB
		MaxMultipartMemory: 32 << 20,
		OCRWorkers:         4,
		OCRTimeout:         60 * time.Second,
		FailurePolicy:      PolicyContinue,
		BatchTTL:           time.Hour,
		MaxBatches:         100,
		LogLevel:           "info",
		LogFormat:          "console",
		LogOutput:          "stdout",
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file
// named by CONFIG_FILE, and then environment variables, in that order.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.TesseractDataPath = getEnv("TESSDATA_PREFIX", c.TesseractDataPath)
	c.OCRLanguage = getEnv("OCR_LANGUAGE", c.OCRLanguage)
	c.OCREngine = strings.ToLower(getEnv("OCR_ENGINE", c.OCREngine))
	c.PaddleAPIURL = getEnv("PADDLEOCR_API_URL", c.PaddleAPIURL)
	c.UploadDir = getEnv("UPLOAD_DIR", c.UploadDir)
	c.KeepUploads = getEnvBool("KEEP_UPLOADS", c.KeepUploads)
	c.MaxFileSize = getEnvInt64("MAX_FILE_SIZE", c.MaxFileSize)
	c.MaxMultipartMemory = getEnvInt64("MAX_MULTIPART_MEMORY", c.MaxMultipartMemory)
	c.OCRWorkers = int(getEnvInt64("OCR_WORKERS", int64(c.OCRWorkers)))
	c.OCRTimeout = getEnvDuration("OCR_TIMEOUT", c.OCRTimeout)
	c.FailurePolicy = strings.ToLower(getEnv("BATCH_FAILURE_POLICY", c.FailurePolicy))
	c.BatchTTL = getEnvDuration("BATCH_TTL", c.BatchTTL)
	c.MaxBatches = int(getEnvInt64("MAX_BATCHES", int64(c.MaxBatches)))
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogOutput = getEnv("LOG_OUTPUT", c.LogOutput)
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}
	switch c.OCREngine {
	case EngineTesseract, EnginePaddle:
	default:
		return fmt.Errorf("unsupported OCR_ENGINE %q", c.OCREngine)
	}
	switch c.FailurePolicy {
	case PolicyContinue, PolicyFailFast:
	default:
		return fmt.Errorf("unsupported BATCH_FAILURE_POLICY %q", c.FailurePolicy)
	}
	if c.OCRWorkers <= 0 {
		return fmt.Errorf("OCR_WORKERS must be positive, got %d", c.OCRWorkers)
	}
	if c.OCRTimeout <= 0 {
		return fmt.Errorf("OCR_TIMEOUT must be positive")
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("MAX_FILE_SIZE must be positive")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: time.RFC3339,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
