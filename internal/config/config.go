// Package config loads process configuration from the environment.
//
// Every key is prefixed with OCR_FIELDS_. A .env file in the working
// directory is read first when present; variables already set in the
// environment win over it.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ironsheep/ocr-fields/internal/logger"
	"github.com/ironsheep/ocr-fields/internal/ocr"
	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Engine names accepted in OCR_FIELDS_ENGINE.
const (
	EngineGosseract = "gosseract"
	EngineCommand   = "command"
)

// Prefix is prepended to every environment key.
const Prefix = "OCR_FIELDS_"

type Config struct {
	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string

	// OCR Engine Configuration
	Engine         string
	TesseractCmd   string
	TessdataPrefix string
	Lang           string
	OCRConfig      string
	OCRTimeout     time.Duration
	Nice           int

	// Pipeline Configuration
	Workers int
}

// LoadDotEnv reads the given .env files (default ".env") into the
// environment. A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	var errs []error

	config := &Config{
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:  getEnv("LOG_TIME_FORMAT", time.RFC3339),
		LogOutput:      getEnv("LOG_OUTPUT", "stderr"),
		Engine:         getEnv("ENGINE", EngineGosseract),
		TesseractCmd:   getEnv("TESSERACT_CMD", "tesseract"),
		TessdataPrefix: getEnv("TESSDATA_PREFIX", ""),
		Lang:           getEnv("LANG", ocr.DefaultLanguage),
		OCRConfig:      getEnv("OCR_CONFIG", ""),
		OCRTimeout:     getEnvDuration("OCR_TIMEOUT", 30*time.Second, &errs),
		Nice:           getEnvInt("NICE", 0, &errs),
		Workers:        getEnvInt("WORKERS", 1, &errs),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	switch c.Engine {
	case EngineGosseract, EngineCommand:
	default:
		return fmt.Errorf("%sENGINE must be %q or %q, got %q", Prefix, EngineGosseract, EngineCommand, c.Engine)
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("%sLOG_LEVEL %q is not a log level", Prefix, c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("%sLOG_FORMAT must be console or json, got %q", Prefix, c.LogFormat)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%sWORKERS must not be negative, got %d", Prefix, c.Workers)
	}
	if c.OCRTimeout < 0 {
		return fmt.Errorf("%sOCR_TIMEOUT must not be negative, got %s", Prefix, c.OCRTimeout)
	}
	if c.Nice < -20 || c.Nice > 19 {
		return fmt.Errorf("%sNICE must be between -20 and 19, got %d", Prefix, c.Nice)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// OCROptions returns the environment's OCR defaults. A fields file may
// override them.
func (c *Config) OCROptions() ocr.Options {
	return ocr.Options{
		Language:       c.Lang,
		Config:         c.OCRConfig,
		Nice:           c.Nice,
		Timeout:        c.OCRTimeout,
		Command:        c.TesseractCmd,
		TessdataPrefix: c.TessdataPrefix,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(Prefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int, errs *[]error) int {
	value := os.Getenv(Prefix + key)
	if value == "" {
		return defaultValue
	}
	n, err := cast.ToIntE(strings.TrimSpace(value))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", Prefix, key, err))
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	value := os.Getenv(Prefix + key)
	if value == "" {
		return defaultValue
	}
	d, err := cast.ToDurationE(strings.TrimSpace(value))
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s%s: %w", Prefix, key, err))
		return defaultValue
	}
	return d
}
