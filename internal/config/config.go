// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Environment variable names.
const (
	EnvAddr           = "DOCSCAN_ADDR"
	EnvLogLevel       = "DOCSCAN_LOG_LEVEL"
	EnvLogFormat      = "DOCSCAN_LOG_FORMAT"
	EnvBackend        = "DOCSCAN_BACKEND"
	EnvRequestTimeout = "DOCSCAN_REQUEST_TIMEOUT"
	EnvMaxBodyMB      = "DOCSCAN_MAX_BODY_MB"
	EnvOCRLanguage    = "DOCSCAN_OCR_LANGUAGE"
	EnvTessdataPrefix = "DOCSCAN_TESSDATA_PREFIX"
	EnvWorkers        = "DOCSCAN_WORKERS"
)

type Config struct {
	Addr           string
	LogLevel       logrus.Level
	LogJSON        bool
	Backend        string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	OCRLanguage    string
	TessdataPrefix string
	Workers        int
}

// Load reads the configuration, falling back to defaults for unset
// variables. Malformed values are errors rather than silently ignored.
func Load() (*Config, error) {
	level, err := logrus.ParseLevel(getEnv(EnvLogLevel, "info"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvLogLevel, err)
	}

	format := getEnv(EnvLogFormat, "text")
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("%s: must be text or json, got %q", EnvLogFormat, format)
	}

	timeout, err := time.ParseDuration(getEnv(EnvRequestTimeout, "30s"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("%s: invalid duration %q", EnvRequestTimeout, os.Getenv(EnvRequestTimeout))
	}

	maxMB, err := getEnvInt(EnvMaxBodyMB, 32)
	if err != nil {
		return nil, err
	}

	workers, err := getEnvInt(EnvWorkers, runtime.NumCPU())
	if err != nil {
		return nil, err
	}

	return &Config{
		Addr:           getEnv(EnvAddr, ":8000"),
		LogLevel:       level,
		LogJSON:        format == "json",
		Backend:        getEnv(EnvBackend, "native"),
		RequestTimeout: timeout,
		MaxBodyBytes:   int64(maxMB) << 20,
		OCRLanguage:    getEnv(EnvOCRLanguage, "eng"),
		TessdataPrefix: os.Getenv(EnvTessdataPrefix),
		Workers:        workers,
	}, nil
}

// ConfigureLogger applies the level and formatter to l.
func (c *Config) ConfigureLogger(l *logrus.Logger) {
	l.SetOutput(os.Stderr)
	l.SetLevel(c.LogLevel)
	if c.LogJSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s: must be a positive integer, got %q", key, val)
	}
	return n, nil
}
