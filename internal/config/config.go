// SPDX-License-Identifier: Apache-2.0

// Package config reads process settings from the environment and an optional
// .env file.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/edidecode/edi-mcp/internal/edi"
)

// Config holds the settings shared by the CLI commands and the MCP server.
// Command-line flags take precedence over these values.
type Config struct {
	Dialect             string
	ElementSeparator    string
	SegmentSeparator    string
	SubelementSeparator string
	DateFormatOut       string
	DBPath              string
	LogLevel            zerolog.Level
	Workers             int
}

// Load reads the configuration. A missing .env file is not an error.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		Dialect:             getEnv("EDI_DIALECT", ""),
		ElementSeparator:    getEnv("EDI_ELEMENT_SEPARATOR", ""),
		SegmentSeparator:    getEnv("EDI_SEGMENT_SEPARATOR", ""),
		SubelementSeparator: getEnv("EDI_SUBELEMENT_SEPARATOR", ""),
		DateFormatOut:       getEnv("EDI_DATE_FORMAT_OUT", edi.DefaultDateFormatOut),
		DBPath:              getEnv("EDI_DB_PATH", ""),
		LogLevel:            getEnvLevel("EDI_LOG_LEVEL", zerolog.InfoLevel),
		Workers:             getEnvInt("EDI_WORKERS", 4),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer, using default")
		return fallback
	}
	return n
}

func getEnvLevel(key string, fallback zerolog.Level) zerolog.Level {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	level, err := zerolog.ParseLevel(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid log level, using default")
		return fallback
	}
	return level
}
