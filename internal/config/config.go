// Package config handles application configuration via environment variables.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"leadform-embed/internal/model"
)

// Config holds all configurable values for the app.
type Config struct {
	Env             string
	Mode            string
	ListenAddr      string
	FormConfigPath  string
	Source          model.Source
	APIEndpoint     string
	HTTPTimeout     time.Duration
	MinDwell        time.Duration
	SessionTTL      time.Duration
	MockSubmit      bool
	ResolveClientIP bool
}

// Load reads environment variables, after merging an optional .env file, and
// populates a Config struct. Invalid values panic.
func Load() *Config {
	_ = godotenv.Load()

	timeout := mustDuration("HTTP_TIMEOUT", "10s")
	dwell := mustDuration("MIN_DWELL", "3s")
	ttl := mustDuration("SESSION_TTL", "30m")

	source := model.SourceFloating
	switch v := getEnv("LEADFORM_VARIANT", "floating"); v {
	case "floating", string(model.SourceFloating):
	case "inline", string(model.SourceInline):
		source = model.SourceInline
	default:
		log.Panicf("Invalid LEADFORM_VARIANT: %q", v)
	}

	mode := getEnv("MODE", "serve")
	if mode != "serve" && mode != "prompt" {
		log.Panicf("Invalid MODE: %q", mode)
	}

	return &Config{
		Env:             getEnv("ENV", "development"),
		Mode:            mode,
		ListenAddr:      getEnv("LISTEN_ADDR", ":8080"),
		FormConfigPath:  getEnv("FORM_CONFIG", "leadform.yaml"),
		Source:          source,
		APIEndpoint:     getEnv("API_ENDPOINT", ""),
		HTTPTimeout:     timeout,
		MinDwell:        dwell,
		SessionTTL:      ttl,
		MockSubmit:      mustBool("MOCK_SUBMIT", "false"),
		ResolveClientIP: mustBool("RESOLVE_CLIENT_IP", "false"),
	}
}

func mustDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		log.Panicf("Invalid %s: %v", key, err)
	}
	return d
}

func mustBool(key, fallback string) bool {
	b, err := strconv.ParseBool(getEnv(key, fallback))
	if err != nil {
		log.Panicf("Invalid %s: %v", key, err)
	}
	return b
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
