package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port         int
	InputDir     string
	OutputDir    string
	Sheet        string
	Threshold    float64
	Mode         string
	StepFallback bool
	Workers      int
	LogLevel     string
	DatabaseURL  string
	NatsURL      string
	NatsToken    string
	APIToken     string
}

func Load() Config {
	return Config{
		Port:         envInt("GAZERUN_PORT", 8760),
		InputDir:     envStr("GAZERUN_INPUT_DIR", "input_metrics_data"),
		OutputDir:    envStr("GAZERUN_OUTPUT_DIR", "output_data"),
		Sheet:        envStr("GAZERUN_SHEET", "TPL_rawFilter_metrics"),
		Threshold:    envFloat("GAZERUN_THRESHOLD", 20),
		Mode:         envStr("GAZERUN_MODE", "at-most"),
		StepFallback: envBool("GAZERUN_STEP_FALLBACK", true),
		Workers:      envInt("GAZERUN_WORKERS", 1),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		DatabaseURL:  envStr("DATABASE_URL", ""),
		NatsURL:      envStr("NATS_URL", ""),
		NatsToken:    envStr("NATS_TOKEN", ""),
		APIToken:     envStr("GAZERUN_API_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
