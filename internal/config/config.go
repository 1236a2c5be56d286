package config

import (
	"os"
	"time"
)

// Config carries the process-level settings read from the environment.
// Secrets used inside a single package (JWT_SECRET, MONGO_URI, REDIS_URL)
// are read where they are used; this struct only holds what main wires.
type Config struct {
	Port           string
	DatabaseName   string
	MQTTBroker     string
	TelemetryTopic string
	SafetyTopic    string
	RefreshTTL     time.Duration
}

// Load reads configuration from the environment with defaults.
func Load() *Config {
	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		DatabaseName:   getenv("DB_NAME", "forklift_safety"),
		MQTTBroker:     os.Getenv("MQTT_BROKER"),
		TelemetryTopic: getenv("MQTT_TELEMETRY_TOPIC", "fleet/telemetry"),
		SafetyTopic:    getenv("MQTT_SAFETY_TOPIC", "fleet/safety"),
		RefreshTTL:     720 * time.Hour,
	}

	if ttl := os.Getenv("REFRESH_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil {
			cfg.RefreshTTL = parsed
		}
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
