package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName string
	LogLevel    string

	ListenAddr string

	APIBaseURL     string
	RequestTimeout time.Duration
	SessionTTL     time.Duration

	AdminPathPrefix string
	AdminLoginPath  string

	TokenDBPath string
	PolicyPath  string

	KafkaBrokers []string
	KafkaTopic   string
}

func Load() Config {
	return Config{
		ServiceName: EnvDefault("SERVICE_NAME", "clinic-gateway"),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		ListenAddr: EnvDefault("GATEWAY_ADDR", ":8080"),

		APIBaseURL:     EnvDefault("API_BASE_URL", "http://localhost:3000/api/v1"),
		RequestTimeout: EnvDurationDefault("API_TIMEOUT", 15*time.Second),
		SessionTTL:     EnvDurationDefault("SESSION_TTL", 12*time.Hour),

		AdminPathPrefix: EnvDefault("ADMIN_PATH_PREFIX", "/admins-otolor"),
		AdminLoginPath:  EnvDefault("ADMIN_LOGIN_PATH", "/admins-otolor/login"),

		TokenDBPath: EnvDefault("TOKEN_DB_PATH", "tokens.db"),
		PolicyPath:  os.Getenv("RBAC_POLICY_PATH"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_AUDIT_TOPIC", "auth-events"),
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if os.Getenv(key) != "" {
		return os.Getenv(key)
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
