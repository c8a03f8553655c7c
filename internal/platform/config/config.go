package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "bre-gateway/pkg/platform/strings"
)

// Config captures process-level configuration. Values come from environment
// variables so main stays lean and deployments stay twelve-factor.
type Config struct {
	Addr        string
	Environment string

	// Rules
	RulesDir        string // filesystem rule storage root
	RulesBucket     string // redis key prefix when redis storage is active
	DefaultRulePath string // rule evaluated when a request names none

	// Evaluator selection: "table" (decision-table engine) or "threshold"
	// (deterministic reference evaluator).
	EvaluatorMode string
	MinAge        int
	MinCIBILScore int

	// Infrastructure (each optional; empty disables the integration)
	RedisURL     string
	DatabaseURL  string
	KafkaBrokers []string
	KafkaTopic   string

	Redis RedisConfig
}

// RedisConfig tunes the shared Redis client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Evaluator modes.
const (
	EvaluatorTable     = "table"
	EvaluatorThreshold = "threshold"
)

// FromEnv builds a Config from environment variables, applying development
// defaults where unset.
func FromEnv() Config {
	cfg := Config{
		Addr:            envOr("BRE_GATEWAY_ADDR", ":8080"),
		Environment:     envOr("BRE_GATEWAY_ENV", "development"),
		RulesDir:        envOr("RULES_DIR", "rules"),
		RulesBucket:     envOr("RULES_REDIS_PREFIX", "rules:"),
		DefaultRulePath: envOr("DEFAULT_RULE_PATH", "kyc/eligibility.json"),
		EvaluatorMode:   envOr("EVALUATOR_MODE", EvaluatorTable),
		MinAge:          envIntOr("MIN_CUSTOMER_AGE", 18),
		MinCIBILScore:   envIntOr("MIN_CIBIL_SCORE", 650),
		RedisURL:        os.Getenv("REDIS_URL"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		KafkaTopic:      envOr("AUDIT_KAFKA_TOPIC", "bre.audit.decisions"),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = platformstrings.DedupeAndTrim(strings.Split(brokers, ","))
	}

	cfg.Redis = RedisConfig{
		URL:          cfg.RedisURL,
		PoolSize:     envIntOr("REDIS_POOL_SIZE", 10),
		MinIdleConns: envIntOr("REDIS_MIN_IDLE_CONNS", 2),
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
