package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	Database    *DBConfig
	Service     *ServiceConfig
	HealthCheck *HealthCheckConfig
	Router      *RouterConfig
	Seed        *SeedConfig
}

type DBConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"orchestration-router"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASS"`
	File     string `envconfig:"DB_FILE" default:"orchestration-router.db"`
}

type ServiceConfig struct {
	Address  string `envconfig:"SVC_ADDRESS" default:":8080"`
	LogLevel string `envconfig:"SVC_LOG_LEVEL" default:"info"`
	LogFile  string `envconfig:"SVC_LOG_FILE"`
}

type HealthCheckConfig struct {
	Interval               time.Duration `envconfig:"HEALTH_INTERVAL" default:"30s"`
	Timeout                time.Duration `envconfig:"HEALTH_TIMEOUT" default:"5s"`
	Path                   string        `envconfig:"HEALTH_PATH" default:"/health"`
	MaxConsecutiveFailures int           `envconfig:"HEALTH_MAX_CONSECUTIVE_FAILURES" default:"3"`
	DegradedLatency        time.Duration `envconfig:"HEALTH_DEGRADED_LATENCY" default:"2s"`
}

type RouterConfig struct {
	InvokeTimeout  time.Duration `envconfig:"ROUTER_INVOKE_TIMEOUT" default:"30s"`
	RetryOnFailure bool          `envconfig:"ROUTER_RETRY_ON_FAILURE" default:"true"`
}

// SeedConfig describes the policy created and activated on first boot when
// the store is empty, so steady state always has an active policy.
type SeedConfig struct {
	PolicyName      string `envconfig:"SEED_POLICY_NAME"`
	DefaultProvider string `envconfig:"SEED_DEFAULT_PROVIDER" default:"aws"`
	AWSTarget       string `envconfig:"SEED_AWS_TARGET"`
	AzureTarget     string `envconfig:"SEED_AZURE_TARGET"`
	GCPTarget       string `envconfig:"SEED_GCP_TARGET"`
}

func Load() (*Config, error) {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if cfg.Database.Type != "pgsql" && cfg.Database.Type != "sqlite" {
		log.Warnf("invalid DB_TYPE %q, defaulting to sqlite", cfg.Database.Type)
		cfg.Database.Type = "sqlite"
	}
	return cfg, nil
}
