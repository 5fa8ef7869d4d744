package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Database DatabaseConfig         `yaml:"database"`
	Identity IdentityProviderConfig `yaml:"identity"`
	Quota    QuotaConfig            `yaml:"quota"`
	Log      LogConfig              `yaml:"log"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// IdentityProviderConfig holds settings for verifying provider sessions and
// fetching user profiles during auto-provisioning.
type IdentityProviderConfig struct {
	Issuer        string        `yaml:"issuer"         env:"IDP_ISSUER"         env-required:"true"`
	SigningSecret string        `yaml:"signing_secret" env:"IDP_SIGNING_SECRET" env-required:"true"`
	ProfileURL    string        `yaml:"profile_url"    env:"IDP_PROFILE_URL"    env-required:"true"`
	HTTPTimeout   time.Duration `yaml:"http_timeout"   env:"IDP_HTTP_TIMEOUT"   env-default:"10s"`
}

// QuotaConfig holds tier-parameterized usage limits.
// Agent limits below 0 mean unlimited.
type QuotaConfig struct {
	FreeAgentLimit         int `yaml:"free_agent_limit"          env:"QUOTA_FREE_AGENT_LIMIT"          env-default:"5"`
	PremiumAgentLimit      int `yaml:"premium_agent_limit"       env:"QUOTA_PREMIUM_AGENT_LIMIT"       env-default:"50"`
	EnterpriseAgentLimit   int `yaml:"enterprise_agent_limit"    env:"QUOTA_ENTERPRISE_AGENT_LIMIT"    env-default:"-1"`
	DefaultMonthlyTokens   int `yaml:"default_monthly_tokens"    env:"QUOTA_DEFAULT_MONTHLY_TOKENS"    env-default:"100000"`
	TraceRetentionDays     int `yaml:"trace_retention_days"      env:"QUOTA_TRACE_RETENTION_DAYS"      env-default:"90"`
	PurgeBatchSize         int `yaml:"purge_batch_size"          env:"QUOTA_PURGE_BATCH_SIZE"          env-default:"1000"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// AgentLimitForTier returns the agent-creation ceiling for a tier.
// Unknown tiers fall back to the free limit.
func (c QuotaConfig) AgentLimitForTier(tier string) int {
	switch tier {
	case "premium":
		return c.PremiumAgentLimit
	case "enterprise":
		return c.EnterpriseAgentLimit
	default:
		return c.FreeAgentLimit
	}
}
