package config

import (
	"fmt"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Identity.SigningSecret) < 32 {
		return fmt.Errorf("identity.signing_secret must be at least 32 characters (got %d)", len(c.Identity.SigningSecret))
	}
	if !strings.HasPrefix(c.Identity.ProfileURL, "http://") && !strings.HasPrefix(c.Identity.ProfileURL, "https://") {
		return fmt.Errorf("identity.profile_url must be an http(s) URL (got %q)", c.Identity.ProfileURL)
	}

	if err := c.Quota.validate(); err != nil {
		return fmt.Errorf("quota: %w", err)
	}

	return nil
}

func (q QuotaConfig) validate() error {
	if q.FreeAgentLimit == 0 || q.PremiumAgentLimit == 0 {
		return fmt.Errorf("agent limits must be positive or -1 for unlimited, never 0")
	}
	if q.DefaultMonthlyTokens <= 0 {
		return fmt.Errorf("default_monthly_tokens must be > 0 (got %d)", q.DefaultMonthlyTokens)
	}
	if q.TraceRetentionDays <= 0 {
		return fmt.Errorf("trace_retention_days must be > 0 (got %d)", q.TraceRetentionDays)
	}
	if q.PurgeBatchSize <= 0 {
		return fmt.Errorf("purge_batch_size must be > 0 (got %d)", q.PurgeBatchSize)
	}
	return nil
}
