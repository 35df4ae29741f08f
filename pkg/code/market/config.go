package market

import (
	"time"

	"github.com/code-payments/affiliate-market/pkg/config"
	"github.com/code-payments/affiliate-market/pkg/config/env"
	"github.com/code-payments/affiliate-market/pkg/config/memory"
	"github.com/code-payments/affiliate-market/pkg/config/wrapper"
)

const (
	envConfigPrefix = "MARKET_"

	CampaignLockTimeoutConfigEnvName = envConfigPrefix + "CAMPAIGN_LOCK_TIMEOUT"
	defaultCampaignLockTimeout       = 5 * time.Second

	CampaignLockStripesConfigEnvName = envConfigPrefix + "CAMPAIGN_LOCK_STRIPES"
	defaultCampaignLockStripes       = 1024

	CampaignAccountCacheBudgetConfigEnvName = envConfigPrefix + "CAMPAIGN_ACCOUNT_CACHE_BUDGET"
	defaultCampaignAccountCacheBudget       = 10_000
)

type conf struct {
	campaignLockTimeout        config.Duration
	campaignLockStripes        config.Uint64
	campaignAccountCacheBudget config.Uint64
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			campaignLockTimeout:        env.NewDurationConfig(CampaignLockTimeoutConfigEnvName, defaultCampaignLockTimeout),
			campaignLockStripes:        env.NewUint64Config(CampaignLockStripesConfigEnvName, defaultCampaignLockStripes),
			campaignAccountCacheBudget: env.NewUint64Config(CampaignAccountCacheBudgetConfigEnvName, defaultCampaignAccountCacheBudget),
		}
	}
}

type testOverrides struct {
	campaignLockTimeout time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	lockTimeout := defaultCampaignLockTimeout
	if overrides.campaignLockTimeout > 0 {
		lockTimeout = overrides.campaignLockTimeout
	}

	return func() *conf {
		return &conf{
			campaignLockTimeout:        wrapper.NewDurationConfig(memory.NewConfig(lockTimeout), defaultCampaignLockTimeout),
			campaignLockStripes:        wrapper.NewUint64Config(memory.NewConfig(uint64(defaultCampaignLockStripes)), defaultCampaignLockStripes),
			campaignAccountCacheBudget: wrapper.NewUint64Config(memory.NewConfig(uint64(defaultCampaignAccountCacheBudget)), defaultCampaignAccountCacheBudget),
		}
	}
}
