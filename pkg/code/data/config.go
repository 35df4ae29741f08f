package data

import (
	"time"

	"github.com/code-payments/affiliate-market/pkg/config"
	"github.com/code-payments/affiliate-market/pkg/config/env"
	"github.com/code-payments/affiliate-market/pkg/config/memory"
	"github.com/code-payments/affiliate-market/pkg/config/wrapper"
)

const (
	envConfigPrefix = "DATABASE_"

	UseAwsIamAuthConfigEnvName = envConfigPrefix + "USE_AWS_IAM_AUTH"
	defaultUseAwsIamAuth       = false

	MaxSerializationRetriesConfigEnvName = envConfigPrefix + "MAX_SERIALIZATION_RETRIES"
	defaultMaxSerializationRetries       = 3

	SerializationRetryDelayConfigEnvName = envConfigPrefix + "SERIALIZATION_RETRY_DELAY"
	defaultSerializationRetryDelay       = 25 * time.Millisecond
)

type conf struct {
	useAwsIamAuth config.Bool

	// Serializable transactions aborted by a concurrent writer are retried
	// with exponential backoff, starting at serializationRetryDelay
	maxSerializationRetries config.Uint64
	serializationRetryDelay config.Duration
}

// ConfigProvider defines how config values are pulled
type ConfigProvider func() *conf

// WithEnvConfigs returns configuration pulled from environment variables
func WithEnvConfigs() ConfigProvider {
	return func() *conf {
		return &conf{
			useAwsIamAuth:           env.NewBoolConfig(UseAwsIamAuthConfigEnvName, defaultUseAwsIamAuth),
			maxSerializationRetries: env.NewUint64Config(MaxSerializationRetriesConfigEnvName, defaultMaxSerializationRetries),
			serializationRetryDelay: env.NewDurationConfig(SerializationRetryDelayConfigEnvName, defaultSerializationRetryDelay),
		}
	}
}

type testOverrides struct {
	maxSerializationRetries uint64
	serializationRetryDelay time.Duration
}

func withManualTestOverrides(overrides *testOverrides) ConfigProvider {
	return func() *conf {
		return &conf{
			useAwsIamAuth:           wrapper.NewBoolConfig(memory.NewConfig(false), false),
			maxSerializationRetries: wrapper.NewUint64Config(memory.NewConfig(overrides.maxSerializationRetries), defaultMaxSerializationRetries),
			serializationRetryDelay: wrapper.NewDurationConfig(memory.NewConfig(overrides.serializationRetryDelay), defaultSerializationRetryDelay),
		}
	}
}
