package app

import (
	"time"

	"github.com/spf13/viper"
)

// Config is the application specific configuration, found under the app key.
// It's passed to App.Init.
type Config map[string]interface{}

// BaseConfig contains the configuration shared by every service, as well as
// the application itself
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	ListenAddress       string `mapstructure:"listen_address"`
	HealthListenAddress string `mapstructure:"health_listen_address"`
	DebugListenAddress  string `mapstructure:"debug_listen_address"`

	// TLSCertificate is an optional URL of the TLS certificate for the HTTP
	// server. Only local files are supported. If no scheme is specified, file
	// is used.
	TLSCertificate string `mapstructure:"tls_certificate"`
	// TLSKey is an optional URL of the TLS private key for the HTTP server,
	// required when TLSCertificate is set.
	TLSKey string `mapstructure:"tls_private_key"`

	ReadTimeout         time.Duration `mapstructure:"read_timeout"`
	WriteTimeout        time.Duration `mapstructure:"write_timeout"`
	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`

	EnablePprof  bool `mapstructure:"enable_pprof"`
	EnableExpvar bool `mapstructure:"enable_expvar"`

	// Ballast for improving Go GC performance. Capacity is limited to 50% of
	// the total memory.
	EnableBallast   bool    `mapstructure:"enable_ballast"`
	BallastCapacity float32 `mapstructure:"ballast_capacity"`

	// Periodically terminate the application to recover from memory leaks
	EnableMemoryLeakCron   bool   `mapstructure:"enable_memory_leak_cron"`
	MemoryLeakCronSchedule string `mapstructure:"memory_leak_cron_schedule"`

	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`

	// Users should use mapstructure.Decode for AppConfig
	AppConfig Config `mapstructure:"app"`
}

var defaultConfig = BaseConfig{
	LogLevel: "info",

	ListenAddress:       ":8080",
	HealthListenAddress: ":8086",
	DebugListenAddress:  ":8123",

	ReadTimeout:         10 * time.Second,
	WriteTimeout:        30 * time.Second,
	ShutdownGracePeriod: 30 * time.Second,

	EnablePprof:  true,
	EnableExpvar: true,

	EnableBallast:   true,
	BallastCapacity: 0.333,

	EnableMemoryLeakCron:   false,
	MemoryLeakCronSchedule: "0 5 * * *",
}

func init() {
	for key, env := range map[string]string{
		"log_level": "LOG_LEVEL",

		"app_name": "APP_NAME",

		"listen_address":        "LISTEN_ADDRESS",
		"health_listen_address": "HEALTH_LISTEN_ADDRESS",
		"debug_listen_address":  "DEBUG_LISTEN_ADDRESS",

		"tls_certificate": "TLS_CERTIFICATE",
		"tls_private_key": "TLS_PRIVATE_KEY",

		"read_timeout":          "READ_TIMEOUT",
		"write_timeout":         "WRITE_TIMEOUT",
		"shutdown_grace_period": "SHUTDOWN_GRACE_PERIOD",

		"enable_pprof":  "ENABLE_PPROF",
		"enable_expvar": "ENABLE_EXPVAR",

		"enable_ballast":   "ENABLE_BALLAST",
		"ballast_capacity": "BALLAST_CAPACITY",

		"enable_memory_leak_cron":   "ENABLE_MEMORY_LEAK_CRON",
		"memory_leak_cron_schedule": "MEMORY_LEAK_CRON_SCHEDULE",

		"new_relic_license_key": "NEW_RELIC_LICENSE_KEY",
	} {
		_ = viper.BindEnv(key, env)
	}
}
