package main

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	v3 "go.etcd.io/etcd/client/v3"
	xrate "golang.org/x/time/rate"

	"github.com/code-payments/affiliate-market/pkg/app"
	code_data "github.com/code-payments/affiliate-market/pkg/code/data"
	"github.com/code-payments/affiliate-market/pkg/code/ledger"
	"github.com/code-payments/affiliate-market/pkg/code/market"
	web_market "github.com/code-payments/affiliate-market/pkg/code/server/web/market"
	pg "github.com/code-payments/affiliate-market/pkg/database/postgres"
	"github.com/code-payments/affiliate-market/pkg/lock"
	etcd_lock "github.com/code-payments/affiliate-market/pkg/lock/etcd"
	memory_lock "github.com/code-payments/affiliate-market/pkg/lock/memory"
	"github.com/code-payments/affiliate-market/pkg/metrics"
	"github.com/code-payments/affiliate-market/pkg/rate"
)

type databaseConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	User               string        `mapstructure:"user"`
	Password           string        `mapstructure:"password"`
	DbName             string        `mapstructure:"db_name"`
	MaxOpenConnections int           `mapstructure:"max_open_connections"`
	MaxIdleConnections int           `mapstructure:"max_idle_connections"`
	ConnMaxLifetime    time.Duration `mapstructure:"conn_max_lifetime"`
}

type etcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	LockRoot    string        `mapstructure:"lock_root"`
	LockTTL     time.Duration `mapstructure:"lock_ttl"`
}

type serviceConfig struct {
	// InMemory runs against in memory stores and process local locks, which is
	// only suitable for local development
	InMemory bool `mapstructure:"in_memory"`

	Database databaseConfig `mapstructure:"database"`
	Etcd     etcdConfig     `mapstructure:"etcd"`

	// Requests per second allowed for each client IP. Zero disables rate
	// limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
}

var defaultServiceConfig = serviceConfig{
	Database: databaseConfig{
		Port:               5432,
		MaxOpenConnections: 20,
		MaxIdleConnections: 10,
		ConnMaxLifetime:    time.Hour,
	},
	Etcd: etcdConfig{
		DialTimeout: 5 * time.Second,
		LockRoot:    "/affiliate-market/locks",
		LockTTL:     10 * time.Second,
	},
	RateLimit: 10,
}

type marketApp struct {
	log *logrus.Entry

	data        code_data.Provider
	etcdClient  *v3.Client
	lockManager *etcd_lock.LockManager
	handlers    map[string]http.HandlerFunc

	stopOnce   sync.Once
	shutdownCh chan struct{}
}

func (a *marketApp) Init(appConfig app.Config, metricsProvider *newrelic.Application) error {
	a.log = logrus.StandardLogger().WithField("type", "affiliate-market")
	a.shutdownCh = make(chan struct{})

	config, err := decodeServiceConfig(appConfig)
	if err != nil {
		return err
	}

	ctx := metrics.NewContext(context.Background(), metricsProvider)

	var data code_data.Provider
	var locks lock.Manager
	if config.InMemory {
		a.log.Warn("using in memory stores and locks")

		data = code_data.NewTestDataProvider()
		locks = memory_lock.NewLockManager()
	} else {
		data, err = code_data.NewDataProvider(ctx, &pg.Config{
			User:               config.Database.User,
			Host:               config.Database.Host,
			Password:           config.Database.Password,
			Port:               config.Database.Port,
			DbName:             config.Database.DbName,
			MaxOpenConnections: config.Database.MaxOpenConnections,
			MaxIdleConnections: config.Database.MaxIdleConnections,
			ConnMaxLifetime:    config.Database.ConnMaxLifetime,
		}, code_data.WithEnvConfigs())
		if err != nil {
			return errors.Wrap(err, "error initializing data provider")
		}

		a.etcdClient, err = v3.New(v3.Config{
			Endpoints:   config.Etcd.Endpoints,
			DialTimeout: config.Etcd.DialTimeout,
		})
		if err != nil {
			return errors.Wrap(err, "error creating etcd client")
		}

		a.lockManager, err = etcd_lock.NewLockManager(a.etcdClient, config.Etcd.LockRoot, config.Etcd.LockTTL)
		if err != nil {
			return errors.Wrap(err, "error creating lock manager")
		}
		locks = a.lockManager
	}

	limiter := rate.Limiter(&rate.NoLimiter{})
	if config.RateLimit > 0 {
		limiter = rate.NewLocalRateLimiter(xrate.Limit(config.RateLimit))
	}

	a.data = data

	runtime := ledger.NewRuntime(data)
	m := market.NewMarket(data, runtime, locks, market.WithEnvConfigs())
	a.handlers = web_market.NewMarketServer(m, limiter).GetHandlers()

	return nil
}

func (a *marketApp) HTTPHandlers() map[string]http.HandlerFunc {
	return a.handlers
}

func (a *marketApp) ShutdownChan() <-chan struct{} {
	return a.shutdownCh
}

func (a *marketApp) Stop() {
	a.stopOnce.Do(func() {
		if a.lockManager != nil {
			a.lockManager.Close()
		}
		if a.etcdClient != nil {
			if err := a.etcdClient.Close(); err != nil {
				a.log.WithError(err).Warn("failure closing etcd client")
			}
		}
		if a.data != nil {
			if err := a.data.Close(); err != nil {
				a.log.WithError(err).Warn("failure closing data provider")
			}
		}
		close(a.shutdownCh)
	})
}

func decodeServiceConfig(appConfig app.Config) (serviceConfig, error) {
	config := defaultServiceConfig

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &config,
	})
	if err != nil {
		return serviceConfig{}, err
	}

	if err := decoder.Decode(map[string]interface{}(appConfig)); err != nil {
		return serviceConfig{}, errors.Wrap(err, "invalid app config")
	}

	if !config.InMemory && len(config.Etcd.Endpoints) == 0 {
		return serviceConfig{}, errors.New("etcd endpoints are required")
	}
	return config, nil
}

func main() {
	if err := app.Run(&marketApp{}); err != nil {
		logrus.WithError(err).Fatal("error running service")
	}
}
