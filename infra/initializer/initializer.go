// Package initializer builds the dependency bundle from configuration:
// logger, ledger store, oracle, eligibility provider and event bus.
package initializer

import (
	"fmt"

	"github.com/amirasaad/tokenx/infra"
	infracache "github.com/amirasaad/tokenx/infra/cache"
	infraeventbus "github.com/amirasaad/tokenx/infra/eventbus"
	infraprovider "github.com/amirasaad/tokenx/infra/provider"
	infrarepository "github.com/amirasaad/tokenx/infra/repository"
	"github.com/amirasaad/tokenx/infra/repository/memory"
	"github.com/amirasaad/tokenx/internal/fixtures"
	"github.com/amirasaad/tokenx/pkg/cache"
	"github.com/amirasaad/tokenx/pkg/config"
	"github.com/amirasaad/tokenx/pkg/oracle"
	"github.com/redis/go-redis/v9"
)

// InitializeDependencies builds everything the app needs from cfg.
func InitializeDependencies(cfg *config.App) (*config.Deps, error) {
	deps := &config.Deps{Config: cfg}
	logger := setupLogger(cfg.Log)
	deps.Logger = logger

	switch cfg.Ledger.Driver {
	case "postgres":
		db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := infra.Migrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		deps.Uow = infrarepository.NewUoW(db)
	case "memory":
		logger.Warn("using in-memory ledger; balances are not persisted")
		deps.Uow = memory.NewUoW()
	default:
		return nil, fmt.Errorf("unknown ledger driver %q", cfg.Ledger.Driver)
	}

	pairs, err := fixtures.LoadTokenPairs("")
	if err != nil {
		return nil, fmt.Errorf("failed to load token pairs: %w", err)
	}
	deps.Oracle, err = oracle.New(logger, oracle.Config{
		MaxStepPerTrade: cfg.Swap.MaxStepPerTrade,
		ReversionFactor: cfg.Swap.ReversionFactor,
		VolumeSmoothing: cfg.Swap.VolumeSmoothing,
	}, pairs...)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate oracle: %w", err)
	}

	deps.StakingOptions, err = fixtures.LoadStakingOptions("")
	if err != nil {
		return nil, fmt.Errorf("failed to load staking options: %w", err)
	}

	var scoreCache cache.Cache
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		opt.PoolSize = cfg.Redis.PoolSize
		opt.DialTimeout = cfg.Redis.DialTimeout
		opt.ReadTimeout = cfg.Redis.ReadTimeout
		opt.WriteTimeout = cfg.Redis.WriteTimeout
		scoreCache = infracache.NewRedisCache(opt, cfg.Redis.KeyPrefix, logger)
	} else {
		scoreCache = infracache.NewMemoryCache()
	}
	deps.Eligibility = infraprovider.NewCachedEligibility(
		infraprovider.NewStaticEligibility(cfg.Eligibility.DefaultScore),
		scoreCache,
		cfg.Eligibility.CacheTTL,
		logger,
	)

	bus := infraeventbus.NewWithMemory(logger)
	if cfg.Kafka.Brokers != "" {
		publisher := infraeventbus.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
		publisher.Forward(bus,
			"SwapExecutedEvent",
			"StakeOpenedEvent",
			"StakeWithdrawnEvent",
			"YieldsProcessedEvent",
		)
		logger.Info("forwarding events to kafka", "topic", cfg.Kafka.Topic)
	}
	deps.EventBus = bus

	return deps, nil
}
