package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment, optionally loading a .env
// file first. A missing .env file is not an error.
func Load(envFiles ...string) (*App, error) {
	logger := slog.Default()
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Warn("no .env file found, using system environment")
		}
	} else {
		for _, path := range envFiles {
			if err := godotenv.Load(path); err != nil {
				logger.Warn("env file not loaded", "path", path, "error", err)
			}
		}
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	logger.Info("config loaded",
		"env", cfg.Env,
		"ledger_driver", cfg.Ledger.Driver,
		"swap_enabled", cfg.Swap.Enabled,
		"staking_enabled", cfg.Staking.Enabled,
		"swap_daily_limit", cfg.Swap.DailyLimit,
		"swap_daily_limit_per_user", cfg.Swap.DailyLimitPerUser,
		"swap_window", cfg.Swap.Window,
	)
	return &cfg, nil
}
