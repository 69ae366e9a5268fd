package main

import (
	"fmt"

	"github.com/amirasaad/tokenx/infra/initializer"
	"github.com/amirasaad/tokenx/pkg/app"
	"github.com/amirasaad/tokenx/pkg/config"
	"github.com/amirasaad/tokenx/webapi"
	log "github.com/charmbracelet/log"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	deps.Logger.Info(
		"starting server",
		"env", cfg.Env,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	a := app.New(deps)
	fiberApp := webapi.SetupApp(a)
	return fiberApp.Listen(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
}
