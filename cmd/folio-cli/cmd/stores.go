package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/nfrund/folio/internal/config"
	"github.com/nfrund/folio/internal/database"
	"github.com/nfrund/folio/internal/domain"
	"github.com/nfrund/folio/internal/portfolio"
)

const commandTimeout = 30 * time.Second

type portfolioStore interface {
	domain.PortfolioRepository
	Drop(ctx context.Context) error
}

type adminStore interface {
	domain.AdminRepository
	DeleteAll(ctx context.Context) error
}

// stores holds the repositories used by the data commands.
type stores struct {
	portfolios portfolioStore
	admins     adminStore
	close      func(ctx context.Context) error
}

// openStores is swapped out in tests.
var openStores = openSurrealStores

func openSurrealStores(ctx context.Context) (*stores, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.GetStoreBackend() != config.StoreBackendSurreal {
		return nil, fmt.Errorf("STORE_BACKEND=%s keeps no data between runs; maintenance commands need %s",
			cfg.GetStoreBackend(), config.StoreBackendSurreal)
	}

	conn := database.NewConnection(cfg)
	if err := conn.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &stores{
		portfolios: database.NewSurrealPortfolioStore(conn),
		admins:     database.NewSurrealAdminStore(conn),
		close:      conn.Close,
	}, nil
}

// portfolioService runs without an asset releaser: maintenance never
// deletes uploaded files.
func (s *stores) portfolioService() *portfolio.Service {
	return portfolio.NewService(s.portfolios, portfolio.NopReleaser{})
}

func (s *stores) Close(ctx context.Context) {
	if s.close != nil {
		_ = s.close(ctx)
	}
}
