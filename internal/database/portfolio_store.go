package database

import (
	"context"
	"errors"

	"github.com/nfrund/folio/internal/domain"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const (
	portfolioTable = "portfolio"
	portfolioKey   = "main"
)

var _ domain.PortfolioRepository = (*SurrealPortfolioStore)(nil)

// SurrealPortfolioStore keeps the portfolio document as the single record
// portfolio:main.
type SurrealPortfolioStore struct {
	conn DBConnection
	rid  surrealmodels.RecordID
}

// NewSurrealPortfolioStore creates a store bound to the managed connection.
func NewSurrealPortfolioStore(conn DBConnection) *SurrealPortfolioStore {
	return &SurrealPortfolioStore{
		conn: conn,
		rid:  surrealmodels.NewRecordID(portfolioTable, portfolioKey),
	}
}

// Load returns the stored document, or nil when it has not been created yet.
func (s *SurrealPortfolioStore) Load(ctx context.Context) (*domain.Portfolio, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBQueryTimeout(), ContextKeyQueryTimeout)
	defer cancel()

	var out *domain.Portfolio
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		p, err := QueryOne[domain.Portfolio](ctx, db, "SELECT * FROM $rid", map[string]any{"rid": s.rid})
		out = p
		return err
	})
	if err != nil {
		return nil, WrapError(err, "load portfolio")
	}
	if out != nil {
		out.Normalize()
	}
	return out, nil
}

// Save upserts the whole document and returns what the database stored.
func (s *SurrealPortfolioStore) Save(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, error) {
	if p == nil {
		return nil, NewDBError(ErrInvalidInput, "portfolio to save cannot be nil")
	}
	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBExecuteTimeout(), ContextKeyExecuteTimeout)
	defer cancel()

	doc := p.Clone()
	var out *domain.Portfolio
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		saved, err := QueryOne[domain.Portfolio](ctx, db, "UPSERT $rid CONTENT $doc", map[string]any{
			"rid": s.rid,
			"doc": doc,
		})
		out = saved
		return err
	})
	if err != nil {
		return nil, WrapError(err, "save portfolio")
	}
	if out == nil {
		return nil, NewDBError(errors.New("upsert returned no record"), "save portfolio")
	}
	out.Normalize()
	return out, nil
}

// Delete removes the document. Used by the maintenance commands.
func (s *SurrealPortfolioStore) Delete(ctx context.Context) error {
	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBExecuteTimeout(), ContextKeyExecuteTimeout)
	defer cancel()

	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		return Execute(ctx, db, "DELETE $rid", map[string]any{"rid": s.rid})
	})
	return WrapError(err, "delete portfolio")
}

// Drop removes the whole portfolio table, including any stray records.
func (s *SurrealPortfolioStore) Drop(ctx context.Context) error {
	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBExecuteTimeout(), ContextKeyExecuteTimeout)
	defer cancel()

	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		return Execute(ctx, db, "DELETE "+portfolioTable, nil)
	})
	return WrapError(err, "drop portfolio table")
}
