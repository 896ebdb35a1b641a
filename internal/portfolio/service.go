// Package portfolio owns the singleton portfolio document and the editors
// for its nested project and experience collections.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nfrund/folio/internal/domain"
	"golang.org/x/sync/singleflight"
)

// AssetReleaser schedules best-effort deletion of an asset that the document
// no longer references. It never fails the caller.
type AssetReleaser interface {
	Release(ctx context.Context, id, url, reason string)
}

// NopReleaser drops every release request.
type NopReleaser struct{}

func (NopReleaser) Release(context.Context, string, string, string) {}

// Service reads and writes the portfolio document. Writes replace the whole
// document, so concurrent edits are last-write-wins.
type Service struct {
	repo     domain.PortfolioRepository
	releaser AssetReleaser
	ensure   singleflight.Group
}

// NewService creates the service. A nil releaser disables asset cleanup.
func NewService(repo domain.PortfolioRepository, releaser AssetReleaser) *Service {
	if releaser == nil {
		releaser = NopReleaser{}
	}
	return &Service{repo: repo, releaser: releaser}
}

// EnsureExists returns the document, seeding it from defaults when absent
// and restoring default experience sections or form fields when those lists
// are empty. Existing content is never overwritten. Concurrent first calls
// share one load and at most one write.
func (s *Service) EnsureExists(ctx context.Context) (*domain.Portfolio, error) {
	// The flight is shared, so one caller's cancellation must not fail the
	// others. Store calls stay bounded by their own timeouts.
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.ensure.Do("ensure", func() (interface{}, error) {
		return s.ensureExists(shared)
	})
	if err != nil {
		return nil, err
	}
	// Every caller gets its own copy to mutate.
	return v.(*domain.Portfolio).Clone(), nil
}

func (s *Service) ensureExists(ctx context.Context) (*domain.Portfolio, error) {
	current, err := s.repo.Load(ctx)
	if err != nil {
		return nil, domain.Storage(fmt.Errorf("load portfolio: %w", err))
	}

	if current == nil {
		seeded, err := s.repo.Save(ctx, domain.DefaultPortfolio())
		if err != nil {
			return nil, domain.Storage(fmt.Errorf("seed portfolio: %w", err))
		}
		slog.InfoContext(ctx, "Portfolio seeded with defaults", "event", "portfolio_seeded")
		return seeded, nil
	}

	current.Normalize()
	if !repair(current) {
		return current, nil
	}

	repaired, err := s.repo.Save(ctx, current)
	if err != nil {
		return nil, domain.Storage(fmt.Errorf("repair portfolio: %w", err))
	}
	slog.InfoContext(ctx, "Portfolio repaired", "event", "portfolio_repaired")
	return repaired, nil
}

// repair fills empty sections and form fields from the defaults and assigns
// identities to items that lack one. It reports whether p changed.
func repair(p *domain.Portfolio) bool {
	changed := false
	if len(p.Experience.Sections) == 0 {
		p.Experience.Sections = domain.DefaultSections()
		changed = true
	}
	if len(p.Contact.FormFields) == 0 {
		p.Contact.FormFields = domain.DefaultFormFields()
		changed = true
	}
	if assignIdentities(p) {
		changed = true
	}
	return changed
}

// assignIdentities gives an id to every project and experience item that
// lacks one or repeats an id seen earlier in the same collection. The first
// holder of an id keeps it.
func assignIdentities(p *domain.Portfolio) bool {
	changed := false
	seen := map[string]bool{}
	for i := range p.Projects {
		if fresh(&p.Projects[i].ID, seen) {
			changed = true
		}
	}
	seen = map[string]bool{}
	for i := range p.Experience.Sections {
		items := p.Experience.Sections[i].Items
		for j := range items {
			if fresh(&items[j].ID, seen) {
				changed = true
			}
		}
	}
	return changed
}

func fresh(id *string, seen map[string]bool) bool {
	if *id != "" && !seen[*id] {
		seen[*id] = true
		return false
	}
	*id = uuid.NewString()
	seen[*id] = true
	return true
}

// Replace stores doc as the whole portfolio and returns what was stored.
// Items submitted without an identity, or repeating one already used in their
// collection, get a new one; other supplied identities are kept.
// Assets referenced only by the previous document are released.
func (s *Service) Replace(ctx context.Context, doc *domain.Portfolio) (*domain.Portfolio, error) {
	if doc == nil {
		return nil, domain.Validation("Portfolio data is required.", nil)
	}
	next := doc.Clone()
	if err := next.Validate(); err != nil {
		return nil, domain.Validation(fmt.Sprintf("Invalid portfolio data: %v", err), err)
	}
	assignIdentities(next)

	previous, err := s.repo.Load(ctx)
	if err != nil {
		return nil, domain.Storage(fmt.Errorf("load portfolio: %w", err))
	}

	stored, err := s.repo.Save(ctx, next)
	if err != nil {
		return nil, domain.Storage(fmt.Errorf("replace portfolio: %w", err))
	}

	if previous != nil {
		for _, a := range droppedAssets(previous, stored) {
			s.releaser.Release(ctx, a.id, a.url, "portfolio_replaced")
		}
	}
	return stored, nil
}

// Reset deletes the document. The next read seeds it again.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.repo.Delete(ctx); err != nil {
		return domain.Storage(fmt.Errorf("reset portfolio: %w", err))
	}
	slog.InfoContext(ctx, "Portfolio deleted", "event", "portfolio_reset")
	return nil
}

// Seed replaces whatever is stored with a fresh default document.
func (s *Service) Seed(ctx context.Context) (*domain.Portfolio, error) {
	if err := s.Reset(ctx); err != nil {
		return nil, err
	}
	return s.EnsureExists(ctx)
}

// save persists p and converts repository failures.
func (s *Service) save(ctx context.Context, p *domain.Portfolio, op string) (*domain.Portfolio, error) {
	stored, err := s.repo.Save(ctx, p)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return nil, err
		}
		return nil, domain.Storage(fmt.Errorf("%s: %w", op, err))
	}
	return stored, nil
}

type assetUse struct {
	id  string
	url string
}

// droppedAssets lists assets referenced by before that after references
// neither by id nor by url.
func droppedAssets(before, after *domain.Portfolio) []assetUse {
	kept := map[string]bool{}
	for _, a := range assetsOf(after) {
		if a.id != "" {
			kept[a.id] = true
		}
		if a.url != "" {
			kept[a.url] = true
		}
	}

	var dropped []assetUse
	for _, a := range assetsOf(before) {
		if (a.id != "" && kept[a.id]) || (a.url != "" && kept[a.url]) {
			continue
		}
		dropped = append(dropped, a)
	}
	return dropped
}

func assetsOf(p *domain.Portfolio) []assetUse {
	var out []assetUse
	for _, pr := range p.Projects {
		if pr.Image != "" || pr.ImageID != "" {
			out = append(out, assetUse{id: pr.ImageID, url: pr.Image})
		}
	}
	if p.ResumeURL != "" || p.ResumeID != "" {
		out = append(out, assetUse{id: p.ResumeID, url: p.ResumeURL})
	}
	return out
}
