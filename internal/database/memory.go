package database

import (
	"context"
	"sync"

	"github.com/nfrund/folio/internal/domain"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// MemoryPortfolioStore is an in-process PortfolioRepository for tests and
// STORE_BACKEND=memory. Documents are cloned on the way in and out.
type MemoryPortfolioStore struct {
	mu  sync.Mutex
	doc *domain.Portfolio

	// FailWith, when set, is returned by every call.
	FailWith error
	saves    int
}

var _ domain.PortfolioRepository = (*MemoryPortfolioStore)(nil)

func NewMemoryPortfolioStore() *MemoryPortfolioStore {
	return &MemoryPortfolioStore{}
}

func (m *MemoryPortfolioStore) Load(ctx context.Context) (*domain.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	return m.doc.Clone(), nil
}

func (m *MemoryPortfolioStore) Save(ctx context.Context, p *domain.Portfolio) (*domain.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}
	if p == nil {
		return nil, NewDBError(ErrInvalidInput, "portfolio to save cannot be nil")
	}
	m.doc = p.Clone()
	m.saves++
	return m.doc.Clone(), nil
}

func (m *MemoryPortfolioStore) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}
	m.doc = nil
	return nil
}

// Drop is Delete; the memory store holds a single record.
func (m *MemoryPortfolioStore) Drop(ctx context.Context) error {
	return m.Delete(ctx)
}

// Saves reports how many successful writes the store has seen.
func (m *MemoryPortfolioStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// MemoryAdminStore is an in-process AdminRepository.
type MemoryAdminStore struct {
	mu    sync.Mutex
	users map[string]*domain.AdminUser
}

var _ domain.AdminRepository = (*MemoryAdminStore)(nil)

func NewMemoryAdminStore() *MemoryAdminStore {
	return &MemoryAdminStore{users: map[string]*domain.AdminUser{}}
}

func (m *MemoryAdminStore) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users), nil
}

func (m *MemoryAdminStore) Create(ctx context.Context, user *domain.AdminUser) (*domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user == nil || user.Username == "" || user.Password == "" {
		return nil, NewDBError(ErrInvalidInput, "admin username and password hash are required")
	}
	if len(m.users) > 0 {
		return nil, NewDBError(ErrAlreadyExists, "create admin")
	}
	id := surrealmodels.NewRecordID(adminTable, adminKey)
	stored := &domain.AdminUser{
		ID:        &id,
		Username:  user.Username,
		Password:  user.Password,
		CreatedAt: domain.NewCreatedAt(),
	}
	m.users[user.Username] = stored
	out := *stored
	return &out, nil
}

func (m *MemoryAdminStore) FindByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

// DeleteAll removes the admin, reopening registration.
func (m *MemoryAdminStore) DeleteAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = map[string]*domain.AdminUser{}
	return nil
}
