package database

import (
	"context"
	"errors"
	"strings"

	"github.com/nfrund/folio/internal/domain"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

const (
	adminTable = "admin"
	// The admin always lives at a fixed record id, so a second CREATE fails
	// in the database even when two registrations race past Count.
	adminKey = "owner"
)

var _ domain.AdminRepository = (*SurrealAdminStore)(nil)

// SurrealAdminStore encapsulates database operations for the admin account.
type SurrealAdminStore struct {
	conn DBConnection
}

// NewSurrealAdminStore creates a new SurrealAdminStore.
func NewSurrealAdminStore(conn DBConnection) *SurrealAdminStore {
	return &SurrealAdminStore{conn: conn}
}

type countRow struct {
	Total int `json:"total"`
}

// Count returns how many admin records exist.
func (s *SurrealAdminStore) Count(ctx context.Context) (int, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBQueryTimeout(), ContextKeyQueryTimeout)
	defer cancel()

	var total int
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		rows, err := Query[countRow](ctx, db, "SELECT count() AS total FROM "+adminTable+" GROUP ALL", nil)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			total = rows[0].Total
		}
		return nil
	})
	if err != nil {
		return 0, WrapError(err, "count admins")
	}
	return total, nil
}

// Create stores the admin. The password must already be hashed.
func (s *SurrealAdminStore) Create(ctx context.Context, user *domain.AdminUser) (*domain.AdminUser, error) {
	if user == nil || user.Username == "" || user.Password == "" {
		return nil, NewDBError(ErrInvalidInput, "admin username and password hash are required")
	}
	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBExecuteTimeout(), ContextKeyExecuteTimeout)
	defer cancel()

	data := map[string]any{
		"username":   user.Username,
		"password":   user.Password,
		"created_at": domain.NewCreatedAt(),
	}

	var created *domain.AdminUser
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		u, err := QueryOne[domain.AdminUser](ctx, db, "CREATE $rid CONTENT $data", map[string]any{
			"rid":  surrealmodels.NewRecordID(adminTable, adminKey),
			"data": data,
		})
		created = u
		return err
	})
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil, NewDBError(ErrAlreadyExists, "create admin")
		}
		return nil, WrapError(err, "create admin")
	}
	if created == nil {
		return nil, NewDBError(errors.New("create returned no record"), "create admin")
	}
	return created, nil
}

// FindByUsername returns the admin with the given username, or nil.
func (s *SurrealAdminStore) FindByUsername(ctx context.Context, username string) (*domain.AdminUser, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBQueryTimeout(), ContextKeyQueryTimeout)
	defer cancel()

	var out *domain.AdminUser
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		u, err := QueryOne[domain.AdminUser](ctx, db,
			"SELECT * FROM "+adminTable+" WHERE username = $username",
			map[string]any{"username": username})
		out = u
		return err
	})
	if err != nil {
		return nil, WrapError(err, "find admin")
	}
	return out, nil
}

// DeleteAll removes every admin record. Used by the reset command and tests.
func (s *SurrealAdminStore) DeleteAll(ctx context.Context) error {
	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBExecuteTimeout(), ContextKeyExecuteTimeout)
	defer cancel()

	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		return Execute(ctx, db, "DELETE "+adminTable, nil)
	})
	return WrapError(err, "delete admins")
}
