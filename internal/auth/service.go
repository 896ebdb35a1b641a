// Package auth manages the single admin account and the bearer tokens that
// unlock the editing routes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nfrund/folio/internal/database"
	"github.com/nfrund/folio/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultTokenTTL is how long an issued token stays valid.
	DefaultTokenTTL = 7 * 24 * time.Hour

	msgMissingFields   = "Please provide username and password."
	msgRegistrationOff = "Admin user already exists. Registration is closed."
	msgUnauthorized    = "Not authorized, token failed"
)

// Identity is the authenticated caller extracted from a valid token.
type Identity struct {
	ID        string
	ExpiresAt time.Time
}

// Claims is the token payload. The admin id is carried both as the
// registered subject and as the id claim existing clients read.
type Claims struct {
	AdminID string `json:"id"`
	jwt.RegisteredClaims
}

// Service registers the admin, checks passwords and issues tokens.
type Service struct {
	admins domain.AdminRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewService creates the credential service. A zero ttl means DefaultTokenTTL.
func NewService(admins domain.AdminRepository, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		admins: admins,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Register creates the admin account. Once an admin exists registration is
// closed for good.
func (s *Service) Register(ctx context.Context, username, password string) error {
	count, err := s.admins.Count(ctx)
	if err != nil {
		return domain.Storage(fmt.Errorf("count admins: %w", err))
	}
	if count > 0 {
		return domain.AlreadyExists(msgRegistrationOff)
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Validation(msgMissingFields, nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt rejects passwords longer than 72 bytes.
		return domain.Validation("Password is too long.", err)
	}

	created, err := s.admins.Create(ctx, &domain.AdminUser{Username: username, Password: string(hash)})
	if err != nil {
		if errors.Is(err, database.ErrAlreadyExists) {
			return domain.AlreadyExists(msgRegistrationOff)
		}
		return domain.Storage(fmt.Errorf("create admin: %w", err))
	}

	slog.InfoContext(ctx, "Admin user registered", "event", "admin_registered", "admin_id", created.IDString())
	return nil
}

// Login checks the credentials and returns a signed bearer token. Unknown
// usernames and wrong passwords fail identically.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", domain.Validation(msgMissingFields, nil)
	}

	user, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		return "", domain.Storage(fmt.Errorf("find admin: %w", err))
	}
	if user == nil {
		slog.WarnContext(ctx, "Login failed", "event", "login_failed", "reason", "unknown_user")
		return "", domain.InvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		slog.WarnContext(ctx, "Login failed", "event", "login_failed", "reason", "password_mismatch")
		return "", domain.InvalidCredentials()
	}

	return s.Issue(user.IDString())
}

// Issue signs a token for the given admin id.
func (s *Service) Issue(adminID string) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	now := s.now()
	claims := Claims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Authorize validates a bearer token's signature and expiry.
func (s *Service) Authorize(token string) (*Identity, error) {
	if token == "" {
		return nil, domain.Unauthorized("Not authorized, no token", nil)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, domain.Unauthorized(msgUnauthorized, err)
	}

	id := claims.Subject
	if id == "" {
		id = claims.AdminID
	}
	if id == "" {
		return nil, domain.Unauthorized(msgUnauthorized, errors.New("token carries no subject"))
	}

	return &Identity{ID: id, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (s *Service) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return s.secret, nil
}
