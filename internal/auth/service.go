package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/gosuda/leasehold/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials   = errors.New("auth: invalid credentials")
	ErrManagerAlreadyExists = errors.New("auth: manager already exists")
	ErrManagerNotFound      = errors.New("auth: manager not found")
)

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16

	minPasswordLen = 8
)

// Service provides manager account and token operations.
type Service struct {
	managers   domain.ManagerRepository
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a new auth service.
func NewService(managers domain.ManagerRepository, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		managers:   managers,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Registration is the input for a new manager account.
type Registration struct {
	Email          string
	Password       string
	Name           string
	CompanyName    string
	MailingAddress string
	Phone          string
}

func (r Registration) validate() error {
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return domain.Invalid("email", "must be a valid address")
	}
	if len(r.Password) < minPasswordLen {
		return domain.Invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	if strings.TrimSpace(r.Name) == "" {
		return domain.Invalid("name", "is required")
	}
	return nil
}

// Register creates a manager account. The password is hashed with argon2id
// before storage.
func (s *Service) Register(ctx context.Context, reg Registration) (*domain.Manager, error) {
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	if err := reg.validate(); err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	existing, err := s.managers.GetByEmail(ctx, reg.Email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.Register: %w", ErrManagerAlreadyExists)
	}

	hash, err := hashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	now := time.Now()
	m := &domain.Manager{
		ID:             uuid.New(),
		Email:          reg.Email,
		PasswordHash:   hash,
		Name:           strings.TrimSpace(reg.Name),
		CompanyName:    strings.TrimSpace(reg.CompanyName),
		MailingAddress: strings.TrimSpace(reg.MailingAddress),
		Phone:          strings.TrimSpace(reg.Phone),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.managers.Create(ctx, m); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, fmt.Errorf("auth.Register: %w", ErrManagerAlreadyExists)
		}
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	return m, nil
}

// Login validates email/password and returns access + refresh JWT tokens.
func (s *Service) Login(ctx context.Context, email, password string) (accessToken, refreshToken string, err error) {
	m, err := s.managers.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !verifyPassword(password, m.PasswordHash) {
		return "", "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	accessToken, err = IssueAccessToken(s.jwtSecret, m.ID, m.Email, s.accessTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	refreshToken, err = IssueRefreshToken(s.jwtSecret, m.ID, m.Email, s.refreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("auth.Login: %w", err)
	}

	return accessToken, refreshToken, nil
}

// RefreshToken validates a refresh token and issues a new access token.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	if claims.TokenType != tokenTypeRefresh {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
	}

	managerID, err := uuid.Parse(claims.ManagerID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: invalid manager id: %w", ErrInvalidToken)
	}

	// The account must still exist.
	m, err := s.managers.GetByID(ctx, managerID)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", ErrManagerNotFound)
	}

	newAccess, err := IssueAccessToken(s.jwtSecret, m.ID, m.Email, s.accessTTL)
	if err != nil {
		return "", fmt.Errorf("auth.RefreshToken: %w", err)
	}

	return newAccess, nil
}

// GetManager returns a manager by ID.
func (s *Service) GetManager(ctx context.Context, managerID uuid.UUID) (*domain.Manager, error) {
	m, err := s.managers.GetByID(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("auth.GetManager: %w", err)
	}

	return m, nil
}

// Profile holds the sender details printed on notices.
type Profile struct {
	Name           string
	CompanyName    string
	MailingAddress string
	Phone          string
}

// UpdateProfile replaces the manager's sender details.
func (s *Service) UpdateProfile(ctx context.Context, managerID uuid.UUID, p Profile) (*domain.Manager, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, fmt.Errorf("auth.UpdateProfile: %w", domain.Invalid("name", "is required"))
	}

	m, err := s.managers.GetByID(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("auth.UpdateProfile: %w", err)
	}

	m.Name = strings.TrimSpace(p.Name)
	m.CompanyName = strings.TrimSpace(p.CompanyName)
	m.MailingAddress = strings.TrimSpace(p.MailingAddress)
	m.Phone = strings.TrimSpace(p.Phone)
	m.UpdatedAt = time.Now()

	if err := s.managers.Update(ctx, m); err != nil {
		return nil, fmt.Errorf("auth.UpdateProfile: %w", err)
	}

	return m, nil
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against an argon2id hash.
func verifyPassword(password, encoded string) bool {
	saltHex, hashHex, ok := strings.Cut(encoded, "$")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expectedHash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	// Constant-time comparison.
	if len(computed) != len(expectedHash) {
		return false
	}

	var diff byte
	for i := range computed {
		diff |= computed[i] ^ expectedHash[i]
	}

	return diff == 0
}
