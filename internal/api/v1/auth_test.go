package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/gosuda/leasehold/internal/api/v1"
	"github.com/gosuda/leasehold/internal/auth"
	"github.com/gosuda/leasehold/internal/domain"
)

func fixtureManager() *domain.Manager {
	return &domain.Manager{
		ID:           fixedManagerID(),
		Email:        "grace@example.com",
		PasswordHash: "salt$hash",
		Name:         "Grace Hopper",
		CompanyName:  "Hopper Property Management",
		CreatedAt:    time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// ---------------------------------------------------------------------------
// POST /auth/register
// ---------------------------------------------------------------------------

func TestRegister(t *testing.T) {
	t.Parallel()

	body := map[string]any{
		"email":        "grace@example.com",
		"password":     "secretpw1",
		"name":         "Grace Hopper",
		"company_name": "Hopper Property Management",
	}

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			registerFunc: func(_ context.Context, reg auth.Registration) (*domain.Manager, error) {
				assert.Equal(t, "grace@example.com", reg.Email)
				assert.Equal(t, "secretpw1", reg.Password)
				assert.Equal(t, "Grace Hopper", reg.Name)
				assert.Equal(t, "Hopper Property Management", reg.CompanyName)
				return fixtureManager(), nil
			},
			loginFunc: func(_ context.Context, email, _ string) (string, string, error) {
				assert.Equal(t, "grace@example.com", email)
				return "access-tok", "refresh-tok", nil
			},
		}

		v1.RegisterAuthRoutes(api, authSvc)

		resp := api.Post("/auth/register", body)
		require.Equal(t, http.StatusOK, resp.Code)

		var out struct {
			Manager      map[string]any `json:"manager"`
			AccessToken  string         `json:"access_token"`
			RefreshToken string         `json:"refresh_token"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "grace@example.com", out.Manager["email"])
		assert.NotContains(t, out.Manager, "password_hash")
		assert.NotContains(t, out.Manager, "PasswordHash")
		assert.Equal(t, "access-tok", out.AccessToken)
		assert.Equal(t, "refresh-tok", out.RefreshToken)
	})

	t.Run("duplicate_email", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			registerFunc: func(context.Context, auth.Registration) (*domain.Manager, error) {
				return nil, fmt.Errorf("auth.Register: %w", auth.ErrManagerAlreadyExists)
			},
		}

		v1.RegisterAuthRoutes(api, authSvc)

		resp := api.Post("/auth/register", body)
		assert.Equal(t, http.StatusConflict, resp.Code)
	})

	t.Run("service_validation", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			registerFunc: func(context.Context, auth.Registration) (*domain.Manager, error) {
				return nil, fmt.Errorf("auth.Register: %w", domain.Invalid("email", "must be a valid address"))
			},
		}

		v1.RegisterAuthRoutes(api, authSvc)

		resp := api.Post("/auth/register", body)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
		assert.Contains(t, resp.Body.String(), "body.email")
	})

	t.Run("short_password_rejected_by_schema", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterAuthRoutes(api, &mockAuthService{})

		resp := api.Post("/auth/register", map[string]any{
			"email":    "grace@example.com",
			"password": "short",
			"name":     "Grace",
		})
		assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})

	t.Run("login_after_register_fails", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			registerFunc: func(context.Context, auth.Registration) (*domain.Manager, error) {
				return fixtureManager(), nil
			},
			loginFunc: func(context.Context, string, string) (string, string, error) {
				return "", "", errors.New("signing failed")
			},
		}

		v1.RegisterAuthRoutes(api, authSvc)

		resp := api.Post("/auth/register", body)
		assert.Equal(t, http.StatusInternalServerError, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// POST /auth/login, POST /auth/refresh
// ---------------------------------------------------------------------------

func TestLogin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		loginErr error
		want     int
	}{
		{name: "happy_path", want: http.StatusOK},
		{name: "bad_credentials", loginErr: fmt.Errorf("auth.Login: %w", auth.ErrInvalidCredentials), want: http.StatusUnauthorized},
		{name: "store_down", loginErr: fmt.Errorf("auth.Login: %w", domain.ErrPersistence), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			authSvc := &mockAuthService{
				loginFunc: func(context.Context, string, string) (string, string, error) {
					if tt.loginErr != nil {
						return "", "", tt.loginErr
					}
					return "a", "r", nil
				},
			}

			v1.RegisterAuthRoutes(api, authSvc)

			resp := api.Post("/auth/login", map[string]any{
				"email":    "grace@example.com",
				"password": "secretpw1",
			})
			assert.Equal(t, tt.want, resp.Code)
		})
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("happy_path", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			refreshTokenFunc: func(_ context.Context, tok string) (string, error) {
				assert.Equal(t, "refresh-tok", tok)
				return "new-access", nil
			},
		}

		v1.RegisterAuthRoutes(api, authSvc)

		resp := api.Post("/auth/refresh", map[string]any{"refresh_token": "refresh-tok"})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "new-access")
	})

	t.Run("invalid_token", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			refreshTokenFunc: func(context.Context, string) (string, error) {
				return "", auth.ErrInvalidToken
			},
		}

		v1.RegisterAuthRoutes(api, authSvc)

		resp := api.Post("/auth/refresh", map[string]any{"refresh_token": "garbage"})
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

// ---------------------------------------------------------------------------
// GET/PUT /auth/me
// ---------------------------------------------------------------------------

func TestProfile(t *testing.T) {
	t.Parallel()

	t.Run("get", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			getManagerFunc: func(_ context.Context, id uuid.UUID) (*domain.Manager, error) {
				assert.Equal(t, fixedManagerID(), id)
				return fixtureManager(), nil
			},
		}

		v1.RegisterProfileRoutes(api, authSvc)

		resp := api.GetCtx(managerCtx(fixedManagerID()), "/auth/me")
		require.Equal(t, http.StatusOK, resp.Code)

		var out v1.ManagerView
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "Grace Hopper", out.Name)
		assert.Equal(t, "Hopper Property Management", out.CompanyName)
	})

	t.Run("missing_manager_context", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		v1.RegisterProfileRoutes(api, &mockAuthService{})

		resp := api.Get("/auth/me")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("update", func(t *testing.T) {
		t.Parallel()

		_, api := humatest.New(t)
		authSvc := &mockAuthService{
			updateProfileFunc: func(_ context.Context, id uuid.UUID, p auth.Profile) (*domain.Manager, error) {
				assert.Equal(t, fixedManagerID(), id)
				assert.Equal(t, "1 Main St", p.MailingAddress)
				m := fixtureManager()
				m.MailingAddress = p.MailingAddress
				return m, nil
			},
		}

		v1.RegisterProfileRoutes(api, authSvc)

		resp := api.PutCtx(managerCtx(fixedManagerID()), "/auth/me", map[string]any{
			"name":            "Grace Hopper",
			"mailing_address": "1 Main St",
		})
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "1 Main St")
	})
}
