package v1

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gosuda/leasehold/internal/auth"
)

type RegisterInput struct {
	Body struct {
		Email          string `json:"email" minLength:"3" maxLength:"255" doc:"Login email"`
		Password       string `json:"password" minLength:"8" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
		Name           string `json:"name" minLength:"1" maxLength:"255" doc:"Manager name, printed on notices"`
		CompanyName    string `json:"company_name,omitempty" maxLength:"255" doc:"Company name for the notice sender block"`
		MailingAddress string `json:"mailing_address,omitempty" maxLength:"500" doc:"Mailing address for the notice sender block"`
		Phone          string `json:"phone,omitempty" maxLength:"50" doc:"Phone for the notice sender block"`
	}
}

type RegisterOutput struct {
	Body struct {
		Manager      *ManagerView `json:"manager"`
		AccessToken  string       `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string       `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

type LoginInput struct {
	Body struct {
		Email    string `json:"email" minLength:"3" maxLength:"255" doc:"Login email"`
		Password string `json:"password" minLength:"1" maxLength:"128" doc:"Password"` //nolint:gosec // G117: login credential DTO
	}
}

type LoginOutput struct {
	Body struct {
		AccessToken  string `json:"access_token"`  //nolint:gosec // G117: auth response DTO
		RefreshToken string `json:"refresh_token"` //nolint:gosec // G117: auth response DTO
	}
}

type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" minLength:"1" doc:"Refresh token"` //nolint:gosec // G117: token refresh DTO
	}
}

type RefreshOutput struct {
	Body struct {
		AccessToken string `json:"access_token"` //nolint:gosec // G117: auth response DTO
	}
}

type ProfileOutput struct {
	Body *ManagerView
}

type UpdateProfileInput struct {
	Body struct {
		Name           string `json:"name" minLength:"1" maxLength:"255" doc:"Manager name"`
		CompanyName    string `json:"company_name,omitempty" maxLength:"255" doc:"Company name"`
		MailingAddress string `json:"mailing_address,omitempty" maxLength:"500" doc:"Mailing address"`
		Phone          string `json:"phone,omitempty" maxLength:"50" doc:"Phone"`
	}
}

// RegisterAuthRoutes wires the unauthenticated account endpoints.
func RegisterAuthRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Summary:     "Register a manager account",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
		m, err := authSvc.Register(ctx, auth.Registration{
			Email:          input.Body.Email,
			Password:       input.Body.Password,
			Name:           input.Body.Name,
			CompanyName:    input.Body.CompanyName,
			MailingAddress: input.Body.MailingAddress,
			Phone:          input.Body.Phone,
		})
		if err != nil {
			if errors.Is(err, auth.ErrManagerAlreadyExists) {
				return nil, huma.Error409Conflict("manager already exists")
			}
			return nil, httpError(err, "manager", "register manager")
		}

		accessToken, refreshToken, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, huma.Error500InternalServerError("registered but failed to issue tokens")
		}

		out := &RegisterOutput{}
		out.Body.Manager = managerView(m)
		out.Body.AccessToken = accessToken
		out.Body.RefreshToken = refreshToken
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Login with email and password",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
		accessToken, refreshToken, err := authSvc.Login(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				return nil, huma.Error401Unauthorized("invalid email or password")
			}
			return nil, httpError(err, "manager", "login")
		}

		out := &LoginOutput{}
		out.Body.AccessToken = accessToken
		out.Body.RefreshToken = refreshToken
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/auth/refresh",
		Summary:     "Refresh access token",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *RefreshInput) (*RefreshOutput, error) {
		accessToken, err := authSvc.RefreshToken(ctx, input.Body.RefreshToken)
		if err != nil {
			return nil, huma.Error401Unauthorized("invalid or expired refresh token")
		}

		out := &RefreshOutput{}
		out.Body.AccessToken = accessToken
		return out, nil
	})
}

// RegisterProfileRoutes wires the signed-in manager's own account.
func RegisterProfileRoutes(api huma.API, authSvc AuthService) {
	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/auth/me",
		Summary:     "Get the signed-in manager",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		m, err := authSvc.GetManager(ctx, managerID)
		if err != nil {
			return nil, httpError(err, "manager", "load manager")
		}

		return &ProfileOutput{Body: managerView(m)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-profile",
		Method:      http.MethodPut,
		Path:        "/auth/me",
		Summary:     "Update the notice sender details",
		Tags:        []string{"Auth"},
	}, func(ctx context.Context, input *UpdateProfileInput) (*ProfileOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		m, err := authSvc.UpdateProfile(ctx, managerID, auth.Profile{
			Name:           input.Body.Name,
			CompanyName:    input.Body.CompanyName,
			MailingAddress: input.Body.MailingAddress,
			Phone:          input.Body.Phone,
		})
		if err != nil {
			return nil, httpError(err, "manager", "update manager")
		}

		return &ProfileOutput{Body: managerView(m)}, nil
	})
}
