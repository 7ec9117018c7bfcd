package v1

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/leasehold/internal/domain"
)

// TenantBody is the writable part of a tenant. PUT replaces all of it.
type TenantBody struct {
	Name            string `json:"name" minLength:"1" maxLength:"255" doc:"Tenant name"`
	Email           string `json:"email,omitempty" maxLength:"255" doc:"Contact email"`
	Phone           string `json:"phone,omitempty" maxLength:"50" doc:"Contact phone"`
	PropertyAddress string `json:"property_address" minLength:"1" maxLength:"500" doc:"Leased property address"`
	Unit            string `json:"unit,omitempty" maxLength:"50" doc:"Unit number"`
	RentAmount      string `json:"rent_amount" minLength:"1" doc:"Monthly rent, decimal string"`
	RentDueDate     int    `json:"rent_due_date" minimum:"1" maximum:"31" doc:"Day of month rent is due; clamps to the last day of short months"`
	LeaseStart      string `json:"lease_start,omitempty" doc:"Lease start date (YYYY-MM-DD)"`
	LeaseEnd        string `json:"lease_end,omitempty" doc:"Lease end date (YYYY-MM-DD)"`
	SecurityDeposit string `json:"security_deposit,omitempty" doc:"Security deposit, decimal string"`
	Notes           string `json:"notes,omitempty" doc:"Free-form notes"`
}

// apply copies the body onto t, parsing amounts and dates.
func (b *TenantBody) apply(t *domain.Tenant) error {
	rent, err := parseMoney("rent_amount", b.RentAmount)
	if err != nil {
		return err
	}
	deposit, err := parseOptionalMoney("security_deposit", b.SecurityDeposit)
	if err != nil {
		return err
	}
	leaseStart, err := parseOptionalDate("lease_start", b.LeaseStart)
	if err != nil {
		return err
	}
	leaseEnd, err := parseOptionalDate("lease_end", b.LeaseEnd)
	if err != nil {
		return err
	}

	t.Name = strings.TrimSpace(b.Name)
	t.Email = strings.TrimSpace(b.Email)
	t.Phone = strings.TrimSpace(b.Phone)
	t.PropertyAddress = strings.TrimSpace(b.PropertyAddress)
	t.Unit = strings.TrimSpace(b.Unit)
	t.RentAmount = rent
	t.RentDueDay = b.RentDueDate
	t.LeaseStart = leaseStart
	t.LeaseEnd = leaseEnd
	t.SecurityDeposit = deposit
	t.Notes = b.Notes
	return t.Validate()
}

type CreateTenantInput struct {
	Body TenantBody
}

type TenantOutput struct {
	Body *TenantView
}

type ListTenantsOutput struct {
	Body []*TenantView
}

type TenantIDInput struct {
	ID uuid.UUID `path:"id" doc:"Tenant ID"`
}

type UpdateTenantInput struct {
	ID   uuid.UUID `path:"id" doc:"Tenant ID"`
	Body TenantBody
}

type ListTenantRecordsOutput struct {
	Body []*RecordView
}

func RegisterTenantRoutes(api huma.API, store DataStore, ledgerSvc LedgerService) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-tenant",
		Method:        http.MethodPost,
		Path:          "/tenants",
		Summary:       "Create a tenant",
		Tags:          []string{"Tenants"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateTenantInput) (*TenantOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		t := &domain.Tenant{
			ID:        uuid.New(),
			ManagerID: managerID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := input.Body.apply(t); err != nil {
			return nil, httpError(err, "tenant", "create tenant")
		}

		if err := store.Tenants().Create(ctx, t); err != nil {
			return nil, httpError(err, "tenant", "create tenant")
		}

		return &TenantOutput{Body: tenantView(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenants",
		Method:      http.MethodGet,
		Path:        "/tenants",
		Summary:     "List tenants",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, _ *struct{}) (*ListTenantsOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		tenants, err := store.Tenants().List(ctx, managerID)
		if err != nil {
			return nil, httpError(err, "tenant", "list tenants")
		}

		out := make([]*TenantView, 0, len(tenants))
		for _, t := range tenants {
			out = append(out, tenantView(t))
		}
		return &ListTenantsOutput{Body: out}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-tenant",
		Method:      http.MethodGet,
		Path:        "/tenants/{id}",
		Summary:     "Get a tenant",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *TenantIDInput) (*TenantOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		t, err := store.Tenants().GetByID(ctx, managerID, input.ID)
		if err != nil {
			return nil, httpError(err, "tenant", "load tenant")
		}

		return &TenantOutput{Body: tenantView(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-tenant",
		Method:      http.MethodPut,
		Path:        "/tenants/{id}",
		Summary:     "Replace a tenant's details and lease terms",
		Description: "Changing rent terms affects future projections only; existing rent records keep their amounts.",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *UpdateTenantInput) (*TenantOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		t, err := store.Tenants().GetByID(ctx, managerID, input.ID)
		if err != nil {
			return nil, httpError(err, "tenant", "load tenant")
		}

		if err := input.Body.apply(t); err != nil {
			return nil, httpError(err, "tenant", "update tenant")
		}
		t.UpdatedAt = time.Now()

		if err := store.Tenants().Update(ctx, t); err != nil {
			return nil, httpError(err, "tenant", "update tenant")
		}

		return &TenantOutput{Body: tenantView(t)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-tenant",
		Method:        http.MethodDelete,
		Path:          "/tenants/{id}",
		Summary:       "Delete a tenant and its rent records",
		Description:   "Tenants with legal notices cannot be deleted.",
		Tags:          []string{"Tenants"},
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *TenantIDInput) (*struct{}, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		if err := store.Tenants().Delete(ctx, managerID, input.ID); err != nil {
			return nil, httpError(err, "tenant", "delete tenant")
		}

		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-tenant-records",
		Method:      http.MethodGet,
		Path:        "/tenants/{id}/records",
		Summary:     "List a tenant's rent records, newest first",
		Tags:        []string{"Tenants"},
	}, func(ctx context.Context, input *TenantIDInput) (*ListTenantRecordsOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		records, err := ledgerSvc.ListByTenant(ctx, managerID, input.ID)
		if err != nil {
			return nil, httpError(err, "tenant", "list rent records")
		}

		return &ListTenantRecordsOutput{Body: recordViews(records)}, nil
	})
}
