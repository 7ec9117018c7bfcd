package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"

	"github.com/gosuda/leasehold/internal/domain"
	"github.com/gosuda/leasehold/internal/notice"
)

type GenerateNoticeInput struct {
	Body struct {
		TenantID     uuid.UUID  `json:"tenant_id" doc:"Tenant the notice is addressed to"`
		RecordID     *uuid.UUID `json:"record_id,omitempty" doc:"Persisted rent record in default"`
		DueDate      string     `json:"due_date,omitempty" doc:"Due date of a projected obligation (YYYY-MM-DD) when record_id is absent"`
		AmountOwed   string     `json:"amount_owed" minLength:"1" doc:"Amount demanded, fixed at generation"`
		DaysToPay    *int       `json:"days_to_pay,omitempty" minimum:"0" doc:"Cure period in days; defaults to the jurisdiction's"`
		Jurisdiction string     `json:"jurisdiction,omitempty" maxLength:"16" doc:"Jurisdiction code; defaults to the configured one"`
	}
}

type NoticeOutput struct {
	Body *NoticeView
}

type ListNoticesInput struct {
	RecordID string `query:"record_id" doc:"Only notices against this rent record"`
	TenantID string `query:"tenant_id" doc:"Only notices for this tenant"`
}

type ListNoticesOutput struct {
	Body []*NoticeView
}

type NoticeIDInput struct {
	ID uuid.UUID `path:"id" doc:"Notice ID"`
}

type DeliveryInput struct {
	ID   uuid.UUID `path:"id" doc:"Notice ID"`
	Body struct {
		Action string `json:"action" enum:"generated,downloaded,sent" doc:"Delivery action to log"`
	}
}

type DeliveryOutput struct {
	Body struct {
		Recorded bool        `json:"recorded"`
		Notice   *NoticeView `json:"notice,omitempty"`
	}
}

type TransitionNoticeInput struct {
	ID   uuid.UUID `path:"id" doc:"Notice ID"`
	Body struct {
		Status string `json:"status" enum:"served,resolved,expired" doc:"Target status"`
	}
}

type DocumentOutput struct {
	Body *notice.Document
}

type ReconcileOutput struct {
	Body *notice.ReconcileResult
}

type JurisdictionView struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	CurePeriod   int      `json:"cure_period_days"`
	Citation     string   `json:"citation"`
	Consequences []string `json:"consequences"`
}

type ListJurisdictionsOutput struct {
	Body []JurisdictionView
}

func RegisterNoticeRoutes(api huma.API, notices NoticeService) {
	huma.Register(api, huma.Operation{
		OperationID:   "generate-notice",
		Method:        http.MethodPost,
		Path:          "/notices",
		Summary:       "Generate a pay-or-quit notice",
		Description:   "A projected obligation is materialized first, so the notice always references a real rent record.",
		Tags:          []string{"Notices"},
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *GenerateNoticeInput) (*NoticeOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		b := input.Body
		ref, err := obligationRef(b.RecordID, &b.TenantID, b.DueDate)
		if err != nil {
			return nil, httpError(err, "notice", "generate notice")
		}
		amount, err := parseMoney("amount_owed", b.AmountOwed)
		if err != nil {
			return nil, httpError(err, "notice", "generate notice")
		}

		n, err := notices.GenerateNotice(ctx, managerID, notice.Request{
			TenantID:     b.TenantID,
			Obligation:   ref,
			AmountOwed:   amount,
			DaysToPay:    b.DaysToPay,
			Jurisdiction: b.Jurisdiction,
		})
		if err != nil {
			return nil, httpError(err, "notice", "generate notice")
		}

		return &NoticeOutput{Body: noticeView(n)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-notices",
		Method:      http.MethodGet,
		Path:        "/notices",
		Summary:     "List notices",
		Description: "Filters by record_id or tenant_id; with neither, lists active (generated or served) notices.",
		Tags:        []string{"Notices"},
	}, func(ctx context.Context, input *ListNoticesInput) (*ListNoticesOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		var list []*domain.LegalNotice
		switch {
		case input.RecordID != "":
			id, perr := uuid.Parse(input.RecordID)
			if perr != nil {
				return nil, huma.Error400BadRequest("record_id must be a UUID")
			}
			list, err = notices.ListByRecord(ctx, managerID, id)
		case input.TenantID != "":
			id, perr := uuid.Parse(input.TenantID)
			if perr != nil {
				return nil, huma.Error400BadRequest("tenant_id must be a UUID")
			}
			list, err = notices.ListByTenant(ctx, managerID, id)
		default:
			list, err = notices.ListActive(ctx, managerID)
		}
		if err != nil {
			return nil, httpError(err, "notice", "list notices")
		}

		return &ListNoticesOutput{Body: noticeViews(list)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-notice",
		Method:      http.MethodGet,
		Path:        "/notices/{id}",
		Summary:     "Get a notice",
		Tags:        []string{"Notices"},
	}, func(ctx context.Context, input *NoticeIDInput) (*NoticeOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		n, err := notices.Get(ctx, managerID, input.ID)
		if err != nil {
			return nil, httpError(err, "notice", "load notice")
		}

		return &NoticeOutput{Body: noticeView(n)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "record-delivery",
		Method:      http.MethodPost,
		Path:        "/notices/{id}/delivery",
		Summary:     "Log a delivery action",
		Description: "Sending a generated notice marks it served. Actions against unknown notices are dropped.",
		Tags:        []string{"Notices"},
	}, func(ctx context.Context, input *DeliveryInput) (*DeliveryOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		n, err := notices.RecordDeliveryAction(ctx, managerID, input.ID, domain.DeliveryAction(input.Body.Action))
		if err != nil {
			return nil, httpError(err, "notice", "record delivery action")
		}

		out := &DeliveryOutput{}
		if n != nil {
			out.Body.Recorded = true
			out.Body.Notice = noticeView(n)
		}
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "transition-notice",
		Method:      http.MethodPatch,
		Path:        "/notices/{id}/status",
		Summary:     "Move a notice forward in its lifecycle",
		Tags:        []string{"Notices"},
	}, func(ctx context.Context, input *TransitionNoticeInput) (*NoticeOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		n, err := notices.Transition(ctx, managerID, input.ID, domain.NoticeStatus(input.Body.Status))
		if err != nil {
			return nil, httpError(err, "notice", "update notice status")
		}

		return &NoticeOutput{Body: noticeView(n)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "notice-document",
		Method:      http.MethodGet,
		Path:        "/notices/{id}/document",
		Summary:     "Render the notice text",
		Tags:        []string{"Notices"},
	}, func(ctx context.Context, input *NoticeIDInput) (*DocumentOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		doc, err := notices.Document(ctx, managerID, input.ID)
		if err != nil {
			return nil, httpError(err, "notice", "render notice")
		}

		return &DocumentOutput{Body: doc}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "reconcile-notices",
		Method:      http.MethodPost,
		Path:        "/notices/reconcile",
		Summary:     "Resolve notices on paid records and expire lapsed served notices",
		Tags:        []string{"Notices"},
	}, func(ctx context.Context, input *AsOfInput) (*ReconcileOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}
		asOf, err := parseAsOf(input.AsOf, notices.Location())
		if err != nil {
			return nil, err
		}

		res, err := notices.Reconcile(ctx, managerID, asOf)
		if err != nil {
			return nil, httpError(err, "notice", "reconcile notices")
		}

		return &ReconcileOutput{Body: res}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-jurisdictions",
		Method:      http.MethodGet,
		Path:        "/jurisdictions",
		Summary:     "List supported jurisdictions",
		Tags:        []string{"Notices"},
	}, func(_ context.Context, _ *struct{}) (*ListJurisdictionsOutput, error) {
		reg := notices.Jurisdictions()
		codes := reg.Codes()
		out := make([]JurisdictionView, 0, len(codes))
		for _, code := range codes {
			j, ok := reg.Lookup(code)
			if !ok {
				continue
			}
			out = append(out, JurisdictionView{
				Code:         j.Code,
				Name:         j.Name,
				CurePeriod:   j.CurePeriod,
				Citation:     j.Citation,
				Consequences: j.Consequences,
			})
		}
		return &ListJurisdictionsOutput{Body: out}, nil
	})
}
