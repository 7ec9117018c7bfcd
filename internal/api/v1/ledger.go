package v1

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gosuda/leasehold/internal/domain"
	"github.com/gosuda/leasehold/internal/ledger"
)

type AsOfInput struct {
	AsOf string `query:"as_of" doc:"Evaluation instant: YYYY-MM-DD (end of that day) or RFC 3339. Defaults to now."`
}

type CurrentLedgerOutput struct {
	Body []ledger.Entry
}

type SummaryOutput struct {
	Body *ledger.PeriodSummary
}

// obligationRef builds the target of a write from either a record id or a
// tenant id plus due date naming a projected obligation.
func obligationRef(recordID, tenantID *uuid.UUID, dueDate string) (domain.ObligationRef, error) {
	if recordID != nil {
		return domain.RecordRef(*recordID), nil
	}

	var ref domain.ObligationRef
	if tenantID != nil {
		ref.TenantID = *tenantID
	}
	due, err := parseOptionalDate("due_date", dueDate)
	if err != nil {
		return ref, err
	}
	if due != nil {
		ref.DueDate = *due
	}
	return ref, nil
}

type RecordPaymentInput struct {
	Body struct {
		RecordID     *uuid.UUID `json:"record_id,omitempty" doc:"Persisted rent record to pay against"`
		TenantID     *uuid.UUID `json:"tenant_id,omitempty" doc:"Tenant of a projected obligation (when record_id is absent)"`
		DueDate      string     `json:"due_date,omitempty" doc:"Due date of a projected obligation (YYYY-MM-DD); defaults to today"`
		AmountPaid   string     `json:"amount_paid" minLength:"1" doc:"Amount received, decimal string"`
		PaidDate     string     `json:"paid_date" minLength:"1" doc:"Date received (YYYY-MM-DD)"`
		Method       string     `json:"payment_method,omitempty" maxLength:"50" doc:"Cash, check, transfer..."`
		Notes        string     `json:"notes,omitempty" doc:"Free-form notes"`
		SettleInFull bool       `json:"settle_in_full,omitempty" doc:"Mark the record paid regardless of amount"`
	}
}

type RecordOutput struct {
	Body *RecordView
}

type UpsertRecordInput struct {
	Body struct {
		TenantID      uuid.UUID `json:"tenant_id" doc:"Tenant ID"`
		DueDate       string    `json:"due_date" minLength:"1" doc:"Due date (YYYY-MM-DD); one record per tenant per month"`
		AmountDue     string    `json:"amount_due,omitempty" doc:"Rent due; defaults to the tenant's rent amount"`
		AmountPaid    string    `json:"amount_paid,omitempty" doc:"Amount paid so far"`
		LateFees      string    `json:"late_fees,omitempty" doc:"Late fees added to the amount due"`
		PaidDate      string    `json:"paid_date,omitempty" doc:"Date paid (YYYY-MM-DD)"`
		PaymentMethod string    `json:"payment_method,omitempty" maxLength:"50" doc:"Payment method"`
		Notes         string    `json:"notes,omitempty" doc:"Free-form notes"`
	}
}

type UpsertRecordOutput struct {
	Body struct {
		Record  *RecordView `json:"record"`
		Created bool        `json:"created"`
	}
}

type RecordIDInput struct {
	ID uuid.UUID `path:"id" doc:"Rent record ID"`
}

type RefreshOverdueOutput struct {
	Body struct {
		Updated int64 `json:"updated"`
	}
}

func RegisterLedgerRoutes(api huma.API, ledgerSvc LedgerService) {
	huma.Register(api, huma.Operation{
		OperationID: "current-ledger",
		Method:      http.MethodGet,
		Path:        "/ledger/current",
		Summary:     "Current-period ledger view",
		Description: "Persisted records plus a projected overdue row for each tenant whose rent for the current month is past due and unrecorded. Nothing is written.",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, input *AsOfInput) (*CurrentLedgerOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}
		asOf, err := parseAsOf(input.AsOf, ledgerSvc.Location())
		if err != nil {
			return nil, err
		}

		entries, err := ledgerSvc.CurrentEntries(ctx, managerID, asOf)
		if err != nil {
			return nil, httpError(err, "ledger", "load ledger")
		}

		return &CurrentLedgerOutput{Body: entries}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ledger-summary",
		Method:      http.MethodGet,
		Path:        "/ledger/summary",
		Summary:     "Totals by status for the current period",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, input *AsOfInput) (*SummaryOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}
		asOf, err := parseAsOf(input.AsOf, ledgerSvc.Location())
		if err != nil {
			return nil, err
		}

		sum, err := ledgerSvc.Summary(ctx, managerID, asOf)
		if err != nil {
			return nil, httpError(err, "ledger", "summarize ledger")
		}

		return &SummaryOutput{Body: sum}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "record-payment",
		Method:      http.MethodPost,
		Path:        "/ledger/payments",
		Summary:     "Record a payment",
		Description: "A projected obligation is materialized first. Payments accumulate; paid records accept no more.",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, input *RecordPaymentInput) (*RecordOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		b := input.Body
		ref, err := obligationRef(b.RecordID, b.TenantID, b.DueDate)
		if err != nil {
			return nil, httpError(err, "rent record", "record payment")
		}
		amount, err := parseMoney("amount_paid", b.AmountPaid)
		if err != nil {
			return nil, httpError(err, "rent record", "record payment")
		}
		paid, err := parseDate("paid_date", b.PaidDate)
		if err != nil {
			return nil, httpError(err, "rent record", "record payment")
		}

		rec, err := ledgerSvc.RecordPayment(ctx, managerID, ref, ledger.Payment{
			Amount:       amount,
			PaidDate:     paid,
			Method:       b.Method,
			Notes:        b.Notes,
			SettleInFull: b.SettleInFull,
		})
		if err != nil {
			return nil, httpError(err, "rent record", "record payment")
		}

		return &RecordOutput{Body: recordView(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "upsert-record",
		Method:      http.MethodPost,
		Path:        "/ledger/records",
		Summary:     "Create or update the record for a tenant's month",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, input *UpsertRecordInput) (*UpsertRecordOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		entry, err := manualEntry(input)
		if err != nil {
			return nil, httpError(err, "rent record", "save rent record")
		}

		rec, created, err := ledgerSvc.UpsertPeriodRecord(ctx, managerID, entry)
		if err != nil {
			return nil, httpError(err, "rent record", "save rent record")
		}

		out := &UpsertRecordOutput{}
		out.Body.Record = recordView(rec)
		out.Body.Created = created
		return out, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-record",
		Method:      http.MethodGet,
		Path:        "/ledger/records/{id}",
		Summary:     "Get a rent record",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, input *RecordIDInput) (*RecordOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}

		rec, err := ledgerSvc.Get(ctx, managerID, input.ID)
		if err != nil {
			return nil, httpError(err, "rent record", "load rent record")
		}

		return &RecordOutput{Body: recordView(rec)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "refresh-overdue",
		Method:      http.MethodPost,
		Path:        "/ledger/refresh-overdue",
		Summary:     "Mark pending records past their due date overdue",
		Tags:        []string{"Ledger"},
	}, func(ctx context.Context, input *AsOfInput) (*RefreshOverdueOutput, error) {
		managerID, err := managerFrom(ctx)
		if err != nil {
			return nil, err
		}
		asOf, err := parseAsOf(input.AsOf, ledgerSvc.Location())
		if err != nil {
			return nil, err
		}

		n, err := ledgerSvc.RefreshOverdue(ctx, managerID, asOf)
		if err != nil {
			return nil, httpError(err, "rent record", "refresh overdue records")
		}

		out := &RefreshOverdueOutput{}
		out.Body.Updated = n
		return out, nil
	})
}

func manualEntry(input *UpsertRecordInput) (ledger.ManualEntry, error) {
	b := input.Body
	e := ledger.ManualEntry{
		TenantID:      b.TenantID,
		PaymentMethod: b.PaymentMethod,
		Notes:         b.Notes,
		AmountPaid:    decimal.Zero,
		LateFees:      decimal.Zero,
	}

	var err error
	if e.DueDate, err = parseDate("due_date", b.DueDate); err != nil {
		return e, err
	}
	if e.AmountDue, err = parseOptionalMoney("amount_due", b.AmountDue); err != nil {
		return e, err
	}
	if b.AmountPaid != "" {
		if e.AmountPaid, err = parseMoney("amount_paid", b.AmountPaid); err != nil {
			return e, err
		}
	}
	if b.LateFees != "" {
		if e.LateFees, err = parseMoney("late_fees", b.LateFees); err != nil {
			return e, err
		}
	}
	if e.PaidDate, err = parseOptionalDate("paid_date", b.PaidDate); err != nil {
		return e, err
	}
	return e, nil
}
