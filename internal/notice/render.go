package notice

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/gosuda/leasehold/internal/domain"
)

// Document is the rendered text of a notice, handed to whatever prints or
// exports it.
type Document struct {
	Title    string    `json:"title"`
	Text     string    `json:"text"`
	Deadline time.Time `json:"deadline"`
}

const payOrQuitTemplate = `{{.Title}}

Date: {{.Generated}}

TO:
{{.TenantName}}
{{.Address}}

FROM:
{{.ManagerName}}{{if .Company}}
{{.Company}}{{end}}{{if .ManagerAddress}}
{{.ManagerAddress}}{{end}}{{if .ManagerPhone}}
{{.ManagerPhone}}{{end}}

NOTICE IS HEREBY GIVEN, {{.Citation}}, that you are in default in the payment of rent for the premises described above.

Rent period due date: {{.DueDate}}
Amount owed: ${{.Amount}}

You are required to pay the amount owed in full within {{.Days}} days, on or before {{.Deadline}}, or to vacate and deliver possession of the premises.

If you fail to pay or vacate by the deadline:
{{range $i, $c := .Consequences}}{{inc $i}}. {{$c}}
{{end}}
This notice is not a waiver of any other rights the landlord holds under the rental agreement or by law.

{{.ManagerName}}
`

var noticeTmpl = template.Must(template.New("pay_or_quit").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(payOrQuitTemplate))

type renderData struct {
	Title          string
	Generated      string
	TenantName     string
	Address        string
	ManagerName    string
	Company        string
	ManagerAddress string
	ManagerPhone   string
	Citation       string
	DueDate        string
	Amount         string
	Days           int
	Deadline       string
	Consequences   []string
}

// Render fills the notice template. It performs no I/O and reads no clock,
// so identical inputs give byte-identical output.
func Render(j Jurisdiction, n *domain.LegalNotice, t *domain.Tenant, m *domain.Manager, r *domain.RentRecord) (*Document, error) {
	if n == nil || t == nil || m == nil || r == nil {
		return nil, errors.New("notice.Render: notice, tenant, manager and record are required")
	}
	if n.RentRecordID != r.ID || n.TenantID != t.ID {
		return nil, fmt.Errorf("notice.Render: %w", domain.Invalid("notice", "does not match the given tenant and record"))
	}

	title := "NOTICE TO PAY RENT OR QUIT"
	if j.Name != "" && j.Code != GenericJurisdiction {
		title = fmt.Sprintf("%s (%s)", title, j.Name)
	}

	deadline := n.Deadline()
	data := renderData{
		Title:          title,
		Generated:      n.GeneratedDate.Format(time.DateOnly),
		TenantName:     t.Name,
		Address:        t.DisplayAddress(),
		ManagerName:    m.Name,
		Company:        strings.TrimSpace(m.CompanyName),
		ManagerAddress: strings.TrimSpace(m.MailingAddress),
		ManagerPhone:   strings.TrimSpace(m.Phone),
		Citation:       j.Citation,
		DueDate:        r.DueDate.Format(time.DateOnly),
		Amount:         n.AmountOwed.StringFixed(2),
		Days:           n.DaysToPay,
		Deadline:       deadline.Format(time.DateOnly),
		Consequences:   j.Consequences,
	}

	var buf bytes.Buffer
	if err := noticeTmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("notice.Render: %w", err)
	}

	return &Document{Title: title, Text: buf.String(), Deadline: deadline}, nil
}
