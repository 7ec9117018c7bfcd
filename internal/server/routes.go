package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/gosuda/leasehold/internal/api/v1"
	"github.com/gosuda/leasehold/internal/api/ws"
)

func registerAuthRoutes(api huma.API, svc Services) {
	v1.RegisterAuthRoutes(api, svc.Auth)
}

func registerAPIRoutes(api huma.API, store v1.DataStore, svc Services) {
	v1.RegisterProfileRoutes(api, svc.Auth)
	v1.RegisterTenantRoutes(api, store, svc.Ledger)
	v1.RegisterLedgerRoutes(api, svc.Ledger)
	v1.RegisterNoticeRoutes(api, svc.Notices)
}

func registerWSRoutes(r chi.Router, hub *ws.Hub) {
	r.Get("/ledger", hub.ServeLedger)
}
