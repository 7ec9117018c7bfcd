package notice

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// GenericJurisdiction is the built-in jurisdiction code.
const GenericJurisdiction = "GEN"

// DefaultCurePeriod is the cure period used when a jurisdiction does not set one.
const DefaultCurePeriod = 30

// Jurisdiction holds the statutory text and cure period for one locale.
type Jurisdiction struct {
	Code         string
	Name         string
	CurePeriod   int // calendar days
	Citation     string
	Consequences []string
}

// Registry is a concurrency-safe set of jurisdictions keyed by code.
type Registry struct {
	mu    sync.RWMutex
	items map[string]Jurisdiction
}

// NewRegistry returns a registry holding the generic jurisdiction.
func NewRegistry() *Registry {
	r := &Registry{items: make(map[string]Jurisdiction)}
	_ = r.Register(Jurisdiction{
		Code:       GenericJurisdiction,
		Name:       "General",
		CurePeriod: DefaultCurePeriod,
		Citation:   "pursuant to the terms of your rental agreement and applicable landlord-tenant law",
		Consequences: []string{
			"The landlord may terminate your tenancy and begin eviction proceedings.",
			"You may be held responsible for court costs and attorney fees as permitted by law.",
			"Unpaid amounts may be reported to credit agencies or referred for collection.",
		},
	})
	return r
}

// Register adds or replaces a jurisdiction.
func (r *Registry) Register(j Jurisdiction) error {
	code := strings.ToUpper(strings.TrimSpace(j.Code))
	if code == "" {
		return fmt.Errorf("notice.Registry.Register: code is required")
	}
	if j.CurePeriod <= 0 {
		j.CurePeriod = DefaultCurePeriod
	}
	j.Code = code

	r.mu.Lock()
	r.items[code] = j
	r.mu.Unlock()
	return nil
}

// Lookup returns the jurisdiction registered under code (case-insensitive).
func (r *Registry) Lookup(code string) (Jurisdiction, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.items[strings.ToUpper(strings.TrimSpace(code))]
	return j, ok
}

// Codes lists registered codes in sorted order.
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.items))
	for code := range r.items {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
