package email

import (
	"strconv"
	"time"
)

// GlobalVariables is the fixed brand variable set available to every
// template. Values come from configuration at process start.
type GlobalVariables struct {
	AppName      string
	LogoURL      string
	DashboardURL string
	WebURL       string
	SupportEmail string
	LegalName    string
	LegalAddress string
}

// Resolver merges the global variable set with per-call variables.
// It is immutable after construction and safe for concurrent use.
type Resolver struct {
	base map[string]string
}

// NewResolver builds a resolver over the given globals. currentYear is
// computed once at construction; the resolver holds no mutable state.
func NewResolver(globals GlobalVariables) *Resolver {
	return &Resolver{base: map[string]string{
		"appName":      globals.AppName,
		"logoUrl":      globals.LogoURL,
		"dashboardUrl": globals.DashboardURL,
		"webUrl":       globals.WebURL,
		"supportEmail": globals.SupportEmail,
		"legalName":    globals.LegalName,
		"legalAddress": globals.LegalAddress,
		"currentYear":  strconv.Itoa(time.Now().Year()),
	}}
}

// Resolve returns the globals overlaid with the caller-supplied variables.
// Caller values win on key collision. Shallow merge, no type coercion.
func (r *Resolver) Resolve(callerVars map[string]string) map[string]string {
	merged := make(map[string]string, len(r.base)+len(callerVars))
	for k, v := range r.base {
		merged[k] = v
	}
	for k, v := range callerVars {
		merged[k] = v
	}
	return merged
}
