package email

import (
	"strconv"
	"testing"
	"time"
)

func testGlobals() GlobalVariables {
	return GlobalVariables{
		AppName:      "FundLift",
		LogoURL:      "https://cdn.fundlift.io/logo.png",
		DashboardURL: "https://app.fundlift.io",
		WebURL:       "https://fundlift.io",
		SupportEmail: "support@fundlift.io",
		LegalName:    "FundLift B.V.",
		LegalAddress: "Herengracht 1, Amsterdam",
	}
}

func TestResolver_IncludesGlobals(t *testing.T) {
	r := NewResolver(testGlobals())

	vars := r.Resolve(nil)

	expected := map[string]string{
		"appName":      "FundLift",
		"logoUrl":      "https://cdn.fundlift.io/logo.png",
		"dashboardUrl": "https://app.fundlift.io",
		"webUrl":       "https://fundlift.io",
		"supportEmail": "support@fundlift.io",
		"legalName":    "FundLift B.V.",
		"legalAddress": "Herengracht 1, Amsterdam",
		"currentYear":  strconv.Itoa(time.Now().Year()),
	}

	for k, want := range expected {
		if got := vars[k]; got != want {
			t.Errorf("vars[%q] = %q, want %q", k, got, want)
		}
	}
}

func TestResolver_CallerVariablesWin(t *testing.T) {
	r := NewResolver(testGlobals())

	vars := r.Resolve(map[string]string{
		"appName":   "Custom",
		"firstName": "Ann",
	})

	if vars["appName"] != "Custom" {
		t.Errorf("appName = %q, want caller override %q", vars["appName"], "Custom")
	}
	if vars["firstName"] != "Ann" {
		t.Errorf("firstName = %q, want %q", vars["firstName"], "Ann")
	}
	// Untouched globals survive the merge
	if vars["webUrl"] != "https://fundlift.io" {
		t.Errorf("webUrl = %q, want %q", vars["webUrl"], "https://fundlift.io")
	}
}

func TestResolver_DoesNotMutateBase(t *testing.T) {
	r := NewResolver(testGlobals())

	r.Resolve(map[string]string{"appName": "Mutated"})

	vars := r.Resolve(nil)
	if vars["appName"] != "FundLift" {
		t.Errorf("appName = %q, base map was mutated by a prior Resolve", vars["appName"])
	}
}
