package domain

import (
	"testing"
	"time"
)

func TestTenant_SubscriptionActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		tenant Tenant
		want   bool
	}{
		{"trial running", Tenant{Status: TenantTrial, TrialEndDate: now.Add(24 * time.Hour)}, true},
		{"trial expired", Tenant{Status: TenantTrial, TrialEndDate: now.Add(-time.Hour)}, false},
		{"active open-ended", Tenant{Status: TenantActive}, true},
		{"active with future end", Tenant{Status: TenantActive, PlanEndDate: now.Add(30 * 24 * time.Hour)}, true},
		{"active past end", Tenant{Status: TenantActive, PlanEndDate: now.Add(-time.Hour)}, false},
		{"suspended", Tenant{Status: TenantSuspended}, false},
		{"expired", Tenant{Status: TenantExpired}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.tenant.SubscriptionActive(now); got != tc.want {
				t.Errorf("SubscriptionActive = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestTenant_CheckUserLimit(t *testing.T) {
	unlimited := Tenant{Limits: Limits{Users: 0}, Usage: Usage{Users: 1000}}
	if !unlimited.CheckUserLimit() {
		t.Fatalf("zero cap must mean unlimited")
	}

	capped := Tenant{Limits: Limits{Users: 5}, Usage: Usage{Users: 4}}
	if !capped.CheckUserLimit() {
		t.Fatalf("room left under the cap")
	}

	capped.Usage.Users = 5
	if capped.CheckUserLimit() {
		t.Fatalf("at the cap, no more users")
	}
}

func TestTenant_HasFeature(t *testing.T) {
	free := Tenant{Plan: PlanFree}
	if !free.HasFeature("analytics") {
		t.Fatalf("analytics is a free-plan default")
	}
	if free.HasFeature("apiAccess") {
		t.Fatalf("apiAccess is not on the free plan")
	}

	premium := Tenant{Plan: PlanPremium}
	if !premium.HasFeature("webhooks") || !premium.HasFeature("backup") {
		t.Fatalf("premium defaults missing")
	}

	// Explicit flags beat the plan default in both directions.
	overridden := Tenant{
		Plan:     PlanFree,
		Features: map[string]bool{"apiAccess": true, "analytics": false},
	}
	if !overridden.HasFeature("apiAccess") {
		t.Fatalf("explicit enable ignored")
	}
	if overridden.HasFeature("analytics") {
		t.Fatalf("explicit disable ignored")
	}
}
