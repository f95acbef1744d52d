package domain

import "time"

// Plan is the subscription tier of a tenant.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanBasic      Plan = "basic"
	PlanPremium    Plan = "premium"
	PlanEnterprise Plan = "enterprise"
)

// TenantStatus represents the billing state of a tenant.
type TenantStatus string

const (
	TenantTrial     TenantStatus = "trial"
	TenantActive    TenantStatus = "active"
	TenantSuspended TenantStatus = "suspended"
	TenantExpired   TenantStatus = "expired"
)

// Limits are the per-resource caps granted by the tenant's plan.
type Limits struct {
	Users             int   `json:"users" bson:"users"`
	Storage           int64 `json:"storage" bson:"storage"`
	APICalls          int   `json:"api_calls" bson:"api_calls"`
	CustomDomain      bool  `json:"custom_domain" bson:"custom_domain"`
	SSO               bool  `json:"sso" bson:"sso"`
	AdvancedReporting bool  `json:"advanced_reporting" bson:"advanced_reporting"`
}

// Usage tracks current consumption against Limits. Counters are only ever
// mutated through atomic repository increments tied to the user create/delete
// that caused them.
type Usage struct {
	Users     int       `json:"users" bson:"users"`
	Storage   int64     `json:"storage" bson:"storage"`
	APICalls  int       `json:"api_calls" bson:"api_calls"`
	LastReset time.Time `json:"last_reset" bson:"last_reset"`
}

// Settings are tenant-level behavioral switches consulted by the auth flows.
type Settings struct {
	AllowUserRegistration    bool `json:"allow_user_registration" bson:"allow_user_registration"`
	RequireEmailVerification bool `json:"require_email_verification" bson:"require_email_verification"`
	SessionTimeoutHours      int  `json:"session_timeout_hours" bson:"session_timeout_hours"`
}

// Tenant is an isolated customer organization. All user data is partitioned
// by tenant id.
type Tenant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Domain      string `json:"domain,omitempty"`
	CompanyName string `json:"company_name"`

	ContactEmail string `json:"contact_email"`

	Plan        Plan      `json:"plan"`
	PlanEndDate time.Time `json:"plan_end_date,omitempty"`

	Status       TenantStatus `json:"status"`
	TrialEndDate time.Time    `json:"trial_end_date,omitempty"`

	Limits   Limits          `json:"limits"`
	Usage    Usage           `json:"usage"`
	Features map[string]bool `json:"features,omitempty"`
	Settings Settings        `json:"settings"`

	ProductName string `json:"product_name,omitempty"`

	OwnerID   string    `json:"owner_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubscriptionActive reports whether the tenant may be served at all:
// an active plan that has not ended, or a trial that has not run out.
func (t *Tenant) SubscriptionActive(now time.Time) bool {
	switch t.Status {
	case TenantTrial:
		return t.TrialEndDate.After(now)
	case TenantActive:
		return t.PlanEndDate.IsZero() || t.PlanEndDate.After(now)
	}
	return false
}

// CheckUserLimit reports whether another user may still be created. A zero
// cap means unlimited.
func (t *Tenant) CheckUserLimit() bool {
	if t.Limits.Users <= 0 {
		return true
	}
	return t.Usage.Users < t.Limits.Users
}

// planFeatures are the per-plan defaults consulted when a tenant has no
// explicit flag for a feature.
var planFeatures = map[Plan]map[string]bool{
	PlanFree: {
		"analytics": true,
	},
	PlanBasic: {
		"analytics": true, "exportData": true, "integrations": true, "auditLogs": true,
	},
	PlanPremium: {
		"analytics": true, "exportData": true, "apiAccess": true, "webhooks": true,
		"integrations": true, "customReports": true, "auditLogs": true, "backup": true,
	},
	PlanEnterprise: {
		"analytics": true, "exportData": true, "apiAccess": true, "webhooks": true,
		"integrations": true, "customReports": true, "auditLogs": true, "backup": true,
	},
}

// HasFeature resolves a feature flag: an explicit tenant flag wins, otherwise
// the plan default applies.
func (t *Tenant) HasFeature(feature string) bool {
	if v, ok := t.Features[feature]; ok {
		return v
	}
	return planFeatures[t.Plan][feature]
}
