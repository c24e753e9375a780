package billing

import "github.com/stripe/stripe-go/v76"

// PlanName identifies a subscription plan tier.
type PlanName string

const (
	PlanFree           PlanName = "Free"
	PlanProspector     PlanName = "Prospector"
	PlanNetworker      PlanName = "Networker"
	PlanRainmaker      PlanName = "Rainmaker"
	PlanFoundingMember PlanName = "Founding Member"
)

// SubscriptionStatus mirrors the billing provider's status vocabulary.
type SubscriptionStatus string

const (
	StatusInactive  SubscriptionStatus = "inactive"
	StatusActive    SubscriptionStatus = "active"
	StatusPastDue   SubscriptionStatus = "past_due"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusTrialing  SubscriptionStatus = "trialing"
)

// SubscriptionType distinguishes the founding-member schedule flow from
// regular monthly billing.
type SubscriptionType string

const (
	TypeFoundingMemberSchedule SubscriptionType = "founding_member_schedule"
	TypeRegularMonthly         SubscriptionType = "regular_monthly"
	TypeNone                   SubscriptionType = "none"
)

// PlanInfo carries display metadata for a plan.
type PlanInfo struct {
	Name         PlanName
	DisplayName  string
	MonthlyCents int64
}

var planInfos = map[PlanName]PlanInfo{
	PlanFree:           {Name: PlanFree, DisplayName: "Free", MonthlyCents: 0},
	PlanProspector:     {Name: PlanProspector, DisplayName: "Prospector", MonthlyCents: 2900},
	PlanNetworker:      {Name: PlanNetworker, DisplayName: "Networker", MonthlyCents: 4900},
	PlanRainmaker:      {Name: PlanRainmaker, DisplayName: "Rainmaker", MonthlyCents: 9900},
	PlanFoundingMember: {Name: PlanFoundingMember, DisplayName: "Founding Member", MonthlyCents: 7500},
}

// Info returns display metadata for a plan. Unknown plans report as Free.
func Info(name PlanName) PlanInfo {
	if info, ok := planInfos[name]; ok {
		return info
	}
	return planInfos[PlanFree]
}

// Catalog maps the provider's price identifiers to plan names.
type Catalog struct {
	prices map[string]PlanName
}

// NewCatalog builds the price-to-plan mapping from configuration.
// Empty price ids are skipped so partially configured environments
// (e.g. local development without all prices) still start.
func NewCatalog(cfg Config) *Catalog {
	prices := make(map[string]PlanName)
	for priceID, plan := range map[string]PlanName{
		cfg.ProspectorPriceID:       PlanProspector,
		cfg.NetworkerPriceID:        PlanNetworker,
		cfg.RainmakerPriceID:        PlanRainmaker,
		cfg.FoundingIntroPriceID:    PlanFoundingMember,
		cfg.FoundingStandardPriceID: PlanFoundingMember,
	} {
		if priceID != "" {
			prices[priceID] = plan
		}
	}
	return &Catalog{prices: prices}
}

// ResolvePlan maps a provider price id to a plan name. Unrecognized price ids
// resolve to Prospector instead of failing the event, so an unmapped price in
// the provider dashboard degrades gracefully rather than blocking webhooks.
func (c *Catalog) ResolvePlan(priceID string) PlanName {
	if plan, ok := c.prices[priceID]; ok {
		return plan
	}
	return PlanProspector
}

// MapStatus converts a provider subscription status into the local vocabulary.
func MapStatus(s stripe.SubscriptionStatus) SubscriptionStatus {
	switch s {
	case stripe.SubscriptionStatusActive:
		return StatusActive
	case stripe.SubscriptionStatusPastDue:
		return StatusPastDue
	case stripe.SubscriptionStatusCanceled:
		return StatusCancelled
	case stripe.SubscriptionStatusTrialing:
		return StatusTrialing
	default:
		return StatusInactive
	}
}
