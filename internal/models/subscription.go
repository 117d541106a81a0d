// internal/models/subscription.go
package models

// PlanType mirrors the backend's numeric plan type enum.
type PlanType int

const (
	PlanFree       PlanType = 0
	PlanBasic      PlanType = 1
	PlanPro        PlanType = 2
	PlanEnterprise PlanType = 3
)

// SubscriptionStatus mirrors the backend's numeric subscription status enum.
type SubscriptionStatus int

const (
	SubscriptionActive    SubscriptionStatus = 1
	SubscriptionCancelled SubscriptionStatus = 2
	SubscriptionExpired   SubscriptionStatus = 3
	SubscriptionSuspended SubscriptionStatus = 4
	SubscriptionTrial     SubscriptionStatus = 5
)

// BillingPeriod mirrors the backend's numeric billing period enum.
type BillingPeriod int

const (
	BillingMonthly BillingPeriod = 1
	BillingYearly  BillingPeriod = 2
)

func (p BillingPeriod) String() string {
	if p == BillingYearly {
		return "yearly"
	}
	return "monthly"
}

// UnlimitedScans is the scan limit sentinel meaning no monthly cap.
const UnlimitedScans = -1

// Plan is an immutable catalog entry, read-only to this core.
type Plan struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	Description          string   `json:"description"`
	PlanType             PlanType `json:"planType"`
	MonthlyPrice         float64  `json:"monthlyPrice"`
	YearlyPrice          float64  `json:"yearlyPrice"`
	MonthlyScanLimit     int      `json:"monthlyScanLimit"`
	StorageLimitMB       int      `json:"storageLimitMB"`
	TrialDays            *int     `json:"trialDays"`
	HasAPIAccess         bool     `json:"hasApiAccess"`
	HasAdvancedAnalytics bool     `json:"hasAdvancedAnalytics"`
	HasTeamManagement    bool     `json:"hasTeamManagement"`
	HasPrioritySupport   bool     `json:"hasPrioritySupport"`
}

// PriceFor returns the plan price for the given billing period.
func (p Plan) PriceFor(period BillingPeriod) float64 {
	if period == BillingYearly {
		return p.YearlyPrice
	}
	return p.MonthlyPrice
}

// Subscription is the backend-owned subscription record; this core holds
// only a transient view of it while driving a checkout.
type Subscription struct {
	ID                 string             `json:"id"`
	UserID             string             `json:"userId"`
	Plan               Plan               `json:"plan"`
	Status             SubscriptionStatus `json:"status"`
	BillingPeriod      BillingPeriod      `json:"billingPeriod"`
	StartDate          string             `json:"startDate"`
	EndDate            string             `json:"endDate"`
	CancelledAt        *string            `json:"cancelledAt"`
	CancellationReason *string            `json:"cancellationReason"`
	NextBillingDate    *string            `json:"nextBillingDate"`
	AutoRenew          bool               `json:"autoRenew"`
	CreatedAt          string             `json:"createdAt"`
}

// Usage is one user's usage snapshot for a (year, month) period.
type Usage struct {
	UserID           string  `json:"userId"`
	Year             int     `json:"year"`
	Month            int     `json:"month"`
	ScanCount        int     `json:"scanCount"`
	ScanLimit        int     `json:"scanLimit"`
	StorageUsedBytes int64   `json:"storageUsedBytes"`
	StorageLimitByte int64   `json:"storageLimitBytes"`
	APICallCount     int     `json:"apiCallCount"`
	UsagePercentage  float64 `json:"usagePercentage"`
	IsLimitExceeded  bool    `json:"isLimitExceeded"`
}

// SubscribeRequest is the POST /Subscriptions/subscribe body.
type SubscribeRequest struct {
	PlanID        string        `json:"planId"`
	BillingPeriod BillingPeriod `json:"billingPeriod"`
}

// CancelSubscriptionRequest is the POST /Subscriptions/cancel body.
type CancelSubscriptionRequest struct {
	Reason string `json:"reason,omitempty"`
}
