// Package costing estimates repair-option costs from daily rates.
package costing

import "strings"

// Category names used in breakdowns.
const (
	CategoryDockRental      = "dock_rental"
	CategoryLabor           = "labor"
	CategoryEquipment       = "equipment"
	CategoryExternalPremium = "external_premium"
	CategoryDemurrageRisk   = "demurrage_risk"
)

// externalMarker flags proposals that rely on outside contractors.
// Matched case-insensitively against the proposal description.
const externalMarker = "external"

// Rates holds the daily rates driving an estimate.
type Rates struct {
	// DockRentalPerDay, LaborPerDay and EquipmentPerDay apply to every
	// proposal for its full duration.
	DockRentalPerDay int
	LaborPerDay      int
	EquipmentPerDay  int

	// ExternalPremiumPerDay applies when the proposal mentions
	// external/outsourced work.
	ExternalPremiumPerDay int

	// DemurragePerDay applies to each day beyond DemurrageThresholdDays.
	DemurragePerDay        int
	DemurrageThresholdDays int
}

// DefaultRates returns the yard's standard rate card.
func DefaultRates() Rates {
	return Rates{
		DockRentalPerDay:       5000,
		LaborPerDay:            3000,
		EquipmentPerDay:        2000,
		ExternalPremiumPerDay:  10000,
		DemurragePerDay:        8000,
		DemurrageThresholdDays: 10,
	}
}

// Breakdown is an itemized cost estimate for one proposal.
type Breakdown struct {
	// Items maps category name to its total amount.
	Items map[string]int `json:"breakdown"`

	// Total is the sum over all items.
	Total int `json:"total"`

	// DurationDays is the duration the estimate covers.
	DurationDays int `json:"duration_days"`

	// CostPerDay is Total/DurationDays, 0 for a zero-day duration.
	CostPerDay float64 `json:"cost_per_day"`
}

// Estimator computes cost breakdowns. Pure; safe for concurrent use.
type Estimator struct {
	rates Rates
}

// NewEstimator creates an estimator with the given rates.
func NewEstimator(rates Rates) *Estimator {
	return &Estimator{rates: rates}
}

// Estimate itemizes the cost of a proposal over durationDays.
// Negative durations are treated as zero; passing one is a caller bug.
func (e *Estimator) Estimate(description string, durationDays int) Breakdown {
	if durationDays < 0 {
		durationDays = 0
	}

	items := map[string]int{
		CategoryDockRental: durationDays * e.rates.DockRentalPerDay,
		CategoryLabor:      durationDays * e.rates.LaborPerDay,
		CategoryEquipment:  durationDays * e.rates.EquipmentPerDay,
	}

	if strings.Contains(strings.ToLower(description), externalMarker) {
		items[CategoryExternalPremium] = durationDays * e.rates.ExternalPremiumPerDay
	}

	if durationDays > e.rates.DemurrageThresholdDays {
		items[CategoryDemurrageRisk] = (durationDays - e.rates.DemurrageThresholdDays) * e.rates.DemurragePerDay
	}

	total := 0
	for _, amount := range items {
		total += amount
	}

	costPerDay := 0.0
	if durationDays > 0 {
		costPerDay = float64(total) / float64(durationDays)
	}

	return Breakdown{
		Items:        items,
		Total:        total,
		DurationDays: durationDays,
		CostPerDay:   costPerDay,
	}
}
