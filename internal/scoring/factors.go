package scoring

import (
	"time"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
)

// DefaultSLAMinutes applies to leads that carry no explicit SLA
const DefaultSLAMinutes = 60

// SLARiskThreshold is the remaining-minutes mark below which a lead counts as at risk
const SLARiskThreshold = 15

// Business value increments
const (
	enterpriseBonus = 0.3
	hotLeadBonus    = 0.2
	bigCompanyBonus = 0.2
	bigDealBonus    = 0.3

	bigCompanySize = 1000
	bigDealSize    = 100000
)

// WaitTimeFactor maps minutes waited to urgency.
// A wait sitting exactly on a threshold stays in the lower band.
func WaitTimeFactor(waitMinutes int) float64 {
	switch {
	case waitMinutes > 60:
		return 1.0
	case waitMinutes > 30:
		return 0.8
	case waitMinutes > 15:
		return 0.6
	case waitMinutes > 5:
		return 0.4
	default:
		return 0.2
	}
}

// LeadScoreFactor normalizes the external 0-100 quality score
func LeadScoreFactor(score float64) float64 {
	return score / 100
}

// RemainingSLAMinutes returns the minutes left before the lead breaches its SLA.
// The result is negative once breached.
func RemainingSLAMinutes(lead *types.Lead) int {
	sla := DefaultSLAMinutes
	if lead.SLAMinutes != nil {
		sla = *lead.SLAMinutes
	}
	return sla - lead.WaitMinutes
}

// SLARiskFactor grows as the SLA deadline approaches
func SLARiskFactor(lead *types.Lead) float64 {
	remaining := RemainingSLAMinutes(lead)
	switch {
	case remaining < 0:
		return 1.0
	case remaining < 5:
		return 0.9
	case remaining < 15:
		return 0.7
	case remaining < 30:
		return 0.5
	default:
		return 0.3
	}
}

// BusinessValueFactor adds up value signals and saturates at 1.0
func BusinessValueFactor(lead *types.Lead) float64 {
	value := 0.5
	if lead.HasTag(types.TagEnterprise) {
		value += enterpriseBonus
	}
	if lead.HasTag(types.TagHotLead) {
		value += hotLeadBonus
	}
	if lead.CompanySize > bigCompanySize {
		value += bigCompanyBonus
	}
	if lead.DealSize != nil && *lead.DealSize > bigDealSize {
		value += bigDealBonus
	}
	return min(value, 1.0)
}

// EngagementFactor weighs recent interactions, capped at 1.0
func EngagementFactor(lead *types.Lead) float64 {
	v := float64(lead.RecentActions)*0.1 +
		float64(lead.EmailsSent)*0.15 +
		float64(lead.CallsMade)*0.2
	return min(v, 1.0)
}

// TimeZoneFactor rewards leads currently inside their business hours
func TimeZoneFactor(now time.Time, loc *time.Location) float64 {
	hour := now.In(loc).Hour()
	switch {
	case hour >= 9 && hour < 17:
		return 1.0
	case hour >= 8 && hour < 18:
		return 0.7
	default:
		return 0.3
	}
}

// AvailabilityFactor estimates how reachable the lead is right now
func AvailabilityFactor(lead *types.Lead) float64 {
	switch {
	case lead.Online:
		return 1.0
	case lead.LastSeenMinutes < 30:
		return 0.7
	case lead.LastSeenMinutes < 120:
		return 0.5
	default:
		return 0.3
	}
}
