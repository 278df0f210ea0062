package alerts

import (
	"fmt"

	"github.com/dennisdiepolder/monti/leadqueue/internal/scoring"
	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
)

// LongWaitMinutes is the wait after which a lead is flagged regardless of SLA
const LongWaitMinutes = 60

// CheckLeadAlerts evaluates alert rules for a slice of scored leads,
// mutating each lead's Alerts field in place.
func CheckLeadAlerts(leads []types.ScoredLead) {
	for i := range leads {
		leads[i].Alerts = nil
		lead := &leads[i].Lead

		remaining := scoring.RemainingSLAMinutes(lead)
		switch {
		case remaining < 0:
			leads[i].Alerts = append(leads[i].Alerts, types.LeadAlert{
				Rule:     "sla_breached",
				Severity: types.SeverityCritical,
				Message:  fmt.Sprintf("SLA breached by %s", formatMinutes(-remaining)),
			})
		case remaining < scoring.SLARiskThreshold:
			leads[i].Alerts = append(leads[i].Alerts, types.LeadAlert{
				Rule:     "sla_at_risk",
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("%s until SLA breach", formatMinutes(remaining)),
			})
		}

		if lead.WaitMinutes > LongWaitMinutes {
			leads[i].Alerts = append(leads[i].Alerts, types.LeadAlert{
				Rule:     "long_wait",
				Severity: types.SeverityWarning,
				Message:  fmt.Sprintf("Waiting for %s", formatMinutes(lead.WaitMinutes)),
			})
		}
	}
}

func formatMinutes(mins int) string {
	if mins >= 60 {
		return fmt.Sprintf("%dh%dm", mins/60, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}
