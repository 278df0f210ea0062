package scoring

import "github.com/dennisdiepolder/monti/leadqueue/internal/types"

// Recommend picks the next action for a lead from its factor breakdown.
// Rules are checked in order and the first match wins.
func Recommend(f types.Factors) types.Recommendation {
	switch {
	case f.SLARisk > 0.8:
		return types.Recommendation{
			Action: types.ActionImmediateCall,
			Reason: "SLA at risk, call now",
		}
	case f.BusinessValue > 0.8 && f.Availability > 0.7:
		return types.Recommendation{
			Action: types.ActionPriorityEngage,
			Reason: "high-value lead is reachable now",
		}
	case f.WaitTime > 0.7:
		return types.Recommendation{
			Action: types.ActionApologizeEngage,
			Reason: "long wait, open with an apology",
		}
	default:
		return types.Recommendation{
			Action: types.ActionStandardEngage,
			Reason: "follow the standard engagement protocol",
		}
	}
}
