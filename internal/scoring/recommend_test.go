package scoring

import (
	"testing"

	"github.com/dennisdiepolder/monti/leadqueue/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestRecommend(t *testing.T) {
	tests := map[string]struct {
		factors  types.Factors
		expected types.RecommendedAction
	}{
		"sla risk wins over everything": {
			factors:  types.Factors{SLARisk: 0.9, BusinessValue: 1.0, Availability: 1.0, WaitTime: 1.0},
			expected: types.ActionImmediateCall,
		},
		"reachable high value": {
			factors:  types.Factors{SLARisk: 0.7, BusinessValue: 1.0, Availability: 1.0, WaitTime: 1.0},
			expected: types.ActionPriorityEngage,
		},
		"high value but unreachable": {
			factors:  types.Factors{SLARisk: 0.3, BusinessValue: 1.0, Availability: 0.7, WaitTime: 0.8},
			expected: types.ActionApologizeEngage,
		},
		"business value exactly 0.8": {
			factors:  types.Factors{SLARisk: 0.3, BusinessValue: 0.8, Availability: 1.0, WaitTime: 0.2},
			expected: types.ActionStandardEngage,
		},
		"long wait": {
			factors:  types.Factors{SLARisk: 0.5, BusinessValue: 0.5, Availability: 0.3, WaitTime: 0.8},
			expected: types.ActionApologizeEngage,
		},
		"default": {
			factors:  types.Factors{SLARisk: 0.3, BusinessValue: 0.5, Availability: 1.0, WaitTime: 0.6},
			expected: types.ActionStandardEngage,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := Recommend(tc.factors)
			assert.Equal(t, tc.expected, rec.Action)
			assert.NotEmpty(t, rec.Reason)
		})
	}
}

func TestRecommendImmediateCallRegardlessOfOtherFactors(t *testing.T) {
	for _, sla := range []float64{0.9, 1.0} {
		for _, other := range []float64{0, 0.3, 0.5, 0.8, 1.0} {
			f := types.Factors{
				SLARisk:         sla,
				WaitTime:        other,
				LeadScore:       other,
				BusinessValue:   other,
				EngagementLevel: other,
				TimeZone:        other,
				Availability:    other,
			}
			assert.Equal(t, types.ActionImmediateCall, Recommend(f).Action)
		}
	}
}
