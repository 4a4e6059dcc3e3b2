package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/jitmemory/jitmemory/types"
)

func TestProperty_ParsePlanResponse_NeverPanicsAndAlwaysHasSearchQuery(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.StringMatching(`(?i)[a-zA-Z0-9 \n:._,-]{0,300}`).Draw(rt, "raw")

		var plan types.Plan
		assert.NotPanics(t, func() {
			plan = ParsePlanResponse(raw)
		})
		assert.NotEmpty(t, plan.SearchQuery, "SearchQuery must never be empty, even on garbage input")
	})
}
