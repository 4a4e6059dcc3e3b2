package research

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jitmemory/jitmemory/types"
)

func TestParsePlanResponse_WellFormed(t *testing.T) {
	raw := `STRATEGY: broaden the search
SEARCH_QUERY: kubernetes networking
USE_KEYWORD: true
USE_VECTOR: false
USE_INDEX: true
TARGET_HEADERS: topic:k8s, topic:networking
COMPLETE: false`

	plan := ParsePlanResponse(raw)
	assert.Equal(t, "broaden the search", plan.Strategy)
	assert.Equal(t, "kubernetes networking", plan.SearchQuery)
	assert.True(t, plan.UseKeyword)
	assert.False(t, plan.UseVector)
	assert.True(t, plan.UseIndex)
	assert.Equal(t, []string{"topic:k8s", "topic:networking"}, plan.TargetHeaders)
	assert.False(t, plan.Complete)
}

func TestParsePlanResponse_DefaultsOnGarbage(t *testing.T) {
	plan := ParsePlanResponse("not a structured response")
	assert.Equal(t, types.DefaultSearchQuery, plan.SearchQuery)
	assert.False(t, plan.UseKeyword)
	assert.False(t, plan.UseVector)
	assert.False(t, plan.UseIndex)
	assert.Nil(t, plan.TargetHeaders)
	assert.False(t, plan.Complete)
}

func TestParsePlanResponse_NoneHeaders(t *testing.T) {
	plan := ParsePlanResponse("TARGET_HEADERS: none")
	assert.Nil(t, plan.TargetHeaders)
}

func TestParsePlanResponse_CaseInsensitivePrefixes(t *testing.T) {
	plan := ParsePlanResponse("complete: TRUE\nuse_vector: True")
	assert.True(t, plan.Complete)
	assert.True(t, plan.UseVector)
}
