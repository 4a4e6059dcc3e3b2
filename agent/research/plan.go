package research

import (
	"strings"

	"github.com/jitmemory/jitmemory/types"
)

// ParsePlanResponse parses the plan response grammar:
//
//	STRATEGY: <free text>
//	SEARCH_QUERY: <free text>
//	USE_KEYWORD: true|false
//	USE_VECTOR: true|false
//	USE_INDEX: true|false
//	TARGET_HEADERS: <comma-separated list, or "none">
//	COMPLETE: true|false
//
// Field prefixes are matched case-insensitively; unknown lines are
// ignored. Missing fields take their zero value; SearchQuery falls back
// to types.DefaultSearchQuery so the Search phase never issues an empty
// query.
func ParsePlanResponse(raw string) types.Plan {
	plan := types.Plan{SearchQuery: types.DefaultSearchQuery}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		switch {
		case strings.HasPrefix(upper, "STRATEGY:"):
			plan.Strategy = strings.TrimSpace(line[len("STRATEGY:"):])
		case strings.HasPrefix(upper, "SEARCH_QUERY:"):
			if q := strings.TrimSpace(line[len("SEARCH_QUERY:"):]); q != "" {
				plan.SearchQuery = q
			}
		case strings.HasPrefix(upper, "USE_KEYWORD:"):
			plan.UseKeyword = parseBool(line[len("USE_KEYWORD:"):])
		case strings.HasPrefix(upper, "USE_VECTOR:"):
			plan.UseVector = parseBool(line[len("USE_VECTOR:"):])
		case strings.HasPrefix(upper, "USE_INDEX:"):
			plan.UseIndex = parseBool(line[len("USE_INDEX:"):])
		case strings.HasPrefix(upper, "TARGET_HEADERS:"):
			plan.TargetHeaders = parseHeaders(line[len("TARGET_HEADERS:"):])
		case strings.HasPrefix(upper, "COMPLETE:"):
			plan.Complete = parseBool(line[len("COMPLETE:"):])
		}
	}

	return plan
}

func parseBool(field string) bool {
	return strings.EqualFold(strings.TrimSpace(field), "true")
}

func parseHeaders(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" || strings.EqualFold(field, "none") {
		return nil
	}

	var headers []string
	for _, h := range strings.Split(field, ",") {
		h = strings.TrimSpace(h)
		if h != "" {
			headers = append(headers, h)
		}
	}
	return headers
}
