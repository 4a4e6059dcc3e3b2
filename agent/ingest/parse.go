package ingest

import (
	"strings"

	"github.com/jitmemory/jitmemory/types"
)

// ParseAbstractResponse parses the abstract response grammar:
//
//	SUMMARY: <one line of text>
//	HEADERS:
//	- <header 1>
//	- <header 2>
//
// Lines are trimmed; header bullets require a leading "-". A response
// that violates the grammar entirely still yields a types.Abstraction
// with an empty Summary and nil Headers rather than an error — the write
// proceeds regardless, per the ingest path's parse-failure tolerance.
func ParseAbstractResponse(raw string) types.Abstraction {
	var abstraction types.Abstraction

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(strings.ToUpper(line), "SUMMARY:"):
			abstraction.Summary = strings.TrimSpace(line[len("SUMMARY:"):])
		case strings.HasPrefix(line, "-"):
			header := strings.TrimSpace(strings.TrimPrefix(line, "-"))
			if header != "" {
				abstraction.Headers = append(abstraction.Headers, header)
			}
		}
	}

	return abstraction
}
