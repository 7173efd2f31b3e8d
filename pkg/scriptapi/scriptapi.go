// Package scriptapi detects which script-binding APIs a slot's user
// script references, by a comment-stripping substring scan — preserving
// the original firmware's behavior rather than parsing an AST. A future
// implementation may upgrade to a tokenizer without changing callers.
package scriptapi

import "strings"

const (
	gpsGetToken = "gps.Get"
	msgSetToken = "msg.Set"
)

// Usage reports which binding APIs a script references.
type Usage struct {
	UsesGps bool
	UsesMsg bool
}

// Scan strips "//" line comments from source and scans the remainder for
// the gps.Get and msg.Set binding tokens.
func Scan(source string) Usage {
	stripped := stripLineComments(source)
	return Usage{
		UsesGps: strings.Contains(stripped, gpsGetToken),
		UsesMsg: strings.Contains(stripped, msgSetToken),
	}
}

// stripLineComments removes everything from the first "//" on
// each line to the end of that line. It does not attempt to understand
// string literals containing "//"; this matches the original firmware's
// simple scan.
func stripLineComments(source string) string {
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		if idx := strings.Index(line, "//"); idx >= 0 {
			lines[i] = line[:idx]
		}
	}
	return strings.Join(lines, "\n")
}
