package sdf

import "strings"

// Validate is a quick well-formedness check. It never rejects text that Parse
// would accept, but it may accept text whose records later fail to parse.
func Validate(text string) ValidationResult {
	if strings.TrimSpace(text) == "" {
		return ValidationResult{Error: "Empty file"}
	}

	ends := strings.Count(text, EndMarker)
	if ends == 0 {
		return ValidationResult{Error: "No structures found: missing " + EndMarker + " marker"}
	}

	n := strings.Count(text, Terminator)
	if n == 0 {
		// single MOL file without a terminator
		n = 1
	}
	return ValidationResult{Valid: true, StructureCount: n}
}
