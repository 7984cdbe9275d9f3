package logger

import "strings"

// RedactEmail masks a student email for safe logging.
// "michael@mergington.edu" → "mi***@mergington.edu"
// Short local parts (≤2 chars) are fully masked: "ab@mergington.edu" → "***@mergington.edu"
// Percent-encoded addresses keep their separator: "michael%40mergington.edu" → "mi***%40mergington.edu"
func RedactEmail(email string) string {
	sep := "@"
	if !strings.Contains(email, sep) && strings.Contains(email, "%40") {
		sep = "%40"
	}
	parts := strings.Split(email, sep)
	if len(parts) != 2 {
		return "***@***"
	}
	name := parts[0]
	if len(name) > 2 {
		return name[:2] + "***" + sep + parts[1]
	}
	return "***" + sep + parts[1]
}
