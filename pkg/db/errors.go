package db

import "strings"

// IsUniqueViolation reports whether err carries a Postgres unique-constraint
// failure. A non-empty constraintName pins the check to one index so callers
// can map a specific conflict, such as a duplicate product code, to a domain
// error.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value")
}
