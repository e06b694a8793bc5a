package model

import "fmt"

// Severity tags a validation issue. Callers decide policy: Blocking issues
// abort the mutation, Warning issues are returned alongside the result.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityBlocking Severity = "blocking"
)

// Issue is a single validation finding.
type Issue struct {
	Severity Severity
	Field    string
	Message  string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s: %s", i.Severity, i.Field, i.Message)
}

// Blocking reports whether any issue in the list is blocking.
func Blocking(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityBlocking {
			return true
		}
	}
	return false
}

func blocking(field, format string, args ...any) Issue {
	return Issue{Severity: SeverityBlocking, Field: field, Message: fmt.Sprintf(format, args...)}
}

func warning(field, format string, args ...any) Issue {
	return Issue{Severity: SeverityWarning, Field: field, Message: fmt.Sprintf(format, args...)}
}
