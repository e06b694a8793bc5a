package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fintrack-dev/fintrack/internal/model"
)

// Referential errors are returned from Create when a foreign reference does
// not resolve. They are never silently defaulted.
var (
	ErrNotFound        = errors.New("record not found")
	ErrBankNotFound    = errors.New("bank not found")
	ErrAccountNotFound = errors.New("account not found")
)

// ValidationError aggregates blocking issues that prevented a mutation.
type ValidationError struct {
	Issues []model.Issue
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(msgs, "; "))
}
