package snapshot

import (
	"fmt"
	"strings"

	"github.com/fintrack-dev/fintrack/internal/model"
)

// InvalidDocumentError aggregates every structural problem found in a
// document. The gate returns it before touching any store.
type InvalidDocumentError struct {
	Issues []model.Issue
}

func (e *InvalidDocumentError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("invalid snapshot: %s", strings.Join(msgs, "; "))
}

// Validate performs structural checks on a backup document: version match,
// non-empty unique ids, and required fields per collection. It returns every
// issue found, not just the first.
func Validate(doc Document) []model.Issue {
	var issues []model.Issue
	fail := func(field, format string, args ...any) {
		issues = append(issues, model.Issue{
			Severity: model.SeverityBlocking,
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	if doc.Version == "" {
		fail("version", "missing version tag")
	} else if doc.Version != Version {
		fail("version", "version %q needs migration to %q before restore", doc.Version, Version)
	}
	if doc.Timestamp.IsZero() {
		fail("timestamp", "missing timestamp")
	}

	ids := make(map[string]string)
	requireID := func(field, recordID string) bool {
		if recordID == "" {
			fail(field, "record with empty id")
			return false
		}
		if prior, dup := ids[recordID]; dup {
			fail(field, "id %s already used by %s", recordID, prior)
			return false
		}
		ids[recordID] = field
		return true
	}

	for i, b := range doc.Banks {
		field := fmt.Sprintf("banks[%d]", i)
		requireID(field, b.ID)
		if b.Name == "" {
			fail(field, "bank name is required")
		}
	}
	for i, a := range doc.Accounts {
		field := fmt.Sprintf("accounts[%d]", i)
		requireID(field, a.ID)
		if a.BankID == "" {
			fail(field, "account bankId is required")
		}
	}
	for i, t := range doc.transactions() {
		field := fmt.Sprintf("%sTransactions[%d]", t.Kind, i)
		requireID(field, t.ID)
		if t.Kind == model.KindTransfer {
			if t.FromAccountID == "" || t.ToAccountID == "" {
				fail(field, "transfer needs fromAccountId and toAccountId")
			}
		} else if t.AccountID == "" {
			fail(field, "transaction accountId is required")
		}
		if t.Amount.IsNegative() {
			fail(field, "amount must not be negative")
		}
		if t.Date.IsZero() {
			fail(field, "date is required")
		}
	}
	for i, p := range doc.plans() {
		field := fmt.Sprintf("%sEMIs[%d]", p.Kind, i)
		requireID(field, p.ID)
		if p.AccountID == "" {
			fail(field, "plan accountId is required")
		}
		if p.StartDate.IsZero() || p.EndDate.IsZero() {
			fail(field, "plan startDate and endDate are required")
		}
		if p.TotalInstallments < 1 {
			fail(field, "plan needs at least one installment")
		}
	}
	for i, t := range doc.templates() {
		field := fmt.Sprintf("recurring%s[%d]", t.Kind, i)
		requireID(field, t.ID)
		if t.AccountID == "" {
			fail(field, "template accountId is required")
		}
		if t.StartDate.IsZero() {
			fail(field, "template startDate is required")
		}
	}
	return issues
}
