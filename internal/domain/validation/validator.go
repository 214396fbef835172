package validation

import (
	"strings"

	"github.com/apdesk/apdesk/internal/domain/entity"
)

// Validate computes the validation verdict for a record. It is a pure
// function: calling it twice on the same record yields the same result.
//
// When the store has populated MissingFieldsMessage via its own formula
// evaluation, that message is trusted exclusively and all local checks are
// skipped. The server and the local fallback evaluate similar but not
// provably identical rule sets; when both are present the server wins.
func Validate(inv *entity.Invoice) Result {
	var issues []Issue

	if msg := strings.TrimSpace(inv.MissingFieldsMessage); msg != "" {
		issues = append(issues, Issue{
			Type:     IssueMissingField,
			Message:  msg,
			Blocking: true,
		})
		return buildResult(issues)
	}

	for _, f := range RequiredFields(inv) {
		if f.Missing() {
			issues = append(issues, Issue{
				Type:     IssueMissingField,
				Field:    f.Key,
				Message:  f.Label + " is required",
				Blocking: true,
			})
		}
	}

	if mismatch := CheckLineTotals(inv); mismatch != nil {
		issues = append(issues, *mismatch)
	}

	issues = append(issues, advisoryIssues(inv)...)

	return buildResult(issues)
}

// advisoryIssues is the hook for non-blocking warnings. Nothing is emitted
// today; the aggregation path for advisory issues is exercised by tests so
// future warnings slot in without touching callers.
func advisoryIssues(_ *entity.Invoice) []Issue {
	return nil
}

func buildResult(issues []Issue) Result {
	blocking := false
	for _, is := range issues {
		if is.Blocking {
			blocking = true
			break
		}
	}
	return Result{
		IsValid:           !blocking,
		Issues:            issues,
		CanMarkAsReviewed: !blocking,
	}
}

// Summary renders a human-readable description of everything blocking a
// record: missing-field labels comma-joined, other blocking messages
// semicolon-joined. The store-computed message wins when present. An empty
// string means the record is clean.
func Summary(inv *entity.Invoice) string {
	if msg := strings.TrimSpace(inv.MissingFieldsMessage); msg != "" {
		return msg
	}

	res := Validate(inv)

	var missing []string
	var other []string
	for _, is := range res.Issues {
		if !is.Blocking {
			continue
		}
		if is.Type == IssueMissingField && is.Field != "" {
			missing = append(missing, labelFor(is.Field))
		} else {
			other = append(other, is.Message)
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "Missing: "+strings.Join(missing, ", "))
	}
	if len(other) > 0 {
		parts = append(parts, strings.Join(other, "; "))
	}
	return strings.Join(parts, "; ")
}

func labelFor(key string) string {
	for _, f := range RequiredFields(&entity.Invoice{}) {
		if f.Key == key {
			return f.Label
		}
	}
	return key
}
