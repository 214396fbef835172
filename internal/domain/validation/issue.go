package validation

// IssueType classifies a validation issue.
type IssueType string

const (
	IssueMissingField      IssueType = "missing_field"
	IssueLineTotalMismatch IssueType = "line_total_mismatch"
	// IssueCurrencyInvalid is reserved; no local rule produces it yet but
	// callers already branch on the type.
	IssueCurrencyInvalid IssueType = "currency_invalid"
	// IssueAdvisory marks non-blocking warnings.
	IssueAdvisory IssueType = "advisory"
)

// Issue is a single validation finding. Issues are produced fresh per
// validation call and never persisted.
type Issue struct {
	Type     IssueType `json:"type"`
	Field    string    `json:"field,omitempty"`
	Message  string    `json:"message"`
	Blocking bool      `json:"blocking"`
}

// Result is the aggregated verdict for one record.
type Result struct {
	IsValid bool    `json:"is_valid"`
	Issues  []Issue `json:"issues"`
	// CanMarkAsReviewed mirrors IsValid today; it is kept as a separate
	// field for call-site clarity, not because the definitions diverge.
	CanMarkAsReviewed bool `json:"can_mark_as_reviewed"`
}

// HasBlocking reports whether any issue prevents review.
func (r Result) HasBlocking() bool {
	for _, is := range r.Issues {
		if is.Blocking {
			return true
		}
	}
	return false
}
