package entity

import "time"

// Status represents the review lifecycle state of an invoice record.
// Records are created and mutated by the tabular store; this service only
// reads them and issues update requests.
type Status string

const (
	StatusOpen     Status = "open"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
	StatusExported Status = "exported"
)

var validStatuses = map[Status]bool{
	StatusOpen:     true,
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
	StatusExported: true,
}

// IsValid returns true if the status is a recognized lifecycle state.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Line is a single coding line of an invoice. In multi-line coding mode the
// accounting assignment lives here instead of on the header.
type Line struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	GLAccount   string  `json:"gl_account"`
	CostCenter  string  `json:"cost_center"`
	Project     string  `json:"project"`
}

// Invoice is an accounts-payable document under review. The record of truth
// lives in the tabular store; the ID is the store-assigned record id.
type Invoice struct {
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoice_number"`
	VendorName    string     `json:"vendor_name"`
	VendorCode    string     `json:"vendor_code"`
	InvoiceDate   *time.Time `json:"invoice_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Amount        float64    `json:"amount"`
	Currency      string     `json:"currency"`
	Status        Status     `json:"status"`

	// Coding fields. Team is a linked-record field and therefore
	// sequence-valued; an empty sequence reads the same as absent.
	Team       []string `json:"team"`
	Project    string   `json:"project"`
	Task       string   `json:"task"`
	CostCenter string   `json:"cost_center"`
	GLAccount  string   `json:"gl_account"`

	// MultilineCoding switches the accounting assignment from the header
	// to the individual lines.
	MultilineCoding bool   `json:"multiline_coding"`
	Lines           []Line `json:"lines,omitempty"`

	// MissingFieldsMessage is computed by the store's own formula engine.
	// When non-empty it is authoritative over any local validation.
	MissingFieldsMessage string `json:"missing_fields_message,omitempty"`

	// FileHash is the sha256 of the source document, used for duplicate
	// detection.
	FileHash string `json:"file_hash,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// LineTotal sums the line amounts. Missing lines contribute nothing.
func (i *Invoice) LineTotal() float64 {
	var total float64
	for _, l := range i.Lines {
		total += l.Amount
	}
	return total
}
