package validation

import (
	"strings"

	"github.com/apdesk/apdesk/internal/domain/entity"
)

// RequiredField is one currently-required header field with its display
// value. An empty Value means the field is missing.
type RequiredField struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Missing reports whether the field has no usable value.
func (f RequiredField) Missing() bool {
	return f.Value == ""
}

// RequiredFields returns the ordered set of fields that must be filled in
// before a record can be reviewed. The set depends only on header identity
// fields and the team assignment, never on line data or coding mode.
//
// The GL account was deliberately removed from this set for both coding
// modes; header-level GL coding is optional since per-line coding took over.
func RequiredFields(inv *entity.Invoice) []RequiredField {
	var invoiceDate string
	if inv.InvoiceDate != nil {
		invoiceDate = inv.InvoiceDate.Format("2006-01-02")
	}

	// A team link with zero entries reads the same as no team at all.
	team := strings.Join(inv.Team, ", ")

	return []RequiredField{
		{Key: "vendorName", Label: "Vendor name", Value: inv.VendorName},
		{Key: "vendorCode", Label: "Vendor code", Value: inv.VendorCode},
		{Key: "invoiceNumber", Label: "Invoice number", Value: inv.InvoiceNumber},
		{Key: "invoiceDate", Label: "Invoice date", Value: invoiceDate},
		{Key: "team", Label: "Team", Value: team},
	}
}
