package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apdesk/apdesk/internal/domain/entity"
)

func TestValidate_ServerMessageIsAuthoritative(t *testing.T) {
	// The record is complete and the line totals match; the server string
	// must still be the only issue reported.
	inv := completeInvoice()
	inv.MissingFieldsMessage = "Cost center is required"

	res := Validate(inv)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, IssueMissingField, res.Issues[0].Type)
	assert.Equal(t, "Cost center is required", res.Issues[0].Message)
	assert.True(t, res.Issues[0].Blocking)
	assert.False(t, res.IsValid)
	assert.False(t, res.CanMarkAsReviewed)
}

func TestValidate_ServerMessageSkipsLocalChecks(t *testing.T) {
	inv := &entity.Invoice{
		Status:               entity.StatusOpen,
		MissingFieldsMessage: "Vendor missing",
		MultilineCoding:      true,
		Amount:               100,
		Lines:                []entity.Line{{Amount: 10}},
	}

	res := Validate(inv)

	// One issue, not the five missing fields plus the total mismatch the
	// local rules would have found.
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "Vendor missing", res.Issues[0].Message)
}

func TestValidate_MissingFieldsFallback(t *testing.T) {
	inv := completeInvoice()
	inv.VendorCode = ""
	inv.Team = nil

	res := Validate(inv)

	require.Len(t, res.Issues, 2)
	fields := []string{res.Issues[0].Field, res.Issues[1].Field}
	assert.Contains(t, fields, "vendorCode")
	assert.Contains(t, fields, "team")
	for _, is := range res.Issues {
		assert.Equal(t, IssueMissingField, is.Type)
		assert.True(t, is.Blocking)
	}
	assert.False(t, res.CanMarkAsReviewed)
}

func TestValidate_MultilineMatch(t *testing.T) {
	inv := completeInvoice()
	inv.MultilineCoding = true
	inv.Amount = 100
	inv.Lines = []entity.Line{{Amount: 60}, {Amount: 40}}

	res := Validate(inv)

	assert.True(t, res.IsValid)
	assert.True(t, res.CanMarkAsReviewed)
	assert.Empty(t, res.Issues)
}

func TestValidate_MultilineMismatch(t *testing.T) {
	inv := completeInvoice()
	inv.MultilineCoding = true
	inv.Amount = 100
	inv.Lines = []entity.Line{{Amount: 60}, {Amount: 30}}

	res := Validate(inv)

	require.Len(t, res.Issues, 1)
	assert.Equal(t, IssueLineTotalMismatch, res.Issues[0].Type)
	assert.True(t, res.Issues[0].Blocking)
	assert.False(t, res.IsValid)
}

func TestValidate_Idempotent(t *testing.T) {
	inv := completeInvoice()
	inv.VendorName = ""
	inv.MultilineCoding = true
	inv.Lines = []entity.Line{{Amount: 1}}

	first := Validate(inv)
	second := Validate(inv)

	assert.Equal(t, first, second)
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*entity.Invoice)
		expected string
	}{
		{
			name:     "clean record",
			mutate:   func(*entity.Invoice) {},
			expected: "",
		},
		{
			name: "server message wins",
			mutate: func(inv *entity.Invoice) {
				inv.MissingFieldsMessage = "Project is required"
				inv.VendorCode = ""
			},
			expected: "Project is required",
		},
		{
			name: "missing fields comma joined",
			mutate: func(inv *entity.Invoice) {
				inv.VendorCode = ""
				inv.Team = nil
			},
			expected: "Missing: Vendor code, Team",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := completeInvoice()
			tt.mutate(inv)
			assert.Equal(t, tt.expected, Summary(inv))
		})
	}
}

func TestSummary_MixedIssues(t *testing.T) {
	inv := completeInvoice()
	inv.VendorCode = ""
	inv.MultilineCoding = true
	inv.Amount = 100
	inv.Lines = []entity.Line{{Amount: 50}}

	got := Summary(inv)

	assert.Contains(t, got, "Missing: Vendor code")
	assert.Contains(t, got, "; ")
	assert.Contains(t, got, "does not match invoice amount")
}
