package validation

import (
	"fmt"
	"math"

	"github.com/apdesk/apdesk/internal/domain/entity"
)

// lineTotalTolerance absorbs floating-point drift from the currency
// representation. It is not a business rounding rule; do not widen it.
const lineTotalTolerance = 0.001

// CheckLineTotals verifies that the line amounts of a multi-line record sum
// to the header amount. It returns nil when the record is not in multi-line
// coding mode or when the totals match within tolerance.
func CheckLineTotals(inv *entity.Invoice) *Issue {
	if !inv.MultilineCoding {
		return nil
	}

	total := inv.LineTotal()
	if math.Abs(total-inv.Amount) <= lineTotalTolerance {
		return nil
	}

	return &Issue{
		Type: IssueLineTotalMismatch,
		Message: fmt.Sprintf("line items total %.2f does not match invoice amount %.2f",
			total, inv.Amount),
		Blocking: true,
	}
}
