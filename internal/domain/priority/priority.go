// Package priority orders review worklists so records needing attention
// surface first.
package priority

import (
	"sort"

	"github.com/apdesk/apdesk/internal/domain/entity"
	"github.com/apdesk/apdesk/internal/domain/validation"
)

// rankUnknown keeps records with an unrecognized status at the bottom of
// the list instead of failing.
const rankUnknown = 999

// Rank maps a record's status and validation verdict to a sort priority;
// lower ranks sort earlier. Rejected records come first because they need
// immediate user action, then incomplete drafts, then everything already
// moving through approval.
func Rank(inv *entity.Invoice) int {
	switch inv.Status {
	case entity.StatusRejected:
		return 1
	case entity.StatusOpen:
		if validation.Validate(inv).HasBlocking() {
			return 2
		}
		return 3
	case entity.StatusPending:
		return 4
	case entity.StatusApproved:
		return 5
	case entity.StatusExported:
		return 6
	default:
		return rankUnknown
	}
}

// Sort orders records in place by ascending rank, ties broken by most
// recently updated first. The sort is stable so equal (rank, UpdatedAt)
// pairs keep their relative order.
func Sort(invoices []*entity.Invoice) {
	sort.SliceStable(invoices, func(i, j int) bool {
		ri, rj := Rank(invoices[i]), Rank(invoices[j])
		if ri != rj {
			return ri < rj
		}
		return invoices[i].UpdatedAt.After(invoices[j].UpdatedAt)
	})
}
