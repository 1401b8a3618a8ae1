package services

import (
	"github.com/shopspring/decimal"

	"socioBack/internal/models"
)

// computeTotals derives a membership's charge, payment and balance figures
// from its live lines and non-voided payments. The balance is never stored;
// every caller recomputes it from the current rows.
func computeTotals(lines []models.MembershipActivityLine, payments []models.Payment) models.MembershipTotals {
	charged := decimal.Zero
	for _, l := range lines {
		charged = charged.Add(l.PriceAtAttachment)
	}
	paid := decimal.Zero
	for _, p := range payments {
		if p.DeletedAt != nil {
			continue
		}
		paid = paid.Add(p.Amount)
	}
	return models.MembershipTotals{
		TotalCharged: charged,
		TotalPaid:    paid,
		Balance:      charged.Sub(paid),
		IsSettled:    charged.Cmp(paid) <= 0,
	}
}
