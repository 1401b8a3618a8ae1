package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"socioBack/internal/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func lines(prices ...string) []models.MembershipActivityLine {
	out := make([]models.MembershipActivityLine, 0, len(prices))
	for _, p := range prices {
		out = append(out, models.MembershipActivityLine{PriceAtAttachment: dec(p)})
	}
	return out
}

func pays(amounts ...string) []models.Payment {
	out := make([]models.Payment, 0, len(amounts))
	for _, a := range amounts {
		out = append(out, models.Payment{Amount: dec(a)})
	}
	return out
}

func TestComputeTotals(t *testing.T) {
	cases := []struct {
		name        string
		lines       []models.MembershipActivityLine
		payments    []models.Payment
		wantCharged string
		wantPaid    string
		wantBalance string
		wantSettled bool
	}{
		{"no activity no payment", nil, nil, "0", "0", "0", true},
		{"charged unpaid", lines("150.00", "200.00"), nil, "350", "0", "350", false},
		{"partial", lines("150.00", "200.00"), pays("100.00"), "350", "100", "250", false},
		{"exact payoff", lines("150.00", "200.00"), pays("100.00", "250.00"), "350", "350", "0", true},
		{"one cent short", lines("100.00"), pays("99.99"), "100", "99.99", "0.01", false},
		{"free membership", lines("0.00"), nil, "0", "0", "0", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := computeTotals(tc.lines, tc.payments)
			if !got.TotalCharged.Equal(dec(tc.wantCharged)) {
				t.Fatalf("charged: expected %s got %s", tc.wantCharged, got.TotalCharged)
			}
			if !got.TotalPaid.Equal(dec(tc.wantPaid)) {
				t.Fatalf("paid: expected %s got %s", tc.wantPaid, got.TotalPaid)
			}
			if !got.Balance.Equal(dec(tc.wantBalance)) {
				t.Fatalf("balance: expected %s got %s", tc.wantBalance, got.Balance)
			}
			if got.IsSettled != tc.wantSettled {
				t.Fatalf("settled: expected %v got %v", tc.wantSettled, got.IsSettled)
			}
		})
	}
}

func TestComputeTotalsSkipsVoidedPayments(t *testing.T) {
	now := time.Now()
	payments := []models.Payment{
		{Amount: dec("100.00")},
		{Amount: dec("250.00"), DeletedAt: &now},
	}
	got := computeTotals(lines("350.00"), payments)
	if !got.TotalPaid.Equal(dec("100")) {
		t.Fatalf("expected voided payment excluded, got paid %s", got.TotalPaid)
	}
	if got.IsSettled {
		t.Fatal("membership should be unsettled after voiding a payment")
	}
}
