package calculations

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func decimalClose(a, b, tolerance decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(tolerance)
}

func assertDecimal(t *testing.T, name string, got, want decimal.Decimal) {
	t.Helper()
	if !got.Equal(want) {
		t.Errorf("%s = %s, want %s", name, got, want)
	}
}

// sampleInput: 200k + 15k нотариус + 10k ремонт,
// кредит 160k под 3% на 240 месяцев, аренда 1000 в месяц, 10 лет, real.
func sampleInput() RentabilityInput {
	return RentabilityInput{
		Property: PropertyContext{
			Type:           "apartment",
			Location:       "Lyon",
			Surface:        d("50"),
			Condition:      "good",
			Strategy:       "long-term",
			Horizon:        10,
			PurchasePrice:  d("200000"),
			NotaryFees:     d("15000"),
			RenovationCost: d("10000"),
		},
		Revenue: RevenueAssumptions{
			MonthlyRent:      d("1000"),
			IndexationMethod: IndexationIRL,
			IndexationRate:   d("1.5"),
			VacancyRate:      d("5"),
		},
		Charges: ChargesAssumptions{
			CondoFees:       d("1200"),
			Insurance:       d("300"),
			PropertyTax:     d("900"),
			MaintenanceRate: d("1"),
			ChargesIncrease: d("2"),
		},
		Financing: FinancingAssumptions{
			LoanAmount:     d("160000"),
			LoanType:       LoanTypeFixed,
			InterestRate:   d("3"),
			DurationMonths: 240,
			InsuranceRate:  d("0.3"),
		},
		Tax: TaxAssumptions{
			Regime:                  RegimeReal,
			MarginalRate:            d("30"),
			SocialContributionsRate: d("17.2"),
			DeficitCarryForward:     true,
		},
		Exit: ExitAssumptions{
			Method:              ValuationAppreciation,
			AnnualAppreciation:  d("1.5"),
			SellingCosts:        d("5"),
			CapitalGainsTaxRate: d("19"),
		},
		DiscountRate: dp("4"),
	}
}
