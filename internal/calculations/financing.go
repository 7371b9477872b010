package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/rentability-go/pkg/utils"
)

// FinancingYear - годовая свертка графика кредита
type FinancingYear struct {
	LoanPayment   decimal.Decimal
	Interest      decimal.Decimal
	Principal     decimal.Decimal
	LoanInsurance decimal.Decimal
	RemainingDebt decimal.Decimal
}

// LoanPrincipal возвращает сумму кредита с учетом включенных в него расходов
func LoanPrincipal(p PropertyContext, f FinancingAssumptions) decimal.Decimal {
	principal := f.LoanAmount
	if !principal.IsPositive() {
		return decimal.Zero
	}
	if f.IncludeNotaryInLoan {
		principal = principal.Add(p.NotaryFees)
	}
	if f.IncludeRenovationInLoan {
		principal = principal.Add(p.RenovationCost)
	}
	return principal
}

// ProjectFinancing сворачивает 12 месяцев графика, относящихся к году year.
// Для лет после погашения возвращает нулевую строку.
func ProjectFinancing(schedule LoanSchedule, year int) FinancingYear {
	first := (year-1)*12 + 1
	last := year * 12

	interest := decimal.Zero
	principal := decimal.Zero
	insurance := decimal.Zero
	remaining := decimal.Zero

	for _, m := range schedule.Months {
		if m.Month < first || m.Month > last {
			continue
		}
		interest = interest.Add(m.Interest)
		principal = principal.Add(m.Principal)
		insurance = insurance.Add(m.Insurance)
		remaining = m.Remaining
	}

	interest = utils.Round2(interest)
	principal = utils.Round2(principal)

	return FinancingYear{
		LoanPayment:   interest.Add(principal),
		Interest:      interest,
		Principal:     principal,
		LoanInsurance: utils.Round2(insurance),
		RemainingDebt: utils.Round2(remaining),
	}
}
