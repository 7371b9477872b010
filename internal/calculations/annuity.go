package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/rentability-go/pkg/utils"
)

var (
	one    = decimal.NewFromInt(1)
	twelve = decimal.NewFromInt(12)
)

// LoanMonth - одна запись месячного графика платежей
type LoanMonth struct {
	Month       int
	Payment     decimal.Decimal
	Interest    decimal.Decimal
	Principal   decimal.Decimal
	Insurance   decimal.Decimal
	Capitalized decimal.Decimal
	Remaining   decimal.Decimal
}

// LoanSchedule - месячный график кредита и платеж после отсрочки
type LoanSchedule struct {
	Months         []LoanMonth
	MonthlyPayment decimal.Decimal
}

// AnnuityPayment рассчитывает аннуитетный платеж P*r/(1-(1+r)^-n).
// monthlyRate задается долей.
func AnnuityPayment(principal, monthlyRate decimal.Decimal, months int) decimal.Decimal {
	if months <= 0 {
		return decimal.Zero
	}
	if monthlyRate.IsZero() {
		return utils.Div(principal, decimal.NewFromInt(int64(months)))
	}
	factor := utils.Compound(monthlyRate, months)
	return utils.Div(principal.Mul(monthlyRate).Mul(factor), factor.Sub(one))
}

// BuildLoanSchedule строит месячный график кредита с учетом отсрочки.
// Промежуточные значения хранятся с масштабом utils.Scale, округление до
// копеек выполняется при годовой агрегации.
func BuildLoanSchedule(principal decimal.Decimal, f FinancingAssumptions) LoanSchedule {
	n := f.DurationMonths
	if !principal.IsPositive() || n <= 0 {
		return LoanSchedule{MonthlyPayment: decimal.Zero}
	}

	r := utils.Percent(f.InterestRate).DivRound(twelve, utils.Scale)
	insuranceRate := utils.Percent(f.InsuranceRate).DivRound(twelve, utils.Scale)

	months := make([]LoanMonth, 0, n)
	balance := principal
	payment := decimal.Zero
	constantPrincipal := decimal.Zero
	amortizing := false

	for m := 1; m <= n; m++ {
		insuranceBase := principal
		if f.InsuranceBase == InsuranceBaseOutstanding {
			insuranceBase = balance
		}
		entry := LoanMonth{
			Month:       m,
			Insurance:   insuranceBase.Mul(insuranceRate).Round(utils.Scale),
			Payment:     decimal.Zero,
			Interest:    decimal.Zero,
			Principal:   decimal.Zero,
			Capitalized: decimal.Zero,
		}
		interest := balance.Mul(r).Round(utils.Scale)

		switch {
		case m <= f.DeferredMonths && f.DeferredType == DeferredTotal:
			// Полная отсрочка: проценты капитализируются
			entry.Capitalized = interest
			balance = balance.Add(interest)
		case m <= f.DeferredMonths:
			entry.Interest = interest
			entry.Payment = interest
		default:
			if !amortizing {
				remaining := n - m + 1
				payment = AnnuityPayment(balance, r, remaining)
				constantPrincipal = utils.Div(balance, decimal.NewFromInt(int64(remaining)))
				amortizing = true
			}

			var principalPart decimal.Decimal
			switch {
			case m == n:
				principalPart = balance
			case f.LoanType == LoanTypeDifferential:
				principalPart = constantPrincipal
			default:
				principalPart = payment.Sub(interest)
			}
			if principalPart.GreaterThan(balance) {
				principalPart = balance
			}

			entry.Interest = interest
			entry.Principal = principalPart
			entry.Payment = principalPart.Add(interest)
			balance = balance.Sub(principalPart)
		}

		entry.Remaining = balance
		months = append(months, entry)
	}

	monthly := payment
	if f.LoanType == LoanTypeDifferential && len(months) > f.DeferredMonths {
		monthly = months[f.DeferredMonths].Payment
	}

	return LoanSchedule{Months: months, MonthlyPayment: monthly}
}
