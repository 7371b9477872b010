package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/rentability-go/pkg/utils"
)

// RevenueYear - доходы года, округленные до копеек
type RevenueYear struct {
	GrossRevenue     decimal.Decimal
	VacancyLoss      decimal.Decimal
	AncillaryRevenue decimal.Decimal
	NetRevenue       decimal.Decimal
}

// ProjectRevenue рассчитывает арендный доход за год year (1..horizon).
// Индексация IRL моделируется как фиксированная годовая ставка.
func ProjectRevenue(r RevenueAssumptions, year int) RevenueYear {
	indexation := decimal.Zero
	if r.IndexationMethod != IndexationNone {
		indexation = utils.Percent(r.IndexationRate)
	}

	gross := r.MonthlyRent.Mul(twelve).Mul(utils.Compound(indexation, year-1))
	if r.TenantTurnoverYears > 0 && !r.RelocationIncrease.IsZero() {
		relettings := (year - 1) / r.TenantTurnoverYears
		gross = gross.Mul(utils.Compound(utils.Percent(r.RelocationIncrease), relettings))
	}

	vacancy := decimal.Zero
	if !r.GuaranteedRent && !r.VacancyRate.IsZero() {
		vacancy = gross.Mul(utils.Percent(r.VacancyRate))
		if r.SeasonalityEnabled {
			vacancy = vacancy.Mul(r.SeasonalityMultiplier)
		}
		if vacancy.GreaterThan(gross) {
			vacancy = gross
		}
	}

	ancillary := decimal.Zero
	for _, a := range r.AncillaryRevenues {
		amount := a.MonthlyAmount.Mul(twelve).Mul(utils.Compound(utils.Percent(a.AnnualIncrease), year-1))
		ancillary = ancillary.Add(amount)
	}

	grossRounded := utils.Round2(gross)
	vacancyRounded := utils.Round2(vacancy)
	ancillaryRounded := utils.Round2(ancillary)

	return RevenueYear{
		GrossRevenue:     grossRounded,
		VacancyLoss:      vacancyRounded,
		AncillaryRevenue: ancillaryRounded,
		NetRevenue:       grossRounded.Sub(vacancyRounded).Add(ancillaryRounded),
	}
}
