package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/rentability-go/pkg/utils"
)

var (
	// Абаттман микро-режима
	microAbatement = decimal.RequireFromString("0.5")
	// Доля земли в цене, если landValue не задан
	defaultLandShare = decimal.RequireFromString("0.15")
	// Ставка CRL, если crlRate не задан
	defaultCrlRate = decimal.RequireFromString("2.5")
)

// TaxBase - уже округленные годовые величины, от которых считается налог
type TaxBase struct {
	GrossRevenue  decimal.Decimal
	NetRevenue    decimal.Decimal
	TotalCharges  decimal.Decimal
	Interest      decimal.Decimal
	LoanInsurance decimal.Decimal
}

// TaxState переносится из года в год: дефицит и неиспользованная амортизация
type TaxState struct {
	Deficit          decimal.Decimal
	DepreciationPool decimal.Decimal
}

// TaxYear - налоговая часть годовой строки
type TaxYear struct {
	TaxableIncome       decimal.Decimal
	Depreciation        decimal.Decimal
	DepreciationCarried decimal.Decimal
	DeficitCarried      decimal.Decimal
	IncomeTax           decimal.Decimal
	Crl                 decimal.Decimal
	Tax                 decimal.Decimal
}

// DepreciationAllowance возвращает годовую линейную амортизацию здания и мебели
func DepreciationAllowance(p PropertyContext, t TaxAssumptions, year int) decimal.Decimal {
	allowance := decimal.Zero

	if t.DepreciationYears > 0 && year <= t.DepreciationYears {
		land := p.PurchasePrice.Mul(defaultLandShare)
		if p.LandValue != nil {
			land = *p.LandValue
		}
		building := utils.NonNegative(p.PurchasePrice.Sub(land).Add(p.NotaryFees).Add(p.RenovationCost))
		allowance = allowance.Add(utils.Div(building, decimal.NewFromInt(int64(t.DepreciationYears))))
	}

	if p.FurnitureCost != nil && t.FurnitureDepreciationYears > 0 && year <= t.FurnitureDepreciationYears {
		allowance = allowance.Add(utils.Div(*p.FurnitureCost, decimal.NewFromInt(int64(t.FurnitureDepreciationYears))))
	}

	return utils.Round2(allowance)
}

// ComputeTax рассчитывает налог года по выбранному режиму.
// Налог никогда не бывает отрицательным; дефицит и амортизация переносятся
// через state.
func ComputeTax(t TaxAssumptions, p PropertyContext, base TaxBase, year int, state TaxState) (TaxYear, TaxState) {
	crl := decimal.Zero
	if t.CrlApplicable {
		rate := t.CrlRate
		if rate.IsZero() {
			rate = defaultCrlRate
		}
		crl = utils.Round2(base.GrossRevenue.Mul(utils.Percent(rate)))
	}

	taxable := decimal.Zero
	consumed := decimal.Zero

	switch t.Regime {
	case RegimeMicro:
		taxable = utils.Round2(utils.NonNegative(base.NetRevenue).Mul(microAbatement))
	case RegimeReal, RegimeLMNP:
		result := base.NetRevenue.
			Sub(base.TotalCharges).
			Sub(base.Interest).
			Sub(base.LoanInsurance).
			Sub(crl)

		if t.Regime == RegimeLMNP {
			state.DepreciationPool = state.DepreciationPool.Add(DepreciationAllowance(p, t, year))
		}

		if result.IsNegative() {
			if t.DeficitCarryForward {
				state.Deficit = state.Deficit.Add(result.Neg())
			}
			result = decimal.Zero
		} else {
			offset := decimal.Min(state.Deficit, result)
			state.Deficit = state.Deficit.Sub(offset)
			result = result.Sub(offset)
		}

		// Амортизация не может сделать базу отрицательной, остаток переносится
		if t.Regime == RegimeLMNP && result.IsPositive() {
			consumed = decimal.Min(state.DepreciationPool, result)
			state.DepreciationPool = state.DepreciationPool.Sub(consumed)
			result = result.Sub(consumed)
		}

		taxable = result
	}

	rate := utils.Percent(t.MarginalRate.Add(t.SocialContributionsRate))
	incomeTax := utils.Round2(taxable.Mul(rate))

	return TaxYear{
		TaxableIncome:       taxable,
		Depreciation:        consumed,
		DepreciationCarried: state.DepreciationPool,
		DeficitCarried:      state.Deficit,
		IncomeTax:           incomeTax,
		Crl:                 crl,
		Tax:                 incomeTax.Add(crl),
	}, state
}
