package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/rentability-go/pkg/utils"
)

// ProjectCharges рассчитывает постатейные расходы года и их сумму.
// Управление считается от чистого дохода, обслуживание - от валового.
// Capex вне [1; horizon] игнорируется.
func ProjectCharges(c ChargesAssumptions, r RevenueAssumptions, revenue RevenueYear, year, horizon int) (ChargesBreakdown, decimal.Decimal) {
	escalation := utils.Compound(utils.Percent(c.ChargesIncrease), year-1)

	capex := decimal.Zero
	if year >= 1 && year <= horizon {
		for _, e := range c.Capex {
			if e.Year == year {
				capex = capex.Add(e.Amount)
			}
		}
	}

	guarantee := decimal.Zero
	if r.GuaranteedRent {
		guarantee = revenue.GrossRevenue.Mul(utils.Percent(r.GuaranteedRentPremium))
	}

	breakdown := ChargesBreakdown{
		CondoFees:          utils.Round2(c.CondoFees.Mul(escalation)),
		Insurance:          utils.Round2(c.Insurance.Mul(escalation)),
		PropertyTax:        utils.Round2(c.PropertyTax.Mul(escalation)),
		Management:         utils.Round2(revenue.NetRevenue.Mul(utils.Percent(c.ManagementFeeRate))),
		Maintenance:        utils.Round2(revenue.GrossRevenue.Mul(utils.Percent(c.MaintenanceRate))),
		RecoverableCharges: utils.Round2(c.RecoverableCharges.Mul(escalation)),
		GuaranteeInsurance: utils.Round2(guarantee),
		Capex:              utils.Round2(capex),
	}

	return breakdown, breakdown.Total()
}

// Total возвращает сумму всех статей расходов
func (b ChargesBreakdown) Total() decimal.Decimal {
	return utils.Sum(
		b.CondoFees,
		b.Insurance,
		b.PropertyTax,
		b.Management,
		b.Maintenance,
		b.RecoverableCharges,
		b.GuaranteeInsurance,
		b.Capex,
	)
}
