package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/rentability-go/pkg/utils"
)

// AggregateYear собирает годовую строку из результатов отдельных калькуляторов
func AggregateYear(year int, revenue RevenueYear, charges ChargesBreakdown, totalCharges decimal.Decimal,
	financing FinancingYear, tax TaxYear, propertyValue decimal.Decimal) YearlyResult {

	// Страховка кредита не входит в аннуитет и вычитается отдельно
	beforeTax := revenue.NetRevenue.
		Sub(totalCharges).
		Sub(financing.LoanPayment).
		Sub(financing.LoanInsurance)

	return YearlyResult{
		Year:                year,
		GrossRevenue:        revenue.GrossRevenue,
		VacancyLoss:         revenue.VacancyLoss,
		AncillaryRevenue:    revenue.AncillaryRevenue,
		NetRevenue:          revenue.NetRevenue,
		Charges:             charges,
		TotalCharges:        totalCharges,
		LoanPayment:         financing.LoanPayment,
		Interest:            financing.Interest,
		Principal:           financing.Principal,
		LoanInsurance:       financing.LoanInsurance,
		RemainingDebt:       financing.RemainingDebt,
		Noi:                 revenue.NetRevenue.Sub(totalCharges),
		TaxableIncome:       tax.TaxableIncome,
		Depreciation:        tax.Depreciation,
		DepreciationCarried: tax.DepreciationCarried,
		DeficitCarried:      tax.DeficitCarried,
		IncomeTax:           tax.IncomeTax,
		Crl:                 tax.Crl,
		Tax:                 tax.Tax,
		CashflowBeforeTax:   beforeTax,
		CashflowAfterTax:    beforeTax.Sub(tax.Tax),
		PropertyValue:       propertyValue,
	}
}

// ProjectPropertyValue оценивает объект на конец года year.
// Второе значение false, если оценка по cap rate невозможна (NOI ≤ 0).
func ProjectPropertyValue(p PropertyContext, e ExitAssumptions, noi decimal.Decimal, year int) (decimal.Decimal, bool) {
	growth := utils.Compound(utils.Percent(e.AnnualAppreciation), year)

	var value decimal.Decimal
	switch e.Method {
	case ValuationCapRate:
		if !noi.IsPositive() {
			return decimal.Zero, false
		}
		value = utils.Div(noi, utils.Percent(e.TargetCapRate))
		if e.LayerAppreciation {
			value = value.Mul(growth)
		}
	case ValuationPricePerSqm:
		value = p.Surface.Mul(e.TargetPricePerSqm)
		if e.LayerAppreciation {
			value = value.Mul(growth)
		}
	default:
		value = p.PurchasePrice.Mul(growth)
	}

	return utils.Round2(value), true
}

// ComputeExit рассчитывает чистую выручку от продажи в последний год.
// База прироста капитала - цена покупки, нотариальные расходы и ремонт.
func ComputeExit(p PropertyContext, e ExitAssumptions, f FinancingAssumptions, salePrice, remainingDebt decimal.Decimal) ExitResult {
	sellingCosts := utils.Round2(salePrice.Mul(utils.Percent(e.SellingCosts)))
	costBasis := p.PurchasePrice.Add(p.NotaryFees).Add(p.RenovationCost)
	gain := salePrice.Sub(sellingCosts).Sub(costBasis)
	capitalGainsTax := utils.Round2(utils.NonNegative(gain).Mul(utils.Percent(e.CapitalGainsTaxRate)))
	penalty := utils.Round2(remainingDebt.Mul(utils.Percent(f.EarlyRepaymentPenalty)))

	return ExitResult{
		SalePrice:             salePrice,
		SellingCosts:          sellingCosts,
		CapitalGain:           gain,
		CapitalGainsTax:       capitalGainsTax,
		RemainingDebt:         remainingDebt,
		EarlyRepaymentPenalty: penalty,
		NetSaleProceeds:       salePrice.Sub(sellingCosts).Sub(remainingDebt).Sub(penalty).Sub(capitalGainsTax),
	}
}

// BuildCashflows формирует вектор потоков: год 0 - вложение собственных
// средств, последний год включает чистую выручку от продажи.
func BuildCashflows(ownFunds decimal.Decimal, rows []YearlyResult, exit ExitResult) []decimal.Decimal {
	flows := make([]decimal.Decimal, 0, len(rows)+1)
	flows = append(flows, ownFunds.Neg())
	for i, row := range rows {
		flow := row.CashflowAfterTax
		if i == len(rows)-1 {
			flow = flow.Add(exit.NetSaleProceeds)
		}
		flows = append(flows, flow)
	}
	return flows
}
