package calculations

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cloud-ru/rentability-go/pkg/utils"
)

var hundred = decimal.NewFromInt(100)

// TotalInvestment - цена, нотариус, ремонт и мебель
func TotalInvestment(p PropertyContext) decimal.Decimal {
	total := p.PurchasePrice.Add(p.NotaryFees).Add(p.RenovationCost)
	if p.FurnitureCost != nil {
		total = total.Add(*p.FurnitureCost)
	}
	return total
}

// percentOf возвращает a/b в процентах с 4 знаками
func percentOf(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(hundred).DivRound(b, 4)
}

// PaybackYears возвращает год окупаемости с линейной интерполяцией внутри года.
// Накопление начинается с вложения собственных средств (flows[0]), а не с нуля.
func PaybackYears(flows []decimal.Decimal) (decimal.Decimal, bool) {
	if len(flows) == 0 {
		return decimal.Zero, false
	}
	cumulative := flows[0]
	if !cumulative.IsNegative() {
		return decimal.Zero, true
	}
	for i := 1; i < len(flows); i++ {
		previous := cumulative
		cumulative = cumulative.Add(flows[i])
		if !cumulative.IsNegative() {
			fraction := previous.Neg().DivRound(flows[i], utils.Scale)
			return utils.Round2(decimal.NewFromInt(int64(i - 1)).Add(fraction)), true
		}
	}
	return decimal.Zero, false
}

// ComputeKpis рассчитывает инвестиционные показатели по годовой проекции и
// вектору потоков. Неопределенные показатели остаются nil и сопровождаются
// предупреждением.
func ComputeKpis(p PropertyContext, rows []YearlyResult, flows []decimal.Decimal, principal, monthlyPayment, discountRate decimal.Decimal) (Kpis, []Warning, IrrResult) {
	var warnings []Warning

	totalInvestment := TotalInvestment(p)
	ownFunds := totalInvestment.Sub(principal)
	first := rows[0]

	kpis := Kpis{
		TotalInvestment: totalInvestment,
		LoanPrincipal:   principal,
		OwnFunds:        ownFunds,
		MonthlyPayment:  utils.Round2(monthlyPayment),
		GrossYield:      percentOf(first.GrossRevenue, totalInvestment),
		NetYield:        percentOf(first.NetRevenue, totalInvestment),
		Npv:             utils.Round2(NetPresentValue(utils.Percent(discountRate), flows)),
		TotalProfit:     utils.Sum(flows...),
	}

	if ownFunds.IsPositive() {
		netNet := percentOf(first.CashflowAfterTax, ownFunds)
		kpis.NetNetYield = &netNet
		totalReturn := percentOf(kpis.TotalProfit, ownFunds)
		kpis.TotalReturn = &totalReturn
	} else {
		warnings = append(warnings, Warning{
			Code:    WarnOwnFundsNonPositive,
			Message: fmt.Sprintf("собственные средства не положительны (%s): доходность на вложенные средства не определена", ownFunds),
		})
	}

	debtService := first.LoanPayment.Add(first.LoanInsurance)
	if debtService.IsPositive() {
		dscr := first.Noi.DivRound(debtService, 2)
		kpis.Dscr = &dscr
	} else {
		warnings = append(warnings, Warning{
			Code:    WarnDscrUndefined,
			Message: "платежи по кредиту в первый год равны нулю: DSCR не определен",
			Year:    1,
		})
	}

	if payback, ok := PaybackYears(flows); ok {
		kpis.PaybackYears = &payback
	} else {
		warnings = append(warnings, Warning{
			Code:    WarnPaybackNotReached,
			Message: "вложенные средства не окупаются в пределах горизонта",
		})
	}

	irr := SolveIRR(flows)
	switch irr.Status {
	case IrrConverged:
		rate := irr.Rate.Mul(hundred).Round(4)
		kpis.Irr = &rate
	case IrrNoSignChange:
		warnings = append(warnings, Warning{
			Code:    WarnIrrNoSignChange,
			Message: "денежные потоки не меняют знак: IRR не определена",
		})
	case IrrNotBracketed:
		warnings = append(warnings, Warning{
			Code:    WarnIrrNotBracketed,
			Message: "IRR вне интервала [-99%; 1000%]",
		})
	default:
		warnings = append(warnings, Warning{
			Code:    WarnIrrNoConvergence,
			Message: fmt.Sprintf("решатель IRR не сошелся за %d итераций", IrrMaxIterations),
		})
	}

	return kpis, warnings, irr
}
