package calculations

import (
	"github.com/shopspring/decimal"

	"github.com/cloud-ru/rentability-go/pkg/utils"
)

// Статусы решателя IRR
const (
	IrrConverged     = "converged"
	IrrNoSignChange  = "no_sign_change"
	IrrNotBracketed  = "not_bracketed"
	IrrNotConverging = "no_convergence"
)

// IrrMaxIterations ограничивает число итераций решателя.
// Входит в версию расчета: изменение меняет результат.
const IrrMaxIterations = 200

const discountScale = 18

var (
	irrLowerBound   = decimal.RequireFromString("-0.99")
	irrUpperBound   = decimal.NewFromInt(10)
	irrInitialGuess = decimal.RequireFromString("0.1")
	irrStepEpsilon  = decimal.RequireFromString("0.000000001")
	npvEpsilon      = decimal.RequireFromString("0.000001")
	two             = decimal.NewFromInt(2)
)

// IrrResult - результат решателя. Rate задается долей.
type IrrResult struct {
	Rate       decimal.Decimal
	Iterations int
	Status     string
}

// NetPresentValue дисконтирует поток flows по ставке rate (доля),
// flows[0] относится к году 0.
func NetPresentValue(rate decimal.Decimal, flows []decimal.Decimal) decimal.Decimal {
	npv, _ := npvWithDerivative(rate, flows)
	return npv
}

func npvWithDerivative(rate decimal.Decimal, flows []decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	base := one.Add(rate)
	factor := one
	npv := decimal.Zero
	derivative := decimal.Zero

	for i, cf := range flows {
		if i > 0 {
			factor = factor.DivRound(base, discountScale)
		}
		discounted := cf.Mul(factor)
		npv = npv.Add(discounted)
		if i > 0 {
			derivative = derivative.Sub(discounted.Mul(decimal.NewFromInt(int64(i))))
		}
	}

	return npv, derivative.DivRound(base, discountScale)
}

func hasSignChange(flows []decimal.Decimal) bool {
	positive, negative := false, false
	for _, cf := range flows {
		if cf.IsPositive() {
			positive = true
		}
		if cf.IsNegative() {
			negative = true
		}
	}
	return positive && negative
}

// SolveIRR находит ставку, обнуляющую NPV, методом Ньютона с откатом
// на бисекцию в интервале [-99%; +1000%]. Число итераций ограничено.
func SolveIRR(flows []decimal.Decimal) IrrResult {
	if !hasSignChange(flows) {
		return IrrResult{Status: IrrNoSignChange}
	}

	lo, hi := irrLowerBound, irrUpperBound
	fLo := NetPresentValue(lo, flows)
	fHi := NetPresentValue(hi, flows)
	if fLo.IsZero() {
		return IrrResult{Rate: lo, Status: IrrConverged}
	}
	if fHi.IsZero() {
		return IrrResult{Rate: hi, Status: IrrConverged}
	}
	if fLo.Sign() == fHi.Sign() {
		return IrrResult{Status: IrrNotBracketed}
	}

	x := irrInitialGuess
	for iter := 1; iter <= IrrMaxIterations; iter++ {
		fx, dfx := npvWithDerivative(x, flows)
		if fx.Abs().LessThan(npvEpsilon) {
			return IrrResult{Rate: x, Iterations: iter, Status: IrrConverged}
		}

		// Сужаем интервал, сохраняя смену знака
		if fx.Sign() == fLo.Sign() {
			lo, fLo = x, fx
		} else {
			hi = x
		}

		next := lo.Add(hi).DivRound(two, utils.Scale)
		if !dfx.IsZero() {
			newton := x.Sub(fx.DivRound(dfx, discountScale)).Round(utils.Scale)
			if newton.GreaterThan(lo) && newton.LessThan(hi) {
				next = newton
			}
		}

		if next.Sub(x).Abs().LessThan(irrStepEpsilon) || hi.Sub(lo).LessThan(irrStepEpsilon) {
			return IrrResult{Rate: next, Iterations: iter, Status: IrrConverged}
		}
		x = next
	}

	return IrrResult{Iterations: IrrMaxIterations, Status: IrrNotConverging}
}
