package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// Scale - число знаков после запятой для промежуточных значений.
// Все деления выполняются через DivRound с этим масштабом, глобальный
// decimal.DivisionPrecision не используется.
const Scale = 12

var one = decimal.NewFromInt(1)

// Round2 округляет число до 2 знаков после запятой
func Round2(value decimal.Decimal) decimal.Decimal {
	return value.Round(2)
}

// Percent переводит ставку в процентах в долю (5 -> 0.05)
func Percent(rate decimal.Decimal) decimal.Decimal {
	return rate.Shift(-2)
}

// Div делит a на b с фиксированным масштабом
func Div(a, b decimal.Decimal) decimal.Decimal {
	return a.DivRound(b, Scale)
}

// Compound возвращает (1 + rate)^periods, rate задается долей
func Compound(rate decimal.Decimal, periods int) decimal.Decimal {
	base := one.Add(rate)
	result := one
	for i := 0; i < periods; i++ {
		result = result.Mul(base).Round(Scale)
	}
	return result
}

// NonNegative обрезает отрицательные значения до нуля
func NonNegative(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}

// Sum складывает значения
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// IsFinite проверяет, является ли число конечным
func IsFinite(value float64) bool {
	return !math.IsInf(value, 0) && !math.IsNaN(value)
}
