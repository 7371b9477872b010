package validators

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Limits содержит верхние границы входных параметров
type Limits struct {
	MaxPurchasePrice decimal.Decimal
	MaxHorizonYears  int
	MaxLoanMonths    int
	MaxRate          decimal.Decimal
}

// DefaultLimits возвращает границы по умолчанию
func DefaultLimits() Limits {
	return Limits{
		MaxPurchasePrice: decimal.NewFromInt(1_000_000_000),
		MaxHorizonYears:  50,
		MaxLoanMonths:    600,
		MaxRate:          decimal.NewFromInt(100),
	}
}

// FieldError описывает ошибку в одном поле входных данных
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationError собирает все ошибки валидации сценария.
// Возвращается до начала расчета и не смешивается с предупреждениями.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Error())
	}
	return "некорректные входные данные: " + strings.Join(parts, "; ")
}

// Collector накапливает ошибки валидации
type Collector struct {
	fields []FieldError
}

// Add добавляет ошибку, nil игнорируется
func (c *Collector) Add(err error) {
	if err == nil {
		return
	}
	var fe FieldError
	if errors.As(err, &fe) {
		c.fields = append(c.fields, fe)
		return
	}
	c.fields = append(c.fields, FieldError{Message: err.Error()})
}

// Addf добавляет ошибку для поля
func (c *Collector) Addf(field, format string, args ...any) {
	c.fields = append(c.fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Err возвращает *ValidationError или nil
func (c *Collector) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: c.fields}
}

// ValidateDecimalRange проверяет, что значение в диапазоне [min; max]
func ValidateDecimalRange(name string, value, minInclusive, maxInclusive decimal.Decimal) error {
	if value.LessThan(minInclusive) {
		return FieldError{Field: name, Message: fmt.Sprintf("значение должно быть ≥ %s", minInclusive)}
	}
	if value.GreaterThan(maxInclusive) {
		return FieldError{Field: name, Message: fmt.Sprintf("значение слишком велико (>%s)", maxInclusive)}
	}
	return nil
}

// ValidatePositive проверяет, что значение строго больше нуля и не больше max
func ValidatePositive(name string, value, maxInclusive decimal.Decimal) error {
	if !value.IsPositive() {
		return FieldError{Field: name, Message: "значение должно быть > 0"}
	}
	if value.GreaterThan(maxInclusive) {
		return FieldError{Field: name, Message: fmt.Sprintf("значение слишком велико (>%s)", maxInclusive)}
	}
	return nil
}

// ValidateIntRange проверяет, что целое число в допустимом диапазоне
func ValidateIntRange(name string, value int, minInclusive, maxInclusive int) error {
	if value < minInclusive || value > maxInclusive {
		return FieldError{Field: name, Message: fmt.Sprintf("значение должно быть в диапазоне [%d; %d]", minInclusive, maxInclusive)}
	}
	return nil
}

// ValidateEnum проверяет, что значение входит в список допустимых
func ValidateEnum(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return FieldError{Field: name, Message: fmt.Sprintf("недопустимое значение %q, ожидается одно из: %s", value, strings.Join(allowed, ", "))}
}

// CheckPrice проверяет цену или другую обязательную положительную сумму
func CheckPrice(limits Limits, name string, value decimal.Decimal) error {
	return ValidatePositive(name, value, limits.MaxPurchasePrice)
}

// CheckAmount проверяет неотрицательную сумму
func CheckAmount(limits Limits, name string, value decimal.Decimal) error {
	return ValidateDecimalRange(name, value, decimal.Zero, limits.MaxPurchasePrice)
}

// CheckRate проверяет ставку в процентах
func CheckRate(limits Limits, name string, rate decimal.Decimal) error {
	return ValidateDecimalRange(name, rate, decimal.Zero, limits.MaxRate)
}

// CheckGrowthRate проверяет ставку роста, которая может быть отрицательной
func CheckGrowthRate(limits Limits, name string, rate decimal.Decimal) error {
	return ValidateDecimalRange(name, rate, decimal.NewFromInt(-99), limits.MaxRate)
}

// CheckHorizon проверяет горизонт расчета в годах
func CheckHorizon(limits Limits, years int) error {
	return ValidateIntRange("property.horizon", years, 1, limits.MaxHorizonYears)
}

// CheckLoanMonths проверяет срок кредита в месяцах
func CheckLoanMonths(limits Limits, months int) error {
	return ValidateIntRange("financing.durationMonths", months, 1, limits.MaxLoanMonths)
}
