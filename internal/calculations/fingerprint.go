package calculations

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Normalize возвращает копию сценария в канонической форме: перечисления
// приведены к нижнему регистру, пропущенные значения заполнены умолчаниями,
// списки capex и дополнительных доходов отсортированы. Исходный сценарий не
// изменяется.
func Normalize(in RentabilityInput) RentabilityInput {
	out := in

	out.Property.LandValue = copyDecimal(in.Property.LandValue)
	out.Property.FurnitureCost = copyDecimal(in.Property.FurnitureCost)
	out.DiscountRate = copyDecimal(in.DiscountRate)

	out.Revenue.IndexationMethod = enumOrDefault(in.Revenue.IndexationMethod, IndexationNone)
	out.Financing.LoanType = enumOrDefault(in.Financing.LoanType, LoanTypeFixed)
	out.Financing.InsuranceBase = enumOrDefault(in.Financing.InsuranceBase, InsuranceBaseInitial)
	out.Tax.Regime = enumOrDefault(in.Tax.Regime, "")
	out.Exit.Method = enumOrDefault(in.Exit.Method, "")

	if in.Financing.DeferredMonths > 0 {
		out.Financing.DeferredType = enumOrDefault(in.Financing.DeferredType, DeferredPartial)
	} else {
		out.Financing.DeferredType = ""
	}

	if out.Exit.HoldYears == 0 {
		out.Exit.HoldYears = out.Property.Horizon
	}
	if out.Tax.CrlRate.IsZero() {
		out.Tax.CrlRate = defaultCrlRate
	}

	out.Revenue.AncillaryRevenues = append([]AncillaryRevenue(nil), in.Revenue.AncillaryRevenues...)
	sort.SliceStable(out.Revenue.AncillaryRevenues, func(i, j int) bool {
		a, b := out.Revenue.AncillaryRevenues[i], out.Revenue.AncillaryRevenues[j]
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		if !a.MonthlyAmount.Equal(b.MonthlyAmount) {
			return a.MonthlyAmount.LessThan(b.MonthlyAmount)
		}
		return a.AnnualIncrease.LessThan(b.AnnualIncrease)
	})

	out.Charges.Capex = append([]CapexEvent(nil), in.Charges.Capex...)
	sort.SliceStable(out.Charges.Capex, func(i, j int) bool {
		a, b := out.Charges.Capex[i], out.Charges.Capex[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if !a.Amount.Equal(b.Amount) {
			return a.Amount.LessThan(b.Amount)
		}
		return a.Description < b.Description
	})

	return out
}

// InputsHash возвращает SHA-256 канонического JSON нормализованного сценария.
// Десятичные числа сериализуются через String(), поэтому 1.50 и 1.5 дают
// одинаковый хэш.
func InputsHash(in RentabilityInput) (string, error) {
	canonical, err := json.Marshal(Normalize(in))
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации входных данных: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// VerifyCertificate проверяет, что сертификат (хэш и версия) выдан для этого
// сценария текущей версией движка.
func VerifyCertificate(in RentabilityInput, inputsHash, calculationVersion string) (bool, error) {
	if calculationVersion != CalculationVersion {
		return false, nil
	}
	hash, err := InputsHash(in)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(hash, strings.TrimSpace(inputsHash)), nil
}

func enumOrDefault(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}

func copyDecimal(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
