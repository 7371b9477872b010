package calculations

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cloud-ru/rentability-go/internal/validators"
)

// Validate проверяет нормализованный сценарий до начала расчета и
// возвращает *validators.ValidationError со всеми найденными ошибками.
func Validate(limits validators.Limits, in RentabilityInput) error {
	var c validators.Collector

	p := in.Property
	c.Add(validators.CheckHorizon(limits, p.Horizon))
	c.Add(validators.CheckAmount(limits, "property.surface", p.Surface))
	c.Add(validators.CheckPrice(limits, "property.purchasePrice", p.PurchasePrice))
	c.Add(validators.CheckAmount(limits, "property.notaryFees", p.NotaryFees))
	c.Add(validators.CheckAmount(limits, "property.renovationCost", p.RenovationCost))
	if p.LandValue != nil {
		c.Add(validators.CheckAmount(limits, "property.landValue", *p.LandValue))
		if p.LandValue.GreaterThan(p.PurchasePrice) {
			c.Addf("property.landValue", "стоимость земли не может превышать цену покупки")
		}
	}
	if p.FurnitureCost != nil {
		c.Add(validators.CheckAmount(limits, "property.furnitureCost", *p.FurnitureCost))
	}

	r := in.Revenue
	c.Add(validators.CheckAmount(limits, "revenue.monthlyRent", r.MonthlyRent))
	c.Add(validators.ValidateEnum("revenue.indexationMethod", r.IndexationMethod, IndexationNone, IndexationIRL, IndexationFixed))
	c.Add(validators.CheckGrowthRate(limits, "revenue.indexationRate", r.IndexationRate))
	c.Add(validators.ValidateDecimalRange("revenue.vacancyRate", r.VacancyRate, decimal.Zero, hundred))
	if r.SeasonalityEnabled {
		c.Add(validators.CheckAmount(limits, "revenue.seasonalityMultiplier", r.SeasonalityMultiplier))
	}
	c.Add(validators.CheckRate(limits, "revenue.guaranteedRentPremium", r.GuaranteedRentPremium))
	c.Add(validators.CheckGrowthRate(limits, "revenue.relocationIncrease", r.RelocationIncrease))
	c.Add(validators.ValidateIntRange("revenue.tenantTurnoverYears", r.TenantTurnoverYears, 0, limits.MaxHorizonYears))
	for i, a := range r.AncillaryRevenues {
		c.Add(validators.CheckAmount(limits, fmt.Sprintf("revenue.ancillaryRevenues[%d].monthlyAmount", i), a.MonthlyAmount))
		c.Add(validators.CheckGrowthRate(limits, fmt.Sprintf("revenue.ancillaryRevenues[%d].annualIncrease", i), a.AnnualIncrease))
	}

	ch := in.Charges
	c.Add(validators.CheckAmount(limits, "charges.condoFees", ch.CondoFees))
	c.Add(validators.CheckAmount(limits, "charges.insurance", ch.Insurance))
	c.Add(validators.CheckAmount(limits, "charges.propertyTax", ch.PropertyTax))
	c.Add(validators.CheckAmount(limits, "charges.recoverableCharges", ch.RecoverableCharges))
	c.Add(validators.CheckRate(limits, "charges.managementFeeRate", ch.ManagementFeeRate))
	c.Add(validators.CheckRate(limits, "charges.maintenanceRate", ch.MaintenanceRate))
	c.Add(validators.CheckGrowthRate(limits, "charges.chargesIncrease", ch.ChargesIncrease))
	for i, e := range ch.Capex {
		c.Add(validators.CheckAmount(limits, fmt.Sprintf("charges.capex[%d].amount", i), e.Amount))
	}

	f := in.Financing
	c.Add(validators.CheckAmount(limits, "financing.loanAmount", f.LoanAmount))
	c.Add(validators.ValidateEnum("financing.loanType", f.LoanType, LoanTypeFixed, LoanTypeDifferential))
	c.Add(validators.ValidateEnum("financing.insuranceBase", f.InsuranceBase, InsuranceBaseInitial, InsuranceBaseOutstanding))
	if f.LoanAmount.IsPositive() {
		c.Add(validators.CheckLoanMonths(limits, f.DurationMonths))
		c.Add(validators.CheckRate(limits, "financing.interestRate", f.InterestRate))
		c.Add(validators.CheckRate(limits, "financing.insuranceRate", f.InsuranceRate))
		c.Add(validators.CheckRate(limits, "financing.earlyRepaymentPenalty", f.EarlyRepaymentPenalty))
		if f.DurationMonths > 0 {
			c.Add(validators.ValidateIntRange("financing.deferredMonths", f.DeferredMonths, 0, f.DurationMonths-1))
		}
		if f.DeferredMonths > 0 {
			c.Add(validators.ValidateEnum("financing.deferredType", f.DeferredType, DeferredPartial, DeferredTotal))
		}
	}

	t := in.Tax
	c.Add(validators.ValidateEnum("tax.regime", t.Regime, RegimeMicro, RegimeReal, RegimeLMNP))
	c.Add(validators.CheckRate(limits, "tax.marginalRate", t.MarginalRate))
	c.Add(validators.CheckRate(limits, "tax.socialContributionsRate", t.SocialContributionsRate))
	c.Add(validators.CheckRate(limits, "tax.crlRate", t.CrlRate))
	if t.Regime == RegimeLMNP {
		c.Add(validators.ValidateIntRange("tax.depreciationYears", t.DepreciationYears, 1, 100))
		if p.FurnitureCost != nil && p.FurnitureCost.IsPositive() {
			c.Add(validators.ValidateIntRange("tax.furnitureDepreciationYears", t.FurnitureDepreciationYears, 1, 100))
		}
	}

	e := in.Exit
	c.Add(validators.ValidateEnum("exit.method", e.Method, ValuationAppreciation, ValuationCapRate, ValuationPricePerSqm))
	c.Add(validators.CheckGrowthRate(limits, "exit.annualAppreciation", e.AnnualAppreciation))
	c.Add(validators.ValidateDecimalRange("exit.sellingCosts", e.SellingCosts, decimal.Zero, hundred))
	c.Add(validators.ValidateDecimalRange("exit.capitalGainsTaxRate", e.CapitalGainsTaxRate, decimal.Zero, hundred))
	switch e.Method {
	case ValuationCapRate:
		c.Add(validators.ValidatePositive("exit.targetCapRate", e.TargetCapRate, limits.MaxRate))
	case ValuationPricePerSqm:
		c.Add(validators.CheckPrice(limits, "exit.targetPricePerSqm", e.TargetPricePerSqm))
		if !p.Surface.IsPositive() {
			c.Addf("property.surface", "для оценки по цене за м² площадь должна быть > 0")
		}
	}
	if e.HoldYears != p.Horizon {
		c.Addf("exit.holdYears", "срок владения (%d) должен совпадать с горизонтом расчета (%d)", e.HoldYears, p.Horizon)
	}

	if in.DiscountRate == nil {
		c.Addf("discountRate", "ставка дисконтирования обязательна")
	} else {
		c.Add(validators.CheckRate(limits, "discountRate", *in.DiscountRate))
	}

	return c.Err()
}
