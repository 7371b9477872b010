package calculations

import (
	"fmt"

	"github.com/cloud-ru/rentability-go/internal/validators"
)

// CalculationVersion меняется при любом изменении формул, округления или
// параметров решателя IRR.
const CalculationVersion = "rentability-engine/2.3.0"

// ConfigInterface - интерфейс для получения ограничений из конфигурации
type ConfigInterface interface {
	EngineLimits() validators.Limits
}

// Compute выполняет полный расчет рентабельности: нормализация, валидация,
// годовая проекция, выход, денежные потоки и показатели. Одинаковые входные
// данные всегда дают побайтно одинаковый результат.
func Compute(cfg ConfigInterface, input RentabilityInput) (*RentabilityOutput, error) {
	in := Normalize(input)

	limits := validators.DefaultLimits()
	if cfg != nil {
		limits = cfg.EngineLimits()
	}
	if err := Validate(limits, in); err != nil {
		return nil, err
	}

	hash, err := InputsHash(in)
	if err != nil {
		return nil, err
	}

	horizon := in.Property.Horizon
	principal := LoanPrincipal(in.Property, in.Financing)
	schedule := BuildLoanSchedule(principal, in.Financing)

	warnings := []Warning{}
	rows := make([]YearlyResult, 0, horizon)
	state := TaxState{}

	for year := 1; year <= horizon; year++ {
		revenue := ProjectRevenue(in.Revenue, year)
		breakdown, totalCharges := ProjectCharges(in.Charges, in.Revenue, revenue, year, horizon)
		financing := ProjectFinancing(schedule, year)

		var taxYear TaxYear
		taxYear, state = ComputeTax(in.Tax, in.Property, TaxBase{
			GrossRevenue:  revenue.GrossRevenue,
			NetRevenue:    revenue.NetRevenue,
			TotalCharges:  totalCharges,
			Interest:      financing.Interest,
			LoanInsurance: financing.LoanInsurance,
		}, year, state)

		noi := revenue.NetRevenue.Sub(totalCharges)
		value, ok := ProjectPropertyValue(in.Property, in.Exit, noi, year)
		if !ok {
			warnings = append(warnings, Warning{
				Code:    WarnNonPositiveNoi,
				Message: fmt.Sprintf("NOI не положителен (%s): оценка по ставке капитализации равна нулю", noi),
				Year:    year,
			})
		}

		rows = append(rows, AggregateYear(year, revenue, breakdown, totalCharges, financing, taxYear, value))
	}

	last := rows[len(rows)-1]
	exit := ComputeExit(in.Property, in.Exit, in.Financing, last.PropertyValue, last.RemainingDebt)
	if exit.NetSaleProceeds.IsNegative() {
		warnings = append(warnings, Warning{
			Code:    WarnNegativeSaleBalance,
			Message: fmt.Sprintf("выручка от продажи не покрывает долг и расходы: %s", exit.NetSaleProceeds),
			Year:    horizon,
		})
	}

	ownFunds := TotalInvestment(in.Property).Sub(principal)
	flows := BuildCashflows(ownFunds, rows, exit)

	kpis, kpiWarnings, irr := ComputeKpis(in.Property, rows, flows, principal, schedule.MonthlyPayment, *in.DiscountRate)
	warnings = append(warnings, kpiWarnings...)

	return &RentabilityOutput{
		Result: Result{
			YearlyResults: rows,
			Kpis:          kpis,
			Cashflows:     flows,
			Exit:          exit,
			Metadata: Metadata{
				Horizon:         horizon,
				Regime:          in.Tax.Regime,
				LoanType:        in.Financing.LoanType,
				ValuationMethod: in.Exit.Method,
				InsuranceBase:   in.Financing.InsuranceBase,
				DiscountRate:    *in.DiscountRate,
				IrrIterations:   irr.Iterations,
			},
		},
		Warnings:           warnings,
		CalculationVersion: CalculationVersion,
		InputsHash:         hash,
		IsCertified:        len(warnings) == 0,
	}, nil
}
