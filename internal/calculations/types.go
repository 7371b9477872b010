package calculations

import "github.com/shopspring/decimal"

// Допустимые значения перечислений входных данных
const (
	IndexationNone  = "none"
	IndexationIRL   = "irl"
	IndexationFixed = "fixed"

	LoanTypeFixed        = "fixed"
	LoanTypeDifferential = "differential"

	DeferredPartial = "partial"
	DeferredTotal   = "total"

	InsuranceBaseInitial     = "initial"
	InsuranceBaseOutstanding = "outstanding"

	RegimeMicro = "micro"
	RegimeReal  = "real"
	RegimeLMNP  = "lmnp"

	ValuationAppreciation = "appreciation"
	ValuationCapRate      = "cap-rate"
	ValuationPricePerSqm  = "price-per-sqm"
)

// PropertyContext описывает объект и горизонт владения
type PropertyContext struct {
	Type           string           `json:"type"`
	Location       string           `json:"location"`
	Surface        decimal.Decimal  `json:"surface"`
	Condition      string           `json:"condition"`
	Strategy       string           `json:"strategy"`
	Horizon        int              `json:"horizon"`
	PurchasePrice  decimal.Decimal  `json:"purchasePrice"`
	NotaryFees     decimal.Decimal  `json:"notaryFees"`
	RenovationCost decimal.Decimal  `json:"renovationCost"`
	LandValue      *decimal.Decimal `json:"landValue,omitempty"`
	FurnitureCost  *decimal.Decimal `json:"furnitureCost,omitempty"`
}

// AncillaryRevenue - дополнительный доход (парковка, кладовая и т.п.)
type AncillaryRevenue struct {
	Label          string          `json:"label"`
	MonthlyAmount  decimal.Decimal `json:"monthlyAmount"`
	AnnualIncrease decimal.Decimal `json:"annualIncrease"`
}

// RevenueAssumptions - допущения по арендному доходу. Ставки в процентах.
type RevenueAssumptions struct {
	MonthlyRent           decimal.Decimal    `json:"monthlyRent"`
	IndexationMethod      string             `json:"indexationMethod"`
	IndexationRate        decimal.Decimal    `json:"indexationRate"`
	VacancyRate           decimal.Decimal    `json:"vacancyRate"`
	SeasonalityEnabled    bool               `json:"seasonalityEnabled"`
	SeasonalityMultiplier decimal.Decimal    `json:"seasonalityMultiplier"`
	AncillaryRevenues     []AncillaryRevenue `json:"ancillaryRevenues,omitempty"`
	GuaranteedRent        bool               `json:"guaranteedRent"`
	GuaranteedRentPremium decimal.Decimal    `json:"guaranteedRentPremium"`
	RelocationIncrease    decimal.Decimal    `json:"relocationIncrease"`
	TenantTurnoverYears   int                `json:"tenantTurnoverYears"`
}

// CapexEvent - плановые капитальные затраты в конкретный год
type CapexEvent struct {
	Year        int             `json:"year"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

// ChargesAssumptions - годовые расходы первого года и их индексация
type ChargesAssumptions struct {
	CondoFees          decimal.Decimal `json:"condoFees"`
	Insurance          decimal.Decimal `json:"insurance"`
	PropertyTax        decimal.Decimal `json:"propertyTax"`
	ManagementFeeRate  decimal.Decimal `json:"managementFeeRate"`
	MaintenanceRate    decimal.Decimal `json:"maintenanceRate"`
	RecoverableCharges decimal.Decimal `json:"recoverableCharges"`
	ChargesIncrease    decimal.Decimal `json:"chargesIncrease"`
	Capex              []CapexEvent    `json:"capex,omitempty"`
}

// FinancingAssumptions - параметры кредита
type FinancingAssumptions struct {
	LoanAmount              decimal.Decimal `json:"loanAmount"`
	LoanType                string          `json:"loanType"`
	InterestRate            decimal.Decimal `json:"interestRate"`
	DurationMonths          int             `json:"durationMonths"`
	InsuranceRate           decimal.Decimal `json:"insuranceRate"`
	InsuranceBase           string          `json:"insuranceBase"`
	DeferredMonths          int             `json:"deferredMonths"`
	DeferredType            string          `json:"deferredType"`
	EarlyRepaymentPenalty   decimal.Decimal `json:"earlyRepaymentPenalty"`
	IncludeNotaryInLoan     bool            `json:"includeNotaryInLoan"`
	IncludeRenovationInLoan bool            `json:"includeRenovationInLoan"`
}

// TaxAssumptions - налоговый режим и ставки
type TaxAssumptions struct {
	Regime                     string          `json:"regime"`
	MarginalRate               decimal.Decimal `json:"marginalRate"`
	SocialContributionsRate    decimal.Decimal `json:"socialContributionsRate"`
	DepreciationYears          int             `json:"depreciationYears"`
	FurnitureDepreciationYears int             `json:"furnitureDepreciationYears"`
	DeficitCarryForward        bool            `json:"deficitCarryForward"`
	CrlApplicable              bool            `json:"crlApplicable"`
	CrlRate                    decimal.Decimal `json:"crlRate"`
}

// ExitAssumptions - стратегия выхода и оценка объекта
type ExitAssumptions struct {
	Method              string          `json:"method"`
	AnnualAppreciation  decimal.Decimal `json:"annualAppreciation"`
	TargetCapRate       decimal.Decimal `json:"targetCapRate"`
	TargetPricePerSqm   decimal.Decimal `json:"targetPricePerSqm"`
	SellingCosts        decimal.Decimal `json:"sellingCosts"`
	CapitalGainsTaxRate decimal.Decimal `json:"capitalGainsTaxRate"`
	HoldYears           int             `json:"holdYears"`
	LayerAppreciation   bool            `json:"layerAppreciation"`
}

// RentabilityInput - полностью определенный сценарий инвестиции
type RentabilityInput struct {
	Property     PropertyContext      `json:"property"`
	Revenue      RevenueAssumptions   `json:"revenue"`
	Charges      ChargesAssumptions   `json:"charges"`
	Financing    FinancingAssumptions `json:"financing"`
	Tax          TaxAssumptions       `json:"tax"`
	Exit         ExitAssumptions      `json:"exit"`
	DiscountRate *decimal.Decimal     `json:"discountRate"`
}

// ChargesBreakdown - постатейные расходы года
type ChargesBreakdown struct {
	CondoFees          decimal.Decimal `json:"condoFees"`
	Insurance          decimal.Decimal `json:"insurance"`
	PropertyTax        decimal.Decimal `json:"propertyTax"`
	Management         decimal.Decimal `json:"management"`
	Maintenance        decimal.Decimal `json:"maintenance"`
	RecoverableCharges decimal.Decimal `json:"recoverableCharges"`
	GuaranteeInsurance decimal.Decimal `json:"guaranteeInsurance"`
	Capex              decimal.Decimal `json:"capex"`
}

// YearlyResult - одна строка годовой проекции
type YearlyResult struct {
	Year                int              `json:"year"`
	GrossRevenue        decimal.Decimal  `json:"grossRevenue"`
	VacancyLoss         decimal.Decimal  `json:"vacancyLoss"`
	AncillaryRevenue    decimal.Decimal  `json:"ancillaryRevenue"`
	NetRevenue          decimal.Decimal  `json:"netRevenue"`
	Charges             ChargesBreakdown `json:"charges"`
	TotalCharges        decimal.Decimal  `json:"totalCharges"`
	LoanPayment         decimal.Decimal  `json:"loanPayment"`
	Interest            decimal.Decimal  `json:"interest"`
	Principal           decimal.Decimal  `json:"principal"`
	LoanInsurance       decimal.Decimal  `json:"loanInsurance"`
	RemainingDebt       decimal.Decimal  `json:"remainingDebt"`
	Noi                 decimal.Decimal  `json:"noi"`
	TaxableIncome       decimal.Decimal  `json:"taxableIncome"`
	Depreciation        decimal.Decimal  `json:"depreciation"`
	DepreciationCarried decimal.Decimal  `json:"depreciationCarried"`
	DeficitCarried      decimal.Decimal  `json:"deficitCarried"`
	IncomeTax           decimal.Decimal  `json:"incomeTax"`
	Crl                 decimal.Decimal  `json:"crl"`
	Tax                 decimal.Decimal  `json:"tax"`
	CashflowBeforeTax   decimal.Decimal  `json:"cashflowBeforeTax"`
	CashflowAfterTax    decimal.Decimal  `json:"cashflowAfterTax"`
	PropertyValue       decimal.Decimal  `json:"propertyValue"`
}

// ExitResult - расчет продажи в последний год горизонта
type ExitResult struct {
	SalePrice             decimal.Decimal `json:"salePrice"`
	SellingCosts          decimal.Decimal `json:"sellingCosts"`
	CapitalGain           decimal.Decimal `json:"capitalGain"`
	CapitalGainsTax       decimal.Decimal `json:"capitalGainsTax"`
	RemainingDebt         decimal.Decimal `json:"remainingDebt"`
	EarlyRepaymentPenalty decimal.Decimal `json:"earlyRepaymentPenalty"`
	NetSaleProceeds       decimal.Decimal `json:"netSaleProceeds"`
}

// Kpis - инвестиционные показатели. Доходности, IRR и TotalReturn в процентах.
// Nil означает, что показатель не определен (см. Warnings).
type Kpis struct {
	TotalInvestment decimal.Decimal  `json:"totalInvestment"`
	LoanPrincipal   decimal.Decimal  `json:"loanPrincipal"`
	OwnFunds        decimal.Decimal  `json:"ownFunds"`
	MonthlyPayment  decimal.Decimal  `json:"monthlyPayment"`
	GrossYield      decimal.Decimal  `json:"grossYield"`
	NetYield        decimal.Decimal  `json:"netYield"`
	NetNetYield     *decimal.Decimal `json:"netNetYield"`
	Dscr            *decimal.Decimal `json:"dscr"`
	PaybackYears    *decimal.Decimal `json:"paybackYears"`
	Irr             *decimal.Decimal `json:"irr"`
	Npv             decimal.Decimal  `json:"npv"`
	// TotalReturn - доходность за горизонт за вычетом начального вложения:
	// сумма всех потоков, включая -OwnFunds в году 0, к OwnFunds в процентах.
	// Возврат ровно вложенных средств дает 0, а не 100.
	TotalReturn     *decimal.Decimal `json:"totalReturn"`
	TotalProfit     decimal.Decimal  `json:"totalProfit"`
}

// Metadata - параметры, с которыми был выполнен расчет
type Metadata struct {
	Horizon         int             `json:"horizon"`
	Regime          string          `json:"regime"`
	LoanType        string          `json:"loanType"`
	ValuationMethod string          `json:"valuationMethod"`
	InsuranceBase   string          `json:"insuranceBase"`
	DiscountRate    decimal.Decimal `json:"discountRate"`
	IrrIterations   int             `json:"irrIterations"`
}

// Result - годовая проекция, денежные потоки и показатели
type Result struct {
	YearlyResults []YearlyResult    `json:"yearlyResults"`
	Kpis          Kpis              `json:"kpis"`
	Cashflows     []decimal.Decimal `json:"cashflows"`
	Exit          ExitResult        `json:"exit"`
	Metadata      Metadata          `json:"metadata"`
}

// Warning - числовая особенность расчета, не мешающая его завершению
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Year    int    `json:"year,omitempty"`
}

// Коды предупреждений
const (
	WarnIrrNoSignChange     = "irr_no_sign_change"
	WarnIrrNotBracketed     = "irr_not_bracketed"
	WarnIrrNoConvergence    = "irr_no_convergence"
	WarnDscrUndefined       = "dscr_undefined"
	WarnPaybackNotReached   = "payback_not_reached"
	WarnOwnFundsNonPositive = "own_funds_non_positive"
	WarnNegativeSaleBalance = "sale_below_debt"
	WarnNonPositiveNoi      = "non_positive_noi_valuation"
)

// RentabilityOutput - результат расчета с отпечатком входных данных
type RentabilityOutput struct {
	Result             Result    `json:"result"`
	Warnings           []Warning `json:"warnings"`
	CalculationVersion string    `json:"calculationVersion"`
	InputsHash         string    `json:"inputsHash"`
	IsCertified        bool      `json:"isCertified"`
}

// Clone возвращает независимую копию результата. Decimal неизменяемы,
// копируются только срезы и указатели.
func (o *RentabilityOutput) Clone() *RentabilityOutput {
	if o == nil {
		return nil
	}
	out := *o
	out.Result.YearlyResults = append([]YearlyResult(nil), o.Result.YearlyResults...)
	out.Result.Cashflows = append([]decimal.Decimal(nil), o.Result.Cashflows...)
	out.Warnings = append(make([]Warning, 0, len(o.Warnings)), o.Warnings...)

	kpis := &out.Result.Kpis
	kpis.NetNetYield = cloneDecimal(o.Result.Kpis.NetNetYield)
	kpis.Dscr = cloneDecimal(o.Result.Kpis.Dscr)
	kpis.PaybackYears = cloneDecimal(o.Result.Kpis.PaybackYears)
	kpis.Irr = cloneDecimal(o.Result.Kpis.Irr)
	kpis.TotalReturn = cloneDecimal(o.Result.Kpis.TotalReturn)
	return &out
}

func cloneDecimal(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
