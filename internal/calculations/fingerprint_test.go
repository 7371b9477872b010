package calculations

import "testing"

func TestInputsHashNormalization(t *testing.T) {
	base := sampleInput()
	base.Charges.Capex = []CapexEvent{
		{Year: 2, Amount: d("1000"), Description: "paint"},
		{Year: 5, Amount: d("4000"), Description: "boiler"},
	}
	base.Revenue.AncillaryRevenues = []AncillaryRevenue{
		{Label: "cellar", MonthlyAmount: d("20")},
		{Label: "parking", MonthlyAmount: d("60")},
	}
	baseHash, err := InputsHash(base)
	if err != nil {
		t.Fatalf("InputsHash() error = %v", err)
	}

	tests := []struct {
		name     string
		modify   func(*RentabilityInput)
		wantSame bool
	}{
		{
			name:     "trailing zeros",
			modify:   func(in *RentabilityInput) { in.Property.PurchasePrice = d("200000.00"); in.Revenue.MonthlyRent = d("1000.0") },
			wantSame: true,
		},
		{
			name: "capex order",
			modify: func(in *RentabilityInput) {
				in.Charges.Capex = []CapexEvent{in.Charges.Capex[1], in.Charges.Capex[0]}
			},
			wantSame: true,
		},
		{
			name: "ancillary order",
			modify: func(in *RentabilityInput) {
				in.Revenue.AncillaryRevenues = []AncillaryRevenue{in.Revenue.AncillaryRevenues[1], in.Revenue.AncillaryRevenues[0]}
			},
			wantSame: true,
		},
		{
			name:     "enum case and spaces",
			modify:   func(in *RentabilityInput) { in.Tax.Regime = " REAL "; in.Financing.LoanType = "Fixed" },
			wantSame: true,
		},
		{
			name:     "explicit defaults",
			modify:   func(in *RentabilityInput) { in.Exit.HoldYears = 10; in.Financing.InsuranceBase = InsuranceBaseInitial; in.Tax.CrlRate = d("2.5") },
			wantSame: true,
		},
		{
			name:     "deferred type ignored without deferral",
			modify:   func(in *RentabilityInput) { in.Financing.DeferredType = DeferredTotal },
			wantSame: true,
		},
		{
			name:     "rent change",
			modify:   func(in *RentabilityInput) { in.Revenue.MonthlyRent = d("1001") },
			wantSame: false,
		},
		{
			name:     "discount rate change",
			modify:   func(in *RentabilityInput) { in.DiscountRate = dp("5") },
			wantSame: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			in.Charges.Capex = append([]CapexEvent(nil), base.Charges.Capex...)
			in.Revenue.AncillaryRevenues = append([]AncillaryRevenue(nil), base.Revenue.AncillaryRevenues...)
			tt.modify(&in)

			hash, err := InputsHash(in)
			if err != nil {
				t.Fatalf("InputsHash() error = %v", err)
			}
			if (hash == baseHash) != tt.wantSame {
				t.Errorf("hash equality = %v, want %v", hash == baseHash, tt.wantSame)
			}
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := sampleInput()
	in.Tax.Regime = " LMNP "
	in.Charges.Capex = []CapexEvent{{Year: 3, Amount: d("1")}, {Year: 1, Amount: d("2")}}

	out := Normalize(in)
	if in.Tax.Regime != " LMNP " {
		t.Errorf("input regime mutated: %q", in.Tax.Regime)
	}
	if in.Charges.Capex[0].Year != 3 {
		t.Error("input capex order mutated")
	}
	if out.Tax.Regime != RegimeLMNP || out.Charges.Capex[0].Year != 1 {
		t.Errorf("unexpected normalized values: %q, %d", out.Tax.Regime, out.Charges.Capex[0].Year)
	}
	if out.DiscountRate == in.DiscountRate {
		t.Error("pointer fields must be copied")
	}
	if out.Exit.HoldYears != in.Property.Horizon {
		t.Errorf("HoldYears = %d, want horizon", out.Exit.HoldYears)
	}
}

func TestVerifyCertificate(t *testing.T) {
	in := sampleInput()
	out := mustCompute(t, in)

	tests := []struct {
		name    string
		input   RentabilityInput
		hash    string
		version string
		want    bool
	}{
		{name: "valid", input: in, hash: out.InputsHash, version: out.CalculationVersion, want: true},
		{name: "other version", input: in, hash: out.InputsHash, version: "rentability-engine/1.0.0", want: false},
		{name: "tampered hash", input: in, hash: "deadbeef", version: out.CalculationVersion, want: false},
		{
			name: "changed input",
			input: func() RentabilityInput {
				changed := sampleInput()
				changed.Revenue.VacancyRate = d("6")
				return changed
			}(),
			hash:    out.InputsHash,
			version: out.CalculationVersion,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyCertificate(tt.input, tt.hash, tt.version)
			if err != nil {
				t.Fatalf("VerifyCertificate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("VerifyCertificate() = %v, want %v", got, tt.want)
			}
		})
	}
}
