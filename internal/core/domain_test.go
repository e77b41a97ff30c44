package core

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want Status
	}{
		{"Pago", StatusPago},
		{"PAGO", StatusPago},
		{"  pago  ", StatusPago},
		{"Em andamento", StatusEmAndamento},
		{"em aberto", StatusEmAberto},
		{"Pendente", StatusPendente},
		{"", StatusPendente},
		{"whatever", StatusPendente},
	}
	for _, tt := range tests {
		if got := ParseStatus(tt.in); got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		in   string
		want PaymentMethod
	}{
		{"Cota Única", CotaUnica},
		{"cota unica", CotaUnica},
		{"Parcelado", Parcelado},
		{"", MethodEmAberto},
		{"em aberto", MethodEmAberto},
	}
	for _, tt := range tests {
		if got := ParsePaymentMethod(tt.in); got != tt.want {
			t.Errorf("ParsePaymentMethod(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPropertyUnitValidate(t *testing.T) {
	valid := PropertyUnit{Sequential: "001", Year: 2024, ChosenMethod: CotaUnica, InstallmentsCount: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid unit rejected: %v", err)
	}

	tests := []struct {
		name string
		unit PropertyUnit
		want error
	}{
		{"missing sequential", PropertyUnit{Year: 2024}, ErrEmptySequential},
		{"year out of range", PropertyUnit{Sequential: "1", Year: 190}, ErrInvalidYear},
		{"negative amount", PropertyUnit{Sequential: "1", Year: 2024, SingleValue: Money{Cents: -1}}, ErrInvalidAmount},
		{"too many installments", PropertyUnit{Sequential: "1", Year: 2024, InstallmentsCount: 13}, ErrInvalidInstallments},
		{"parcelado needs installments", PropertyUnit{Sequential: "1", Year: 2024, ChosenMethod: Parcelado}, ErrInvalidInstallments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.unit.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestTenantValidate(t *testing.T) {
	if err := (Tenant{ID: "t1", Year: 2024, Name: "Padaria Central", OccupiedArea: 80}).Validate(); err != nil {
		t.Fatalf("valid tenant rejected: %v", err)
	}
	if err := (Tenant{ID: "t1", Year: 2024, OccupiedArea: 80}).Validate(); !errors.Is(err, ErrEmptyName) {
		t.Errorf("nameless tenant: got %v, want ErrEmptyName", err)
	}
	neg := -5.0
	if err := (Tenant{ID: "t1", Year: 2024, Name: "X", ManualPercentage: &neg}).Validate(); !errors.Is(err, ErrInvalidPercentage) {
		t.Errorf("negative manual percentage: got %v, want ErrInvalidPercentage", err)
	}
}

func TestSetSingleTenant(t *testing.T) {
	p := Property{
		Name: "Edifício Aurora",
		Tenants: []Tenant{
			{ID: "t1", Year: 2024, Name: "A", IsSingleTenant: true},
			{ID: "t2", Year: 2024, Name: "B"},
			{ID: "t3", Year: 2023, Name: "C", IsSingleTenant: true},
		},
	}

	if !p.SetSingleTenant("t2") {
		t.Fatal("SetSingleTenant returned false for existing tenant")
	}
	if p.Tenants[0].IsSingleTenant {
		t.Error("t1 flag not cleared")
	}
	if !p.Tenants[1].IsSingleTenant {
		t.Error("t2 flag not set")
	}
	// Different year, untouched.
	if !p.Tenants[2].IsSingleTenant {
		t.Error("t3 (other year) flag was cleared")
	}

	if p.SetSingleTenant("missing") {
		t.Error("SetSingleTenant returned true for unknown tenant")
	}
}

func TestCoveredSequentials(t *testing.T) {
	p := Property{
		Name: "Complexo Leste",
		IptuHistory: []IptuRecord{
			{ID: "h1", Year: 2023, SelectedSequentials: []string{"001", "002"}},
			{ID: "h2", Year: 2023, SelectedSequentials: []string{"003"}},
			{ID: "h3", Year: 2022, SelectedSequentials: []string{"004"}},
		},
	}

	covered := p.CoveredSequentials(2023, "h2")
	if !covered["001"] || !covered["002"] {
		t.Error("sequentials of sibling record not covered")
	}
	if covered["003"] {
		t.Error("excluded record's sequentials should not be covered")
	}
	if covered["004"] {
		t.Error("other year's sequentials should not be covered")
	}
}

func TestPropertyValidate(t *testing.T) {
	p := Property{
		Name:     "Loja Matriz",
		BaseYear: 2024,
		Units:    []PropertyUnit{{Sequential: "1", Year: 2024}},
		Tenants:  []Tenant{{ID: "t", Year: 2024, Name: "X"}},
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("valid property rejected: %v", err)
	}

	p.Units[0].Sequential = ""
	if err := p.Validate(); !errors.Is(err, ErrEmptySequential) {
		t.Errorf("invalid nested unit: got %v, want ErrEmptySequential", err)
	}
}
