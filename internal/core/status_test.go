package core

import "testing"

func unit(year int, status Status, single int64) PropertyUnit {
	return PropertyUnit{
		Sequential:  "seq-1",
		Year:        year,
		Status:      status,
		SingleValue: Money{Cents: single},
	}
}

func TestResolvePropertyStatus(t *testing.T) {
	tests := []struct {
		name  string
		units []PropertyUnit
		year  int
		want  Status
	}{
		{
			name:  "no units - pendente",
			units: nil,
			year:  2024,
			want:  StatusPendente,
		},
		{
			name:  "units only for other years - pendente",
			units: []PropertyUnit{unit(2023, StatusPago, 100000)},
			year:  2024,
			want:  StatusPendente,
		},
		{
			name:  "all paid - pago",
			units: []PropertyUnit{unit(2024, StatusPago, 100000), unit(2024, StatusPago, 50000)},
			year:  2024,
			want:  StatusPago,
		},
		{
			name:  "mixed case status still counts as paid",
			units: []PropertyUnit{{Sequential: "s", Year: 2024, Status: "PAGO"}},
			year:  2024,
			want:  StatusPago,
		},
		{
			name:  "em andamento outranks em aberto",
			units: []PropertyUnit{unit(2024, StatusEmAberto, 100), unit(2024, StatusEmAndamento, 100)},
			year:  2024,
			want:  StatusEmAndamento,
		},
		{
			name:  "em andamento beats paid siblings",
			units: []PropertyUnit{unit(2024, StatusPago, 100), unit(2024, StatusEmAndamento, 100)},
			year:  2024,
			want:  StatusEmAndamento,
		},
		{
			name:  "em aberto when no andamento",
			units: []PropertyUnit{unit(2024, StatusPago, 100), unit(2024, StatusEmAberto, 100)},
			year:  2024,
			want:  StatusEmAberto,
		},
		{
			name:  "pending units only - pendente",
			units: []PropertyUnit{unit(2024, StatusPendente, 100), unit(2024, StatusPago, 100)},
			year:  2024,
			want:  StatusPendente,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Property{Name: "Galpão Centro", Units: tt.units}
			if got := ResolvePropertyStatus(p, tt.year); got != tt.want {
				t.Errorf("ResolvePropertyStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolvePropertyStatus_PaidScenario(t *testing.T) {
	p := Property{
		Name:  "Loja Boa Vista",
		Units: []PropertyUnit{unit(2024, StatusPago, 100000)},
	}
	if got := ResolvePropertyStatus(p, 2024); got != StatusPago {
		t.Errorf("ResolvePropertyStatus() = %q, want %q", got, StatusPago)
	}
	if HasPriorDebt(p, 2025) {
		t.Error("HasPriorDebt() = true for a fully paid property")
	}
}

func TestHasPriorDebt(t *testing.T) {
	tests := []struct {
		name    string
		units   []PropertyUnit
		history []IptuRecord
		refYear int
		want    bool
	}{
		{
			name:    "no data",
			refYear: 2024,
			want:    false,
		},
		{
			name:    "unpaid prior unit with amount",
			units:   []PropertyUnit{unit(2023, StatusEmAberto, 50000)},
			refYear: 2024,
			want:    true,
		},
		{
			name:    "unpaid prior unit with installment amount only",
			units:   []PropertyUnit{{Sequential: "s", Year: 2022, Status: StatusPendente, InstallmentValue: Money{Cents: 1200}}},
			refYear: 2024,
			want:    true,
		},
		{
			name:    "zero-amount unpaid unit is a placeholder, not debt",
			units:   []PropertyUnit{unit(2023, StatusEmAberto, 0)},
			refYear: 2024,
			want:    false,
		},
		{
			name:    "unpaid unit in reference year does not count",
			units:   []PropertyUnit{unit(2024, StatusEmAberto, 50000)},
			refYear: 2024,
			want:    false,
		},
		{
			name:    "paid prior units",
			units:   []PropertyUnit{unit(2022, StatusPago, 50000), unit(2023, StatusPago, 50000)},
			refYear: 2024,
			want:    false,
		},
		{
			name:    "history fallback flags unpaid year",
			history: []IptuRecord{{ID: "h1", Year: 2021, Status: StatusEmAberto}},
			refYear: 2024,
			want:    true,
		},
		{
			name:    "history with blank status defaults to pendente and counts",
			history: []IptuRecord{{ID: "h1", Year: 2021}},
			refYear: 2024,
			want:    true,
		},
		{
			name:    "history year superseded by paid units is ignored",
			units:   []PropertyUnit{unit(2023, StatusPago, 50000)},
			history: []IptuRecord{{ID: "h1", Year: 2023, Status: StatusEmAberto}},
			refYear: 2024,
			want:    false,
		},
		{
			name:    "paid history only",
			history: []IptuRecord{{ID: "h1", Year: 2021, Status: "pago"}},
			refYear: 2024,
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Property{Name: "Terreno Norte", Units: tt.units, IptuHistory: tt.history}
			if got := HasPriorDebt(p, tt.refYear); got != tt.want {
				t.Errorf("HasPriorDebt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasPriorDebt_MixedScenario(t *testing.T) {
	p := Property{
		Name: "Edifício Central",
		Units: []PropertyUnit{
			unit(2023, StatusEmAberto, 50000),
			unit(2024, StatusPago, 60000),
		},
	}
	if !HasPriorDebt(p, 2024) {
		t.Error("HasPriorDebt(2024) = false, want true: 2023 unit is open with amount")
	}
	if got := ResolvePropertyStatus(p, 2024); got != StatusPago {
		t.Errorf("ResolvePropertyStatus(2024) = %q, want %q", got, StatusPago)
	}
}
