package core

import (
	"math"
	"testing"
)

func TestCompareYears(t *testing.T) {
	tests := []struct {
		name              string
		current, previous int64
		wantDiff          int64
		wantPct           float64
	}{
		{"increase", 120000, 100000, 20000, 20},
		{"decrease", 80000, 100000, -20000, -20},
		{"flat", 100000, 100000, 0, 0},
		{"zero previous guards division", 50000, 0, 50000, 0},
		{"both zero", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareYears(Money{Cents: tt.current}, Money{Cents: tt.previous})
			if got.Diff.Cents != tt.wantDiff {
				t.Errorf("Diff = %d, want %d", got.Diff.Cents, tt.wantDiff)
			}
			if !almostEqual(got.Pct, tt.wantPct) {
				t.Errorf("Pct = %f, want %f", got.Pct, tt.wantPct)
			}
			if math.IsNaN(got.Pct) || math.IsInf(got.Pct, 0) {
				t.Error("Pct is not finite")
			}
		})
	}
}

func TestNormalizeCity(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"são paulo", "São Paulo"},
		{"  RIO DE JANEIRO  ", "Rio De Janeiro"},
		{"recife", "Recife"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := NormalizeCity(tt.in); got != tt.want {
			t.Errorf("NormalizeCity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func rollupProps() []Property {
	return []Property{
		{
			ID: "p1", Name: "Loja A", City: "são paulo", State: "sp",
			Units: []PropertyUnit{{Sequential: "1", Year: 2024, ChosenMethod: CotaUnica, SingleValue: Money{Cents: 30000}, Status: StatusPago}},
		},
		{
			ID: "p2", Name: "Loja B", City: "SÃO PAULO", State: "SP",
			Units: []PropertyUnit{{Sequential: "1", Year: 2024, ChosenMethod: CotaUnica, SingleValue: Money{Cents: 20000}, Status: StatusPago}},
		},
		{
			ID: "p3", Name: "Galpão C", City: "Recife", State: "PE",
			Units: []PropertyUnit{{Sequential: "1", Year: 2024, ChosenMethod: Parcelado, InstallmentsCount: 10, InstallmentValue: Money{Cents: 40000}, Status: StatusEmAberto}},
		},
	}
}

func TestRollupByCity(t *testing.T) {
	rows := RollupByCity(rollupProps(), 2024)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	// São Paulo: 300 + 200 = 500; Recife: 400. Sorted descending by total.
	if rows[0].Key != "São Paulo" || rows[0].Total.Cents != 50000 || rows[0].Properties != 2 {
		t.Errorf("rows[0] = %+v, want São Paulo / 50000 / 2", rows[0])
	}
	if rows[1].Key != "Recife" || rows[1].Total.Cents != 40000 {
		t.Errorf("rows[1] = %+v, want Recife / 40000", rows[1])
	}
}

func TestRollupByState(t *testing.T) {
	rows := RollupByState(rollupProps(), 2024)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Key != "SP" || rows[0].Total.Cents != 50000 {
		t.Errorf("rows[0] = %+v, want SP / 50000", rows[0])
	}
}

func TestRollup_TieKeepsInsertionOrder(t *testing.T) {
	props := []Property{
		{ID: "p1", City: "Olinda", Units: []PropertyUnit{{Sequential: "1", Year: 2024, ChosenMethod: CotaUnica, SingleValue: Money{Cents: 10000}}}},
		{ID: "p2", City: "Caruaru", Units: []PropertyUnit{{Sequential: "1", Year: 2024, ChosenMethod: CotaUnica, SingleValue: Money{Cents: 10000}}}},
	}
	rows := RollupByCity(props, 2024)
	if rows[0].Key != "Olinda" || rows[1].Key != "Caruaru" {
		t.Errorf("tie order = %q, %q; want Olinda, Caruaru", rows[0].Key, rows[1].Key)
	}
}

func TestMethodDistribution(t *testing.T) {
	props := []Property{{
		Units: []PropertyUnit{
			{Sequential: "1", Year: 2024, ChosenMethod: CotaUnica},
			{Sequential: "2", Year: 2024, ChosenMethod: CotaUnica},
			{Sequential: "3", Year: 2024, ChosenMethod: Parcelado},
			{Sequential: "4", Year: 2024, ChosenMethod: MethodEmAberto},
		},
	}}

	buckets := MethodDistribution(props, 2024)
	want := map[string]struct {
		count int
		pct   float64
	}{
		string(CotaUnica):      {2, 50},
		string(Parcelado):      {1, 25},
		string(MethodEmAberto): {1, 25},
	}
	for _, b := range buckets {
		w := want[b.Label]
		if b.Count != w.count || !almostEqual(b.Percentage, w.pct) {
			t.Errorf("bucket %q = %d / %.2f%%, want %d / %.2f%%", b.Label, b.Count, b.Percentage, w.count, w.pct)
		}
	}
}

func TestDistributions_EmptyYearYieldsZeroPercent(t *testing.T) {
	for _, b := range MethodDistribution(nil, 2024) {
		if b.Percentage != 0 {
			t.Errorf("method bucket %q percentage = %f, want 0", b.Label, b.Percentage)
		}
	}
	for _, b := range StatusDistribution(nil, 2024) {
		if b.Percentage != 0 {
			t.Errorf("status bucket %q percentage = %f, want 0", b.Label, b.Percentage)
		}
	}
}

func TestStatusDistribution(t *testing.T) {
	props := []Property{{
		Units: []PropertyUnit{
			{Sequential: "1", Year: 2024, Status: StatusPago},
			{Sequential: "2", Year: 2024, Status: "pago"},
			{Sequential: "3", Year: 2024, Status: StatusEmAndamento},
			{Sequential: "4", Year: 2024, Status: ""},
		},
	}}

	buckets := StatusDistribution(props, 2024)
	counts := map[string]int{}
	for _, b := range buckets {
		counts[b.Label] = b.Count
	}
	if counts[string(StatusPago)] != 2 {
		t.Errorf("Pago count = %d, want 2", counts[string(StatusPago)])
	}
	if counts[string(StatusEmAndamento)] != 1 {
		t.Errorf("Em andamento count = %d, want 1", counts[string(StatusEmAndamento)])
	}
	if counts[string(StatusPendente)] != 1 {
		t.Errorf("blank status should fall into Pendente, got %d", counts[string(StatusPendente)])
	}
}

func TestHighestCharges(t *testing.T) {
	props := []Property{
		{ID: "p1", Name: "A", Units: []PropertyUnit{
			{Sequential: "1", Year: 2024, SingleValue: Money{Cents: 50000}, InstallmentValue: Money{Cents: 10000}},
		}},
		{ID: "p2", Name: "B", Units: []PropertyUnit{
			{Sequential: "9", Year: 2024, SingleValue: Money{Cents: 70000}, InstallmentValue: Money{Cents: 80000}},
		}},
		// Same single value as p2: first seen wins.
		{ID: "p3", Name: "C", Units: []PropertyUnit{
			{Sequential: "2", Year: 2024, SingleValue: Money{Cents: 70000}},
		}},
	}

	hi := HighestCharges(props, 2024)
	if hi.Single.PropertyID != "p2" || hi.Single.Amount.Cents != 70000 {
		t.Errorf("Single = %+v, want p2 / 70000", hi.Single)
	}
	if hi.Installment.PropertyID != "p2" || hi.Installment.Amount.Cents != 80000 {
		t.Errorf("Installment = %+v, want p2 / 80000", hi.Installment)
	}
}

func TestCountDebtors(t *testing.T) {
	props := []Property{
		{ID: "p1", Units: []PropertyUnit{unit(2023, StatusEmAberto, 50000)}},
		{ID: "p2", Units: []PropertyUnit{unit(2023, StatusPago, 50000)}},
		{ID: "p3", IptuHistory: []IptuRecord{{ID: "h", Year: 2020, Status: StatusPendente}}},
	}
	if got := CountDebtors(props, 2024); got != 2 {
		t.Errorf("CountDebtors() = %d, want 2", got)
	}
}

func TestPortfolioLiability(t *testing.T) {
	props := rollupProps()
	if got := PortfolioLiability(props, 2024).Cents; got != 90000 {
		t.Errorf("PortfolioLiability() = %d, want 90000", got)
	}
	if got := PortfolioLiability(props, 2020).Cents; got != 0 {
		t.Errorf("PortfolioLiability(empty year) = %d, want 0", got)
	}
}
