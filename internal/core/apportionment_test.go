package core

import (
	"math"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func propertyWithLiability(totalCents int64, tenants []Tenant) Property {
	return Property{
		Name: "Galpão Industrial",
		Units: []PropertyUnit{{
			Sequential:   "001",
			Year:         2024,
			ChosenMethod: CotaUnica,
			Status:       StatusEmAberto,
			SingleValue:  Money{Cents: totalCents},
		}},
		Tenants: tenants,
	}
}

func TestComputeApportionment_AreaProration(t *testing.T) {
	p := propertyWithLiability(100000, []Tenant{
		{ID: "t1", Year: 2024, Name: "Mercearia Silva", OccupiedArea: 100},
		{ID: "t2", Year: 2024, Name: "Depósito Souza", OccupiedArea: 300},
	})

	rows := ComputeApportionment(p, 2024)
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if !almostEqual(rows[0].Percentage, 25) || !almostEqual(rows[0].Amount, 250) {
		t.Errorf("first tenant = %.2f%% / %.2f, want 25%% / 250", rows[0].Percentage, rows[0].Amount)
	}
	if !almostEqual(rows[1].Percentage, 75) || !almostEqual(rows[1].Amount, 750) {
		t.Errorf("second tenant = %.2f%% / %.2f, want 75%% / 750", rows[1].Percentage, rows[1].Amount)
	}
}

func TestComputeApportionment_AreaTotalsMatchLiability(t *testing.T) {
	p := propertyWithLiability(123457, []Tenant{
		{ID: "t1", Year: 2024, Name: "A", OccupiedArea: 37.5},
		{ID: "t2", Year: 2024, Name: "B", OccupiedArea: 101.3},
		{ID: "t3", Year: 2024, Name: "C", OccupiedArea: 11.11},
	})

	rows := ComputeApportionment(p, 2024)
	var sum float64
	for _, r := range rows {
		sum += r.Amount
	}
	if !almostEqual(sum, p.TotalLiability(2024).Reais()) {
		t.Errorf("sum of amounts %.6f != total liability %.6f", sum, p.TotalLiability(2024).Reais())
	}
}

func TestComputeApportionment_SingleTenantOverride(t *testing.T) {
	p := propertyWithLiability(100000, []Tenant{
		{ID: "t1", Year: 2024, Name: "A", OccupiedArea: 500},
		{ID: "t2", Year: 2024, Name: "B", OccupiedArea: 10, IsSingleTenant: true},
		{ID: "t3", Year: 2024, Name: "C", OccupiedArea: 500},
	})

	rows := ComputeApportionment(p, 2024)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for _, r := range rows {
		wantPct, wantAmt := 0.0, 0.0
		if r.TenantID == "t2" {
			wantPct, wantAmt = 100, 1000
		}
		if !almostEqual(r.Percentage, wantPct) || !almostEqual(r.Amount, wantAmt) {
			t.Errorf("tenant %s = %.2f%% / %.2f, want %.2f%% / %.2f",
				r.TenantID, r.Percentage, r.Amount, wantPct, wantAmt)
		}
	}
}

func TestComputeApportionment_SingleTenantOverrideWithBlankIDs(t *testing.T) {
	// Tenants straight from a form submission carry no ids yet; only the
	// flagged row may take the total.
	p := propertyWithLiability(100000, []Tenant{
		{Year: 2024, Name: "A", OccupiedArea: 500},
		{Year: 2024, Name: "B", OccupiedArea: 10, IsSingleTenant: true},
		{Year: 2024, Name: "C", OccupiedArea: 500},
	})

	rows := ComputeApportionment(p, 2024)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	for i, r := range rows {
		wantPct, wantAmt := 0.0, 0.0
		if i == 1 {
			wantPct, wantAmt = 100, 1000
		}
		if !almostEqual(r.Percentage, wantPct) || !almostEqual(r.Amount, wantAmt) {
			t.Errorf("row %d (%s) = %.2f%% / %.2f, want %.2f%% / %.2f",
				i, r.Name, r.Percentage, r.Amount, wantPct, wantAmt)
		}
	}
}

func TestComputeApportionment_ManualPercentagesNotNormalized(t *testing.T) {
	// Two tenants at 60% each on a total of 1000: both get 600. The sum
	// (1200) exceeding the total is accepted pass-through behavior.
	p := propertyWithLiability(100000, []Tenant{
		{ID: "t1", Year: 2024, Name: "A", OccupiedArea: 100, ManualPercentage: floatPtr(60)},
		{ID: "t2", Year: 2024, Name: "B", OccupiedArea: 900, ManualPercentage: floatPtr(60)},
	})

	rows := ComputeApportionment(p, 2024)
	for _, r := range rows {
		if !almostEqual(r.Percentage, 60) || !almostEqual(r.Amount, 600) {
			t.Errorf("tenant %s = %.2f%% / %.2f, want 60%% / 600", r.TenantID, r.Percentage, r.Amount)
		}
	}
}

func TestComputeApportionment_ManualPercentageMissingOnSibling(t *testing.T) {
	p := propertyWithLiability(100000, []Tenant{
		{ID: "t1", Year: 2024, Name: "A", OccupiedArea: 100, ManualPercentage: floatPtr(40)},
		{ID: "t2", Year: 2024, Name: "B", OccupiedArea: 100},
	})

	rows := ComputeApportionment(p, 2024)
	if !almostEqual(rows[0].Percentage, 40) || !almostEqual(rows[0].Amount, 400) {
		t.Errorf("manual tenant = %.2f%% / %.2f, want 40%% / 400", rows[0].Percentage, rows[0].Amount)
	}
	if !almostEqual(rows[1].Percentage, 0) || !almostEqual(rows[1].Amount, 0) {
		t.Errorf("tenant without manual percentage = %.2f%% / %.2f, want 0 / 0", rows[1].Percentage, rows[1].Amount)
	}
}

func TestComputeApportionment_ZeroAreaGuard(t *testing.T) {
	p := propertyWithLiability(100000, []Tenant{
		{ID: "t1", Year: 2024, Name: "A"},
		{ID: "t2", Year: 2024, Name: "B"},
	})

	rows := ComputeApportionment(p, 2024)
	for _, r := range rows {
		if r.Percentage != 0 || r.Amount != 0 {
			t.Errorf("tenant %s = %.2f%% / %.2f, want zeros", r.TenantID, r.Percentage, r.Amount)
		}
		if math.IsNaN(r.Percentage) || math.IsInf(r.Percentage, 0) {
			t.Errorf("tenant %s percentage is not finite", r.TenantID)
		}
	}
}

func TestComputeApportionment_EmptyTenants(t *testing.T) {
	p := propertyWithLiability(100000, nil)
	if rows := ComputeApportionment(p, 2024); rows != nil {
		t.Errorf("got %d rows for empty tenant list, want nil", len(rows))
	}
}

func TestComputeApportionment_IgnoresOtherYears(t *testing.T) {
	p := propertyWithLiability(100000, []Tenant{
		{ID: "t1", Year: 2024, Name: "A", OccupiedArea: 100},
		{ID: "t2", Year: 2023, Name: "B", OccupiedArea: 900},
	})

	rows := ComputeApportionment(p, 2024)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if !almostEqual(rows[0].Percentage, 100) || !almostEqual(rows[0].Amount, 1000) {
		t.Errorf("sole 2024 tenant = %.2f%% / %.2f, want 100%% / 1000", rows[0].Percentage, rows[0].Amount)
	}
}

func TestComputeApportionment_ParceladoUnitsUseInstallmentValue(t *testing.T) {
	p := Property{
		Name: "Complexo Sul",
		Units: []PropertyUnit{
			{Sequential: "001", Year: 2024, ChosenMethod: Parcelado, InstallmentsCount: 10,
				SingleValue: Money{Cents: 90000}, InstallmentValue: Money{Cents: 100000}, Status: StatusEmAndamento},
			{Sequential: "002", Year: 2024, ChosenMethod: CotaUnica,
				SingleValue: Money{Cents: 50000}, InstallmentValue: Money{Cents: 60000}, Status: StatusPago},
			{Sequential: "003", Year: 2024, ChosenMethod: MethodEmAberto, Status: StatusEmAberto},
		},
		Tenants: []Tenant{{ID: "t1", Year: 2024, Name: "A", OccupiedArea: 50}},
	}

	rows := ComputeApportionment(p, 2024)
	// 1000.00 (parcelado) + 500.00 (cota única) + 0 (em aberto, no amount)
	if !almostEqual(rows[0].Amount, 1500) {
		t.Errorf("amount = %.2f, want 1500", rows[0].Amount)
	}
}
