package store

import (
	"encoding/json"
	"testing"

	"predial/internal/core"
)

func TestDecodePropertyLegacyStrings(t *testing.T) {
	// Field shape as exported by the legacy spreadsheet: numerics as strings,
	// comma decimal separator, mixed-case status.
	data := []byte(`{
		"id": "p1",
		"name": "Galpão Centro",
		"city": "Fortaleza",
		"state": "CE",
		"landArea": "250,5",
		"builtArea": "180",
		"appraisalValue": "350000,00",
		"baseYear": "2024",
		"units": [
			{
				"sequential": "123456-7",
				"year": "2024",
				"singleValue": "1200,50",
				"installmentValue": "",
				"installmentsCount": "0",
				"chosenMethod": "Cota Única",
				"status": "PAGO"
			}
		],
		"tenants": [
			{"id": "t1", "year": 2024, "name": "Loja A", "occupiedArea": "90,5"}
		],
		"iptuHistory": [
			{"id": "h1", "year": "2022", "value": "980,00", "status": ""}
		]
	}`)

	p, err := DecodeProperty(data)
	if err != nil {
		t.Fatalf("DecodeProperty: %v", err)
	}
	if p.LandArea != 250.5 {
		t.Errorf("LandArea = %v, want 250.5", p.LandArea)
	}
	if p.AppraisalValue.Cents != 35000000 {
		t.Errorf("AppraisalValue = %d cents, want 35000000", p.AppraisalValue.Cents)
	}
	if p.BaseYear != 2024 {
		t.Errorf("BaseYear = %d, want 2024", p.BaseYear)
	}
	if len(p.Units) != 1 {
		t.Fatalf("got %d units, want 1", len(p.Units))
	}
	u := p.Units[0]
	if u.SingleValue.Cents != 120050 {
		t.Errorf("SingleValue = %d cents, want 120050", u.SingleValue.Cents)
	}
	if u.InstallmentValue.Cents != 0 {
		t.Errorf("empty InstallmentValue should coerce to 0, got %d", u.InstallmentValue.Cents)
	}
	if !u.Status.Is(core.StatusPago) {
		t.Errorf("status %q should compare equal to Pago", u.Status)
	}
	if p.Tenants[0].OccupiedArea != 90.5 {
		t.Errorf("OccupiedArea = %v, want 90.5", p.Tenants[0].OccupiedArea)
	}
	if p.IptuHistory[0].Value.Cents != 98000 {
		t.Errorf("history value = %d cents, want 98000", p.IptuHistory[0].Value.Cents)
	}
}

func TestDecodePropertyMalformedNumericsCoerceToZero(t *testing.T) {
	data := []byte(`{
		"id": "p1",
		"name": "Casa",
		"landArea": "n/a",
		"appraisalValue": "abc",
		"baseYear": "dois mil",
		"units": [{"sequential": "1", "year": "bad", "singleValue": "-50"}]
	}`)

	p, err := DecodeProperty(data)
	if err != nil {
		t.Fatalf("DecodeProperty should coerce, not fail: %v", err)
	}
	if p.LandArea != 0 || p.AppraisalValue.Cents != 0 || p.BaseYear != 0 {
		t.Errorf("malformed numerics should coerce to zero: %+v", p)
	}
	if p.Units[0].SingleValue.Cents != 0 {
		t.Errorf("negative amount should coerce to zero, got %d", p.Units[0].SingleValue.Cents)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pct := 60.0
	in := core.Property{
		ID:             "p1",
		Name:           "Edifício Sul",
		City:           "São Paulo",
		State:          "SP",
		LandArea:       1000,
		BuiltArea:      850.25,
		AppraisalValue: core.Money{Cents: 123456789},
		BaseYear:       2025,
		Units: []core.PropertyUnit{
			{
				Sequential:        "555-1",
				Year:              2025,
				InstallmentValue:  core.Money{Cents: 180000},
				InstallmentsCount: 10,
				ChosenMethod:      core.Parcelado,
				Status:            core.StatusEmAndamento,
			},
		},
		Tenants: []core.Tenant{
			{ID: "t1", Year: 2025, Name: "Inquilino", OccupiedArea: 400, ManualPercentage: &pct},
		},
		IptuHistory: []core.IptuRecord{
			{ID: "h1", Year: 2023, Value: core.Money{Cents: 95000}, Status: core.StatusPago, SelectedSequentials: []string{"555-1"}},
		},
	}

	data, err := EncodeProperty(in)
	if err != nil {
		t.Fatalf("EncodeProperty: %v", err)
	}
	out, err := DecodeProperty(data)
	if err != nil {
		t.Fatalf("DecodeProperty: %v", err)
	}
	if out.AppraisalValue != in.AppraisalValue {
		t.Errorf("AppraisalValue = %v, want %v", out.AppraisalValue, in.AppraisalValue)
	}
	if out.BuiltArea != in.BuiltArea {
		t.Errorf("BuiltArea = %v, want %v", out.BuiltArea, in.BuiltArea)
	}
	if out.Units[0].InstallmentValue.Cents != 180000 {
		t.Errorf("InstallmentValue = %d, want 180000", out.Units[0].InstallmentValue.Cents)
	}
	if out.Tenants[0].ManualPercentage == nil || *out.Tenants[0].ManualPercentage != 60.0 {
		t.Errorf("ManualPercentage did not survive round trip: %v", out.Tenants[0].ManualPercentage)
	}
	if len(out.IptuHistory[0].SelectedSequentials) != 1 {
		t.Errorf("SelectedSequentials lost: %+v", out.IptuHistory[0])
	}
}

func TestFlexMoneyMarshal(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{123456, "1234.56"},
		{5, "0.05"},
		{0, "0.00"},
		{100, "1.00"},
	}
	for _, tt := range tests {
		got, err := json.Marshal(FlexMoney(tt.cents))
		if err != nil {
			t.Fatalf("marshal %d: %v", tt.cents, err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%d) = %s, want %s", tt.cents, got, tt.want)
		}
	}
}
