package core

import (
	"errors"
	"strings"
)

const (
	StatusPago        Status = "Pago"
	StatusPendente    Status = "Pendente"
	StatusEmAndamento Status = "Em andamento"
	StatusEmAberto    Status = "Em aberto"
)

const (
	CotaUnica      PaymentMethod = "Cota Única"
	Parcelado      PaymentMethod = "Parcelado"
	MethodEmAberto PaymentMethod = "Em aberto"
)

const (
	PossessionGrupo      Possession = "Grupo"
	PossessionTerceiros  Possession = "Terceiros"
	PossessionEspecifico Possession = "Específico"
)

const (
	TypeTerreno     PropertyType = "Terreno"
	TypeCasa        PropertyType = "Casa"
	TypeApartamento PropertyType = "Apartamento"
	TypeLoja        PropertyType = "Loja"
	TypeGalpao      PropertyType = "Galpão"
	TypeEdificio    PropertyType = "Edifício"
	TypeOutro       PropertyType = "Outro"
)

type (
	// Status is the payment status of a charge. Legacy records carry
	// free-form casing, so comparisons go through Is.
	Status string

	// PaymentMethod selects which charge amount is authoritative for a unit.
	PaymentMethod string

	Possession   string
	PropertyType string

	// Property is one taxable real-estate asset. It owns its units, tenants
	// and legacy history exclusively; records are replaced whole on edit.
	Property struct {
		ID           string
		Name         string
		Street       string
		Neighborhood string
		City         string
		State        string
		Zip          string

		OwnerName     string
		RegistryOwner string
		Possession    Possession

		Type               PropertyType
		IsComplex          bool
		RegistrationNumber string
		Sequential         string

		LandArea       float64 // m²
		BuiltArea      float64 // m²
		AppraisalValue Money

		BaseYear    int
		LastUpdated string // display-formatted, e.g. "31/08/2026"

		Units       []PropertyUnit
		Tenants     []Tenant
		IptuHistory []IptuRecord
	}

	// PropertyUnit is one tax sequential's charge for one year. The pair
	// (Sequential, Year) identifies it within its property; for a given year
	// the units are the complete charge ledger and supersede IptuHistory.
	PropertyUnit struct {
		Sequential string
		Year       int

		SingleValue       Money
		InstallmentValue  Money
		InstallmentsCount int
		ChosenMethod      PaymentMethod
		Status            Status

		// Optional descriptive fields carried from the tax authority record.
		Address            string
		RegistrationNumber string
		OwnerName          string
		RegistryOwner      string
		LandArea           float64
		BuiltArea          float64
		DueDate            string
	}

	// Tenant is one occupant's share of a property for one year.
	Tenant struct {
		ID                 string
		Year               int
		Name               string
		OccupiedArea       float64 // m², ignored when IsSingleTenant
		IsSingleTenant     bool
		ManualPercentage   *float64 // overrides area proration when set
		SelectedSequential string
	}

	// IptuRecord is one historical charge entry, the legacy ledger kept for
	// years that predate per-unit tracking.
	IptuRecord struct {
		ID                  string
		Year                int
		Value               Money // effective/final amount
		Status              Status
		SingleValue         Money
		InstallmentValue    Money
		InstallmentsCount   int
		ChosenMethod        PaymentMethod
		HolmesCompany       string
		StartDate           string
		DueDate             string
		SelectedSequentials []string
	}
)

var (
	ErrEmptyName           = errors.New("empty name")
	ErrEmptySequential     = errors.New("empty sequential")
	ErrInvalidYear         = errors.New("invalid year")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidInstallments = errors.New("invalid installments count")
	ErrNegativeArea        = errors.New("negative area")
	ErrInvalidPercentage   = errors.New("invalid percentage")
)

// ParseStatus coerces a free-form status string to a canonical Status.
// Unknown or empty input defaults to Pendente, matching how legacy rows with
// a missing status are treated.
func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pago", "paga":
		return StatusPago
	case "em andamento", "andamento":
		return StatusEmAndamento
	case "em aberto", "aberto":
		return StatusEmAberto
	default:
		return StatusPendente
	}
}

// Is compares statuses case-insensitively.
func (s Status) Is(other Status) bool {
	return strings.EqualFold(strings.TrimSpace(string(s)), string(other))
}

// ParsePaymentMethod coerces a free-form method string. Unknown or empty
// input defaults to Em aberto (no authoritative amount chosen yet).
func ParsePaymentMethod(s string) PaymentMethod {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cota única", "cota unica", "única", "unica":
		return CotaUnica
	case "parcelado", "parcelada":
		return Parcelado
	default:
		return MethodEmAberto
	}
}

// Is compares payment methods case-insensitively.
func (m PaymentMethod) Is(other PaymentMethod) bool {
	return strings.EqualFold(strings.TrimSpace(string(m)), string(other))
}

// ParsePossession coerces a possession string, defaulting to Terceiros.
func ParsePossession(s string) Possession {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "grupo":
		return PossessionGrupo
	case "específico", "especifico":
		return PossessionEspecifico
	default:
		return PossessionTerceiros
	}
}

func validYear(year int) bool {
	return year >= 1900 && year <= 2200
}

func (p Property) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.BaseYear != 0 && !validYear(p.BaseYear) {
		return ErrInvalidYear
	}
	if p.LandArea < 0 || p.BuiltArea < 0 {
		return ErrNegativeArea
	}
	for _, u := range p.Units {
		if err := u.Validate(); err != nil {
			return err
		}
	}
	for _, t := range p.Tenants {
		if err := t.Validate(); err != nil {
			return err
		}
	}
	for _, r := range p.IptuHistory {
		if err := r.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (u PropertyUnit) Validate() error {
	if strings.TrimSpace(u.Sequential) == "" {
		return ErrEmptySequential
	}
	if !validYear(u.Year) {
		return ErrInvalidYear
	}
	if u.SingleValue.Cents < 0 || u.InstallmentValue.Cents < 0 {
		return ErrInvalidAmount
	}
	if u.InstallmentsCount < 0 || u.InstallmentsCount > 12 {
		return ErrInvalidInstallments
	}
	if u.ChosenMethod.Is(Parcelado) && u.InstallmentsCount < 1 {
		return ErrInvalidInstallments
	}
	if u.LandArea < 0 || u.BuiltArea < 0 {
		return ErrNegativeArea
	}
	return nil
}

func (t Tenant) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if !validYear(t.Year) {
		return ErrInvalidYear
	}
	if t.OccupiedArea < 0 {
		return ErrNegativeArea
	}
	if t.ManualPercentage != nil && *t.ManualPercentage < 0 {
		return ErrInvalidPercentage
	}
	return nil
}

func (r IptuRecord) Validate() error {
	if !validYear(r.Year) {
		return ErrInvalidYear
	}
	if r.Value.Cents < 0 || r.SingleValue.Cents < 0 || r.InstallmentValue.Cents < 0 {
		return ErrInvalidAmount
	}
	if r.InstallmentsCount < 0 || r.InstallmentsCount > 12 {
		return ErrInvalidInstallments
	}
	return nil
}

// EffectiveCharge returns the authoritative amount for the unit: the
// installment total when the method is Parcelado, the lump sum otherwise.
// An Em aberto unit with no value entered yields zero, which is valid.
func (u PropertyUnit) EffectiveCharge() Money {
	if u.ChosenMethod.Is(Parcelado) {
		return u.InstallmentValue
	}
	return u.SingleValue
}

// UnitsForYear returns the units filtered to exactly the given year,
// preserving input order.
func (p Property) UnitsForYear(year int) []PropertyUnit {
	var out []PropertyUnit
	for _, u := range p.Units {
		if u.Year == year {
			out = append(out, u)
		}
	}
	return out
}

// TenantsForYear returns the tenants filtered to the given year,
// preserving input order.
func (p Property) TenantsForYear(year int) []Tenant {
	var out []Tenant
	for _, t := range p.Tenants {
		if t.Year == year {
			out = append(out, t)
		}
	}
	return out
}

// TotalLiability sums the effective charge of every unit for the year.
func (p Property) TotalLiability(year int) Money {
	var cents int64
	for _, u := range p.Units {
		if u.Year == year {
			cents += u.EffectiveCharge().Cents
		}
	}
	return Money{Cents: cents}
}

// SetSingleTenant marks the tenant with the given id as bearing 100% of the
// charge for its year and clears the flag on every sibling of the same year.
// Returns false if no tenant matches the id.
func (p *Property) SetSingleTenant(tenantID string) bool {
	year := 0
	found := false
	for _, t := range p.Tenants {
		if t.ID == tenantID {
			year = t.Year
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for i := range p.Tenants {
		if p.Tenants[i].Year != year {
			continue
		}
		p.Tenants[i].IsSingleTenant = p.Tenants[i].ID == tenantID
	}
	return true
}

// CoveredSequentials returns the sequentials already claimed by history
// records of the given year, excluding the record with the given id.
// Used to reject double-coverage at entry time.
func (p Property) CoveredSequentials(year int, excludeRecordID string) map[string]bool {
	covered := make(map[string]bool)
	for _, r := range p.IptuHistory {
		if r.Year != year || r.ID == excludeRecordID {
			continue
		}
		for _, seq := range r.SelectedSequentials {
			covered[seq] = true
		}
	}
	return covered
}
