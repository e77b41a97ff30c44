package store

import (
	"encoding/json"
	"strconv"
	"strings"

	"predial/internal/core"
)

// The wire document is the JSON shape shared by every backend and by data
// imported from the legacy spreadsheet exports. Those exports carry numeric
// fields as strings ("landArea": "250,5") and amounts as decimal strings with
// a comma separator, so every numeric field decodes through a Flex type that
// coerces instead of failing. Malformed numerics coerce to zero; decoding a
// document never errors on bad field contents, only on broken JSON.

// FlexInt decodes from a JSON number or a numeric string.
type FlexInt int

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)
	if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		*f = FlexInt(i)
		return nil
	}
	if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		*f = FlexInt(int(v))
		return nil
	}
	*f = 0
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(f))), nil
}

// FlexFloat decodes from a JSON number or a numeric string, accepting both
// decimal separators.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	s = strings.ReplaceAll(s, ",", ".")
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*f = FlexFloat(v)
		return nil
	}
	*f = 0
	return nil
}

func (f FlexFloat) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(f), 'f', -1, 64)), nil
}

// FlexMoney decodes a currency amount, given in units (not cents), from a
// JSON number or a decimal string, into centavos. Negative and malformed
// amounts coerce to zero.
type FlexMoney int64

func (f *FlexMoney) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = 0
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	cents, err := core.ParseDecimalToCents(s)
	if err != nil {
		*f = 0
		return nil
	}
	*f = FlexMoney(cents)
	return nil
}

func (f FlexMoney) MarshalJSON() ([]byte, error) {
	cents := int64(f)
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return []byte(sign + strconv.FormatInt(cents/100, 10) + "." +
		func() string {
			r := strconv.FormatInt(cents%100, 10)
			if len(r) == 1 {
				return "0" + r
			}
			return r
		}()), nil
}

func (f FlexMoney) Money() core.Money {
	return core.Money{Cents: int64(f)}
}

type (
	propertyDoc struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Street       string `json:"street,omitempty"`
		Neighborhood string `json:"neighborhood,omitempty"`
		City         string `json:"city,omitempty"`
		State        string `json:"state,omitempty"`
		Zip          string `json:"zip,omitempty"`

		OwnerName     string `json:"ownerName,omitempty"`
		RegistryOwner string `json:"registryOwner,omitempty"`
		Possession    string `json:"possession,omitempty"`

		Type               string `json:"type,omitempty"`
		IsComplex          bool   `json:"isComplex,omitempty"`
		RegistrationNumber string `json:"registrationNumber,omitempty"`
		Sequential         string `json:"sequential,omitempty"`

		LandArea       FlexFloat `json:"landArea"`
		BuiltArea      FlexFloat `json:"builtArea"`
		AppraisalValue FlexMoney `json:"appraisalValue"`

		BaseYear    FlexInt `json:"baseYear,omitempty"`
		LastUpdated string  `json:"lastUpdated,omitempty"`

		Units       []unitDoc   `json:"units,omitempty"`
		Tenants     []tenantDoc `json:"tenants,omitempty"`
		IptuHistory []recordDoc `json:"iptuHistory,omitempty"`
	}

	unitDoc struct {
		Sequential string  `json:"sequential"`
		Year       FlexInt `json:"year"`

		SingleValue       FlexMoney `json:"singleValue"`
		InstallmentValue  FlexMoney `json:"installmentValue"`
		InstallmentsCount FlexInt   `json:"installmentsCount"`
		ChosenMethod      string    `json:"chosenMethod,omitempty"`
		Status            string    `json:"status,omitempty"`

		Address            string    `json:"address,omitempty"`
		RegistrationNumber string    `json:"registrationNumber,omitempty"`
		OwnerName          string    `json:"ownerName,omitempty"`
		RegistryOwner      string    `json:"registryOwner,omitempty"`
		LandArea           FlexFloat `json:"landArea,omitempty"`
		BuiltArea          FlexFloat `json:"builtArea,omitempty"`
		DueDate            string    `json:"dueDate,omitempty"`
	}

	tenantDoc struct {
		ID                 string    `json:"id"`
		Year               FlexInt   `json:"year"`
		Name               string    `json:"name"`
		OccupiedArea       FlexFloat `json:"occupiedArea"`
		IsSingleTenant     bool      `json:"isSingleTenant,omitempty"`
		ManualPercentage   *float64  `json:"manualPercentage,omitempty"`
		SelectedSequential string    `json:"selectedSequential,omitempty"`
	}

	recordDoc struct {
		ID                  string    `json:"id"`
		Year                FlexInt   `json:"year"`
		Value               FlexMoney `json:"value"`
		Status              string    `json:"status,omitempty"`
		SingleValue         FlexMoney `json:"singleValue,omitempty"`
		InstallmentValue    FlexMoney `json:"installmentValue,omitempty"`
		InstallmentsCount   FlexInt   `json:"installmentsCount,omitempty"`
		ChosenMethod        string    `json:"chosenMethod,omitempty"`
		HolmesCompany       string    `json:"holmesCompany,omitempty"`
		StartDate           string    `json:"startDate,omitempty"`
		DueDate             string    `json:"dueDate,omitempty"`
		SelectedSequentials []string  `json:"selectedSequentials,omitempty"`
	}
)

// DecodeUnits parses a wire array of unit documents, with the same numeric
// coercion rules as DecodeProperty. The HTTP layer shares this with the
// store codecs so request bodies and stored documents use one shape.
func DecodeUnits(data []byte) ([]core.PropertyUnit, error) {
	var docs []unitDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	doc := propertyDoc{Units: docs}
	return doc.toDomain().Units, nil
}

// DecodeTenants parses a wire array of tenant documents.
func DecodeTenants(data []byte) ([]core.Tenant, error) {
	var docs []tenantDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	doc := propertyDoc{Tenants: docs}
	return doc.toDomain().Tenants, nil
}

// DecodeRecords parses a wire array of history record documents.
func DecodeRecords(data []byte) ([]core.IptuRecord, error) {
	var docs []recordDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, err
	}
	doc := propertyDoc{IptuHistory: docs}
	return doc.toDomain().IptuHistory, nil
}

// DecodeProperty parses a wire document into the domain model. Status and
// method strings are kept as stored; comparisons in core are
// case-insensitive, so legacy casing survives the round trip.
func DecodeProperty(data []byte) (core.Property, error) {
	var doc propertyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return core.Property{}, err
	}
	return doc.toDomain(), nil
}

// EncodeProperty serializes a property to the wire document.
func EncodeProperty(p core.Property) ([]byte, error) {
	return json.Marshal(docFromDomain(p))
}

func (doc propertyDoc) toDomain() core.Property {
	p := core.Property{
		ID:           doc.ID,
		Name:         doc.Name,
		Street:       doc.Street,
		Neighborhood: doc.Neighborhood,
		City:         doc.City,
		State:        doc.State,
		Zip:          doc.Zip,

		OwnerName:     doc.OwnerName,
		RegistryOwner: doc.RegistryOwner,
		Possession:    core.Possession(doc.Possession),

		Type:               core.PropertyType(doc.Type),
		IsComplex:          doc.IsComplex,
		RegistrationNumber: doc.RegistrationNumber,
		Sequential:         doc.Sequential,

		LandArea:       float64(doc.LandArea),
		BuiltArea:      float64(doc.BuiltArea),
		AppraisalValue: doc.AppraisalValue.Money(),

		BaseYear:    int(doc.BaseYear),
		LastUpdated: doc.LastUpdated,
	}
	for _, u := range doc.Units {
		p.Units = append(p.Units, core.PropertyUnit{
			Sequential:         u.Sequential,
			Year:               int(u.Year),
			SingleValue:        u.SingleValue.Money(),
			InstallmentValue:   u.InstallmentValue.Money(),
			InstallmentsCount:  int(u.InstallmentsCount),
			ChosenMethod:       core.PaymentMethod(u.ChosenMethod),
			Status:             core.Status(u.Status),
			Address:            u.Address,
			RegistrationNumber: u.RegistrationNumber,
			OwnerName:          u.OwnerName,
			RegistryOwner:      u.RegistryOwner,
			LandArea:           float64(u.LandArea),
			BuiltArea:          float64(u.BuiltArea),
			DueDate:            u.DueDate,
		})
	}
	for _, t := range doc.Tenants {
		p.Tenants = append(p.Tenants, core.Tenant{
			ID:                 t.ID,
			Year:               int(t.Year),
			Name:               t.Name,
			OccupiedArea:       float64(t.OccupiedArea),
			IsSingleTenant:     t.IsSingleTenant,
			ManualPercentage:   t.ManualPercentage,
			SelectedSequential: t.SelectedSequential,
		})
	}
	for _, r := range doc.IptuHistory {
		p.IptuHistory = append(p.IptuHistory, core.IptuRecord{
			ID:                  r.ID,
			Year:                int(r.Year),
			Value:               r.Value.Money(),
			Status:              core.Status(r.Status),
			SingleValue:         r.SingleValue.Money(),
			InstallmentValue:    r.InstallmentValue.Money(),
			InstallmentsCount:   int(r.InstallmentsCount),
			ChosenMethod:        core.PaymentMethod(r.ChosenMethod),
			HolmesCompany:       r.HolmesCompany,
			StartDate:           r.StartDate,
			DueDate:             r.DueDate,
			SelectedSequentials: r.SelectedSequentials,
		})
	}
	return p
}

func docFromDomain(p core.Property) propertyDoc {
	doc := propertyDoc{
		ID:           p.ID,
		Name:         p.Name,
		Street:       p.Street,
		Neighborhood: p.Neighborhood,
		City:         p.City,
		State:        p.State,
		Zip:          p.Zip,

		OwnerName:     p.OwnerName,
		RegistryOwner: p.RegistryOwner,
		Possession:    string(p.Possession),

		Type:               string(p.Type),
		IsComplex:          p.IsComplex,
		RegistrationNumber: p.RegistrationNumber,
		Sequential:         p.Sequential,

		LandArea:       FlexFloat(p.LandArea),
		BuiltArea:      FlexFloat(p.BuiltArea),
		AppraisalValue: FlexMoney(p.AppraisalValue.Cents),

		BaseYear:    FlexInt(p.BaseYear),
		LastUpdated: p.LastUpdated,
	}
	for _, u := range p.Units {
		doc.Units = append(doc.Units, unitDoc{
			Sequential:         u.Sequential,
			Year:               FlexInt(u.Year),
			SingleValue:        FlexMoney(u.SingleValue.Cents),
			InstallmentValue:   FlexMoney(u.InstallmentValue.Cents),
			InstallmentsCount:  FlexInt(u.InstallmentsCount),
			ChosenMethod:       string(u.ChosenMethod),
			Status:             string(u.Status),
			Address:            u.Address,
			RegistrationNumber: u.RegistrationNumber,
			OwnerName:          u.OwnerName,
			RegistryOwner:      u.RegistryOwner,
			LandArea:           FlexFloat(u.LandArea),
			BuiltArea:          FlexFloat(u.BuiltArea),
			DueDate:            u.DueDate,
		})
	}
	for _, t := range p.Tenants {
		doc.Tenants = append(doc.Tenants, tenantDoc{
			ID:                 t.ID,
			Year:               FlexInt(t.Year),
			Name:               t.Name,
			OccupiedArea:       FlexFloat(t.OccupiedArea),
			IsSingleTenant:     t.IsSingleTenant,
			ManualPercentage:   t.ManualPercentage,
			SelectedSequential: t.SelectedSequential,
		})
	}
	for _, r := range p.IptuHistory {
		doc.IptuHistory = append(doc.IptuHistory, recordDoc{
			ID:                  r.ID,
			Year:                FlexInt(r.Year),
			Value:               FlexMoney(r.Value.Cents),
			Status:              string(r.Status),
			SingleValue:         FlexMoney(r.SingleValue.Cents),
			InstallmentValue:    FlexMoney(r.InstallmentValue.Cents),
			InstallmentsCount:   FlexInt(r.InstallmentsCount),
			ChosenMethod:        string(r.ChosenMethod),
			HolmesCompany:       r.HolmesCompany,
			StartDate:           r.StartDate,
			DueDate:             r.DueDate,
			SelectedSequentials: r.SelectedSequentials,
		})
	}
	return doc
}
