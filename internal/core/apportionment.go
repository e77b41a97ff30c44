package core

// ApportionmentRow is one tenant's computed share of a property's yearly
// liability.
type ApportionmentRow struct {
	TenantID   string
	Name       string
	Percentage float64
	Amount     float64 // currency units
}

// ComputeApportionment splits the property's total liability for a year
// across its tenants. The total is the cent-exact sum of effective unit
// charges, converted to currency units for the per-tenant shares.
//
// Resolution order:
//
//   - Single-tenant override: a tenant flagged IsSingleTenant takes 100% of
//     the total; every sibling of that year gets 0.
//   - Manual percentages: if any tenant of the year carries a
//     ManualPercentage, each tenant's share is its entered percentage of the
//     total. Percentages are taken as entered and are NOT normalized: the
//     shares may legitimately sum to more or less than the total. That is
//     accepted behavior, not a bug to fix here.
//   - Area proration (default): share = occupiedArea / totalOccupiedArea.
//     A zero total area yields all-zero rows rather than dividing by zero.
//
// Input tenant order is preserved; an empty tenant list yields nil.
func ComputeApportionment(p Property, year int) []ApportionmentRow {
	tenants := p.TenantsForYear(year)
	if len(tenants) == 0 {
		return nil
	}
	total := p.TotalLiability(year).Reais()
	rows := make([]ApportionmentRow, 0, len(tenants))

	for i, t := range tenants {
		if t.IsSingleTenant {
			// Match by position: ids may be blank before the service layer
			// assigns them.
			for j, tt := range tenants {
				row := ApportionmentRow{TenantID: tt.ID, Name: tt.Name}
				if j == i {
					row.Percentage = 100
					row.Amount = total
				}
				rows = append(rows, row)
			}
			return rows
		}
	}

	manual := false
	for _, t := range tenants {
		if t.ManualPercentage != nil {
			manual = true
			break
		}
	}
	if manual {
		for _, t := range tenants {
			pct := 0.0
			if t.ManualPercentage != nil {
				pct = *t.ManualPercentage
			}
			rows = append(rows, ApportionmentRow{
				TenantID:   t.ID,
				Name:       t.Name,
				Percentage: pct,
				Amount:     total * pct / 100,
			})
		}
		return rows
	}

	var totalArea float64
	for _, t := range tenants {
		totalArea += t.OccupiedArea
	}
	for _, t := range tenants {
		row := ApportionmentRow{TenantID: t.ID, Name: t.Name}
		if totalArea > 0 {
			row.Percentage = t.OccupiedArea / totalArea * 100
			row.Amount = total * row.Percentage / 100
		}
		rows = append(rows, row)
	}
	return rows
}
