package core

import "strings"

// ResolvePropertyStatus derives a property's aggregate status for a year from
// its per-unit charge records. A year with no units is Pendente, not an
// error. Otherwise the priority chain is strict:
//
//  1. every unit Pago           -> Pago
//  2. any unit Em andamento     -> Em andamento
//  3. any unit Em aberto        -> Em aberto
//  4. otherwise                 -> Pendente
//
// Em andamento outranks Em aberto deliberately: an open charge under active
// remediation is displayed as in progress. The UI depends on this exact
// ordering, so keep it even though it is not a natural severity order.
func ResolvePropertyStatus(p Property, year int) Status {
	units := p.UnitsForYear(year)
	if len(units) == 0 {
		return StatusPendente
	}

	allPago := true
	anyAndamento := false
	anyAberto := false
	for _, u := range units {
		if !u.Status.Is(StatusPago) {
			allPago = false
		}
		if u.Status.Is(StatusEmAndamento) {
			anyAndamento = true
		}
		if u.Status.Is(StatusEmAberto) {
			anyAberto = true
		}
	}

	switch {
	case allPago:
		return StatusPago
	case anyAndamento:
		return StatusEmAndamento
	case anyAberto:
		return StatusEmAberto
	default:
		return StatusPendente
	}
}

// HasPriorDebt reports whether the property has unresolved charges from any
// year strictly before referenceYear. It drives the debt warning badge
// independently of the current year's status.
//
// Units are the primary source: a prior-year unit counts as debt when its
// status is not Pago and it carries a nonzero amount (zero-amount unpaid
// rows are placeholders, not debt). IptuHistory is consulted only for prior
// years that have no unit-level data at all, so a year superseded by units
// is never double-counted; a history record with a blank status is treated
// as Pendente and counts as debt.
func HasPriorDebt(p Property, referenceYear int) bool {
	yearsWithUnits := make(map[int]bool)
	for _, u := range p.Units {
		if u.Year >= referenceYear {
			continue
		}
		yearsWithUnits[u.Year] = true
		if u.Status.Is(StatusPago) {
			continue
		}
		if u.SingleValue.Cents > 0 || u.InstallmentValue.Cents > 0 {
			return true
		}
	}

	for _, r := range p.IptuHistory {
		if r.Year >= referenceYear || yearsWithUnits[r.Year] {
			continue
		}
		status := r.Status
		if strings.TrimSpace(string(status)) == "" {
			status = StatusPendente
		}
		if !status.Is(StatusPago) {
			return true
		}
	}

	return false
}
