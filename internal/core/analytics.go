package core

import (
	"sort"
	"strings"
	"unicode"
)

type (
	// YearComparison is a year-over-year delta of effective liability.
	YearComparison struct {
		Current  Money
		Previous Money
		Diff     Money
		Pct      float64
	}

	// RollupRow is one group of a geographic rollup.
	RollupRow struct {
		Key        string
		Total      Money
		Properties int
	}

	// DistributionBucket is one bucket of a unit count distribution.
	DistributionBucket struct {
		Label      string
		Count      int
		Percentage float64
	}

	// ChargeHighlight identifies the unit carrying the maximum charge of a
	// kind across the portfolio.
	ChargeHighlight struct {
		PropertyID   string
		PropertyName string
		Sequential   string
		Amount       Money
	}

	// ChargeHighlights holds the per-year maxima for both charge kinds.
	ChargeHighlights struct {
		Single      ChargeHighlight
		Installment ChargeHighlight
	}
)

// CompareYears computes current minus previous with the zero-previous guard:
// a zero previous year yields 0%, never Inf or NaN, even when current > 0.
func CompareYears(current, previous Money) YearComparison {
	cmp := YearComparison{
		Current:  current,
		Previous: previous,
		Diff:     Money{Cents: current.Cents - previous.Cents},
	}
	if previous.Cents > 0 {
		cmp.Pct = float64(cmp.Diff.Cents) / float64(previous.Cents) * 100
	}
	return cmp
}

// PortfolioLiability sums the effective yearly liability of every property.
func PortfolioLiability(props []Property, year int) Money {
	var cents int64
	for _, p := range props {
		cents += p.TotalLiability(year).Cents
	}
	return Money{Cents: cents}
}

// CountDebtors counts properties with unresolved charges before referenceYear.
func CountDebtors(props []Property, referenceYear int) int {
	n := 0
	for _, p := range props {
		if HasPriorDebt(p, referenceYear) {
			n++
		}
	}
	return n
}

// NormalizeCity canonicalizes a city name for grouping: trim, lowercase,
// then title-case each word ("  sÃo paulo " becomes "São Paulo").
func NormalizeCity(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

// RollupByCity groups properties by normalized city name and sums each
// group's effective liability for the year. Rows come back sorted by total
// descending; ties keep first-encountered insertion order.
func RollupByCity(props []Property, year int) []RollupRow {
	return rollup(props, year, func(p Property) string {
		return NormalizeCity(p.City)
	})
}

// RollupByState groups by uppercased state code, otherwise like RollupByCity.
func RollupByState(props []Property, year int) []RollupRow {
	return rollup(props, year, func(p Property) string {
		return strings.ToUpper(strings.TrimSpace(p.State))
	})
}

func rollup(props []Property, year int, key func(Property) string) []RollupRow {
	index := make(map[string]int)
	var rows []RollupRow
	for _, p := range props {
		k := key(p)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(rows)
			index[k] = i
			rows = append(rows, RollupRow{Key: k})
		}
		rows[i].Total.Cents += p.TotalLiability(year).Cents
		rows[i].Properties++
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total.Cents > rows[j].Total.Cents
	})
	return rows
}

// MethodDistribution counts the year's units per chosen payment method.
// A zero unit total yields 0% for every bucket.
func MethodDistribution(props []Property, year int) []DistributionBucket {
	counts := map[PaymentMethod]int{}
	total := 0
	for _, p := range props {
		for _, u := range p.UnitsForYear(year) {
			switch {
			case u.ChosenMethod.Is(CotaUnica):
				counts[CotaUnica]++
			case u.ChosenMethod.Is(Parcelado):
				counts[Parcelado]++
			default:
				counts[MethodEmAberto]++
			}
			total++
		}
	}
	methods := []PaymentMethod{CotaUnica, Parcelado, MethodEmAberto}
	buckets := make([]DistributionBucket, 0, len(methods))
	for _, m := range methods {
		buckets = append(buckets, bucket(string(m), counts[m], total))
	}
	return buckets
}

// StatusDistribution counts the year's units per status, in the four
// canonical buckets. A zero unit total yields 0% for every bucket.
func StatusDistribution(props []Property, year int) []DistributionBucket {
	counts := map[Status]int{}
	total := 0
	for _, p := range props {
		for _, u := range p.UnitsForYear(year) {
			switch {
			case u.Status.Is(StatusPago):
				counts[StatusPago]++
			case u.Status.Is(StatusEmAndamento):
				counts[StatusEmAndamento]++
			case u.Status.Is(StatusEmAberto):
				counts[StatusEmAberto]++
			default:
				counts[StatusPendente]++
			}
			total++
		}
	}
	statuses := []Status{StatusPago, StatusPendente, StatusEmAndamento, StatusEmAberto}
	buckets := make([]DistributionBucket, 0, len(statuses))
	for _, s := range statuses {
		buckets = append(buckets, bucket(string(s), counts[s], total))
	}
	return buckets
}

func bucket(label string, count, total int) DistributionBucket {
	b := DistributionBucket{Label: label, Count: count}
	if total > 0 {
		b.Percentage = float64(count) / float64(total) * 100
	}
	return b
}

// HighestCharges tracks the single maximum lump-sum and installment amounts
// across all units of the year. Ties keep the first-seen property.
func HighestCharges(props []Property, year int) ChargeHighlights {
	var hi ChargeHighlights
	for _, p := range props {
		for _, u := range p.UnitsForYear(year) {
			if u.SingleValue.Cents > hi.Single.Amount.Cents {
				hi.Single = ChargeHighlight{
					PropertyID:   p.ID,
					PropertyName: p.Name,
					Sequential:   u.Sequential,
					Amount:       u.SingleValue,
				}
			}
			if u.InstallmentValue.Cents > hi.Installment.Amount.Cents {
				hi.Installment = ChargeHighlight{
					PropertyID:   p.ID,
					PropertyName: p.Name,
					Sequential:   u.Sequential,
					Amount:       u.InstallmentValue,
				}
			}
		}
	}
	return hi
}
