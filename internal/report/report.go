// Package report assembles the dashboard and yearly report views from the
// portfolio analytics. Amounts leave this package as currency units
// (float64) since both views are display surfaces; all summing happens
// cent-exact in core before conversion.
package report

import (
	"context"
	"fmt"
	"time"

	"predial/internal/core"
	"predial/internal/log"
	"predial/internal/store"
)

type (
	Comparison struct {
		Current  float64 `json:"current"`
		Previous float64 `json:"previous"`
		Diff     float64 `json:"diff"`
		Pct      float64 `json:"pct"`
	}

	Rollup struct {
		Key        string  `json:"key"`
		Total      float64 `json:"total"`
		Properties int     `json:"properties"`
	}

	Bucket struct {
		Label      string  `json:"label"`
		Count      int     `json:"count"`
		Percentage float64 `json:"percentage"`
	}

	Highlight struct {
		PropertyID   string  `json:"propertyId"`
		PropertyName string  `json:"propertyName"`
		Sequential   string  `json:"sequential"`
		Amount       float64 `json:"amount"`
	}

	// Dashboard is the portfolio overview for one reference year.
	Dashboard struct {
		Year               int        `json:"year"`
		PropertyCount      int        `json:"propertyCount"`
		UnitCount          int        `json:"unitCount"`
		TotalLiability     float64    `json:"totalLiability"`
		Comparison         Comparison `json:"comparison"`
		Debtors            int        `json:"debtors"`
		StatusDistribution []Bucket   `json:"statusDistribution"`
		MethodDistribution []Bucket   `json:"methodDistribution"`
		ByCity             []Rollup   `json:"byCity"`
		ByState            []Rollup   `json:"byState"`
		HighestSingle      Highlight  `json:"highestSingle"`
		HighestInstallment Highlight  `json:"highestInstallment"`
	}

	// Row is one property's line in the yearly report.
	Row struct {
		PropertyID  string  `json:"propertyId"`
		Name        string  `json:"name"`
		City        string  `json:"city"`
		State       string  `json:"state"`
		Status      string  `json:"status"`
		TotalCharge float64 `json:"totalCharge"`
		Units       int     `json:"units"`
		Tenants     int     `json:"tenants"`
		PriorDebt   bool    `json:"priorDebt"`
	}

	// Yearly is the full per-property report for one year.
	Yearly struct {
		Year        int     `json:"year"`
		GeneratedAt string  `json:"generatedAt"`
		Rows        []Row   `json:"rows"`
		Total       float64 `json:"total"`
		Debtors     int     `json:"debtors"`
	}
)

type Builder struct {
	reader store.PropertyReader
	logger *log.Logger
	now    func() time.Time
}

func NewBuilder(reader store.PropertyReader, logger *log.Logger) *Builder {
	return &Builder{
		reader: reader,
		logger: logger.WithComponent(log.ComponentExport),
		now:    time.Now,
	}
}

// Dashboard builds the overview for the year, comparing against year-1.
func (b *Builder) Dashboard(ctx context.Context, year int) (Dashboard, error) {
	props, err := b.reader.List(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list properties: %w", err)
	}

	current := core.PortfolioLiability(props, year)
	previous := core.PortfolioLiability(props, year-1)
	cmp := core.CompareYears(current, previous)
	hi := core.HighestCharges(props, year)

	unitCount := 0
	for _, p := range props {
		unitCount += len(p.UnitsForYear(year))
	}

	return Dashboard{
		Year:          year,
		PropertyCount: len(props),
		UnitCount:     unitCount,
		TotalLiability: current.Reais(),
		Comparison: Comparison{
			Current:  cmp.Current.Reais(),
			Previous: cmp.Previous.Reais(),
			Diff:     cmp.Diff.Reais(),
			Pct:      cmp.Pct,
		},
		Debtors:            core.CountDebtors(props, year),
		StatusDistribution: buckets(core.StatusDistribution(props, year)),
		MethodDistribution: buckets(core.MethodDistribution(props, year)),
		ByCity:             rollups(core.RollupByCity(props, year)),
		ByState:            rollups(core.RollupByState(props, year)),
		HighestSingle:      highlight(hi.Single),
		HighestInstallment: highlight(hi.Installment),
	}, nil
}

// Yearly builds the per-property report for the year. Rows keep the store's
// listing order.
func (b *Builder) Yearly(ctx context.Context, year int) (Yearly, error) {
	props, err := b.reader.List(ctx)
	if err != nil {
		return Yearly{}, fmt.Errorf("list properties: %w", err)
	}

	rep := Yearly{
		Year:        year,
		GeneratedAt: b.now().Format("02/01/2006 15:04"),
	}
	for _, p := range props {
		debt := core.HasPriorDebt(p, year)
		if debt {
			rep.Debtors++
		}
		total := p.TotalLiability(year)
		rep.Rows = append(rep.Rows, Row{
			PropertyID:  p.ID,
			Name:        p.Name,
			City:        core.NormalizeCity(p.City),
			State:       p.State,
			Status:      string(core.ResolvePropertyStatus(p, year)),
			TotalCharge: total.Reais(),
			Units:       len(p.UnitsForYear(year)),
			Tenants:     len(p.TenantsForYear(year)),
			PriorDebt:   debt,
		})
		rep.Total += total.Reais()
	}
	return rep, nil
}

// SheetRows renders the report as a header plus one row per property, the
// shape the spreadsheet exporter appends.
func (r Yearly) SheetRows() [][]interface{} {
	rows := [][]interface{}{
		{"Imóvel", "Cidade", "UF", "Status", "Unidades", "Inquilinos", "Valor (R$)", "Débito anterior"},
	}
	for _, row := range r.Rows {
		debt := "Não"
		if row.PriorDebt {
			debt = "Sim"
		}
		rows = append(rows, []interface{}{
			row.Name, row.City, row.State, row.Status,
			row.Units, row.Tenants, row.TotalCharge, debt,
		})
	}
	return rows
}

func buckets(in []core.DistributionBucket) []Bucket {
	out := make([]Bucket, len(in))
	for i, b := range in {
		out[i] = Bucket{Label: b.Label, Count: b.Count, Percentage: b.Percentage}
	}
	return out
}

func rollups(in []core.RollupRow) []Rollup {
	out := make([]Rollup, len(in))
	for i, r := range in {
		out[i] = Rollup{Key: r.Key, Total: r.Total.Reais(), Properties: r.Properties}
	}
	return out
}

func highlight(h core.ChargeHighlight) Highlight {
	return Highlight{
		PropertyID:   h.PropertyID,
		PropertyName: h.PropertyName,
		Sequential:   h.Sequential,
		Amount:       h.Amount.Reais(),
	}
}
