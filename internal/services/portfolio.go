// Package services orchestrates portfolio operations across the store and
// the sync queue. Writes follow the local-first pattern: persist, then
// publish a sync notification; a publish failure never fails the request
// because the worker's periodic sweep will pick the change up anyway.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"predial/internal/core"
	"predial/internal/log"
	"predial/internal/store"
)

var (
	// ErrSequentialCovered is returned when a history record claims a
	// sequential already covered by another record of the same year.
	ErrSequentialCovered = errors.New("sequential already covered for this year")

	// ErrTenantNotFound is returned when a tenant id does not exist on the
	// property.
	ErrTenantNotFound = errors.New("tenant not found")
)

// SyncPublisher publishes property change notifications. Nil-able: without a
// broker the service degrades to store-only writes.
type SyncPublisher interface {
	PublishPropertySync(ctx context.Context, id string, version int64) error
}

type PortfolioService struct {
	store     store.Store
	publisher SyncPublisher
	logger    *log.Logger
}

func NewPortfolioService(s store.Store, publisher SyncPublisher, logger *log.Logger) *PortfolioService {
	return &PortfolioService{
		store:     s,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentPortfolio),
	}
}

func (s *PortfolioService) GetProperty(ctx context.Context, id string) (core.Property, error) {
	return s.store.Get(ctx, id)
}

func (s *PortfolioService) ListProperties(ctx context.Context) ([]core.Property, error) {
	return s.store.List(ctx)
}

// SaveProperty validates and persists the full property record, then
// publishes a sync notification. Tenants and history records get ids
// assigned when missing.
func (s *PortfolioService) SaveProperty(ctx context.Context, p core.Property) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	// IDs must exist before the coverage check: CoveredSequentials excludes
	// records by id, and blank-id records would all exclude each other.
	assignIDs(&p)
	if err := checkSequentialCoverage(p); err != nil {
		return "", err
	}

	id, err := s.store.Save(ctx, p)
	if err != nil {
		return "", fmt.Errorf("save property: %w", err)
	}

	s.publishSync(ctx, id)
	return id, nil
}

func (s *PortfolioService) DeleteProperty(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.publishSync(ctx, id)
	return nil
}

// ReplaceUnits replaces the unit ledger for one year, keeping units of every
// other year untouched.
func (s *PortfolioService) ReplaceUnits(ctx context.Context, propertyID string, year int, units []core.PropertyUnit) (core.Property, error) {
	p, err := s.store.Get(ctx, propertyID)
	if err != nil {
		return core.Property{}, err
	}

	var kept []core.PropertyUnit
	for _, u := range p.Units {
		if u.Year != year {
			kept = append(kept, u)
		}
	}
	for i := range units {
		units[i].Year = year
	}
	p.Units = append(kept, units...)

	if err := s.savePropertyInPlace(ctx, &p); err != nil {
		return core.Property{}, err
	}
	return p, nil
}

// ReplaceTenants replaces the tenant list for one year.
func (s *PortfolioService) ReplaceTenants(ctx context.Context, propertyID string, year int, tenants []core.Tenant) (core.Property, error) {
	p, err := s.store.Get(ctx, propertyID)
	if err != nil {
		return core.Property{}, err
	}

	var kept []core.Tenant
	for _, t := range p.Tenants {
		if t.Year != year {
			kept = append(kept, t)
		}
	}
	for i := range tenants {
		tenants[i].Year = year
	}
	p.Tenants = append(kept, tenants...)

	if err := s.savePropertyInPlace(ctx, &p); err != nil {
		return core.Property{}, err
	}
	return p, nil
}

// ReplaceHistory replaces the whole legacy history ledger.
func (s *PortfolioService) ReplaceHistory(ctx context.Context, propertyID string, records []core.IptuRecord) (core.Property, error) {
	p, err := s.store.Get(ctx, propertyID)
	if err != nil {
		return core.Property{}, err
	}
	p.IptuHistory = records
	if err := s.savePropertyInPlace(ctx, &p); err != nil {
		return core.Property{}, err
	}
	return p, nil
}

// SetSingleTenant marks one tenant as bearing the full charge for its year
// and clears the flag on every same-year sibling.
func (s *PortfolioService) SetSingleTenant(ctx context.Context, propertyID, tenantID string) (core.Property, error) {
	p, err := s.store.Get(ctx, propertyID)
	if err != nil {
		return core.Property{}, err
	}
	if !p.SetSingleTenant(tenantID) {
		return core.Property{}, ErrTenantNotFound
	}
	if err := s.savePropertyInPlace(ctx, &p); err != nil {
		return core.Property{}, err
	}
	return p, nil
}

// Apportionment computes the tenant split of the property's total liability
// for the year.
func (s *PortfolioService) Apportionment(ctx context.Context, propertyID string, year int) ([]core.ApportionmentRow, error) {
	p, err := s.store.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return core.ComputeApportionment(p, year), nil
}

func (s *PortfolioService) savePropertyInPlace(ctx context.Context, p *core.Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	assignIDs(p)
	if err := checkSequentialCoverage(*p); err != nil {
		return err
	}

	if _, err := s.store.Save(ctx, *p); err != nil {
		return fmt.Errorf("save property: %w", err)
	}
	s.publishSync(ctx, p.ID)
	return nil
}

func (s *PortfolioService) publishSync(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	// Version 1 is a placeholder: the worker resolves the authoritative
	// version from the local store's pending rows.
	if err := s.publisher.PublishPropertySync(ctx, id, 1); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync message",
			log.FieldPropertyID, id, log.FieldError, err)
		// The property is saved locally; the periodic sweep covers this.
	}
}

func assignIDs(p *core.Property) {
	for i := range p.Tenants {
		if strings.TrimSpace(p.Tenants[i].ID) == "" {
			p.Tenants[i].ID = uuid.NewString()
		}
	}
	for i := range p.IptuHistory {
		if strings.TrimSpace(p.IptuHistory[i].ID) == "" {
			p.IptuHistory[i].ID = uuid.NewString()
		}
	}
}

// checkSequentialCoverage rejects history records whose selected sequentials
// overlap another record of the same year.
func checkSequentialCoverage(p core.Property) error {
	for _, r := range p.IptuHistory {
		covered := p.CoveredSequentials(r.Year, r.ID)
		for _, seq := range r.SelectedSequentials {
			if covered[seq] {
				return fmt.Errorf("%w: %s (%d)", ErrSequentialCovered, seq, r.Year)
			}
		}
	}
	return nil
}
