package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/yourorg/rentease/internal/domain"
)

// UnitService handles units within properties
type UnitService struct {
	unitRepo     domain.UnitRepository
	propertyRepo domain.PropertyRepository
	logger       *slog.Logger
}

// NewUnitService creates a new unit service
func NewUnitService(unitRepo domain.UnitRepository, propertyRepo domain.PropertyRepository, logger *slog.Logger) *UnitService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UnitService{
		unitRepo:     unitRepo,
		propertyRepo: propertyRepo,
		logger:       logger,
	}
}

// UnitInput carries the fields for creating or updating a unit
type UnitInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	MonthlyRent decimal.Decimal `json:"monthly_rent"`
}

// Create adds a unit to a property the actor owns. Unit names are unique
// within a property; the repository reports a conflict otherwise.
func (s *UnitService) Create(ctx context.Context, actor Actor, propertyID int64, in UnitInput) (*domain.Unit, error) {
	if err := s.requirePropertyAccess(ctx, actor, propertyID); err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, domain.Validation("name is required")
	}
	if in.MonthlyRent.IsNegative() {
		return nil, domain.Validation("monthly_rent cannot be negative")
	}

	unit := &domain.Unit{
		PropertyID:  propertyID,
		Name:        in.Name,
		Description: in.Description,
		MonthlyRent: in.MonthlyRent,
	}

	if err := s.unitRepo.Create(ctx, unit); err != nil {
		return nil, err
	}

	s.logger.Info("unit created",
		slog.Int64("unit_id", unit.ID),
		slog.Int64("property_id", propertyID),
	)
	return unit, nil
}

// Get returns a unit by ID
func (s *UnitService) Get(ctx context.Context, actor Actor, id int64) (*domain.Unit, error) {
	return s.unitRepo.GetByID(ctx, id)
}

// ListByProperty returns all units of a property
func (s *UnitService) ListByProperty(ctx context.Context, actor Actor, propertyID int64) ([]*domain.Unit, error) {
	if _, err := s.propertyRepo.GetByID(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.unitRepo.ListByProperty(ctx, propertyID)
}

// Update modifies a unit on a property the actor owns
func (s *UnitService) Update(ctx context.Context, actor Actor, id int64, in UnitInput) (*domain.Unit, error) {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requirePropertyAccess(ctx, actor, unit.PropertyID); err != nil {
		return nil, err
	}

	if in.Name != "" {
		unit.Name = in.Name
	}
	if in.Description != "" {
		unit.Description = in.Description
	}
	if !in.MonthlyRent.IsZero() {
		if in.MonthlyRent.IsNegative() {
			return nil, domain.Validation("monthly_rent cannot be negative")
		}
		unit.MonthlyRent = in.MonthlyRent
	}

	if err := s.unitRepo.Update(ctx, unit); err != nil {
		return nil, err
	}
	return unit, nil
}

// Delete removes a unit on a property the actor owns
func (s *UnitService) Delete(ctx context.Context, actor Actor, id int64) error {
	unit, err := s.unitRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requirePropertyAccess(ctx, actor, unit.PropertyID); err != nil {
		return err
	}
	if err := s.unitRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("unit deleted",
		slog.Int64("unit_id", id),
		slog.Int64("actor_id", actor.UserID),
	)
	return nil
}

func (s *UnitService) requirePropertyAccess(ctx context.Context, actor Actor, propertyID int64) error {
	if actor.IsTenant() {
		return domain.Forbidden("not enough permissions")
	}
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && property.OwnerID != actor.UserID {
		return domain.Forbidden("not enough permissions")
	}
	return nil
}
