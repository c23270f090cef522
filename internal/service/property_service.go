package service

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/yourorg/rentease/internal/domain"
)

// PropertyService handles property CRUD with owner scoping
type PropertyService struct {
	propertyRepo domain.PropertyRepository
	logger       *slog.Logger
}

// NewPropertyService creates a new property service
func NewPropertyService(propertyRepo domain.PropertyRepository, logger *slog.Logger) *PropertyService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PropertyService{propertyRepo: propertyRepo, logger: logger}
}

// PropertyInput carries the fields for creating or updating a property
type PropertyInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Address     string          `json:"address"`
	Price       decimal.Decimal `json:"price"`
}

// Create adds a property owned by the actor. Tenants cannot create properties.
func (s *PropertyService) Create(ctx context.Context, actor Actor, in PropertyInput) (*domain.Property, error) {
	if actor.IsTenant() {
		return nil, domain.Forbidden("not enough permissions")
	}
	if in.Title == "" {
		return nil, domain.Validation("title is required")
	}
	if in.Price.IsNegative() {
		return nil, domain.Validation("price cannot be negative")
	}

	property := &domain.Property{
		Title:       in.Title,
		Description: in.Description,
		Address:     in.Address,
		Price:       in.Price,
		OwnerID:     actor.UserID,
	}

	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, err
	}

	s.logger.Info("property created",
		slog.Int64("property_id", property.ID),
		slog.Int64("owner_id", property.OwnerID),
	)
	return property, nil
}

// Get returns a property by ID
func (s *PropertyService) Get(ctx context.Context, actor Actor, id int64) (*domain.Property, error) {
	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.IsOwner() && property.OwnerID != actor.UserID {
		return nil, domain.Forbidden("not enough permissions")
	}
	return property, nil
}

// List returns properties visible to the actor: admins see all, owners see
// their own, tenants see everything (listings are public to tenants).
func (s *PropertyService) List(ctx context.Context, actor Actor) ([]*domain.Property, error) {
	if actor.IsOwner() {
		return s.propertyRepo.ListByOwner(ctx, actor.UserID)
	}
	return s.propertyRepo.List(ctx)
}

// Update modifies a property the actor owns
func (s *PropertyService) Update(ctx context.Context, actor Actor, id int64, in PropertyInput) (*domain.Property, error) {
	property, err := s.requireOwnership(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Title != "" {
		property.Title = in.Title
	}
	if in.Description != "" {
		property.Description = in.Description
	}
	if in.Address != "" {
		property.Address = in.Address
	}
	if !in.Price.IsZero() {
		if in.Price.IsNegative() {
			return nil, domain.Validation("price cannot be negative")
		}
		property.Price = in.Price
	}

	if err := s.propertyRepo.Update(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}

// Delete removes a property the actor owns
func (s *PropertyService) Delete(ctx context.Context, actor Actor, id int64) error {
	if _, err := s.requireOwnership(ctx, actor, id); err != nil {
		return err
	}
	if err := s.propertyRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("property deleted",
		slog.Int64("property_id", id),
		slog.Int64("actor_id", actor.UserID),
	)
	return nil
}

func (s *PropertyService) requireOwnership(ctx context.Context, actor Actor, propertyID int64) (*domain.Property, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && property.OwnerID != actor.UserID {
		return nil, domain.Forbidden("not enough permissions")
	}
	return property, nil
}
