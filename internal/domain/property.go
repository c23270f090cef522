package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Property represents a rentable property owned by a user
type Property struct {
	ID          int64
	Title       string
	Description string
	Address     string
	Price       decimal.Decimal
	OwnerID     int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Unit is a rentable sub-division of a property, e.g. "Room A" or "Apt 2".
// Unit names are unique within a property.
type Unit struct {
	ID          int64
	PropertyID  int64
	Name        string
	Description string
	MonthlyRent decimal.Decimal
}

// PropertyRepository defines data access for properties
type PropertyRepository interface {
	Create(ctx context.Context, property *Property) error
	GetByID(ctx context.Context, id int64) (*Property, error)
	Update(ctx context.Context, property *Property) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*Property, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*Property, error)
}

// UnitRepository defines data access for units
type UnitRepository interface {
	Create(ctx context.Context, unit *Unit) error
	GetByID(ctx context.Context, id int64) (*Unit, error)
	Update(ctx context.Context, unit *Unit) error
	Delete(ctx context.Context, id int64) error
	ListByProperty(ctx context.Context, propertyID int64) ([]*Unit, error)
}
