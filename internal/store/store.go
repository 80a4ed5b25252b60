// Package store declares the persistence interfaces the service layer is
// written against. The mongodb sub-package is the production implementation;
// the memory sub-package backs tests.
package store

import (
	"context"
	"errors"
	"time"

	"mrp-api-server/internal/models"
)

// ErrNotFound is returned when a looked-up document does not exist.
var ErrNotFound = errors.New("store: document not found")

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("store: duplicate document")

// ErrInvalidID is returned when an id is not a well-formed document id.
var ErrInvalidID = errors.New("store: malformed document id")

type ProductStore interface {
	Insert(ctx context.Context, p *models.Product) (string, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetByName(ctx context.Context, name string) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	Delete(ctx context.Context, id string) error
}

type BOMStore interface {
	Insert(ctx context.Context, b *models.BillOfMaterials) (string, error)
	GetByID(ctx context.Context, id string) (*models.BillOfMaterials, error)
	// GetByFinishedProduct resolves the BOM for a finished product. When more
	// than one exists the first match wins; creation rejects duplicates.
	GetByFinishedProduct(ctx context.Context, productID string) (*models.BillOfMaterials, error)
	GetAll(ctx context.Context) ([]models.BillOfMaterials, error)
	Delete(ctx context.Context, id string) error
}

type WorkCentreStore interface {
	Insert(ctx context.Context, wc *models.WorkCentre) (string, error)
	GetByID(ctx context.Context, id string) (*models.WorkCentre, error)
	// GetByOperation matches a work centre by exact operation name.
	GetByOperation(ctx context.Context, operation string) (*models.WorkCentre, error)
	GetAll(ctx context.Context) ([]models.WorkCentre, error)
	Update(ctx context.Context, id string, wc *models.WorkCentre) error
	Delete(ctx context.Context, id string) error
}

type ManufacturingOrderStore interface {
	Insert(ctx context.Context, mo *models.ManufacturingOrder) (string, error)
	GetByID(ctx context.Context, id string) (*models.ManufacturingOrder, error)
	// GetAll lists orders, optionally filtered by status.
	GetAll(ctx context.Context, status *models.MOStatus) ([]models.ManufacturingOrder, error)
	// UpdateStatusIf performs a single conditional transition: the status is
	// set to "to" only if it currently equals "from". It reports whether this
	// caller won the swap. updated_at is touched on success.
	UpdateStatusIf(ctx context.Context, id string, from, to models.MOStatus) (bool, error)
	// FindStalledCandidates returns in_progress orders whose updated_at is
	// older than "before" and that are not yet flagged.
	FindStalledCandidates(ctx context.Context, before time.Time) ([]models.ManufacturingOrder, error)
	// MarkStalled sets the advisory flag on an order that is still
	// in_progress; ErrNotFound means the order is absent or has moved on.
	MarkStalled(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	// CountByStatus returns the number of orders per status. Statuses with
	// no orders are absent from the map.
	CountByStatus(ctx context.Context) (map[models.MOStatus]int, error)
	// ThroughputByDay returns per-day completion counts for done orders
	// completed at or after "since", in ascending date order (UTC days).
	ThroughputByDay(ctx context.Context, since time.Time) ([]models.ThroughputPoint, error)
	// AverageCycleTime returns the mean completed_at-created_at over all
	// done orders, and how many orders the mean covers. Zero orders yield a
	// zero duration, not an error.
	AverageCycleTime(ctx context.Context) (time.Duration, int, error)
}

type WorkOrderStore interface {
	Insert(ctx context.Context, wo *models.WorkOrder) (string, error)
	GetByID(ctx context.Context, id string) (*models.WorkOrder, error)
	GetAll(ctx context.Context) ([]models.WorkOrder, error)
	// GetByMO returns the work orders of an MO sorted by sequence.
	GetByMO(ctx context.Context, moID string) ([]models.WorkOrder, error)
	GetByStatus(ctx context.Context, status models.WOStatus) ([]models.WorkOrder, error)
	// UpdateStatusIf performs a single conditional transition and reports
	// whether this caller won the swap.
	UpdateStatusIf(ctx context.Context, id string, from, to models.WOStatus) (bool, error)
	// SetStatus overwrites the status unconditionally. Used only by the
	// sweeper's failure path to reset a claimed work order to pending.
	SetStatus(ctx context.Context, id string, status models.WOStatus) error
	DeleteByMO(ctx context.Context, moID string) error
}

type LedgerStore interface {
	Insert(ctx context.Context, e *models.StockLedgerEntry) (string, error)
	GetAll(ctx context.Context) ([]models.StockLedgerEntry, error)
	GetByMO(ctx context.Context, moID string) ([]models.StockLedgerEntry, error)
	// StockAvailability aggregates quantity_change per product.
	StockAvailability(ctx context.Context) ([]models.StockLevel, error)
	// CompleteOrder atomically flips the MO from in_progress to done, sets
	// completed_at, and appends all entries. Nothing is written unless every
	// write succeeds; a lost status race yields ErrNotFound and zero entries.
	CompleteOrder(ctx context.Context, moID string, completedAt time.Time, entries []models.StockLedgerEntry) error
}

type UserStore interface {
	Insert(ctx context.Context, u *models.User) (string, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
