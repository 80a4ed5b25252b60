package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"mrp-api-server/internal/apperr"
	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

// ManufacturingService owns the manufacturing-order lifecycle: BOM
// resolution and snapshotting, work-order sequencing, the status state
// machine, and completion posting to the stock ledger.
type ManufacturingService struct {
	products    store.ProductStore
	boms        store.BOMStore
	workCentres store.WorkCentreStore
	mos         store.ManufacturingOrderStore
	wos         store.WorkOrderStore
	ledger      store.LedgerStore
	notifier    Notifier
	log         *zap.Logger
	now         func() time.Time
}

func NewManufacturingService(
	products store.ProductStore,
	boms store.BOMStore,
	workCentres store.WorkCentreStore,
	mos store.ManufacturingOrderStore,
	wos store.WorkOrderStore,
	ledger store.LedgerStore,
	notifier Notifier,
	log *zap.Logger,
) *ManufacturingService {
	return &ManufacturingService{
		products:    products,
		boms:        boms,
		workCentres: workCentres,
		mos:         mos,
		wos:         wos,
		ledger:      ledger,
		notifier:    notifier,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create materializes a new manufacturing order: it validates the product and
// its BOM, freezes a BOM snapshot, generates one work order per BOM operation
// (sequence = array index), and then auto-starts the order by moving it and
// its first work order to in_progress.
func (s *ManufacturingService) Create(ctx context.Context, productID string, quantity int) (*models.ManufacturingOrder, error) {
	if quantity <= 0 {
		return nil, apperr.Validation("quantity to produce must be greater than zero")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, lookupErr(err, "product", productID)
	}
	if product.Type != models.ProductTypeFinishedGood {
		return nil, apperr.Validation("product %q is %s, only finished goods can be manufactured", product.Name, product.Type)
	}

	bom, err := s.boms.GetByFinishedProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.NotFound("bill of materials not found for product %s", productID)
		}
		return nil, apperr.Unexpected(err, "failed to load bill of materials")
	}

	for _, comp := range bom.Components {
		cp, err := s.products.GetByID(ctx, comp.ProductID)
		if err != nil {
			return nil, lookupErr(err, "component product", comp.ProductID)
		}
		if cp.Type != models.ProductTypeRawMaterial {
			return nil, apperr.Validation("component %q must be a raw material", cp.Name)
		}
	}

	// Resolve every operation to a work centre before anything is persisted,
	// so a missing centre cannot leave a half-built order behind.
	type pendingWO struct {
		operation    string
		workCentreID string
	}
	pending := make([]pendingWO, 0, len(bom.Operations))
	for _, op := range bom.Operations {
		wc, err := s.workCentres.GetByOperation(ctx, op.Name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperr.NotFound("work centre for operation %q not found", op.Name)
			}
			return nil, apperr.Unexpected(err, "failed to resolve work centre")
		}
		pending = append(pending, pendingWO{operation: op.Name, workCentreID: wc.ID.Hex()})
	}

	now := s.now()
	mo := &models.ManufacturingOrder{
		ProductID:         productID,
		QuantityToProduce: quantity,
		Status:            models.MOStatusPlanned,
		BOMSnapshot: models.BOMSnapshot{
			ProductID:  bom.FinishedProductID,
			Components: append([]models.BOMComponent(nil), bom.Components...),
			Operations: append([]models.BOMOperation(nil), bom.Operations...),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	moID, err := s.mos.Insert(ctx, mo)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to create manufacturing order")
	}

	var firstWOID string
	for i, p := range pending {
		wo := &models.WorkOrder{
			MOID:          moID,
			OperationName: p.operation,
			WorkCentreID:  p.workCentreID,
			Sequence:      i,
			Status:        models.WOStatusPending,
		}
		woID, err := s.wos.Insert(ctx, wo)
		if err != nil {
			return nil, apperr.Unexpected(err, "failed to create work order")
		}
		if i == 0 {
			firstWOID = woID
		}
	}

	// Auto-start: the order and its first work order go straight to
	// in_progress. Orders without operations stay planned until completed
	// through the start-process endpoint.
	if firstWOID != "" {
		if _, err := s.mos.UpdateStatusIf(ctx, moID, models.MOStatusPlanned, models.MOStatusInProgress); err != nil {
			return nil, apperr.Unexpected(err, "failed to start manufacturing order")
		}
		if _, err := s.wos.UpdateStatusIf(ctx, firstWOID, models.WOStatusPending, models.WOStatusInProgress); err != nil {
			return nil, apperr.Unexpected(err, "failed to start first work order")
		}

		s.log.Info("manufacturing order started",
			zap.String("mo_id", moID),
			zap.String("first_wo_id", firstWOID),
			zap.Int("work_orders", len(pending)),
		)
		ts := s.now()
		s.notifier.Publish(TopicMOStatus, Event{
			Event:     EventMOStarted,
			MOID:      moID,
			Status:    string(models.MOStatusInProgress),
			Timestamp: ts,
		})
		s.notifier.Publish(TopicWOStatus, Event{
			Event:          EventWOAutoStarted,
			MOID:           moID,
			WorkOrderID:    firstWOID,
			PreviousStatus: string(models.WOStatusPending),
			Status:         string(models.WOStatusInProgress),
			Timestamp:      ts,
		})
	}

	return s.GetByID(ctx, moID)
}

func (s *ManufacturingService) GetAll(ctx context.Context, status *models.MOStatus) ([]models.ManufacturingOrder, error) {
	if status != nil && !status.Valid() {
		return nil, apperr.Validation("unknown manufacturing order status %q", *status)
	}
	orders, err := s.mos.GetAll(ctx, status)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list manufacturing orders")
	}
	return orders, nil
}

func (s *ManufacturingService) GetByID(ctx context.Context, id string) (*models.ManufacturingOrder, error) {
	mo, err := s.mos.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "manufacturing order", id)
	}
	return mo, nil
}

// Delete removes an order and its work orders. Running and completed orders
// are protected; only planned and cancelled ones may go.
func (s *ManufacturingService) Delete(ctx context.Context, id string) error {
	mo, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if mo.Status == models.MOStatusInProgress || mo.Status == models.MOStatusDone {
		return apperr.Conflict("cannot delete a manufacturing order that is %s", mo.Status)
	}
	if err := s.mos.Delete(ctx, id); err != nil {
		return lookupErr(err, "manufacturing order", id)
	}
	if err := s.wos.DeleteByMO(ctx, id); err != nil {
		return apperr.Unexpected(err, "failed to delete work orders")
	}
	return nil
}

// Cancel rejects anything past planned: a running order has already consumed
// scheduling decisions and must run to completion or be handled manually.
func (s *ManufacturingService) Cancel(ctx context.Context, id string) error {
	swapped, err := s.mos.UpdateStatusIf(ctx, id, models.MOStatusPlanned, models.MOStatusCancelled)
	if err != nil {
		return lookupErr(err, "manufacturing order", id)
	}
	if !swapped {
		mo, err := s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return apperr.InvalidState("only planned manufacturing orders can be cancelled, order is %s", mo.Status)
	}
	s.notifier.Publish(TopicMOStatus, Event{
		Event:     EventMOCancelled,
		MOID:      id,
		Status:    string(models.MOStatusCancelled),
		Timestamp: s.now(),
	})
	return nil
}

// StartProcess moves a planned order and its first work order to in_progress.
// Orders created through Create are normally started already; this endpoint
// covers the ones that were not.
func (s *ManufacturingService) StartProcess(ctx context.Context, id string) (string, error) {
	mo, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if mo.Status != models.MOStatusPlanned {
		return "", apperr.InvalidState("manufacturing order must be planned to start, currently %s", mo.Status)
	}

	workOrders, err := s.wos.GetByMO(ctx, id)
	if err != nil {
		return "", apperr.Unexpected(err, "failed to load work orders")
	}
	if len(workOrders) == 0 {
		return "", apperr.Conflict("no work orders found for this manufacturing order, cannot start process")
	}

	swapped, err := s.mos.UpdateStatusIf(ctx, id, models.MOStatusPlanned, models.MOStatusInProgress)
	if err != nil {
		return "", apperr.Unexpected(err, "failed to start manufacturing order")
	}
	if !swapped {
		return "", apperr.Conflict("manufacturing order was started concurrently")
	}

	firstWOID := workOrders[0].ID.Hex()
	if _, err := s.wos.UpdateStatusIf(ctx, firstWOID, models.WOStatusPending, models.WOStatusInProgress); err != nil {
		return "", apperr.Unexpected(err, "failed to start first work order")
	}

	s.log.Info("manufacturing process started", zap.String("mo_id", id), zap.String("first_wo_id", firstWOID))
	s.notifier.Publish(TopicMOStatus, Event{
		Event:     EventMOStarted,
		MOID:      id,
		Status:    string(models.MOStatusInProgress),
		Timestamp: s.now(),
	})
	return firstWOID, nil
}

// Complete posts the order's consumption and production to the stock ledger
// and marks it done, all in one atomic commit. Each component consumes
// component.quantity × quantity_to_produce; the finished product gains
// quantity_to_produce. Completion succeeds at most once per order.
func (s *ManufacturingService) Complete(ctx context.Context, id string) error {
	mo, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if mo.Status == models.MOStatusDone {
		return apperr.Conflict("manufacturing order is already completed")
	}
	if mo.Status != models.MOStatusInProgress {
		return apperr.InvalidState("manufacturing order must be in progress to complete, currently %s", mo.Status)
	}

	// Snapshots written before duplicate-line validation existed may list the
	// same product on several component lines; quantities are summed into one
	// entry per product so the ledger's (order, product) uniqueness holds.
	consumed := make(map[string]int, len(mo.BOMSnapshot.Components))
	productOrder := make([]string, 0, len(mo.BOMSnapshot.Components))
	for _, comp := range mo.BOMSnapshot.Components {
		if _, seen := consumed[comp.ProductID]; !seen {
			productOrder = append(productOrder, comp.ProductID)
		}
		consumed[comp.ProductID] += comp.Quantity
	}

	now := s.now()
	entries := make([]models.StockLedgerEntry, 0, len(productOrder)+1)
	for _, productID := range productOrder {
		entries = append(entries, models.StockLedgerEntry{
			ProductID:            productID,
			QuantityChange:       -consumed[productID] * mo.QuantityToProduce,
			Reason:               fmt.Sprintf("Consumption for MO-%s", id),
			ManufacturingOrderID: id,
			Timestamp:            now,
		})
	}
	entries = append(entries, models.StockLedgerEntry{
		ProductID:            mo.BOMSnapshot.ProductID,
		QuantityChange:       mo.QuantityToProduce,
		Reason:               fmt.Sprintf("Production from MO-%s", id),
		ManufacturingOrderID: id,
		Timestamp:            now,
	})

	if err := s.ledger.CompleteOrder(ctx, id, now, entries); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			// Lost the race: someone else completed the order first.
			return apperr.Conflict("manufacturing order is already completed")
		case errors.Is(err, store.ErrDuplicate):
			return apperr.Conflict("ledger entries for this manufacturing order already exist")
		default:
			return apperr.Unexpected(err, "failed to post completion to stock ledger")
		}
	}

	s.log.Info("manufacturing order completed",
		zap.String("mo_id", id),
		zap.Int("quantity", mo.QuantityToProduce),
		zap.Int("ledger_entries", len(entries)),
	)
	s.notifier.Publish(TopicMOStatus, Event{
		Event:     EventMOCompleted,
		MOID:      id,
		Status:    string(models.MOStatusDone),
		Timestamp: now,
	})
	return nil
}
