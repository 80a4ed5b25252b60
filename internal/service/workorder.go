package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mrp-api-server/internal/apperr"
	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

// WorkOrderService advances work orders through their sequence and carries
// the trigger chain: when the last work order of an MO reaches done, the
// parent order is completed through the ManufacturingService.
type WorkOrderService struct {
	wos           store.WorkOrderStore
	manufacturing *ManufacturingService
	notifier      Notifier
	log           *zap.Logger
	now           func() time.Time
}

func NewWorkOrderService(wos store.WorkOrderStore, manufacturing *ManufacturingService, notifier Notifier, log *zap.Logger) *WorkOrderService {
	return &WorkOrderService{
		wos:           wos,
		manufacturing: manufacturing,
		notifier:      notifier,
		log:           log,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// List returns work orders, filtered by owning MO and/or status.
func (s *WorkOrderService) List(ctx context.Context, moID string, status *models.WOStatus) ([]models.WorkOrder, error) {
	if status != nil && !status.Valid() {
		return nil, apperr.Validation("unknown work order status %q", *status)
	}
	var (
		orders []models.WorkOrder
		err    error
	)
	switch {
	case moID != "":
		orders, err = s.wos.GetByMO(ctx, moID)
	case status != nil:
		orders, err = s.wos.GetByStatus(ctx, *status)
	default:
		orders, err = s.wos.GetAll(ctx)
	}
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list work orders")
	}
	if moID != "" && status != nil {
		filtered := orders[:0]
		for _, wo := range orders {
			if wo.Status == *status {
				filtered = append(filtered, wo)
			}
		}
		orders = filtered
	}
	return orders, nil
}

func (s *WorkOrderService) GetByID(ctx context.Context, id string) (*models.WorkOrder, error) {
	wo, err := s.wos.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "work order", id)
	}
	return wo, nil
}

// UpdateStatus moves a work order to newStatus. Calling it on an already-done
// work order is a no-op, so retries cannot double-trigger the parent MO. The
// transition itself is a conditional swap from the observed status: when two
// callers race, exactly one wins and the loser gets a Conflict.
func (s *WorkOrderService) UpdateStatus(ctx context.Context, id string, newStatus models.WOStatus) (*models.WorkOrder, error) {
	if !newStatus.Valid() {
		return nil, apperr.Validation("unknown work order status %q", newStatus)
	}

	wo, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo.Status == models.WOStatusDone {
		return wo, nil
	}

	swapped, err := s.wos.UpdateStatusIf(ctx, id, wo.Status, newStatus)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to update work order status")
	}
	if !swapped {
		return nil, apperr.Conflict("work order status changed concurrently")
	}

	s.notifier.Publish(TopicWOStatus, Event{
		Event:          EventWOStatus,
		MOID:           wo.MOID,
		WorkOrderID:    id,
		PreviousStatus: string(wo.Status),
		Status:         string(newStatus),
		Timestamp:      s.now(),
	})

	if newStatus == models.WOStatusDone {
		if err := s.onWorkOrderDone(ctx, wo.MOID, id); err != nil {
			return nil, err
		}
	}

	return s.GetByID(ctx, id)
}

// onWorkOrderDone runs the advancement trigger: complete the parent MO when
// every sibling is done, otherwise push the next pending work order to
// in_progress. A next work order that is not pending was advanced by someone
// else and is left alone.
func (s *WorkOrderService) onWorkOrderDone(ctx context.Context, moID, woID string) error {
	siblings, err := s.wos.GetByMO(ctx, moID)
	if err != nil {
		return apperr.Unexpected(err, "failed to load sibling work orders")
	}

	allDone := true
	for _, sibling := range siblings {
		if sibling.Status != models.WOStatusDone {
			allDone = false
			break
		}
	}
	if allDone {
		s.log.Info("all work orders done, completing manufacturing order",
			zap.String("mo_id", moID), zap.String("last_wo_id", woID))
		return s.manufacturing.Complete(ctx, moID)
	}

	for i, sibling := range siblings {
		if sibling.ID.Hex() != woID {
			continue
		}
		if i+1 >= len(siblings) {
			break
		}
		next := siblings[i+1]
		if next.Status != models.WOStatusPending {
			break
		}
		nextID := next.ID.Hex()
		swapped, err := s.wos.UpdateStatusIf(ctx, nextID, models.WOStatusPending, models.WOStatusInProgress)
		if err != nil {
			return apperr.Unexpected(err, "failed to advance next work order")
		}
		if swapped {
			s.notifier.Publish(TopicWOStatus, Event{
				Event:          EventWOAutoStarted,
				MOID:           moID,
				WorkOrderID:    nextID,
				PreviousStatus: string(models.WOStatusPending),
				Status:         string(models.WOStatusInProgress),
				Timestamp:      s.now(),
			})
		}
		break
	}
	return nil
}
