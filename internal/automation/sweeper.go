// Package automation runs the periodic background sweep: it simulates
// operator work on in_progress work orders and flags manufacturing orders
// that have been stuck in_progress past the stall threshold.
package automation

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/service"
	"mrp-api-server/internal/store"
)

type Config struct {
	// Interval between sweep passes.
	Interval time.Duration
	// StallThreshold is how long an MO may sit in_progress without an update
	// before it is flagged for operator attention.
	StallThreshold time.Duration
	// SimulatedWork is the stand-in delay for real operator work on a claimed
	// work order.
	SimulatedWork time.Duration
}

// Sweeper is a cancellable scheduled task. Start launches the ticker loop;
// Stop cancels it and waits for in-flight work to settle. The clock is a
// field so tests drive the stall window without real delays.
type Sweeper struct {
	cfg      Config
	wos      store.WorkOrderStore
	mos      store.ManufacturingOrderStore
	woSvc    *service.WorkOrderService
	notifier service.Notifier
	log      *zap.Logger

	now    func() time.Time
	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(cfg Config, wos store.WorkOrderStore, mos store.ManufacturingOrderStore, woSvc *service.WorkOrderService, notifier service.Notifier, log *zap.Logger) *Sweeper {
	return &Sweeper{
		cfg:      cfg,
		wos:      wos,
		mos:      mos,
		woSvc:    woSvc,
		notifier: notifier,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start begins the periodic sweep. It must be called at most once.
func (s *Sweeper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()

		s.log.Info("automation sweeper started",
			zap.Duration("interval", s.cfg.Interval),
			zap.Duration("stall_threshold", s.cfg.StallThreshold),
		)
		for {
			select {
			case <-ctx.Done():
				s.log.Info("automation sweeper stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// Stop cancels the loop and blocks until it has exited.
func (s *Sweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}

// RunOnce executes one full sweep: the work-order pass and the stall pass.
// The two passes are independent; a failure in one does not skip the other.
func (s *Sweeper) RunOnce(ctx context.Context) {
	s.sweepWorkOrders(ctx)
	s.sweepStalledOrders(ctx)
}

// sweepWorkOrders picks up every in_progress work order and processes them
// concurrently. Each is claimed with a conditional in_progress→processing
// swap first, so an operator PATCH landing at the same moment cannot be
// double-applied: exactly one caller wins the claim.
func (s *Sweeper) sweepWorkOrders(ctx context.Context) {
	workOrders, err := s.wos.GetByStatus(ctx, models.WOStatusInProgress)
	if err != nil {
		s.log.Error("sweep: failed to list in_progress work orders", zap.Error(err))
		return
	}
	if len(workOrders) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, wo := range workOrders {
		wo := wo
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.simulateAndComplete(ctx, wo)
		}()
	}
	wg.Wait()
}

// simulateAndComplete stands in for a real operator finishing one work order.
// Failures are contained to the one work order and leave it pending so a
// later sweep retries it (at-least-once, never a stuck intermediate state).
func (s *Sweeper) simulateAndComplete(ctx context.Context, wo models.WorkOrder) {
	woID := wo.ID.Hex()

	claimed, err := s.wos.UpdateStatusIf(ctx, woID, models.WOStatusInProgress, models.WOStatusProcessing)
	if err != nil {
		s.log.Error("sweep: failed to claim work order", zap.String("wo_id", woID), zap.Error(err))
		return
	}
	if !claimed {
		// Someone else advanced it between the query and the claim.
		return
	}

	s.log.Info("sweep: simulating work", zap.String("wo_id", woID), zap.Duration("duration", s.cfg.SimulatedWork))
	select {
	case <-ctx.Done():
		s.resetToPending(woID, "sweeper shutting down")
		return
	case <-time.After(s.cfg.SimulatedWork):
	}

	if _, err := s.woSvc.UpdateStatus(ctx, woID, models.WOStatusDone); err != nil {
		s.log.Error("sweep: failed to complete work order", zap.String("wo_id", woID), zap.Error(err))
		s.resetToPending(woID, "completion failed")
	}
}

// resetToPending is the recovery path: a claimed work order must never stay
// parked in processing when the sweep could not finish it.
func (s *Sweeper) resetToPending(woID, why string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.wos.SetStatus(ctx, woID, models.WOStatusPending); err != nil {
		s.log.Error("sweep: failed to reset work order to pending",
			zap.String("wo_id", woID), zap.String("cause", why), zap.Error(err))
		return
	}
	s.log.Warn("sweep: work order reset to pending", zap.String("wo_id", woID), zap.String("cause", why))
}

// sweepStalledOrders flags in_progress orders that have not moved within the
// stall threshold. The flag is advisory: status is never changed here.
func (s *Sweeper) sweepStalledOrders(ctx context.Context) {
	cutoff := s.now().Add(-s.cfg.StallThreshold)
	candidates, err := s.mos.FindStalledCandidates(ctx, cutoff)
	if err != nil {
		s.log.Error("sweep: failed to query stalled candidates", zap.Error(err))
		return
	}

	for _, mo := range candidates {
		moID := mo.ID.Hex()
		if err := s.mos.MarkStalled(ctx, moID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// The order moved on (completed or deleted) after the
				// candidate query; nothing to flag.
				continue
			}
			s.log.Error("sweep: failed to flag stalled order", zap.String("mo_id", moID), zap.Error(err))
			continue
		}
		s.log.Warn("sweep: manufacturing order flagged as stalled",
			zap.String("mo_id", moID),
			zap.Time("last_update", mo.UpdatedAt),
		)
		s.notifier.Publish(service.TopicMOStatus, service.Event{
			Event:     service.EventMOStalled,
			MOID:      moID,
			Status:    string(mo.Status),
			Timestamp: s.now(),
		})
	}
}
