// Package memory is an in-memory implementation of the store interfaces.
// It backs the service, handler and sweeper tests so they run without a
// mongod, while honouring the same semantics: conditional status swaps,
// atomic completion, and the ledger uniqueness constraint per (MO, product).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"mrp-api-server/internal/models"
	"mrp-api-server/internal/store"
)

type Stores struct {
	mu sync.Mutex

	products    map[string]models.Product
	boms        map[string]models.BillOfMaterials
	workCentres map[string]models.WorkCentre
	mos         map[string]models.ManufacturingOrder
	wos         map[string]models.WorkOrder
	ledger      []models.StockLedgerEntry
	users       map[string]models.User

	Products    *ProductStore
	BOMs        *BOMStore
	WorkCentres *WorkCentreStore
	MOs         *ManufacturingOrderStore
	WOs         *WorkOrderStore
	Ledger      *LedgerStore
	Users       *UserStore
}

func New() *Stores {
	s := &Stores{
		products:    make(map[string]models.Product),
		boms:        make(map[string]models.BillOfMaterials),
		workCentres: make(map[string]models.WorkCentre),
		mos:         make(map[string]models.ManufacturingOrder),
		wos:         make(map[string]models.WorkOrder),
		users:       make(map[string]models.User),
	}
	s.Products = &ProductStore{s: s}
	s.BOMs = &BOMStore{s: s}
	s.WorkCentres = &WorkCentreStore{s: s}
	s.MOs = &ManufacturingOrderStore{s: s}
	s.WOs = &WorkOrderStore{s: s}
	s.Ledger = &LedgerStore{s: s}
	s.Users = &UserStore{s: s}
	return s
}

func newID() (primitive.ObjectID, string) {
	oid := primitive.NewObjectID()
	return oid, oid.Hex()
}

func validID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}

type ProductStore struct{ s *Stores }

func (p *ProductStore) Insert(_ context.Context, m *models.Product) (string, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for _, existing := range p.s.products {
		if strings.EqualFold(existing.Name, m.Name) {
			return "", store.ErrDuplicate
		}
	}
	oid, id := newID()
	m.ID = oid
	p.s.products[id] = *m
	return id, nil
}

func (p *ProductStore) GetByID(_ context.Context, id string) (*models.Product, error) {
	if !validID(id) {
		return nil, store.ErrInvalidID
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	m, ok := p.s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (p *ProductStore) GetByName(_ context.Context, name string) (*models.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	for _, m := range p.s.products {
		if strings.EqualFold(m.Name, name) {
			m := m
			return &m, nil
		}
	}
	return nil, store.ErrNotFound
}

func (p *ProductStore) GetAll(_ context.Context) ([]models.Product, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	out := make([]models.Product, 0, len(p.s.products))
	for _, m := range p.s.products {
		out = append(out, m)
	}
	return out, nil
}

func (p *ProductStore) Delete(_ context.Context, id string) error {
	if !validID(id) {
		return store.ErrInvalidID
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	if _, ok := p.s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(p.s.products, id)
	return nil
}

type BOMStore struct{ s *Stores }

func (b *BOMStore) Insert(_ context.Context, m *models.BillOfMaterials) (string, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	oid, id := newID()
	m.ID = oid
	b.s.boms[id] = *m
	return id, nil
}

func (b *BOMStore) GetByID(_ context.Context, id string) (*models.BillOfMaterials, error) {
	if !validID(id) {
		return nil, store.ErrInvalidID
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	m, ok := b.s.boms[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (b *BOMStore) GetByFinishedProduct(_ context.Context, productID string) (*models.BillOfMaterials, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	for _, m := range b.s.boms {
		if m.FinishedProductID == productID {
			m := m
			return &m, nil
		}
	}
	return nil, store.ErrNotFound
}

func (b *BOMStore) GetAll(_ context.Context) ([]models.BillOfMaterials, error) {
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	out := make([]models.BillOfMaterials, 0, len(b.s.boms))
	for _, m := range b.s.boms {
		out = append(out, m)
	}
	return out, nil
}

func (b *BOMStore) Delete(_ context.Context, id string) error {
	if !validID(id) {
		return store.ErrInvalidID
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if _, ok := b.s.boms[id]; !ok {
		return store.ErrNotFound
	}
	delete(b.s.boms, id)
	return nil
}

type WorkCentreStore struct{ s *Stores }

func (w *WorkCentreStore) Insert(_ context.Context, m *models.WorkCentre) (string, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	oid, id := newID()
	m.ID = oid
	w.s.workCentres[id] = *m
	return id, nil
}

func (w *WorkCentreStore) GetByID(_ context.Context, id string) (*models.WorkCentre, error) {
	if !validID(id) {
		return nil, store.ErrInvalidID
	}
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	m, ok := w.s.workCentres[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &m, nil
}

func (w *WorkCentreStore) GetByOperation(_ context.Context, operation string) (*models.WorkCentre, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	for _, m := range w.s.workCentres {
		if m.Operation == operation {
			m := m
			return &m, nil
		}
	}
	return nil, store.ErrNotFound
}

func (w *WorkCentreStore) GetAll(_ context.Context) ([]models.WorkCentre, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	out := make([]models.WorkCentre, 0, len(w.s.workCentres))
	for _, m := range w.s.workCentres {
		out = append(out, m)
	}
	return out, nil
}

func (w *WorkCentreStore) Update(_ context.Context, id string, m *models.WorkCentre) error {
	if !validID(id) {
		return store.ErrInvalidID
	}
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	existing, ok := w.s.workCentres[id]
	if !ok {
		return store.ErrNotFound
	}
	existing.Name = m.Name
	existing.Operation = m.Operation
	existing.Description = m.Description
	existing.CostPerHour = m.CostPerHour
	existing.UpdatedAt = time.Now().UTC()
	w.s.workCentres[id] = existing
	return nil
}

func (w *WorkCentreStore) Delete(_ context.Context, id string) error {
	if !validID(id) {
		return store.ErrInvalidID
	}
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	if _, ok := w.s.workCentres[id]; !ok {
		return store.ErrNotFound
	}
	delete(w.s.workCentres, id)
	return nil
}

type ManufacturingOrderStore struct{ s *Stores }

func (m *ManufacturingOrderStore) Insert(_ context.Context, mo *models.ManufacturingOrder) (string, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	oid, id := newID()
	mo.ID = oid
	m.s.mos[id] = *mo
	return id, nil
}

func (m *ManufacturingOrderStore) GetByID(_ context.Context, id string) (*models.ManufacturingOrder, error) {
	if !validID(id) {
		return nil, store.ErrInvalidID
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	mo, ok := m.s.mos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &mo, nil
}

func (m *ManufacturingOrderStore) GetAll(_ context.Context, status *models.MOStatus) ([]models.ManufacturingOrder, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	out := make([]models.ManufacturingOrder, 0, len(m.s.mos))
	for _, mo := range m.s.mos {
		if status != nil && mo.Status != *status {
			continue
		}
		out = append(out, mo)
	}
	return out, nil
}

func (m *ManufacturingOrderStore) UpdateStatusIf(_ context.Context, id string, from, to models.MOStatus) (bool, error) {
	if !validID(id) {
		return false, store.ErrInvalidID
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	mo, ok := m.s.mos[id]
	if !ok || mo.Status != from {
		return false, nil
	}
	mo.Status = to
	mo.UpdatedAt = time.Now().UTC()
	m.s.mos[id] = mo
	return true, nil
}

func (m *ManufacturingOrderStore) FindStalledCandidates(_ context.Context, before time.Time) ([]models.ManufacturingOrder, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var out []models.ManufacturingOrder
	for _, mo := range m.s.mos {
		if mo.Status == models.MOStatusInProgress && !mo.IsStalled && mo.UpdatedAt.Before(before) {
			out = append(out, mo)
		}
	}
	return out, nil
}

func (m *ManufacturingOrderStore) MarkStalled(_ context.Context, id string) error {
	if !validID(id) {
		return store.ErrInvalidID
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	mo, ok := m.s.mos[id]
	if !ok || mo.Status != models.MOStatusInProgress {
		return store.ErrNotFound
	}
	mo.IsStalled = true
	m.s.mos[id] = mo
	return nil
}

func (m *ManufacturingOrderStore) Delete(_ context.Context, id string) error {
	if !validID(id) {
		return store.ErrInvalidID
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if _, ok := m.s.mos[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.s.mos, id)
	return nil
}

func (m *ManufacturingOrderStore) CountByStatus(_ context.Context) (map[models.MOStatus]int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	counts := make(map[models.MOStatus]int)
	for _, mo := range m.s.mos {
		counts[mo.Status]++
	}
	return counts, nil
}

func (m *ManufacturingOrderStore) ThroughputByDay(_ context.Context, since time.Time) ([]models.ThroughputPoint, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	perDay := make(map[string]int)
	for _, mo := range m.s.mos {
		if mo.Status != models.MOStatusDone || mo.CompletedAt == nil || mo.CompletedAt.Before(since) {
			continue
		}
		perDay[mo.CompletedAt.UTC().Format("2006-01-02")]++
	}
	points := make([]models.ThroughputPoint, 0, len(perDay))
	for day, count := range perDay {
		points = append(points, models.ThroughputPoint{Date: day, Count: count})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points, nil
}

func (m *ManufacturingOrderStore) AverageCycleTime(_ context.Context) (time.Duration, int, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	var total time.Duration
	var count int
	for _, mo := range m.s.mos {
		if mo.Status != models.MOStatusDone || mo.CompletedAt == nil {
			continue
		}
		total += mo.CompletedAt.Sub(mo.CreatedAt)
		count++
	}
	if count == 0 {
		return 0, 0, nil
	}
	return total / time.Duration(count), count, nil
}

// SetUpdatedAt backdates an order's updated_at. Test hook for the stall sweep.
func (m *ManufacturingOrderStore) SetUpdatedAt(id string, t time.Time) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if mo, ok := m.s.mos[id]; ok {
		mo.UpdatedAt = t
		m.s.mos[id] = mo
	}
}

type WorkOrderStore struct{ s *Stores }

func (w *WorkOrderStore) Insert(_ context.Context, wo *models.WorkOrder) (string, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	for _, existing := range w.s.wos {
		if existing.MOID == wo.MOID && existing.Sequence == wo.Sequence {
			return "", store.ErrDuplicate
		}
	}
	oid, id := newID()
	wo.ID = oid
	w.s.wos[id] = *wo
	return id, nil
}

func (w *WorkOrderStore) GetByID(_ context.Context, id string) (*models.WorkOrder, error) {
	if !validID(id) {
		return nil, store.ErrInvalidID
	}
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	wo, ok := w.s.wos[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &wo, nil
}

func (w *WorkOrderStore) GetAll(_ context.Context) ([]models.WorkOrder, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	out := make([]models.WorkOrder, 0, len(w.s.wos))
	for _, wo := range w.s.wos {
		out = append(out, wo)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MOID != out[j].MOID {
			return out[i].MOID < out[j].MOID
		}
		return out[i].Sequence < out[j].Sequence
	})
	return out, nil
}

func (w *WorkOrderStore) GetByMO(_ context.Context, moID string) ([]models.WorkOrder, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	var out []models.WorkOrder
	for _, wo := range w.s.wos {
		if wo.MOID == moID {
			out = append(out, wo)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	return out, nil
}

func (w *WorkOrderStore) GetByStatus(_ context.Context, status models.WOStatus) ([]models.WorkOrder, error) {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	var out []models.WorkOrder
	for _, wo := range w.s.wos {
		if wo.Status == status {
			out = append(out, wo)
		}
	}
	return out, nil
}

func (w *WorkOrderStore) UpdateStatusIf(_ context.Context, id string, from, to models.WOStatus) (bool, error) {
	if !validID(id) {
		return false, store.ErrInvalidID
	}
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	wo, ok := w.s.wos[id]
	if !ok || wo.Status != from {
		return false, nil
	}
	wo.Status = to
	w.s.wos[id] = wo
	return true, nil
}

func (w *WorkOrderStore) SetStatus(_ context.Context, id string, status models.WOStatus) error {
	if !validID(id) {
		return store.ErrInvalidID
	}
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	wo, ok := w.s.wos[id]
	if !ok {
		return store.ErrNotFound
	}
	wo.Status = status
	w.s.wos[id] = wo
	return nil
}

func (w *WorkOrderStore) DeleteByMO(_ context.Context, moID string) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()
	for id, wo := range w.s.wos {
		if wo.MOID == moID {
			delete(w.s.wos, id)
		}
	}
	return nil
}

type LedgerStore struct{ s *Stores }

func (l *LedgerStore) Insert(_ context.Context, e *models.StockLedgerEntry) (string, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	return l.insertLocked(e)
}

func (l *LedgerStore) insertLocked(e *models.StockLedgerEntry) (string, error) {
	if e.ManufacturingOrderID != "" {
		for _, existing := range l.s.ledger {
			if existing.ManufacturingOrderID == e.ManufacturingOrderID && existing.ProductID == e.ProductID {
				return "", store.ErrDuplicate
			}
		}
	}
	oid, id := newID()
	e.ID = oid
	l.s.ledger = append(l.s.ledger, *e)
	return id, nil
}

func (l *LedgerStore) GetAll(_ context.Context) ([]models.StockLedgerEntry, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	out := make([]models.StockLedgerEntry, len(l.s.ledger))
	copy(out, l.s.ledger)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (l *LedgerStore) GetByMO(_ context.Context, moID string) ([]models.StockLedgerEntry, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	var out []models.StockLedgerEntry
	for _, e := range l.s.ledger {
		if e.ManufacturingOrderID == moID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *LedgerStore) StockAvailability(_ context.Context) ([]models.StockLevel, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()
	totals := make(map[string]int)
	for _, e := range l.s.ledger {
		totals[e.ProductID] += e.QuantityChange
	}
	out := make([]models.StockLevel, 0, len(totals))
	for pid, qty := range totals {
		out = append(out, models.StockLevel{ProductID: pid, CurrentStock: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

func (l *LedgerStore) CompleteOrder(_ context.Context, moID string, completedAt time.Time, entries []models.StockLedgerEntry) error {
	if !validID(moID) {
		return store.ErrInvalidID
	}
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	mo, ok := l.s.mos[moID]
	if !ok || mo.Status != models.MOStatusInProgress {
		return store.ErrNotFound
	}

	// A duplicate on any line rolls the whole batch back, mirroring the
	// transactional mongo implementation.
	ledgerLen := len(l.s.ledger)
	for i := range entries {
		if _, err := l.insertLocked(&entries[i]); err != nil {
			l.s.ledger = l.s.ledger[:ledgerLen]
			return err
		}
	}

	mo.Status = models.MOStatusDone
	mo.CompletedAt = &completedAt
	mo.UpdatedAt = completedAt
	l.s.mos[moID] = mo
	return nil
}

type UserStore struct{ s *Stores }

func (u *UserStore) Insert(_ context.Context, m *models.User) (string, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, existing := range u.s.users {
		if existing.Email == m.Email {
			return "", store.ErrDuplicate
		}
	}
	oid, id := newID()
	m.ID = oid
	u.s.users[id] = *m
	return id, nil
}

func (u *UserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()
	for _, m := range u.s.users {
		if m.Email == email {
			m := m
			return &m, nil
		}
	}
	return nil, store.ErrNotFound
}
