package rental_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/vaqsi1990/cloth-sub001/model"
	"github.com/vaqsi1990/cloth-sub001/service/rental"
)

var errTripped = errors.New("storage unavailable")

// fakeStore is an in-memory rental.Store. It emulates the per-item row
// lock of the real store: ItemForUpdate blocks until the transaction that
// holds the item commits or rolls back, which is what the concurrency
// tests lean on.
type fakeStore struct {
	mu sync.Mutex

	items    map[int64]*model.Item
	variants map[int64]*model.ItemVariant
	renters  map[int64]bool // renter id -> blocked
	bookings map[int64]*model.Booking
	orders   map[int64]model.OrderStatus
	lines    map[int64]*model.RentalLine
	txns     []model.Transaction

	nextID int64
	seq    int // drives distinct created_at values

	itemLocks map[int64]*sync.Mutex

	failSetItemStatus bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		items:     map[int64]*model.Item{},
		variants:  map[int64]*model.ItemVariant{},
		renters:   map[int64]bool{},
		bookings:  map[int64]*model.Booking{},
		orders:    map[int64]model.OrderStatus{},
		lines:     map[int64]*model.RentalLine{},
		nextID:    1000,
		itemLocks: map[int64]*sync.Mutex{},
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) stamp() time.Time {
	s.seq++
	return time.Unix(int64(1700000000+s.seq), 0).UTC()
}

func (s *fakeStore) addItem(id, sellerID int64, rentable bool) {
	s.items[id] = &model.Item{ID: id, SellerID: sellerID, Name: "item", Status: model.ItemAvailable, Rentable: rentable}
}

func (s *fakeStore) addVariant(id, itemID int64, label string) {
	s.variants[id] = &model.ItemVariant{ID: id, ItemID: itemID, Label: label}
}

func (s *fakeStore) addRenter(id int64, blocked bool) {
	s.renters[id] = blocked
}

func (s *fakeStore) addLine(orderID int64, status model.OrderStatus, itemID int64, size string, start, end time.Time) int64 {
	s.orders[orderID] = status
	id := s.id()
	s.lines[id] = &model.RentalLine{
		ID: id, OrderID: orderID, ItemID: itemID, Size: size,
		StartDate: start, EndDate: end, OrderStatus: status,
	}
	return id
}

func (s *fakeStore) booking(id int64) model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.bookings[id]
}

func (s *fakeStore) itemStatus(id int64) model.ItemStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id].Status
}

func (s *fakeStore) lineCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

func (s *fakeStore) txnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txns)
}

// Store

func (s *fakeStore) Begin(ctx context.Context) (rental.Tx, error) {
	return &fakeTx{s: s, held: map[int64]*sync.Mutex{}}, nil
}

func (s *fakeStore) Item(ctx context.Context, id int64) (*model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[id]
	if !ok {
		return nil, rental.ErrNoRecord
	}
	cp := *it
	return &cp, nil
}

func (s *fakeStore) Variant(ctx context.Context, id int64) (*model.ItemVariant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.variants[id]
	if !ok {
		return nil, rental.ErrNoRecord
	}
	cp := *v
	return &cp, nil
}

func (s *fakeStore) Booking(ctx context.Context, id int64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, rental.ErrNoRecord
	}
	cp := *b
	return &cp, nil
}

func (s *fakeStore) ListBookings(ctx context.Context, f rental.ListFilter) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Booking
	for _, b := range s.bookings {
		if b.RenterID != f.RenterID {
			continue
		}
		if f.ItemID != 0 && b.ItemID != f.ItemID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	lo := (f.Page - 1) * f.Limit
	if lo >= len(out) {
		return nil, nil
	}
	hi := lo + f.Limit
	if hi > len(out) {
		hi = len(out)
	}
	return out[lo:hi], nil
}

func (s *fakeStore) InsertTransaction(ctx context.Context, t *model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	t.CreatedAt = s.stamp()
	s.txns = append(s.txns, *t)
	return nil
}

func (s *fakeStore) BusyBookings(ctx context.Context, itemID int64, variantID *int64, excludeID int64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busyBookingsLocked(itemID, variantID, excludeID), nil
}

func (s *fakeStore) busyBookingsLocked(itemID int64, variantID *int64, excludeID int64) []model.Booking {
	var out []model.Booking
	for _, b := range s.bookings {
		if b.ItemID != itemID || b.ID == excludeID {
			continue
		}
		switch b.Status {
		case model.BookingReserved, model.BookingActive, model.BookingLate:
		default:
			continue
		}
		if variantID != nil && b.VariantID != nil && *b.VariantID != *variantID {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out
}

func (s *fakeStore) BusyRentalLines(ctx context.Context, itemID int64, cutoff time.Time) ([]model.RentalLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.RentalLine
	for _, l := range s.lines {
		if l.ItemID != itemID || l.EndDate.Before(cutoff) {
			continue
		}
		switch s.orders[l.OrderID] {
		case model.OrderPending, model.OrderPaid, model.OrderShipped:
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.Before(out[j].StartDate) })
	return out, nil
}

// fakeTx applies writes directly; transactions here exist for locking, not
// rollback, which is all the engine tests need.
type fakeTx struct {
	s    *fakeStore
	held map[int64]*sync.Mutex
	done bool
}

func (t *fakeTx) release() {
	if t.done {
		return
	}
	t.done = true
	for _, m := range t.held {
		m.Unlock()
	}
}

func (t *fakeTx) Commit(ctx context.Context) error   { t.release(); return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { t.release(); return nil }

func (t *fakeTx) ItemForUpdate(ctx context.Context, itemID int64) (*model.Item, error) {
	t.s.mu.Lock()
	if _, ok := t.s.items[itemID]; !ok {
		t.s.mu.Unlock()
		return nil, rental.ErrNoRecord
	}
	lock := t.s.itemLocks[itemID]
	if lock == nil {
		lock = &sync.Mutex{}
		t.s.itemLocks[itemID] = lock
	}
	_, already := t.held[itemID]
	t.s.mu.Unlock()

	if !already {
		lock.Lock()
		t.held[itemID] = lock
	}

	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	cp := *t.s.items[itemID]
	return &cp, nil
}

func (t *fakeTx) Variant(ctx context.Context, id int64) (*model.ItemVariant, error) {
	return t.s.Variant(ctx, id)
}

func (t *fakeTx) RenterBlocked(ctx context.Context, renterID int64) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	blocked, ok := t.s.renters[renterID]
	if !ok {
		return false, rental.ErrNoRecord
	}
	return blocked, nil
}

func (t *fakeTx) BusyBookings(ctx context.Context, itemID int64, variantID *int64, excludeID int64) ([]model.Booking, error) {
	return t.s.BusyBookings(ctx, itemID, variantID, excludeID)
}

func (t *fakeTx) BusyRentalLines(ctx context.Context, itemID int64, cutoff time.Time) ([]model.RentalLine, error) {
	return t.s.BusyRentalLines(ctx, itemID, cutoff)
}

func (t *fakeTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	b.ID = t.s.id()
	b.CreatedAt = t.s.stamp()
	b.UpdatedAt = b.CreatedAt
	cp := *b
	t.s.bookings[b.ID] = &cp
	return nil
}

func (t *fakeTx) BookingForUpdate(ctx context.Context, id int64) (*model.Booking, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	b, ok := t.s.bookings[id]
	if !ok {
		return nil, rental.ErrNoRecord
	}
	cp := *b
	return &cp, nil
}

func (t *fakeTx) UpdateBookingStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	b, ok := t.s.bookings[id]
	if !ok {
		return rental.ErrNoRecord
	}
	b.Status = status
	b.UpdatedAt = t.s.stamp()
	return nil
}

func (t *fakeTx) UpdateBookingDates(ctx context.Context, id int64, start, end time.Time, totalPrice float64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	b, ok := t.s.bookings[id]
	if !ok {
		return rental.ErrNoRecord
	}
	b.StartDate, b.EndDate, b.TotalPrice = start, end, totalPrice
	b.UpdatedAt = t.s.stamp()
	return nil
}

func (t *fakeTx) SetItemStatus(ctx context.Context, itemID int64, status model.ItemStatus) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.s.failSetItemStatus {
		return errTripped
	}
	it, ok := t.s.items[itemID]
	if !ok {
		return rental.ErrNoRecord
	}
	it.Status = status
	return nil
}

func (t *fakeTx) PurgeStaleRentalLines(ctx context.Context, itemID int64, before time.Time) (int64, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var n int64
	for id, l := range t.s.lines {
		if l.ItemID != itemID {
			continue
		}
		terminal := false
		switch t.s.orders[l.OrderID] {
		case model.OrderCanceled, model.OrderRefunded:
			terminal = true
		}
		if l.EndDate.Before(before) || terminal {
			delete(t.s.lines, id)
			n++
		}
	}
	return n, nil
}

// fakeCache is a function-field mock for the idempotency guard.
type fakeCache struct {
	setFn     func(ctx context.Context, key string) (bool, error)
	releaseFn func(ctx context.Context, key string) error
}

func (m *fakeCache) SetIdempotency(ctx context.Context, key string) (bool, error) {
	return m.setFn(ctx, key)
}

func (m *fakeCache) ReleaseIdempotency(ctx context.Context, key string) error {
	if m.releaseFn == nil {
		return nil
	}
	return m.releaseFn(ctx, key)
}

// mapCache is a fakeCache over a plain set, for tests that care about which
// keys end up held rather than about call order.
func mapCache() (*fakeCache, map[string]bool) {
	held := map[string]bool{}
	c := &fakeCache{
		setFn: func(ctx context.Context, key string) (bool, error) {
			if held[key] {
				return false, nil
			}
			held[key] = true
			return true, nil
		},
		releaseFn: func(ctx context.Context, key string) error {
			delete(held, key)
			return nil
		},
	}
	return c, held
}
