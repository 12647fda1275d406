package services_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"turfbook/internal/domain"
	"turfbook/internal/infrastructure/gateway"
	"turfbook/internal/infrastructure/persistence/postgres"
)

// MockBookingRepository
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[uuid.UUID]*domain.Booking

	CreateFn               func(ctx context.Context, booking *domain.Booking) error
	FindByIDFn             func(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	FindBlockingInWindowFn func(ctx context.Context, groundIDs []uuid.UUID, windowStart, windowEnd time.Time) ([]*domain.Booking, error)
	FindStaleUnpaidFn      func(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error)
	UpdateFn               func(ctx context.Context, booking *domain.Booking) error
	DeleteFn               func(ctx context.Context, id uuid.UUID) error
}

func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{bookings: make(map[uuid.UUID]*domain.Booking)}
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateFn != nil {
		return m.CreateFn(ctx, booking)
	}
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *MockBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	if b, ok := m.bookings[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, postgres.ErrBookingNotFound
}

func (m *MockBookingRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Booking, error) {
	return m.FindByID(ctx, id)
}

func (m *MockBookingRepository) FindBlockingInWindow(ctx context.Context, groundIDs []uuid.UUID, windowStart, windowEnd time.Time) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindBlockingInWindowFn != nil {
		return m.FindBlockingInWindowFn(ctx, groundIDs, windowStart, windowEnd)
	}
	idSet := make(map[uuid.UUID]struct{}, len(groundIDs))
	for _, id := range groundIDs {
		idSet[id] = struct{}{}
	}
	var out []*domain.Booking
	for _, b := range m.bookings {
		if _, ok := idSet[b.GroundID]; !ok {
			continue
		}
		if !b.BlocksSlot() {
			continue
		}
		if b.StartTime.Before(windowStart) || !b.StartTime.Before(windowEnd) {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (m *MockBookingRepository) FindStaleUnpaid(ctx context.Context, cutoff time.Time, limit int) ([]*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindStaleUnpaidFn != nil {
		return m.FindStaleUnpaidFn(ctx, cutoff, limit)
	}
	var out []*domain.Booking
	for _, b := range m.bookings {
		if b.PaymentStatus != domain.StatusPending && b.PaymentStatus != domain.StatusProcessing {
			continue
		}
		if !b.UpdatedAt.Before(cutoff) {
			continue
		}
		copied := *b
		out = append(out, &copied)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MockBookingRepository) Update(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, booking)
	}
	if _, ok := m.bookings[booking.ID]; !ok {
		return postgres.ErrBookingNotFound
	}
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *MockBookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	if _, ok := m.bookings[id]; !ok {
		return postgres.ErrBookingNotFound
	}
	delete(m.bookings, id)
	return nil
}

// Get reads a stored booking directly, bypassing any Fn override.
func (m *MockBookingRepository) Get(id uuid.UUID) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.bookings[id]; ok {
		copied := *b
		return &copied
	}
	return nil
}

// Put stores a booking directly.
func (m *MockBookingRepository) Put(b *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *b
	m.bookings[b.ID] = &copied
}

// MockGroundRepository
type MockGroundRepository struct {
	mu      sync.RWMutex
	grounds map[uuid.UUID]*domain.Ground

	FindByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Ground, error)
	FindByNamesFn func(ctx context.Context, names []string) ([]*domain.Ground, error)
}

func NewMockGroundRepository(grounds ...*domain.Ground) *MockGroundRepository {
	m := &MockGroundRepository{grounds: make(map[uuid.UUID]*domain.Ground)}
	for _, g := range grounds {
		m.grounds[g.ID] = g
	}
	return m
}

func (m *MockGroundRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Ground, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	if g, ok := m.grounds[id]; ok {
		return g, nil
	}
	return nil, postgres.ErrGroundNotFound
}

func (m *MockGroundRepository) FindByNames(ctx context.Context, names []string) ([]*domain.Ground, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FindByNamesFn != nil {
		return m.FindByNamesFn(ctx, names)
	}
	nameSet := make(map[string]struct{}, len(names))
	for _, n := range names {
		nameSet[n] = struct{}{}
	}
	var out []*domain.Ground
	for _, g := range m.grounds {
		if _, ok := nameSet[g.Name]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

// MockTxRunner runs the transaction body with a nil tx; the mock repos
// ignore the tx argument.
type MockTxRunner struct {
	WithTxFn func(ctx context.Context, fn func(tx pgx.Tx) error) error
}

func (m *MockTxRunner) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	if m.WithTxFn != nil {
		return m.WithTxFn(ctx, fn)
	}
	return fn(nil)
}

// MockPublisher records every event it is asked to publish.
type MockPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent

	PublishFn func(ctx context.Context, key string, v any) error
}

type PublishedEvent struct {
	Key     string
	Payload any
}

func (m *MockPublisher) Publish(ctx context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishFn != nil {
		return m.PublishFn(ctx, key, v)
	}
	m.Events = append(m.Events, PublishedEvent{Key: key, Payload: v})
	return nil
}

func (m *MockPublisher) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		keys = append(keys, e.Key)
	}
	return keys
}

// MockCache tracks invalidations and serves a fixed day entry when set.
type MockCache struct {
	mu           sync.Mutex
	entries      map[string][]int
	Invalidated  []string
	SetDayCalls  int
	GetDayHits   int
	GetDayMisses int
}

func NewMockCache() *MockCache {
	return &MockCache{entries: make(map[string][]int)}
}

func cacheKey(groundID uuid.UUID, date string) string {
	return groundID.String() + ":" + date
}

func (m *MockCache) Seed(groundID uuid.UUID, date string, hours []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[cacheKey(groundID, date)] = hours
}

func (m *MockCache) GetDay(ctx context.Context, groundID uuid.UUID, date string) ([]int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hours, ok := m.entries[cacheKey(groundID, date)]; ok {
		m.GetDayHits++
		return hours, true
	}
	m.GetDayMisses++
	return nil, false
}

func (m *MockCache) SetDay(ctx context.Context, groundID uuid.UUID, date string, bookedHours []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetDayCalls++
	m.entries[cacheKey(groundID, date)] = bookedHours
}

func (m *MockCache) InvalidateDay(ctx context.Context, groundIDs []uuid.UUID, date string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range groundIDs {
		key := cacheKey(id, date)
		delete(m.entries, key)
		m.Invalidated = append(m.Invalidated, key)
	}
}

// MockGatewayClient
type MockGatewayClient struct {
	mu    sync.Mutex
	calls map[string]int

	CreateOrderFn  func(ctx context.Context, req gateway.OrderRequest) (*gateway.OrderResponse, error)
	FetchPaymentFn func(ctx context.Context, paymentID string) (*gateway.PaymentResponse, error)
}

func (m *MockGatewayClient) inc(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[method]++
}

func (m *MockGatewayClient) GetCalls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockGatewayClient) CreateOrder(ctx context.Context, req gateway.OrderRequest) (*gateway.OrderResponse, error) {
	m.inc("CreateOrder")
	if m.CreateOrderFn != nil {
		return m.CreateOrderFn(ctx, req)
	}
	return &gateway.OrderResponse{
		ID:       "order_test_1",
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}

func (m *MockGatewayClient) FetchPayment(ctx context.Context, paymentID string) (*gateway.PaymentResponse, error) {
	m.inc("FetchPayment")
	if m.FetchPaymentFn != nil {
		return m.FetchPaymentFn(ctx, paymentID)
	}
	return &gateway.PaymentResponse{
		ID:     paymentID,
		Status: "captured",
		Method: "upi",
	}, nil
}
