package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"checkout-service/models"
	"checkout-service/payment"
	"checkout-service/repository"
)

// --- Mock product repository ---
//
// Guards its state with a mutex so the conditional decrement behaves
// like the single-round-trip UPDATE it stands in for.
type mockProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*models.Product
}

func newMockProductRepo(products ...*models.Product) *mockProductRepo {
	m := &mockProductRepo{products: make(map[uuid.UUID]*models.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *p
	return &copied, nil
}

func (m *mockProductRepo) CheckAvailability(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	p, err := m.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	return p.IsActive && p.Stock >= quantity, nil
}

func (m *mockProductRepo) ConditionalDecrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Stock < quantity {
		return repository.ErrInsufficientStock
	}
	p.Stock -= quantity
	return nil
}

func (m *mockProductRepo) IncrementStock(_ context.Context, id uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Stock += quantity
	return nil
}

func (m *mockProductRepo) stock(id uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.products[id].Stock
}

// --- Mock order repository ---

type mockOrderRepo struct {
	mu        sync.Mutex
	orders    []*models.Order
	createErr error
}

func (m *mockOrderRepo) Create(_ context.Context, order *models.Order, items []models.OrderItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	copied := *order
	copied.OrderItems = items
	m.orders = append(m.orders, &copied)
	return nil
}

func (m *mockOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockOrderRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// --- Mock session store ---

type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.CheckoutSession
	saveErr  error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*models.CheckoutSession)}
}

func (m *mockSessionStore) Save(_ context.Context, session *models.CheckoutSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	copied := *session
	m.sessions[session.OrderID] = &copied
	return nil
}

func (m *mockSessionStore) Find(_ context.Context, orderID string) (*models.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[orderID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *mockSessionStore) Delete(_ context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, orderID)
	return nil
}

func (m *mockSessionStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// --- Mock cart store ---

type mockCartStore struct {
	mu                sync.Mutex
	userCarts         map[string]*models.Cart
	guestCarts        map[string]*models.Cart
	userInvalidations []string
}

func newMockCartStore() *mockCartStore {
	return &mockCartStore{
		userCarts:  make(map[string]*models.Cart),
		guestCarts: make(map[string]*models.Cart),
	}
}

func (m *mockCartStore) addItem(carts map[string]*models.Cart, owner string, item models.CartItem) error {
	if item.Quantity <= 0 {
		return fmt.Errorf("invalid quantity %d", item.Quantity)
	}
	cart, ok := carts[owner]
	if !ok {
		cart = &models.Cart{OwnerID: owner}
		carts[owner] = cart
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == item.ProductID {
			cart.Items[i].Quantity += item.Quantity
			return nil
		}
	}
	cart.Items = append(cart.Items, item)
	return nil
}

func (m *mockCartStore) GetUserCart(_ context.Context, userID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cart, ok := m.userCarts[userID]; ok {
		return cart, nil
	}
	return &models.Cart{OwnerID: userID, Items: []models.CartItem{}}, nil
}

func (m *mockCartStore) AddUserItem(_ context.Context, userID string, item models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addItem(m.userCarts, userID, item)
}

func (m *mockCartStore) ClearUserCart(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.userCarts, userID)
	return nil
}

func (m *mockCartStore) GetGuestCart(_ context.Context, sessionID string) (*models.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cart, ok := m.guestCarts[sessionID]; ok {
		return cart, nil
	}
	return &models.Cart{OwnerID: sessionID, Items: []models.CartItem{}}, nil
}

func (m *mockCartStore) AddGuestItem(_ context.Context, sessionID string, item models.CartItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addItem(m.guestCarts, sessionID, item)
}

func (m *mockCartStore) ClearGuestCart(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.guestCarts, sessionID)
	return nil
}

func (m *mockCartStore) InvalidateUserViews(_ context.Context, userID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userInvalidations = append(m.userInvalidations, userID)
	return 0
}

func (m *mockCartStore) InvalidateGuestViews(_ context.Context, _ string) int {
	return 0
}

func (m *mockCartStore) hasUserCart(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.userCarts[userID]
	return ok
}

// --- Mock payment gateway ---

type mockGateway struct {
	mu           sync.Mutex
	initiateErr  error
	verifyErr    error
	initiated    []string
	verified     []string
	transactions int
}

func (m *mockGateway) Initiate(_ context.Context, req payment.InitiateRequest) (*payment.InitiateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initiateErr != nil {
		return nil, m.initiateErr
	}
	m.transactions++
	m.initiated = append(m.initiated, req.OrderID)
	return &payment.InitiateResult{
		TransactionID: fmt.Sprintf("txn_%d", m.transactions),
		PaymentURL:    "https://pay.example/" + req.OrderID,
	}, nil
}

func (m *mockGateway) Verify(_ context.Context, transactionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.verifyErr != nil {
		return m.verifyErr
	}
	m.verified = append(m.verified, transactionID)
	return nil
}

// --- Mock settings provider ---

type mockSettings struct {
	values map[string]float64
}

func (m *mockSettings) GetValue(_ context.Context, key string, defaultVal float64) float64 {
	if v, ok := m.values[key]; ok {
		return v
	}
	return defaultVal
}

// --- Mock notifier ---

type mockNotifier struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (m *mockNotifier) SendOrderConfirmation(_ context.Context, order *models.Order, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, order.ID.String())
	return nil
}
