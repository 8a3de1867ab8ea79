package usecase_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	cartItems  *CartItemRepoMock
	products   *ProductRepoMock
	shops      *ShopRepoMock
	addresses  *AddressRepoMock
	audits     *AuditRepoMock
}

func newTxRepos() *TxReposMock {
	return &TxReposMock{
		orders:     &OrderRepoMock{},
		orderItems: &OrderItemRepoMock{},
		cartItems:  &CartItemRepoMock{},
		products:   &ProductRepoMock{},
		shops:      &ShopRepoMock{},
		addresses:  &AddressRepoMock{},
		audits:     &AuditRepoMock{},
	}
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) CartItems() repo.CartItemRepository   { return r.cartItems }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }
func (r *TxReposMock) Shops() repo.ShopRepository           { return r.shops }
func (r *TxReposMock) Addresses() repo.AddressRepository    { return r.addresses }
func (r *TxReposMock) AuditLogs() repo.AuditLogRepository   { return r.audits }

func (r *TxReposMock) assertExpectations(t *testing.T) {
	t.Helper()
	r.orders.AssertExpectations(t)
	r.orderItems.AssertExpectations(t)
	r.cartItems.AssertExpectations(t)
	r.products.AssertExpectations(t)
	r.shops.AssertExpectations(t)
	r.addresses.AssertExpectations(t)
	r.audits.AssertExpectations(t)
}

func newTxManager(r *TxReposMock) *TxManagerMock {
	tm := &TxManagerMock{Repos: r}
	tm.On("WithinTx", mock.Anything).Return()
	return tm
}

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) FindByOrderNo(ctx context.Context, orderNo string) (model.Order, error) {
	args := m.Called(ctx, orderNo)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ExistsOrderNo(ctx context.Context, orderNo string) (bool, error) {
	args := m.Called(ctx, orderNo)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (model.Order, bool, error) {
	args := m.Called(ctx, userID, key)
	o, _ := args.Get(0).(model.Order)
	return o, args.Bool(1), args.Error(2)
}

func (m *OrderRepoMock) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	args := m.Called(ctx, f)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (model.Order, error) {
	args := m.Called(ctx, order)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) CompareAndSetStatus(ctx context.Context, orderID int64, from, to model.OrderStatus, stamps model.StatusStamps) (bool, error) {
	args := m.Called(ctx, orderID, from, to, stamps)
	return args.Bool(0), args.Error(1)
}

func (m *OrderRepoMock) Delete(ctx context.Context, orderID int64) error {
	return m.Called(ctx, orderID).Error(0)
}

func (m *OrderRepoMock) RollupByStatus(ctx context.Context, scope repo.OrderStatsScope) ([]repo.OrderStatusRollup, error) {
	args := m.Called(ctx, scope)
	rows, _ := args.Get(0).([]repo.OrderStatusRollup)
	return rows, args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	return m.Called(ctx, orderID, items).Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) ListByOrderIDs(ctx context.Context, orderIDs []int64) (map[int64][]model.OrderItem, error) {
	args := m.Called(ctx, orderIDs)
	items, _ := args.Get(0).(map[int64][]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) DeleteByOrderID(ctx context.Context, orderID int64) error {
	return m.Called(ctx, orderID).Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByUser(ctx context.Context, userID int64, productIDs []int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID, productIDs)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) ListByUserForUpdate(ctx context.Context, userID int64, productIDs []int64) ([]model.CartItem, error) {
	args := m.Called(ctx, userID, productIDs)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) Upsert(ctx context.Context, userID int64, productID int64, addQty int64) error {
	return m.Called(ctx, userID, productID, addQty).Error(0)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, userID int64, productID int64, qty int64) error {
	return m.Called(ctx, userID, productID, qty).Error(0)
}

func (m *CartItemRepoMock) DeleteByProducts(ctx context.Context, userID int64, productIDs []int64) (int64, error) {
	args := m.Called(ctx, userID, productIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CartItemRepoMock) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	list, _ := args.Get(0).([]model.Product)
	return list, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Product, error) {
	args := m.Called(ctx, ids)
	p, _ := args.Get(0).(map[int64]model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	out, _ := args.Get(0).(model.Product)
	return out, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, id int64, ch repo.ProductChanges) error {
	return m.Called(ctx, id, ch).Error(0)
}

func (m *ProductRepoMock) CountByShop(ctx context.Context, shopID *int64) (int64, int64, error) {
	args := m.Called(ctx, shopID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

type ShopRepoMock struct{ mock.Mock }

func (m *ShopRepoMock) FindByID(ctx context.Context, id int64) (model.Shop, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(model.Shop)
	return s, args.Error(1)
}

func (m *ShopRepoMock) FindByMerchantID(ctx context.Context, merchantID int64) (model.Shop, error) {
	args := m.Called(ctx, merchantID)
	s, _ := args.Get(0).(model.Shop)
	return s, args.Error(1)
}

func (m *ShopRepoMock) Create(ctx context.Context, shop model.Shop) (model.Shop, error) {
	args := m.Called(ctx, shop)
	s, _ := args.Get(0).(model.Shop)
	return s, args.Error(1)
}

func (m *ShopRepoMock) UpdateStatus(ctx context.Context, id int64, status model.ShopStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *ShopRepoMock) ListByStatus(ctx context.Context, status model.ShopStatus) ([]model.Shop, error) {
	args := m.Called(ctx, status)
	list, _ := args.Get(0).([]model.Shop)
	return list, args.Error(1)
}

func (m *ShopRepoMock) CountByStatus(ctx context.Context) (map[model.ShopStatus]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[model.ShopStatus]int64)
	return counts, args.Error(1)
}

func (m *ShopRepoMock) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, address model.Address) (model.Address, error) {
	args := m.Called(ctx, address)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]model.Address)
	return list, args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) Update(ctx context.Context, address model.Address) error {
	return m.Called(ctx, address).Error(0)
}

func (m *AddressRepoMock) Delete(ctx context.Context, addressID int64) error {
	return m.Called(ctx, addressID).Error(0)
}

func (m *AddressRepoMock) SetDefault(ctx context.Context, userID, addressID int64) error {
	return m.Called(ctx, userID, addressID).Error(0)
}

type AuditRepoMock struct{ mock.Mock }

func (m *AuditRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditRepoMock) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	logs, _ := args.Get(0).([]model.AuditLog)
	return logs, args.Error(1)
}

// =====================
// Helpers
// =====================

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

// 順番に返す注文番号
type seqOrderNos struct {
	nos []string
	i   int
}

func (g *seqOrderNos) NewOrderNo() string {
	no := g.nos[g.i%len(g.nos)]
	g.i++
	return no
}

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}
