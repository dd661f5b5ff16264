package usecase_test

import (
	"context"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す。
// fnがエラーを返したらそのまま返す＝ロールバック相当。
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders     repo.OrderRepository
	orderItems repo.OrderItemRepository
	cart       repo.CartRepository
	products   repo.ProductRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository         { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository { return r.orderItems }
func (r *TxReposMock) Cart() repo.CartRepository            { return r.cart }
func (r *TxReposMock) Products() repo.ProductRepository     { return r.products }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

func (m *OrderItemRepoMock) ListViewByOrderID(ctx context.Context, orderID int64) ([]repo.OrderItemView, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]repo.OrderItemView)
	return items, args.Error(1)
}

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) ListWithProducts(ctx context.Context, userID int64, productIDs []int64) ([]repo.CartLineView, error) {
	args := m.Called(ctx, userID, productIDs)
	rows, _ := args.Get(0).([]repo.CartLineView)
	return rows, args.Error(1)
}

func (m *CartRepoMock) UpsertLine(ctx context.Context, userID int64, productID int64, delta int64) (model.CartLine, error) {
	args := m.Called(ctx, userID, productID, delta)
	line, _ := args.Get(0).(model.CartLine)
	return line, args.Error(1)
}

func (m *CartRepoMock) SetQuantity(ctx context.Context, userID int64, productID int64, quantity int64) (int64, error) {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CartRepoMock) RemoveLine(ctx context.Context, userID int64, productID int64) (int64, error) {
	args := m.Called(ctx, userID, productID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CartRepoMock) DeleteByUserAndProducts(ctx context.Context, userID int64, productIDs []int64) error {
	args := m.Called(ctx, userID, productIDs)
	return args.Error(0)
}

func (m *CartRepoMock) Clear(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListAll(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

// =====================
// 小物スタブ
// =====================

type fixedIDGen struct{ id string }

func (g *fixedIDGen) NewID() string { return g.id }

type fixedClock struct{ t time.Time }

func (c *fixedClock) Now() time.Time { return c.t }

type stubIssuer struct {
	token string
	err   error
}

func (i *stubIssuer) Issue(userID int64, email string, now time.Time) (string, time.Time, error) {
	return i.token, now.Add(time.Hour), i.err
}
