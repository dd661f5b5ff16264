package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type orderDeps struct {
	txm        *TxManagerMock
	orders     *OrderRepoMock
	orderItems *OrderItemRepoMock
	cart       *CartRepoMock
	products   *ProductRepoMock
	users      *UserRepoMock
	now        time.Time
	uc         *usecase.OrderUsecase
}

func newOrderDeps() *orderDeps {
	d := &orderDeps{
		orders:     new(OrderRepoMock),
		orderItems: new(OrderItemRepoMock),
		cart:       new(CartRepoMock),
		products:   new(ProductRepoMock),
		users:      new(UserRepoMock),
		now:        time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
	d.txm = &TxManagerMock{
		Repos: &TxReposMock{
			orders:     d.orders,
			orderItems: d.orderItems,
			cart:       d.cart,
			products:   d.products,
		},
	}
	d.uc = usecase.NewOrderUsecase(d.txm, d.users, &fixedIDGen{id: "ord-0001"}, &fixedClock{t: d.now})
	return d
}

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func existingUser(id int64) *model.User {
	return &model.User{ID: id, Email: "user@example.com"}
}

// 合計はセント単位までdecimalで一致する
func TestPlaceOrderComputesTotalToTheCent(t *testing.T) {
	d := newOrderDeps()
	want := mustDec(t, "79.97") // 2*10.00 + 3*19.99

	d.users.On("FindByID", mock.Anything, int64(7)).Return(existingUser(7), nil)
	d.txm.On("WithinTx", mock.Anything).Return(nil)

	d.orders.
		On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
			return o.UserID == 7 && o.TotalAmount.Equal(want) && o.OrderNumber == "ord-0001"
		})).
		Return(int64(42), nil)

	d.orderItems.
		On("CreateBulk", mock.Anything, int64(42), mock.MatchedBy(func(items []model.OrderItem) bool {
			return len(items) == 2 &&
				items[0].Price.Equal(mustDec(t, "10.00")) &&
				items[1].Price.Equal(mustDec(t, "19.99"))
		})).
		Return(nil)

	d.cart.On("DeleteByUserAndProducts", mock.Anything, int64(7), []int64{5, 9}).Return(nil)

	out, err := d.uc.PlaceOrder(context.Background(), 7, []usecase.PlaceOrderItem{
		{ProductID: 5, Quantity: 2, UnitPrice: mustDec(t, "10.00")},
		{ProductID: 9, Quantity: 3, UnitPrice: mustDec(t, "19.99")},
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.OrderID)
	assert.True(t, out.TotalAmount.Equal(want), "total = %s", out.TotalAmount)

	d.orders.AssertExpectations(t)
	d.orderItems.AssertExpectations(t)
	d.cart.AssertExpectations(t)
}

// シナリオ: {productId:5, quantity:2, price:10.00} → total 20.00、カート行は消える
func TestPlaceOrderSingleLineScenario(t *testing.T) {
	d := newOrderDeps()
	want := mustDec(t, "20.00")

	d.users.On("FindByID", mock.Anything, int64(7)).Return(existingUser(7), nil)
	d.txm.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("Create", mock.Anything, mock.Anything).Return(int64(1), nil)
	d.orderItems.On("CreateBulk", mock.Anything, int64(1), mock.Anything).Return(nil)
	d.cart.On("DeleteByUserAndProducts", mock.Anything, int64(7), []int64{5}).Return(nil)

	out, err := d.uc.PlaceOrder(context.Background(), 7, []usecase.PlaceOrderItem{
		{ProductID: 5, Quantity: 2, UnitPrice: mustDec(t, "10.00")},
	})

	assert.NoError(t, err)
	assert.True(t, out.TotalAmount.Equal(want))
	d.cart.AssertExpectations(t)
}

// 空のitemsは永続化前に弾く
func TestPlaceOrderEmptyItemsRejectedBeforeStorage(t *testing.T) {
	d := newOrderDeps()

	_, err := d.uc.PlaceOrder(context.Background(), 7, nil)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)

	d.txm.AssertNotCalled(t, "WithinTx", mock.Anything)
	d.users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestPlaceOrderMissingUserID(t *testing.T) {
	d := newOrderDeps()

	_, err := d.uc.PlaceOrder(context.Background(), 0, []usecase.PlaceOrderItem{
		{ProductID: 5, Quantity: 1, UnitPrice: mustDec(t, "1.00")},
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	d.txm.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestPlaceOrderNegativePriceRejected(t *testing.T) {
	d := newOrderDeps()

	_, err := d.uc.PlaceOrder(context.Background(), 7, []usecase.PlaceOrderItem{
		{ProductID: 5, Quantity: 1, UnitPrice: mustDec(t, "-0.01")},
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
	d.txm.AssertNotCalled(t, "WithinTx", mock.Anything)
}

// 明細insertが失敗したらエラーが伝播し、カート削除まで進まない
func TestPlaceOrderRollsBackWhenItemsInsertFails(t *testing.T) {
	d := newOrderDeps()

	d.users.On("FindByID", mock.Anything, int64(7)).Return(existingUser(7), nil)
	d.txm.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("Create", mock.Anything, mock.Anything).Return(int64(42), nil)
	d.orderItems.
		On("CreateBulk", mock.Anything, int64(42), mock.Anything).
		Return(errors.New("insert failed"))

	_, err := d.uc.PlaceOrder(context.Background(), 7, []usecase.PlaceOrderItem{
		{ProductID: 5, Quantity: 2, UnitPrice: mustDec(t, "10.00")},
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Status)
	assert.Equal(t, "Failed to add order items", he.Message)
	assert.Contains(t, he.Details, "insert failed")

	//トランザクション内の後続処理は走らない
	d.cart.AssertNotCalled(t, "DeleteByUserAndProducts", mock.Anything, mock.Anything, mock.Anything)
}

// 注文ヘッダinsertが失敗したら明細もカートも触らない
func TestPlaceOrderRollsBackWhenOrderInsertFails(t *testing.T) {
	d := newOrderDeps()

	d.users.On("FindByID", mock.Anything, int64(7)).Return(existingUser(7), nil)
	d.txm.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("Create", mock.Anything, mock.Anything).Return(int64(0), errors.New("connection reset"))

	_, err := d.uc.PlaceOrder(context.Background(), 7, []usecase.PlaceOrderItem{
		{ProductID: 5, Quantity: 2, UnitPrice: mustDec(t, "10.00")},
	})

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, he.Status)
	assert.Equal(t, "Failed to create order", he.Message)

	d.orderItems.AssertNotCalled(t, "CreateBulk", mock.Anything, mock.Anything, mock.Anything)
	d.cart.AssertNotCalled(t, "DeleteByUserAndProducts", mock.Anything, mock.Anything, mock.Anything)
}

// 「今すぐ購入」はDBの現在価格で合計する（クライアント価格は受け取らない）
func TestPlaceSingleItemOrderUsesServerPrice(t *testing.T) {
	d := newOrderDeps()
	price := mustDec(t, "25.50")
	want := mustDec(t, "51.00")

	d.users.On("FindByID", mock.Anything, int64(7)).Return(existingUser(7), nil)
	d.txm.On("WithinTx", mock.Anything).Return(nil)
	d.products.On("FindByID", mock.Anything, int64(3)).Return(model.Product{ID: 3, Name: "Quantum X Pro Laptop", Price: price}, nil)

	d.orders.
		On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
			return o.UserID == 7 && o.TotalAmount.Equal(want)
		})).
		Return(int64(55), nil)

	d.orderItems.
		On("CreateBulk", mock.Anything, int64(55), mock.MatchedBy(func(items []model.OrderItem) bool {
			return len(items) == 1 && items[0].Price.Equal(price) && items[0].Quantity == 2
		})).
		Return(nil)

	out, err := d.uc.PlaceSingleItemOrder(context.Background(), 7, 3, 2)

	assert.NoError(t, err)
	assert.Equal(t, int64(55), out.ID)
	assert.True(t, out.TotalAmount.Equal(want))
	assert.Equal(t, int64(3), out.ProductDetails.ID)
	assert.Equal(t, d.now, out.OrderDate)

	//カートは触らない
	d.cart.AssertNotCalled(t, "DeleteByUserAndProducts", mock.Anything, mock.Anything, mock.Anything)
	d.cart.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestPlaceSingleItemOrderProductMissing(t *testing.T) {
	d := newOrderDeps()

	d.users.On("FindByID", mock.Anything, int64(7)).Return(existingUser(7), nil)
	d.txm.On("WithinTx", mock.Anything).Return(nil)
	d.products.On("FindByID", mock.Anything, int64(99)).Return(model.Product{}, repo.ErrNotFound)

	_, err := d.uc.PlaceSingleItemOrder(context.Background(), 7, 99, 1)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)

	d.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 他人の注文は404（中身は返さない）
func TestGetOrderDetailOwnershipMismatch(t *testing.T) {
	d := newOrderDeps()

	d.txm.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("FindByID", mock.Anything, int64(42)).Return(model.Order{ID: 42, UserID: 99}, nil)

	_, err := d.uc.GetOrderDetail(context.Background(), 7, 42)

	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Status)

	d.orderItems.AssertNotCalled(t, "ListViewByOrderID", mock.Anything, mock.Anything)
}

// 商品価格が変わっても明細はスナップショット価格のまま
func TestGetOrderDetailKeepsSnapshotPrice(t *testing.T) {
	d := newOrderDeps()
	snapshot := mustDec(t, "10.00")

	d.txm.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("FindByID", mock.Anything, int64(42)).
		Return(model.Order{ID: 42, UserID: 7, OrderNumber: "ord-0001", TotalAmount: mustDec(t, "20.00"), OrderDate: d.now}, nil)
	d.orderItems.On("ListViewByOrderID", mock.Anything, int64(42)).
		Return([]repo.OrderItemView{
			{ProductID: 5, Name: "Widget", Quantity: 2, Price: snapshot, Image: "widget.png"},
		}, nil)

	out, err := d.uc.GetOrderDetail(context.Background(), 7, 42)

	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.True(t, out.Items[0].Price.Equal(snapshot))
	assert.True(t, out.Total.Equal(mustDec(t, "20.00")))
}

func TestListOrdersReturnsHistoryWithItems(t *testing.T) {
	d := newOrderDeps()

	d.txm.On("WithinTx", mock.Anything).Return(nil)
	d.orders.On("ListByUserID", mock.Anything, int64(7)).
		Return([]model.Order{
			{ID: 2, UserID: 7, TotalAmount: mustDec(t, "5.00"), OrderDate: d.now},
			{ID: 1, UserID: 7, TotalAmount: mustDec(t, "3.00"), OrderDate: d.now.Add(-time.Hour)},
		}, nil)
	d.orderItems.On("ListViewByOrderID", mock.Anything, int64(2)).
		Return([]repo.OrderItemView{{ProductID: 5, Quantity: 1, Price: mustDec(t, "5.00")}}, nil)
	d.orderItems.On("ListViewByOrderID", mock.Anything, int64(1)).
		Return([]repo.OrderItemView{{ProductID: 9, Quantity: 1, Price: mustDec(t, "3.00")}}, nil)

	out, err := d.uc.ListOrders(context.Background(), 7)

	assert.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, int64(2), out[0].ID)
	assert.Equal(t, int64(1), out[1].ID)
	assert.Len(t, out[0].Items, 1)
}
