package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	tx    repo.TransactionManager
	users repo.UserRepository
	idGen IDGenerator
	clock Clock
}

// DI
func NewOrderUsecase(
	tx repo.TransactionManager,
	users repo.UserRepository,
	idGen IDGenerator,
	clock Clock,
) *OrderUsecase {
	return &OrderUsecase{
		tx:    tx,
		users: users,
		idGen: idGen,
		clock: clock,
	}
}

// カートから渡される1行分
type PlaceOrderItem struct {
	ProductID int64
	Quantity  int64
	UnitPrice decimal.Decimal
}

type PlaceOrderOutput struct {
	OrderID     int64           `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderItemView struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
}

type OrderView struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	Date        time.Time       `json:"date"`
	Total       decimal.Decimal `json:"total"`
	Items       []OrderItemView `json:"items"`
}

type SingleOrderOutput struct {
	ID             int64           `json:"id"`
	UserID         int64           `json:"userId"`
	ProductID      int64           `json:"productId"`
	Quantity       int64           `json:"quantity"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	OrderDate      time.Time       `json:"orderDate"`
	ProductDetails model.Product   `json:"productDetails"`
}

// PlaceOrder はカートの内容をひとつのトランザクションで注文に確定する。
// 注文ヘッダ作成 → 明細一括作成 → 対象商品のカート行削除。
// どれかが失敗したら全部ロールバック。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, items []PlaceOrderItem) (PlaceOrderOutput, error) {
	if userID <= 0 || len(items) == 0 {
		return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "User ID and items are required")
	}
	for _, it := range items {
		if it.ProductID <= 0 || it.Quantity < 1 || it.UnitPrice.IsNegative() {
			return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid item")
		}
	}

	//ユーザー存在チェック（永続化の前）
	if _, err := u.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return PlaceOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid user")
		}
		return PlaceOrderOutput{}, NewHTTPErrorFrom(http.StatusInternalServerError, "db error", err)
	}

	//合計はdecimalで計算（floatの誤差を入れない）
	total := decimal.Zero
	productIDs := make([]int64, 0, len(items))
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(it.Quantity)))
		productIDs = append(productIDs, it.ProductID)
	}

	var out PlaceOrderOutput

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		now := u.clock.Now()
		orderNumber := u.idGen.NewID()

		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:      userID,
			OrderNumber: orderNumber,
			OrderDate:   now,
			TotalAmount: total,
		})
		if err != nil {
			return NewHTTPErrorFrom(http.StatusInternalServerError, "Failed to create order", err)
		}

		orderItems := make([]model.OrderItem, 0, len(items))
		for _, it := range items {
			orderItems = append(orderItems, model.OrderItem{
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Price:     it.UnitPrice,
				CreatedAt: now,
			})
		}

		if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
			return NewHTTPErrorFrom(http.StatusInternalServerError, "Failed to add order items", err)
		}

		//購入済み商品のカート行を消す
		if err := r.Cart().DeleteByUserAndProducts(ctx, userID, productIDs); err != nil {
			return NewHTTPErrorFrom(http.StatusInternalServerError, "Failed to clear cart", err)
		}

		out = PlaceOrderOutput{
			OrderID:     orderID,
			OrderNumber: orderNumber,
			TotalAmount: total,
		}
		return nil
	})

	if err != nil {
		return PlaceOrderOutput{}, err
	}
	return out, nil
}

// PlaceSingleItemOrder は「今すぐ購入」。カートを経由しない。
// 価格はクライアントから受け取らず、必ずDBの現在価格を読む。
func (u *OrderUsecase) PlaceSingleItemOrder(ctx context.Context, userID int64, productID int64, quantity int64) (SingleOrderOutput, error) {
	if userID <= 0 || productID <= 0 || quantity < 1 {
		return SingleOrderOutput{}, NewHTTPError(http.StatusBadRequest, "User ID, Product ID, and Quantity are required")
	}

	if _, err := u.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return SingleOrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid user")
		}
		return SingleOrderOutput{}, NewHTTPErrorFrom(http.StatusInternalServerError, "db error", err)
	}

	var out SingleOrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//商品の現在価格をサーバー側で取り直す
		p, err := r.Products().FindByID(ctx, productID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Product not found")
		}
		if err != nil {
			return NewHTTPErrorFrom(http.StatusInternalServerError, "db error", err)
		}

		now := u.clock.Now()
		total := p.Price.Mul(decimal.NewFromInt(quantity))

		orderID, err := r.Orders().Create(ctx, model.Order{
			UserID:      userID,
			OrderNumber: u.idGen.NewID(),
			OrderDate:   now,
			TotalAmount: total,
		})
		if err != nil {
			return NewHTTPErrorFrom(http.StatusInternalServerError, "Failed to create order", err)
		}

		item := model.OrderItem{
			ProductID: productID,
			Quantity:  quantity,
			Price:     p.Price,
			CreatedAt: now,
		}
		if err := r.OrderItems().CreateBulk(ctx, orderID, []model.OrderItem{item}); err != nil {
			return NewHTTPErrorFrom(http.StatusInternalServerError, "Failed to add order items", err)
		}

		out = SingleOrderOutput{
			ID:             orderID,
			UserID:         userID,
			ProductID:      productID,
			Quantity:       quantity,
			TotalAmount:    total,
			OrderDate:      now,
			ProductDetails: p,
		}
		return nil
	})

	if err != nil {
		return SingleOrderOutput{}, err
	}
	return out, nil
}

// 注文履歴を明細つきで返す
func (u *OrderUsecase) ListOrders(ctx context.Context, userID int64) ([]OrderView, error) {
	if userID <= 0 {
		return []OrderView{}, NewHTTPError(http.StatusBadRequest, "User ID is required")
	}

	var outs []OrderView

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByUserID(ctx, userID)
		if err != nil {
			return NewHTTPErrorFrom(http.StatusInternalServerError, "Failed to retrieve orders", err)
		}

		outs = make([]OrderView, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListViewByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPErrorFrom(http.StatusInternalServerError, "Failed to retrieve orders", err)
			}
			outs = append(outs, toOrderView(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderView{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetOrderDetail(ctx context.Context, userID int64, orderID int64) (OrderView, error) {
	if userID <= 0 {
		return OrderView{}, NewHTTPError(http.StatusBadRequest, "User ID is required")
	}
	if orderID <= 0 {
		return OrderView{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderView

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "Order not found")
		}
		if err != nil {
			return NewHTTPErrorFrom(http.StatusInternalServerError, "db error", err)
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "Order not found")
		}

		items, err := r.OrderItems().ListViewByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPErrorFrom(http.StatusInternalServerError, "db error", err)
		}

		out = toOrderView(o, items)
		return nil
	})

	if err != nil {
		return OrderView{}, err
	}
	return out, nil
}

func toOrderView(o model.Order, items []repo.OrderItemView) OrderView {
	outItems := make([]OrderItemView, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemView{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Image:     it.Image,
		})
	}

	return OrderView{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Date:        o.OrderDate,
		Total:       o.TotalAmount,
		Items:       outItems,
	}
}
