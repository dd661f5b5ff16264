package handler

import (
	"net/http"
	"strconv"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type PlaceOrderItemRequest struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	Quantity int64           `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type PlaceOrderRequest struct {
	UserID int64                   `json:"userId"`
	Items  []PlaceOrderItemRequest `json:"items"`
}

type PlaceOrderResponse struct {
	Message string `json:"message"`
	OrderID int64  `json:"orderId"`
}

type SingleOrderRequest struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/orders/place", h.place)
	g.POST("/single-order", h.placeSingle)
	g.GET("/orders", h.list)
	g.GET("/orders/:orderId", h.detail)
}

func (h *OrderHandler) place(c echo.Context) error {
	var req PlaceOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	items := make([]usecase.PlaceOrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.PlaceOrderItem{
			ProductID: it.ID,
			Quantity:  it.Quantity,
			UnitPrice: it.Price,
		})
	}

	out, err := h.uc.PlaceOrder(c.Request().Context(), req.UserID, items)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, PlaceOrderResponse{
		Message: "Order placed successfully",
		OrderID: out.OrderID,
	})
}

func (h *OrderHandler) placeSingle(c echo.Context) error {
	var req SingleOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.PlaceSingleItemOrder(c.Request().Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) list(c echo.Context) error {
	userID, err := strconv.ParseInt(c.QueryParam("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "User ID is required"})
	}

	out, err := h.uc.ListOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) detail(c echo.Context) error {
	userID, err := strconv.ParseInt(c.QueryParam("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "User ID is required"})
	}

	orderID, err := strconv.ParseInt(c.Param("orderId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.GetOrderDetail(c.Request().Context(), userID, orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
