package handler

import (
	"net/http"
	"strconv"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddToCartRequest struct {
	UserID    int64 `json:"user_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type AddToCartResponse struct {
	Message  string                  `json:"message"`
	CartItem usecase.AddToCartOutput `json:"cartItem"`
}

type UpdateCartRequest struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

type RemoveCartRequest struct {
	UserID    int64 `json:"userId"`
	ProductID int64 `json:"productId"`
}

type CartDetailsRequest struct {
	UserID     int64   `json:"userId"`
	ProductIDs []int64 `json:"productIds"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/cart/:userId", h.getCart)
	g.POST("/cart", h.addToCart)
	g.POST("/cart/update", h.update)
	g.POST("/cart/remove", h.remove)
	g.POST("/cart/details", h.details)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "User ID is required"})
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	var req AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddToCart(c.Request().Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, AddToCartResponse{
		Message:  "Product added to cart successfully",
		CartItem: out,
	})
}

func (h *CartHandler) update(c echo.Context) error {
	var req UpdateCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	removed, err := h.uc.UpdateQuantity(c.Request().Context(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}

	msg := "Cart updated successfully"
	if removed {
		msg = "Item removed from cart successfully"
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: msg})
}

func (h *CartHandler) remove(c echo.Context) error {
	var req RemoveCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.RemoveLine(c.Request().Context(), req.UserID, req.ProductID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Item removed from cart successfully"})
}

func (h *CartHandler) details(c echo.Context) error {
	var req CartDetailsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.GetDetails(c.Request().Context(), req.UserID, req.ProductIDs)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
