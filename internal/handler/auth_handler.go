package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DI
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type SignupRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type SignupResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninResponse struct {
	Message   string `json:"message"`
	UserID    int64  `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Token     string `json:"token"`
}

func (h *AuthHandler) RegisterRoutes(g *echo.Group, cfg config.Config) {
	g.POST("/signup", h.signup)
	g.POST("/signin", h.signin)

	// /meだけbearerトークン必須
	g.GET("/me", h.me, middleware.AuthJWT(cfg))
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, SignupResponse{
		Message: "User successfully created",
		UserID:  out.UserID,
	})
}

func (h *AuthHandler) signin(c echo.Context) error {
	var req SigninRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SigninResponse{
		Message:   "Sign-in successful",
		UserID:    out.UserID,
		FirstName: out.FirstName,
		LastName:  out.LastName,
		Email:     out.Email,
		Token:     out.Token,
	})
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
