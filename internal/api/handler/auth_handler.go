package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/repairdesk/dashboard-state/internal/api/accounts"
	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

// AuthService is the account logic behind the auth routes.
type AuthService interface {
	Register(ctx context.Context, in accounts.NewUserInput) (*domain.User, error)
	Login(ctx context.Context, username, password string) (*domain.AuthResult, error)
	Profile(ctx context.Context, userID int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type AuthHandler struct {
	authService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// loginRequest binds both the OAuth2 password form and a JSON body.
type loginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type createUserRequest struct {
	Username       string `json:"username" validate:"required,min=3"`
	Password       string `json:"password" validate:"required,min=4"`
	Email          string `json:"email" validate:"required,email"`
	FullName       string `json:"full_name" validate:"required"`
	Role           string `json:"role" validate:"required,oneof=admin director manager master"`
	Phone          string `json:"phone,omitempty"`
	Specialization string `json:"specialization,omitempty"`
}

// Login authenticates a user and returns a bearer token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			return detail(c, http.StatusUnauthorized, "Неверное имя пользователя или пароль")
		case errors.Is(err, accounts.ErrUserInactive):
			return detail(c, http.StatusForbidden, "Пользователь неактивен")
		}
		return err
	}

	return c.JSON(http.StatusOK, res)
}

// Profile returns the user the bearer token belongs to.
func (h *AuthHandler) Profile(c echo.Context) error {
	id, err := ctxUserID(c)
	if err != nil {
		return err
	}

	user, err := h.authService.Profile(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, accounts.ErrUserNotFound) {
			return detail(c, http.StatusUnauthorized, "Не удалось проверить учетные данные")
		}
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// ListUsers returns every account.
func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.authService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

// CreateUser registers a new staff account.
func (h *AuthHandler) CreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), accounts.NewUserInput{
		Username:       req.Username,
		Password:       req.Password,
		Email:          req.Email,
		FullName:       req.FullName,
		Role:           domain.Role(req.Role),
		Phone:          req.Phone,
		Specialization: req.Specialization,
	})
	if err != nil {
		if errors.Is(err, accounts.ErrUserExists) {
			return detail(c, http.StatusConflict, "Пользователь с таким именем уже существует")
		}
		return err
	}
	return c.JSON(http.StatusCreated, user)
}
