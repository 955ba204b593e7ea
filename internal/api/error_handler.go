package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/repairdesk/dashboard-state/internal/api/accounts"
	"github.com/repairdesk/dashboard-state/internal/core/domain"
)

// errorResponse is the error envelope the dashboard backend uses.
type errorResponse struct {
	Detail string `json:"detail"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps known errors
// to status codes and hides unexpected ones behind a generic 500.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Detail: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Неверное имя пользователя или пароль"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "Не удалось проверить учетные данные"
	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusUnprocessableEntity, "invalid role"
	case errors.Is(err, accounts.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, accounts.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, accounts.ErrUserInactive):
		return http.StatusForbidden, "Пользователь неактивен"
	}

	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
