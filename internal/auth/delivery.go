package auth

import "github.com/labstack/echo/v4"

type Handler interface {
	Logout() echo.HandlerFunc
}
