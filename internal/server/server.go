package server

import (
	"app/internal/handler"
	"app/internal/token"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

func New(authH *handler.AuthHandler, codec *token.Codec) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	RegisterRoutes(e, authH, codec)

	return e
}

func Start(e *echo.Echo, addr string) error {
	return e.Start(addr)
}
