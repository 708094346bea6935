package server

import (
	"app/internal/handler"
	"app/internal/middleware"
	"app/internal/token"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, authH *handler.AuthHandler, codec *token.Codec) {
	g := e.Group("/auth")

	g.POST("/signup", authH.SignUp)
	g.GET("/confirm", authH.Confirm)
	g.POST("/password/forgot", authH.ForgotPassword)
	g.POST("/password/reset", authH.ResetPassword)
	g.POST("/signin", authH.SignIn)
	g.POST("/refresh", authH.Refresh)
	g.POST("/signout", authH.SignOut)

	// bearer必須
	g.GET("/me", authH.Me, middleware.AuthJWT(codec))
}
