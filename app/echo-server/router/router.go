package router

import (
	"cosound/internal/rest"

	"github.com/labstack/echo/v4"
)

func SetupUserRoutes(api *echo.Group, handler *rest.UserHandler, authRequired echo.MiddlewareFunc) {
	users := api.Group("/users")

	users.POST("/register", handler.Register)
	users.POST("/login", handler.Login)
	users.POST("/logout", handler.Logout, authRequired)
}

func SetupVoteRoutes(api *echo.Group, handler *rest.VoteHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	api.POST("/votes", handler.Cast, authRequired)

	// NFC tags encode this URL; the tag carries the token, the phone
	// carries the session.
	api.GET("/tap/:token", handler.RedeemTap, authRequired)
	api.POST("/tap-tokens", handler.MintTap, authRequired, adminOnly)
}

func SetupPreferenceRoutes(api *echo.Group, handler *rest.PreferenceHandler, authRequired echo.MiddlewareFunc) {
	api.GET("/preferences", handler.Get, authRequired)
	api.PUT("/preferences", handler.PutSurvey, authRequired)
}

func SetupPresenceRoutes(api *echo.Group, handler *rest.PresenceHandler, authRequired echo.MiddlewareFunc) {
	presence := api.Group("/presence", authRequired)

	presence.POST("/check-in", handler.CheckIn)
	presence.POST("/check-out", handler.CheckOut)
	presence.GET("", handler.ListActive)
}

func SetupPlaybackRoutes(api *echo.Group, handler *rest.PlaybackHandler, playerToken echo.MiddlewareFunc, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	playback := api.Group("/playback")

	playback.GET("/next", handler.Next, playerToken)
	playback.GET("/now", handler.Now, playerToken)
	playback.GET("/rank", handler.Rank, authRequired, adminOnly)
}

func SetupTrackRoutes(api *echo.Group, handler *rest.TrackHandler, authRequired echo.MiddlewareFunc, adminOnly echo.MiddlewareFunc) {
	api.POST("/tracks", handler.Create, authRequired, adminOnly)
}
