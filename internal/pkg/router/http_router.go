package router

import (
	"context"

	"github.com/ManuelReschke/opad/app/controllers"
	"github.com/ManuelReschke/opad/internal/pkg/constants"
	"github.com/ManuelReschke/opad/internal/pkg/middleware"
	"github.com/ManuelReschke/opad/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	// Wire repositories, blob store, cache and job queue into the controllers
	controllers.Initialize(newDependencies(context.Background()))

	h.registerPublicRoutes(app)
	h.registerCalendarRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get(constants.PublicRoute, controllers.HandleIndex)
	app.Get(constants.LoginRoute, controllers.HandleAuthLogin)
	app.Post(constants.LoginRoute, controllers.HandleAuthLogin)
	app.Get(constants.ResetPasswordRoute, controllers.HandleResetPasswordPage)
	app.Post(constants.ResetPasswordRoute, controllers.HandleResetPasswordPage)
	app.Post(constants.LogoutRoute, middleware.RequireAuth, controllers.HandleAuthLogout)
}

func (h HttpRouter) registerCalendarRoutes(app *fiber.App) {
	group := app.Group(constants.CalendarRoute, middleware.RequireAuth)
	group.Get("/", controllers.HandleCalendarPage)
	group.Get("/:month", controllers.HandleCalendarPage)
}
