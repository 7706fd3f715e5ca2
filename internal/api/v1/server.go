package apiv1

import (
	"github.com/gofiber/fiber/v2"
)

// Pong defines model for Pong.
type Pong struct {
	Ping string `json:"ping"`
}

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /ping)
	GetPing(c *fiber.Ctx) error
	// (POST /auth/register)
	PostAuthRegister(c *fiber.Ctx) error
	// (POST /auth/login)
	PostAuthLogin(c *fiber.Ctx) error
	// (POST /auth/logout)
	PostAuthLogout(c *fiber.Ctx) error
	// (POST /auth/password-reset)
	PostAuthPasswordReset(c *fiber.Ctx) error
	// (POST /auth/password-reset/confirm)
	PostAuthPasswordResetConfirm(c *fiber.Ctx) error
	// (GET /account)
	GetAccount(c *fiber.Ctx) error
	// (DELETE /account)
	DeleteAccount(c *fiber.Ctx) error
	// (GET /streak)
	GetStreak(c *fiber.Ctx) error
	// (GET /calendar)
	GetCalendar(c *fiber.Ctx) error
	// (GET /calendar/{month})
	GetCalendarMonth(c *fiber.Ctx, month string) error
	// (POST /photos/today)
	PostPhotoToday(c *fiber.Ctx) error
	// (GET /photos/{date})
	GetPhoto(c *fiber.Ctx, date string) error
	// (PUT /photos/{date})
	PutPhoto(c *fiber.Ctx, date string) error
	// (GET /photos/{date}/image)
	GetPhotoImage(c *fiber.Ctx, date string) error
}

// ServerInterfaceWrapper converts contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

type MiddlewareFunc fiber.Handler

func (siw *ServerInterfaceWrapper) GetPing(c *fiber.Ctx) error {
	return siw.Handler.GetPing(c)
}

func (siw *ServerInterfaceWrapper) PostAuthRegister(c *fiber.Ctx) error {
	return siw.Handler.PostAuthRegister(c)
}

func (siw *ServerInterfaceWrapper) PostAuthLogin(c *fiber.Ctx) error {
	return siw.Handler.PostAuthLogin(c)
}

func (siw *ServerInterfaceWrapper) PostAuthLogout(c *fiber.Ctx) error {
	return siw.Handler.PostAuthLogout(c)
}

func (siw *ServerInterfaceWrapper) PostAuthPasswordReset(c *fiber.Ctx) error {
	return siw.Handler.PostAuthPasswordReset(c)
}

func (siw *ServerInterfaceWrapper) PostAuthPasswordResetConfirm(c *fiber.Ctx) error {
	return siw.Handler.PostAuthPasswordResetConfirm(c)
}

func (siw *ServerInterfaceWrapper) GetAccount(c *fiber.Ctx) error {
	return siw.Handler.GetAccount(c)
}

func (siw *ServerInterfaceWrapper) DeleteAccount(c *fiber.Ctx) error {
	return siw.Handler.DeleteAccount(c)
}

func (siw *ServerInterfaceWrapper) GetStreak(c *fiber.Ctx) error {
	return siw.Handler.GetStreak(c)
}

func (siw *ServerInterfaceWrapper) GetCalendar(c *fiber.Ctx) error {
	return siw.Handler.GetCalendar(c)
}

func (siw *ServerInterfaceWrapper) GetCalendarMonth(c *fiber.Ctx) error {
	return siw.Handler.GetCalendarMonth(c, c.Params("month"))
}

func (siw *ServerInterfaceWrapper) PostPhotoToday(c *fiber.Ctx) error {
	return siw.Handler.PostPhotoToday(c)
}

func (siw *ServerInterfaceWrapper) GetPhoto(c *fiber.Ctx) error {
	return siw.Handler.GetPhoto(c, c.Params("date"))
}

func (siw *ServerInterfaceWrapper) PutPhoto(c *fiber.Ctx) error {
	return siw.Handler.PutPhoto(c, c.Params("date"))
}

func (siw *ServerInterfaceWrapper) GetPhotoImage(c *fiber.Ctx) error {
	return siw.Handler.GetPhotoImage(c, c.Params("date"))
}

// FiberServerOptions provides options for the Fiber server.
type FiberServerOptions struct {
	BaseURL     string
	Middlewares []MiddlewareFunc
	// SessionAuth guards every operation that requires the session cookie.
	SessionAuth MiddlewareFunc
}

// Route is one registered operation.
type Route struct {
	Method  string
	Path    string
	Secured bool
}

// Routes lists every operation in the order RegisterHandlers installs them.
// Paths use OpenAPI template syntax.
var Routes = []Route{
	{fiber.MethodGet, "/ping", false},
	{fiber.MethodPost, "/auth/register", false},
	{fiber.MethodPost, "/auth/login", false},
	{fiber.MethodPost, "/auth/logout", false},
	{fiber.MethodPost, "/auth/password-reset", false},
	{fiber.MethodPost, "/auth/password-reset/confirm", false},
	{fiber.MethodGet, "/account", true},
	{fiber.MethodDelete, "/account", true},
	{fiber.MethodGet, "/streak", true},
	{fiber.MethodGet, "/calendar", true},
	{fiber.MethodGet, "/calendar/{month}", true},
	{fiber.MethodPost, "/photos/today", true},
	{fiber.MethodGet, "/photos/{date}", true},
	{fiber.MethodPut, "/photos/{date}", true},
	{fiber.MethodGet, "/photos/{date}/image", true},
}

// RegisterHandlers creates http.Handler with routing matching the OpenAPI document.
func RegisterHandlers(router fiber.Router, si ServerInterface) {
	RegisterHandlersWithOptions(router, si, FiberServerOptions{})
}

// RegisterHandlersWithOptions creates http.Handler with additional options
func RegisterHandlersWithOptions(router fiber.Router, si ServerInterface, options FiberServerOptions) {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	for _, m := range options.Middlewares {
		router.Use(fiber.Handler(m))
	}

	handlers := map[string]fiber.Handler{
		"GET /ping":                         wrapper.GetPing,
		"POST /auth/register":               wrapper.PostAuthRegister,
		"POST /auth/login":                  wrapper.PostAuthLogin,
		"POST /auth/logout":                 wrapper.PostAuthLogout,
		"POST /auth/password-reset":         wrapper.PostAuthPasswordReset,
		"POST /auth/password-reset/confirm": wrapper.PostAuthPasswordResetConfirm,
		"GET /account":                      wrapper.GetAccount,
		"DELETE /account":                   wrapper.DeleteAccount,
		"GET /streak":                       wrapper.GetStreak,
		"GET /calendar":                     wrapper.GetCalendar,
		"GET /calendar/{month}":             wrapper.GetCalendarMonth,
		"POST /photos/today":                wrapper.PostPhotoToday,
		"GET /photos/{date}":                wrapper.GetPhoto,
		"PUT /photos/{date}":                wrapper.PutPhoto,
		"GET /photos/{date}/image":          wrapper.GetPhotoImage,
	}

	for _, r := range Routes {
		chain := make([]fiber.Handler, 0, 2)
		if r.Secured && options.SessionAuth != nil {
			chain = append(chain, fiber.Handler(options.SessionAuth))
		}
		chain = append(chain, handlers[r.Method+" "+r.Path])
		router.Add(r.Method, options.BaseURL+fiberPath(r.Path), chain...)
	}
}

// fiberPath turns {param} segments into :param.
func fiberPath(path string) string {
	out := make([]byte, 0, len(path))
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '{':
			out = append(out, ':')
		case '}':
		default:
			out = append(out, path[i])
		}
	}
	return string(out)
}
