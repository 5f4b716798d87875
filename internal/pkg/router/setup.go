package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs a set of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter wires all routers. The HttpRouter goes first so the
// session store, OAuth providers and the user-context middleware are
// in place before the API routes that depend on them.
func InstallRouter(app *fiber.App, routers ...Router) {
	for _, r := range routers {
		r.InstallRouter(app)
	}
}
