package middleware_test

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/pelada-hub/pelada-api/internal/middleware"
)

// staffApp builds a minimal Fiber app with a route gated the same way the
// platform moderation listing is: RequireRole("admin", "manager") after a
// middleware that put the caller's role in the request context.
func staffApp(role string) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if role != "" {
			c.Locals("userRole", role)
		}
		return c.Next()
	})
	app.Get("/admin/events", middleware.RequireRole("admin", "manager"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func TestRequireRole(t *testing.T) {
	Convey("Given a route restricted to platform staff", t, func() {
		status := func(role string) int {
			resp, err := staffApp(role).Test(httptest.NewRequest("GET", "/admin/events", nil))
			So(err, ShouldBeNil)
			return resp.StatusCode
		}

		Convey("Both staff roles get through", func() {
			So(status("admin"), ShouldEqual, fiber.StatusOK)
			So(status("manager"), ShouldEqual, fiber.StatusOK)
		})

		Convey("A regular user is rejected with 403", func() {
			So(status("user"), ShouldEqual, fiber.StatusForbidden)
		})

		Convey("A request with no role in context is rejected with 403", func() {
			So(status(""), ShouldEqual, fiber.StatusForbidden)
		})
	})
}
