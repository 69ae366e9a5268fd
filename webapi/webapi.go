// Package webapi provides the HTTP surface of the engine. It is organized
// into sub-packages per domain:
//   - swap: quoting, execution and the pair menu
//   - staking: options, open/withdraw and bulk yield processing
//   - history: swap history, stake history and balances
package webapi

import (
	"errors"
	"strings"

	"github.com/amirasaad/tokenx/pkg/app"
	"github.com/amirasaad/tokenx/webapi/common"
	historyweb "github.com/amirasaad/tokenx/webapi/history"
	stakingweb "github.com/amirasaad/tokenx/webapi/staking"
	swapweb "github.com/amirasaad/tokenx/webapi/swap"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// SetupApp builds the Fiber application with middleware and all routes.
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "tokenx",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ProblemDetailsJSON(c, "Internal Server Error", err)
		},
	})

	// Rate limiting keyed on the forwarded client IP when behind a proxy.
	fiberApp.Use(limiter.New(limiter.Config{
		Max:        a.Config.RateLimit.MaxRequests,
		Expiration: a.Config.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	// Health check endpoint
	fiberApp.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Token exchange engine is running")
	})

	swapweb.Routes(fiberApp, a.SwapService, a.Deps.Oracle)
	stakingweb.Routes(fiberApp, a.StakingService)
	historyweb.Routes(fiberApp, a.HistoryService)
	return fiberApp
}
