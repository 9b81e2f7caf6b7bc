package serverutils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
)

// RateLimiter throttles requests per user (falling back to client IP for
// anonymous routes). Counters live in an in-process cache and reset after
// the window expires.
func RateLimiter(maxRequests int, window time.Duration) fiber.Handler {
	counters := cache.New(window, 2*window)

	return func(ctx *fiber.Ctx) error {
		key := ctx.IP()
		if userId, ok := ctx.Locals("user_id").(string); ok && userId != "" {
			key = userId
		}
		key = fmt.Sprintf("rl:%s:%s", ctx.Route().Path, key)

		count, err := counters.IncrementInt(key, 1)
		if err != nil {
			counters.Set(key, 1, cache.DefaultExpiration)
			count = 1
		}

		if count > maxRequests {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(
				ErrorResponse(fiber.StatusTooManyRequests, "Too many requests, slow down"),
			)
		}

		return ctx.Next()
	}
}
