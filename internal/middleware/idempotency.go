package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type cachedResponse struct {
	Status int    `json:"status"`
	Body   []byte `json:"body"`
}

// IdempotencyMiddleware replays the stored 2xx response of a mutating request
// whose X-Correlation-ID was already seen within ttl. Keys are scoped to the
// authenticated user, so run it after VerifyToken.
func IdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPatch, fiber.MethodPut, fiber.MethodDelete:
		default:
			return c.Next()
		}

		correlationID := c.Get("X-Correlation-ID")
		if correlationID == "" {
			return c.Next()
		}

		key := fmt.Sprintf("idempotency:%s:%s", UserID(c), correlationID)
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if data, err := redisClient.Get(ctx, key).Bytes(); err == nil {
			var cached cachedResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				c.Set("X-Idempotent-Replay", "true")
				c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
				return c.Status(cached.Status).Send(cached.Body)
			}
		}

		if err := c.Next(); err != nil {
			return err
		}

		// Only 2xx responses are stored.
		statusCode := c.Response().StatusCode()
		if statusCode >= fiber.StatusOK && statusCode < fiber.StatusMultipleChoices {
			body := c.Response().Body()
			data, err := json.Marshal(cachedResponse{Status: statusCode, Body: append([]byte(nil), body...)})
			if err == nil {
				err = redisClient.Set(ctx, key, data, ttl).Err()
			}
			if err != nil {
				log.WithError(err).Warn("failed to cache idempotent response")
			}
		}

		return nil
	}
}
