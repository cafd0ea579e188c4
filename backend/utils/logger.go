package utils

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// InitLogger builds the application logger. All services share one instance.
func InitLogger() *log.Logger {
	return log.New(os.Stdout, "[Comunidade] ", log.LstdFlags|log.LUTC)
}

// LoggingMiddleware logs every request with status, latency and client IP.
func LoggingMiddleware(logger *log.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		logger.Printf(
			"%s %s %s %d %v",
			c.IP(),
			c.Method(),
			c.Path(),
			c.Response().StatusCode(),
			time.Since(start),
		)

		return err
	}
}
