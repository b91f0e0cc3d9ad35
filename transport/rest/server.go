package rest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownTimeout = 10 * time.Second

// NewApp wires the routes. Matches are played inside the request, so there is
// no write timeout.
func NewApp(log *slog.Logger, matches matchUseCase) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler:          errorHandler,
		ReadTimeout:           15 * time.Second,
		IdleTimeout:           60 * time.Second,
		DisableStartupMessage: true,
	})

	app.Use(requestLogger(log.With("component", "rest")))
	app.Use(recover.New())

	ping := NewPingHandler()
	app.Get("/ping", ping.Ping)

	handlers := NewHandlers(log, matches)
	app.Post("/matches", handlers.PlayMatch)
	app.Get("/matches/:id", handlers.GetMatch)
	app.Get("/games/:name/matches", handlers.ListMatches)

	return app
}

// requestLogger writes one access line per request through slog. The fiber
// logger runs the error handler before Done, so the status is the final one.
func requestLogger(log *slog.Logger) fiber.Handler {
	return logger.New(logger.Config{
		Format: "${latency}",
		Output: io.Discard,
		Done: func(c *fiber.Ctx, latency []byte) {
			log.Info("request",
				"method", c.Method(),
				"path", c.Path(),
				"status", c.Response().StatusCode(),
				"latency", string(latency),
			)
		},
	})
}

// Start serves until ctx is cancelled.
func Start(ctx context.Context, app *fiber.App, port string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
		return nil
	}
}
