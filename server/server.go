package server

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"

	"notefeed/db"
	"notefeed/feed"
)

type ServerConfig struct {

	// The reader to use for user lookups
	Reader *db.Reader

	// The builder that assembles feeds
	Builder *feed.Builder

	// Per-request deadline for a full feed build
	BuildTimeout time.Duration
}

// Returns a fiber.App instance to be used as an HTTP server for user feeds
func Server(config *ServerConfig) *fiber.App {

	if config.BuildTimeout == 0 {
		config.BuildTimeout = 30 * time.Second
	}

	app := fiber.New()

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		log.WithFields(log.Fields{
			"method":  c.Method(),
			"route":   c.Route().Path,
			"latency": time.Since(start),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.ConfigDefault))
	app.Use(compress.New())

	// Feeds change rarely relative to how often readers poll them, so a
	// short shared cache takes most of the rendering load.
	app.Use(cache.New(cache.Config{
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != "GET" {
				return true
			}
			return !strings.HasSuffix(c.Path(), "/feed.json")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Request().URI().String()
		},
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	app.Get("/@:username/feed.json", func(c *fiber.Ctx) error {
		username := c.Params("username")

		ctx, cancel := context.WithTimeout(c.UserContext(), config.BuildTimeout)
		defer cancel()

		user, err := config.Reader.UserByUsername(ctx, username)
		if err != nil {
			log.WithFields(log.Fields{
				"username": username,
				"error":    err,
			}).Error("Error looking up user")
			return c.Status(500).SendString("Error looking up user")
		}
		if user == nil {
			return c.Status(404).SendString("No such user")
		}

		userFeed, err := config.Builder.BuildFeed(ctx, user)
		if err != nil {
			log.WithFields(log.Fields{
				"username": username,
				"error":    err,
			}).Error("Error building feed")
			return c.Status(500).SendString("Error building feed")
		}

		return c.JSON(userFeed)
	})

	return app
}
