package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/launchlist/waitlist-service/internal/config"
)

// NewFiberConfig builds the app settings. The proxy header only counts for
// requests from a trusted proxy, otherwise clients could pick their own IP
// and dodge the per-IP login limit.
func NewFiberConfig(app config.AppConfig) fiber.Config {
	return fiber.Config{
		AppName:                 app.Name,
		ProxyHeader:             app.ProxyHeader,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          app.TrustedProxies,
		DisableStartupMessage:   !app.IsDevelopment(),
		ReadTimeout:             10 * time.Second,
		WriteTimeout:            10 * time.Second,
		BodyLimit:               64 * 1024,
	}
}
