// Package routers assembles the HTTP application.
package routers

import (
	"time"

	"capitalrise/config"
	authControllers "capitalrise/controllers/auth"
	superAdminController "capitalrise/controllers/superAdmin"
	userProfileController "capitalrise/controllers/userControllers"
	walletController "capitalrise/controllers/wallet"
	"capitalrise/ledger"
	"capitalrise/middleware"
	"capitalrise/monitoring"
	authRoutes "capitalrise/routers/authRoutes"
	superAdminRoutes "capitalrise/routers/superAdmin"
	userProfileRoutes "capitalrise/routers/userRoutes"
	walletRoutes "capitalrise/routers/walletRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// NewApp builds the fiber app with every route registered.
func NewApp(cfg *config.Config, svc *ledger.Service, loc *time.Location, log *logrus.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "CapitalRise",
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    8 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization,Idempotency-Key,X-Request-ID",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		Output: log.Out,
	}))
	app.Use(monitoring.Middleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", nil)
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	auth := middleware.NewAuth(cfg)
	authRoutes.SetupAuthRoutes(app, authControllers.New(svc, auth, log), auth)
	userProfileRoutes.SetupUserRoutes(app, userProfileController.New(svc, cfg.UploadDir, log), auth)
	walletRoutes.SetupWalletRoutes(app, walletController.New(svc), auth)
	superAdminRoutes.SetupSuperAdminRoutes(app, superAdminController.New(svc, loc), auth)

	return app
}
