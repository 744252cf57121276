package main

import (
	"log"

	"edumarket/config"
	commerceController "edumarket/controllers/commerce"
	"edumarket/database"
	adminRoutes "edumarket/routers/adminRoutes"
	authRoutes "edumarket/routers/authRoutes"
	commerceRoutes "edumarket/routers/commerceRoutes"
	courseRoutes "edumarket/routers/courseRoutes"
	userProfileRoutes "edumarket/routers/userRoutes"
	walletRoutes "edumarket/routers/walletRoutes"
	"edumarket/utils"
	"edumarket/utils/scheduler"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization,Stripe-Signature",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	// Course thumbnails
	app.Static("/uploads", config.AppConfig.UploadDir)

	if config.AppConfig.StripeSecretKey != "" {
		commerceController.SetGateway(utils.NewStripeClientFromConfig())
	}

	authRoutes.SetupAuthRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	courseRoutes.SetupAdminCourseRoutes(app)
	commerceRoutes.SetupCommerceRoutes(app)
	walletRoutes.SetupWalletRoutes(app)
	adminRoutes.SetupAdminRoutes(app)

	jobs := scheduler.Start()
	defer jobs.Stop()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
