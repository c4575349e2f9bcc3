package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-storefront/internal/config"
	"go-storefront/internal/handler"
	"go-storefront/internal/middleware"
	"go-storefront/internal/model"
	"go-storefront/internal/repository"
	"go-storefront/internal/service"
	"go-storefront/internal/ws"
	"go-storefront/pkg/database"
	"go-storefront/pkg/imagestore"
	"go-storefront/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set, using the development secret")
	}
	jwt.SetSecret(cfg.JWTSecret)

	// 2. Setup Database
	db := database.ConnectDB(cfg.DSN(), cfg.DBLogLevel)
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 3. Dependency Injection (Wiring Layers)
	wsHub := ws.NewHub()
	go wsHub.Run()

	images := imagestore.New(cfg.ImageDir)

	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	itemRepo := repository.NewOrderItemRepo(db)
	pointRepo := repository.NewPickupPointRepo(db)
	statsRepo := repository.NewStatsRepo(db)

	authService := service.NewAuthService(userRepo, cfg.JWTTTL)
	catalogService := service.NewCatalogService(productRepo, db, images, wsHub)
	orderService := service.NewOrderService(db, orderRepo, itemRepo, pointRepo, productRepo, userRepo, wsHub)
	userService := service.NewUserService(db, userRepo)
	statsService := service.NewStatsService(statsRepo)

	// 4. Legacy plaintext passwords and the bootstrap admin
	if n, err := authService.MigrateLegacyPasswords(); err != nil {
		log.Printf("Warning: password migration stopped after %d users: %v", n, err)
	} else if n > 0 {
		log.Printf("Re-hashed %d legacy plaintext passwords", n)
	}
	seedAdmin(userRepo, cfg)

	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	orderHandler := handler.NewOrderHandler(orderService)
	userHandler := handler.NewUserHandler(userService)
	statsHandler := handler.NewStatsHandler(statsService)

	// 5. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName:   "Storefront Back Office v1.0",
		BodyLimit: 8 * 1024 * 1024,
	})

	// Middleware
	app.Use(logger.New())  // Logging request
	app.Use(recover.New()) // Panic recovery
	app.Use(cors.New())    // CORS

	// 6. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/change-password", authHandler.ChangePassword)
	auth.Post("/logout", middleware.RequireAuth(authService), authHandler.Logout)
	auth.Get("/me", middleware.RequireAuth(authService), authHandler.Me)

	// Catalog is readable by guests; filtering depends on the role
	products := api.Group("/products", middleware.OptionalAuth(authService))
	products.Get("/", catalogHandler.GetProducts)
	products.Get("/suppliers", catalogHandler.GetSuppliers)
	products.Get("/:article", catalogHandler.GetProduct)
	products.Get("/:article/can-delete", catalogHandler.CanDelete)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(authService))
	manager := middleware.RequireManager()
	admin := middleware.RequireAdmin()

	// Product mutations
	protected.Post("/products", admin, catalogHandler.CreateProduct)
	protected.Put("/products/:article", admin, catalogHandler.UpdateProduct)
	protected.Delete("/products/:article", admin, catalogHandler.DeleteProduct)
	protected.Post("/products/:article/image", admin, catalogHandler.UploadImage)

	// Order Routes
	protected.Get("/orders", manager, orderHandler.GetOrders)
	protected.Get("/orders/:id", manager, orderHandler.GetOrder)
	protected.Get("/orders/:id/items", manager, orderHandler.GetOrderItems)
	protected.Get("/pickup-points", manager, orderHandler.GetPickupPoints)
	protected.Post("/orders", admin, orderHandler.CreateOrder)
	protected.Put("/orders/:id", admin, orderHandler.UpdateOrder)
	protected.Delete("/orders/:id", admin, orderHandler.DeleteOrder)
	protected.Put("/orders/:id/items", admin, orderHandler.ReplaceOrderItems)

	// User Management Routes
	protected.Get("/users", admin, userHandler.GetUsers)
	protected.Get("/users/:id", admin, userHandler.GetUser)
	protected.Post("/users", admin, userHandler.CreateUser)
	protected.Put("/users/:id", admin, userHandler.UpdateUser)
	protected.Delete("/users/:id", admin, userHandler.DeleteUser)

	protected.Get("/stats", manager, statsHandler.GetStats)

	// Product photos
	app.Static("/images", images.Dir())

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 7. Graceful Shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}

// seedAdmin creates the bootstrap administrator when ADMIN_PASSWORD is set
// and no account with ADMIN_LOGIN exists yet.
func seedAdmin(userRepo repository.UserRepository, cfg config.Config) {
	if cfg.AdminPassword == "" {
		return
	}

	_, err := userRepo.FindByLogin(cfg.AdminLogin)
	if err == nil {
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Warning: Failed to look up admin user: %v", err)
		return
	}

	admin := &model.User{
		Login:        cfg.AdminLogin,
		FullName:     "Administrator",
		Role:         string(model.RoleAdministrator),
		TokenVersion: uuid.NewString(),
	}
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		log.Printf("Warning: Failed to hash admin password: %v", err)
		return
	}

	if err := userRepo.Create(admin); err != nil {
		log.Printf("Warning: Failed to create admin user: %v", err)
		return
	}
	log.Printf("Admin user created: %s", cfg.AdminLogin)
}
