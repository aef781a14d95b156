package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wichananm65/jersey-shop-backend/internal/address"
	"github.com/wichananm65/jersey-shop-backend/internal/cart"
	"github.com/wichananm65/jersey-shop-backend/internal/category"
	"github.com/wichananm65/jersey-shop-backend/internal/config"
	"github.com/wichananm65/jersey-shop-backend/internal/dashboard"
	"github.com/wichananm65/jersey-shop-backend/internal/database"
	"github.com/wichananm65/jersey-shop-backend/internal/favorite"
	"github.com/wichananm65/jersey-shop-backend/internal/order"
	"github.com/wichananm65/jersey-shop-backend/internal/pricing"
	"github.com/wichananm65/jersey-shop-backend/internal/product"
	"github.com/wichananm65/jersey-shop-backend/internal/promo"
	"github.com/wichananm65/jersey-shop-backend/internal/recommended"
	"github.com/wichananm65/jersey-shop-backend/internal/user"
)

const uploadDir = "./uploads"

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	setupCORS(app, cfg.CORSOrigins)

	db := mustOpenDB(cfg, log)
	defer db.Close()

	// guest carts live in redis when configured so they survive restarts
	var guests cart.GuestStore = cart.NewInMemoryGuestStore()
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		guests = cart.NewRedisGuestStore(rdb, cfg.GuestCartTTL)
	}

	userService := user.NewService(user.NewPostgresRepository(db), cfg.JWTSecret, cfg.TokenTTL)
	userHandler := user.NewHandler(userService)

	categoryService := category.NewService(category.NewPostgresRepository(db))
	categoryHandler := category.NewHandler(categoryService)

	productRepo := product.NewPostgresRepository(db)
	productService := product.NewService(productRepo, categoryService, cfg.LowStockThreshold)
	productHandler := product.NewHandler(productService)
	recommendedHandler := recommended.NewHandler(recommended.NewService(productService))

	cartService := cart.NewService(
		cart.NewPostgresRepository(db),
		guests,
		product.NewCatalog(productRepo),
		cart.ParseMergePolicy(cfg.CartMergePolicy),
		log,
	)
	cartHandler := cart.NewHandler(cartService)

	promoRepo := promo.NewPostgresRepository(db)
	promoValidator := promo.NewValidator(promoRepo)
	promoHandler := promo.NewHandler(promo.NewService(promoRepo), promoValidator)

	addressService := address.NewService(address.NewPostgresRepository(db))
	addressHandler := address.NewHandler(addressService)

	calc := pricing.NewCalculator(pricing.ShippingRules{
		FreeThreshold: cfg.ShippingFreeThreshold,
		StandardPrice: cfg.ShippingStandardPrice,
		ExpressPrice:  cfg.ShippingExpressPrice,
	})
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo)
	checkout := order.NewCheckout(
		cartService,
		calc,
		promoValidator,
		addressService,
		order.NewMaterializer(orderRepo, cartService, log),
		log,
	)
	orderHandler := order.NewHandler(orderService, checkout)

	// favorites are handled by a dedicated handler with its own repository/service
	favoriteHandler := favorite.NewHandler(favorite.NewService(favorite.NewPostgresRepository(db), productService))

	dashboardHandler := dashboard.NewHandler(dashboard.NewService(productService, categoryService, orderService))

	optional := user.OptionalAuth(cfg.JWTSecret)

	userHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	recommendedHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	promoHandler.RegisterPublicRoutes(app)
	// guests and signed-in shoppers share the cart and quote routes
	cartHandler.RegisterPublicRoutes(app, optional)
	orderHandler.RegisterPublicRoutes(app, optional)

	// make uploaded product images public
	app.Static("/uploads", uploadDir)

	app.Use(user.Protected(cfg.JWTSecret))

	userHandler.RegisterProtectedRoutes(app)
	cartHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	addressHandler.RegisterProtectedRoutes(app)
	favoriteHandler.RegisterProtectedRoutes(app)

	app.Use("/api/v1/admin", user.RequireAdmin)

	productHandler.RegisterAdminRoutes(app)
	categoryHandler.RegisterAdminRoutes(app)
	promoHandler.RegisterAdminRoutes(app)
	orderHandler.RegisterAdminRoutes(app)
	dashboardHandler.RegisterAdminRoutes(app)
	app.Post("/api/v1/admin/uploads", uploadFile)

	if err := app.Listen(cfg.Addr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func setupCORS(app *fiber.App, origins string) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + cart.GuestHeader,
	}))
}

func mustOpenDB(cfg config.Config, log *slog.Logger) *sql.DB {
	db, err := database.Open(context.Background(), cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Error("database unavailable", "err", err)
		os.Exit(1)
	}

	if cfg.MigrationsEnabled {
		if err := database.Migrate(db); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}
	}
	return db
}

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// uploadFile stores a product image under a random name and returns the
// public URL to put on the product.
func uploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "file is required"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExts[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "unsupported image type"})
	}

	name := uuid.NewString() + ext
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not store file"})
	}
	if err := c.SaveFile(file, filepath.Join(uploadDir, name)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "could not store file"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": "/uploads/" + name})
}
