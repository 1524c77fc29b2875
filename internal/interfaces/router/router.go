package router

import (
	"net/http"

	authsvc "mazal-backend/internal/application/auth"
	dashsvc "mazal-backend/internal/application/dashboard"
	importsvc "mazal-backend/internal/application/imports"
	invsvc "mazal-backend/internal/application/inventory"
	"mazal-backend/internal/application/reconcile"
	uploadsvc "mazal-backend/internal/application/uploads"
	"mazal-backend/internal/config"
	"mazal-backend/internal/infrastructure/database"
	"mazal-backend/internal/infrastructure/inventoryapi"
	authhandler "mazal-backend/internal/interfaces/handlers/auth"
	dashhandler "mazal-backend/internal/interfaces/handlers/dashboard"
	healthhandler "mazal-backend/internal/interfaces/handlers/health"
	invhandler "mazal-backend/internal/interfaces/handlers/inventory"
	uploadhandler "mazal-backend/internal/interfaces/handlers/uploads"
	"mazal-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionHandler, redisClient, err := middleware.Session(middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	})
	if err != nil {
		return nil, nil, nil, err
	}
	rdb := redisClient
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.ResponseFormatter())
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	app.Use(func(c *fiber.Ctx) error {
		user := c.Locals("user")
		if user == nil {
			c.Locals("user", nil)
		}
		return c.Next()
	})

	hh := &healthhandler.Handlers{
		Rdb:             rdb,
		DB:              nil,
		InventoryAPIURL: cfg.InventoryAPIURL,
		HealthAdminKey:  cfg.HealthAdminKey,
	}
	app.Get("/health/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var errDB error
		db, errDB = database.Open(cfg.DatabaseURL)
		if errDB != nil {
			return nil, nil, nil, errDB
		}
		hh.DB = &gormDBPinger{db: db}
	}

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}

	apiClient := &inventoryapi.HTTPClient{
		BaseURL:     cfg.InventoryAPIURL,
		AccessToken: cfg.InventoryAPIToken,
	}

	if db != nil {
		as := &authsvc.Service{DB: db, BotToken: cfg.TelegramBotToken}
		ah := &authhandler.Handlers{Service: as, Rdb: rdb, Config: sessionCfg}
		authGroup := app.Group("/api/v1/auth")
		authGroup.Post("/telegram", ah.TelegramLogin)
		authGroup.Post("/login", ah.Login)
		authGroup.Get("/me", ah.Me)
		authGroup.Delete("/logout", ah.Logout)
	}

	if db != nil && rdb != nil {
		reconciler := &reconcile.Queue{Rdb: rdb}

		// Inventory
		is := &invsvc.Service{
			DB:         db,
			API:        apiClient,
			Reconciler: reconciler,
			DemoMode:   cfg.DemoMode,
		}
		imps := &importsvc.Service{DB: db}
		ih := &invhandler.Handlers{Service: is, Imports: imps, Reconciler: reconciler}
		ig := app.Group("/api/v1/inventory", middleware.RequireAuth())
		ig.Get("/", ih.List)
		ig.Post("/", ih.Add)
		ig.Post("/import", ih.Import)
		ig.Get("/reconciliation", ih.Reconciliation)
		ig.Put("/:stock_number", ih.Update)
		ig.Delete("/:stock_number", ih.Delete)

		// Dashboard
		ds := &dashsvc.Service{DB: db, API: apiClient}
		dh := &dashhandler.Handlers{Service: ds}
		dg := app.Group("/api/v1/dashboard", middleware.RequireAuth())
		dg.Get("/stats", dh.Stats)
		dg.Get("/inventory-by-shape", dh.InventoryByShape)
		dg.Get("/sales-by-category", dh.SalesByCategory)
		dg.Get("/price-trend", dh.PriceTrend)
		dg.Get("/notifications", dh.Notifications)
		dg.Post("/notifications/:id/read", dh.MarkNotificationRead)

		// Uploads — signed URL uses SUPABASE_URL
		sc := &uploadsvc.HTTPClient{BaseURL: cfg.SupabaseURL, SecretKey: cfg.SupabaseSecretKey}
		ups := &uploadsvc.Service{Client: sc, SupabaseURL: cfg.SupabaseURL}
		uph := &uploadhandler.Handlers{Service: ups}
		upg := app.Group("/api/v1/uploads", middleware.RequireAuth())
		upg.Post("/diamond-image", uph.UploadDiamondImage)
		upg.Post("/certificate", uph.UploadCertificate)
	}

	return app, db, rdb, nil
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
