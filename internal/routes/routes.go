package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/stakevault/stakevault/internal/accounts"
	"github.com/stakevault/stakevault/internal/admin"
	"github.com/stakevault/stakevault/internal/clock"
	"github.com/stakevault/stakevault/internal/config"
	"github.com/stakevault/stakevault/internal/events"
	"github.com/stakevault/stakevault/internal/middleware"
	"github.com/stakevault/stakevault/internal/mint"
	"github.com/stakevault/stakevault/internal/stake"
	"github.com/stakevault/stakevault/internal/token"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though main also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	var tokenLedger token.Ledger
	if d.DB != nil {
		pg := token.NewPostgresLedger(d.DB)
		if err := pg.EnsureSchema(context.Background()); err != nil {
			return fmt.Errorf("ensure token ledger schema: %w", err)
		}
		tokenLedger = pg
	} else {
		tokenLedger = token.NewInMemory()
	}

	var accountStore accounts.Store
	if d.Cache != nil {
		accountStore = accounts.NewRedisStore(d.Cache)
	} else {
		accountStore = accounts.NewMemoryStore()
	}

	sink := events.NewLoggerSink(d.Logger)
	stakeSvc := stake.NewService(d.Cfg.AdminIdentity, tokenLedger, accountStore, clock.System{}, sink)
	mintSvc := mint.NewService(tokenLedger, sink)
	adminSvc := admin.NewService(d.Cfg.AdminIdentity, d.Logger)

	stakeHandler := stake.NewHandler(stakeSvc)
	mintHandler := mint.NewHandler(mintSvc)
	adminHandler := admin.NewHandler(adminSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterStakingRoutes(api, stakeHandler)
	RegisterTokenRoutes(api, mintHandler)
	RegisterAdminRoutes(api, adminHandler)

	return nil
}
