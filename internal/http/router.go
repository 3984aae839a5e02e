package http

import (
	"time"

	"github.com/adpilot/dashboard/internal/config"
	"github.com/adpilot/dashboard/internal/http/handlers"
	"github.com/adpilot/dashboard/internal/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handlers struct {
	Meta     *handlers.MetaHandler
	Wizard   *handlers.WizardHandler
	Edit     *handlers.EditHandler
	Activity *handlers.ActivityHandler
	WS       *handlers.WSHub
}

func SetupRouter(app *fiber.App, cfg *config.Config, log *zap.Logger, rdb *redis.Client, h Handlers) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	api.Use(middleware.RateLimitMiddleware(rdb, cfg.RateLimitPerMin, time.Minute))

	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Meta
	protected.Get("/meta/enums", h.Meta.GetEnums)
	protected.Get("/meta/pages", h.Meta.GetPages)
	protected.Get("/meta/templates", h.Meta.GetTemplates)
	protected.Get("/meta/link-preview", h.Meta.LinkPreview)

	protected.Get("/campaigns", h.Meta.ListCampaigns)
	protected.Get("/activity", h.Activity.ListActivity)

	// Ad creation wizard
	protected.Post("/wizards", h.Wizard.CreateWizard)
	protected.Get("/wizards/:id", h.Wizard.GetWizard)
	protected.Post("/wizards/:id/choose", h.Wizard.ChoosePath)
	protected.Put("/wizards/:id/input", h.Wizard.UpdateInput)
	protected.Post("/wizards/:id/template", h.Wizard.ApplyTemplate)
	protected.Post("/wizards/:id/back", h.Wizard.Back)
	protected.Post("/wizards/:id/generate", h.Wizard.Generate)
	protected.Post("/wizards/:id/select", h.Wizard.SelectOption)
	protected.Put("/wizards/:id/customizations", h.Wizard.SetCustomization)
	protected.Post("/wizards/:id/publish", h.Wizard.Publish)
	protected.Delete("/wizards/:id", h.Wizard.CancelWizard)

	// Ad configuration editing
	protected.Post("/ads/:adId/edits", h.Edit.OpenEdit)
	protected.Get("/edits/:id", h.Edit.GetEdit)
	protected.Get("/edits/:id/field", h.Edit.GetField)
	protected.Patch("/edits/:id", h.Edit.SetField)
	protected.Put("/edits/:id/budget", h.Edit.SetBudget)
	protected.Post("/edits/:id/save", h.Edit.SaveEdit)
	protected.Delete("/edits/:id", h.Edit.CloseEdit)

	// WebSocket, authenticated by ?token=
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(h.WS.HandleWS))
}
