package server

import (
	_ "go-inventory-ledger/docs"
	"go-inventory-ledger/internal/handler"
	"go-inventory-ledger/internal/middleware"
	"go-inventory-ledger/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers groups everything the router needs.
type Handlers struct {
	Products     *handler.ProductHandler
	Transactions *handler.TransactionHandler
	Dashboard    *handler.DashboardHandler
	Health       *handler.HealthHandler
	Hub          *ws.Hub
}

// New builds the fiber app with middleware and routes.
func New(h Handlers, log zerolog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Inventory Ledger v1.0",
		ErrorHandler: handler.ErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(middleware.RequestLogger(log))
	app.Use(cors.New(cors.Config{
		AllowMethods: "GET,POST,PUT,DELETE",
	}))

	app.Get("/health", h.Health.Health)

	// API docs
	app.Get("/documentation", func(c *fiber.Ctx) error {
		return c.Redirect("/documentation/index.html", fiber.StatusMovedPermanently)
	})
	app.Get("/documentation/*", adaptor.HTTPHandler(httpSwagger.Handler(httpSwagger.URL("/documentation/doc.json"))))

	api := app.Group("/api")

	// Product Routes
	api.Get("/products", h.Products.GetProducts)
	api.Post("/products/import", h.Products.ImportProducts)
	api.Get("/products/:sku", h.Products.GetProduct)
	api.Post("/products", h.Products.UpsertProduct)
	api.Delete("/products/:sku", h.Products.DeleteProduct)

	// Transaction Routes
	api.Get("/transactions", h.Transactions.GetTransactions)
	api.Get("/transactions/id/:id", h.Transactions.GetTransaction)
	api.Get("/transactions/sku/:sku", h.Transactions.GetTransactionsBySKU)
	api.Post("/transactions", h.Transactions.CreateTransaction)
	api.Put("/transactions/:id", h.Transactions.UpdateTransaction)
	api.Delete("/transactions/:id", h.Transactions.DeleteTransaction)

	// Dashboard Routes
	api.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)
	api.Get("/dashboard/stock-movement", h.Dashboard.GetStockMovement)

	// WebSocket Route
	if h.Hub != nil {
		app.Use("/ws", func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return c.SendStatus(fiber.StatusUpgradeRequired)
		})
		app.Get("/ws", websocket.New(h.Hub.Serve))
	}

	return app
}
