// cmd/server/main.go
// This is the entry point for the Pelada League API server.
// In Go, the "main" package and its "main()" function is where the program starts executing.
// The "cmd/server" directory follows a common Go convention: the cmd/ folder holds executable
// binaries, and internal/ holds reusable packages that are not meant to be imported by other projects.
package main

import (
	"log"

	// fiber is a fast HTTP web framework inspired by Express.js
	"github.com/gofiber/fiber/v2"
	// cors handles Cross-Origin Resource Sharing — allows the mobile app to talk to
	// the API even though they're running on different origins (hosts/ports)
	"github.com/gofiber/fiber/v2/middleware/cors"
	// logger prints request details (method, path, status, duration) to stdout
	"github.com/gofiber/fiber/v2/middleware/logger"
	// clockwork provides the wall clock the presence gate reads "today" from;
	// tests swap in a fake clock, production uses the real one
	"github.com/jonboulle/clockwork"

	// Internal packages — our own code, imported by module path
	"github.com/pelada-hub/pelada-api/internal/config"
	"github.com/pelada-hub/pelada-api/internal/database"
	"github.com/pelada-hub/pelada-api/internal/handlers"
	"github.com/pelada-hub/pelada-api/internal/matchday/presence"
	"github.com/pelada-hub/pelada-api/internal/middleware"
	"github.com/pelada-hub/pelada-api/internal/websocket"
)

func main() {
	// Load configuration from environment variables (and optionally a .env file).
	// cfg is a pointer (*Config) containing all runtime settings like port, database URL, etc.
	cfg := config.Load()

	// Connect to the PostgreSQL database.
	// We store the returned *gorm.DB — it's used by middleware and handlers to run queries.
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Run any pending SQL migration files (in the migrations/ directory).
	// Migrations are SQL scripts that create or alter tables. Running them on startup
	// ensures the database schema is always in sync when the server starts.
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Create a new WebSocket Hub and start it in a goroutine.
	// The Hub manages all live WebSocket connections — players watching payment
	// reviews and the team draft land for their pelada in real time.
	// "go hub.Run()" starts Run() as a goroutine: a lightweight concurrent function
	// that runs in the background without blocking the rest of startup.
	hub := websocket.NewHub()
	go hub.Run()

	// The presence gate decides whether RSVP changes are allowed on paid events.
	// One gate serves every request — it holds nothing but a clock.
	gate := presence.NewGate(clockwork.NewRealClock())

	// Create a new Fiber app (our HTTP server).
	app := fiber.New(fiber.Config{
		AppName: "Pelada League API",
	})

	// --- Global middleware ---
	// These run on every request before any route handler.
	// logger.New() logs each HTTP request: method, path, status code, and duration.
	app.Use(logger.New())
	// cors.New() allows requests from any origin (needed for the mobile app in development).
	// In production, lock this down to your specific domain.
	app.Use(cors.New())

	// --- Public routes (no auth required) ---
	// GET /health is a liveness check used by load balancers to verify the server is running.
	app.Get("/health", handlers.HealthCheck)

	// --- Authenticated API routes ---
	// All routes under /api/v1 require a valid Clerk JWT.
	// middleware.Auth(cfg, db) validates the token AND syncs the user to our database.
	//
	// Route group pattern: app.Group(prefix, middlewares...) applies the middleware
	// to every route registered on the returned group — we don't have to repeat it per route.
	api := app.Group("/api/v1", middleware.Auth(cfg, db))

	// Event routes
	// Any authenticated user can create a pelada; the creator becomes its organizer.
	api.Get("/events", handlers.GetEvents(db))
	api.Post("/events", handlers.CreateEvent(db))
	api.Get("/events/:id", handlers.GetEvent(db))
	api.Get("/events/:id/pix", handlers.GetEventPixCharge(db))

	// Moderation route — platform staff can list every event on the platform,
	// not just the peladas they joined. RequireRole runs after Auth, which is
	// what populates the role in the request context.
	api.Get("/admin/events", middleware.RequireRole("admin", "manager"), handlers.GetAllEvents(db))

	// Roster routes — joining, searching, RSVP (payment-gated), presence toggling
	api.Get("/events/:id/players", handlers.GetEventPlayers(db))
	api.Post("/events/:id/players", handlers.JoinEvent(db))
	api.Patch("/events/:id/rsvp", handlers.UpdateRSVP(db, gate))
	api.Patch("/events/:id/players/:playerID/presence", handlers.UpdatePresence(db))

	// Payment routes — receipt submission and organizer review
	api.Post("/events/:id/payments", handlers.SubmitPayment(db))
	api.Get("/events/:id/payments", handlers.GetEventPayments(db))
	api.Patch("/payments/:id/review", handlers.ReviewPayment(db, hub))

	// Evaluation routes — peer ratings and the self-assessment
	api.Post("/events/:id/evaluations", handlers.SubmitEvaluation(db))
	api.Put("/me/self-evaluation", handlers.UpsertSelfEvaluation(db))

	// Match-day routes — the draft itself and reading the latest result
	api.Post("/events/:id/teams/draft", handlers.DraftTeams(db, hub))
	api.Get("/events/:id/teams", handlers.GetTeams(db))

	// Social routes — the follower graph
	api.Post("/users/:id/follow", handlers.FollowUser(db))
	api.Delete("/users/:id/follow", handlers.UnfollowUser(db))
	api.Get("/users/:id/followers", handlers.GetFollowers(db))
	api.Get("/users/:id/following", handlers.GetFollowing(db))

	// Notification feed
	api.Get("/me/notifications", handlers.GetNotifications(db))
	api.Patch("/notifications/:id/read", handlers.MarkNotificationRead(db))

	// Start listening for HTTP connections on the configured port.
	// ":" + cfg.Port produces a string like ":8080" — listen on all network interfaces.
	log.Printf("Starting server on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
