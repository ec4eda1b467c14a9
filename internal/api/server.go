package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"alumhub/internal/cache"
	"alumhub/internal/config"
	"alumhub/internal/database"
	"alumhub/internal/external"
	"alumhub/internal/handlers"
	"alumhub/internal/logger"
	"alumhub/internal/messaging"
	"alumhub/internal/middleware"
	"alumhub/internal/repository"
	"alumhub/internal/search"
	"alumhub/internal/service"
)

// Server wires the HTTP API: database, messaging, cache, search, gateway
// client, repositories, services and routes.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	services *service.Services
}

// NewServer connects the backing services and builds the router. Postgres
// and NATS are required; Valkey and Elasticsearch are optional and the
// server degrades without them.
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)
	log := logger.Get()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
	if err != nil {
		log.Warn("Valkey unavailable, running without cache", "error", err)
		valkeyClient = nil
	}

	searchClient, err := search.NewElasticsearchClient(cfg.Search)
	if err != nil {
		log.Warn("Elasticsearch unavailable, search falls back to database", "error", err)
		searchClient = nil
	}

	midtransClient := external.NewMidtransClient(cfg.Midtrans)
	if !midtransClient.Enabled() {
		log.Warn("Midtrans server key not configured, bookings are created without payment sessions")
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, midtransClient, natsClient, valkeyClient, searchClient)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := services.Users.EnsureAdmin(context.Background(), cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Warn("Failed to ensure admin account", "error", err)
		}
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics())
	router.Use(middleware.Logger())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		valkey:   valkeyClient,
		services: services,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api")
	{
		// Open endpoints: registration and the gateway webhook
		api.POST("/users/register", h.Register)
		api.POST("/payments/midtrans/notification", h.MidtransNotification)

		authed := api.Group("")
		authed.Use(middleware.BasicAuth(s.services.Users))
		{
			authed.GET("/users/me", h.Me)
			authed.GET("/users/me/notifications", h.ListNotifications)

			events := authed.Group("/events")
			{
				events.GET("", h.ListEvents)
				events.GET("/:id", h.GetEvent)
				events.POST("", middleware.RequireAdmin(), h.CreateEvent)
				events.PATCH("/:id", middleware.RequireAdmin(), h.UpdateEvent)
			}

			bookings := authed.Group("/bookings")
			{
				bookings.POST("", h.CreateBooking)
				bookings.GET("", h.ListBookings)
				bookings.GET("/:id", h.GetBooking)
				bookings.GET("/:id/tickets", h.ListBookingTickets)
				bookings.DELETE("/:id", h.CancelBooking)
				bookings.POST("/manual", middleware.RequireAdmin(), h.CreateManualBooking)
				bookings.PATCH("/:id/paid", middleware.RequireAdmin(), h.MarkBookingPaid)
			}

			tickets := authed.Group("/tickets")
			tickets.Use(middleware.RequireAdmin())
			{
				tickets.PATCH("/:id/checkin", h.CheckInTicket)
				tickets.PATCH("/:id/shirt", h.PickUpShirt)
			}
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", middleware.MetricsHandler())
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "alumhub-api",
	})
}

// GetRouter returns the router for testing
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the backing connections
func (s *Server) Cleanup() error {
	log := logger.Get()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			log.Error("Error closing NATS connection", "error", err)
		}
	}

	if s.valkey != nil {
		if err := s.valkey.Close(); err != nil {
			log.Error("Error closing Valkey connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			log.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
