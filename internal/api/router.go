package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/salestrack/backend/internal/api/handler"
	customMiddleware "github.com/salestrack/backend/internal/api/middleware"
	"github.com/salestrack/backend/internal/config"
	"github.com/salestrack/backend/internal/realtime"
	"github.com/salestrack/backend/internal/repository/postgres"
	"github.com/salestrack/backend/internal/repository/redis"
	"github.com/salestrack/backend/internal/security"
	"github.com/salestrack/backend/internal/service"
)

// NewRouter wires repositories, services and handlers into the HTTP router.
// The returned ChatService is handed back so the caller can start the
// retention janitor on its own lifecycle.
func NewRouter(cfg *config.Config, db *postgres.DB, redisClient *redis.Client, hub *realtime.Hub, logger zerolog.Logger) (http.Handler, *service.ChatService) {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(customMiddleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	jwtManager := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewChatSessionRepository(db)
	messageRepo := postgres.NewChatMessageRepository(db)
	productRepo := postgres.NewProductRepository(db)
	saleRepo := postgres.NewSaleRepository(db)
	referralRepo := postgres.NewReferralRepository(db)
	competitionRepo := postgres.NewCompetitionRepository(db)
	settingRepo := postgres.NewSettingRepository(db)

	rateLimiter := redis.NewRateLimiter(
		redisClient,
		cfg.Security.RateLimit.RequestsPerMinute,
		cfg.Security.RateLimit.Burst,
	)
	presence := redis.NewPresence(redisClient)

	// Services
	balancer := service.NewBalancer(userRepo, sessionRepo)
	chatService := service.NewChatService(sessionRepo, messageRepo, userRepo, balancer, hub, logger)
	authService := service.NewAuthService(userRepo, referralRepo, jwtManager, logger)
	userService := service.NewUserService(userRepo)
	productService := service.NewProductService(productRepo)
	saleService := service.NewSaleService(saleRepo, productRepo)
	referralService := service.NewReferralService(referralRepo)
	competitionService := service.NewCompetitionService(competitionRepo)
	settingService := service.NewSettingService(settingRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	chatHandler := handler.NewChatHandler(chatService)
	wsHandler := handler.NewWSHandler(hub, userRepo, presence, logger)
	presenceHandler := handler.NewPresenceHandler(presence)
	productHandler := handler.NewProductHandler(productService)
	saleHandler := handler.NewSaleHandler(saleService)
	referralHandler := handler.NewReferralHandler(referralService)
	competitionHandler := handler.NewCompetitionHandler(competitionService)
	settingHandler := handler.NewSettingHandler(settingService)

	authMiddleware := customMiddleware.NewAuthMiddleware(jwtManager)
	rateLimitMiddleware := customMiddleware.NewRateLimitMiddleware(rateLimiter)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(db))

		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// The websocket endpoint stays outside the request timeout since
		// connections are long-lived.
		r.With(authMiddleware.Authenticate).Get("/chat/ws", wsHandler.Connect)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(cfg.Server.MiddlewareTimeout))
			r.Use(authMiddleware.Authenticate)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Get("/me", userHandler.Me)
				r.Route("/{userID}", func(r chi.Router) {
					r.Get("/", userHandler.Get)
					r.Patch("/", userHandler.Update)
					r.Delete("/", userHandler.Deactivate)
				})
			})

			r.Route("/chat", func(r chi.Router) {
				r.Use(rateLimitMiddleware.Limit)

				r.Post("/session", chatHandler.CreateSession)
				r.Post("/message", chatHandler.SendMessage)
				r.Get("/sessions/user", chatHandler.ListUserSessions)
				r.Get("/active", chatHandler.ActiveSupportSession)
				r.Get("/sessions", chatHandler.ListAllSessions)

				r.Route("/{sessionID}", func(r chi.Router) {
					r.Get("/messages", chatHandler.ListMessages)
					r.Get("/online", presenceHandler.Online)
					r.Put("/assign", chatHandler.Assign)
					r.Put("/resolve", chatHandler.Resolve)
					r.Put("/reopen", chatHandler.Reopen)
					r.Put("/read", chatHandler.MarkRead)
				})
			})

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.List)
				r.Post("/", productHandler.Create)
				r.Route("/{productID}", func(r chi.Router) {
					r.Get("/", productHandler.Get)
					r.Patch("/", productHandler.Update)
					r.Delete("/", productHandler.Delete)
				})
			})

			r.Route("/sales", func(r chi.Router) {
				r.Get("/", saleHandler.ListOwn)
				r.Post("/", saleHandler.Create)
				r.Get("/all", saleHandler.ListAll)
			})

			r.Route("/referrals", func(r chi.Router) {
				r.Get("/", referralHandler.ListOwn)
				r.Get("/salesperson/{salespersonID}", referralHandler.ListBySalesperson)
				r.Put("/{referralID}/status", referralHandler.UpdateStatus)
			})

			r.Route("/competitions", func(r chi.Router) {
				r.Get("/", competitionHandler.List)
				r.Post("/", competitionHandler.Create)
				r.Route("/{competitionID}", func(r chi.Router) {
					r.Get("/", competitionHandler.Get)
					r.Put("/", competitionHandler.Update)
					r.Delete("/", competitionHandler.Delete)
				})
			})

			r.Route("/settings", func(r chi.Router) {
				r.Route("/{key}", func(r chi.Router) {
					r.Get("/", settingHandler.Get)
					r.Put("/", settingHandler.Upsert)
				})
			})
		})
	})

	return r, chatService
}
