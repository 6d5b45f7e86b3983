package routes

import (
	"net/http"
	"taclink/config"
	"taclink/controllers"
	"taclink/database"
	"taclink/middleware"
	"taclink/repositories"
	"taclink/services"
	"taclink/utils"
	"taclink/websocket"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRoutes wires repositories, services and controllers and returns
// the configured engine. The hub must already be running; services are
// attached to it here.
func SetupRoutes(cfg *config.Config, db *mongo.Database, redisClient *redis.Client, hub *websocket.Hub) *gin.Engine {
	router := gin.New()

	repos := initializeRepositories(db)
	svcs := initializeServices(cfg, repos, redisClient, hub)
	ctrls := initializeControllers(svcs, hub)

	hub.AttachServices(svcs.Presence, svcs.Emergency, svcs.Dispatch, svcs.Message)

	authMW := middleware.NewAuthMiddleware(svcs.JWT, repos.User)

	setupGlobalMiddleware(router, cfg, redisClient)
	setupPublicRoutes(router, ctrls)
	setupAuthenticatedRoutes(router, ctrls, authMW)
	SetupWebSocketRoutes(router, ctrls.WebSocket)

	return router
}

type Repositories struct {
	User      *repositories.UserRepository
	Unit      *repositories.UnitRepository
	Emergency *repositories.EmergencyRepository
	Message   *repositories.MessageRepository
}

func initializeRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		User:      repositories.NewUserRepository(db),
		Unit:      repositories.NewUnitRepository(db),
		Emergency: repositories.NewEmergencyRepository(db),
		Message:   repositories.NewMessageRepository(db),
	}
}

type Services struct {
	JWT       *utils.JWTService
	Auth      *services.AuthService
	Presence  *services.PresenceService
	Matcher   *services.MatcherService
	Emergency *services.EmergencyService
	Dispatch  *services.DispatchService
	Message   *services.MessageService
}

func initializeServices(cfg *config.Config, repos *Repositories, redisClient *redis.Client, hub *websocket.Hub) *Services {
	jwtService := utils.NewJWTService(cfg.JWTSecret)

	presence := services.NewPresenceService(repos.Unit, hub, redisClient)
	matcher := services.NewMatcherService(repos.Unit)
	emergency := services.NewEmergencyService(repos.Emergency, presence, hub)
	dispatch := services.NewDispatchService(emergency, repos.Unit, presence, matcher, hub, cfg.SearchRadiusKm)
	message := services.NewMessageService(repos.Message, repos.Unit, hub)

	return &Services{
		JWT:       jwtService,
		Auth:      services.NewAuthService(repos.User, repos.Unit, jwtService),
		Presence:  presence,
		Matcher:   matcher,
		Emergency: emergency,
		Dispatch:  dispatch,
		Message:   message,
	}
}

type Controllers struct {
	Auth      *controllers.AuthController
	Unit      *controllers.UnitController
	Emergency *controllers.EmergencyController
	Message   *controllers.MessageController
	WebSocket *controllers.WebSocketController
}

func initializeControllers(svcs *Services, hub *websocket.Hub) *Controllers {
	return &Controllers{
		Auth:      controllers.NewAuthController(svcs.Auth),
		Unit:      controllers.NewUnitController(svcs.Presence),
		Emergency: controllers.NewEmergencyController(svcs.Emergency, svcs.Dispatch),
		Message:   controllers.NewMessageController(svcs.Message),
		WebSocket: controllers.NewWebSocketController(hub, svcs.Auth),
	}
}

func setupGlobalMiddleware(router *gin.Engine, cfg *config.Config, redisClient *redis.Client) {
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Redis:     redisClient,
		Requests:  cfg.RateLimitRequest,
		Window:    time.Duration(cfg.RateLimitWindow) * time.Minute,
		SkipPaths: []string{"/health", "/ws"},
	})
	router.Use(rateLimiter.Middleware())
}

func setupPublicRoutes(router *gin.Engine, ctrls *Controllers) {
	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "healthy"
		if !database.IsConnected() {
			status = http.StatusServiceUnavailable
			dbStatus = "unreachable"
		}
		c.JSON(status, gin.H{
			"status":   dbStatus,
			"database": dbStatus,
		})
	})

	public := router.Group("/api/v1")
	{
		SetupAuthRoutes(public, ctrls.Auth)

		// Citizen intake and tracking, no account required
		public.POST("/emergencies/public-report", ctrls.Emergency.ReportPublic)
		public.GET("/emergencies/:emergencyId", ctrls.Emergency.GetEmergency)
	}
}

func setupAuthenticatedRoutes(router *gin.Engine, ctrls *Controllers, authMW *middleware.AuthMiddleware) {
	api := router.Group("/api/v1")
	api.Use(authMW.RequireAuth())

	SetupUnitRoutes(api, ctrls.Unit, authMW)
	SetupEmergencyRoutes(api, ctrls.Emergency, authMW)
	SetupMessageRoutes(api, ctrls.Message, authMW)

	api.GET("/auth/me", ctrls.Auth.Me)
	api.GET("/ws/stats", ctrls.WebSocket.GetStats)
}
