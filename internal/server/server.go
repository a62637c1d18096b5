package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/repflow/internal/config"
	"github.com/mansoorceksport/repflow/internal/domain"
	"github.com/mansoorceksport/repflow/internal/handler"
	"github.com/mansoorceksport/repflow/internal/middleware"
	"github.com/mansoorceksport/repflow/internal/repository"
	"github.com/mansoorceksport/repflow/internal/service"
	"github.com/mansoorceksport/repflow/internal/telemetry"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
	// Metrics is optional; the global meter provider is used when nil.
	Metrics *telemetry.Metrics
}

// App is the HTTP application plus the guided workout service behind it.
// Close the service after the Fiber app has shut down.
type App struct {
	*fiber.App
	Guided *service.GuidedWorkoutService
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *App {
	cfg := deps.Config

	// Initialize repositories
	redisRepo := repository.NewRedisCacheRepository(deps.RedisClient)
	mongoExerciseRepo := repository.NewMongoExerciseRepository(deps.MongoDB)
	exerciseRepo := repository.NewCachedExerciseRepository(mongoExerciseRepo, redisRepo, cfg.Guided.CatalogCacheTTL)
	workoutRepo := repository.NewMongoWorkoutRepository(deps.MongoDB)
	logRepo := repository.NewMongoWorkoutLogRepository(deps.MongoDB)

	// Initialize services
	guidedService := service.NewGuidedWorkoutService(workoutRepo, exerciseRepo, logRepo, redisRepo, deps.Metrics, service.GuidedConfig{
		AutoAdvanceDelay:   cfg.Guided.AutoAdvanceDelay,
		DefaultRestSeconds: cfg.Guided.DefaultRestSeconds,
		SnapshotTTL:        cfg.Guided.SnapshotTTL,
	})

	// Initialize handlers
	guidedHandler := handler.NewGuidedSessionHandler(guidedService)
	exerciseHandler := handler.NewExerciseHandler(exerciseRepo)
	workoutHandler := handler.NewWorkoutHandler(workoutRepo)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "RepFlow Guided Workout API",
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))
	app.Use(telemetry.FiberMiddleware())

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":          "healthy",
			"service":         "repflow",
			"active_sessions": guidedService.ActiveSessions(),
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Exercise library (public)
	v1.Get("/exercises", exerciseHandler.ListExercises)
	v1.Get("/exercises/:id", exerciseHandler.GetExercise)

	// ===========================================
	// ATHLETE API - /v1/me/*
	// ===========================================
	me := v1.Group("/me")
	me.Use(middleware.VerifyToken(cfg.JWT.Secret))
	me.Use(middleware.AuthorizeRole(domain.RoleAthlete))
	me.Use(middleware.IdempotencyMiddleware(deps.RedisClient, cfg.Guided.IdempotencyTTL))

	me.Get("/workouts/:id", workoutHandler.GetMyWorkout)
	me.Get("/workout-logs", guidedHandler.ListWorkoutLogs)

	guided := me.Group("/guided-sessions")
	guided.Post("/", guidedHandler.StartSession)
	guided.Get("/:id", guidedHandler.GetSession)
	guided.Delete("/:id", guidedHandler.DiscardSession)
	guided.Post("/:id/forward", guidedHandler.Forward)
	guided.Post("/:id/backward", guidedHandler.Backward)
	guided.Post("/:id/jump", guidedHandler.JumpTo)
	guided.Post("/:id/select", guidedHandler.Select)
	guided.Patch("/:id/sets/:exercise_index/:set_index", guidedHandler.UpdateSet)
	guided.Post("/:id/sets/:exercise_index/:set_index/reopen", guidedHandler.ReopenSet)
	guided.Post("/:id/timer/toggle", guidedHandler.ToggleTimer)
	guided.Post("/:id/timer/skip", guidedHandler.SkipRest)
	guided.Post("/:id/finish", guidedHandler.FinishSession)

	return &App{App: app, Guided: guidedService}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.WithError(err).WithField("path", c.Path()).Error("request failed")
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
