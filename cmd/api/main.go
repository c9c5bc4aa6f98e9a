package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"driveconnect/internal/authz"
	"driveconnect/internal/config"
	"driveconnect/internal/database"
	"driveconnect/internal/middleware"
	"driveconnect/internal/modules/auth"
	"driveconnect/internal/modules/booking"
	"driveconnect/internal/modules/instructor"
	"driveconnect/internal/modules/slot"
	jwtsvc "driveconnect/internal/pkg/jwt"
	"driveconnect/internal/pkg/logger"
	"driveconnect/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog := logger.New(cfg.Production())
	defer func() { _ = zlog.Sync() }()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		zlog.Fatal("database connect failed", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	slotRepo := repository.NewSlotRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	resolver := authz.NewResolver(instructorRepo)

	authService := auth.NewService(userRepo, instructorRepo, j, zlog)
	authHandler := auth.NewHandler(authService)

	instructorService := instructor.NewService(instructorRepo, instructor.DefaultParams())
	instructorHandler := instructor.NewHandler(instructorService)

	slotService := slot.NewService(slotRepo, bookingRepo, instructorRepo, resolver, slot.DefaultParams())
	slotHandler := slot.NewHandler(slotService)

	bookingService := booking.NewService(slotRepo, bookingRepo, instructorRepo, resolver, booking.DefaultParams(), zlog)
	bookingHandler := booking.NewHandler(bookingService)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.CORS())
	r.Use(middleware.RequestLogger(zlog))

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		instructorHandler.RegisterPublicRoutes(v1)
		slotHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			instructorHandler.RegisterProtectedRoutes(protected)
			slotHandler.RegisterProtectedRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
		}
	}

	zlog.Info("listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}
