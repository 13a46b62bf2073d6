package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	_ "github.com/joho/godotenv/autoload"

	"pindrop/internal/database"
	"pindrop/internal/repositories"
	"pindrop/internal/scraper"
	"pindrop/internal/services"
)

type Server struct {
	port             int
	httpServer       *http.Server
	db               database.Service
	userService      services.UserService
	bookmarkService  services.BookmarkService
	tagService       services.TagService
	agentService     services.AgentService
	analyticsService services.AnalyticsService
	authService      services.AuthService
	otpService       services.OTPService
}

func NewServer() *Server {
	portStr := os.Getenv("PORT")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Warn().Str("port", portStr).Msg("Invalid PORT environment variable. Using default 8080.")
		port = 8080
	}

	db := database.New()

	userRepo := repositories.NewUserRepository(db)
	bookmarkRepo := repositories.NewBookmarkRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	otpRepo := repositories.NewOTPRepository(db)

	emailService := services.NewEmailService()
	tagService := services.NewTagService(tagRepo, bookmarkRepo)
	autotagService := services.NewAutotagService(scraper.NewClient(), services.NewKeywordExtractor())

	s := &Server{
		port:             port,
		db:               db,
		userService:      services.NewUserService(userRepo),
		bookmarkService:  services.NewBookmarkService(bookmarkRepo, tagService, autotagService),
		tagService:       tagService,
		agentService:     services.NewAgentService(bookmarkRepo, services.NewLLMSummarizer()),
		analyticsService: services.NewAnalyticsService(bookmarkRepo, tagRepo),
		authService:      services.NewAuthService(userRepo),
		otpService:       services.NewOTPService(userRepo, otpRepo, emailService),
	}

	services.InitializeGoth()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Start() error {
	log.Info().Int("port", s.port).Msg("Starting server")
	return s.httpServer.ListenAndServe()
}

func (s *Server) GracefulShutdown(done chan bool) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info().Msg("Shutting down gracefully, press Ctrl+C again to force")
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	log.Info().Msg("Server exiting")
	done <- true
}
