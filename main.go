package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mattfehr/volleyball-rotation-tracker/auth"
	"github.com/mattfehr/volleyball-rotation-tracker/config"
	"github.com/mattfehr/volleyball-rotation-tracker/crypto"
	"github.com/mattfehr/volleyball-rotation-tracker/editor"
	"github.com/mattfehr/volleyball-rotation-tracker/library"
	"github.com/mattfehr/volleyball-rotation-tracker/logger"
	"github.com/mattfehr/volleyball-rotation-tracker/metrics"
	"github.com/mattfehr/volleyball-rotation-tracker/migrations"
	"github.com/mattfehr/volleyball-rotation-tracker/storage"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// CreateServer returns an engine with the health probe, the origin allow-list
// and CORS in place. metricsHandler may be nil.
func CreateServer(allowedOrigins []string, metricsHandler http.Handler) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Authorization",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
		ExposeHeaders: []string{"Content-Disposition"},
	}))

	return r
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	logger.Setup(os.Stdout, cfg.Debug)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := migrations.Migrate(cfg.PostgresURL); err != nil {
		logger.Fatalf("migrations: %v", err)
	}

	// Dependencies
	pgRepo, err := storage.NewPostgresRepo(context.Background(), cfg.PostgresURL)
	if err != nil {
		logger.Fatalf("postgres: %v", err)
	}
	defer pgRepo.Close()

	passwordHasher := crypto.NewArgon2idHasher(3, 1024*64, 32, 16, 1)
	tokenManager := crypto.NewJWTManager(cfg.JWTKey, cfg.TokenAge)

	authService := auth.NewService(pgRepo, passwordHasher, tokenManager)
	authHandler := auth.NewAuthHandler(authService, cfg.TokenAge)

	m := metrics.New(prometheus.NewRegistry())
	libraryService := library.NewService(pgRepo, m)
	libraryHandler := library.NewLibraryHandler(libraryService)
	writeLimiter := library.NewWriteLimiter(rate.Limit(cfg.LibraryRate), cfg.LibraryBurst)

	sessionsCtx, endSessions := context.WithCancel(context.Background())
	defer endSessions()
	editorHandler := editor.NewEditorHandler(sessionsCtx, libraryService, m, editor.HandlerConfig{
		Rate:      rate.Limit(cfg.EditorRate),
		Burst:     cfg.EditorBurst,
		PingEvery: time.Second * 30,
	})

	r := CreateServer(cfg.AllowedOrigins, m.Handler())

	{
		authGroup := r.Group("/auth")
		authGroup.POST("/signup", authHandler.SignupHandler)
		authGroup.POST("/login", authHandler.LoginHandler)
		authGroup.POST("/logout", authHandler.LogoutHandler)
		authGroup.GET("/refresh", authHandler.RefreshSessionHandler)
		authGroup.GET("/me", authHandler.RequireAuthMiddleware(time.Second*2), authHandler.MeHandler)
	}

	{
		libraryGroup := r.Group("/library")
		libraryGroup.Use(authHandler.RequireAuthMiddleware(time.Second * 2))
		libraryHandler.RegisterRoutes(libraryGroup, writeLimiter.Middleware())
	}

	{
		editorGroup := r.Group("/editor")
		editorGroup.GET("/ws", authHandler.RequireAuthMiddleware(time.Second*2), editorHandler.WebsocketHandler)
		editorGroup.POST("/legality", authHandler.OptionalAuthMiddleware(), editorHandler.LegalityHandler)
		editorGroup.POST("/derive", authHandler.OptionalAuthMiddleware(), editorHandler.DeriveHandler)
	}

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server: %v", err)
		}
	}()
	logger.Infof("server started on :%s", cfg.Port)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	logger.Info("SIGTERM or SIGINT received, closing editor sessions before shutting down")

	endSessions()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warningf("shutdown: %v", err)
	}
	logger.Info("Shutting down now")
}
