package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cinetic/internal/auth"
	"cinetic/internal/live"
	"cinetic/internal/movies"
	"cinetic/internal/ratings"
	"cinetic/pkg/database"
	"cinetic/pkg/utils"
)

func main() {
	cfg := database.DefaultConfig()
	db := database.MustOpen(cfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()

	// Optional: avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Live feed for downstream rating/recommendation consumers
	hub := live.NewHub()
	router.GET("/ws", live.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": cfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": hub.Count(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": hub.Count(),
		})
	})

	// Movies (public)
	movieRepo := movies.NewRepo(db)
	movieHandler := movies.NewHandler(movieRepo)
	movieHandler.RegisterRoutes(router.Group("/movies"))

	// Ratings
	ratingRepo := ratings.NewRepo(db)
	ratingHandler := ratings.NewHandler(ratingRepo, hub)
	ratingHandler.RegisterPublicRoutes(router.Group(""))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Protected routes
	protected := router.Group("/users")
	protected.Use(auth.AuthMiddleware(tokenSvc, authRepo))

	protected.GET("/me", func(c *gin.Context) {
		claims := auth.MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{
			"id":       claims.UserID,
			"username": claims.Username,
			"email":    claims.Email,
		})
	})

	ratingHandler.RegisterProtectedRoutes(protected)

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Println("HTTP API server listening on :8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}

	log.Println("server stopped")
}
