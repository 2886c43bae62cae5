package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"spendly/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"spendly/internal/auth"
	"spendly/internal/cache"
	"spendly/internal/config"
	"spendly/internal/db"
	"spendly/internal/handler"
	"spendly/internal/mail"
	authmw "spendly/internal/middleware"
	"spendly/internal/model"
	"spendly/internal/repository"
	"spendly/internal/router"
	"spendly/internal/service"
)

// @title Spendly API
// @version 1.0
// @description Personal expense tracking API with JWT authentication, password reset and email verification.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		log.Println("RESET_DB=true detected, dropping all tables...")
		for _, table := range []interface{}{&model.Expense{}, &model.User{}} {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				log.Printf("Warning: Failed to drop table (may not exist): %v", err)
			}
		}
		log.Println("Tables dropped")
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Expense{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		log.Printf("Warning: redis unreachable, caching and logout revocation degraded: %v", err)
	}
	cancel()

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	expenseRepo := repository.NewExpenseRepository(gormDB)

	// Auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.SessionTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	var mailer mail.Mailer
	if cfg.DevMode {
		mailer = mail.LogMailer{}
	} else {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	}

	// Services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, mailer, cfg.BaseURL, cfg.ActionTokenTTL)
	expenseService := service.NewExpenseService(expenseRepo, cacheClient)
	userService := service.NewUserService(userRepo)

	// Authorization gate and handlers
	gate := authmw.NewGate(jwtService, tokenStore, userRepo, cfg.DevMode)
	authHandler := handler.NewAuthHandler(authService, cfg.DevMode)
	userHandler := handler.NewUserHandler(userService, cfg.DevMode)
	expenseHandler := handler.NewExpenseHandler(expenseService, cfg.DevMode)

	router.Register(e, cfg, gate, authHandler, userHandler, expenseHandler)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
