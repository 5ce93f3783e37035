// Package main rental booking API.
//
// @title           rental booking engine
// @version         1.0
// @description     booking conflict & lifecycle engine for the clothing marketplace.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/vaqsi1990/cloth-sub001/app/echoServer"
	itemctrl "github.com/vaqsi1990/cloth-sub001/app/echoServer/controller/item"
	rentalctrl "github.com/vaqsi1990/cloth-sub001/app/echoServer/controller/rental"
	"github.com/vaqsi1990/cloth-sub001/app/echoServer/validation"
	"github.com/vaqsi1990/cloth-sub001/config"
	bookingrepo "github.com/vaqsi1990/cloth-sub001/repository/booking"
	cacherepo "github.com/vaqsi1990/cloth-sub001/repository/cache"
	rentalsvc "github.com/vaqsi1990/cloth-sub001/service/rental"
	"github.com/vaqsi1990/cloth-sub001/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB
	pool, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	// redis is optional: without it the duplicate-submission guard is off,
	// the engine stays correct on the row lock alone
	var cache rentalsvc.Cache
	if cfg.RedisAddr != "" {
		cache = cacherepo.New(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	// repos & services
	store := bookingrepo.New(pool)
	rs := rentalsvc.New(store, cache, cfg.BufferDays, log)

	// controllers
	v := validator.New()
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	itemC := &itemctrl.Controller{Svc: rs, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Rental:    rentalC,
		Item:      itemC,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "buffer_days", cfg.BufferDays)

	e.Logger.Fatal(e.Start(":" + port))
}
