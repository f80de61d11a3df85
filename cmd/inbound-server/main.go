package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/nrednav/cuid2"
	"uk.co.dudmesh.inbound/internal/boot"
	"uk.co.dudmesh.inbound/internal/handlers"
	"uk.co.dudmesh.inbound/internal/service/message"
)

type MessageService interface {
	handlers.MessageService
	Close() error
}

type config struct {
	boot.Config
	messageService MessageService
}

func (c *config) MessageService() MessageService {
	return c.messageService
}

func newConfig(bootConfig *boot.Config) *config {
	messageService, err := message.New(bootConfig)
	if err != nil {
		log.Fatalf("creating message service: %+v", err)
	}

	return &config{*bootConfig, messageService}
}

func main() {
	bootConfig, err := boot.Load()
	if err != nil {
		log.Fatalf("boot: %+v", err)
	}
	log.SetLevel(bootConfig.LogLvl())

	config := newConfig(bootConfig)
	defer config.MessageService().Close()

	server := echo.New()
	server.HideBanner = true
	server.Logger.SetLevel(bootConfig.LogLvl())

	server.Use(middleware.BodyLimit(bootConfig.Server.BodyLimit))
	server.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return cuid2.Generate()
		},
	}))
	server.Use(handlers.RequestLogger())
	server.Use(echoprometheus.NewMiddleware("inbound"))
	server.Use(middleware.Recover())

	headers := []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "X-Signature"}
	server.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: bootConfig.AllowedOrigins(),
		AllowHeaders: headers,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
	}))

	if bootConfig.WebhookSecret() == "" {
		server.Logger.Warn("WEBHOOK_SECRET is not set, webhook deliveries will be refused")
	}

	handlers.Routes(server, config.MessageService(), bootConfig.WebhookSecret())

	go func() {
		metrics := echo.New()
		metrics.HideBanner = true
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(":" + bootConfig.Server.MetricsPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	go func() {
		if err := server.Start(":" + bootConfig.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Logger.Fatal("shutting down the server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		server.Logger.Fatal(err)
	}
}
